package game

import "math/rand"

// Side identifies one of the two opposing courts.
type Side string

const (
	SideLeft  Side = "left"
	SideRight Side = "right"
)

// Opponent returns the other court.
func (s Side) Opponent() Side {
	if s == SideLeft {
		return SideRight
	}
	return SideLeft
}

// Input is the most recent control snapshot for one player. Last write wins;
// absent flags default to false.
type Input struct {
	Left  bool `json:"left"`
	Right bool `json:"right"`
	Jump  bool `json:"jump"`
}

// Player is the server-side truth for one seated player.
type Player struct {
	ID       string
	Name     string
	Side     Side
	X, Y     float64
	VX, VY   float64
	Grounded bool
}

// Ball is the authoritative ball state. Scored is set between a ground
// scoring event and the pending reset so repeated ground contact cannot
// double-score.
type Ball struct {
	X, Y   float64
	VX, VY float64
	Radius float64
	Scored bool
}

// Scores is the left/right point pair for a room.
type Scores struct {
	Left  int `json:"left"`
	Right int `json:"right"`
}

// Award adds a point for the given side.
func (s *Scores) Award(side Side) {
	if side == SideLeft {
		s.Left++
	} else {
		s.Right++
	}
}

// NewBall returns a ball already served in a random direction.
func NewBall() Ball {
	b := Ball{Radius: BallRadius}
	b.Reset()
	return b
}

// Reset recenters the ball above the net with a fresh random serve
// direction and clears the scored debounce.
func (b *Ball) Reset() {
	b.X = NetX
	b.Y = NetTop - ServeY
	b.VY = 0
	b.VX = LaunchSpeed
	if rand.Intn(2) == 0 {
		b.VX = -LaunchSpeed
	}
	b.Scored = false
}

// SpawnFor returns the spawn position for the index-th player on a side,
// spaced so players on the same side do not overlap.
func SpawnFor(side Side, index int) (float64, float64) {
	y := FloorY - PlayerRadius
	spacing := PlayerRadius*2 + 18
	var x float64
	if side == SideLeft {
		x = CourtWidth*0.25 - float64(index)*spacing
		x = clamp(x, PlayerRadius, NetX-NetWidth/2-PlayerRadius)
	} else {
		x = CourtWidth*0.75 + float64(index)*spacing
		x = clamp(x, NetX+NetWidth/2+PlayerRadius, CourtWidth-PlayerRadius)
	}
	return x, y
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
