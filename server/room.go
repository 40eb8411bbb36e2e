package server

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/TheYellowSparrow/astrocade-volleyball/game"
)

// Room lifecycle phases.
const (
	PhaseLobby   = "lobby"
	PhasePlaying = "playing"
)

// Rejections surfaced to clients as error messages. The texts are the wire
// payloads, so they are written for players, not for logs.
var (
	ErrRoomFull            = errors.New("Room is full")
	ErrRoomNotFound        = errors.New("Room not found")
	ErrPlayerNotFound      = errors.New("Player not found")
	ErrInsufficientPlayers = errors.New("Need at least 2 players to start")
	ErrGameRunning         = errors.New("Game already started")
	ErrNotHostStart        = errors.New("Only host can start the game")
	ErrNotHostAssign       = errors.New("Only host can assign teams")
	ErrNotHostKick         = errors.New("Only host can kick players")
)

// seat binds one connected client to its in-room player state.
type seat struct {
	client *Client
	player *game.Player
	joined time.Time
}

// Room is one self-contained game session: roster, host, phase, score,
// ball and the latest input snapshot per player. All mutable session state
// is guarded by mu, so message handling and tick execution for the same
// room are mutually exclusive.
type Room struct {
	ID    string
	lobby *Lobby

	mu     sync.Mutex
	phase  string
	hostID string
	seats  []*seat // join order; seats[0] is always the earliest joiner
	inputs map[string]game.Input
	ball   game.Ball
	scores game.Scores

	resetTimer *time.Timer   // pending ball reset after a score
	done       chan struct{} // closes when the room is destroyed
	lastTick   time.Time
	destroyed  bool
}

func newRoom(id string, lobby *Lobby) *Room {
	return &Room{
		ID:     id,
		lobby:  lobby,
		phase:  PhaseLobby,
		inputs: make(map[string]game.Input),
		ball:   game.NewBall(),
		done:   make(chan struct{}),
	}
}

// Join seats a client in the room. The new player lands on whichever side
// has fewer members (ties favor left), the first joiner becomes host, and
// the spawn position is a function of the side and the player's position
// within it. The joiner gets a full roster snapshot; everyone else gets a
// playerJoined delta.
func (r *Room) Join(c *Client, name string) error {
	r.mu.Lock()
	if r.destroyed {
		// The room died between the directory lookup and this call; the
		// caller re-resolves the id against the directory.
		r.mu.Unlock()
		return ErrRoomNotFound
	}
	if len(r.seats) >= game.RoomCapacity {
		r.mu.Unlock()
		return ErrRoomFull
	}

	if name == "" {
		name = fmt.Sprintf("Player %d", len(r.seats)+1)
	}
	p := &game.Player{
		ID:       c.id,
		Name:     name,
		Side:     r.balancedSideLocked(),
		Grounded: true,
	}
	r.seats = append(r.seats, &seat{client: c, player: p, joined: time.Now()})
	r.inputs[c.id] = game.Input{}
	// Spawn index is computed after the roster mutation is committed.
	p.X, p.Y = game.SpawnFor(p.Side, r.sideIndexLocked(c.id))
	if r.hostID == "" {
		r.hostID = c.id
	}

	reply := marshal(joinedMsg{
		Type:    "joined",
		Room:    r.ID,
		HostID:  r.hostID,
		Phase:   r.phase,
		Players: r.rosterLocked(),
	})
	delta := marshal(playerJoinedMsg{Type: "playerJoined", Player: playerInfo(p)})
	others := r.clientsLocked(c.id)
	r.mu.Unlock()

	c.setRoom(r)
	c.TrySend(reply)
	for _, oc := range others {
		oc.TrySend(delta)
	}
	log.Printf("Room %s: player %s (%s) joined on side %s.", r.ID, c.id, name, p.Side)
	r.lobby.membershipChanged()
	return nil
}

// Leave removes the client from the room. Explicit leave, kick and
// disconnect all funnel through the same path.
func (r *Room) Leave(c *Client, reason string) {
	r.removePlayer(c.id, reason)
}

// AssignSide is a host-only reassignment of a seated player to a side. The
// target respawns at the position its join order gives it among players
// already on the destination side.
func (r *Room) AssignSide(caller *Client, targetID string, side game.Side) error {
	r.mu.Lock()
	if caller.id != r.hostID {
		r.mu.Unlock()
		return ErrNotHostAssign
	}
	s := r.seatLocked(targetID)
	if s == nil {
		r.mu.Unlock()
		return ErrPlayerNotFound
	}

	s.player.Side = side
	// The spawn index is the target's position among players already on
	// the destination side, counted after the roster mutation is
	// committed, so it never collides with an existing spawn.
	idx := 0
	for _, other := range r.seats {
		if other.player.ID != targetID && other.player.Side == side {
			idx++
		}
	}
	s.player.X, s.player.Y = game.SpawnFor(side, idx)
	s.player.VX, s.player.VY = 0, 0
	s.player.Grounded = true

	delta := marshal(playerUpdatedMsg{Type: "playerUpdated", Player: playerInfo(s.player)})
	members := r.clientsLocked("")
	r.mu.Unlock()

	for _, mc := range members {
		mc.TrySend(delta)
	}
	return nil
}

// Kick is a host-only removal. The target is notified before going through
// the regular leave path; its connection stays open.
func (r *Room) Kick(caller *Client, targetID string) error {
	r.mu.Lock()
	if caller.id != r.hostID {
		r.mu.Unlock()
		return ErrNotHostKick
	}
	s := r.seatLocked(targetID)
	if s == nil {
		r.mu.Unlock()
		return ErrPlayerNotFound
	}
	target := s.client
	r.mu.Unlock()

	target.TrySend(marshal(kickedMsg{Type: "kicked", Reason: "Kicked by host"}))
	r.removePlayer(targetID, "kicked")
	return nil
}

// StartGame is the host-only transition to the playing phase: scores reset,
// everyone respawns, the ball is served in a random direction and the
// simulation loop starts.
func (r *Room) StartGame(caller *Client) error {
	r.mu.Lock()
	if caller.id != r.hostID {
		r.mu.Unlock()
		return ErrNotHostStart
	}
	if r.phase == PhasePlaying {
		r.mu.Unlock()
		return ErrGameRunning
	}
	if len(r.seats) < 2 {
		r.mu.Unlock()
		return ErrInsufficientPlayers
	}

	r.phase = PhasePlaying
	r.scores = game.Scores{}
	for _, s := range r.seats {
		s.player.X, s.player.Y = game.SpawnFor(s.player.Side, r.sideIndexLocked(s.player.ID))
		s.player.VX, s.player.VY = 0, 0
		s.player.Grounded = true
	}
	r.ball = game.NewBall()
	r.lastTick = time.Now()

	started := marshal(gameStartedMsg{
		Type:    "gameStarted",
		Players: r.rosterLocked(),
		VB:      ballInfo(r.ball),
		Scores:  r.scores,
	})
	members := r.clientsLocked("")
	done := r.done
	r.mu.Unlock()

	go r.run(done)
	for _, mc := range members {
		mc.TrySend(started)
	}
	log.Printf("Room %s: game started by host %s.", r.ID, caller.id)
	return nil
}

// SetInput overwrites the latest input snapshot for a seated player. It is
// accepted in any phase but only consumed while playing.
func (r *Room) SetInput(id string, in game.Input) {
	r.mu.Lock()
	if _, seated := r.inputs[id]; seated {
		r.inputs[id] = in
	}
	r.mu.Unlock()
}

// HostID returns the current host, empty if the room has no players.
func (r *Room) HostID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hostID
}

// Phase returns the room's lifecycle phase.
func (r *Room) Phase() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.phase
}

// PlayerCount returns the current roster size.
func (r *Room) PlayerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.seats)
}

// removePlayer is the single removal path behind leave, kick and
// disconnect. Host succession goes to the earliest-joined survivor; an
// empty roster destroys the room.
func (r *Room) removePlayer(id, reason string) {
	r.mu.Lock()
	idx := -1
	for i, s := range r.seats {
		if s.player.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		r.mu.Unlock()
		return
	}
	departing := r.seats[idx]
	r.seats = append(r.seats[:idx], r.seats[idx+1:]...)
	delete(r.inputs, id)

	if r.hostID == id {
		r.hostID = ""
		if len(r.seats) > 0 {
			r.hostID = r.seats[0].player.ID
		}
	}

	empty := len(r.seats) == 0
	delta := marshal(playerLeftMsg{Type: "playerLeft", ID: id, Reason: reason, HostID: r.hostID})
	members := r.clientsLocked("")
	r.mu.Unlock()

	departing.client.leaveRoom(r)
	for _, mc := range members {
		mc.TrySend(delta)
	}
	log.Printf("Room %s: player %s left (%s).", r.ID, id, reason)
	if empty {
		r.lobby.destroyIfEmpty(r.ID)
	}
	r.lobby.membershipChanged()
}

// markDestroyedIfEmpty tears the room down when its roster is empty,
// stopping the simulation loop and any pending ball reset. The check and
// the mark happen under the room lock so a concurrent Join either seats
// its player first (keeping the room alive) or observes the destroyed
// flag and is rejected.
func (r *Room) markDestroyedIfEmpty() bool {
	r.mu.Lock()
	if r.destroyed || len(r.seats) > 0 {
		r.mu.Unlock()
		return false
	}
	r.destroyed = true
	if r.resetTimer != nil {
		r.resetTimer.Stop()
		r.resetTimer = nil
	}
	close(r.done)
	r.mu.Unlock()
	log.Printf("Room %s: destroyed.", r.ID)
	return true
}

// run is the fixed-rate simulation loop, ticking until the room is
// destroyed.
func (r *Room) run(done chan struct{}) {
	ticker := time.NewTicker(game.TickInterval)
	defer ticker.Stop()
	log.Printf("Room %s: simulation loop started.", r.ID)

	for {
		select {
		case <-ticker.C:
			r.step()
		case <-done:
			log.Printf("Room %s: simulation loop stopped.", r.ID)
			return
		}
	}
}

// step advances the room by one tick and broadcasts the resulting state
// frame to room members. A panic here is contained so one room's failure
// never stalls the others.
func (r *Room) step() {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("Room %s: ERROR recovered from step panic: %v", r.ID, rec)
		}
	}()

	r.mu.Lock()
	if r.destroyed || r.phase != PhasePlaying {
		r.mu.Unlock()
		return
	}

	now := time.Now()
	dt := now.Sub(r.lastTick).Seconds()
	r.lastTick = now
	if dt > game.MaxTickDelta {
		dt = game.MaxTickDelta
	}

	for _, s := range r.seats {
		game.StepPlayer(s.player, r.inputs[s.player.ID], dt)
	}
	if side := game.StepBall(&r.ball, dt); side != "" {
		r.scores.Award(side)
		r.scheduleBallResetLocked()
	}
	for _, s := range r.seats {
		game.Collide(&r.ball, s.player)
	}

	frame := marshal(stateMsg{
		Type:    "state",
		Players: r.rosterLocked(),
		VB:      ballInfo(r.ball),
		Scores:  r.scores,
		Phase:   r.phase,
		Net:     netInfo(),
	})
	members := r.clientsLocked("")
	r.mu.Unlock()

	for _, mc := range members {
		mc.TrySend(frame)
	}
}

// scheduleBallResetLocked arms the delayed ball reset after a score. The
// callback re-checks room state under the lock so a reset never fires into
// a destroyed room.
func (r *Room) scheduleBallResetLocked() {
	if r.resetTimer != nil {
		r.resetTimer.Stop()
	}
	r.resetTimer = time.AfterFunc(game.ScoreResetDelay, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.destroyed || r.phase != PhasePlaying {
			return
		}
		r.ball.Reset()
	})
}

// balancedSideLocked returns the side the next joiner lands on: whichever
// currently has fewer members, ties favoring left.
func (r *Room) balancedSideLocked() game.Side {
	left, right := 0, 0
	for _, s := range r.seats {
		if s.player.Side == game.SideLeft {
			left++
		} else {
			right++
		}
	}
	if right < left {
		return game.SideRight
	}
	return game.SideLeft
}

// sideIndexLocked returns the player's position, in join order, among the
// seats currently on its side.
func (r *Room) sideIndexLocked(id string) int {
	var side game.Side
	for _, s := range r.seats {
		if s.player.ID == id {
			side = s.player.Side
			break
		}
	}
	idx := 0
	for _, s := range r.seats {
		if s.player.ID == id {
			return idx
		}
		if s.player.Side == side {
			idx++
		}
	}
	return idx
}

func (r *Room) seatLocked(id string) *seat {
	for _, s := range r.seats {
		if s.player.ID == id {
			return s
		}
	}
	return nil
}

// rosterLocked snapshots the roster in join order.
func (r *Room) rosterLocked() []PlayerInfo {
	roster := make([]PlayerInfo, 0, len(r.seats))
	for _, s := range r.seats {
		roster = append(roster, playerInfo(s.player))
	}
	return roster
}

// clientsLocked snapshots member connections, optionally excluding one id,
// so sends can happen outside the room lock.
func (r *Room) clientsLocked(excludeID string) []*Client {
	clients := make([]*Client, 0, len(r.seats))
	for _, s := range r.seats {
		if s.player.ID == excludeID {
			continue
		}
		clients = append(clients, s.client)
	}
	return clients
}
