package game

import "time"

// Court Geometry (world units are pixels, y grows downward)
const (
	CourtWidth   = 900.0
	CourtHeight  = 600.0
	GroundHeight = 50.0                       // Height of the floor band at the bottom of the court
	FloorY       = CourtHeight - GroundHeight // Surface players and ball stand on

	NetX      = CourtWidth / 2 // Horizontal center of the net
	NetWidth  = 10.0
	NetHeight = 160.0
	NetTop    = FloorY - NetHeight
)

// Player Physics
const (
	PlayerRadius   = 26.0
	MoveSpeed      = 320.0  // Horizontal speed while holding left/right
	JumpVelocity   = -780.0 // Jump impulse; negative is up
	Gravity        = 2000.0
	GroundFriction = 0.82 // Horizontal damping per tick while grounded
	NetRebound     = 0.5  // Velocity kept after bouncing off the net
)

// Ball Physics
const (
	BallRadius    = 15.0
	BallGravity   = 0.55  // Fraction of player gravity; the ball floats
	AirResistance = 0.998 // Velocity decay per tick
	Bounce        = 0.72  // Energy kept on wall/net reflection
	HitAmplify    = 1.25  // Reflection gain when a player strikes the ball
	HitPush       = 220.0 // Horizontal bias toward the opponent court on a hit
	HitUpwardVY   = -560.0
	BallMaxSpeed  = 950.0
	LaunchSpeed   = 210.0 // Horizontal speed of a fresh serve
	ServeY        = 150.0 // Serve height above the net
)

// Session Settings
const (
	RoomCapacity    = 4
	TickInterval    = 40 * time.Millisecond // 25 simulation steps per second
	MaxTickDelta    = 0.1                   // Seconds; clamps the step after a scheduling stall
	ScoreResetDelay = 800 * time.Millisecond
)
