package game

import "math"

// StepPlayer advances one player by dt seconds under its latest input.
// Horizontal velocity comes straight from the input flags; a jump only
// fires while grounded. The net is an impassable wall, and a player can
// never cross onto the opponent's half.
func StepPlayer(p *Player, in Input, dt float64) {
	switch {
	case in.Left && !in.Right:
		p.VX = -MoveSpeed
	case in.Right && !in.Left:
		p.VX = MoveSpeed
	default:
		p.VX = 0
	}
	if in.Jump && p.Grounded {
		p.VY = JumpVelocity
		p.Grounded = false
	}
	p.VY += Gravity * dt

	p.X += p.VX * dt
	p.Y += p.VY * dt

	floor := FloorY - PlayerRadius
	if p.Y >= floor {
		p.Y = floor
		p.VY = 0
		p.Grounded = true
	}
	if p.Grounded {
		p.VX *= GroundFriction
	}

	p.X = clamp(p.X, PlayerRadius, CourtWidth-PlayerRadius)

	// Net collision: inside the net's height band the player is pushed
	// back to the near edge and its velocity reflected.
	netLeft := NetX - NetWidth/2
	netRight := NetX + NetWidth/2
	if p.Y+PlayerRadius > NetTop && p.X+PlayerRadius > netLeft && p.X-PlayerRadius < netRight {
		if p.Side == SideLeft {
			p.X = netLeft - PlayerRadius
		} else {
			p.X = netRight + PlayerRadius
		}
		p.VX = -p.VX * NetRebound
	}

	// Hard constraint: a player always stays on its own half, even above
	// the net's height band.
	if p.Side == SideLeft && p.X > NetX-PlayerRadius {
		p.X = NetX - PlayerRadius
	}
	if p.Side == SideRight && p.X < NetX+PlayerRadius {
		p.X = NetX + PlayerRadius
	}
}

// StepBall advances the ball by dt seconds and resolves wall, net and
// ground contact. If the ball grounds while no reset is pending, the
// returned side is the one awarded the point; otherwise it is empty.
func StepBall(b *Ball, dt float64) Side {
	b.VY += Gravity * BallGravity * dt
	b.VX *= AirResistance
	b.VY *= AirResistance
	b.X += b.VX * dt
	b.Y += b.VY * dt

	if b.X-b.Radius < 0 {
		b.X = b.Radius
		b.VX = -b.VX * Bounce
	}
	if b.X+b.Radius > CourtWidth {
		b.X = CourtWidth - b.Radius
		b.VX = -b.VX * Bounce
	}

	if ballTouchesNet(b) {
		if b.X < NetX {
			b.X = NetX - NetWidth/2 - b.Radius
		} else {
			b.X = NetX + NetWidth/2 + b.Radius
		}
		b.VX = -b.VX * Bounce
	}

	if b.Y+b.Radius >= FloorY {
		b.Y = FloorY - b.Radius
		b.VX = 0
		b.VY = 0
		if !b.Scored {
			b.Scored = true
			if b.X < NetX {
				return SideRight
			}
			return SideLeft
		}
	}
	return ""
}

// ballTouchesNet reports whether the ball's circular extent overlaps the
// net's rectangular extent.
func ballTouchesNet(b *Ball) bool {
	cx := clamp(b.X, NetX-NetWidth/2, NetX+NetWidth/2)
	cy := clamp(b.Y, NetTop, FloorY)
	dx := b.X - cx
	dy := b.Y - cy
	return dx*dx+dy*dy < b.Radius*b.Radius
}

// Collide resolves a ball-player overlap. The ball is pushed out along the
// separating normal, any into-player velocity is reflected with gain, a
// horizontal impulse drives it toward the opponent court, and the result
// is forced into a strong upward arc before the speed clamp. Reports
// whether a hit happened.
func Collide(b *Ball, p *Player) bool {
	dx := b.X - p.X
	dy := b.Y - p.Y
	dist := math.Hypot(dx, dy)
	minDist := b.Radius + PlayerRadius
	if dist >= minDist {
		return false
	}

	nx, ny := 0.0, -1.0
	if dist > 0 {
		nx = dx / dist
		ny = dy / dist
	}

	pen := minDist - dist
	b.X += nx * pen
	b.Y += ny * pen

	if dot := b.VX*nx + b.VY*ny; dot < 0 {
		b.VX -= (1 + HitAmplify) * dot * nx
		b.VY -= (1 + HitAmplify) * dot * ny
	}

	if p.Side == SideLeft {
		b.VX += HitPush
	} else {
		b.VX -= HitPush
	}

	if b.VY > HitUpwardVY {
		b.VY = HitUpwardVY
	}

	ClampSpeed(b)
	return true
}

// ClampSpeed rescales the ball's velocity uniformly so its magnitude never
// exceeds BallMaxSpeed.
func ClampSpeed(b *Ball) {
	speed := math.Hypot(b.VX, b.VY)
	if speed > BallMaxSpeed {
		scale := BallMaxSpeed / speed
		b.VX *= scale
		b.VY *= scale
	}
}
