package world

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Movement tuning for the built-in simulation.
const (
	WalkSpeed  = 2.0 // cells per second
	TurnSpeed  = 2.5 // radians per second
	ChaseSpeed = 1.1 // cells per second
	BodyRadius = 0.2

	// BobRate is how much ViewChange grows per cell walked.
	BobRate = 8
)

// MovePlayer walks the player for dt seconds. forward and strafe are in
// [-1, 1] (ahead and right positive), turn is positive to the left.
// Walls stop movement one axis at a time, so the player slides along them.
func (s *State) MovePlayer(forward, strafe, turn, dt float32) {
	p := &s.Player
	p.Yaw += turn * TurnSpeed * dt

	sin, cos := math.Sincos(float64(p.Yaw))
	sn, cs := float32(sin), float32(cos)
	dir := mgl32.Vec3{-sn*forward + cs*strafe, 0, -cs*forward - sn*strafe}
	if l := dir.Len(); l > 1 {
		dir = dir.Mul(1 / l)
	}
	if dir.LenSqr() == 0 {
		return
	}

	moved := s.Stage.Slide(p.Position, dir.Mul(WalkSpeed*dt), BodyRadius)
	p.ViewChange += moved.Sub(p.Position).Len() * BobRate
	p.Position = moved
}

// Slide applies delta to pos, dropping the X or Z part of the move when
// it would carry a body of the given radius through a wall.
func (s *Stage) Slide(pos, delta mgl32.Vec3, radius float32) mgl32.Vec3 {
	if s == nil {
		return pos.Add(delta)
	}
	out := pos
	for _, axis := range [2]int{0, 2} {
		if delta[axis] == 0 {
			continue
		}
		next := out
		next[axis] += delta[axis]

		probe := next
		if delta[axis] > 0 {
			probe[axis] += radius
		} else {
			probe[axis] -= radius
		}

		from, to := CellAt(out), CellAt(probe)
		if from != to && s.Blocked(from, to.X-from.X, to.Z-from.Z) {
			continue
		}
		out = next
	}
	return out
}

// AdvanceDemons moves every demon toward the player along the shortest
// path through the maze.
func (s *State) AdvanceDemons(dt float32) {
	if s.Stage == nil {
		return
	}
	goal := CellAt(s.Player.Position)
	for _, obj := range s.Objects {
		d, ok := obj.(*Demon)
		if !ok {
			continue
		}

		target := s.Player.Position
		if path := s.Stage.FindPath(CellAt(d.Position), goal); len(path) > 1 {
			target = path[1].Center()
		} else if path == nil {
			continue
		}
		target[1] = d.Position.Y()

		to := target.Sub(d.Position)
		dist := to.Len()
		step := float32(ChaseSpeed) * dt
		if dist <= step {
			d.Position = target
			continue
		}
		d.Position = d.Position.Add(to.Mul(step / dist))
	}
}

// StartScare begins a scare overlay unless one is already running.
func (s *State) StartScare(cause ScareCause, duration float32) bool {
	if s.Scare.Active() || duration <= 0 {
		return false
	}
	s.Scare = &Scare{Cause: cause, Countdown: duration, Duration: duration}
	return true
}

// TickScare counts the active scare down and clears it once it runs out.
func (s *State) TickScare(dt float32) {
	if s.Scare == nil {
		return
	}
	s.Scare.Countdown -= dt
	if s.Scare.Countdown <= 0 {
		s.Scare = nil
	}
}
