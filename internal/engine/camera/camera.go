// Package camera derives the first-person camera from player state.
package camera

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/dreadmaze/internal/game/world"
)

// DefaultEyeHeight is the vertical offset from the player's feet to the eye.
const DefaultEyeHeight = 0.5

// Camera is the per-frame viewpoint.
// Camera space has the camera at the origin looking down -Z.
type Camera struct {
	Position mgl32.Vec3
	Yaw      float32 // Radians around Y
	Pitch    float32 // Radians around X
}

// FromPlayer builds the camera for the current frame.
func FromPlayer(p world.Player, eyeHeight float32) Camera {
	return Camera{
		Position: p.Position.Add(mgl32.Vec3{0, eyeHeight, 0}),
		Yaw:      p.Yaw,
		Pitch:    p.Pitch,
	}
}

// Relative returns a world point relative to the camera position.
func (c Camera) Relative(p mgl32.Vec3) mgl32.Vec3 {
	return p.Sub(c.Position)
}

// ToCameraSpace translates by -Position and rotates by -Yaw.
// Pitch is ignored; only the horizontal heading matters for culling.
func (c Camera) ToCameraSpace(p mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Rotate3DY(-c.Yaw).Mul3x1(c.Relative(p))
}

// View returns the rotation-only view matrix.
// Translation is folded into model matrices as camera-relative offsets.
func (c Camera) View() mgl32.Mat4 {
	return mgl32.HomogRotate3DX(-c.Pitch).Mul4(mgl32.HomogRotate3DY(-c.Yaw))
}

// Forward returns the world-space unit look direction.
func (c Camera) Forward() mgl32.Vec3 {
	return mgl32.Rotate3DY(c.Yaw).Mul3(mgl32.Rotate3DX(c.Pitch)).Mul3x1(mgl32.Vec3{0, 0, -1})
}
