// Package transform builds model matrices for the unit quad.
//
// The quad spans [-0.5, 0.5] in X and Y with its face normal on +Z.
// Every model matrix is translate * rotateY * shape, so shape scaling
// applies first and the world translation last.
package transform

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/dreadmaze/internal/engine/camera"
	"github.com/Faultbox/dreadmaze/internal/game/world"
)

// Model composes translate(position) * rotateY(yaw) * shape.
func Model(position mgl32.Vec3, yaw float32, shape mgl32.Mat4) mgl32.Mat4 {
	return mgl32.Translate3D(position.X(), position.Y(), position.Z()).
		Mul4(mgl32.HomogRotate3DY(yaw)).
		Mul4(shape)
}

// WallShape stretches the quad to a one-cell wall of the given height.
func WallShape(height float32) mgl32.Mat4 {
	return mgl32.Scale3D(1, height, 1)
}

// CreatureShape stretches the quad to a billboard of the given size.
func CreatureShape(width, height float32) mgl32.Mat4 {
	return mgl32.Scale3D(width, height, 1)
}

// OverlayShape scales the quad in normalized device coordinates.
// A scale of 2 covers the whole screen.
func OverlayShape(scale float32) mgl32.Mat4 {
	return mgl32.Scale3D(scale, scale, 1)
}

var (
	floorShape   = mgl32.HomogRotate3DX(-math.Pi / 2)
	ceilingShape = mgl32.HomogRotate3DX(math.Pi / 2)
)

// FloorShape lays the quad flat facing up.
func FloorShape() mgl32.Mat4 { return floorShape }

// CeilingShape lays the quad flat facing down.
func CeilingShape() mgl32.Mat4 { return ceilingShape }

// Quad is one positioned quad ready for drawing.
type Quad struct {
	Model  mgl32.Mat4
	Normal mgl32.Vec3
	// Relative is the quad centre relative to the camera.
	Relative mgl32.Vec3
}

// Tiles returns a floor and a ceiling tile for every stage cell.
func Tiles(stage *world.Stage, cam camera.Camera) []Quad {
	if stage == nil {
		return nil
	}
	tiles := make([]Quad, 0, stage.Width*stage.Depth*2)
	for x := 0; x < stage.Width; x++ {
		for z := 0; z < stage.Depth; z++ {
			floor := cam.Relative(mgl32.Vec3{float32(x) + 0.5, 0, float32(z) + 0.5})
			ceiling := cam.Relative(mgl32.Vec3{float32(x) + 0.5, stage.WallHeight, float32(z) + 0.5})
			tiles = append(tiles,
				Quad{Model: Model(floor, 0, floorShape), Normal: mgl32.Vec3{0, 1, 0}, Relative: floor},
				Quad{Model: Model(ceiling, 0, ceilingShape), Normal: mgl32.Vec3{0, -1, 0}, Relative: ceiling},
			)
		}
	}
	return tiles
}

// WallYaw returns the rotation that lines the quad up with the wall.
func WallYaw(o world.Orientation) float32 {
	if o == world.AlongZ {
		return math.Pi / 2
	}
	return 0
}

// WallQuad places a wall; the normal is flipped to face the camera.
func WallQuad(w world.Wall, height float32, cam camera.Camera) Quad {
	center := w.Position.Add(mgl32.Vec3{0, height / 2, 0})
	rel := cam.Relative(center)
	yaw := WallYaw(w.Orientation)

	normal := mgl32.Vec3{0, 0, 1}
	if w.Orientation == world.AlongZ {
		normal = mgl32.Vec3{1, 0, 0}
	}
	if normal.Dot(rel) > 0 {
		normal = normal.Mul(-1)
	}

	return Quad{Model: Model(rel, yaw, WallShape(height)), Normal: normal, Relative: rel}
}

// BillboardYaw turns the quad so its face points back at the camera.
func BillboardYaw(relative mgl32.Vec3) float32 {
	return float32(math.Atan2(float64(-relative.X()), float64(-relative.Z())))
}

// CreatureQuad places a camera-facing billboard standing on the floor.
func CreatureQuad(position mgl32.Vec3, width, height float32, cam camera.Camera) Quad {
	rel := cam.Relative(position.Add(mgl32.Vec3{0, height / 2, 0}))
	yaw := BillboardYaw(rel)
	normal := mgl32.HomogRotate3DY(yaw).Mul4x1(mgl32.Vec4{0, 0, 1, 0}).Vec3()
	return Quad{Model: Model(rel, yaw, CreatureShape(width, height)), Normal: normal, Relative: rel}
}
