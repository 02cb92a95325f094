// Package visibility picks the wall segments worth drawing this frame.
package visibility

import (
	"github.com/Faultbox/dreadmaze/internal/engine/camera"
	"github.com/Faultbox/dreadmaze/internal/game/world"
)

// ForwardCutoff is the camera-space Z at or above which a wall is dropped.
// Camera space looks down -Z, so anything with Z >= 1 is behind the viewer.
const ForwardCutoff = 1.0

// Visible reports whether a single wall passes the forward cutoff.
func Visible(w *world.Wall, cam camera.Camera) bool {
	if w == nil {
		return false
	}
	return cam.ToCameraSpace(w.Position).Z() < ForwardCutoff
}

// VisibleWalls returns every present wall in front of the cutoff.
// This is an early reject only; lateral and far clipping is left to the projection.
func VisibleWalls(stage *world.Stage, cam camera.Camera) []world.Wall {
	if stage == nil {
		return nil
	}
	out := make([]world.Wall, 0, len(stage.XWalls)/2)
	for _, slots := range [][]*world.Wall{stage.XWalls, stage.ZWalls} {
		for _, w := range slots {
			if Visible(w, cam) {
				out = append(out, *w)
			}
		}
	}
	return out
}
