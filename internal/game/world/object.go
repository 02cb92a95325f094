package world

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Kind tags the concrete type of a game object.
type Kind uint8

const (
	KindDemon Kind = iota
	KindItem
)

// String returns a readable kind name.
func (k Kind) String() string {
	switch k {
	case KindDemon:
		return "demon"
	case KindItem:
		return "item"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Object is anything placed in the maze besides walls.
type Object interface {
	Kind() Kind
	Location() mgl32.Vec3
	// Size is the billboard width and height.
	Size() (width, height float32)
}

// Demon is the hostile creature hunting the player.
type Demon struct {
	Position mgl32.Vec3
	Width    float32
	Height   float32
}

// Kind implements Object.
func (d *Demon) Kind() Kind { return KindDemon }

// Location implements Object.
func (d *Demon) Location() mgl32.Vec3 { return d.Position }

// Size implements Object.
func (d *Demon) Size() (float32, float32) { return d.Width, d.Height }

// Item is a pickup lying on the floor.
type Item struct {
	Position mgl32.Vec3
	Name     string
}

// Kind implements Object.
func (i *Item) Kind() Kind { return KindItem }

// Location implements Object.
func (i *Item) Location() mgl32.Vec3 { return i.Position }

// Size implements Object.
func (i *Item) Size() (float32, float32) { return 0.3, 0.3 }
