// Package input turns SDL2 events into key presses, held movement keys
// and relative mouse motion.
package input

import (
	"github.com/veandco/go-sdl2/sdl"
)

// EventType tells what a discrete event was.
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventWindowResize
	EventKeyDown
	EventKeyUp
)

// Event is one discrete input event of a frame.
type Event struct {
	Type   EventType
	Key    sdl.Scancode
	Width  int
	Height int
}

// Action is a continuous control the player holds down.
type Action int

const (
	Forward Action = iota
	Back
	StrafeRight
	StrafeLeft
	TurnLeft
	TurnRight
	LookUp
	LookDown
)

// Bindings maps each action to the keys that trigger it.
type Bindings map[Action][]sdl.Scancode

// DefaultBindings is WASD to walk, Q/E or the arrows to turn and look.
func DefaultBindings() Bindings {
	return Bindings{
		Forward:     {sdl.SCANCODE_W},
		Back:        {sdl.SCANCODE_S},
		StrafeRight: {sdl.SCANCODE_D},
		StrafeLeft:  {sdl.SCANCODE_A},
		TurnLeft:    {sdl.SCANCODE_Q, sdl.SCANCODE_LEFT},
		TurnRight:   {sdl.SCANCODE_E, sdl.SCANCODE_RIGHT},
		LookUp:      {sdl.SCANCODE_UP},
		LookDown:    {sdl.SCANCODE_DOWN},
	}
}

// Input collects the events of one frame and tracks held keys.
type Input struct {
	bindings Bindings
	events   []Event
	held     map[sdl.Scancode]bool

	mouseDX, mouseDY float32
}

// New creates an input handler with the given bindings.
func New(b Bindings) *Input {
	return &Input{
		bindings: b,
		events:   make([]Event, 0, 16),
		held:     make(map[sdl.Scancode]bool),
	}
}

// Update polls SDL events for this frame.
// Returns true if the game should quit.
func (i *Input) Update() bool {
	i.events = i.events[:0]
	i.mouseDX, i.mouseDY = 0, 0

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		if i.handle(event) {
			return true
		}
	}
	return false
}

// handle folds one SDL event into the frame state.
func (i *Input) handle(event sdl.Event) (quit bool) {
	switch e := event.(type) {
	case *sdl.QuitEvent:
		i.events = append(i.events, Event{Type: EventQuit})
		return true

	case *sdl.WindowEvent:
		switch e.Event {
		case sdl.WINDOWEVENT_FOCUS_LOST:
			// Key-up events are lost with focus; forget everything held.
			clear(i.held)
		case sdl.WINDOWEVENT_RESIZED:
			i.events = append(i.events, Event{
				Type:   EventWindowResize,
				Width:  int(e.Data1),
				Height: int(e.Data2),
			})
		}

	case *sdl.KeyboardEvent:
		key := e.Keysym.Scancode
		switch e.Type {
		case sdl.KEYDOWN:
			i.held[key] = true
			if e.Repeat == 0 {
				i.events = append(i.events, Event{Type: EventKeyDown, Key: key})
			}
		case sdl.KEYUP:
			delete(i.held, key)
			i.events = append(i.events, Event{Type: EventKeyUp, Key: key})
		}

	case *sdl.MouseMotionEvent:
		i.mouseDX += float32(e.XRel)
		i.mouseDY += float32(e.YRel)
	}
	return false
}

// Events returns the events from the last Update.
func (i *Input) Events() []Event {
	return i.events
}

// Pressed reports whether a key went down this frame.
func (i *Input) Pressed(key sdl.Scancode) bool {
	for _, e := range i.events {
		if e.Type == EventKeyDown && e.Key == key {
			return true
		}
	}
	return false
}

// Held reports whether any key bound to the action is down.
func (i *Input) Held(a Action) bool {
	for _, k := range i.bindings[a] {
		if i.held[k] {
			return true
		}
	}
	return false
}

// Axis returns +1 while only the positive action is held, -1 while only
// the negative one is, and 0 otherwise.
func (i *Input) Axis(positive, negative Action) float32 {
	var v float32
	if i.Held(positive) {
		v++
	}
	if i.Held(negative) {
		v--
	}
	return v
}

// MouseDelta returns the relative mouse motion of the last Update in pixels.
func (i *Input) MouseDelta() (dx, dy float32) {
	return i.mouseDX, i.mouseDY
}
