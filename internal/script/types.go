package script

import "time"

// Version is the only program version understood.
const Version = "mix.v1"

// Point is a pointer position in surface pixels.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

type UploadStep struct {
	Slot int    `json:"slot" yaml:"slot"`
	Path string `json:"path" yaml:"path"`
}

// DragStep presses at From on a surface, moves to To over Frames pointer
// moves shaped by Ease ("linear","smooth","cubic"), then releases.
type DragStep struct {
	Surface int    `json:"surface" yaml:"surface"`
	From    Point  `json:"from" yaml:"from"`
	To      Point  `json:"to" yaml:"to"`
	Frames  int    `json:"frames,omitempty" yaml:"frames,omitempty"`
	Ease    string `json:"ease,omitempty" yaml:"ease,omitempty"`
}

type ControlStep struct {
	ID    string `json:"id" yaml:"id"`
	Value any    `json:"value" yaml:"value"`
}

type PortStep struct {
	Port int `json:"port" yaml:"port"`
}

// BCDragStep drags a slot's brightness/contrast control by (DX, DY) pixels.
type BCDragStep struct {
	Slot   int     `json:"slot" yaml:"slot"`
	DX     float64 `json:"dx" yaml:"dx"`
	DY     float64 `json:"dy" yaml:"dy"`
	Frames int     `json:"frames,omitempty" yaml:"frames,omitempty"`
}

// Step holds exactly one action.
type Step struct {
	Upload     *UploadStep  `json:"upload,omitempty" yaml:"upload,omitempty"`
	Drag       *DragStep    `json:"drag,omitempty" yaml:"drag,omitempty"`
	Control    *ControlStep `json:"control,omitempty" yaml:"control,omitempty"`
	SwitchPort *PortStep    `json:"switch_port,omitempty" yaml:"switch_port,omitempty"`
	BCDrag     *BCDragStep  `json:"bc_drag,omitempty" yaml:"bc_drag,omitempty"`
	Refresh    bool         `json:"refresh,omitempty" yaml:"refresh,omitempty"`
}

// Program is a recorded console interaction.
type Program struct {
	Version string `json:"version" yaml:"version"`
	Steps   []Step `json:"steps" yaml:"steps"`
}

// PlayerState enumerates player states.
type PlayerState string

const (
	Idle    PlayerState = "idle"
	Running PlayerState = "running"
	Done    PlayerState = "done"
)

// Hooks are the console inputs a program drives.
type Hooks struct {
	Upload      func(slot int, path string) error
	PointerDown func(surface int, x, y float64) error
	PointerMove func(x, y float64)
	PointerUp   func()
	BCDown      func(slot, button int, x, y float64) bool
	SetControl  func(id string, value any) error
	SwitchPort  func(port int) error
	RefreshMix  func()
}

// Player steps through a Program and calls Hooks.
type Player struct {
	State PlayerState

	prog  Program
	idx   int
	hooks Hooks

	// FrameDelay is slept between pointer moves.
	FrameDelay time.Duration
}
