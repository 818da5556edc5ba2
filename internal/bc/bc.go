// Package bc tracks per-slot brightness/contrast and the drag gesture that
// adjusts them.
package bc

import "fmt"

// Bounds and drag sensitivity.
const (
	MinBrightness = -1.0
	MaxBrightness = 1.0
	MinContrast   = 0.1
	MaxContrast   = 3.0
	Step          = 0.01
)

// Slots is the number of image slots.
const Slots = 4

// PrimaryButton is the only button that starts a drag.
const PrimaryButton = 0

// Value is a slot's brightness/contrast pair.
type Value struct {
	Brightness float64 `json:"brightness"`
	Contrast   float64 `json:"contrast"`
}

// Default is neutral brightness and unit contrast.
func Default() Value { return Value{Brightness: 0, Contrast: 1} }

// Nudge applies a pointer delta: right brightens, up raises contrast.
// The result is clamped into bounds.
func (v Value) Nudge(dx, dy float64) Value {
	return Value{
		Brightness: v.Brightness + dx*Step,
		Contrast:   v.Contrast - dy*Step,
	}.Clamp()
}

func (v Value) Clamp() Value {
	return Value{
		Brightness: clamp(v.Brightness, MinBrightness, MaxBrightness),
		Contrast:   clamp(v.Contrast, MinContrast, MaxContrast),
	}
}

// Label is the live readout shown while dragging.
func (v Value) Label() string {
	return fmt.Sprintf("B:%.2f C:%.2f", v.Brightness, v.Contrast)
}

// Dragger owns the four slot values and at most one running drag.
// Not safe for concurrent use.
type Dragger struct {
	values [Slots]Value
	active int // 1-based slot, 0 when idle
	lastX  float64
	lastY  float64
}

func NewDragger() *Dragger {
	d := &Dragger{}
	for i := range d.values {
		d.values[i] = Default()
	}
	return d
}

// Begin starts a drag on a 1-based slot. Only the primary button counts.
func (d *Dragger) Begin(slot, button int, x, y float64) bool {
	if button != PrimaryButton || slot < 1 || slot > Slots {
		return false
	}
	d.active = slot
	d.lastX, d.lastY = x, y
	return true
}

// Dragging reports the active slot.
func (d *Dragger) Dragging() (int, bool) { return d.active, d.active != 0 }

// Move applies the delta since the previous pointer position.
func (d *Dragger) Move(x, y float64) (Value, bool) {
	if d.active == 0 {
		return Value{}, false
	}
	dx, dy := x-d.lastX, y-d.lastY
	d.lastX, d.lastY = x, y
	v := d.values[d.active-1].Nudge(dx, dy)
	d.values[d.active-1] = v
	return v, true
}

// End finishes the drag and returns the slot and its final value.
func (d *Dragger) End() (int, Value, bool) {
	if d.active == 0 {
		return 0, Value{}, false
	}
	slot := d.active
	d.active = 0
	return slot, d.values[slot-1], true
}

// Value returns a 1-based slot's current value.
func (d *Dragger) Value(slot int) (Value, bool) {
	if slot < 1 || slot > Slots {
		return Value{}, false
	}
	return d.values[slot-1], true
}

// Values returns all four slots.
func (d *Dragger) Values() [Slots]Value { return d.values }

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
