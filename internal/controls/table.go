// Package controls binds UI control ids to typed getters and setters.
//
// The table is built once at startup and validated for completeness; lookups
// of unbound ids are reported rather than panicking so early events arriving
// before setup finishes can be skipped.
package controls

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
)

var (
	// ErrUnbound is returned for ids that have no binding.
	ErrUnbound = errors.New("controls: unbound control")
	// ErrNotFinite rejects NaN and infinite numeric values.
	ErrNotFinite = errors.New("controls: value not finite")
)

// ID names a control, e.g. "slider1_img3".
type ID string

// Slots is the number of image slots.
const Slots = 4

const (
	ModeID          ID = "mixMode"
	RegionEnabledID ID = "regionEnabled"
	TargetOutputID  ID = "targetOutput"
)

// SliderID is the weight slider for axis (1|2) of a 1-based slot.
func SliderID(axis, slot int) ID { return ID(fmt.Sprintf("slider%d_img%d", axis, slot)) }

// RadioID is the region-policy radio group for axis (1|2) of a 1-based slot.
func RadioID(axis, slot int) ID { return ID(fmt.Sprintf("r%d_img%d", axis, slot)) }

// SelectID is the component-type selector of a 1-based slot.
func SelectID(slot int) ID { return ID(fmt.Sprintf("ftSelect%d", slot)) }

// Kind is the value type a control carries.
type Kind int

const (
	Float Kind = iota
	Text
	Index
)

func (k Kind) String() string {
	switch k {
	case Float:
		return "float"
	case Text:
		return "text"
	case Index:
		return "index"
	}
	return "unknown"
}

// FloatBinding reads and writes a numeric control.
type FloatBinding struct {
	Get func() float64
	Set func(float64)
}

// TextBinding reads and writes a string control (radio group, mode select).
type TextBinding struct {
	Get func() string
	Set func(string)
}

// IndexBinding reads and writes a select's index; Len reports option count.
type IndexBinding struct {
	Get func() int
	Set func(int)
	Len func() int
}

// Table maps control ids to bindings.
type Table struct {
	floats  map[ID]FloatBinding
	texts   map[ID]TextBinding
	indices map[ID]IndexBinding
}

func NewTable() *Table {
	return &Table{
		floats:  map[ID]FloatBinding{},
		texts:   map[ID]TextBinding{},
		indices: map[ID]IndexBinding{},
	}
}

func (t *Table) BindFloat(id ID, b FloatBinding) { t.floats[id] = b }
func (t *Table) BindText(id ID, b TextBinding)   { t.texts[id] = b }
func (t *Table) BindIndex(id ID, b IndexBinding) { t.indices[id] = b }

// Kind reports the kind of id's binding.
func (t *Table) Kind(id ID) (Kind, bool) {
	if _, ok := t.floats[id]; ok {
		return Float, true
	}
	if _, ok := t.texts[id]; ok {
		return Text, true
	}
	if _, ok := t.indices[id]; ok {
		return Index, true
	}
	return 0, false
}

func (t *Table) Float(id ID) (float64, bool) {
	b, ok := t.floats[id]
	if !ok || b.Get == nil {
		return 0, false
	}
	return b.Get(), true
}

func (t *Table) SetFloat(id ID, v float64) bool {
	b, ok := t.floats[id]
	if !ok || b.Set == nil {
		return false
	}
	b.Set(v)
	return true
}

func (t *Table) Text(id ID) (string, bool) {
	b, ok := t.texts[id]
	if !ok || b.Get == nil {
		return "", false
	}
	return b.Get(), true
}

func (t *Table) SetText(id ID, v string) bool {
	b, ok := t.texts[id]
	if !ok || b.Set == nil {
		return false
	}
	b.Set(v)
	return true
}

func (t *Table) Index(id ID) (int, bool) {
	b, ok := t.indices[id]
	if !ok || b.Get == nil {
		return 0, false
	}
	return b.Get(), true
}

func (t *Table) SetIndex(id ID, v int) bool {
	b, ok := t.indices[id]
	if !ok || b.Set == nil {
		return false
	}
	b.Set(v)
	return true
}

// Set writes a loosely typed value (as received from a client) to id,
// converting it to the binding's kind.
func (t *Table) Set(id ID, v any) error {
	kind, ok := t.Kind(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnbound, id)
	}
	switch kind {
	case Float:
		f, err := toFloat(v)
		if err != nil {
			return fmt.Errorf("controls: %s: %w", id, err)
		}
		t.SetFloat(id, f)
	case Index:
		f, err := toFloat(v)
		if err != nil {
			return fmt.Errorf("controls: %s: %w", id, err)
		}
		t.SetIndex(id, int(f))
	case Text:
		switch s := v.(type) {
		case string:
			t.SetText(id, s)
		case bool:
			t.SetText(id, strconv.FormatBool(s))
		default:
			return fmt.Errorf("controls: %s: want string, got %T", id, v)
		}
	}
	return nil
}

// Validate returns every required id that has no binding.
func (t *Table) Validate(required []ID) error {
	var errs []error
	for _, id := range required {
		if _, ok := t.Kind(id); !ok {
			errs = append(errs, fmt.Errorf("%w: %s", ErrUnbound, id))
		}
	}
	return errors.Join(errs...)
}

// IDs lists every bound id, sorted.
func (t *Table) IDs() []ID {
	var out []ID
	for id := range t.floats {
		out = append(out, id)
	}
	for id := range t.texts {
		out = append(out, id)
	}
	for id := range t.indices {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Required is the full set of ids the mixing console expects.
func Required() []ID {
	ids := []ID{ModeID, RegionEnabledID}
	for slot := 1; slot <= Slots; slot++ {
		for axis := 1; axis <= 2; axis++ {
			ids = append(ids, SliderID(axis, slot), RadioID(axis, slot))
		}
		ids = append(ids, SelectID(slot))
	}
	return ids
}

func toFloat(v any) (float64, error) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case string:
		var err error
		if f, err = strconv.ParseFloat(n, 64); err != nil {
			return 0, err
		}
	default:
		return 0, fmt.Errorf("want number, got %T", v)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %v", ErrNotFinite, f)
	}
	return f, nil
}
