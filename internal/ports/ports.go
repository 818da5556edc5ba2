// Package ports keeps one snapshot of the mixing controls per output port so a
// user can configure two mixes and switch between them without losing edits.
package ports

import (
	"errors"
	"fmt"

	"github.com/coreman2200/funtimes-ftmixer/internal/controls"
	"github.com/coreman2200/funtimes-ftmixer/internal/mix"
	"github.com/coreman2200/funtimes-ftmixer/internal/region"
)

// ErrUnknownPort is returned for port ids other than 1 and 2.
var ErrUnknownPort = errors.New("ports: unknown port")

// PortID identifies an output port.
type PortID int

const (
	Port1 PortID = 1
	Port2 PortID = 2
)

// Valid reports whether p is one of the two output ports.
func (p PortID) Valid() bool { return p == Port1 || p == Port2 }

// All lists the ports in order.
func All() []PortID { return []PortID{Port1, Port2} }

// State is one port's mixing configuration. It only holds value types, so
// copies never alias.
type State struct {
	Mode     mix.Mode              `json:"mode"`
	Sliders1 [mix.Slots]float64    `json:"sliders1"`
	Sliders2 [mix.Slots]float64    `json:"sliders2"`
	Radios1  [mix.Slots]mix.Policy `json:"radios1"`
	Radios2  [mix.Slots]mix.Policy `json:"radios2"`
}

// DefaultState has zero weights, inner policy everywhere and magnitude/phase mode.
func DefaultState() State {
	s := State{Mode: mix.MagnitudePhase}
	for i := 0; i < mix.Slots; i++ {
		s.Radios1[i] = mix.Inner
		s.Radios2[i] = mix.Inner
	}
	return s
}

// Request builds the process_ft body for this state.
func (s State) Request(id uint64, port PortID, r region.Region, regionEnabled bool) mix.Request {
	req := mix.Request{
		RequestID:       id,
		Port:            int(port),
		Mode:            s.Mode,
		RegionSettings1: s.Radios1,
		RegionSettings2: s.Radios2,
		RegionEnabled:   regionEnabled,
		Region:          mix.FromRegion(r),
	}
	for i := 0; i < mix.Slots; i++ {
		req.Weights1[i] = s.Sliders1[i] / mix.WeightScale
		req.Weights2[i] = s.Sliders2[i] / mix.WeightScale
	}
	return req
}

// Cache holds both ports' snapshots and knows which one the live controls
// currently edit. Not safe for concurrent use.
type Cache struct {
	table  *controls.Table
	active PortID
	states [2]State
}

// NewCache starts with port 1 active and default state on both ports.
func NewCache(t *controls.Table) *Cache {
	return &Cache{
		table:  t,
		active: Port1,
		states: [2]State{DefaultState(), DefaultState()},
	}
}

func (c *Cache) Active() PortID { return c.active }

// Get returns a copy of p's stored state.
func (c *Cache) Get(p PortID) (State, error) {
	if !p.Valid() {
		return State{}, fmt.Errorf("%w: %d", ErrUnknownPort, p)
	}
	return c.states[p-1], nil
}

// Put replaces p's stored state without touching the controls.
func (c *Cache) Put(p PortID, s State) error {
	if !p.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownPort, p)
	}
	c.states[p-1] = s
	return nil
}

// CaptureActive copies every live control value into the active port's state.
// Controls that are not bound yet keep their stored value.
func (c *Cache) CaptureActive() State {
	s := &c.states[c.active-1]
	if v, ok := c.table.Text(controls.ModeID); ok {
		if m, err := mix.ParseMode(v); err == nil {
			s.Mode = m
		}
	}
	for slot := 1; slot <= mix.Slots; slot++ {
		i := slot - 1
		if v, ok := c.table.Float(controls.SliderID(1, slot)); ok {
			s.Sliders1[i] = v
		}
		if v, ok := c.table.Float(controls.SliderID(2, slot)); ok {
			s.Sliders2[i] = v
		}
		if v, ok := c.table.Text(controls.RadioID(1, slot)); ok {
			if p, err := mix.ParsePolicy(v); err == nil {
				s.Radios1[i] = p
			}
		}
		if v, ok := c.table.Text(controls.RadioID(2, slot)); ok {
			if p, err := mix.ParsePolicy(v); err == nil {
				s.Radios2[i] = p
			}
		}
	}
	return *s
}

// ApplyToControls pushes s into the live controls, skipping unbound ones.
func (c *Cache) ApplyToControls(s State) {
	c.table.SetText(controls.ModeID, string(s.Mode))
	for slot := 1; slot <= mix.Slots; slot++ {
		i := slot - 1
		c.table.SetFloat(controls.SliderID(1, slot), s.Sliders1[i])
		c.table.SetFloat(controls.SliderID(2, slot), s.Sliders2[i])
		c.table.SetText(controls.RadioID(1, slot), string(s.Radios1[i]))
		c.table.SetText(controls.RadioID(2, slot), string(s.Radios2[i]))
	}
}

// SwitchTo saves the live controls into the previously active port, makes p
// active and loads p's state into the controls. It does not trigger a mix;
// the caller decides whether to refresh the output.
func (c *Cache) SwitchTo(p PortID) error {
	if !p.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownPort, p)
	}
	c.CaptureActive()
	c.active = p
	c.ApplyToControls(c.states[p-1])
	return nil
}
