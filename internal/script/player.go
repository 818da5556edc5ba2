// Package script replays recorded console interactions: uploads, region
// drags, control edits, port switches and brightness/contrast drags.
package script

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultFrames is used when a drag does not say how many moves to make.
const DefaultFrames = 10

// Parse decodes a YAML (or JSON) program and validates it.
func Parse(data []byte) (Program, error) {
	var p Program
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Program{}, fmt.Errorf("script: %w", err)
	}
	return p, p.Validate()
}

// LoadFile reads and parses a program file.
func LoadFile(path string) (Program, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Program{}, err
	}
	return Parse(b)
}

// Validate checks the version and that every step holds exactly one action.
func (p Program) Validate() error {
	if p.Version != Version {
		return fmt.Errorf("script: version %q, want %q", p.Version, Version)
	}
	if len(p.Steps) == 0 {
		return errors.New("script: program has no steps")
	}
	var errs []error
	for i, s := range p.Steps {
		n := 0
		for _, set := range []bool{s.Upload != nil, s.Drag != nil, s.Control != nil, s.SwitchPort != nil, s.BCDrag != nil, s.Refresh} {
			if set {
				n++
			}
		}
		if n != 1 {
			errs = append(errs, fmt.Errorf("script: step %d has %d actions", i, n))
		}
		if s.Drag != nil && !ValidEase(s.Drag.Ease) {
			errs = append(errs, fmt.Errorf("script: step %d: unknown ease %q", i, s.Drag.Ease))
		}
	}
	return errors.Join(errs...)
}

// NewPlayer constructs a Player with provided hooks.
func NewPlayer(h Hooks) *Player {
	return &Player{State: Idle, hooks: h}
}

// Load replaces the current program and rewinds.
func (p *Player) Load(prog Program) error {
	if err := prog.Validate(); err != nil {
		return err
	}
	p.prog = prog
	p.idx = 0
	p.State = Idle
	return nil
}

// Index is the next step to run.
func (p *Player) Index() int { return p.idx }

// Step runs the next step. It returns false once the program is done.
func (p *Player) Step(ctx context.Context) (bool, error) {
	if p.idx >= len(p.prog.Steps) {
		p.State = Done
		return false, nil
	}
	p.State = Running
	s := p.prog.Steps[p.idx]
	p.idx++
	if err := p.run(ctx, s); err != nil {
		return true, fmt.Errorf("script: step %d: %w", p.idx-1, err)
	}
	if p.idx >= len(p.prog.Steps) {
		p.State = Done
		return false, nil
	}
	return true, nil
}

// Run plays every remaining step, stopping at the first error.
func (p *Player) Run(ctx context.Context) error {
	for {
		more, err := p.Step(ctx)
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
}

func (p *Player) run(ctx context.Context, s Step) error {
	h := p.hooks
	switch {
	case s.Upload != nil:
		if h.Upload == nil {
			return nil
		}
		return h.Upload(s.Upload.Slot, s.Upload.Path)

	case s.Drag != nil:
		d := s.Drag
		if h.PointerDown != nil {
			if err := h.PointerDown(d.Surface, d.From.X, d.From.Y); err != nil {
				return err
			}
		}
		frames := d.Frames
		if frames <= 0 {
			frames = DefaultFrames
		}
		if err := p.moves(ctx, path(d.From, d.To, frames, d.Ease)); err != nil {
			return err
		}
		if h.PointerUp != nil {
			h.PointerUp()
		}

	case s.Control != nil:
		if h.SetControl != nil {
			return h.SetControl(s.Control.ID, s.Control.Value)
		}

	case s.SwitchPort != nil:
		if h.SwitchPort != nil {
			return h.SwitchPort(s.SwitchPort.Port)
		}

	case s.BCDrag != nil:
		d := s.BCDrag
		if h.BCDown != nil && !h.BCDown(d.Slot, 0, 0, 0) {
			return fmt.Errorf("bc drag on slot %d refused", d.Slot)
		}
		if err := p.moves(ctx, path(Point{}, Point{X: d.DX, Y: d.DY}, d.Frames, "linear")); err != nil {
			return err
		}
		if h.PointerUp != nil {
			h.PointerUp()
		}

	case s.Refresh:
		if h.RefreshMix != nil {
			h.RefreshMix()
		}
	}
	return nil
}

func (p *Player) moves(ctx context.Context, pts []Point) error {
	for _, pt := range pts {
		if err := ctx.Err(); err != nil {
			return err
		}
		if p.hooks.PointerMove != nil {
			p.hooks.PointerMove(pt.X, pt.Y)
		}
		if p.FrameDelay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(p.FrameDelay):
			}
		}
	}
	return nil
}
