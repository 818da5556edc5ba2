// Package selector tracks the single selection region shared by all preview
// surfaces and the drag gesture that defines it.
package selector

import (
	"image"
	"sort"

	"github.com/coreman2200/funtimes-ftmixer/internal/region"
	"github.com/coreman2200/funtimes-ftmixer/internal/render"
)

// SurfaceID identifies a preview surface (one per image slot).
type SurfaceID int

// State enumerates gesture states.
type State string

const (
	Idle     State = "idle"
	Dragging State = "dragging"
)

// Policy decides the ambiguous gesture transitions.
type Policy struct {
	// EndOnLeave ends a drag when the pointer leaves the originating surface.
	EndOnLeave bool
	// CancelOnSecondPress ends the running drag when another surface is
	// pressed and starts a new one there; otherwise the press is ignored.
	CancelOnSecondPress bool
}

// Surface is one tracked preview canvas.
type Surface struct {
	ID        SurfaceID
	Size      region.Size
	Component image.Image
	Frame     *image.RGBA
}

// Selector is not safe for concurrent use; the owner serializes access.
type Selector struct {
	policy   Policy
	style    render.Style
	region   region.Region
	surfaces map[SurfaceID]*Surface

	state  State
	active SurfaceID
	anchor region.Point
}

func New(initial region.Region, policy Policy, style render.Style) *Selector {
	return &Selector{
		policy:   policy,
		style:    style,
		region:   initial.Clamp(),
		surfaces: map[SurfaceID]*Surface{},
		state:    Idle,
	}
}

// Register adds (or resizes) a surface.
func (s *Selector) Register(id SurfaceID, size region.Size) {
	if sf, ok := s.surfaces[id]; ok {
		sf.Size = size
		sf.Frame = image.NewRGBA(image.Rect(0, 0, size.W, size.H))
		return
	}
	s.surfaces[id] = &Surface{
		ID:    id,
		Size:  size,
		Frame: image.NewRGBA(image.Rect(0, 0, size.W, size.H)),
	}
}

// SetComponent stores the latest fetched component image for a surface and
// redraws it. Unknown ids are ignored.
func (s *Selector) SetComponent(id SurfaceID, img image.Image) {
	sf, ok := s.surfaces[id]
	if !ok {
		return
	}
	sf.Component = img
	s.redrawOne(sf)
}

func (s *Selector) State() State { return s.state }

// Active returns the surface being dragged on, if any.
func (s *Selector) Active() (SurfaceID, bool) {
	return s.active, s.state == Dragging
}

func (s *Selector) Region() region.Region { return s.region }

// SetRegion replaces the region and redraws every surface.
func (s *Selector) SetRegion(r region.Region) {
	s.region = r.Clamp()
	s.Redraw()
}

// BeginDrag records the anchor on surface id. It returns ended=true when a
// running drag was ended by this press (see Policy.CancelOnSecondPress), and
// started=false when the press was ignored.
func (s *Selector) BeginDrag(id SurfaceID, p region.Point) (started, ended bool) {
	sf, ok := s.surfaces[id]
	if !ok {
		return false, false
	}
	if s.state == Dragging {
		if !s.policy.CancelOnSecondPress || id == s.active {
			return false, false
		}
		ended = s.EndDrag()
	}
	s.state = Dragging
	s.active = id
	s.anchor = sf.Size.Clamp(p)
	return true, ended
}

// UpdateDrag recomputes the region from the anchor to p (in the originating
// surface's pixels) and redraws every surface.
func (s *Selector) UpdateDrag(p region.Point) (region.Region, bool) {
	if s.state != Dragging {
		return s.region, false
	}
	sf, ok := s.surfaces[s.active]
	if !ok {
		return s.region, false
	}
	r, err := region.FromDrag(s.anchor, p, sf.Size)
	if err != nil {
		return s.region, false
	}
	s.region = r
	s.Redraw()
	return r, true
}

// EndDrag returns true when a drag was running; the caller then refreshes the mix.
func (s *Selector) EndDrag() bool {
	if s.state != Dragging {
		return false
	}
	s.state = Idle
	s.active = 0
	return true
}

// Leave handles the pointer leaving surface id.
func (s *Selector) Leave(id SurfaceID) bool {
	if !s.policy.EndOnLeave || s.state != Dragging || id != s.active {
		return false
	}
	return s.EndDrag()
}

// Redraw repaints every tracked surface at its own resolution.
func (s *Selector) Redraw() {
	for _, id := range s.IDs() {
		s.redrawOne(s.surfaces[id])
	}
}

func (s *Selector) redrawOne(sf *Surface) {
	if sf.Frame == nil || sf.Frame.Bounds().Dx() != sf.Size.W || sf.Frame.Bounds().Dy() != sf.Size.H {
		sf.Frame = image.NewRGBA(image.Rect(0, 0, sf.Size.W, sf.Size.H))
	}
	render.Surface(sf.Frame, sf.Component, s.region, s.style)
}

// Frame returns a copy of the surface's last rendered frame.
func (s *Selector) Frame(id SurfaceID) (*image.RGBA, bool) {
	sf, ok := s.surfaces[id]
	if !ok || sf.Frame == nil {
		return nil, false
	}
	out := image.NewRGBA(sf.Frame.Bounds())
	copy(out.Pix, sf.Frame.Pix)
	return out, true
}

// Size returns a surface's pixel size.
func (s *Selector) Size(id SurfaceID) (region.Size, bool) {
	sf, ok := s.surfaces[id]
	if !ok {
		return region.Size{}, false
	}
	return sf.Size, true
}

// IDs lists registered surfaces in ascending order.
func (s *Selector) IDs() []SurfaceID {
	ids := make([]SurfaceID, 0, len(s.surfaces))
	for id := range s.surfaces {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
