// Package session owns the console state: the shared region, both ports'
// mixing controls, brightness/contrast drags and the latest images. Input
// handlers call into a Session; it talks to the backend and publishes Events.
//
// All state sits behind one mutex. A mix request is captured and built under
// it, then sent without holding it, and its response is applied only if no
// newer request was issued for the same port in the meantime.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-ftmixer/internal/backend"
	"github.com/coreman2200/funtimes-ftmixer/internal/bc"
	"github.com/coreman2200/funtimes-ftmixer/internal/controls"
	diag "github.com/coreman2200/funtimes-ftmixer/internal/diagnostics"
	"github.com/coreman2200/funtimes-ftmixer/internal/mix"
	"github.com/coreman2200/funtimes-ftmixer/internal/ports"
	"github.com/coreman2200/funtimes-ftmixer/internal/region"
	"github.com/coreman2200/funtimes-ftmixer/internal/render"
	"github.com/coreman2200/funtimes-ftmixer/internal/selector"
)

var (
	ErrUnknownSlot    = errors.New("session: unknown slot")
	ErrUnknownSurface = errors.New("session: unknown surface")
	ErrInvalidValue   = errors.New("session: invalid control value")
)

// Backend is the subset of *backend.Client the session needs.
type Backend interface {
	Upload(ctx context.Context, slot int, filename string, r io.Reader) (backend.UploadResult, error)
	Component(ctx context.Context, slot int, c mix.Component) ([]byte, error)
	Image(ctx context.Context, slot int) ([]byte, error)
	AdjustBC(ctx context.Context, slot int, v bc.Value) error
	ProcessFT(ctx context.Context, r mix.Request) ([]byte, error)
}

// Options configure a Session.
type Options struct {
	Region  region.Region
	Policy  selector.Policy
	Style   render.Style
	Surface region.Size
	// CallTimeout bounds each backend call; zero leaves it to the client.
	CallTimeout time.Duration
}

// DefaultOptions mirror config.Default.
func DefaultOptions() Options {
	return Options{
		Region:  region.Default(),
		Style:   render.DefaultStyle(),
		Surface: region.Size{W: 200, H: 200},
	}
}

type Option func(*Session)

func WithLogger(l zerolog.Logger) Option { return func(s *Session) { s.log = l } }

// WithAsync replaces the goroutine launcher for backend round trips. Tests
// pass a synchronous runner.
func WithAsync(run func(func())) Option { return func(s *Session) { s.async = run } }

// tracker keys; ports use 1 and 2
func componentKey(slot int) int { return 10 + slot }
func imageKey(slot int) int     { return 20 + slot }

type Session struct {
	mu      sync.Mutex
	log     zerolog.Logger
	be      Backend
	opts    Options
	sel     *selector.Selector
	panel   *controls.Panel
	table   *controls.Table
	ports   *ports.Cache
	bc      *bc.Dragger
	tracker *backend.Tracker

	images  [mix.Slots][]byte
	outputs [2][]byte
	loaded  [mix.Slots]bool

	lmu       sync.RWMutex
	listeners map[string]Listener

	async   func(func())
	ctx     context.Context
	cancel  context.CancelFunc
	started time.Time
}

// New builds a session with four registered surfaces and port 1 active.
func New(be Backend, o Options, opts ...Option) (*Session, error) {
	if be == nil {
		return nil, errors.New("session: nil backend")
	}
	if o.Surface.Empty() {
		return nil, fmt.Errorf("session: %w", region.ErrEmptySurface)
	}
	mode := mix.MagnitudePhase
	panel := controls.NewPanel(string(mode), string(mix.Inner), mix.Options(mode))
	panel.AxisLabels[0], panel.AxisLabels[1] = mix.Labels(mode)
	table := controls.NewTable()
	panel.Bind(table)
	if err := table.Validate(controls.Required()); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		log:       log.With().Str("component", "session").Logger(),
		be:        be,
		opts:      o,
		sel:       selector.New(o.Region, o.Policy, o.Style),
		panel:     panel,
		table:     table,
		ports:     ports.NewCache(table),
		bc:        bc.NewDragger(),
		tracker:   backend.NewTracker(),
		listeners: map[string]Listener{},
		async:     func(f func()) { go f() },
		ctx:       ctx,
		cancel:    cancel,
		started:   time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.ports.ApplyToControls(ports.DefaultState())
	for slot := 1; slot <= mix.Slots; slot++ {
		s.sel.Register(selector.SurfaceID(slot), o.Surface)
	}
	s.sel.Redraw()
	return s, nil
}

// Close cancels in-flight backend calls.
func (s *Session) Close() { s.cancel() }

// Uptime since New.
func (s *Session) Uptime() time.Duration { return time.Since(s.started) }

// Subscribe registers l for every event and returns its id.
func (s *Session) Subscribe(l Listener) string {
	id := uuid.NewString()
	s.lmu.Lock()
	s.listeners[id] = l
	s.lmu.Unlock()
	return id
}

func (s *Session) Unsubscribe(id string) {
	s.lmu.Lock()
	delete(s.listeners, id)
	s.lmu.Unlock()
}

// Subscribers counts registered listeners.
func (s *Session) Subscribers() int {
	s.lmu.RLock()
	defer s.lmu.RUnlock()
	return len(s.listeners)
}

// emit must not be called with s.mu held.
func (s *Session) emit(evs ...Event) {
	if len(evs) == 0 {
		return
	}
	s.lmu.RLock()
	ls := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		ls = append(ls, l)
	}
	s.lmu.RUnlock()
	now := time.Now()
	for _, ev := range evs {
		if ev.At.IsZero() {
			ev.At = now
		}
		for _, l := range ls {
			l(ev)
		}
	}
}

func (s *Session) fail(code, summary string, err error, evidence map[string]any) {
	d := diag.FromError(code, summary, err, evidence)
	ev := s.log.Warn().Err(err).Str("code", code)
	for k, v := range evidence {
		ev = ev.Interface(k, v)
	}
	ev.Msg(summary)
	s.emit(Event{Kind: EventDiagnostic, Diagnostic: &d})
}

func (s *Session) callCtx() (context.Context, context.CancelFunc) {
	if s.opts.CallTimeout > 0 {
		return context.WithTimeout(s.ctx, s.opts.CallTimeout)
	}
	return context.WithCancel(s.ctx)
}

func backendCode(err error) string {
	var se *backend.StatusError
	if errors.As(err, &se) {
		return diag.BackendRejected
	}
	return diag.BackendUnreachable
}

func validSlot(slot int) bool { return slot >= 1 && slot <= mix.Slots }

// ---- region selection ----

// PointerDown starts a region drag on surface at pixel (x, y). When the
// press ends a running drag on another surface, the committed region is mixed.
// Presses during a brightness/contrast drag are ignored.
func (s *Session) PointerDown(surface int, x, y float64) error {
	s.mu.Lock()
	if _, ok := s.sel.Size(selector.SurfaceID(surface)); !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrUnknownSurface, surface)
	}
	if _, busy := s.bc.Dragging(); busy {
		s.mu.Unlock()
		s.log.Debug().Int("surface", surface).Msg("press ignored during brightness/contrast drag")
		return nil
	}
	started, ended := s.sel.BeginDrag(selector.SurfaceID(surface), region.Point{X: x, Y: y})
	s.mu.Unlock()

	if !started {
		s.log.Debug().Int("surface", surface).Msg("press ignored while dragging")
	}
	if ended {
		s.RefreshMix()
	}
	return nil
}

// PointerMove feeds a pointer position to whichever drag is running. Region
// drags take coordinates in the originating surface's pixels.
func (s *Session) PointerMove(x, y float64) {
	var ev *Event
	s.mu.Lock()
	if r, ok := s.sel.UpdateDrag(region.Point{X: x, Y: y}); ok {
		ev = &Event{Kind: EventRegion, Region: &r}
	} else if v, ok := s.bc.Move(x, y); ok {
		slot, _ := s.bc.Dragging()
		ev = &Event{Kind: EventBC, Slot: slot, BC: &v, Label: v.Label()}
	}
	s.mu.Unlock()
	if ev != nil {
		s.emit(*ev)
	}
}

// PointerUp ends any running drag. A finished region drag refreshes the mix;
// a finished brightness/contrast drag is sent to the backend.
func (s *Session) PointerUp() {
	s.mu.Lock()
	slot, v, bcEnded := s.bc.End()
	regionEnded := s.sel.EndDrag()
	s.mu.Unlock()

	if bcEnded {
		s.emit(Event{Kind: EventBC, Slot: slot, BC: &v})
		s.async(func() { s.commitBC(slot, v) })
	}
	if regionEnded {
		s.RefreshMix()
	}
}

// PointerLeave reports the pointer leaving surface.
func (s *Session) PointerLeave(surface int) {
	s.mu.Lock()
	ended := s.sel.Leave(selector.SurfaceID(surface))
	s.mu.Unlock()
	if ended {
		s.RefreshMix()
	}
}

// SetRegion replaces the region outright and refreshes the mix.
func (s *Session) SetRegion(r region.Region) {
	s.mu.Lock()
	s.sel.SetRegion(r)
	cur := s.sel.Region()
	s.mu.Unlock()
	s.emit(Event{Kind: EventRegion, Region: &cur})
	s.RefreshMix()
}

// Resize changes a surface's pixel size and redraws it.
func (s *Session) Resize(surface, w, h int) error {
	size := region.Size{W: w, H: h}
	if size.Empty() {
		return fmt.Errorf("session: resize %d: %w", surface, region.ErrEmptySurface)
	}
	s.mu.Lock()
	if _, ok := s.sel.Size(selector.SurfaceID(surface)); !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrUnknownSurface, surface)
	}
	s.sel.Register(selector.SurfaceID(surface), size)
	s.sel.Redraw()
	r := s.sel.Region()
	s.mu.Unlock()
	s.emit(Event{Kind: EventRegion, Surface: surface, Region: &r})
	return nil
}

// ---- brightness / contrast ----

// BCDown starts a brightness/contrast drag on a slot. Only the primary
// button starts one, and never while a region drag is running.
func (s *Session) BCDown(slot, button int, x, y float64) bool {
	s.mu.Lock()
	ok := s.sel.State() != selector.Dragging && s.bc.Begin(slot, button, x, y)
	var v bc.Value
	if ok {
		v, _ = s.bc.Value(slot)
	}
	s.mu.Unlock()
	if ok {
		s.emit(Event{Kind: EventBC, Slot: slot, BC: &v, Label: v.Label()})
	}
	return ok
}

func (s *Session) commitBC(slot int, v bc.Value) {
	ctx, cancel := s.callCtx()
	defer cancel()
	if err := s.be.AdjustBC(ctx, slot, v); err != nil {
		s.fail(backendCode(err), "brightness/contrast not applied", err, map[string]any{"slot": slot})
		return
	}
	s.refreshImage(slot)
	s.refreshComponent(slot)
}

// ---- controls ----

// SetControl applies a control edit by id and runs its side effects: a mode
// change relabels the panel, refetches every component and mixes; a
// component selector refetches that slot; weights, policies and the region
// toggle mix.
func (s *Session) SetControl(id controls.ID, value any) error {
	if id == controls.TargetOutputID {
		p, err := toInt(value)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidValue, id, err)
		}
		return s.SwitchPort(ports.PortID(p))
	}

	s.mu.Lock()
	kind, ok := s.table.Kind(id)
	if !ok {
		s.mu.Unlock()
		err := fmt.Errorf("%w: %s", controls.ErrUnbound, id)
		s.fail(diag.ControlUnknown, "unknown control", err, map[string]any{"id": string(id)})
		return err
	}
	if err := s.checkValue(id, kind, value); err != nil {
		s.mu.Unlock()
		return err
	}
	prevMode := s.panel.Mode
	if err := s.table.Set(id, value); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	var evs []Event
	refetch := map[int]bool{}
	doMix := false
	switch {
	case id == controls.ModeID:
		if s.panel.Mode != prevMode {
			evs = append(evs, s.relabel())
			for slot := 1; slot <= mix.Slots; slot++ {
				refetch[slot] = true
			}
		}
		doMix = true
	case isSelect(id):
		refetch[selectSlot(id)] = true
	default:
		doMix = true
	}
	s.ports.CaptureActive()
	s.mu.Unlock()

	s.emit(evs...)
	for slot := 1; slot <= mix.Slots; slot++ {
		if refetch[slot] {
			slot := slot
			s.async(func() { s.refreshComponent(slot) })
		}
	}
	if doMix {
		s.RefreshMix()
	}
	return nil
}

func (s *Session) checkValue(id controls.ID, kind controls.Kind, value any) error {
	if kind != controls.Text {
		return nil
	}
	str := fmt.Sprint(value)
	switch {
	case id == controls.ModeID:
		if _, err := mix.ParseMode(str); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidValue, err)
		}
	case id != controls.RegionEnabledID:
		if _, err := mix.ParsePolicy(str); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidValue, err)
		}
	}
	return nil
}

// relabel updates axis labels and component options for the panel's mode.
// Callers hold s.mu.
func (s *Session) relabel() Event {
	m, err := mix.ParseMode(s.panel.Mode)
	if err != nil {
		m = mix.MagnitudePhase
	}
	s.panel.AxisLabels[0], s.panel.AxisLabels[1] = mix.Labels(m)
	opts := mix.Options(m)
	for i := 0; i < mix.Slots; i++ {
		s.panel.Options[i] = append([]string(nil), opts...)
		s.panel.Selected[i] = mix.Reselect(s.panel.Selected[i], len(opts))
	}
	return Event{Kind: EventLabels, Labels: []string{s.panel.AxisLabels[0], s.panel.AxisLabels[1]}, Options: opts}
}

func isSelect(id controls.ID) bool { return selectSlot(id) != 0 }

func selectSlot(id controls.ID) int {
	for slot := 1; slot <= mix.Slots; slot++ {
		if controls.SelectID(slot) == id {
			return slot
		}
	}
	return 0
}

func toInt(v any) (int, error) {
	switch x := v.(type) {
	case int:
		return x, nil
	case float64:
		return int(x), nil
	case string:
		return strconv.Atoi(x)
	}
	return 0, fmt.Errorf("unsupported %T", v)
}

// ---- ports ----

// SwitchPort saves the live controls into the current port, restores p's
// controls and labels, then refreshes p's output.
func (s *Session) SwitchPort(p ports.PortID) error {
	s.mu.Lock()
	prevMode := s.panel.Mode
	if err := s.ports.SwitchTo(p); err != nil {
		s.mu.Unlock()
		return err
	}
	evs := []Event{{Kind: EventPort, Port: int(p)}}
	modeChanged := s.panel.Mode != prevMode
	if modeChanged {
		evs = append(evs, s.relabel())
	}
	s.mu.Unlock()

	s.emit(evs...)
	if modeChanged {
		for slot := 1; slot <= mix.Slots; slot++ {
			slot := slot
			s.async(func() { s.refreshComponent(slot) })
		}
	}
	s.RefreshMix()
	return nil
}

// ActivePort is the port the controls currently edit.
func (s *Session) ActivePort() ports.PortID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ports.Active()
}

// ---- backend round trips ----

// Upload sends an image to a slot, then refreshes its previews and the mix.
// Upload errors are returned so the caller can report the backend's reason.
func (s *Session) Upload(ctx context.Context, slot int, filename string, r io.Reader) (backend.UploadResult, error) {
	if !validSlot(slot) {
		return backend.UploadResult{}, fmt.Errorf("%w: %d", ErrUnknownSlot, slot)
	}
	res, err := s.be.Upload(ctx, slot, filename, r)
	if err != nil {
		s.log.Warn().Err(err).Int("slot", slot).Str("file", filename).Msg("upload failed")
		return res, err
	}
	s.mu.Lock()
	s.loaded[slot-1] = true
	s.mu.Unlock()
	s.log.Info().Int("slot", slot).Str("file", filename).Msg("image uploaded")

	s.async(func() {
		s.refreshImage(slot)
		s.refreshComponent(slot)
		s.RefreshMix()
	})
	return res, nil
}

// Prime fetches every slot's previews and the active port's output.
func (s *Session) Prime() {
	s.async(func() {
		for slot := 1; slot <= mix.Slots; slot++ {
			s.refreshImage(slot)
			s.refreshComponent(slot)
		}
		s.RefreshMix()
	})
}

// RefreshComponent refetches a slot's selected component preview.
func (s *Session) RefreshComponent(slot int) error {
	if !validSlot(slot) {
		return fmt.Errorf("%w: %d", ErrUnknownSlot, slot)
	}
	s.async(func() { s.refreshComponent(slot) })
	return nil
}

// RefreshMix captures the active port and asks the backend for its output.
func (s *Session) RefreshMix() {
	s.mu.Lock()
	st := s.ports.CaptureActive()
	port := s.ports.Active()
	req := st.Request(s.tracker.Next(int(port)), port, s.sel.Region(), s.panel.RegionEnabled)
	s.mu.Unlock()

	s.async(func() { s.sendMix(req) })
}

func (s *Session) sendMix(req mix.Request) {
	ctx, cancel := s.callCtx()
	defer cancel()
	lg := s.log.With().Int("port", req.Port).Uint64("request_id", req.RequestID).Logger()

	b, err := s.be.ProcessFT(ctx, req)
	if errors.Is(err, backend.ErrNoImages) {
		lg.Debug().Msg("mix skipped; no images loaded")
		return
	}
	if err != nil {
		s.fail(backendCode(err), "mix failed", err, map[string]any{"port": req.Port, "request_id": req.RequestID})
		return
	}
	if _, err := backend.DecodePNG(b); err != nil {
		s.fail(diag.ImageDecode, "mix output unreadable", err, map[string]any{"port": req.Port})
		return
	}

	s.mu.Lock()
	if !s.tracker.Latest(req.Port, req.RequestID) {
		s.mu.Unlock()
		lg.Debug().Str("code", diag.MixStale).Msg("stale mix response dropped")
		return
	}
	s.outputs[req.Port-1] = b
	s.mu.Unlock()
	s.emit(Event{Kind: EventOutput, Port: req.Port, RequestID: req.RequestID})
}

func (s *Session) refreshComponent(slot int) {
	s.mu.Lock()
	comp := mix.Component(s.panel.SelectedOption(slot))
	id := s.tracker.Next(componentKey(slot))
	s.mu.Unlock()
	if comp == "" {
		return
	}

	ctx, cancel := s.callCtx()
	defer cancel()
	b, err := s.be.Component(ctx, slot, comp)
	if err != nil {
		s.fail(backendCode(err), "component fetch failed", err, map[string]any{"slot": slot, "component": string(comp)})
		return
	}
	img, err := backend.DecodePNG(b)
	if err != nil {
		s.fail(diag.ImageDecode, "component unreadable", err, map[string]any{"slot": slot})
		return
	}

	s.mu.Lock()
	if !s.tracker.Latest(componentKey(slot), id) {
		s.mu.Unlock()
		return
	}
	s.sel.SetComponent(selector.SurfaceID(slot), img)
	s.mu.Unlock()
	s.emit(Event{Kind: EventComponent, Slot: slot, Surface: slot, Component: string(comp)})
}

func (s *Session) refreshImage(slot int) {
	id := s.tracker.Next(imageKey(slot))
	ctx, cancel := s.callCtx()
	defer cancel()
	b, err := s.be.Image(ctx, slot)
	if err != nil {
		s.fail(backendCode(err), "image fetch failed", err, map[string]any{"slot": slot})
		return
	}
	s.mu.Lock()
	if !s.tracker.Latest(imageKey(slot), id) {
		s.mu.Unlock()
		return
	}
	s.images[slot-1] = b
	s.mu.Unlock()
	s.emit(Event{Kind: EventImage, Slot: slot})
}

// ---- accessors ----

// Frame returns a copy of a surface's rendered preview.
func (s *Session) Frame(surface int) (Frame, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	img, ok := s.sel.Frame(selector.SurfaceID(surface))
	if !ok {
		return Frame{}, false
	}
	return Frame{Surface: surface, Image: img}, true
}

// Output returns the latest PNG for a port.
func (s *Session) Output(p ports.PortID) ([]byte, bool) {
	if !p.Valid() {
		return nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.outputs[p-1]
	return b, b != nil
}

// Image returns a slot's latest base image PNG.
func (s *Session) Image(slot int) ([]byte, bool) {
	if !validSlot(slot) {
		return nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.images[slot-1]
	return b, b != nil
}

// Region is the current shared region.
func (s *Session) Region() region.Region {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sel.Region()
}

// Snapshot captures the active port and returns everything a client needs to
// draw the console.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ports.CaptureActive()
	var pst [2]ports.State
	for _, p := range ports.All() {
		pst[p-1], _ = s.ports.Get(p)
	}
	_, dragging := s.sel.Active()
	_, bcDragging := s.bc.Dragging()
	snap := Snapshot{
		Region:        s.sel.Region(),
		RegionEnabled: s.panel.RegionEnabled,
		ActivePort:    int(s.ports.Active()),
		Ports:         pst,
		Mode:          s.panel.Mode,
		Labels:        s.panel.AxisLabels,
		Selected:      s.panel.Selected,
		BC:            s.bc.Values(),
		Loaded:        s.loaded,
		Dragging:      dragging,
		BCDragging:    bcDragging,
	}
	for i := range s.panel.Options {
		snap.Options[i] = append([]string(nil), s.panel.Options[i]...)
	}
	for slot := 1; slot <= mix.Slots; slot++ {
		snap.Components[slot-1] = s.panel.SelectedOption(slot)
	}
	for _, p := range ports.All() {
		snap.Outputs[p-1] = s.outputs[p-1] != nil
	}
	return snap
}
