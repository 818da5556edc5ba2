package session

import (
	"image"
	"time"

	"github.com/coreman2200/funtimes-ftmixer/internal/bc"
	diag "github.com/coreman2200/funtimes-ftmixer/internal/diagnostics"
	"github.com/coreman2200/funtimes-ftmixer/internal/mix"
	"github.com/coreman2200/funtimes-ftmixer/internal/ports"
	"github.com/coreman2200/funtimes-ftmixer/internal/region"
)

// EventKind identifies what changed.
type EventKind string

const (
	EventRegion     EventKind = "region"     // region moved or a surface resized; previews redrawn
	EventOutput     EventKind = "output"     // a port's output image was replaced
	EventImage      EventKind = "image"      // a slot's base image was refetched
	EventComponent  EventKind = "component"  // a slot's component preview was refetched
	EventLabels     EventKind = "labels"     // mode changed axis labels and options
	EventBC         EventKind = "bc"         // brightness/contrast readout
	EventPort       EventKind = "port"       // active port switched
	EventDiagnostic EventKind = "diagnostic" // a swallowed error
)

// Event carries only what changed; images are fetched separately.
type Event struct {
	Kind       EventKind        `json:"kind"`
	Region     *region.Region   `json:"region,omitempty"`
	Port       int              `json:"port,omitempty"`
	Slot       int              `json:"slot,omitempty"`
	Surface    int              `json:"surface,omitempty"`
	RequestID  uint64           `json:"request_id,omitempty"`
	Component  string           `json:"component,omitempty"`
	Labels     []string         `json:"labels,omitempty"`
	Options    []string         `json:"options,omitempty"`
	BC         *bc.Value        `json:"bc,omitempty"`
	Label      string           `json:"label,omitempty"`
	Diagnostic *diag.Diagnostic `json:"diagnostic,omitempty"`
	At         time.Time        `json:"at"`
}

// Listener receives events. It runs on the goroutine that caused the event
// and must not block.
type Listener func(Event)

// Frame is a rendered preview surface.
type Frame struct {
	Surface int
	Image   *image.RGBA
}

// Snapshot is the full console state as served to clients.
type Snapshot struct {
	Region        region.Region       `json:"region"`
	RegionEnabled bool                `json:"region_enabled"`
	ActivePort    int                 `json:"active_port"`
	Ports         [2]ports.State      `json:"ports"`
	Mode          string              `json:"mode"`
	Labels        [2]string           `json:"labels"`
	Options       [mix.Slots][]string `json:"options"`
	Selected      [mix.Slots]int      `json:"selected"`
	Components    [mix.Slots]string   `json:"components"`
	BC            [bc.Slots]bc.Value  `json:"bc"`
	Loaded        [mix.Slots]bool     `json:"loaded"`
	Outputs       [2]bool             `json:"outputs"`
	Dragging      bool                `json:"dragging"`
	BCDragging    bool                `json:"bc_dragging"`
}
