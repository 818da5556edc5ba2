// Package mix defines the mixing vocabulary shared by the console and the
// backend: modes, region policies, component kinds and the process_ft payload.
package mix

import "fmt"

// Mode selects which pair of frequency components is weighted.
type Mode string

const (
	MagnitudePhase Mode = "magnitude_phase"
	RealImaginary  Mode = "real_imaginary"
)

// ParseMode accepts the wire names of both modes.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case MagnitudePhase, RealImaginary:
		return Mode(s), nil
	}
	return "", fmt.Errorf("mix: unknown mode %q", s)
}

// Policy selects which part of the region mask a component keeps.
type Policy string

const (
	Inner Policy = "inner"
	Outer Policy = "outer"
)

func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case Inner, Outer:
		return Policy(s), nil
	}
	return "", fmt.Errorf("mix: unknown region policy %q", s)
}

// Component is a derived view of an image's transform, or the image itself.
type Component string

const (
	Magnitude Component = "magnitude"
	Phase     Component = "phase"
	Real      Component = "real"
	Imaginary Component = "imaginary"
	Image     Component = "image"
)

// Label is the display name of c.
func (c Component) Label() string {
	switch c {
	case Magnitude:
		return "Magnitude"
	case Phase:
		return "Phase"
	case Real:
		return "Real"
	case Imaginary:
		return "Imaginary"
	case Image:
		return "Image"
	}
	return string(c)
}

// Components lists the selectable components for m, in selector order.
func Components(m Mode) []Component {
	if m == RealImaginary {
		return []Component{Real, Imaginary}
	}
	return []Component{Magnitude, Phase}
}

// Labels returns the two weighting-axis labels for m.
func Labels(m Mode) (string, string) {
	c := Components(m)
	return c[0].Label(), c[1].Label()
}

// Reselect keeps a selector's previous index when it is still in range of n
// options, otherwise falls back to 0.
func Reselect(old, n int) int {
	if old >= 0 && old < n {
		return old
	}
	return 0
}

// Options returns the wire values of Components(m).
func Options(m Mode) []string {
	cs := Components(m)
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = string(c)
	}
	return out
}
