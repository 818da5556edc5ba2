package controls

import "math"

// Slider range in UI units.
const (
	SliderMin = 0
	SliderMax = 100
)

// Panel is the live control surface mirrored by connected clients. It holds
// the values a user can see and edit right now; per-port snapshots live in the
// ports package.
type Panel struct {
	Mode          string
	RegionEnabled bool
	Sliders       [2][Slots]float64
	Radios        [2][Slots]string
	Options       [Slots][]string
	Selected      [Slots]int
	AxisLabels    [2]string
}

// NewPanel returns a panel with zero weights, the given radio policy and
// component options on every slot.
func NewPanel(mode, policy string, options []string) *Panel {
	p := &Panel{Mode: mode, RegionEnabled: true}
	for axis := 0; axis < 2; axis++ {
		for i := 0; i < Slots; i++ {
			p.Radios[axis][i] = policy
		}
	}
	for i := 0; i < Slots; i++ {
		p.Options[i] = append([]string(nil), options...)
	}
	return p
}

// SelectedOption returns the option value chosen on a 1-based slot.
func (p *Panel) SelectedOption(slot int) string {
	i := slot - 1
	if i < 0 || i >= Slots || len(p.Options[i]) == 0 {
		return ""
	}
	idx := p.Selected[i]
	if idx < 0 || idx >= len(p.Options[i]) {
		idx = 0
	}
	return p.Options[i][idx]
}

// Bind registers every panel control on t.
func (p *Panel) Bind(t *Table) {
	t.BindText(ModeID, TextBinding{
		Get: func() string { return p.Mode },
		Set: func(v string) { p.Mode = v },
	})
	t.BindText(RegionEnabledID, TextBinding{
		Get: func() string {
			if p.RegionEnabled {
				return "true"
			}
			return "false"
		},
		Set: func(v string) { p.RegionEnabled = v == "true" || v == "1" || v == "on" },
	})
	for slot := 1; slot <= Slots; slot++ {
		i := slot - 1
		for axis := 1; axis <= 2; axis++ {
			a := axis - 1
			t.BindFloat(SliderID(axis, slot), FloatBinding{
				Get: func() float64 { return p.Sliders[a][i] },
				Set: func(v float64) { p.Sliders[a][i] = clampSlider(v) },
			})
			t.BindText(RadioID(axis, slot), TextBinding{
				Get: func() string { return p.Radios[a][i] },
				Set: func(v string) { p.Radios[a][i] = v },
			})
		}
		t.BindIndex(SelectID(slot), IndexBinding{
			Get: func() int { return p.Selected[i] },
			Set: func(v int) {
				if v < 0 || v >= len(p.Options[i]) {
					v = 0
				}
				p.Selected[i] = v
			},
			Len: func() int { return len(p.Options[i]) },
		})
	}
}

func clampSlider(v float64) float64 {
	if v < SliderMin || math.IsNaN(v) {
		return SliderMin
	}
	if v > SliderMax {
		return SliderMax
	}
	return v
}
