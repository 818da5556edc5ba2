package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/coreman2200/funtimes-ftmixer/internal/region"
	"github.com/coreman2200/funtimes-ftmixer/internal/render"
)

type Backend struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

type Surface struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

func (s Surface) Size() region.Size { return region.Size{W: s.Width, H: s.Height} }

type Overlay struct {
	Stroke      string  `yaml:"stroke"`       // e.g. "#4fa08b"
	Fill        string  `yaml:"fill"`         // empty disables the fill
	FillOpacity float64 `yaml:"fill_opacity"` // 0..1
	LineWidth   int     `yaml:"line_width"`
	Dash        int     `yaml:"dash"`
}

type Drag struct {
	EndOnLeave          bool `yaml:"end_on_leave"`
	CancelOnSecondPress bool `yaml:"cancel_on_second_press"`
}

type Log struct {
	Level string `yaml:"level"` // zerolog level name
	JSON  bool   `yaml:"json"`
}

type Config struct {
	Listen    string        `yaml:"listen"`
	StaticDir string        `yaml:"static_dir,omitempty"`
	Backend   Backend       `yaml:"backend"`
	Surface   Surface       `yaml:"surface"`
	Region    region.Region `yaml:"region"`
	Overlay   Overlay       `yaml:"overlay"`
	Drag      Drag          `yaml:"drag"`
	Log       Log           `yaml:"log"`
}

// Default mirrors the console's out-of-the-box behaviour.
func Default() *Config {
	return &Config{
		Listen:  ":8080",
		Backend: Backend{URL: "http://127.0.0.1:5000", Timeout: 30 * time.Second},
		Surface: Surface{Width: 200, Height: 200},
		Region:  region.Default(),
		Overlay: Overlay{Stroke: "#4fa08b", FillOpacity: 0.2, LineWidth: 2, Dash: 5},
		Log:     Log{Level: "info"},
	}
}

// Load reads path over the defaults. A missing file is reported with
// os.ErrNotExist alongside the defaults so callers can warn and carry on.
func Load(path string) (*Config, error) {
	c := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return c, err
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return c, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return c, c.Validate()
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

// Validate checks values that would otherwise fail later at runtime.
func (c *Config) Validate() error {
	var errs []error
	if c.Backend.URL == "" {
		errs = append(errs, errors.New("config: backend.url is empty"))
	}
	if c.Surface.Width <= 0 || c.Surface.Height <= 0 {
		errs = append(errs, fmt.Errorf("config: surface size %dx%d", c.Surface.Width, c.Surface.Height))
	}
	if !c.Region.Valid() {
		errs = append(errs, fmt.Errorf("config: region %+v outside the unit square", c.Region))
	}
	if _, err := c.Style(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Style builds the overlay style.
func (c *Config) Style() (render.Style, error) {
	st := render.DefaultStyle()
	if c.Overlay.Stroke != "" {
		s, err := render.ParseColor(c.Overlay.Stroke, 1)
		if err != nil {
			return st, fmt.Errorf("config: overlay.stroke: %w", err)
		}
		st.Stroke = s
	}
	if c.Overlay.Fill != "" {
		f, err := render.ParseColor(c.Overlay.Fill, c.Overlay.FillOpacity)
		if err != nil {
			return st, fmt.Errorf("config: overlay.fill: %w", err)
		}
		st.Fill = f
		st.FillEnabled = true
	}
	if c.Overlay.LineWidth > 0 {
		st.LineWidth = c.Overlay.LineWidth
	}
	if c.Overlay.Dash >= 0 {
		st.Dash = c.Overlay.Dash
	}
	return st, nil
}
