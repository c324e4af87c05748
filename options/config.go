package options

import (
	"fmt"
	"os"
	"sort"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"
)

// Scheme is a named pair of base and special wireframe colors.
type Scheme struct {
	Color        [3]float32
	SpecialColor [3]float32
}

var schemes = map[string]Scheme{
	"red":     {[3]float32{0.3, 0.0, 0.0}, [3]float32{0.0, 0.4, 0.7}},
	"green":   {[3]float32{0.0, 0.2, 0.0}, [3]float32{0.4, 0.0, 0.4}},
	"blue":    {[3]float32{0.0, 0.0, 0.3}, [3]float32{0.4, 0.75, 0.0}},
	"cyan":    {[3]float32{0.0, 0.3, 0.3}, [3]float32{0.4, 0.0, 0.0}},
	"magenta": {[3]float32{0.3, 0.0, 0.3}, [3]float32{0.0, 0.55, 0.0}},
	"yellow":  {[3]float32{0.2, 0.2, 0.0}, [3]float32{0.0, 0.0, 0.4}},
	"black":   {[3]float32{0.039, 0.04, 0.039}, [3]float32{0.0, 0.0, 0.85098}},
	"white":   {[3]float32{1.0, 1.0, 1.0}, [3]float32{0.0, 0.0, 0.4}},
	"default": {[3]float32{0.039, 0.04, 0.039}, [3]float32{0.0, 0.0, 0.85098}},
}

// MidlineColor is the default tint of the face's symmetry line (#F5029D).
var MidlineColor = [3]float32{0.960784, 0.007843, 0.615686}

// LookupScheme returns the named scheme. The empty name is "default".
func LookupScheme(name string) (Scheme, bool) {
	if name == "" {
		name = "default"
	}
	s, ok := schemes[strings.ToLower(name)]
	return s, ok
}

func SchemeNamesList() string {
	names := make([]string, 0, len(schemes))
	for n := range schemes {
		names = append(names, n)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

type WireframeConfig struct {
	// Color, SpecialColor and MidlineColor are hex strings; empty means "from scheme".
	Color          string   `yaml:"color"`
	SpecialColor   string   `yaml:"special_color"`
	MidlineColor   string   `yaml:"midline_color"`
	Opacity        float32  `yaml:"opacity"`
	Scheme         string   `yaml:"scheme"`
	ShowSpecials   bool     `yaml:"show_specials"`
	OverallOpacity float32  `yaml:"overall_opacity"`
	// SpecialGroups names the mesh groups whose edges get the special color.
	SpecialGroups  []string `yaml:"special_groups"`
}

type WindowConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

type RecordConfig struct {
	FPS      int     `yaml:"fps"`
	Duration float64 `yaml:"duration"`
	Output   string  `yaml:"output"`
	FFMPEG   string  `yaml:"ffmpeg"`
}

type Config struct {
	Wireframe WireframeConfig `yaml:"wireframe"`
	Window    WindowConfig    `yaml:"window"`
	Mesh      string          `yaml:"mesh"`
	Mask      string          `yaml:"mask"`
	Keyframes []int           `yaml:"keyframes"`
	Record    RecordConfig    `yaml:"record"`
	Mode      string          `yaml:"mode"`
	Watch     bool            `yaml:"watch"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Wireframe: WireframeConfig{
			Opacity:        0.3,
			Scheme:         "default",
			ShowSpecials:   true,
			OverallOpacity: 1.0,
		},
		Keyframes: []int{0},
	}
}

// Load reads a YAML config file on top of the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the values a run cannot recover from.
func (c *Config) Validate() error {
	switch c.Mode {
	case ModeView, ModeSnapshot, ModeRecord, ModeBackground:
	default:
		return fmt.Errorf("unknown mode %q", c.Mode)
	}
	if c.Mesh == "" {
		return fmt.Errorf("no mesh file given")
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("invalid window size %dx%d", c.Window.Width, c.Window.Height)
	}
	if c.Mode == ModeRecord && (c.Record.FPS <= 0 || c.Record.Duration <= 0) {
		return fmt.Errorf("record mode needs positive fps and duration")
	}
	if c.Wireframe.Opacity < 0 || c.Wireframe.Opacity > 1 {
		return fmt.Errorf("wireframe opacity %g outside [0,1]", c.Wireframe.Opacity)
	}
	if _, ok := LookupScheme(c.Wireframe.Scheme); !ok {
		return fmt.Errorf("unknown color scheme %q (have %s)", c.Wireframe.Scheme, SchemeNamesList())
	}
	if _, err := c.Colors(); err != nil {
		return err
	}
	return nil
}

// Colors resolves the base, special and midline display colors. Hex values win over
// the scheme.
func (c *Config) Colors() ([][3]float32, error) {
	scheme, ok := LookupScheme(c.Wireframe.Scheme)
	if !ok {
		scheme, _ = LookupScheme("default")
	}
	base, err := colorOr(c.Wireframe.Color, scheme.Color)
	if err != nil {
		return nil, fmt.Errorf("wireframe color: %w", err)
	}
	special, err := colorOr(c.Wireframe.SpecialColor, scheme.SpecialColor)
	if err != nil {
		return nil, fmt.Errorf("special color: %w", err)
	}
	midline, err := colorOr(c.Wireframe.MidlineColor, MidlineColor)
	if err != nil {
		return nil, fmt.Errorf("midline color: %w", err)
	}
	return [][3]float32{base, special, midline}, nil
}

// OutputFile returns the configured output, or a default for the mode.
func (c *Config) OutputFile() string {
	if c.Record.Output != "" {
		return c.Record.Output
	}
	if c.Mode == ModeSnapshot {
		return "wireframe.png"
	}
	return "wireframe.mp4"
}

func colorOr(hex string, fallback [3]float32) ([3]float32, error) {
	if hex == "" {
		return fallback, nil
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return fallback, err
	}
	return [3]float32{float32(c.R), float32(c.G), float32(c.B)}, nil
}
