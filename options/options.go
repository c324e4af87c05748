package options

import "flag"

type OverlayOptions struct {
	ConfigFile   *string
	MeshFile     *string
	MaskFile     *string
	Help         *bool
	Mode         *string // view, snapshot, record or background
	Duration     *float64
	FPS          *int
	Width        *int
	Height       *int
	OutputFile   *string
	FFMPEGPath   *string
	ShowSpecials *bool
	Opacity      *float64
	Scheme       *string
	Watch        *bool // reload the mesh when the file changes
}

// NewOverlayOptions registers every command line flag on fs.
func NewOverlayOptions(fs *flag.FlagSet) *OverlayOptions {
	return &OverlayOptions{
		ConfigFile:   fs.String("config", "", "Path to a YAML config file"),
		MeshFile:     fs.String("mesh", "", "Wavefront OBJ head mesh"),
		MaskFile:     fs.String("mask", "", "Region mask image (PNG or JPEG) in UV space"),
		Help:         fs.Bool("help", false, "Show help message"),
		Mode:         fs.String("mode", ModeView, "Run mode: view, snapshot, record or background"),
		Duration:     fs.Float64("duration", 5.0, "Duration to record in seconds"),
		FPS:          fs.Int("fps", 30, "Frames per second for recording"),
		Width:        fs.Int("width", 1280, "Width of the output"),
		Height:       fs.Int("height", 720, "Height of the output"),
		OutputFile:   fs.String("output", "", "Output file for snapshot or record mode"),
		FFMPEGPath:   fs.String("ffmpeg", "", "Path to ffmpeg executable"),
		ShowSpecials: fs.Bool("show-specials", true, "Tint special areas and the midline"),
		Opacity:      fs.Float64("opacity", -1, "Wireframe opacity in [0,1]; negative keeps the config value"),
		Scheme:       fs.String("scheme", "", "Color scheme: "+SchemeNamesList()),
		Watch:        fs.Bool("watch", false, "Reload the mesh when the file changes"),
	}
}

const (
	ModeView       = "view"
	ModeSnapshot   = "snapshot"
	ModeRecord     = "record"
	ModeBackground = "background"
)

// Apply overrides cfg with every flag that was set explicitly on fs.
func (o *OverlayOptions) Apply(fs *flag.FlagSet, cfg *Config) {
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if set["mesh"] {
		cfg.Mesh = *o.MeshFile
	}
	if set["mask"] {
		cfg.Mask = *o.MaskFile
	}
	if set["mode"] || cfg.Mode == "" {
		cfg.Mode = *o.Mode
	}
	if set["width"] || cfg.Window.Width == 0 {
		cfg.Window.Width = *o.Width
	}
	if set["height"] || cfg.Window.Height == 0 {
		cfg.Window.Height = *o.Height
	}
	if set["duration"] || cfg.Record.Duration == 0 {
		cfg.Record.Duration = *o.Duration
	}
	if set["fps"] || cfg.Record.FPS == 0 {
		cfg.Record.FPS = *o.FPS
	}
	if set["output"] {
		cfg.Record.Output = *o.OutputFile
	}
	if set["ffmpeg"] {
		cfg.Record.FFMPEG = *o.FFMPEGPath
	}
	if set["show-specials"] {
		cfg.Wireframe.ShowSpecials = *o.ShowSpecials
	}
	if set["opacity"] && *o.Opacity >= 0 {
		cfg.Wireframe.Opacity = float32(*o.Opacity)
	}
	if set["scheme"] {
		cfg.Wireframe.Scheme = *o.Scheme
		cfg.Wireframe.Color = ""
		cfg.Wireframe.SpecialColor = ""
	}
	if set["watch"] {
		cfg.Watch = *o.Watch
	}
}
