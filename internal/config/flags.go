package config

import (
	"flag"
	"time"
)

// Flags are the command-line overrides. Only flags given on the command line
// override file values.
type Flags struct {
	fs *flag.FlagSet

	config       string
	debug        bool
	projection   string
	scale        float64
	sensitivity  float64
	zoomLevel    float64
	tilt         float64
	animateZoom  bool
	coalesceDrag bool
	easing       string
	rotateDur    time.Duration
	data         string
	region       string
	svg          string
	width        int
	height       int
	selectIdx    int
	logFile      string
}

// RegisterFlags defines the viewer flags on fs.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{fs: fs}
	fs.StringVar(&f.config, "config", "", "Path to config file")
	fs.BoolVar(&f.debug, "debug", false, "Enable debug logging")
	fs.StringVar(&f.projection, "projection", "", "Projection: orthographic or mercator")
	fs.Float64Var(&f.scale, "scale", 0, "Projection scale (0 fits the surface)")
	fs.Float64Var(&f.sensitivity, "sensitivity", 0, "Drag sensitivity in degrees per pixel")
	fs.Float64Var(&f.zoomLevel, "zoom", 0, "Scale to zoom to when centring a feature")
	fs.Float64Var(&f.tilt, "tilt", 0, "Roll in degrees applied when centring")
	fs.BoolVar(&f.animateZoom, "animate-zoom", false, "Zoom while centring a feature")
	fs.BoolVar(&f.coalesceDrag, "coalesce-drag", false, "Apply drag moves once per frame")
	fs.StringVar(&f.easing, "easing", "", "Centering easing (linear, in-out-cubic, ...)")
	fs.DurationVar(&f.rotateDur, "rotate-duration", 0, "Centering duration")
	fs.StringVar(&f.data, "data", "", "Dataset file or directory")
	fs.StringVar(&f.region, "region", "", "Keep features centred in minLon,minLat,maxLon,maxLat")
	fs.StringVar(&f.svg, "svg", "", "Write the final frame to this SVG file and exit")
	fs.IntVar(&f.width, "width", 0, "SVG width")
	fs.IntVar(&f.height, "height", 0, "SVG height")
	fs.IntVar(&f.selectIdx, "select", -1, "Feature index to centre before export")
	fs.StringVar(&f.logFile, "log-file", "", "Write logs to this file")
	return f
}

// ConfigPath returns the explicit config path if provided via --config.
func (f *Flags) ConfigPath() string {
	return f.config
}

// Args returns the positional arguments left after parsing.
func (f *Flags) Args() []string {
	return f.fs.Args()
}

// apply copies the flags that were set onto cfg.
func (f *Flags) apply(cfg *Config) {
	f.fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "debug":
			if f.debug {
				cfg.Logging.Level = "debug"
			}
		case "projection":
			cfg.View.Projection = f.projection
		case "scale":
			cfg.View.Scale = f.scale
		case "sensitivity":
			cfg.View.Sensitivity = f.sensitivity
		case "zoom":
			cfg.View.ZoomLevel = f.zoomLevel
		case "tilt":
			cfg.View.Tilt = f.tilt
		case "animate-zoom":
			cfg.Animation.AnimateZoom = f.animateZoom
		case "coalesce-drag":
			cfg.View.CoalesceDrag = f.coalesceDrag
		case "easing":
			cfg.Animation.Easing = f.easing
		case "rotate-duration":
			cfg.Animation.RotateDuration = f.rotateDur
		case "data":
			cfg.Data.Path = f.data
		case "region":
			cfg.Data.Region = f.region
		case "svg":
			cfg.Export.SVG = f.svg
		case "width":
			cfg.Export.Width = f.width
		case "height":
			cfg.Export.Height = f.height
		case "select":
			cfg.Export.Select = f.selectIdx
		case "log-file":
			cfg.Logging.LogFile = f.logFile
		}
	})
	if args := f.fs.Args(); len(args) > 0 && !f.isSet("data") {
		cfg.Data.Path = args[0]
	}
}

func (f *Flags) isSet(name string) bool {
	set := false
	f.fs.Visit(func(fl *flag.Flag) {
		if fl.Name == name {
			set = true
		}
	})
	return set
}
