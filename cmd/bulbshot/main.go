package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Carmen-Shannon/oxy-bulb/common"
	"github.com/Carmen-Shannon/oxy-bulb/engine/camera"
	"github.com/Carmen-Shannon/oxy-bulb/engine/export"
	"github.com/Carmen-Shannon/oxy-bulb/engine/settings"
	"go.uber.org/zap"
)

type options struct {
	width     int
	height    int
	samples   int
	denoise   float64
	enhance   bool
	mode      int
	yaw       float64
	pitch     float64
	fov       float64
	position  string
	time      float64
	watermark string
	unlocked  bool
	mobile    bool
	workers   int
	out       string
	debug     bool
}

func parseFlags() options {
	var o options
	flag.IntVar(&o.width, "width", 1920, "image width")
	flag.IntVar(&o.height, "height", 1080, "image height")
	flag.IntVar(&o.samples, "samples", 0, "samples per pixel, 0 uses the profile")
	flag.Float64Var(&o.denoise, "denoise", -1, "denoise strength in [0,1], negative uses the profile")
	flag.BoolVar(&o.enhance, "enhance", true, "stretch levels before encoding")
	flag.IntVar(&o.mode, "mode", settings.ModeTint, "shading mode: 1 tint, 2 normal, 3 warped")
	flag.Float64Var(&o.yaw, "yaw", 0, "camera yaw in radians")
	flag.Float64Var(&o.pitch, "pitch", 0, "camera pitch in radians")
	flag.Float64Var(&o.fov, "fov", 0, "vertical field of view in radians, 0 uses the default")
	flag.StringVar(&o.position, "position", "0,0,3.2", "camera position as x,y,z")
	flag.Float64Var(&o.time, "time", 0, "scene time in seconds")
	flag.StringVar(&o.watermark, "watermark", "", "watermark text, empty uses the entitlement default")
	flag.BoolVar(&o.unlocked, "unlocked", false, "render with the unlocked tier and no default watermark")
	flag.BoolVar(&o.mobile, "mobile", false, "use the mobile quality tiers")
	flag.IntVar(&o.workers, "workers", 0, "render workers, 0 uses every CPU")
	flag.StringVar(&o.out, "out", "", "output file, defaults to the generated name in the current directory")
	flag.BoolVar(&o.debug, "debug", false, "development logging")
	flag.Parse()
	return o
}

func main() {
	opts := parseFlags()

	var (
		logger *zap.Logger
		err    error
	)
	if opts.debug {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}

	path, err := run(opts, logger)
	if err != nil {
		logger.Error("export failed", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
	logger.Info("export written", zap.String("path", path))
	_ = logger.Sync()
}

func run(opts options, logger *zap.Logger) (string, error) {
	req, err := buildRequest(opts)
	if err != nil {
		return "", err
	}

	exporter := export.NewExporter(
		export.WithLogger(logger),
		export.WithWorkers(opts.workers),
	)
	defer exporter.Terminate()

	res, err := exporter.Render(*req)
	if err != nil {
		return "", err
	}

	path := common.Coalesce(opts.out, res.FileName)
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, res.PNG, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

// buildRequest assembles an export request from the command line the same way the live
// application builds one from a snapshot, then applies the explicit overrides.
func buildRequest(opts options) (*export.Request, error) {
	pos, err := parsePosition(opts.position)
	if err != nil {
		return nil, err
	}

	state := camera.DefaultState()
	state.Yaw = float32(opts.yaw)
	state.Pitch = float32(opts.pitch)
	state.Position = pos
	if opts.fov > 0 {
		state.FOV = float32(opts.fov)
	}

	s := settings.Default()
	s.Mode = opts.mode
	s = s.Sanitize()

	device := settings.DeviceDesktop
	if opts.mobile {
		device = settings.DeviceMobile
	}
	snap := export.Snapshot{State: state, Settings: s, Time: float32(opts.time)}
	req := export.BuildRequest(snap, settings.StaticEntitlement(opts.unlocked), device, opts.width, opts.height)

	if opts.samples > 0 {
		req.SampleCount = opts.samples
	}
	if opts.denoise >= 0 {
		req.DenoiseStrength = float32(opts.denoise)
	}
	req.AutoEnhance = opts.enhance
	if opts.watermark != "" {
		req.WatermarkText = opts.watermark
	}
	req.ClientID = "bulbshot"
	return req, nil
}
