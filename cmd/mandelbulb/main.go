package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-bulb/engine"
	"github.com/Carmen-Shannon/oxy-bulb/engine/export"
	"github.com/Carmen-Shannon/oxy-bulb/engine/input"
	"github.com/Carmen-Shannon/oxy-bulb/engine/ratelimit"
	"github.com/Carmen-Shannon/oxy-bulb/engine/renderer"
	"github.com/Carmen-Shannon/oxy-bulb/engine/settings"
	"github.com/Carmen-Shannon/oxy-bulb/engine/window"
	"go.uber.org/zap"
)

// localClient is the rate limiter key for screenshots taken from the live window.
const localClient = "local"

func init() {
	// GLFW and the wgpu surface must stay on the main thread.
	runtime.LockOSThread()
}

type options struct {
	width       int
	height      int
	statePath   string
	imagePath   string
	profile     string
	mobile      bool
	unlocked    bool
	fps         float64
	renderScale float64
	vsync       bool
	software    bool
	profiling   bool
	outDir      string
	debug       bool
}

func parseFlags() options {
	var o options
	flag.IntVar(&o.width, "width", 1280, "window width")
	flag.IntVar(&o.height, "height", 720, "window height")
	flag.StringVar(&o.statePath, "state-shader", "", "load the state feedback program from this file instead of the built-in one")
	flag.StringVar(&o.imagePath, "image-shader", "", "load the image program from this file instead of the built-in one")
	flag.StringVar(&o.profile, "profile", "", "quality tier: balanced or ultra (default picks from -unlocked)")
	flag.BoolVar(&o.mobile, "mobile", false, "use the mobile quality tiers")
	flag.BoolVar(&o.unlocked, "unlocked", false, "unlock premium exports (no watermark, ultra tier)")
	flag.Float64Var(&o.fps, "fps", 0, "frame rate cap, 0 renders on every window update")
	flag.Float64Var(&o.renderScale, "render-scale", 0, "render target scale relative to the window, 0 uses the profile's scale")
	flag.BoolVar(&o.vsync, "vsync", true, "wait for vertical sync when presenting")
	flag.BoolVar(&o.software, "software", false, "force the fallback software adapter")
	flag.BoolVar(&o.profiling, "profiling", false, "log frame statistics every second")
	flag.StringVar(&o.outDir, "out", ".", "directory screenshots are written to")
	flag.BoolVar(&o.debug, "debug", false, "development logging")
	flag.Parse()
	return o
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func main() {
	opts := parseFlags()

	logger, err := newLogger(opts.debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}

	if err := run(opts, logger); err != nil {
		logger.Error("mandelbulb exited with error", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
	_ = logger.Sync()
}

func run(opts options, logger *zap.Logger) error {
	device := settings.DeviceDesktop
	if opts.mobile {
		device = settings.DeviceMobile
	}
	profile := settings.SelectProfile(opts.unlocked, device)
	if opts.profile != "" {
		p, ok := settings.ProfileByName(opts.profile, device)
		if !ok {
			return fmt.Errorf("unknown profile %q", opts.profile)
		}
		profile = p
	}
	scale := profile.RenderScale
	if opts.renderScale > 0 {
		scale = float32(opts.renderScale)
	}
	entitlement := settings.StaticEntitlement(opts.unlocked)
	logger.Info("starting",
		zap.String("profile", profile.Name),
		zap.Stringer("device", device),
		zap.Bool("unlocked", entitlement.Unlocked()),
		zap.Float32("render_scale", scale),
	)

	win, err := window.NewWindow(
		window.WithTitle("Mandelbulb"),
		window.WithSize(opts.width, opts.height),
		window.WithSizeLimits(160, 120, window.NoLimit, window.NoLimit),
	)
	if err != nil {
		return fmt.Errorf("failed to create window: %w", err)
	}

	presentMode := renderer.PresentModeUncapped
	if opts.vsync {
		presentMode = renderer.PresentModeVSync
	}
	rend := renderer.NewRenderer(win,
		renderer.WithLogger(logger),
		renderer.WithPresentMode(presentMode),
		renderer.WithForceSoftwareRenderer(opts.software),
		renderer.WithShaderPaths(opts.statePath, opts.imagePath),
	)
	defer rend.Release()

	sampler := input.NewSampler()
	loop := engine.NewLoop(
		engine.WithBackend(rend),
		engine.WithHost(win),
		engine.WithSampler(sampler),
		engine.WithSettings(profile.Settings),
		engine.WithRenderScale(scale),
		engine.WithFrameRateLimit(opts.fps),
		engine.WithLogger(logger),
		engine.WithProfiling(opts.profiling),
	)

	exporter := export.NewExporter(
		export.WithLogger(logger),
		export.WithRateLimiter(ratelimit.NewLimiter(ratelimit.DefaultLimit, ratelimit.DefaultWindow)),
	)
	defer exporter.Terminate()

	screenshot := func() {
		req := export.BuildRequest(loop.Snapshot(), entitlement, device, win.Width(), win.Height())
		req.ClientID = localClient
		done := exporter.Submit(req)
		go func() {
			resp := <-done
			if resp.Err != nil {
				logger.Warn("screenshot failed", zap.Error(resp.Err))
				return
			}
			path, err := writePNG(opts.outDir, resp.Result)
			if err != nil {
				logger.Error("failed to save screenshot", zap.Error(err))
				return
			}
			logger.Info("screenshot saved", zap.String("path", path), zap.Int("bytes", len(resp.Result.PNG)))
		}()
	}
	onHelp := func(open bool) {
		if open {
			logger.Info("help", zap.String("controls", helpText))
			return
		}
		logger.Debug("help closed")
	}
	ctl := newControls(sampler, onHelp, screenshot, loop.Quit)

	win.SetKeyDownCallback(ctl.keyDown)
	win.SetKeyUpCallback(ctl.keyUp)
	win.SetLookCallback(ctl.look)
	win.SetClearCallback(ctl.clear)
	win.SetResizeCallback(func(w, h int) {
		logger.Debug("window resized", zap.Int("width", w), zap.Int("height", h))
	})

	start := time.Now()
	if err := loop.Run(); err != nil {
		return err
	}
	logger.Info("stopped", zap.Duration("uptime", time.Since(start)))
	return nil
}

// writePNG stores an export result under dir and returns the written path.
func writePNG(dir string, res export.Result) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}
	path := filepath.Join(dir, res.FileName)
	if err := os.WriteFile(path, res.PNG, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
