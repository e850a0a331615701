package export

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-bulb/common"
	"github.com/Carmen-Shannon/oxy-bulb/engine/camera"
	"github.com/Carmen-Shannon/oxy-bulb/engine/settings"
)

// MaxDimension is the largest width or height an export may request.
const MaxDimension = 8192

var (
	// ErrInvalidRequest marks a request that cannot be rendered as given.
	ErrInvalidRequest = errors.New("invalid screenshot request")

	// ErrTerminated is returned for requests submitted to, or pending in, a terminated exporter.
	ErrTerminated = errors.New("exporter terminated")

	// ErrRateLimited is returned when the client has used its export quota.
	ErrRateLimited = errors.New("screenshot rate limit exceeded")

	// ErrBusy is returned when the job queue is full. Submit never blocks the caller.
	ErrBusy = errors.New("exporter queue full")
)

// Request is a screenshot job. StateBuffer is the packed camera state (camera.StateBytes long) and
// moves with the request: once submitted the sender no longer owns it.
type Request struct {
	Width           int
	Height          int
	Settings        settings.RenderSettings
	StateBuffer     []byte
	SampleCount     int
	AutoEnhance     bool
	DenoiseStrength float32
	WatermarkText   string
	FileName        string
	ClientID        string
	Time            float32
	Frame           uint64
}

// Result is a finished export.
type Result struct {
	PNG      []byte
	FileName string
}

// Response pairs a Result with the error that replaced it, exactly one of which is meaningful.
type Response struct {
	Result Result
	Err    error
}

// Snapshot is a copy of the live loop's state taken at request time.
type Snapshot struct {
	State    camera.State
	Settings settings.RenderSettings
	Time     float32
	Frame    uint64
}

// FileNameFor returns the default export file name for a frame index.
func FileNameFor(frame uint64) string {
	return fmt.Sprintf("mandelbulb-%d.png", frame)
}

// BuildRequest turns a live snapshot into an export request, choosing the quality profile and the
// watermark from the entitlement. The live camera carries over; the profile replaces the march
// budget and sampling parameters while keeping the user's look settings.
//
// Parameters:
//   - snap: the live snapshot
//   - e: the entitlement, nil is treated as locked
//   - device: the device class
//   - width: target width in pixels
//   - height: target height in pixels
//
// Returns:
//   - *Request: the request, ready for Submit
func BuildRequest(snap Snapshot, e settings.Entitlement, device settings.DeviceClass, width, height int) *Request {
	unlocked := e != nil && e.Unlocked()
	profile := settings.SelectProfile(unlocked, device)

	s := snap.Settings
	s.MaxSteps = max(s.MaxSteps, profile.Settings.MaxSteps)
	s.MbIters = max(s.MbIters, profile.Settings.MbIters)
	s.MaxDist = max(s.MaxDist, profile.Settings.MaxDist)
	s.MinHit = min(s.MinHit, profile.Settings.MinHit)
	s.LowPower = profile.Settings.LowPower

	return &Request{
		Width:           width,
		Height:          height,
		Settings:        s,
		StateBuffer:     snap.State.Marshal(),
		SampleCount:     profile.SampleCount,
		AutoEnhance:     profile.AutoEnhance,
		DenoiseStrength: profile.DenoiseStrength,
		WatermarkText:   settings.WatermarkFor(e),
		FileName:        FileNameFor(snap.Frame),
		Time:            snap.Time,
		Frame:           snap.Frame,
	}
}

// job is the validated, owned form of a Request.
type job struct {
	width    int
	height   int
	state    camera.State
	settings settings.RenderSettings
	samples  int
	enhance  bool
	denoise  float32
	mark     string
	fileName string
	time     float32
	frame    uint64
}

// validate checks a request and decodes its state buffer.
func validate(req Request) (job, error) {
	if req.Width < 1 || req.Height < 1 {
		return job{}, fmt.Errorf("%w: dimensions %dx%d must be at least 1", ErrInvalidRequest, req.Width, req.Height)
	}
	if req.Width > MaxDimension || req.Height > MaxDimension {
		return job{}, fmt.Errorf("%w: dimensions %dx%d exceed %d", ErrInvalidRequest, req.Width, req.Height, MaxDimension)
	}
	state, err := camera.UnmarshalState(req.StateBuffer)
	if err != nil {
		return job{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	denoise := req.DenoiseStrength
	if !common.IsFinite(denoise) {
		denoise = 0
	}
	name := req.FileName
	if name == "" {
		name = FileNameFor(req.Frame)
	}
	return job{
		width:    req.Width,
		height:   req.Height,
		state:    state,
		settings: req.Settings.Sanitize(),
		samples:  ClampSamples(req.SampleCount),
		enhance:  req.AutoEnhance,
		denoise:  common.Clamp01(denoise),
		mark:     req.WatermarkText,
		fileName: name,
		time:     req.Time,
		frame:    req.Frame,
	}, nil
}
