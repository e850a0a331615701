package profiler

import (
	"runtime"
	"time"

	"go.uber.org/zap"
)

// DefaultInterval is how often a stats line is written.
const DefaultInterval = time.Second

const mb = 1024 * 1024

// Profiler collects frame pacing and Go heap statistics from the frame loop and writes one
// structured log line per interval.
type Profiler struct {
	logger   *zap.Logger
	interval time.Duration

	windowStart time.Time
	prevFrame   time.Time
	frames      int
	worstFrame  time.Duration

	mem       runtime.MemStats
	gcSeen    uint32
	allocSeen uint64
}

// NewProfiler creates a Profiler logging through logger every DefaultInterval.
//
// Parameters:
//   - logger: the zap logger stats are written to, nil for a no-op logger
//
// Returns:
//   - *Profiler: the profiler
func NewProfiler(logger *zap.Logger) *Profiler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Profiler{
		logger:   logger.Named("profiler"),
		interval: DefaultInterval,
	}
}

// Tick records a presented frame. The first call only starts the measuring window.
//
// Parameters:
//   - now: the time the frame was presented
//   - frame: the index of the presented frame
//
// Returns:
//   - bool: true if a stats line was written
func (p *Profiler) Tick(now time.Time, frame uint64) bool {
	if p.windowStart.IsZero() {
		p.windowStart, p.prevFrame = now, now
		return false
	}

	p.frames++
	p.worstFrame = max(p.worstFrame, now.Sub(p.prevFrame))
	p.prevFrame = now

	elapsed := now.Sub(p.windowStart)
	if elapsed < p.interval {
		return false
	}

	runtime.ReadMemStats(&p.mem)
	p.logger.Info("frame stats",
		zap.Uint64("frame", frame),
		zap.Float64("fps", float64(p.frames)/elapsed.Seconds()),
		zap.Float64("worst_frame_ms", float64(p.worstFrame)/float64(time.Millisecond)),
		zap.Float64("heap_mb", float64(p.mem.Alloc)/mb),
		zap.Float64("alloc_rate_mb_s", float64(p.mem.TotalAlloc-p.allocSeen)/mb/elapsed.Seconds()),
		zap.Uint32("gc_count", p.mem.NumGC),
		zap.Uint64("gc_max_pause_us", p.maxPauseSinceLast()),
		zap.Float64("sys_mb", float64(p.mem.Sys)/mb),
	)

	p.windowStart = now
	p.frames = 0
	p.worstFrame = 0
	p.gcSeen = p.mem.NumGC
	p.allocSeen = p.mem.TotalAlloc
	return true
}

// maxPauseSinceLast scans the GC pause ring for collections since the previous stats line.
// The ring only remembers the last 256 pauses.
func (p *Profiler) maxPauseSinceLast() uint64 {
	n := p.mem.NumGC
	from := p.gcSeen
	if n-from > uint32(len(p.mem.PauseNs)) {
		from = n - uint32(len(p.mem.PauseNs))
	}
	var worst uint64
	for i := from; i < n; i++ {
		worst = max(worst, p.mem.PauseNs[i%uint32(len(p.mem.PauseNs))]/1000)
	}
	return worst
}
