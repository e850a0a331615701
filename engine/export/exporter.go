package export

import (
	"fmt"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-bulb/engine/ratelimit"
	"go.uber.org/zap"
)

// defaultDelta is the frame delta exports render with.
const defaultDelta = 1.0 / 60.0

// Exporter renders screenshots off the live loop. It owns one worker goroutine that runs one job at
// a time and a tile pool for the pixels of that job; it shares nothing mutable with its callers.
type Exporter interface {
	// Submit queues a request and returns a channel that receives exactly one Response.
	// The request's StateBuffer moves to the exporter and is set to nil on the caller's struct.
	// Submit never blocks: a full queue, a rate-limited client, or a terminated exporter are
	// reported through the channel.
	//
	// Parameters:
	//   - req: the request
	//
	// Returns:
	//   - <-chan Response: the buffered reply channel
	Submit(req *Request) <-chan Response

	// Render runs a request synchronously on the calling goroutine.
	//
	// Parameters:
	//   - req: the request
	//
	// Returns:
	//   - Result: the encoded image and its file name
	//   - error: ErrInvalidRequest, ErrTerminated or an encoding failure; never a partial result
	Render(req Request) (Result, error)

	// Terminate stops the worker goroutine. Queued jobs fail with ErrTerminated and the reply of an
	// in-flight job is discarded. Safe to call more than once.
	Terminate()
}

type envelope struct {
	req   Request
	reply chan Response
}

// exporter is the implementation of the Exporter interface.
type exporter struct {
	logger    *zap.Logger
	limiter   ratelimit.Limiter
	workers   int
	queueSize int

	pool     worker.DynamicWorkerPool
	jobs     chan envelope
	quit     chan struct{}
	quitOnce sync.Once
	done     chan struct{} // closed once run has exited and the pool is stopped
}

var _ Exporter = &exporter{}

// NewExporter creates an Exporter and starts its worker goroutine.
//
// Parameters:
//   - options: functional options
//
// Returns:
//   - Exporter: the exporter
func NewExporter(options ...ExporterBuilderOption) Exporter {
	e := newExporter(options...)
	go e.run()
	return e
}

func newExporter(options ...ExporterBuilderOption) *exporter {
	e := &exporter{
		logger:    zap.NewNop(),
		workers:   defaultWorkers(),
		queueSize: 4,
		quit:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	for _, opt := range options {
		opt(e)
	}
	e.jobs = make(chan envelope, e.queueSize)
	e.pool = worker.NewDynamicWorkerPool(e.workers, maxBands, 1*time.Second)
	return e
}

func (e *exporter) Submit(req *Request) <-chan Response {
	reply := make(chan Response, 1)
	if req == nil {
		reply <- Response{Err: fmt.Errorf("%w: nil request", ErrInvalidRequest)}
		return reply
	}

	owned := *req
	req.StateBuffer = nil

	if e.terminated() {
		reply <- Response{Err: ErrTerminated}
		return reply
	}
	if e.limiter != nil && !e.limiter.Allow(owned.ClientID) {
		e.logger.Warn("screenshot rate limited", zap.String("client", owned.ClientID))
		reply <- Response{Err: ErrRateLimited}
		return reply
	}

	select {
	case e.jobs <- envelope{req: owned, reply: reply}:
		if e.terminated() {
			e.drain()
		}
	default:
		reply <- Response{Err: ErrBusy}
	}
	return reply
}

func (e *exporter) Render(req Request) (res Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("screenshot render panicked: %v", r)
			res = Result{}
		}
	}()

	if e.terminated() {
		return Result{}, ErrTerminated
	}
	start := time.Now()
	j, err := validate(req)
	if err != nil {
		return Result{}, err
	}

	buf := e.accumulate(j)
	if j.enhance {
		AutoEnhance(buf)
	}
	buf = Denoise(buf, j.denoise)
	if !buf.finite() {
		return Result{}, fmt.Errorf("screenshot produced non-finite pixels")
	}

	img := ToImage(buf)
	if err := DrawWatermark(img, j.mark); err != nil {
		return Result{}, err
	}
	data, err := EncodePNG(img)
	if err != nil {
		return Result{}, err
	}

	e.logger.Info("screenshot rendered",
		zap.String("file", j.fileName),
		zap.Int("width", j.width),
		zap.Int("height", j.height),
		zap.Int("samples", j.samples),
		zap.Duration("elapsed", time.Since(start)),
	)
	return Result{PNG: data, FileName: j.fileName}, nil
}

func (e *exporter) Terminate() {
	e.quitOnce.Do(func() {
		close(e.quit)
	})
}

func (e *exporter) terminated() bool {
	select {
	case <-e.quit:
		return true
	default:
		return false
	}
}

// run is the worker goroutine. It exits on Terminate, failing anything still queued.
func (e *exporter) run() {
	defer close(e.done)
	defer e.pool.Stop()
	for {
		select {
		case <-e.quit:
			e.drain()
			return
		case env := <-e.jobs:
			res, err := e.Render(env.req)
			if e.terminated() {
				env.reply <- Response{Err: ErrTerminated}
				e.drain()
				return
			}
			if err != nil {
				e.logger.Error("screenshot failed", zap.String("client", env.req.ClientID), zap.Error(err))
			}
			env.reply <- Response{Result: res, Err: err}
		}
	}
}

func (e *exporter) drain() {
	for {
		select {
		case env := <-e.jobs:
			env.reply <- Response{Err: ErrTerminated}
		default:
			return
		}
	}
}
