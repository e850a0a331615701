package export

import (
	"runtime"

	"github.com/Carmen-Shannon/oxy-bulb/engine/ratelimit"
	"go.uber.org/zap"
)

// ExporterBuilderOption is a functional option for configuring an Exporter.
type ExporterBuilderOption func(*exporter)

func defaultWorkers() int {
	return max(runtime.NumCPU()-1, 1)
}

// WithLogger sets the logger for the exporter.
//
// Parameters:
//   - logger: the zap logger, nil keeps the no-op default
//
// Returns:
//   - ExporterBuilderOption: option function to apply
func WithLogger(logger *zap.Logger) ExporterBuilderOption {
	return func(e *exporter) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithWorkers sets the number of tile workers.
//
// Parameters:
//   - n: worker count, values below 1 keep the default
//
// Returns:
//   - ExporterBuilderOption: option function to apply
func WithWorkers(n int) ExporterBuilderOption {
	return func(e *exporter) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithQueueSize sets how many jobs may wait behind the one in flight.
func WithQueueSize(n int) ExporterBuilderOption {
	return func(e *exporter) {
		if n > 0 {
			e.queueSize = n
		}
	}
}

// WithRateLimiter throttles Submit per request ClientID.
//
// Parameters:
//   - l: the limiter
//
// Returns:
//   - ExporterBuilderOption: option function to apply
func WithRateLimiter(l ratelimit.Limiter) ExporterBuilderOption {
	return func(e *exporter) {
		e.limiter = l
	}
}
