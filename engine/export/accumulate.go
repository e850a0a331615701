package export

import (
	"sync"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-bulb/engine/march"
)

// maxBands caps the tasks queued per accumulation; it matches the pool's queue depth.
const maxBands = 256

// Buffer is a linear RGB image, three float32 per pixel, rows from the top.
type Buffer struct {
	Width  int
	Height int
	Pix    []float32
}

// NewBuffer allocates a zeroed buffer.
func NewBuffer(w, h int) *Buffer {
	return &Buffer{Width: w, Height: h, Pix: make([]float32, w*h*3)}
}

// At returns the color of pixel (x, y).
func (b *Buffer) At(x, y int) [3]float32 {
	i := (y*b.Width + x) * 3
	return [3]float32{b.Pix[i], b.Pix[i+1], b.Pix[i+2]}
}

// Set stores the color of pixel (x, y).
func (b *Buffer) Set(x, y int, c [3]float32) {
	i := (y*b.Width + x) * 3
	b.Pix[i], b.Pix[i+1], b.Pix[i+2] = c[0], c[1], c[2]
}

// accumulate renders every sample of j into a linear buffer and averages it. Rows are split into
// bands across the pool; each pixel sums its samples in index order, so the result does not depend
// on scheduling.
func (e *exporter) accumulate(j job) *Buffer {
	buf := NewBuffer(j.width, j.height)

	jitters := make([][2]float32, j.samples)
	for i := range jitters {
		jitters[i][0], jitters[i][1] = Jitter(i, j.samples)
	}
	inv := 1 / float32(j.samples)

	bandRows := max((j.height+maxBands-1)/maxBands, 1)
	var wg sync.WaitGroup
	taskID := 0
	for y0 := 0; y0 < j.height; y0 += bandRows {
		y1 := min(y0+bandRows, j.height)
		wg.Add(1)
		id := taskID
		taskID++
		e.pool.SubmitTask(worker.Task{
			ID: id,
			Do: func() (any, error) {
				defer wg.Done()
				renderBand(buf, j, jitters, inv, y0, y1)
				return nil, nil
			},
		})
	}
	wg.Wait()
	return buf
}

// renderBand fills rows [y0, y1) of buf.
func renderBand(buf *Buffer, j job, jitters [][2]float32, inv float32, y0, y1 int) {
	f := march.Frame{
		Width:  j.width,
		Height: j.height,
		Time:   j.time,
		Delta:  defaultDelta,
		Index:  j.frame,
	}
	for y := y0; y < y1; y++ {
		for x := 0; x < j.width; x++ {
			var sum [3]float32
			for _, jit := range jitters {
				f.JitterX, f.JitterY = jit[0], jit[1]
				c := march.Render(j.state, j.settings, f, x, y)
				sum[0] += c[0]
				sum[1] += c[1]
				sum[2] += c[2]
			}
			buf.Set(x, y, [3]float32{sum[0] * inv, sum[1] * inv, sum[2] * inv})
		}
	}
}
