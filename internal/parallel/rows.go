package parallel

import "sync"

// MinBandRows is the smallest band handed to a worker. Below this the
// scheduling overhead outweighs the work for typical exemplar widths.
const MinBandRows = 8

var (
	defaultOnce sync.Once
	defaultPool *WorkerPool
)

// Default returns the process-wide pool, created on first use with
// GOMAXPROCS workers. It is never closed.
func Default() *WorkerPool {
	defaultOnce.Do(func() {
		defaultPool = NewWorkerPool(0)
	})
	return defaultPool
}

// Band is a half-open row range [Y0, Y1).
type Band struct {
	Y0, Y1 int
}

// Bands splits height rows into at most n bands of at least MinBandRows
// rows each (the last band may be shorter). Returns nil if height <= 0.
func Bands(height, n int) []Band {
	if height <= 0 {
		return nil
	}
	n = max(1, min(n, (height+MinBandRows-1)/MinBandRows))
	size := (height + n - 1) / n

	bands := make([]Band, 0, n)
	for y := 0; y < height; y += size {
		bands = append(bands, Band{Y0: y, Y1: min(y+size, height)})
	}
	return bands
}

// Rows runs fn over row bands of [0, height) on the default pool and waits.
// fn must only write rows inside its band.
func Rows(height int, fn func(y0, y1 int)) {
	RowsOn(Default(), height, fn)
}

// RowsOn is like Rows but uses the given pool.
func RowsOn(p *WorkerPool, height int, fn func(y0, y1 int)) {
	bands := Bands(height, p.Workers()*2)
	if len(bands) == 1 {
		fn(bands[0].Y0, bands[0].Y1)
		return
	}

	work := make([]func(), len(bands))
	for i, b := range bands {
		work[i] = func() { fn(b.Y0, b.Y1) }
	}
	p.ExecuteAll(work)
}
