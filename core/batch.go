package core

import (
	"context"
	"runtime"
	"sync"

	"github.com/signalsfoundry/propagation-service/internal/logging"
	"github.com/signalsfoundry/propagation-service/model"
)

// BatchPool fans a list of independent time samples out across a fixed
// worker pool and collects the results in input order. Workers share only
// the immutable Elements value; each propagation works on its own copy of
// the SGP4 structure, so no further synchronization is needed.
type BatchPool struct {
	workers int
	prop    *Propagator
	log     logging.Logger
}

// NewBatchPool constructs a pool with the given worker count. A count of
// zero or less selects the available hardware parallelism; a count of one
// degenerates to sequential execution with the identical contract, which
// tests use for determinism checks.
func NewBatchPool(workers int, prop *Propagator, log logging.Logger) *BatchPool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if prop == nil {
		prop = NewPropagator()
	}
	if log == nil {
		log = logging.Noop()
	}
	return &BatchPool{workers: workers, prop: prop, log: log}
}

// Workers reports the configured pool size.
func (bp *BatchPool) Workers() int { return bp.workers }

// PropagateBatch propagates el at every offset in times. The returned slice
// always has len(times) entries and out[i] corresponds to times[i] no matter
// which worker finished first: results are written into the pre-sized slice
// by index, never appended in completion order. A failure at one index is
// recorded there and does not affect any other index. The call returns only
// once every sample has completed; in-flight samples are never cancelled.
func (bp *BatchPool) PropagateBatch(ctx context.Context, el *Elements, times []float64) []model.Outcome {
	out := make([]model.Outcome, len(times))
	if len(times) == 0 {
		return out
	}

	workers := bp.workers
	if workers > len(times) {
		workers = len(times)
	}

	bp.log.Debug(ctx, "propagating batch",
		logging.Int("samples", len(times)),
		logging.Int("workers", workers),
	)

	if workers <= 1 {
		for i, t := range times {
			st, err := bp.prop.Propagate(el, t)
			out[i] = model.Outcome{State: st, Err: err}
		}
		return out
	}

	indexes := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				st, err := bp.prop.Propagate(el, times[i])
				out[i] = model.Outcome{State: st, Err: err}
			}
		}()
	}

	for i := range times {
		indexes <- i
	}
	close(indexes)
	wg.Wait()

	return out
}
