package core

import (
	"context"
	"errors"
	"testing"

	"github.com/signalsfoundry/propagation-service/model"
)

func batchElements(t *testing.T) *Elements {
	t.Helper()
	el, err := Initialize(issLine1, issLine2)
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	return el
}

func TestPropagateBatch_OrderAndLength(t *testing.T) {
	el := batchElements(t)
	times := []float64{0, 60, 120, 180, 240, 300, 360, 420, 480, 540}

	out := NewBatchPool(4, nil, nil).PropagateBatch(context.Background(), el, times)
	if len(out) != len(times) {
		t.Fatalf("len(out) = %d, want %d", len(out), len(times))
	}

	prop := NewPropagator()
	for i, ts := range times {
		want, err := prop.Propagate(el, ts)
		if err != nil {
			t.Fatalf("Propagate(%v): %v", ts, err)
		}
		if out[i].Err != nil {
			t.Fatalf("out[%d].Err = %v, want nil", i, out[i].Err)
		}
		if out[i].State != want {
			t.Fatalf("out[%d] does not match the single-call result for times[%d]", i, i)
		}
	}
}

// Parallel and sequential strategies must be observationally identical.
func TestPropagateBatch_WorkerCountInvariance(t *testing.T) {
	el := batchElements(t)
	times := make([]float64, 64)
	for i := range times {
		times[i] = float64(i-32) * 450
	}

	sequential := NewBatchPool(1, nil, nil).PropagateBatch(context.Background(), el, times)
	for _, workers := range []int{2, 4, 16, 128} {
		parallel := NewBatchPool(workers, nil, nil).PropagateBatch(context.Background(), el, times)
		for i := range times {
			if (parallel[i].Err == nil) != (sequential[i].Err == nil) {
				t.Fatalf("workers=%d index %d: error mismatch (%v vs %v)",
					workers, i, parallel[i].Err, sequential[i].Err)
			}
			if parallel[i].State != sequential[i].State {
				t.Fatalf("workers=%d index %d: state differs from sequential run", workers, i)
			}
		}
	}
}

// A failing sample is recorded at its own index and leaves every other
// sample untouched.
func TestPropagateBatch_PartialFailureIsolation(t *testing.T) {
	el := batchElements(t)
	times := []float64{0, 1e16, 60}

	out := NewBatchPool(3, nil, nil).PropagateBatch(context.Background(), el, times)

	if out[0].Err != nil || out[2].Err != nil {
		t.Fatalf("sibling samples must succeed, got %v and %v", out[0].Err, out[2].Err)
	}
	var pe *model.PropagationError
	if !errors.As(out[1].Err, &pe) {
		t.Fatalf("out[1].Err = %v, want *model.PropagationError", out[1].Err)
	}
}

func TestPropagateBatch_DefaultWorkers(t *testing.T) {
	pool := NewBatchPool(0, nil, nil)
	if pool.Workers() < 1 {
		t.Fatalf("Workers() = %d, want at least 1", pool.Workers())
	}
}

func TestPropagateBatch_MoreWorkersThanSamples(t *testing.T) {
	el := batchElements(t)
	out := NewBatchPool(32, nil, nil).PropagateBatch(context.Background(), el, []float64{0})
	if len(out) != 1 || out[0].Err != nil {
		t.Fatalf("single-sample batch failed: %+v", out)
	}
}
