package registry

import (
	"errors"
	"sync"
	"testing"

	"github.com/signalsfoundry/propagation-service/model"
)

const (
	issLine1 = "1 25544U 98067A   21275.59097222  .00000204  00000-0  10270-4 0  9990"
	issLine2 = "2 25544  51.6459 115.9059 0001817  61.3028  35.9198 15.49370953257760"
)

func TestCreateLookupRelease(t *testing.T) {
	r := New(0, nil)

	id, err := r.Create(issLine1, issLine2)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if id == "" {
		t.Fatal("Create returned an empty id")
	}
	if r.Len() != 1 {
		t.Fatalf("Len = %d, want 1", r.Len())
	}

	el, err := r.Get(id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if el.Info().CatalogNumber != 25544 {
		t.Fatalf("CatalogNumber = %d, want 25544", el.Info().CatalogNumber)
	}

	if err := r.Release(id); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if r.Len() != 0 {
		t.Fatalf("Len = %d after release, want 0", r.Len())
	}
}

func TestRelease_Idempotent(t *testing.T) {
	r := New(0, nil)
	id, err := r.Create(issLine1, issLine2)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := r.Release(id); err != nil {
		t.Fatalf("first Release: %v", err)
	}
	if err := r.Release(id); !errors.Is(err, ErrHandleNotFound) {
		t.Fatalf("second Release: want ErrHandleNotFound, got %v", err)
	}
	if err := r.Release("never-existed"); !errors.Is(err, ErrHandleNotFound) {
		t.Fatalf("unknown id: want ErrHandleNotFound, got %v", err)
	}
}

func TestLookupAfterRelease(t *testing.T) {
	r := New(0, nil)
	id, _ := r.Create(issLine1, issLine2)
	_ = r.Release(id)

	if _, err := r.Get(id); !errors.Is(err, ErrHandleNotFound) {
		t.Fatalf("Get after release: want ErrHandleNotFound, got %v", err)
	}
	if _, err := r.Info(id); !errors.Is(err, ErrHandleNotFound) {
		t.Fatalf("Info after release: want ErrHandleNotFound, got %v", err)
	}
}

func TestInfo_RoundTripsLines(t *testing.T) {
	r := New(0, nil)
	id, err := r.Create(issLine1, issLine2)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	info, err := r.Info(id)
	if err != nil {
		t.Fatalf("Info: %v", err)
	}
	if info.Line1 != issLine1 || info.Line2 != issLine2 {
		t.Fatalf("Info lines differ from Create input:\n%q\n%q", info.Line1, info.Line2)
	}
}

func TestCreate_FailedInitLeaksNothing(t *testing.T) {
	r := New(0, nil)

	_, err := r.Create("garbage", "garbage")
	var ie *model.InitializationError
	if !errors.As(err, &ie) {
		t.Fatalf("want *model.InitializationError, got %v", err)
	}
	if r.Len() != 0 {
		t.Fatalf("failed Create left %d handles behind", r.Len())
	}
}

func TestCreate_CapacityExhausted(t *testing.T) {
	r := New(1, nil)

	if _, err := r.Create(issLine1, issLine2); err != nil {
		t.Fatalf("first Create: %v", err)
	}
	_, err := r.Create(issLine1, issLine2)
	if !errors.Is(err, ErrRegistryFull) {
		t.Fatalf("second Create: want ErrRegistryFull, got %v", err)
	}
}

func TestUniqueIDs(t *testing.T) {
	r := New(0, nil)
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		id, err := r.Create(issLine1, issLine2)
		if err != nil {
			t.Fatalf("Create %d: %v", i, err)
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}

	// Released ids are never reused for the registry's lifetime.
	for id := range seen {
		_ = r.Release(id)
	}
	id, err := r.Create(issLine1, issLine2)
	if err != nil {
		t.Fatalf("Create after releases: %v", err)
	}
	if seen[id] {
		t.Fatalf("id %q was reused after release", id)
	}
}

func TestConcurrentCreateGetRelease(t *testing.T) {
	r := New(0, nil)

	const n = 32
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := r.Create(issLine1, issLine2)
			if err != nil {
				t.Errorf("Create: %v", err)
				return
			}
			if _, err := r.Get(id); err != nil {
				t.Errorf("Get: %v", err)
				return
			}
			if err := r.Release(id); err != nil {
				t.Errorf("Release: %v", err)
			}
		}()
	}
	wg.Wait()

	if r.Len() != 0 {
		t.Fatalf("Len = %d after all goroutines released, want 0", r.Len())
	}
}
