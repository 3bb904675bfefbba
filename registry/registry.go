// Package registry owns the mapping from opaque handle identifiers to
// initialized satellite records, so callers can propagate repeatedly
// without re-decoding their element lines.
package registry

import (
	"errors"
	"fmt"
	"sync"

	"github.com/signalsfoundry/propagation-service/core"
	"github.com/signalsfoundry/propagation-service/internal/logging"
	"github.com/signalsfoundry/propagation-service/model"
)

var (
	// ErrHandleNotFound indicates a handle id that is unknown or was
	// already released. Releasing twice reports this, never a fault.
	ErrHandleNotFound = errors.New("satellite handle not found")
	// ErrRegistryFull indicates the configured handle capacity is
	// exhausted and no new record could be allocated.
	ErrRegistryFull = errors.New("satellite handle registry is full")
)

// Registry is an in-memory, thread-safe handle table. Each successful
// Create stores exactly one immutable satellite record and mints a fresh
// identifier for it; Release deletes the record under the table lock, so
// destruction happens at most once no matter how many callers race on it.
type Registry struct {
	mu      sync.RWMutex
	handles map[string]*core.Elements
	nextID  uint64

	// capacity caps the number of live handles; zero means unlimited.
	capacity int

	log logging.Logger
}

// New constructs an empty registry. capacity <= 0 means unlimited.
func New(capacity int, log logging.Logger) *Registry {
	if log == nil {
		log = logging.Noop()
	}
	return &Registry{
		handles:  make(map[string]*core.Elements),
		capacity: capacity,
		log:      log,
	}
}

// Create initializes a satellite record from the element lines and stores
// it under a new unique identifier. On failure nothing is stored and no
// identifier is consumed.
func (r *Registry) Create(line1, line2 string) (string, error) {
	// Initialization is pure and can run outside the table lock.
	el, err := core.Initialize(line1, line2)
	if err != nil {
		return "", err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.capacity > 0 && len(r.handles) >= r.capacity {
		return "", fmt.Errorf("%w: %d handles live", ErrRegistryFull, len(r.handles))
	}

	r.nextID++
	id := fmt.Sprintf("sat-%d", r.nextID)
	r.handles[id] = el
	return id, nil
}

// Get returns the satellite record for id. The record is immutable and may
// be used concurrently; callers must not retain it past a Release if they
// care about the registry's live-handle accounting.
func (r *Registry) Get(id string) (*core.Elements, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	el, ok := r.handles[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrHandleNotFound, id)
	}
	return el, nil
}

// Info returns a snapshot of the decoded element fields for id, including
// the two input lines exactly as supplied to Create.
func (r *Registry) Info(id string) (model.ElementSet, error) {
	el, err := r.Get(id)
	if err != nil {
		return model.ElementSet{}, err
	}
	return el.Info(), nil
}

// Release removes the handle. A second release of the same id, or a release
// of an id that never existed, reports ErrHandleNotFound.
func (r *Registry) Release(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.handles[id]; !ok {
		return fmt.Errorf("%w: %q", ErrHandleNotFound, id)
	}
	delete(r.handles, id)
	return nil
}

// Len reports the number of live handles.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handles)
}
