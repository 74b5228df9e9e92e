package store

import (
	"context"
	"errors"
	"slices"
	"sync"

	"go.uber.org/zap"
)

// Entity is anything the store can track by numeric identifier.
type Entity interface {
	EntityID() uint
}

// FetchFunc loads one snapshot of a collection: the page of items plus the
// total count behind it.
type FetchFunc[T Entity] func(ctx context.Context) ([]T, int, error)

// ErrStale reports that a fetch resolved after a newer activation superseded
// it; its result was discarded.
var ErrStale = errors.New("stale fetch result discarded")

// Collection owns the fetch-and-mutate lifecycle of one resource list. The
// snapshot it exposes is always the last successfully fetched or mutated
// state, or empty before the first load; a failed mutation never leaves a
// partial splice behind.
type Collection[T Entity] struct {
	mu        sync.Mutex
	items     []T
	count     int
	loading   bool
	errMsg    string
	gen       uint64
	lastFetch FetchFunc[T]
	logger    *zap.SugaredLogger
}

// NewCollection creates an empty collection.
func NewCollection[T Entity](logger *zap.SugaredLogger) *Collection[T] {
	return &Collection[T]{logger: logger}
}

// Activate runs exactly one fetch and replaces the snapshot on success.
// Each call bumps the generation; if another activation starts while this
// fetch is in flight, the slower result is discarded and ErrStale returned,
// so out-of-order responses can never overwrite newer state.
func (c *Collection[T]) Activate(ctx context.Context, fetch FetchFunc[T]) error {
	c.mu.Lock()
	c.gen++
	gen := c.gen
	c.loading = true
	c.lastFetch = fetch
	c.mu.Unlock()

	items, count, err := fetch(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return ErrStale
	}
	c.loading = false
	if err != nil {
		c.errMsg = errorMessage(err)
		if c.logger != nil {
			c.logger.Errorw("collection fetch failed", "error", err)
		}
		return err
	}
	c.items = items
	c.count = count
	c.errMsg = ""
	return nil
}

// Refetch re-runs the last fetch unconditionally.
func (c *Collection[T]) Refetch(ctx context.Context) error {
	c.mu.Lock()
	fetch := c.lastFetch
	c.mu.Unlock()
	if fetch == nil {
		return nil
	}
	return c.Activate(ctx, fetch)
}

// Create runs the mutating call and, on success, prepends the returned
// record so the collection stays newest-first. On failure the snapshot is
// untouched, the error is recorded, and returned for the caller to react.
func (c *Collection[T]) Create(ctx context.Context, call func(ctx context.Context) (T, error)) (T, error) {
	item, err := call(ctx)
	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.errMsg = errorMessage(err)
		if c.logger != nil {
			c.logger.Errorw("create failed", "error", err)
		}
		return item, err
	}
	c.items = append([]T{item}, c.items...)
	c.count++
	c.errMsg = ""
	return item, nil
}

// Update runs the mutating call and, on success, replaces the matching item
// in place, preserving collection order.
func (c *Collection[T]) Update(ctx context.Context, call func(ctx context.Context) (T, error)) (T, error) {
	item, err := call(ctx)
	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.errMsg = errorMessage(err)
		if c.logger != nil {
			c.logger.Errorw("update failed", "error", err)
		}
		return item, err
	}
	for i := range c.items {
		if c.items[i].EntityID() == item.EntityID() {
			c.items[i] = item
			break
		}
	}
	c.errMsg = ""
	return item, nil
}

// Delete runs the mutating call and, on success, removes the item by
// identifier.
func (c *Collection[T]) Delete(ctx context.Context, id uint, call func(ctx context.Context) error) error {
	err := call(ctx)
	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.errMsg = errorMessage(err)
		if c.logger != nil {
			c.logger.Errorw("delete failed", "id", id, "error", err)
		}
		return err
	}
	before := len(c.items)
	c.items = slices.DeleteFunc(c.items, func(it T) bool { return it.EntityID() == id })
	if len(c.items) < before {
		c.count--
	}
	c.errMsg = ""
	return nil
}

// Snapshot returns a copy of the held items.
func (c *Collection[T]) Snapshot() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.items)
}

// Count returns the total item count reported by the last fetch, adjusted by
// local creates and deletes.
func (c *Collection[T]) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

// Loading reports whether a fetch is unresolved.
func (c *Collection[T]) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// ErrMessage returns the human-readable message of the last failure, empty
// after any success.
func (c *Collection[T]) ErrMessage() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errMsg
}

func errorMessage(err error) string {
	if err == nil || err.Error() == "" {
		return "something went wrong"
	}
	return err.Error()
}
