package application

import (
	"slices"
	"sync"

	"github.com/ericfisherdev/towerpanel/internal/domain/model"
)

// Collection is a concurrency-safe cached list of entities.
//
// Every fetch takes a generation number from begin before it goes to the
// network. A fetch result is only applied if no newer generation has been
// applied in the meantime, so a slow response can never overwrite a newer
// list. A local patch also counts as a generation, which discards fetches
// that were already in flight when the patch landed.
type Collection[T model.Entity] struct {
	mu          sync.RWMutex
	items       []T
	provisional bool
	issued      uint64
	applied     uint64
}

// NewCollection returns an empty collection.
func NewCollection[T model.Entity]() *Collection[T] {
	return &Collection[T]{items: []T{}}
}

// begin reserves the generation for a fetch that is about to start.
func (c *Collection[T]) begin() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.issued++
	return c.issued
}

// replace installs items fetched under generation gen. It reports false if
// the result is stale and was discarded.
func (c *Collection[T]) replace(gen uint64, items []T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen < c.applied {
		return false
	}
	c.items = slices.Clone(items)
	if c.items == nil {
		c.items = []T{}
	}
	c.applied = gen
	c.provisional = false
	return true
}

// apply patches the list in place.
func (c *Collection[T]) apply(change Change) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch change.Op {
	case ChangeRemove:
		c.items = slices.DeleteFunc(c.items, func(item T) bool {
			return item.EntityID() == change.ID
		})
	case ChangeUpsert:
		entity, ok := change.Entity.(T)
		if !ok {
			return
		}
		i := slices.IndexFunc(c.items, func(item T) bool {
			return item.EntityID() == entity.EntityID()
		})
		if i >= 0 {
			if change.Merge != nil {
				if merged, ok := change.Merge(c.items[i]).(T); ok {
					entity = merged
				}
			}
			c.items[i] = entity
		} else {
			c.items = append(c.items, entity)
		}
	default:
		return
	}

	c.issued++
	c.applied = c.issued
	c.provisional = true
}

// List returns a copy of the cached entities.
func (c *Collection[T]) List() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.items)
}

// Get returns the cached entity with the given ID.
func (c *Collection[T]) Get(id uint) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, item := range c.items {
		if item.EntityID() == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// Provisional reports whether the list contains local patches that the
// backend has not yet confirmed through a fetch.
func (c *Collection[T]) Provisional() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.provisional
}
