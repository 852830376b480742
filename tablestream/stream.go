// Package tablestream provides a bounded cache over one run of a
// table-extraction producer.
//
// A producer yields per-page table results in non-decreasing page order
// and is expensive to run, so the cache drains it lazily, retains only a
// small sliding window of recent entries, and answers out-of-window
// lookups by replaying a brand-new producer run. Correctness never depends
// on cache contents — a replay re-derives results from scratch — only
// performance does.
package tablestream

import (
	"errors"
	"io"
	"sync"

	"github.com/tsawler/plumbago/engine"
	"github.com/tsawler/plumbago/model"
)

// DefaultWindow is the default eviction-window size: the maximum number of
// page entries a cache retains at once.
const DefaultWindow = 2

// Cache serves point lookups into one producer's ordered output.
//
// A cache moves through three phases: fresh (no producer started),
// draining (pulling from the live producer, evicting as the window
// advances), and exhausted (the producer ended; out-of-window lookups
// replay a fresh run). All methods are safe for concurrent use; one mutex
// serializes lookups on an instance, while distinct instances never share
// state.
type Cache struct {
	mu       sync.Mutex
	factory  engine.ProducerFactory
	producer engine.Producer // live draining run; nil until first pull
	entries  map[int]model.TableSet
	window   int
	maxSeen  int // high-water mark of indices pulled from the live run
	done     bool
}

// New creates a cache over the producer runs built by factory. Every
// factory invocation must yield a fresh, independent pass over the same
// sequence. A window of zero or less retains nothing and serves every
// lookup by replay.
func New(factory engine.ProducerFactory, window int) *Cache {
	if window < 0 {
		window = 0
	}
	return &Cache{
		factory: factory,
		entries: make(map[int]model.TableSet),
		window:  window,
		maxSeen: -1,
	}
}

// Get returns the tables for the given page index. The boolean reports
// whether the producer yielded an entry for that index at all.
//
// Lookups inside the retained window are O(1). A lookup behind the
// high-water mark, after the producer is exhausted, or on a zero-window
// cache triggers a bounded replay: a fresh producer run scanned forward
// until the index is found or overshot (indices are non-decreasing, so
// overshoot proves absence).
// Otherwise the live producer is drained forward, retaining each yielded
// entry and evicting those that fall out of the window.
//
// Producer errors propagate unchanged and do not mark the cache exhausted,
// so a later Get may retry the same pull.
func (c *Cache) Get(pageIndex int) (model.TableSet, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if tables, ok := c.entries[pageIndex]; ok {
		return tables, true, nil
	}

	// With nothing retained, draining can never serve a hit; every
	// lookup goes through a replay.
	if c.window <= 0 {
		return c.replay(pageIndex)
	}

	if pageIndex < c.maxSeen || c.done {
		return c.replay(pageIndex)
	}

	for {
		if tables, ok := c.entries[pageIndex]; ok {
			return tables, true, nil
		}

		if c.producer == nil {
			p, err := c.factory()
			if err != nil {
				return nil, false, err
			}
			c.producer = p
		}

		idx, tables, err := c.producer.Next()
		if errors.Is(err, io.EOF) {
			c.done = true
			return nil, false, nil
		}
		if err != nil {
			return nil, false, err
		}

		c.entries[idx] = tables
		if idx > c.maxSeen {
			c.maxSeen = idx
		}
		c.evict(idx)
	}
}

// replay resolves a lookup from a fresh producer run, stopping as soon as
// the target index is found or overshot. The retained entries are not
// consulted or modified.
func (c *Cache) replay(pageIndex int) (model.TableSet, bool, error) {
	p, err := c.factory()
	if err != nil {
		return nil, false, err
	}
	for {
		idx, tables, err := p.Next()
		if errors.Is(err, io.EOF) {
			return nil, false, nil
		}
		if err != nil {
			return nil, false, err
		}
		if idx == pageIndex {
			return tables, true, nil
		}
		if idx > pageIndex {
			return nil, false, nil
		}
	}
}

// evict drops retained entries that fell out of the window ending at the
// newest index. Only the draining path calls it, so window >= 1 here.
func (c *Cache) evict(newest int) {
	keepFrom := newest - (c.window - 1)
	for idx := range c.entries {
		if idx < keepFrom {
			delete(c.entries, idx)
		}
	}
}

// Retained reports how many entries the cache currently holds. It never
// exceeds the window size.
func (c *Cache) Retained() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
