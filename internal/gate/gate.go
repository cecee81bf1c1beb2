// Package gate bounds how many blocking operations (subprocess waits,
// serial transactions) may be in flight at once. Tool calls each run in
// their own goroutine; the gate keeps a burst of them from exhausting OS
// handles while still letting independent calls proceed concurrently.
package gate

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// DefaultWidth is the number of blocking operations allowed in flight
// when no width is configured.
const DefaultWidth = 4

// Gate is a bounded admission gate for blocking operations.
type Gate struct {
	sem *semaphore.Weighted
}

// New returns a Gate admitting at most width operations at once.
// A non-positive width falls back to DefaultWidth.
func New(width int) *Gate {
	if width <= 0 {
		width = DefaultWidth
	}
	return &Gate{sem: semaphore.NewWeighted(int64(width))}
}

// Do runs fn once a slot is available. Waiting is interrupted by ctx;
// fn itself is not.
func (g *Gate) Do(ctx context.Context, fn func() error) error {
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer g.sem.Release(1)
	return fn()
}
