package importer

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Fanout runs a per-item operation with at most Limit in flight.
// Limit <= 1 runs the items one at a time, in order.
type Fanout[T any] struct {
	Limit int
}

// Run calls fn for every item until done or ctx is cancelled. fn handles its
// own failures; Run only reports cancellation.
func (f Fanout[T]) Run(ctx context.Context, items []T, fn func(context.Context, T)) error {
	if f.Limit <= 1 {
		for _, item := range items {
			if err := ctx.Err(); err != nil {
				return err
			}
			fn(ctx, item)
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.Limit)
	for _, item := range items {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fn(gctx, item)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
