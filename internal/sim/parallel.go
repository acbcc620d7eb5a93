package sim

import (
	"context"
	"runtime"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Factory builds a fresh, independent simulator. Arenas are not shared
// between goroutines, so every run needs its own.
type Factory func() (*Simulator, error)

// RunBatch runs one simulation per factory concurrently and returns the
// results in factory order. The first error cancels the remaining runs.
func RunBatch(ctx context.Context, factories []Factory, cfg Config) ([]*Result, error) {
	results := make([]*Result, len(factories))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, build := range factories {
		i, build := i, build
		g.Go(func() error {
			s, err := build()
			if err != nil {
				return errors.Wrapf(err, "build run %d", i)
			}
			res, err := s.Run(ctx, cfg)
			if err != nil {
				return errors.Wrapf(err, "run %d", i)
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
