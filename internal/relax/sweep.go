package relax

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Sweep relaxes independent starts concurrently, at most workers at a time
// (no limit when workers <= 0). Results keep the order of starts. The
// first failing run cancels the others.
func Sweep(ctx context.Context, s *Solver, starts []*Start, workers int) ([]*Result, error) {
	results := make([]*Result, len(starts))

	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}

	for i, start := range starts {
		g.Go(func() error {
			res, err := s.Run(gctx, start)
			if err != nil {
				return fmt.Errorf("sweep run %d: %w", i, err)
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
