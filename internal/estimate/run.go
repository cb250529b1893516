package estimate

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/verte-zerg/risk/internal/battle"
	"github.com/verte-zerg/risk/internal/dice"
)

// Options configures a parallel estimate.
type Options struct {
	Attackers int
	Defenders int
	Trials    int
	// Workers is the number of goroutines; values below 1 mean one.
	Workers int
	// Seed seeds worker i with Seed+i.
	Seed int64
}

// Run splits the trials across workers, each owning its own generator, and
// merges their tallies. Cancellation is observed between trials.
func Run(ctx context.Context, opts Options) (Result, error) {
	if opts.Trials <= 0 {
		panic(fmt.Sprintf("estimate: trials must be positive, got %d", opts.Trials))
	}
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > opts.Trials {
		workers = opts.Trials
	}

	partial := make([]Result, workers)
	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		share := opts.Trials / workers
		if w < opts.Trials%workers {
			share++
		}
		roller := dice.NewSeeded(opts.Seed + int64(w))
		w := w
		g.Go(func() error {
			res := NewResult(opts.Attackers, opts.Defenders)
			for i := 0; i < share; i++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				res.Record(battle.Simulate(roller, opts.Attackers, opts.Defenders))
			}
			partial[w] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	total := NewResult(opts.Attackers, opts.Defenders)
	for _, p := range partial {
		total.Merge(p)
	}
	return total, nil
}
