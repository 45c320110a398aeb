// Package resolver answers "which of these usernames exist" by consulting the
// ledger first and batching the rest to the account-lookup collaborator.
package resolver

import (
	"context"
	"log/slog"
	"sync"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"checky/internal/config"
	"checky/internal/core"
	"checky/internal/ledger"
)

type Resolver struct {
	Logger *slog.Logger
	Ledger *ledger.Ledger
	API    core.AccountAPI

	Config *config.Config
}

func (r *Resolver) Init(_ context.Context) error {
	r.Logger = r.Logger.With("component", "resolver.Resolver")
	return nil
}

// Resolve returns the subset of candidates that are real accounts:
// ledger-known names first (input order), then remote discoveries (input
// order). Discoveries are written back to the ledger with default settings.
// Lookup chunks run in parallel; the method is safe for concurrent callers.
func (r *Resolver) Resolve(ctx context.Context, candidates []string) ([]string, error) {
	candidates = lo.Uniq(candidates)
	existing, unknown := r.Ledger.Partition(candidates)
	if len(unknown) == 0 {
		return existing, nil
	}

	batch := r.Config.LookupBatch
	chunks := lo.Chunk(unknown, batch)
	found := make([][]string, len(chunks))

	g, ctx := errgroup.WithContext(ctx)
	var mu sync.Mutex
	for i, chunk := range chunks {
		g.Go(func() error {
			names, err := r.API.Lookup(ctx, chunk)
			if err != nil {
				return err
			}
			discovered := make([]string, 0, len(names))
			// Lookup preserves input order; an empty slot marks a
			// username that does not exist on chain.
			for _, name := range names {
				if name != "" {
					discovered = append(discovered, name)
				}
			}
			mu.Lock()
			found[i] = discovered
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, discovered := range found {
		r.Ledger.Add(discovered...)
		existing = append(existing, discovered...)
	}
	return existing, nil
}

// Exists reports whether a single username is a real account.
func (r *Resolver) Exists(ctx context.Context, name string) (bool, error) {
	existing, err := r.Resolve(ctx, []string{name})
	if err != nil {
		return false, err
	}
	return len(existing) == 1, nil
}
