package pipeline

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// maxConcurrentLookups bounds concurrent definition reads.
const maxConcurrentLookups = 8

// Lookup is the outcome of resolving one requested pipeline.
type Lookup struct {
	Name       string
	Definition *Definition
	// Err is *UnresolvedDefinitionError, *InvalidDefinitionError or an I/O
	// error. Nil when Definition is set.
	Err error
}

// LoadAll resolves names against src concurrently. Results are returned in
// request order; per-pipeline failures are recorded in Lookup.Err and do
// not stop the others.
func LoadAll(ctx context.Context, src Source, names []string) ([]Lookup, error) {
	results := make([]Lookup, len(names))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentLookups)

	for i, name := range names {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			def, err := src.Lookup(name)
			results[i] = Lookup{Name: name, Definition: def, Err: err}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
