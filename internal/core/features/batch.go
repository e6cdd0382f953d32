package features

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// ExtractBatch vectorizes a batch of signals concurrently. Each sample
// is independent and writes a disjoint output row, so failures stay
// local: a row whose extraction fails is all zeros, never an error.
// Rows beyond len(ages) reuse the last age; an empty ages slice makes
// every row fail closed to zeros.
func (e *Extractor) ExtractBatch(ctx context.Context, signals [][][]float64, fs int, ages []int) ([][Dim]float64, error) {
	out := make([][Dim]float64, len(signals))
	if len(signals) == 0 {
		return out, nil
	}

	if len(ages) == 0 {
		return out, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i := range signals {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			age := ages[min(i, len(ages)-1)]
			if f := e.Extract(signals[i], fs, nil, age); f.Success {
				out[i] = f.Vector()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
