package a

import "context"

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

type Registry interface {
	SaveStartup(ctx context.Context, id string) error
}

type Queue interface {
	Enqueue(ctx context.Context, id string) error
}

func bad(ctx context.Context, items []string, e Embedder, r Registry) {
	for _, item := range items {
		e.Embed(ctx, item)       // want "potential N\\+1: Embed called inside loop"
		r.SaveStartup(ctx, item) // want "potential N\\+1: SaveStartup called inside loop"
	}
}

func badFor(ctx context.Context, items []string, q Queue) {
	for i := 0; i < len(items); i++ {
		q.Enqueue(ctx, items[i]) // want "potential N\\+1: Enqueue called inside loop"
	}
}

func nested(ctx context.Context, groups [][]string, r Registry) {
	for _, g := range groups {
		for _, item := range g {
			r.SaveStartup(ctx, item) // want "potential N\\+1: SaveStartup called inside loop"
		}
	}
}

func suppressed(ctx context.Context, items []string, q Queue) {
	for _, item := range items {
		//nolint:loopcall // each record needs its own audit entry
		q.Enqueue(ctx, item)
		q.Enqueue(ctx, item) //nolint:loopcall
	}
}

func good(ctx context.Context, items []string, e Embedder) {
	// Batch call outside the loop.
	_, _ = e.EmbedBatch(ctx, items)
	for _, item := range items {
		_ = len(item)
	}
}
