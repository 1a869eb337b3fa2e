package hfabric

import (
	"context"

	"github.com/hupe1980/hfabric/text"
	"golang.org/x/sync/errgroup"
)

// Warm materializes every structure of the package, decoding and checksum
// verifying all payloads. It returns the first failure, as a *PackageError.
// Structures that loaded successfully stay cached.
func (hf *HF) Warm(ctx context.Context) error {
	if err := hf.check(); err != nil {
		return err
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(openConcurrency)
	for _, c := range hf.layout.Collections() {
		g.Go(func() error {
			_, err := hf.table(ctx, c)
			return err
		})
	}
	for _, name := range sortedKeys(hf.meta.Features) {
		g.Go(func() error {
			_, err := hf.column(ctx, name)
			return err
		})
	}
	for _, lang := range text.Languages {
		g.Go(func() error {
			_, err := hf.textIndex(ctx, lang)
			return err
		})
	}
	g.Go(func() error {
		_, err := hf.matrix(ctx)
		return err
	})
	g.Go(func() error {
		_, err := hf.narrators(ctx)
		return err
	})
	return translateError(g.Wait())
}
