package index

import (
	"context"
	"errors"
	"fmt"
)

// Save encodes ix and writes it to store.
func Save(ctx context.Context, store Store, ix *Index) error {
	data, err := Encode(ix)
	if err != nil {
		return err
	}
	if err := store.Save(ctx, data); err != nil {
		return fmt.Errorf("save index to %s: %w", store.Location(), err)
	}
	return nil
}

// Load reads the artifact from store. Every reason the artifact cannot serve
// want (absent, unreadable, corrupt, built for another model or corpus) is
// reported as an error wrapping ErrNotFound. Only a done context is returned
// as is.
func Load(ctx context.Context, store Store, want Meta) (*Index, error) {
	ix, err := Read(ctx, store)
	if err != nil {
		return nil, err
	}

	if got := ix.Meta(); !got.Compatible(want) {
		return nil, fmt.Errorf("%w: artifact built for model %q (dimension %d, corpus %.12s), need model %q (dimension %d, corpus %.12s)",
			ErrNotFound, got.Model, got.Dimension, got.CorpusHash, want.Model, want.Dimension, want.CorpusHash)
	}

	return ix, nil
}

// Read loads and decodes the artifact without checking what it was built for.
// Failures wrap ErrNotFound the same way Load does.
func Read(ctx context.Context, store Store) (*Index, error) {
	data, err := store.Load(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrNotFound, err)
	}

	ix, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return ix, nil
}
