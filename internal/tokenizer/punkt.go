package tokenizer

import (
	"context"
	"fmt"

	"github.com/born-ml/expkit/internal/logger"
	"github.com/born-ml/expkit/internal/resource"
)

// EnsurePunkt makes the punkt sentence tokenizer models available in c.
//
// It returns nil without side effects when they are already cached. A missing
// resource in offline mode yields a *resource.OfflineError; otherwise the
// models are downloaded under the cache's file lock.
func EnsurePunkt(ctx context.Context, c *resource.Cache) error {
	if err := c.Ensure(ctx, resource.Punkt); err != nil {
		return fmt.Errorf("tokenizer: ensure punkt: %w", err)
	}
	return nil
}

// PunktPath ensures the punkt models and returns where they live.
func PunktPath(ctx context.Context, c *resource.Cache) (string, error) {
	path, err := c.Path(ctx, resource.Punkt)
	if err != nil {
		return "", fmt.Errorf("tokenizer: ensure punkt: %w", err)
	}
	logger.Log.Debug("punkt available", "path", path)
	return path, nil
}
