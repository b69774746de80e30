package model

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/baditaflorin/go_comment_classifier/internal/core/domain"
	"github.com/baditaflorin/go_comment_classifier/internal/ports"
	"golang.org/x/sync/errgroup"
)

// Loader builds a validated model set from a models artifact and a thresholds artifact.
type Loader struct {
	source ports.ArtifactSource
	logger ports.Logger
}

// NewLoader creates a new loader reading artifacts through source.
func NewLoader(source ports.ArtifactSource, logger ports.Logger) *Loader {
	return &Loader{source: source, logger: logger}
}

// Load fetches both artifacts concurrently and validates them against each other.
// Fetch and decode failures are returned as is; a label/threshold disagreement is
// reported as domain.ErrThresholdMismatch.
func (ld *Loader) Load(ctx context.Context, modelsRef, thresholdsRef string) (*domain.ModelSet, error) {
	start := time.Now()
	ld.logger.Info("Loading models",
		"models", modelsRef,
		"thresholds", thresholdsRef,
	)

	var (
		models     []domain.LabelModel
		thresholds domain.ThresholdTable
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		models, err = fetch(gctx, ld.source, modelsRef, DecodeModels)
		if err != nil {
			return fmt.Errorf("models artifact: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		thresholds, err = fetch(gctx, ld.source, thresholdsRef, DecodeThresholds)
		if err != nil {
			return fmt.Errorf("thresholds artifact: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	set, err := domain.NewModelSet(models, thresholds)
	if err != nil {
		return nil, err
	}

	ld.logger.Info("Models loaded",
		"labels", set.Labels(),
		"duration", time.Since(start),
	)
	return set, nil
}

func fetch[T any](ctx context.Context, source ports.ArtifactSource, ref string, decode func(io.Reader) (T, error)) (T, error) {
	var zero T
	rc, err := source.Open(ctx, ref)
	if err != nil {
		return zero, err
	}
	defer rc.Close()

	v, err := decode(rc)
	if err != nil {
		return zero, fmt.Errorf("%s: %w", ref, err)
	}
	return v, nil
}
