// Package classifier provides the multi-label comment classifier: text normalization
// followed by threshold scoring against a fixed set of per-label models.
package classifier

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"

	"github.com/baditaflorin/go_comment_classifier/internal/adapters/logger"
	"github.com/baditaflorin/go_comment_classifier/internal/adapters/model"
	"github.com/baditaflorin/go_comment_classifier/internal/adapters/normalizer"
	"github.com/baditaflorin/go_comment_classifier/internal/adapters/source"
	"github.com/baditaflorin/go_comment_classifier/internal/core/domain"
	"github.com/baditaflorin/go_comment_classifier/internal/core/scoring"
	"github.com/baditaflorin/go_comment_classifier/internal/ports"
	"github.com/baditaflorin/go_comment_classifier/internal/warmup"
	"github.com/baditaflorin/l"
)

// Re-exported domain types.
type (
	Response       = domain.Response
	Prediction     = domain.Prediction
	LabelModel     = domain.LabelModel
	ThresholdTable = domain.ThresholdTable
	Scorer         = domain.Scorer
	ScorerFunc     = domain.ScorerFunc
	ModelSet       = domain.ModelSet
	WarmupConfig   = warmup.WarmupConfig
)

var (
	// ErrEmptyComment is returned for an empty or whitespace-only comment.
	ErrEmptyComment = domain.ErrEmptyComment
	// ErrModelsUnavailable is returned when no label models are loaded.
	ErrModelsUnavailable = domain.ErrModelsUnavailable
	// ErrThresholdMismatch is returned by New when thresholds and models disagree.
	ErrThresholdMismatch = domain.ErrThresholdMismatch
)

// Classifier normalizes raw comments and scores them against the loaded label models.
// It is safe for concurrent use.
type Classifier struct {
	models     *domain.ModelSet
	scorer     ports.TextScorer
	logger     ports.Logger
	normalizer ports.Normalizer
	warmed     atomic.Bool
}

var _ ports.Classifier = (*Classifier)(nil)

// Option defines a functional option for configuring a Classifier.
type Option func(*classifierConfig)

type classifierConfig struct {
	Logger        ports.Logger
	Normalizer    ports.Normalizer
	Models        []domain.LabelModel
	Thresholds    domain.ThresholdTable
	ModelSet      *domain.ModelSet
	ModelsRef     string
	ThresholdsRef string
	Source        ports.ArtifactSource
	WarmUp        bool
	WarmUpConfig  warmup.WarmupConfig
}

// WithLogger sets a custom logger.
func WithLogger(lg l.Logger) Option {
	return func(cfg *classifierConfig) {
		cfg.Logger = logger.FromExisting(lg)
	}
}

// WithNormalizer sets a custom normalizer.
func WithNormalizer(n ports.Normalizer) Option {
	return func(cfg *classifierConfig) {
		cfg.Normalizer = n
	}
}

// WithLabelModels sets the label models and thresholds directly. The order of models
// decides ties between equally confident labels.
func WithLabelModels(models []LabelModel, thresholds ThresholdTable) Option {
	return func(cfg *classifierConfig) {
		cfg.Models = models
		cfg.Thresholds = thresholds
	}
}

// WithModelSet sets an already validated model set.
func WithModelSet(set *ModelSet) Option {
	return func(cfg *classifierConfig) {
		cfg.ModelSet = set
	}
}

// WithArtifacts loads models and thresholds from persisted artifacts. References are local
// paths, file://, s3:// or gs:// URIs.
func WithArtifacts(modelsRef, thresholdsRef string) Option {
	return func(cfg *classifierConfig) {
		cfg.ModelsRef = modelsRef
		cfg.ThresholdsRef = thresholdsRef
	}
}

// WithArtifactSource overrides how artifact references are opened.
func WithArtifactSource(src ports.ArtifactSource) Option {
	return func(cfg *classifierConfig) {
		cfg.Source = src
	}
}

// WithWarmUp enables system warm-up on initialization.
func WithWarmUp(enable bool) Option {
	return func(cfg *classifierConfig) {
		cfg.WarmUp = enable
	}
}

// WithWarmUpConfig sets a custom warm-up configuration.
func WithWarmUpConfig(config WarmupConfig) Option {
	return func(cfg *classifierConfig) {
		cfg.WarmUpConfig = config
		cfg.WarmUp = true
	}
}

// New creates a new Classifier.
func New(opts ...Option) (*Classifier, error) {
	return NewContext(context.Background(), opts...)
}

// NewContext creates a new Classifier, using ctx while loading artifacts.
//
// Models given with WithLabelModels are validated and any error is returned. Artifacts
// that are missing, unreadable or malformed leave the classifier without models; it
// still starts and reports Ready() == false. Artifacts whose labels and thresholds
// disagree are a configuration error and fail New with ErrThresholdMismatch.
func NewContext(ctx context.Context, opts ...Option) (*Classifier, error) {
	config := &classifierConfig{
		WarmUp:       false,
		WarmUpConfig: warmup.DefaultWarmupConfig(),
	}

	// Apply options
	for _, opt := range opts {
		opt(config)
	}

	// Set up logger if not provided
	if config.Logger == nil {
		var err error
		config.Logger, err = logger.NewStdLogger()
		if err != nil {
			return nil, err
		}
	}

	// Set up normalizer if not provided
	if config.Normalizer == nil {
		config.Normalizer = normalizer.NewDefaultNormalizer()
	}

	set, err := resolveModels(ctx, config)
	if err != nil {
		return nil, err
	}

	c := &Classifier{
		models:     set,
		scorer:     scoring.NewScorer(set, config.Logger),
		logger:     config.Logger,
		normalizer: config.Normalizer,
	}

	// Perform warm-up if configured
	if config.WarmUp {
		c.WarmUp(ctx, config.WarmUpConfig)
	}

	return c, nil
}

func resolveModels(ctx context.Context, config *classifierConfig) (*domain.ModelSet, error) {
	switch {
	case config.ModelSet != nil:
		return config.ModelSet, nil
	case config.Models != nil || config.Thresholds != nil:
		return domain.NewModelSet(config.Models, config.Thresholds)
	case config.ModelsRef != "" || config.ThresholdsRef != "":
		src := config.Source
		if src == nil {
			router := source.NewRouter()
			defer router.Close()
			src = router
		}
		set, err := model.NewLoader(src, config.Logger).Load(ctx, config.ModelsRef, config.ThresholdsRef)
		if errors.Is(err, domain.ErrThresholdMismatch) {
			config.Logger.Error("Model labels and thresholds disagree", "error", err)
			return nil, err
		}
		if err != nil {
			config.Logger.Error("Error loading models, continuing without models", "error", err)
			return domain.EmptyModelSet(), nil
		}
		return set, nil
	default:
		return domain.EmptyModelSet(), nil
	}
}

// Normalize returns the canonical form of a raw comment.
func (c *Classifier) Normalize(comment string) string {
	return c.normalizer.Normalize(comment)
}

// Classify normalizes comment and scores it against every label model.
func (c *Classifier) Classify(ctx context.Context, comment string) (Response, error) {
	if strings.TrimSpace(comment) == "" {
		return Response{}, ErrEmptyComment
	}
	if !c.Ready() {
		return Response{}, ErrModelsUnavailable
	}
	return c.scorer.Score(ctx, c.normalizer.Normalize(comment))
}

// Ready reports whether at least one label model is loaded.
func (c *Classifier) Ready() bool {
	return c.models.Len() > 0
}

// Labels returns the loaded labels in model order; never nil.
func (c *Classifier) Labels() []string {
	return c.models.Labels()
}

// WarmUp performs system warm-up to optimize performance.
func (c *Classifier) WarmUp(ctx context.Context, config WarmupConfig) {
	if !c.warmed.CompareAndSwap(false, true) {
		c.logger.Debug("System already warmed up, skipping")
		return
	}

	warmupMgr := warmup.NewManager(c.logger, config)
	warmupMgr.RegisterClassifier(c)
	warmupMgr.RegisterNormalizer(c.normalizer)

	warmupMgr.WarmUp(ctx)
}
