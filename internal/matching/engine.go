// Package matching scores resumes against the job corpus or a single job
// description.
package matching

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/spigell/resume-assistant/internal/corpus"
	"github.com/spigell/resume-assistant/internal/embedding"
	"github.com/spigell/resume-assistant/internal/index"
	"github.com/spigell/resume-assistant/internal/logger"
	"github.com/spigell/resume-assistant/internal/resume"
	"github.com/spigell/resume-assistant/internal/tracing"
)

const (
	DefaultTopK       = 5
	DefaultTopMatches = 3
	// NoMatch is reported as the matched job when the corpus yields nothing.
	NoMatch = "No match found"
)

// Options configures New. Corpus, Provider and Store are required.
type Options struct {
	Corpus   *corpus.Corpus
	Provider embedding.Provider
	Store    index.Store
	// EmbeddingProvider names the configured embedding backend for logs.
	EmbeddingProvider string

	TopK       int
	TopMatches int
	BatchSize  int
	// Rebuild skips loading a persisted artifact.
	Rebuild bool

	Logger *zap.Logger
	Tracer trace.Tracer
}

// Engine owns the corpus and its index for the lifetime of the process.
// All query methods are read-only and safe for concurrent use.
type Engine struct {
	corpus   *corpus.Corpus
	provider embedding.Provider
	index    *index.Index

	topK       int
	topMatches int

	logger *zap.Logger
	tracer trace.Tracer
}

// New loads the persisted index for the corpus or, when none is usable,
// embeds the corpus, builds the index and persists it. It returns once the
// engine can serve queries.
func New(ctx context.Context, opts Options) (*Engine, error) {
	if opts.Corpus == nil {
		return nil, errors.New("corpus is required")
	}
	if opts.Provider == nil {
		return nil, errors.New("embedding provider is required")
	}
	if opts.Store == nil {
		return nil, errors.New("index store is required")
	}
	if opts.TopK <= 0 {
		opts.TopK = DefaultTopK
	}
	if opts.TopMatches <= 0 {
		opts.TopMatches = DefaultTopMatches
	}
	if opts.Tracer == nil {
		opts.Tracer = tracing.Tracer("matching")
	}

	e := &Engine{
		corpus:     opts.Corpus,
		provider:   opts.Provider,
		topK:       opts.TopK,
		topMatches: opts.TopMatches,
		tracer:     opts.Tracer,
		logger: logger.WithFields(
			logger.WithEmbeddingFields(opts.Logger, opts.EmbeddingProvider, opts.Provider.Model()),
			zap.String(logger.FieldIndexLocation, opts.Store.Location()),
		),
	}

	ctx, span := e.tracer.Start(ctx, "matching.New", trace.WithAttributes(
		attribute.Int("corpus.rows", opts.Corpus.Len()),
		attribute.String("index.location", opts.Store.Location()),
	))
	defer span.End()

	ix, err := e.loadOrBuild(ctx, opts)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeIndex)
		return nil, err
	}
	e.index = ix

	e.logger.Info("matching engine is ready",
		zap.Int("jobs", ix.Len()),
		zap.Int("dimension", ix.Dimension()),
		zap.String("build_id", ix.Meta().BuildID),
	)
	return e, nil
}

func (e *Engine) loadOrBuild(ctx context.Context, opts Options) (*index.Index, error) {
	want := index.Meta{
		Model:      e.provider.Model(),
		Dimension:  e.provider.Dimension(),
		CorpusHash: e.corpus.Fingerprint(),
	}

	if !opts.Rebuild {
		ix, err := index.Load(ctx, opts.Store, want)
		switch {
		case err == nil && ix.Len() == e.corpus.Len():
			e.logger.Debug("loaded persisted index", zap.Time("built_at", ix.Meta().BuiltAt))
			return ix, nil
		case err == nil:
			e.logger.Info("persisted index does not cover the corpus, rebuilding",
				zap.Int("index_rows", ix.Len()),
				zap.Int("corpus_rows", e.corpus.Len()),
			)
		case errors.Is(err, index.ErrNotFound):
			e.logger.Info("no usable persisted index, rebuilding", zap.String("reason", err.Error()))
		default:
			return nil, fmt.Errorf("load index: %w", err)
		}
	}

	return e.build(ctx, opts, want)
}

func (e *Engine) build(ctx context.Context, opts Options, meta index.Meta) (*index.Index, error) {
	ctx, span := e.tracer.Start(ctx, "matching.buildIndex")
	defer span.End()

	started := time.Now()
	vectors, err := embedding.EmbedInBatches(ctx, e.provider, e.corpus.Texts(), opts.BatchSize, e.logger)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeEmbedding)
		return nil, fmt.Errorf("embed corpus: %w", err)
	}

	meta.BuildID = uuid.NewString()
	meta.BuiltAt = time.Now().UTC()

	ix, err := index.Build(vectors, meta)
	if err != nil {
		return nil, fmt.Errorf("build index: %w", err)
	}
	if err := index.Save(ctx, opts.Store, ix); err != nil {
		return nil, err
	}

	e.logger.Info("index built and persisted",
		zap.Int("jobs", ix.Len()),
		zap.String("build_id", meta.BuildID),
		zap.Duration("took", time.Since(started)),
	)
	return ix, nil
}

// Corpus returns the job corpus the engine serves.
func (e *Engine) Corpus() *corpus.Corpus { return e.corpus }

// Index returns the vector index aligned with Corpus.
func (e *Engine) Index() *index.Index { return e.index }

// MatchResume returns up to TopK corpus jobs closest to the resume profile.
func (e *Engine) MatchResume(ctx context.Context, rec resume.Record) ([]Result, error) {
	ctx, span := e.tracer.Start(ctx, "matching.MatchResume")
	defer span.End()

	query, err := e.provider.Embed(ctx, rec.ProfileText())
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeEmbedding)
		return nil, fmt.Errorf("embed resume: %w", err)
	}

	hits, err := e.index.Search(query, e.topK)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeIndex)
		return nil, fmt.Errorf("search index: %w", err)
	}

	results := make([]Result, 0, len(hits))
	for _, hit := range hits {
		job, ok := e.corpus.Job(hit.Row)
		if !ok {
			continue
		}
		results = append(results, Result{
			JobName: job.Name,
			Score:   CorpusScore(hit.Score),
			Row:     hit.Row,
			Details: Details{
				Education: job.EducationDetails,
				Skill:     job.Skill,
			},
		})
	}

	span.SetAttributes(attribute.Int("matching.results", len(results)))
	e.logger.Debug("resume matched against corpus", zap.Int("results", len(results)))

	return results, nil
}

// ATSScore reports the best corpus match and the leading TopMatches results.
func (e *Engine) ATSScore(ctx context.Context, rec resume.Record) (ATSReport, error) {
	results, err := e.MatchResume(ctx, rec)
	if err != nil {
		return ATSReport{}, err
	}

	if len(results) == 0 {
		return ATSReport{MatchedJob: NoMatch, ATSScore: 0, TopMatches: []Result{}}, nil
	}

	return ATSReport{
		MatchedJob: results[0].JobName,
		ATSScore:   results[0].Score,
		TopMatches: results[:min(e.topMatches, len(results))],
	}, nil
}

// CustomATSScore compares the resume with one job description directly.
// The resume text joins Values in field order.
func (e *Engine) CustomATSScore(ctx context.Context, rec resume.Record, jobDescription string) (CustomReport, error) {
	ctx, span := e.tracer.Start(ctx, "matching.CustomATSScore")
	defer span.End()

	resumeVector, err := e.provider.Embed(ctx, strings.Join(rec.Values(), " "))
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeEmbedding)
		return CustomReport{}, fmt.Errorf("embed resume: %w", err)
	}

	jdVector, err := e.provider.Embed(ctx, jobDescription)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeEmbedding)
		return CustomReport{}, fmt.Errorf("embed job description: %w", err)
	}

	similarity, err := index.Cosine(resumeVector, jdVector)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeValidation)
		return CustomReport{}, fmt.Errorf("compare resume with job description: %w", err)
	}

	score := CustomScore(similarity)
	span.SetAttributes(attribute.Float64("matching.score", score))
	e.logger.Debug("resume matched against job description",
		zap.Float64("similarity", similarity),
		zap.Float64("score", score),
	)

	return CustomReport{ATSScore: score}, nil
}
