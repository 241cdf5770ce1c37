// Package advisor reconciles model-generated career recommendations with the
// catalog and tops them up with the deterministic keyword scorer.
package advisor

import (
	"context"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spigell/career-navigator/internal/ai"
	"github.com/spigell/career-navigator/internal/catalog"
	"github.com/spigell/career-navigator/internal/filtering"
	"github.com/spigell/career-navigator/internal/matching"
	"github.com/spigell/career-navigator/internal/metrics"
	"github.com/spigell/career-navigator/internal/profile"
	"github.com/spigell/career-navigator/internal/utils"
)

const (
	// MaxRecommendations is the size of a full result.
	MaxRecommendations = 3

	defaultMaxLogLength = 200
)

// Options tune the advisor. Zero values pick defaults.
type Options struct {
	// Timeout bounds a single model call. Zero leaves the caller's context in charge.
	Timeout time.Duration
	// MaxLogLength limits prompt and response previews in debug logs.
	MaxLogLength int
	// Dedupe drops repeated careers from model output before the scorer top-up.
	Dedupe bool
}

// Advisor produces at most MaxRecommendations suggestions for a profile and
// never fails: every problem with the model degrades to a deterministic result.
type Advisor struct {
	generator ai.Generator
	scorer    *matching.Scorer
	catalog   *catalog.Catalog
	pipeline  *filtering.Filtering
	limit     *filtering.Filtering
	logger    *zap.Logger
	timeout   time.Duration
	maxLogLen int
}

// Result is a reconciled recommendation list with the outcome of the model call.
type Result struct {
	Recommendations []ai.Recommendation
	Outcome         ai.Outcome
	// Fallback counts entries contributed by the keyword scorer.
	Fallback int
	// Static is set when the hardcoded default list was returned.
	Static bool
}

// New creates an advisor. A nil generator makes every call skip the model.
func New(generator ai.Generator, c *catalog.Catalog, scorer *matching.Scorer, logger *zap.Logger, opts Options) *Advisor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.MaxLogLength <= 0 {
		opts.MaxLogLength = defaultMaxLogLength
	}

	pipeline := filtering.New([]filtering.Filter{
		filtering.NewCatalog(),
		filtering.NewDuplicates(),
	}, logger)
	if !opts.Dedupe {
		pipeline.DisableByName("duplicates", "not enabled in configuration")
	}
	limit := filtering.New([]filtering.Filter{filtering.NewLimit(MaxRecommendations)}, logger)

	return &Advisor{
		generator: generator,
		scorer:    scorer,
		catalog:   c,
		pipeline:  pipeline,
		limit:     limit,
		logger:    logger,
		timeout:   opts.Timeout,
		maxLogLen: opts.MaxLogLength,
	}
}

// Filters reports the status of the steps applied to model output.
func (a *Advisor) Filters() []filtering.Status {
	return append(a.pipeline.Describe(), a.limit.Describe()...)
}

// Reconcile asks the model for recommendations restricted to titles and merges
// them with keyword-scored careers. When titles is empty the whole catalog is allowed.
func (a *Advisor) Reconcile(ctx context.Context, p *profile.UserProfile, titles []string) Result {
	if len(titles) == 0 {
		titles = a.catalog.Titles()
	}

	parsed, outcome := a.ask(ctx, p, titles)

	var result Result
	switch parsed.status {
	case parseFailed:
		result = a.static(outcome)
	default:
		result = a.merge(ctx, p, titles, parsed.recs, outcome)
	}

	metrics.ReconcileTotal.WithLabelValues(string(result.Outcome)).Inc()
	metrics.FallbackRecommendations.Add(float64(result.Fallback))

	a.logger.Info("recommendations reconciled",
		zap.String("outcome", string(result.Outcome)),
		zap.Int("count", len(result.Recommendations)),
		zap.Int("fallback", result.Fallback),
		zap.Bool("static", result.Static),
	)

	return result
}

func (a *Advisor) ask(ctx context.Context, p *profile.UserProfile, titles []string) (parseResult, ai.Outcome) {
	if a.generator == nil {
		return parseResult{status: parseEmpty}, ai.OutcomeDisabled
	}

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	prompt := buildPrompt(p, titles)
	a.logger.Debug("generate content request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, a.maxLogLen)),
	)

	raw, err := a.generator.GenerateContent(ctx, prompt)
	if err != nil {
		a.logger.Warn("model call failed; using default recommendations", zap.Error(err))
		return parseResult{status: parseFailed, err: err}, ai.OutcomeTransportFailure
	}

	a.logger.Debug("generate content response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, a.maxLogLen)),
	)

	parsed := parseResponse(raw)
	switch parsed.status {
	case parseFailed:
		a.logger.Warn("model response discarded; using default recommendations", zap.Error(parsed.err))
		return parsed, ai.OutcomeParseFailure
	case parseEmpty:
		return parsed, ai.OutcomeEmpty
	default:
		return parsed, ai.OutcomeModel
	}
}

func (a *Advisor) merge(ctx context.Context, p *profile.UserProfile, titles []string, recs []ai.Recommendation, outcome ai.Outcome) Result {
	filtered, err := a.pipeline.Run(ctx, filtering.Deps{Logger: a.logger, Titles: titles}, recs)
	if err != nil {
		a.logger.Error("filtering model recommendations", zap.Error(err))
		return a.static(outcome)
	}

	result := Result{Outcome: outcome, Recommendations: filtered}
	if len(filtered) < MaxRecommendations {
		extra := a.scorer.Score(p, a.excluded(filtered, titles))
		result.Fallback = min(len(extra), MaxRecommendations-len(filtered))
		result.Recommendations = append(result.Recommendations, extra...)
	}

	capped, err := a.limit.Run(ctx, filtering.Deps{Logger: a.logger}, result.Recommendations)
	if err != nil {
		a.logger.Error("capping recommendations", zap.Error(err))
		return a.static(outcome)
	}
	result.Recommendations = capped

	if len(result.Recommendations) == 0 {
		a.logger.Info("no recommendation survived reconciliation; using default recommendations")
		return a.static(outcome)
	}

	return result
}

// excluded lists catalog ids already recommended plus ids whose titles the caller cannot show.
func (a *Advisor) excluded(present []ai.Recommendation, titles []string) []string {
	allowed := make(map[string]struct{}, len(titles))
	for _, title := range titles {
		allowed[title] = struct{}{}
	}

	var ids []string
	for _, rec := range present {
		if id, ok := a.catalog.IDForTitle(rec.CareerPath); ok {
			ids = append(ids, id)
		}
	}
	for _, path := range a.catalog.Paths() {
		if _, ok := allowed[path.Title]; !ok {
			ids = append(ids, path.ID)
		}
	}
	return ids
}

func (a *Advisor) static(outcome ai.Outcome) Result {
	return Result{
		Recommendations: ai.StaticDefaults(),
		Outcome:         outcome,
		Static:          true,
	}
}
