package filtering

import (
	"context"
	"errors"
	"strconv"

	"go.uber.org/zap"

	"github.com/spigell/career-navigator/internal/ai"
)

type toggle struct {
	disabled bool
	reason   string
}

func (t *toggle) Disable(reason string) {
	t.disabled = true
	t.reason = reason
}

func (t *toggle) IsEnabled() bool { return !t.disabled }

type catalogFilter struct {
	toggle
}

// NewCatalog drops recommendations whose career title is not one of deps.Titles.
// Titles are compared exactly.
func NewCatalog() Filter {
	return &catalogFilter{}
}

func (f *catalogFilter) Name() string { return "catalog" }

func (f *catalogFilter) Validate(deps Deps) error {
	if len(deps.Titles) == 0 {
		return errors.New("at least one allowed career title is required")
	}
	return nil
}

func (f *catalogFilter) Apply(_ context.Context, deps Deps, recs []ai.Recommendation) ([]ai.Recommendation, Step, error) {
	allowed := make(map[string]struct{}, len(deps.Titles))
	for _, title := range deps.Titles {
		allowed[title] = struct{}{}
	}

	kept := make([]ai.Recommendation, 0, len(recs))
	var dropped []string
	for _, rec := range recs {
		if _, ok := allowed[rec.CareerPath]; !ok {
			dropped = append(dropped, rec.CareerPath)
			continue
		}
		kept = append(kept, rec)
	}

	if len(dropped) > 0 {
		deps.Logger.Info("dropping careers outside the catalog", zap.Strings("careers", dropped))
	}

	return kept, Step{Initial: len(recs), Dropped: len(dropped), Left: len(kept)}, nil
}

func (f *catalogFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason}
}

type duplicatesFilter struct {
	toggle
}

// NewDuplicates keeps only the first recommendation for each career title.
func NewDuplicates() Filter {
	return &duplicatesFilter{}
}

func (f *duplicatesFilter) Name() string { return "duplicates" }

func (f *duplicatesFilter) Validate(Deps) error { return nil }

func (f *duplicatesFilter) Apply(_ context.Context, _ Deps, recs []ai.Recommendation) ([]ai.Recommendation, Step, error) {
	seen := make(map[string]struct{}, len(recs))
	kept := make([]ai.Recommendation, 0, len(recs))
	for _, rec := range recs {
		if _, ok := seen[rec.CareerPath]; ok {
			continue
		}
		seen[rec.CareerPath] = struct{}{}
		kept = append(kept, rec)
	}
	return kept, Step{Initial: len(recs), Dropped: len(recs) - len(kept), Left: len(kept)}, nil
}

func (f *duplicatesFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason}
}

type limitFilter struct {
	toggle
	max int
}

// NewLimit truncates the list to at most max entries.
func NewLimit(max int) Filter {
	return &limitFilter{max: max}
}

func (f *limitFilter) Name() string { return "limit" }

func (f *limitFilter) Validate(Deps) error {
	if f.max <= 0 {
		return errors.New("limit must be positive")
	}
	return nil
}

func (f *limitFilter) Apply(_ context.Context, _ Deps, recs []ai.Recommendation) ([]ai.Recommendation, Step, error) {
	if len(recs) <= f.max {
		return recs, Step{Initial: len(recs), Left: len(recs)}, nil
	}
	return recs[:f.max], Step{Initial: len(recs), Dropped: len(recs) - f.max, Left: f.max}, nil
}

func (f *limitFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"max": strconv.Itoa(f.max)},
	}
}
