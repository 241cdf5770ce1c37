// Package navigator serves stored or freshly reconciled recommendations for a user.
package navigator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/career-navigator/internal/ai"
	"github.com/spigell/career-navigator/internal/ai/advisor"
	"github.com/spigell/career-navigator/internal/catalog"
	"github.com/spigell/career-navigator/internal/logger"
	"github.com/spigell/career-navigator/internal/profile"
	"github.com/spigell/career-navigator/internal/recommend"
	"github.com/spigell/career-navigator/internal/storage"
)

// ErrMissingProfile is returned when neither a profile nor a known user id is given.
var ErrMissingProfile = errors.New("user profile is required")

type Reconciler interface {
	Reconcile(ctx context.Context, p *profile.UserProfile, titles []string) advisor.Result
}

// Request asks for recommendations. Titles restrict the allowed careers; empty means the whole catalog.
type Request struct {
	Profile *profile.UserProfile
	UserID  string
	Titles  []string
}

type Response struct {
	Recommendations []ai.Recommendation `json:"recommendations"`
	FromCache       bool                `json:"fromCache"`
}

type Options struct {
	// MaxAge ignores stored records older than this. Zero keeps them forever.
	MaxAge time.Duration
}

type Service struct {
	store      storage.Store
	reconciler Reconciler
	catalog    *catalog.Catalog
	maxAge     time.Duration
	now        func() time.Time
	logger     *zap.Logger
}

// New creates a service. A nil store disables lookups and persistence.
func New(store storage.Store, reconciler Reconciler, c *catalog.Catalog, log *zap.Logger, opts Options) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		store:      store,
		reconciler: reconciler,
		catalog:    c,
		maxAge:     opts.MaxAge,
		now:        time.Now,
		logger:     log,
	}
}

// Recommend returns the latest stored recommendations for the user when they
// exist, otherwise reconciles new ones and stores them.
func (s *Service) Recommend(ctx context.Context, req Request) (*Response, error) {
	log := logger.WithFields(s.logger, logger.StringFields(logger.StringField{Key: logger.FieldUserID, Value: req.UserID})...)

	if req.UserID != "" && s.store != nil {
		stored, err := s.cached(ctx, req.UserID)
		if err != nil {
			return nil, err
		}
		if stored != nil {
			log.Debug("serving stored recommendations", zap.String("record", stored.ID), zap.Time("created_at", stored.CreatedAt))
			return &Response{Recommendations: stored.Recommendations, FromCache: true}, nil
		}
	}

	p := req.Profile
	if p == nil {
		loaded, err := s.profile(ctx, req.UserID)
		if err != nil {
			return nil, err
		}
		p = loaded
	}

	result := s.reconciler.Reconcile(ctx, p, req.Titles)

	if req.UserID != "" && s.store != nil {
		if _, err := s.store.SaveRecommendations(ctx, req.UserID, result.Recommendations); err != nil {
			log.Error("failed to store recommendations", zap.Error(err))
		}
	}

	return &Response{Recommendations: result.Recommendations}, nil
}

// CareerPaths partitions the catalog for a stored user with the rule-based recommender.
func (s *Service) CareerPaths(ctx context.Context, userID string) (recommend.Partition, error) {
	p, err := s.profile(ctx, userID)
	if err != nil {
		return recommend.Partition{}, err
	}
	return recommend.Split(s.catalog, recommend.Recommend(p, s.catalog)), nil
}

func (s *Service) cached(ctx context.Context, userID string) (*storage.Record, error) {
	stored, err := s.store.LatestRecommendations(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup stored recommendations: %w", err)
	}
	if len(stored.Recommendations) == 0 {
		return nil, nil
	}
	if s.maxAge > 0 && s.now().Sub(stored.CreatedAt) > s.maxAge {
		return nil, nil
	}
	return stored, nil
}

func (s *Service) profile(ctx context.Context, userID string) (*profile.UserProfile, error) {
	if userID == "" || s.store == nil {
		return nil, ErrMissingProfile
	}
	p, err := s.store.GetProfile(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: no profile stored for %q", ErrMissingProfile, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	return p, nil
}
