// Package storage reads user profiles and keeps generated recommendations.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/spigell/career-navigator/internal/ai"
	"github.com/spigell/career-navigator/internal/profile"
)

// ErrNotFound is returned when a profile or stored recommendation does not exist.
var ErrNotFound = errors.New("not found")

// Record is a recommendation list stored for a user.
type Record struct {
	ID              string              `json:"id"`
	UserID          string              `json:"user_id"`
	Recommendations []ai.Recommendation `json:"recommendations"`
	CreatedAt       time.Time           `json:"created_at"`
}

// Store is implemented by Postgres and by the redis read-through Cache.
type Store interface {
	GetProfile(ctx context.Context, userID string) (*profile.UserProfile, error)
	// LatestRecommendations returns the most recent record for the user.
	LatestRecommendations(ctx context.Context, userID string) (*Record, error)
	SaveRecommendations(ctx context.Context, userID string, recs []ai.Recommendation) (*Record, error)
	Ping(ctx context.Context) error
}
