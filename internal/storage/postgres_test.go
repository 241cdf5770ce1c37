package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/career-navigator/internal/ai"
	"github.com/spigell/career-navigator/internal/profile"
)

var profileColumns = []string{
	"id", "name", "age", "education_field", "study_year", "skills", "skill_expertise",
	"interests", "career_goals", "experience_level", "availability_hours_per_week",
}

func newMockPostgres(t *testing.T) (*Postgres, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresWithDB(db), mock
}

func TestGetProfile(t *testing.T) {
	store, mock := newMockPostgres(t)

	rows := sqlmock.NewRows(profileColumns).AddRow(
		"user-1", "Ada", int64(20), "BSc Computer Science", int64(2),
		[]byte(`["Python","SQL"]`), []byte(`{"Python":"Advanced","SQL":"weird"}`),
		"machine learning", nil, "student", nil,
	)
	mock.ExpectQuery(regexp.QuoteMeta(profileQuery)).WithArgs("user-1").WillReturnRows(rows)

	got, err := store.GetProfile(context.Background(), "user-1")
	require.NoError(t, err)

	assert.Equal(t, "Ada", got.Name)
	assert.Equal(t, 20, got.Age)
	assert.Equal(t, []string{"Python", "SQL"}, got.Skills)
	assert.Equal(t, profile.Advanced, got.Expertise("Python"))
	assert.Equal(t, profile.Beginner, got.Expertise("SQL"))
	assert.Empty(t, got.CareerGoals)
	assert.Equal(t, profile.DefaultAvailability, got.Availability())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetProfileNotFound(t *testing.T) {
	store, mock := newMockPostgres(t)
	mock.ExpectQuery(regexp.QuoteMeta(profileQuery)).WithArgs("ghost").WillReturnError(sql.ErrNoRows)

	_, err := store.GetProfile(context.Background(), "ghost")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestLatestRecommendations(t *testing.T) {
	store, mock := newMockPostgres(t)

	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	payload, err := json.Marshal(ai.StaticDefaults()[:1])
	require.NoError(t, err)

	rows := sqlmock.NewRows([]string{"id", "user_id", "recommendations", "created_at"}).
		AddRow("rec-1", "user-1", payload, created)
	mock.ExpectQuery(regexp.QuoteMeta(latestQuery)).WithArgs("user-1").WillReturnRows(rows)

	got, err := store.LatestRecommendations(context.Background(), "user-1")
	require.NoError(t, err)

	assert.Equal(t, "rec-1", got.ID)
	assert.Equal(t, created, got.CreatedAt)
	require.Len(t, got.Recommendations, 1)
	assert.Equal(t, "Frontend Developer", got.Recommendations[0].CareerPath)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLatestRecommendationsNotFound(t *testing.T) {
	store, mock := newMockPostgres(t)
	mock.ExpectQuery(regexp.QuoteMeta(latestQuery)).WithArgs("user-1").WillReturnError(sql.ErrNoRows)

	_, err := store.LatestRecommendations(context.Background(), "user-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLatestRecommendationsQueryError(t *testing.T) {
	store, mock := newMockPostgres(t)
	mock.ExpectQuery(regexp.QuoteMeta(latestQuery)).WithArgs("user-1").WillReturnError(errors.New("connection reset"))

	_, err := store.LatestRecommendations(context.Background(), "user-1")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestSaveRecommendations(t *testing.T) {
	store, mock := newMockPostgres(t)
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	mock.ExpectExec(regexp.QuoteMeta(insertQuery)).
		WithArgs(sqlmock.AnyArg(), "user-1", sqlmock.AnyArg(), now).
		WillReturnResult(sqlmock.NewResult(1, 1))

	recs := ai.StaticDefaults()
	got, err := store.SaveRecommendations(context.Background(), "user-1", recs)
	require.NoError(t, err)

	assert.NotEmpty(t, got.ID)
	assert.Equal(t, "user-1", got.UserID)
	assert.Equal(t, now, got.CreatedAt)
	assert.Len(t, got.Recommendations, 3)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveRecommendationsError(t *testing.T) {
	store, mock := newMockPostgres(t)
	mock.ExpectExec(regexp.QuoteMeta(insertQuery)).WillReturnError(errors.New("read-only transaction"))

	_, err := store.SaveRecommendations(context.Background(), "user-1", ai.StaticDefaults())
	assert.ErrorContains(t, err, "read-only transaction")
}

func TestNewPostgresRequiresDSN(t *testing.T) {
	_, err := NewPostgres(PostgresConfig{})
	assert.Error(t, err)
}
