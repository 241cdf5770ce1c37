package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/spigell/career-navigator/internal/ai"
	"github.com/spigell/career-navigator/internal/profile"
)

const (
	profileQuery = `SELECT id, name, age, education_field, study_year, skills, skill_expertise,
       interests, career_goals, experience_level, availability_hours_per_week
FROM user_information WHERE id = $1`

	latestQuery = `SELECT id, user_id, recommendations, created_at
FROM ai_recommendations WHERE user_id = $1
ORDER BY created_at DESC LIMIT 1`

	insertQuery = `INSERT INTO ai_recommendations (id, user_id, recommendations, created_at)
VALUES ($1, $2, $3, $4)`
)

// PostgresConfig holds connection settings.
type PostgresConfig struct {
	DSN            string
	MaxConnections int
	MaxIdle        int
}

// Postgres is the relational Store.
type Postgres struct {
	DB  *sql.DB
	now func() time.Time
}

// NewPostgres opens a connection pool. No connection is made until first use.
func NewPostgres(cfg PostgresConfig) (*Postgres, error) {
	if cfg.DSN == "" {
		return nil, errors.New("postgres dsn is required")
	}

	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	if cfg.MaxConnections > 0 {
		db.SetMaxOpenConns(cfg.MaxConnections)
	}
	if cfg.MaxIdle > 0 {
		db.SetMaxIdleConns(cfg.MaxIdle)
	}
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return NewPostgresWithDB(db), nil
}

// NewPostgresWithDB wraps an existing pool.
func NewPostgresWithDB(db *sql.DB) *Postgres {
	return &Postgres{DB: db, now: time.Now}
}

func (p *Postgres) Ping(ctx context.Context) error {
	return p.DB.PingContext(ctx)
}

func (p *Postgres) Close() error {
	if p.DB != nil {
		return p.DB.Close()
	}
	return nil
}

func (p *Postgres) GetProfile(ctx context.Context, userID string) (*profile.UserProfile, error) {
	var (
		id, name, education, interests, goals, experience sql.NullString
		age, studyYear, availability                      sql.NullInt64
		skills, expertise                                 []byte
	)

	err := p.DB.QueryRowContext(ctx, profileQuery, userID).Scan(
		&id, &name, &age, &education, &studyYear, &skills, &expertise,
		&interests, &goals, &experience, &availability,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("profile %q: %w", userID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query profile %q: %w", userID, err)
	}

	u := &profile.UserProfile{
		ID:                       id.String,
		Name:                     name.String,
		Age:                      int(age.Int64),
		EducationField:           education.String,
		StudyYear:                int(studyYear.Int64),
		Interests:                interests.String,
		CareerGoals:              goals.String,
		ExperienceLevel:          experience.String,
		AvailabilityHoursPerWeek: int(availability.Int64),
	}

	if len(skills) > 0 {
		if err := json.Unmarshal(skills, &u.Skills); err != nil {
			return nil, fmt.Errorf("decode skills of %q: %w", userID, err)
		}
	}

	if len(expertise) > 0 {
		levels := make(map[string]string)
		if err := json.Unmarshal(expertise, &levels); err != nil {
			return nil, fmt.Errorf("decode skill expertise of %q: %w", userID, err)
		}
		u.SkillExpertise = make(map[string]profile.Level, len(levels))
		for skill, level := range levels {
			u.SkillExpertise[skill] = profile.ParseLevel(level)
		}
	}

	return u, nil
}

func (p *Postgres) LatestRecommendations(ctx context.Context, userID string) (*Record, error) {
	var (
		rec  Record
		data []byte
	)

	err := p.DB.QueryRowContext(ctx, latestQuery, userID).Scan(&rec.ID, &rec.UserID, &data, &rec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("recommendations for %q: %w", userID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query recommendations for %q: %w", userID, err)
	}

	if err := json.Unmarshal(data, &rec.Recommendations); err != nil {
		return nil, fmt.Errorf("decode recommendations for %q: %w", userID, err)
	}

	return &rec, nil
}

func (p *Postgres) SaveRecommendations(ctx context.Context, userID string, recs []ai.Recommendation) (*Record, error) {
	data, err := json.Marshal(recs)
	if err != nil {
		return nil, fmt.Errorf("encode recommendations: %w", err)
	}

	rec := &Record{
		ID:              uuid.NewString(),
		UserID:          userID,
		Recommendations: recs,
		CreatedAt:       p.now().UTC(),
	}

	if _, err := p.DB.ExecContext(ctx, insertQuery, rec.ID, rec.UserID, data, rec.CreatedAt); err != nil {
		return nil, fmt.Errorf("insert recommendations for %q: %w", userID, err)
	}

	return rec, nil
}
