package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/healthtwin/backend/internal/domain"
)

// PostgresRepository implements domain.AssessmentRepository and domain.SettingsRepository
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS assessment_logs (
		id            VARCHAR(36) PRIMARY KEY,
		profile       VARCHAR(32) NOT NULL,
		risk_score    DOUBLE PRECISION NOT NULL,
		risk_level    VARCHAR(20) NOT NULL,
		fatigue_score DOUBLE PRECISION NOT NULL,
		fit_to_work   BOOLEAN NOT NULL,
		is_fallback   BOOLEAN NOT NULL,
		timestamp     TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS assessment_logs_timestamp_idx ON assessment_logs (timestamp DESC)`,
	`CREATE TABLE IF NOT EXISTS user_settings (
		id         SMALLINT PRIMARY KEY,
		data       JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// EnsureSchema creates the tables this repository needs
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := r.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("postgres: failed to apply schema: %w", err)
		}
	}
	return nil
}

// SaveAssessment persists one snapshot outcome
func (r *PostgresRepository) SaveAssessment(ctx context.Context, rec domain.AssessmentRecord) error {
	query := `
		INSERT INTO assessment_logs (
			id, profile, risk_score, risk_level, fatigue_score,
			fit_to_work, is_fallback, timestamp
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.pool.Exec(ctx, query,
		rec.ID, rec.Profile, rec.RiskScore, string(rec.RiskLevel), rec.FatigueScore,
		rec.FitToWork, rec.IsFallback, rec.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("postgres: failed to save assessment: %w", err)
	}

	return nil
}

// GetAssessmentHistory retrieves assessment history from PostgreSQL
func (r *PostgresRepository) GetAssessmentHistory(ctx context.Context, from, to time.Time) ([]domain.AssessmentRecord, error) {
	query := `
		SELECT id, profile, risk_score, risk_level, fatigue_score,
			   fit_to_work, is_fallback, timestamp
		FROM assessment_logs
		WHERE timestamp BETWEEN $1 AND $2
		ORDER BY timestamp DESC
		LIMIT 100
	`

	rows, err := r.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query assessments: %w", err)
	}
	defer rows.Close()

	var results []domain.AssessmentRecord
	for rows.Next() {
		var (
			rec   domain.AssessmentRecord
			level string
		)
		err := rows.Scan(
			&rec.ID, &rec.Profile, &rec.RiskScore, &level, &rec.FatigueScore,
			&rec.FitToWork, &rec.IsFallback, &rec.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("postgres: failed to scan assessment row: %w", err)
		}
		rec.RiskLevel = domain.RiskLevel(level)
		results = append(results, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: failed to iterate assessments: %w", err)
	}

	return results, nil
}

// settingsRowID is the key of the single settings document
const settingsRowID = 1

// LoadSettings reads the stored settings document, if any
func (r *PostgresRepository) LoadSettings(ctx context.Context) (domain.Settings, bool, error) {
	var data []byte
	err := r.pool.QueryRow(ctx, `SELECT data FROM user_settings WHERE id = $1`, settingsRowID).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Settings{}, false, nil
	}
	if err != nil {
		return domain.Settings{}, false, fmt.Errorf("postgres: failed to load settings: %w", err)
	}

	s := domain.DefaultSettings()
	if err := json.Unmarshal(data, &s); err != nil {
		return domain.Settings{}, false, fmt.Errorf("postgres: failed to decode settings: %w", err)
	}
	return s, true, nil
}

// SaveSettings upserts the settings document
func (r *PostgresRepository) SaveSettings(ctx context.Context, s domain.Settings) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("postgres: failed to encode settings: %w", err)
	}

	query := `
		INSERT INTO user_settings (id, data, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()
	`
	if _, err := r.pool.Exec(ctx, query, settingsRowID, data); err != nil {
		return fmt.Errorf("postgres: failed to save settings: %w", err)
	}
	return nil
}

// Health checks database connectivity
func (r *PostgresRepository) Health(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		return fmt.Errorf("postgres: health check failed: %w", err)
	}
	return nil
}
