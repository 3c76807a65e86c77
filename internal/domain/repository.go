package domain

import (
	"context"
	"time"
)

// AssessmentRepository defines persistence for the assessment history
// This follows the Dependency Inversion Principle - domain defines the interface
type AssessmentRepository interface {
	// SaveAssessment persists one snapshot outcome
	SaveAssessment(ctx context.Context, rec AssessmentRecord) error

	// GetAssessmentHistory retrieves records in [from, to], newest first
	GetAssessmentHistory(ctx context.Context, from, to time.Time) ([]AssessmentRecord, error)

	// Health checks database connectivity
	Health(ctx context.Context) error
}

// SettingsRepository persists the settings document.
// Load returns ok=false when nothing has been saved yet.
type SettingsRepository interface {
	LoadSettings(ctx context.Context) (s Settings, ok bool, err error)
	SaveSettings(ctx context.Context, s Settings) error
}
