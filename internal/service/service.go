package service

import (
	"github.com/healthtwin/backend/internal/domain"
)

// AssessmentRepository is re-exported from domain for convenience
type AssessmentRepository = domain.AssessmentRepository

// SettingsRepository is re-exported from domain for convenience
type SettingsRepository = domain.SettingsRepository
