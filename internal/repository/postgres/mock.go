package postgres

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/healthtwin/backend/internal/domain"
)

// maxMockRecords caps the in-memory history like the LIMIT on the SQL query
const maxMockRecords = 100

// MockRepository keeps assessments and settings in memory for demo mode
type MockRepository struct {
	mu          sync.RWMutex
	records     []domain.AssessmentRecord
	settings    domain.Settings
	hasSettings bool
}

// NewMockRepository creates a new mock repository
func NewMockRepository() *MockRepository {
	return &MockRepository{}
}

// SaveAssessment appends to the in-memory log
func (r *MockRepository) SaveAssessment(ctx context.Context, rec domain.AssessmentRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
	return nil
}

// GetAssessmentHistory returns records in [from, to], newest first
func (r *MockRepository) GetAssessmentHistory(ctx context.Context, from, to time.Time) ([]domain.AssessmentRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var results []domain.AssessmentRecord
	for _, rec := range r.records {
		if rec.Timestamp.Before(from) || rec.Timestamp.After(to) {
			continue
		}
		results = append(results, rec)
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Timestamp.After(results[j].Timestamp)
	})
	if len(results) > maxMockRecords {
		results = results[:maxMockRecords]
	}
	return results, nil
}

// LoadSettings returns the last saved settings
func (r *MockRepository) LoadSettings(ctx context.Context) (domain.Settings, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.settings, r.hasSettings, nil
}

// SaveSettings replaces the stored settings
func (r *MockRepository) SaveSettings(ctx context.Context, s domain.Settings) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.settings = s
	r.hasSettings = true
	return nil
}

// Health always returns nil in mock mode
func (r *MockRepository) Health(ctx context.Context) error {
	return nil
}
