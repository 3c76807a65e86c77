package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/healthtwin/backend/internal/domain"
)

// Assessor runs one cardiac+fatigue round trip against the risk engine
type Assessor interface {
	Assess(ctx context.Context, cardiacReq domain.RiskAssessmentRequest, fatigueReq domain.FatigueAssessmentRequest) (domain.Assessment, error)
}

// RiskService produces risk snapshots, falling back to demonstration data
// whenever the engine cannot be used
type RiskService struct {
	assessor   Assessor
	builder    *PayloadBuilder
	repo       AssessmentRepository
	thresholds domain.Thresholds
	logger     *zap.Logger
	now        func() time.Time

	wgBg sync.WaitGroup // tracks background goroutines for graceful shutdown
}

// NewRiskService creates a new risk service
func NewRiskService(
	assessor Assessor,
	builder *PayloadBuilder,
	repo AssessmentRepository,
	thresholds domain.Thresholds,
	logger *zap.Logger,
) *RiskService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RiskService{
		assessor:   assessor,
		builder:    builder,
		repo:       repo,
		thresholds: thresholds,
		logger:     logger,
		now:        time.Now,
	}
}

// WaitBackground blocks until all background save goroutines complete.
// Call during graceful shutdown to avoid dropped writes.
func (s *RiskService) WaitBackground() {
	s.wgBg.Wait()
}

// Thresholds returns the display table in use
func (s *RiskService) Thresholds() domain.Thresholds {
	return s.thresholds
}

// Snapshot computes a snapshot for a built-in profile. The only error is an
// unknown profile; engine failures are absorbed by the fallback.
func (s *RiskService) Snapshot(ctx context.Context, p Profile) (domain.RiskSnapshot, error) {
	cardiacReq, fatigueReq, err := s.builder.Build(p)
	if err != nil {
		return domain.RiskSnapshot{}, err
	}
	return s.snapshot(ctx, p, cardiacReq, fatigueReq), nil
}

// SnapshotFromVitals computes a snapshot from caller-supplied metrics.
// Returns an error only when the vitals fail validation.
func (s *RiskService) SnapshotFromVitals(ctx context.Context, v domain.Vitals) (domain.RiskSnapshot, error) {
	cardiacReq, fatigueReq, err := s.builder.FromVitals(v)
	if err != nil {
		return domain.RiskSnapshot{}, err
	}
	return s.snapshot(ctx, ProfileCustom, cardiacReq, fatigueReq), nil
}

func (s *RiskService) snapshot(
	ctx context.Context,
	p Profile,
	cardiacReq domain.RiskAssessmentRequest,
	fatigueReq domain.FatigueAssessmentRequest,
) domain.RiskSnapshot {
	live, err := s.assessor.Assess(ctx, cardiacReq, fatigueReq)
	if err != nil {
		s.logger.Info("serving fallback risk data", zap.String("profile", string(p)))
	}
	a := ResolveAssessment(live, err)
	riskFetchTotal.WithLabelValues(string(a.Source)).Inc()

	snap := domain.RiskSnapshot{
		Cardiac:   a.Cardiac,
		Fatigue:   a.Fatigue,
		View:      Present(a, s.thresholds),
		Trends:    WeeklyTrends(),
		Source:    a.Source,
		Timestamp: s.now(),
	}

	s.record(p, snap)
	return snap
}

// record persists the outcome asynchronously (tracked for graceful shutdown)
func (s *RiskService) record(p Profile, snap domain.RiskSnapshot) {
	if s.repo == nil {
		return
	}
	rec := domain.AssessmentRecord{
		ID:           uuid.NewString(),
		Profile:      string(p),
		RiskScore:    snap.Cardiac.RiskScore,
		RiskLevel:    snap.Cardiac.RiskLevel,
		FatigueScore: snap.Fatigue.FatigueScore,
		FitToWork:    snap.Fatigue.FitToWork,
		IsFallback:   snap.Source == domain.SourceFallback,
		Timestamp:    snap.Timestamp,
	}

	s.wgBg.Add(1)
	go func() {
		defer s.wgBg.Done()
		bgCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.repo.SaveAssessment(bgCtx, rec); err != nil {
			s.logger.Error("failed to save assessment", zap.String("id", rec.ID), zap.Error(err))
		}
	}()
}

// History returns recorded assessments within [from, to]
func (s *RiskService) History(ctx context.Context, from, to time.Time) ([]domain.AssessmentRecord, error) {
	if s.repo == nil {
		return nil, nil
	}
	records, err := s.repo.GetAssessmentHistory(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("risk_service: history: %w", err)
	}
	return records, nil
}
