package service

import (
	"github.com/healthtwin/backend/internal/domain"
)

// FallbackAssessment returns the fixed demonstration pair served while the
// risk engine is unreachable. Every call returns an equal, independent value.
func FallbackAssessment() domain.Assessment {
	return domain.Assessment{
		Cardiac: domain.RiskAssessmentResult{
			RiskScore:   35,
			RiskLevel:   domain.RiskLevelModerate,
			RiskFactors: []string{"Elevated Resting HR", "Low HRV"},
		},
		Fatigue: domain.FatigueAssessmentResult{
			FatigueScore: 42,
			FitToWork:    true,
			RiskLevel:    domain.RiskLevelModerate,
			Contributors: []string{"Mild Sleep Debt"},
		},
		Source: domain.SourceFallback,
	}
}

// ResolveAssessment substitutes the fallback pair when the live fetch failed.
// The live pair is passed through untouched otherwise.
func ResolveAssessment(live domain.Assessment, err error) domain.Assessment {
	if err != nil {
		return FallbackAssessment()
	}
	return live
}

// WeeklyTrends is the static seven-day series shown on the dashboard chart;
// the engine is stateless and has no history of its own
func WeeklyTrends() []domain.TrendPoint {
	return []domain.TrendPoint{
		{Name: "Mon", Risk: 42, Fatigue: 30},
		{Name: "Tue", Risk: 35, Fatigue: 25},
		{Name: "Wed", Risk: 50, Fatigue: 65},
		{Name: "Thu", Risk: 45, Fatigue: 40},
		{Name: "Fri", Risk: 38, Fatigue: 35},
		{Name: "Sat", Risk: 30, Fatigue: 20},
		{Name: "Sun", Risk: 25, Fatigue: 15},
	}
}
