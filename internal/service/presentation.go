package service

import (
	"math"

	"github.com/healthtwin/backend/internal/domain"
	"github.com/healthtwin/backend/pkg/utils"
)

const (
	StatusGoodRisk = "Good risk"
	StatusHighRisk = "High risk"

	LabelFit   = "FIT"
	LabelUnfit = "UNFIT"

	HealthExcellent      = "Excellent"
	HealthGood           = "Good"
	HealthNeedsAttention = "Needs Attention"

	ToneDanger  = "danger"
	ToneWarning = "warning"
)

// Present maps an assessment to the values shown on dashboard cards and the
// mobile home screen
func Present(a domain.Assessment, t domain.Thresholds) domain.RiskView {
	healthScore := int(math.Round(utils.Clamp(100-a.Cardiac.RiskScore, 0, 100)))

	status := StatusGoodRisk
	if math.Max(a.Cardiac.RiskScore, a.Fatigue.FatigueScore) >= t.HighRisk {
		status = StatusHighRisk
	}

	fit := LabelUnfit
	if a.Fatigue.FitToWork {
		fit = LabelFit
	}

	// Fatigue drivers are listed ahead of cardiac factors
	drivers := make([]string, 0, len(a.Fatigue.Contributors)+len(a.Cardiac.RiskFactors))
	drivers = append(drivers, a.Fatigue.Contributors...)
	drivers = append(drivers, a.Cardiac.RiskFactors...)

	return domain.RiskView{
		HealthScore:    healthScore,
		HealthLabel:    healthLabel(healthScore, t),
		CardiacScore:   int(utils.RoundTo(a.Cardiac.RiskScore, 0)),
		FatigueIndex:   int(utils.RoundTo(a.Fatigue.FatigueScore, 0)),
		StatusLabel:    status,
		FitToWorkLabel: fit,
		CardiacTone:    tone(a.Cardiac.RiskLevel),
		FatigueTone:    tone(a.Fatigue.RiskLevel),
		RiskDrivers:    drivers,
		Source:         a.Source,
	}
}

func healthLabel(score int, t domain.Thresholds) string {
	switch {
	case score >= t.HealthExcellent:
		return HealthExcellent
	case score >= t.HealthGood:
		return HealthGood
	default:
		return HealthNeedsAttention
	}
}

func tone(level domain.RiskLevel) string {
	if level.Elevated() {
		return ToneDanger
	}
	return ToneWarning
}
