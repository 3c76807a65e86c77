package domain

import (
	"fmt"
	"time"
)

// RiskLevel is the coarse band reported by the risk engine
type RiskLevel string

const (
	RiskLevelLow      RiskLevel = "Low"
	RiskLevelModerate RiskLevel = "Moderate"
	RiskLevelHigh     RiskLevel = "High"
	RiskLevelCritical RiskLevel = "Critical"
)

// Valid reports whether the level is one the engine can produce
func (l RiskLevel) Valid() bool {
	switch l {
	case RiskLevelLow, RiskLevelModerate, RiskLevelHigh, RiskLevelCritical:
		return true
	}
	return false
}

// Elevated is true for High and Critical
func (l RiskLevel) Elevated() bool {
	return l == RiskLevelHigh || l == RiskLevelCritical
}

// Source tells whether an assessment came from the engine or the fallback
type Source string

const (
	SourceLive     Source = "live"
	SourceFallback Source = "fallback"
)

// RiskAssessmentRequest is the cardiac vitals payload
type RiskAssessmentRequest struct {
	Age              int     `json:"age"`
	RestingHeartRate float64 `json:"resting_hr"`
	HRVSdnn          float64 `json:"hrv_sdnn"`
	HRVRmssd         float64 `json:"hrv_rmssd"`
	SystolicBP       float64 `json:"systolic_bp"`
	DiastolicBP      float64 `json:"diastolic_bp"`
	BMI              float64 `json:"bmi"`
}

// FatigueAssessmentRequest is the sleep/circadian payload
type FatigueAssessmentRequest struct {
	LastSleepDurationHours float64 `json:"last_sleep_duration_hours"`
	AvgSleep7Days          float64 `json:"avg_sleep_7days"`
	HoursAwake             float64 `json:"hours_awake"`
	CurrentHour            int     `json:"current_hour"`
	ShiftType              string  `json:"shift_type"`
}

// RiskAssessmentResult is the cardiac model output
type RiskAssessmentResult struct {
	RiskScore   float64   `json:"risk_score"`
	RiskLevel   RiskLevel `json:"risk_level"`
	RiskFactors []string  `json:"risk_factors"`
}

// Validate rejects results carrying an unknown risk level
func (r RiskAssessmentResult) Validate() error {
	if !r.RiskLevel.Valid() {
		return fmt.Errorf("unknown risk_level %q", r.RiskLevel)
	}
	return nil
}

// FatigueAssessmentResult is the fatigue model output
type FatigueAssessmentResult struct {
	FatigueScore float64   `json:"fatigue_score"`
	FitToWork    bool      `json:"fit_to_work"`
	RiskLevel    RiskLevel `json:"risk_level"`
	Contributors []string  `json:"contributors"`
}

// Validate rejects results carrying an unknown risk level
func (r FatigueAssessmentResult) Validate() error {
	if !r.RiskLevel.Valid() {
		return fmt.Errorf("unknown risk_level %q", r.RiskLevel)
	}
	return nil
}

// Assessment is a complete cardiac+fatigue pair. Both halves always come
// from the same source.
type Assessment struct {
	Cardiac RiskAssessmentResult    `json:"cardiac"`
	Fatigue FatigueAssessmentResult `json:"fatigue"`
	Source  Source                  `json:"source"`
}

// TrendPoint is one day of the weekly risk/fatigue chart
type TrendPoint struct {
	Name    string  `json:"name"`
	Risk    float64 `json:"risk"`
	Fatigue float64 `json:"fatigue"`
}

// RiskView holds the display values derived from an assessment
type RiskView struct {
	HealthScore    int      `json:"health_score"`
	HealthLabel    string   `json:"health_label"`
	CardiacScore   int      `json:"cardiac_score"`
	FatigueIndex   int      `json:"fatigue_index"`
	StatusLabel    string   `json:"status_label"`
	FitToWorkLabel string   `json:"fit_to_work_label"`
	CardiacTone    string   `json:"cardiac_tone"`
	FatigueTone    string   `json:"fatigue_tone"`
	RiskDrivers    []string `json:"risk_drivers"`
	Source         Source   `json:"source"`
}

// RiskSnapshot is what the API hands to dashboard and mobile clients
type RiskSnapshot struct {
	Cardiac   RiskAssessmentResult    `json:"cardiac"`
	Fatigue   FatigueAssessmentResult `json:"fatigue"`
	View      RiskView                `json:"view"`
	Trends    []TrendPoint            `json:"trends"`
	Source    Source                  `json:"source"`
	Timestamp time.Time               `json:"timestamp"`
}

// AssessmentRecord is one persisted snapshot in the history log
type AssessmentRecord struct {
	ID           string    `json:"id"`
	Profile      string    `json:"profile"`
	RiskScore    float64   `json:"risk_score"`
	RiskLevel    RiskLevel `json:"risk_level"`
	FatigueScore float64   `json:"fatigue_score"`
	FitToWork    bool      `json:"fit_to_work"`
	IsFallback   bool      `json:"is_fallback"`
	Timestamp    time.Time `json:"timestamp"`
}
