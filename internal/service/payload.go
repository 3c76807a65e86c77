package service

import (
	"fmt"
	"time"

	"github.com/healthtwin/backend/internal/domain"
)

// Profile selects which fixed payload set a snapshot is computed from
type Profile string

const (
	ProfileDashboard Profile = "dashboard"
	ProfileMobile    Profile = "mobile"
	ProfileCustom    Profile = "custom"
)

// ParseProfile maps a user-supplied name to a built-in profile
func ParseProfile(name string) (Profile, error) {
	switch p := Profile(name); p {
	case ProfileDashboard, ProfileMobile:
		return p, nil
	}
	return "", fmt.Errorf("payload: unknown profile %q", name)
}

// PayloadBuilder constructs the request bodies sent to the risk engine
type PayloadBuilder struct {
	now func() time.Time
}

// NewPayloadBuilder creates a builder; now supplies the wall clock for
// payloads that depend on the current hour
func NewPayloadBuilder(now func() time.Time) *PayloadBuilder {
	if now == nil {
		now = time.Now
	}
	return &PayloadBuilder{now: now}
}

// Build returns fresh request bodies for a built-in profile
func (b *PayloadBuilder) Build(p Profile) (domain.RiskAssessmentRequest, domain.FatigueAssessmentRequest, error) {
	switch p {
	case ProfileDashboard:
		// Night-shift worker at the circadian low
		return domain.RiskAssessmentRequest{
				Age:              45,
				RestingHeartRate: 82,
				HRVSdnn:          45,
				HRVRmssd:         18,
				SystolicBP:       135,
				DiastolicBP:      85,
				BMI:              28,
			}, domain.FatigueAssessmentRequest{
				LastSleepDurationHours: 5.5,
				AvgSleep7Days:          6.0,
				HoursAwake:             18,
				CurrentHour:            3,
				ShiftType:              "night",
			}, nil
	case ProfileMobile:
		return domain.RiskAssessmentRequest{
				Age:              35,
				RestingHeartRate: 72,
				HRVSdnn:          45,
				HRVRmssd:         25,
				SystolicBP:       120,
				DiastolicBP:      80,
				BMI:              24,
			}, domain.FatigueAssessmentRequest{
				LastSleepDurationHours: 6.5,
				AvgSleep7Days:          6.8,
				HoursAwake:             14,
				CurrentHour:            b.now().Hour(),
				ShiftType:              "day",
			}, nil
	}
	return domain.RiskAssessmentRequest{}, domain.FatigueAssessmentRequest{}, fmt.Errorf("payload: no built-in payload for profile %q", p)
}

// FromVitals builds request bodies from caller-supplied metrics
func (b *PayloadBuilder) FromVitals(v domain.Vitals) (domain.RiskAssessmentRequest, domain.FatigueAssessmentRequest, error) {
	if err := inputValidate.Struct(v); err != nil {
		return domain.RiskAssessmentRequest{}, domain.FatigueAssessmentRequest{}, fmt.Errorf("payload: invalid vitals: %w", err)
	}

	hour := b.now().Hour()
	if v.CurrentHour != nil {
		hour = *v.CurrentHour
	}
	shift := v.ShiftType
	if shift == "" {
		shift = "day"
	}

	return domain.RiskAssessmentRequest{
			Age:              v.Age,
			RestingHeartRate: v.RestingHeartRate,
			HRVSdnn:          v.HRVSdnn,
			HRVRmssd:         v.HRVRmssd,
			SystolicBP:       v.SystolicBP,
			DiastolicBP:      v.DiastolicBP,
			BMI:              v.BMI,
		}, domain.FatigueAssessmentRequest{
			LastSleepDurationHours: v.LastSleepDurationHours,
			AvgSleep7Days:          v.AvgSleep7Days,
			HoursAwake:             v.HoursAwake,
			CurrentHour:            hour,
			ShiftType:              shift,
		}, nil
}
