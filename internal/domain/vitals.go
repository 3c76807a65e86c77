package domain

// Vitals is a caller-supplied set of health metrics for an on-demand assessment
type Vitals struct {
	Age              int     `json:"age" validate:"required,min=16,max=100"`
	RestingHeartRate float64 `json:"resting_hr" validate:"required,gt=0,lt=250"`
	HRVSdnn          float64 `json:"hrv_sdnn" validate:"gte=0"`
	HRVRmssd         float64 `json:"hrv_rmssd" validate:"gte=0"`
	SystolicBP       float64 `json:"systolic_bp" validate:"gte=0"`
	DiastolicBP      float64 `json:"diastolic_bp" validate:"gte=0"`
	BMI              float64 `json:"bmi" validate:"gte=0"`

	LastSleepDurationHours float64 `json:"last_sleep_duration_hours" validate:"gte=0,lte=24"`
	AvgSleep7Days          float64 `json:"avg_sleep_7days" validate:"gte=0,lte=24"`
	HoursAwake             float64 `json:"hours_awake" validate:"gte=0"`
	CurrentHour            *int    `json:"current_hour" validate:"omitnil,min=0,max=23"`
	ShiftType              string  `json:"shift_type" validate:"omitempty,oneof=day night rotating"`
}
