package domain

// Settings is the operator-tunable alerting and reporting configuration
type Settings struct {
	CardiacRiskThreshold float64 `json:"cardiacRiskThreshold"`
	FatigueThreshold     float64 `json:"fatigueThreshold"`
	HRVThreshold         float64 `json:"hrvThreshold"`
	HeartRateThreshold   float64 `json:"heartRateThreshold"`
	EmailNotifications   bool    `json:"emailNotifications"`
	SMSNotifications     bool    `json:"smsNotifications"`
	PushNotifications    bool    `json:"pushNotifications"`
	AlertFrequency       string  `json:"alertFrequency"`
	DataRetention        int     `json:"dataRetention"`
	AutoReports          bool    `json:"autoReports"`
	ReportFrequency      string  `json:"reportFrequency"`
	Timezone             string  `json:"timezone"`
}

// DefaultSettings returns the out-of-the-box configuration
func DefaultSettings() Settings {
	return Settings{
		CardiacRiskThreshold: 60,
		FatigueThreshold:     70,
		HRVThreshold:         50,
		HeartRateThreshold:   90,
		EmailNotifications:   true,
		SMSNotifications:     false,
		PushNotifications:    true,
		AlertFrequency:       "immediate",
		DataRetention:        90,
		AutoReports:          true,
		ReportFrequency:      "weekly",
		Timezone:             "Asia/Dubai",
	}
}

// SettingsPatch is a partial update; nil fields are left unchanged
type SettingsPatch struct {
	CardiacRiskThreshold *float64 `json:"cardiacRiskThreshold" validate:"omitnil,min=0,max=100"`
	FatigueThreshold     *float64 `json:"fatigueThreshold" validate:"omitnil,min=0,max=100"`
	HRVThreshold         *float64 `json:"hrvThreshold" validate:"omitnil,min=0,max=100"`
	HeartRateThreshold   *float64 `json:"heartRateThreshold" validate:"omitnil,min=0,max=250"`
	EmailNotifications   *bool    `json:"emailNotifications"`
	SMSNotifications     *bool    `json:"smsNotifications"`
	PushNotifications    *bool    `json:"pushNotifications"`
	AlertFrequency       *string  `json:"alertFrequency" validate:"omitnil,oneof=immediate hourly daily"`
	DataRetention        *int     `json:"dataRetention" validate:"omitnil,min=1,max=3650"`
	AutoReports          *bool    `json:"autoReports"`
	ReportFrequency      *string  `json:"reportFrequency" validate:"omitnil,oneof=daily weekly monthly"`
	Timezone             *string  `json:"timezone"`
}

// Apply merges the patch over s and returns the result
func (p SettingsPatch) Apply(s Settings) Settings {
	if p.CardiacRiskThreshold != nil {
		s.CardiacRiskThreshold = *p.CardiacRiskThreshold
	}
	if p.FatigueThreshold != nil {
		s.FatigueThreshold = *p.FatigueThreshold
	}
	if p.HRVThreshold != nil {
		s.HRVThreshold = *p.HRVThreshold
	}
	if p.HeartRateThreshold != nil {
		s.HeartRateThreshold = *p.HeartRateThreshold
	}
	if p.EmailNotifications != nil {
		s.EmailNotifications = *p.EmailNotifications
	}
	if p.SMSNotifications != nil {
		s.SMSNotifications = *p.SMSNotifications
	}
	if p.PushNotifications != nil {
		s.PushNotifications = *p.PushNotifications
	}
	if p.AlertFrequency != nil {
		s.AlertFrequency = *p.AlertFrequency
	}
	if p.DataRetention != nil {
		s.DataRetention = *p.DataRetention
	}
	if p.AutoReports != nil {
		s.AutoReports = *p.AutoReports
	}
	if p.ReportFrequency != nil {
		s.ReportFrequency = *p.ReportFrequency
	}
	if p.Timezone != nil {
		s.Timezone = *p.Timezone
	}
	return s
}
