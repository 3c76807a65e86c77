package domain

// Thresholds is the single table every display rule reads from
type Thresholds struct {
	// HighRisk is the score at or above which the status reads "High risk"
	HighRisk float64 `yaml:"high_risk" json:"high_risk"`
	// HealthExcellent and HealthGood band the derived health score
	HealthExcellent int `yaml:"health_excellent" json:"health_excellent"`
	HealthGood      int `yaml:"health_good" json:"health_good"`
}

// DefaultThresholds matches the values the clients shipped with
var DefaultThresholds = Thresholds{
	HighRisk:        60,
	HealthExcellent: 80,
	HealthGood:      60,
}
