package service

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/healthtwin/backend/internal/domain"
)

// LoadThresholds reads a YAML thresholds table. Keys missing from the file
// keep their default; an empty path returns the defaults.
func LoadThresholds(path string) (domain.Thresholds, error) {
	t := domain.DefaultThresholds
	if path == "" {
		return t, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Thresholds{}, fmt.Errorf("thresholds: failed to read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &t); err != nil {
		return domain.Thresholds{}, fmt.Errorf("thresholds: failed to parse %s: %w", path, err)
	}

	if t.HighRisk < 0 || t.HighRisk > 100 {
		return domain.Thresholds{}, fmt.Errorf("thresholds: high_risk %v out of range 0-100", t.HighRisk)
	}
	if t.HealthGood > t.HealthExcellent {
		return domain.Thresholds{}, fmt.Errorf("thresholds: health_good %d above health_excellent %d", t.HealthGood, t.HealthExcellent)
	}

	return t, nil
}
