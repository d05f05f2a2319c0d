// internal/config/weights.go

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// weightsFile is the YAML shape of an external scoring-weights file.
// Marketing adjusts these tables without a redeploy.
type weightsFile struct {
	BrandTerms []string           `yaml:"brand_terms"`
	Priority   map[string]float64 `yaml:"priority_weights"`
	Category   map[string]float64 `yaml:"category_weights"`
}

// loadWeightsFile overlays the YAML file onto the scoring defaults.
// Keys present in the file replace defaults; absent keys keep theirs.
func (s *ScoringConfig) loadWeightsFile() error {
	data, err := os.ReadFile(s.WeightsFile)
	if err != nil {
		return fmt.Errorf("reading %s: %w", s.WeightsFile, err)
	}

	var wf weightsFile
	if err := yaml.Unmarshal(data, &wf); err != nil {
		return fmt.Errorf("parsing %s: %w", s.WeightsFile, err)
	}

	if len(wf.BrandTerms) > 0 {
		s.BrandTerms = wf.BrandTerms
	}
	for k, v := range wf.Priority {
		s.PriorityWeights[k] = v
	}
	for k, v := range wf.Category {
		s.CategoryWeights[k] = v
	}

	return nil
}
