// Package scoring wraps the pretrained nearest-neighbor credit classifier.
package scoring

import (
	"encoding/json"
	"fmt"
	"os"
)

// FeatureCount is the fixed width of the inference vector. The order is
// part of the training contract: num_debts, total_debt_amount,
// monthly_emis, total_assets, monthly_income, city_tier_encoded.
const FeatureCount = 6

// Scaler holds the standardization parameters fitted at training time.
type Scaler struct {
	Mean []float64 `json:"mean"`
	Std  []float64 `json:"std"`
}

// Artifact is the serialized trained model: scaler parameters plus the
// standardized training points and their approval labels.
type Artifact struct {
	FeatureNames []string    `json:"feature_names"`
	Scaler       Scaler      `json:"scaler"`
	Points       [][]float64 `json:"points"`
	Labels       []int       `json:"labels"`
	K            int         `json:"k"`
}

// LoadArtifact reads and validates a model artifact from disk.
func LoadArtifact(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model artifact: %w", err)
	}

	var artifact Artifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("failed to parse model artifact: %w", err)
	}

	if err := artifact.Validate(); err != nil {
		return nil, fmt.Errorf("invalid model artifact %s: %w", path, err)
	}

	return &artifact, nil
}

// Validate checks the artifact's internal consistency.
func (a *Artifact) Validate() error {
	if a.K <= 0 {
		return fmt.Errorf("k must be positive, got %d", a.K)
	}
	if len(a.Scaler.Mean) != FeatureCount || len(a.Scaler.Std) != FeatureCount {
		return fmt.Errorf("scaler must have %d parameters, got %d/%d",
			FeatureCount, len(a.Scaler.Mean), len(a.Scaler.Std))
	}
	if len(a.Points) == 0 {
		return fmt.Errorf("artifact has no training points")
	}
	if len(a.Points) != len(a.Labels) {
		return fmt.Errorf("point/label count mismatch: %d vs %d", len(a.Points), len(a.Labels))
	}
	for i, point := range a.Points {
		if len(point) != FeatureCount {
			return fmt.Errorf("point %d has %d features, want %d", i, len(point), FeatureCount)
		}
	}
	for i, label := range a.Labels {
		if label != 0 && label != 1 {
			return fmt.Errorf("label %d must be 0 or 1, got %d", i, label)
		}
	}
	return nil
}
