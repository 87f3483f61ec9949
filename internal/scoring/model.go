package scoring

import (
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/verdict-finance/verdict/internal/model"
)

// NeutralProbability is returned when inference cannot run; the decision
// pipeline degrades to a neutral score instead of failing the request.
const NeutralProbability = 50.0

// Source tags where a probability came from, so callers and tests can
// distinguish real inference from degraded inference.
type Source string

// Prediction sources.
const (
	// SourceModel is a real inference from the trained artifact.
	SourceModel Source = "model"
	// SourcePlaceholder is an inference from the synthetic development
	// placeholder, not the trained model.
	SourcePlaceholder Source = "placeholder"
	// SourceFallback is the fixed neutral value used when inference failed.
	SourceFallback Source = "fallback"
)

// Prediction is a probability of approval (0..100) with its provenance.
type Prediction struct {
	Source      Source
	Reason      string
	Probability float64
}

// Degraded reports whether the prediction came from anything other than
// the trained model.
func (p Prediction) Degraded() bool {
	return p.Source != SourceModel
}

// Model is the inference-time credit classifier. The artifact is loaded
// once and shared read-only across concurrent requests.
type Model struct {
	artifact *Artifact
	source   Source
}

// Load reads the trained artifact at path. When the artifact is missing or
// corrupt and allowPlaceholder is set, a clearly non-production synthetic
// placeholder is substituted so the pipeline still produces decisions;
// otherwise the error propagates and startup should abort.
func Load(path string, allowPlaceholder bool) (*Model, error) {
	artifact, err := LoadArtifact(path)
	if err == nil {
		slog.Info("loaded credit scoring model",
			"path", path,
			"k", artifact.K,
			"training_points", len(artifact.Points))
		return &Model{artifact: artifact, source: SourceModel}, nil
	}

	if !allowPlaceholder {
		return nil, err
	}

	slog.Warn("model artifact unavailable, using synthetic placeholder classifier; predictions are NOT production grade",
		"path", path,
		"error", err)
	return &Model{artifact: placeholderArtifact(), source: SourcePlaceholder}, nil
}

// New creates a model directly from an artifact. Used by tests and tools
// that already hold a validated artifact in memory.
func New(artifact *Artifact) (*Model, error) {
	if err := artifact.Validate(); err != nil {
		return nil, fmt.Errorf("invalid artifact: %w", err)
	}
	return &Model{artifact: artifact, source: SourceModel}, nil
}

// Placeholder reports whether the model is the synthetic substitute.
func (m *Model) Placeholder() bool {
	return m.source == SourcePlaceholder
}

// Predict returns the probability of approval for the given applicant,
// scaled to 0..100 and rounded to two decimals. Inference failures yield
// the neutral fallback rather than an error.
func (m *Model) Predict(features model.ApplicantFeatures) Prediction {
	vector := featureVector(features)

	for i, v := range vector {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Prediction{
				Probability: NeutralProbability,
				Source:      SourceFallback,
				Reason:      fmt.Sprintf("non-finite feature at index %d", i),
			}
		}
	}

	scaled := m.artifact.Scaler.transform(vector)
	probability := m.posterior(scaled)

	return Prediction{
		Probability: round2(probability * 100),
		Source:      m.source,
	}
}

// featureVector lays the applicant attributes out in training order.
func featureVector(features model.ApplicantFeatures) []float64 {
	return []float64{
		float64(features.NumDebts),
		features.TotalDebtAmount,
		features.MonthlyEMIs,
		features.TotalAssets,
		features.MonthlyIncome,
		features.CityTier.Encoded(),
	}
}

// transform standardizes a raw feature vector. A zero-variance feature
// keeps its centered value, matching the fitted scaler's convention.
func (s *Scaler) transform(vector []float64) []float64 {
	scaled := make([]float64, len(vector))
	for i, v := range vector {
		std := s.Std[i]
		if std == 0 {
			std = 1
		}
		scaled[i] = (v - s.Mean[i]) / std
	}
	return scaled
}

// posterior runs k-nearest-neighbor voting over the standardized training
// points and returns the fraction of approved neighbors.
func (m *Model) posterior(scaled []float64) float64 {
	type neighbor struct {
		distance float64
		label    int
	}

	neighbors := make([]neighbor, len(m.artifact.Points))
	for i, point := range m.artifact.Points {
		neighbors[i] = neighbor{
			distance: euclidean(scaled, point),
			label:    m.artifact.Labels[i],
		}
	}

	sort.Slice(neighbors, func(i, j int) bool {
		return neighbors[i].distance < neighbors[j].distance
	})

	k := m.artifact.K
	if k > len(neighbors) {
		k = len(neighbors)
	}

	approved := 0
	for _, n := range neighbors[:k] {
		if n.label == 1 {
			approved++
		}
	}

	return float64(approved) / float64(k)
}

func euclidean(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
