package scoring

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdict-finance/verdict/internal/model"
)

// testArtifact builds a small hand-checkable artifact: identity scaler,
// two tight clusters of approved and rejected points.
func testArtifact(k int) *Artifact {
	identity := Scaler{
		Mean: make([]float64, FeatureCount),
		Std:  []float64{1, 1, 1, 1, 1, 1},
	}

	var points [][]float64
	var labels []int
	// Approved cluster near the origin.
	for i := 0; i < 6; i++ {
		points = append(points, []float64{float64(i) * 0.01, 0, 0, 0, 0, 0})
		labels = append(labels, 1)
	}
	// Rejected cluster far away.
	for i := 0; i < 6; i++ {
		points = append(points, []float64{10 + float64(i)*0.01, 10, 10, 10, 10, 10})
		labels = append(labels, 0)
	}

	return &Artifact{
		K:      k,
		Scaler: identity,
		Points: points,
		Labels: labels,
	}
}

func TestModel_PredictClusters(t *testing.T) {
	m, err := New(testArtifact(6))
	require.NoError(t, err)

	// All-zero features sit inside the approved cluster.
	pred := m.Predict(model.ApplicantFeatures{CityTier: "unknown"})
	// city_tier encodes to 2, still nearest the approved cluster.
	assert.Equal(t, SourceModel, pred.Source)
	assert.False(t, pred.Degraded())
	assert.InDelta(t, 100.0, pred.Probability, 1e-9)

	// Features near the rejected cluster.
	pred = m.Predict(model.ApplicantFeatures{
		NumDebts:        10,
		TotalDebtAmount: 10,
		MonthlyEMIs:     10,
		TotalAssets:     10,
		MonthlyIncome:   10,
		CityTier:        model.TierThree,
	})
	assert.InDelta(t, 0.0, pred.Probability, 1e-9)
}

func TestModel_PredictMixedNeighborhood(t *testing.T) {
	artifact := testArtifact(12) // k spans both clusters entirely
	m, err := New(artifact)
	require.NoError(t, err)

	pred := m.Predict(model.ApplicantFeatures{})
	assert.InDelta(t, 50.0, pred.Probability, 1e-9)
}

func TestModel_PredictRange(t *testing.T) {
	m, err := New(testArtifact(6))
	require.NoError(t, err)

	inputs := []model.ApplicantFeatures{
		{},
		{NumDebts: 3, TotalDebtAmount: 250000, MonthlyEMIs: 12000, TotalAssets: 800000, MonthlyIncome: 65000, CityTier: model.TierOne},
		{NumDebts: 9, TotalDebtAmount: 5e6, MonthlyEMIs: 90000, MonthlyIncome: 40000, CityTier: model.TierTwo},
	}

	for _, features := range inputs {
		pred := m.Predict(features)
		assert.GreaterOrEqual(t, pred.Probability, 0.0)
		assert.LessOrEqual(t, pred.Probability, 100.0)
	}
}

func TestModel_NonFiniteFeatureFallsBackNeutral(t *testing.T) {
	m, err := New(testArtifact(6))
	require.NoError(t, err)

	pred := m.Predict(model.ApplicantFeatures{TotalAssets: math.NaN()})
	assert.Equal(t, SourceFallback, pred.Source)
	assert.True(t, pred.Degraded())
	assert.InDelta(t, NeutralProbability, pred.Probability, 1e-9)
	assert.NotEmpty(t, pred.Reason)
}

func TestFeatureVectorOrder(t *testing.T) {
	vector := featureVector(model.ApplicantFeatures{
		NumDebts:        2,
		TotalDebtAmount: 50000,
		MonthlyEMIs:     5000,
		TotalAssets:     200000,
		MonthlyIncome:   50000,
		CityTier:        model.TierOne,
	})

	assert.Equal(t, []float64{2, 50000, 5000, 200000, 50000, 1}, vector)
}

func TestCityTierEncoding(t *testing.T) {
	assert.Equal(t, 1.0, model.TierOne.Encoded())
	assert.Equal(t, 2.0, model.TierTwo.Encoded())
	assert.Equal(t, 3.0, model.TierThree.Encoded())
	assert.Equal(t, 2.0, model.CityTier("tier_9").Encoded())
}

func TestLoad_MissingArtifactFatalByDefault(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"), false)
	require.Error(t, err)
}

func TestLoad_PlaceholderOptIn(t *testing.T) {
	m, err := Load(filepath.Join(t.TempDir(), "missing.json"), true)
	require.NoError(t, err)
	assert.True(t, m.Placeholder())

	pred := m.Predict(model.ApplicantFeatures{MonthlyIncome: 50000, CityTier: model.TierTwo})
	assert.Equal(t, SourcePlaceholder, pred.Source)
	assert.True(t, pred.Degraded())
	assert.GreaterOrEqual(t, pred.Probability, 0.0)
	assert.LessOrEqual(t, pred.Probability, 100.0)

	// Deterministic seed: a second load predicts identically.
	m2, err := Load(filepath.Join(t.TempDir(), "missing.json"), true)
	require.NoError(t, err)
	pred2 := m2.Predict(model.ApplicantFeatures{MonthlyIncome: 50000, CityTier: model.TierTwo})
	assert.Equal(t, pred.Probability, pred2.Probability)
}

func TestLoadArtifact_RoundTrip(t *testing.T) {
	artifact := testArtifact(6)
	data, err := json.Marshal(artifact)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	loaded, err := LoadArtifact(path)
	require.NoError(t, err)
	assert.Equal(t, artifact.K, loaded.K)
	assert.Equal(t, artifact.Points, loaded.Points)
	assert.Equal(t, artifact.Labels, loaded.Labels)
}

func TestArtifact_Validate(t *testing.T) {
	tests := []struct {
		mutate func(*Artifact)
		name   string
	}{
		{name: "zero k", mutate: func(a *Artifact) { a.K = 0 }},
		{name: "short scaler", mutate: func(a *Artifact) { a.Scaler.Mean = a.Scaler.Mean[:3] }},
		{name: "no points", mutate: func(a *Artifact) { a.Points = nil; a.Labels = nil }},
		{name: "label mismatch", mutate: func(a *Artifact) { a.Labels = a.Labels[:2] }},
		{name: "ragged point", mutate: func(a *Artifact) { a.Points[0] = a.Points[0][:2] }},
		{name: "bad label", mutate: func(a *Artifact) { a.Labels[0] = 7 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			artifact := testArtifact(6)
			tt.mutate(artifact)
			assert.Error(t, artifact.Validate())
		})
	}
}
