package scoring

import (
	"math"
	"math/rand"
)

// placeholderSeed keeps placeholder predictions reproducible across runs,
// which keeps degraded environments at least debuggable.
const placeholderSeed = 1

// placeholderArtifact builds a synthetic stand-in classifier fitted on
// random data. It exists only so the pipeline never crashes when the real
// artifact is absent; its predictions carry no signal.
func placeholderArtifact() *Artifact {
	rng := rand.New(rand.NewSource(placeholderSeed))

	const samples = 100

	points := make([][]float64, samples)
	labels := make([]int, samples)
	for i := range points {
		point := make([]float64, FeatureCount)
		for j := range point {
			point[j] = rng.Float64()
		}
		points[i] = point
		labels[i] = rng.Intn(2)
	}

	mean := make([]float64, FeatureCount)
	std := make([]float64, FeatureCount)
	fitScaler(points, mean, std)

	scaled := make([][]float64, samples)
	scaler := Scaler{Mean: mean, Std: std}
	for i, point := range points {
		scaled[i] = scaler.transform(point)
	}

	return &Artifact{
		K: 6,
		FeatureNames: []string{
			"num_debts", "total_debt_amount", "monthly_emis",
			"total_assets", "monthly_income", "city_tier_encoded",
		},
		Scaler: scaler,
		Points: scaled,
		Labels: labels,
	}
}

// fitScaler computes per-feature mean and population standard deviation.
func fitScaler(points [][]float64, mean, std []float64) {
	n := float64(len(points))

	for _, point := range points {
		for j, v := range point {
			mean[j] += v
		}
	}
	for j := range mean {
		mean[j] /= n
	}

	for _, point := range points {
		for j, v := range point {
			d := v - mean[j]
			std[j] += d * d
		}
	}
	for j := range std {
		std[j] = math.Sqrt(std[j] / n)
	}
}
