package model

import (
	"fmt"
	"math"
)

// LogisticModel scores feature vectors with a trained logistic regression:
// sigmoid(w·x + b), reported as the positive-class probability.
type LogisticModel struct {
	weights   []float64
	intercept float64
}

func New(weights []float64, intercept float64) (*LogisticModel, error) {
	if len(weights) == 0 {
		return nil, fmt.Errorf("model has no coefficients")
	}
	return &LogisticModel{weights: weights, intercept: intercept}, nil
}

func (m *LogisticModel) NumFeatures() int {
	return len(m.weights)
}

// Predict scores a batch in one call. Output order matches input order. Any
// row with the wrong width fails the entire batch; partial results are
// never returned.
func (m *LogisticModel) Predict(features [][]float32) ([]float64, error) {
	if len(features) == 0 {
		return nil, fmt.Errorf("empty batch")
	}
	probabilities := make([]float64, len(features))
	for i, row := range features {
		if len(row) != len(m.weights) {
			return nil, fmt.Errorf("row %d has %d features, model expects %d",
				i, len(row), len(m.weights))
		}
		logit := m.intercept
		for j, v := range row {
			logit += m.weights[j] * float64(v)
		}
		probabilities[i] = sigmoid(logit)
	}
	return probabilities, nil
}

func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}
