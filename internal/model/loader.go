package model

import (
	"encoding/json"
	"fmt"
	"os"
)

// artifact is the on-disk model format produced by the offline training
// job: plain JSON so the serving side has no pickle or framework coupling.
type artifact struct {
	ModelType    string    `json:"model_type"`
	Coefficients []float64 `json:"coefficients"`
	Intercept    float64   `json:"intercept"`
}

const artifactType = "logistic_regression"

// Load reads a model artifact from disk and validates it.
func Load(path string) (*LogisticModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading model artifact: %w", err)
	}
	return Parse(data)
}

// Parse builds a model from raw artifact bytes.
func Parse(data []byte) (*LogisticModel, error) {
	var a artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("parsing model artifact: %w", err)
	}
	if a.ModelType != artifactType {
		return nil, fmt.Errorf("unsupported model type %q", a.ModelType)
	}
	return New(a.Coefficients, a.Intercept)
}
