// Package model evaluates trained yield regressors. A Predictor is either a
// Pipeline loaded from a local artifact or a Remote model server.
package model

import (
	"context"
	"errors"

	"github.com/lox/cropyield/internal/features"
)

// Errors returned by predictors. All of them are request-scoped: the caller
// reports them and carries on serving.
var (
	ErrSchemaMismatch  = errors.New("feature vector does not match model schema")
	ErrUnknownCategory = errors.New("unknown category")
	ErrNumeric         = errors.New("numeric error")
	ErrRejected        = errors.New("prediction rejected")
)

// Predictor maps a feature vector to a yield estimate in tonnes/hectare.
type Predictor interface {
	Predict(ctx context.Context, v features.Vector) (float64, error)

	// Name identifies the implementation in logs and metrics.
	Name() string
}
