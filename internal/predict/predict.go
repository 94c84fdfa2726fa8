// Package predict is the single boundary between a form submission and the
// predictor. Every failure past validation is turned into an *Error here.
package predict

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lox/cropyield/internal/features"
	"github.com/lox/cropyield/internal/metrics"
	"github.com/lox/cropyield/internal/model"
	"github.com/lox/cropyield/internal/models"
)

// Error is a request-scoped prediction failure. It is shown to the user; the
// service stays usable for the next submission.
type Error struct {
	RequestID string
	Err       error
}

func (e *Error) Error() string {
	return "prediction failed: " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Service derives features and invokes the predictor.
type Service struct {
	predictor model.Predictor
	deriver   *features.Deriver
	logger    *zap.Logger
}

func NewService(predictor model.Predictor, deriver *features.Deriver, logger *zap.Logger) *Service {
	return &Service{
		predictor: predictor,
		deriver:   deriver,
		logger:    logger,
	}
}

// Predict runs one submission to completion. The request is expected to have
// passed models.ValidateRequest already.
func (s *Service) Predict(ctx context.Context, req models.PredictionRequest) (*models.PredictionResult, error) {
	requestID := uuid.NewString()
	start := time.Now()

	v := s.deriver.Derive(req)
	yield, err := s.invoke(ctx, v)
	metrics.PredictionLatency.WithLabelValues(s.predictor.Name()).Observe(time.Since(start).Seconds())

	total := TotalProduction(yield, req.Area)
	if err == nil && (math.IsNaN(total) || math.IsInf(total, 0)) {
		err = fmt.Errorf("%w: total production %v for area %g", model.ErrNumeric, total, req.Area)
	}

	if err != nil {
		metrics.PredictionsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		s.logger.Warn("prediction failed",
			zap.String("request_id", requestID),
			zap.String("crop", req.Crop),
			zap.String("season", req.Season),
			zap.String("state", req.State),
			zap.Error(err))
		return nil, &Error{RequestID: requestID, Err: err}
	}

	metrics.PredictionsTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
	result := &models.PredictionResult{
		RequestID:       requestID,
		Yield:           yield,
		TotalProduction: total,
	}
	s.logger.Info("prediction",
		zap.String("request_id", requestID),
		zap.String("crop", req.Crop),
		zap.String("region", v.Region),
		zap.String("crop_type", v.CropType),
		zap.Float64("yield", result.Yield),
		zap.Duration("took", time.Since(start)))
	return result, nil
}

// invoke calls the predictor, converting a panic into an error.
func (s *Service) invoke(ctx context.Context, v features.Vector) (yield float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("predictor %s panicked: %v", s.predictor.Name(), r)
		}
	}()
	return s.predictor.Predict(ctx, v)
}

// TotalProduction is yield per hectare times area.
func TotalProduction(yield, area float64) float64 {
	return yield * area
}

// FormatYield renders the yield line shown on success.
func FormatYield(r *models.PredictionResult) string {
	return fmt.Sprintf("Predicted Yield: %.2f tonnes/hectare", r.Yield)
}

// FormatProduction renders the total production line shown on success.
func FormatProduction(r *models.PredictionResult) string {
	return fmt.Sprintf("Estimated Total Production: %.2f tonnes", r.TotalProduction)
}

// FormatError renders a failure for display.
func FormatError(err error) string {
	return fmt.Sprintf("Error predicting: %v", err)
}
