package api

import (
	"github.com/lox/cropyield/internal/models"
)

// PageData is everything the index template needs. Exactly one of Errors,
// Error and Result is set after a submission; none of them on first load.
type PageData struct {
	Catalog *models.Catalog
	Request models.PredictionRequest
	Errors  models.ValidationErrors
	Error   string
	Result  *ResultView

	MinYear int
	MaxYear int
	MinArea float64
}

// ResultView is a successful prediction formatted for display.
type ResultView struct {
	RequestID      string
	YieldText      string
	ProductionText string
}

// FieldError returns the validation message for a field, if any.
func (p PageData) FieldError(field string) string {
	for _, fe := range p.Errors {
		if fe.Field == field {
			return fe.Message
		}
	}
	return ""
}

// PredictResponse is the JSON body of a successful /api/predict call.
type PredictResponse struct {
	*models.PredictionResult
	YieldText      string `json:"yield_text"`
	ProductionText string `json:"production_text"`
}

// ErrorResponse is the JSON body of a failed /api/predict call.
type ErrorResponse struct {
	Error     string                  `json:"error"`
	RequestID string                  `json:"request_id,omitempty"`
	Fields    models.ValidationErrors `json:"fields,omitempty"`
}

// HealthStatus reports what the server loaded at startup.
type HealthStatus struct {
	Status    string `json:"status"`
	Predictor string `json:"predictor"`
	Crops     int    `json:"crops"`
	Seasons   int    `json:"seasons"`
	States    int    `json:"states"`
}
