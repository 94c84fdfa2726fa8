package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/lox/cropyield/internal/metrics"
	"github.com/lox/cropyield/internal/models"
	"github.com/lox/cropyield/internal/predict"
)

// writeJSON encodes v before touching the response, so an encoding failure
// still produces a complete 500.
func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		http.Error(w, "encode response: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

func (s *Server) handleAPIOptions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.assets.Catalog)
}

// handleAPIPredict accepts a JSON PredictionRequest. Omitted numeric fields
// take the form defaults; crop, season and state must be given.
func (s *Server) handleAPIPredict(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Error: "method not allowed"})
		return
	}

	req := models.DefaultRequest(nil)
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "decode request: " + err.Error()})
		return
	}

	if err := models.ValidateRequest(req, s.assets.Catalog); err != nil {
		metrics.PredictionsTotal.WithLabelValues(metrics.OutcomeInvalid).Inc()
		resp := ErrorResponse{Error: err.Error()}
		var verrs models.ValidationErrors
		if errors.As(err, &verrs) {
			resp.Fields = verrs
		}
		writeJSON(w, http.StatusBadRequest, resp)
		return
	}

	result, err := s.service.Predict(r.Context(), req)
	if err != nil {
		resp := ErrorResponse{Error: err.Error()}
		var perr *predict.Error
		if errors.As(err, &perr) {
			resp.RequestID = perr.RequestID
		}
		writeJSON(w, http.StatusUnprocessableEntity, resp)
		return
	}

	writeJSON(w, http.StatusOK, PredictResponse{
		PredictionResult: result,
		YieldText:        predict.FormatYield(result),
		ProductionText:   predict.FormatProduction(result),
	})
}
