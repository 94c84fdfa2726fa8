package api

import (
	"bytes"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/lox/cropyield/internal/metrics"
	"github.com/lox/cropyield/internal/models"
	"github.com/lox/cropyield/internal/predict"
)

func (s *Server) newPageData(req models.PredictionRequest) PageData {
	return PageData{
		Catalog: s.assets.Catalog,
		Request: req,
		MinYear: models.MinCropYear,
		MaxYear: models.MaxCropYear,
		MinArea: models.MinArea,
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet, http.MethodHead:
		s.render(w, http.StatusOK, s.newPageData(models.DefaultRequest(s.assets.Catalog)))
	case http.MethodPost:
		s.handleSubmit(w, r)
	default:
		w.Header().Set("Allow", "GET, HEAD, POST")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	req, errs := parseForm(r, s.assets.Catalog)
	if err := models.ValidateRequest(req, s.assets.Catalog); err != nil {
		var verrs models.ValidationErrors
		if errors.As(err, &verrs) {
			errs = append(errs, verrs...)
		}
	}

	data := s.newPageData(req)
	if len(errs) > 0 {
		metrics.PredictionsTotal.WithLabelValues(metrics.OutcomeInvalid).Inc()
		data.Errors = errs
		s.render(w, http.StatusUnprocessableEntity, data)
		return
	}

	result, err := s.service.Predict(r.Context(), req)
	if err != nil {
		data.Error = predict.FormatError(err)
		s.render(w, http.StatusOK, data)
		return
	}

	data.Result = &ResultView{
		RequestID:      result.RequestID,
		YieldText:      predict.FormatYield(result),
		ProductionText: predict.FormatProduction(result),
	}
	s.render(w, http.StatusOK, data)
}

func (s *Server) render(w http.ResponseWriter, status int, data PageData) {
	var buf bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&buf, "index.html", data); err != nil {
		s.logger.Error("template error", zap.Error(err))
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	c := s.assets.Catalog
	writeJSON(w, http.StatusOK, HealthStatus{
		Status:    "ok",
		Predictor: s.assets.Predictor.Name(),
		Crops:     len(c.Crops),
		Seasons:   len(c.Seasons),
		States:    len(c.States),
	})
}
