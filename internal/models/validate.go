package models

import (
	"fmt"
	"math"
	"strings"
)

// FieldError describes a single invalid form field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidationErrors is returned when a request fails validation. It is a
// request-scoped error: the form is re-rendered with the messages.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, fe := range v {
		msgs[i] = fe.Error()
	}
	return "invalid request: " + strings.Join(msgs, "; ")
}

// ValidateRequest checks that crop, season and state are given, the numeric
// bounds of a request and, when a catalog is given, that every categorical
// value is one the model was trained on. Temperatures may be below zero.
func ValidateRequest(req PredictionRequest, c *Catalog) error {
	var errs ValidationErrors
	add := func(field, format string, args ...any) {
		errs = append(errs, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	categorical := []struct {
		field string
		label string
		value string
		known func(string) bool
	}{
		{"Crop", "crop", req.Crop, c.HasCrop},
		{"Season", "season", req.Season, c.HasSeason},
		{"State", "state", req.State, c.HasState},
	}
	for _, f := range categorical {
		switch {
		case f.value == "":
			add(f.field, "is required")
		case c != nil && !f.known(f.value):
			add(f.field, "unknown %s %q", f.label, f.value)
		}
	}

	if req.CropYear < MinCropYear || req.CropYear > MaxCropYear {
		add("Crop_Year", "must be between %d and %d", MinCropYear, MaxCropYear)
	}

	numeric := []struct {
		field   string
		value   float64
		min     float64
		bounded bool
	}{
		{"Area", req.Area, MinArea, true},
		{"Annual_Rainfall", req.AnnualRainfall, 0, true},
		{"Avg_Temperature", req.AvgTemperature, 0, false},
		{"Max_Temperature", req.MaxTemperature, 0, false},
		{"Min_Temperature", req.MinTemperature, 0, false},
		{"Fertilizer", req.Fertilizer, 0, true},
		{"Pesticide", req.Pesticide, 0, true},
	}
	for _, n := range numeric {
		if math.IsNaN(n.value) || math.IsInf(n.value, 0) {
			add(n.field, "must be a finite number")
			continue
		}
		if n.bounded && n.value < n.min {
			add(n.field, "must be at least %g", n.min)
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}
