package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/lox/cropyield/internal/models"
)

// parseForm reads a submission. Fields that fail to parse keep their default
// value and are reported alongside any validation errors.
func parseForm(r *http.Request, c *models.Catalog) (models.PredictionRequest, models.ValidationErrors) {
	req := models.DefaultRequest(c)
	var errs models.ValidationErrors

	req.Crop = strings.TrimSpace(r.PostFormValue("Crop"))
	req.Season = strings.TrimSpace(r.PostFormValue("Season"))
	req.State = strings.TrimSpace(r.PostFormValue("State"))

	if v := strings.TrimSpace(r.PostFormValue("Crop_Year")); v == "" {
		errs = append(errs, models.FieldError{Field: "Crop_Year", Message: "is required"})
	} else if year, err := strconv.Atoi(v); err != nil {
		errs = append(errs, models.FieldError{Field: "Crop_Year", Message: "must be a whole number"})
	} else {
		req.CropYear = year
	}

	floats := []struct {
		field string
		dst   *float64
	}{
		{"Area", &req.Area},
		{"Annual_Rainfall", &req.AnnualRainfall},
		{"Avg_Temperature", &req.AvgTemperature},
		{"Max_Temperature", &req.MaxTemperature},
		{"Min_Temperature", &req.MinTemperature},
		{"Fertilizer", &req.Fertilizer},
		{"Pesticide", &req.Pesticide},
	}
	for _, f := range floats {
		v := strings.TrimSpace(r.PostFormValue(f.field))
		if v == "" {
			errs = append(errs, models.FieldError{Field: f.field, Message: "is required"})
			continue
		}
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = append(errs, models.FieldError{Field: f.field, Message: "must be a number"})
			continue
		}
		*f.dst = n
	}

	return req, errs
}
