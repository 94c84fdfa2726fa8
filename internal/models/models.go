package models

import "sort"

// Form defaults, matching the values the input form is pre-filled with.
const (
	DefaultCropYear       = 2024
	DefaultArea           = 10.0
	DefaultAnnualRainfall = 1000.0
	DefaultAvgTemperature = 25.0
	DefaultMaxTemperature = 32.0
	DefaultMinTemperature = 18.0
	DefaultFertilizer     = 1000.0
	DefaultPesticide      = 10.0

	MinCropYear = 1997
	MaxCropYear = 2030
	MinArea     = 0.1
)

// PredictionRequest holds the raw attributes entered for a single submission.
type PredictionRequest struct {
	Crop           string  `json:"crop"`
	Season         string  `json:"season"`
	State          string  `json:"state"`
	CropYear       int     `json:"crop_year"`
	Area           float64 `json:"area"`            // hectares
	AnnualRainfall float64 `json:"annual_rainfall"` // mm
	AvgTemperature float64 `json:"avg_temperature"` // °C
	MaxTemperature float64 `json:"max_temperature"`
	MinTemperature float64 `json:"min_temperature"`
	Fertilizer     float64 `json:"fertilizer"` // total kg
	Pesticide      float64 `json:"pesticide"`  // total kg
}

// DefaultRequest returns a request pre-filled with the form defaults and the
// first catalog value for each categorical field.
func DefaultRequest(c *Catalog) PredictionRequest {
	req := PredictionRequest{
		CropYear:       DefaultCropYear,
		Area:           DefaultArea,
		AnnualRainfall: DefaultAnnualRainfall,
		AvgTemperature: DefaultAvgTemperature,
		MaxTemperature: DefaultMaxTemperature,
		MinTemperature: DefaultMinTemperature,
		Fertilizer:     DefaultFertilizer,
		Pesticide:      DefaultPesticide,
	}
	if c != nil {
		req.Crop = first(c.Crops)
		req.Season = first(c.Seasons)
		req.State = first(c.States)
	}
	return req
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// PredictionResult is the outcome of a successful prediction. Values keep full
// precision; rounding happens only when formatting for display.
type PredictionResult struct {
	RequestID       string  `json:"request_id"`
	Yield           float64 `json:"yield"`            // tonnes/hectare
	TotalProduction float64 `json:"total_production"` // tonnes
}

// Catalog holds the valid values for each categorical field, as seen in the
// training data.
type Catalog struct {
	Crops   []string `json:"Crop"`
	Seasons []string `json:"Season"`
	States  []string `json:"State"`

	// CropTypes is the training-time crop to crop-type grouping, when the
	// catalog artifact carries one.
	CropTypes map[string]string `json:"Crop_Type,omitempty"`
}

// Normalize sorts and de-duplicates every value list in place.
func (c *Catalog) Normalize() {
	c.Crops = uniqueSorted(c.Crops)
	c.Seasons = uniqueSorted(c.Seasons)
	c.States = uniqueSorted(c.States)
}

func (c *Catalog) HasCrop(v string) bool   { return contains(c.Crops, v) }
func (c *Catalog) HasSeason(v string) bool { return contains(c.Seasons, v) }
func (c *Catalog) HasState(v string) bool  { return contains(c.States, v) }

func contains(sorted []string, v string) bool {
	i := sort.SearchStrings(sorted, v)
	return i < len(sorted) && sorted[i] == v
}

func uniqueSorted(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
