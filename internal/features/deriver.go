package features

import (
	"github.com/lox/cropyield/internal/models"
)

const (
	// perHectareOffset is added to the area before dividing totals, matching
	// the smoothing used when the model was trained.
	perHectareOffset = 1.0

	// OtherRegion is assigned to states outside the region map.
	OtherRegion = "Other"
	// OtherCropType is assigned to crops outside the crop type dictionary.
	OtherCropType = "Other"
)

// Deriver turns raw form input into the feature vector the predictor expects.
// It holds only immutable lookup tables and is safe to share.
type Deriver struct {
	stateRegion map[string]string
	cropTypes   map[string]string
}

// NewDeriver builds a Deriver from a region map (region to states) and a crop
// type dictionary (crop to type). The region map is inverted once here.
func NewDeriver(regions RegionMap, cropTypes CropTypes) *Deriver {
	stateRegion := make(map[string]string)
	for region, states := range regions {
		for _, state := range states {
			stateRegion[state] = region
		}
	}
	types := make(map[string]string, len(cropTypes))
	for crop, typ := range cropTypes {
		types[crop] = typ
	}
	return &Deriver{stateRegion: stateRegion, cropTypes: types}
}

// Region returns the region of a state, or OtherRegion when unmapped.
func (d *Deriver) Region(state string) string {
	if region, ok := d.stateRegion[state]; ok {
		return region
	}
	return OtherRegion
}

// CropType returns the type of a crop, or OtherCropType when unmapped.
func (d *Deriver) CropType(crop string) string {
	if typ, ok := d.cropTypes[crop]; ok {
		return typ
	}
	return OtherCropType
}

// Derive computes the feature vector for req. The raw fertilizer and pesticide
// totals are replaced by their per-hectare ratios.
func (d *Deriver) Derive(req models.PredictionRequest) Vector {
	return Vector{
		Crop:                 req.Crop,
		CropYear:             req.CropYear,
		Season:               req.Season,
		State:                req.State,
		Area:                 req.Area,
		AnnualRainfall:       req.AnnualRainfall,
		AvgTemperature:       req.AvgTemperature,
		MaxTemperature:       req.MaxTemperature,
		MinTemperature:       req.MinTemperature,
		FertilizerPerHectare: PerHectare(req.Fertilizer, req.Area),
		PesticidePerHectare:  PerHectare(req.Pesticide, req.Area),
		Region:               d.Region(req.State),
		CropType:             d.CropType(req.Crop),
	}
}

// PerHectare divides a total by the smoothed area.
func PerHectare(total, area float64) float64 {
	return total / (area + perHectareOffset)
}
