package features

import "strconv"

// Column names, as the predictor was trained on them.
const (
	ColCrop                 = "Crop"
	ColCropYear             = "Crop_Year"
	ColSeason               = "Season"
	ColState                = "State"
	ColArea                 = "Area"
	ColAnnualRainfall       = "Annual_Rainfall"
	ColAvgTemperature       = "Avg_Temperature"
	ColMaxTemperature       = "Max_Temperature"
	ColMinTemperature       = "Min_Temperature"
	ColFertilizerPerHectare = "Fertilizer_per_Hectare"
	ColPesticidePerHectare  = "Pesticide_per_Hectare"
	ColRegion               = "Region"
	ColCropType             = "Crop_Type"
)

// Kind distinguishes numeric columns from categorical ones.
type Kind string

const (
	Number   Kind = "number"
	Category Kind = "category"
)

// Column is one named cell of a feature vector.
type Column struct {
	Name     string  `json:"name"`
	Kind     Kind    `json:"kind"`
	Number   float64 `json:"number,omitempty"`
	Category string  `json:"category,omitempty"`
}

// String renders the cell value.
func (c Column) String() string {
	if c.Kind == Category {
		return c.Category
	}
	return strconv.FormatFloat(c.Number, 'g', -1, 64)
}

// Vector is the derived record handed to the predictor.
type Vector struct {
	Crop                 string
	CropYear             int
	Season               string
	State                string
	Area                 float64
	AnnualRainfall       float64
	AvgTemperature       float64
	MaxTemperature       float64
	MinTemperature       float64
	FertilizerPerHectare float64
	PesticidePerHectare  float64
	Region               string
	CropType             string
}

// Columns returns the vector in training column order.
func (v Vector) Columns() []Column {
	return []Column{
		{Name: ColCrop, Kind: Category, Category: v.Crop},
		{Name: ColCropYear, Kind: Number, Number: float64(v.CropYear)},
		{Name: ColSeason, Kind: Category, Category: v.Season},
		{Name: ColState, Kind: Category, Category: v.State},
		{Name: ColArea, Kind: Number, Number: v.Area},
		{Name: ColAnnualRainfall, Kind: Number, Number: v.AnnualRainfall},
		{Name: ColAvgTemperature, Kind: Number, Number: v.AvgTemperature},
		{Name: ColMaxTemperature, Kind: Number, Number: v.MaxTemperature},
		{Name: ColMinTemperature, Kind: Number, Number: v.MinTemperature},
		{Name: ColFertilizerPerHectare, Kind: Number, Number: v.FertilizerPerHectare},
		{Name: ColPesticidePerHectare, Kind: Number, Number: v.PesticidePerHectare},
		{Name: ColRegion, Kind: Category, Category: v.Region},
		{Name: ColCropType, Kind: Category, Category: v.CropType},
	}
}

// Names returns the column names in order.
func (v Vector) Names() []string {
	cols := v.Columns()
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return names
}
