package features

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/cropyield/internal/models"
)

func sampleRequest() models.PredictionRequest {
	return models.PredictionRequest{
		Crop:           "Rice",
		Season:         "Kharif",
		State:          "Punjab",
		CropYear:       2024,
		Area:           10.0,
		AnnualRainfall: 1000.0,
		AvgTemperature: 25.0,
		MaxTemperature: 32.0,
		MinTemperature: 18.0,
		Fertilizer:     1000.0,
		Pesticide:      10.0,
	}
}

func newTestDeriver() *Deriver {
	return NewDeriver(DefaultRegions(), DefaultCropTypes())
}

func TestDerive_Punjab(t *testing.T) {
	v := newTestDeriver().Derive(sampleRequest())

	assert.Equal(t, "North", v.Region)
	assert.Equal(t, "Cereal", v.CropType)
	assert.Equal(t, 1000.0/11.0, v.FertilizerPerHectare)
	assert.Equal(t, 10.0/11.0, v.PesticidePerHectare)
	assert.InDelta(t, 90.91, v.FertilizerPerHectare, 0.005)
	assert.InDelta(t, 0.91, v.PesticidePerHectare, 0.005)
}

func TestDerive_UnmappedState(t *testing.T) {
	req := sampleRequest()
	req.State = "Atlantis"

	v := newTestDeriver().Derive(req)
	assert.Equal(t, OtherRegion, v.Region)
	assert.Equal(t, "Atlantis", v.State)
}

func TestDerive_EveryMappedState(t *testing.T) {
	d := newTestDeriver()
	for region, states := range DefaultRegions() {
		for _, state := range states {
			req := sampleRequest()
			req.State = state
			if got := d.Derive(req).Region; got != region {
				t.Errorf("Region(%q) = %q, want %q", state, got, region)
			}
		}
	}
}

func TestDerive_CropTypes(t *testing.T) {
	tests := []struct {
		crop string
		want string
	}{
		{"Rice", "Cereal"},
		{"Wheat", "Cereal"},
		{"Gram", "Pulse"},
		{"Groundnut", "Oilseed"},
		{"Sugarcane", "Cash Crop"},
		{"Cotton(lint)", "Fibre"},
		{"Turmeric", "Spice"},
		{"Potato", "Vegetable"},
		{"Dragonfruit", OtherCropType},
	}

	d := newTestDeriver()
	for _, tt := range tests {
		t.Run(tt.crop, func(t *testing.T) {
			req := sampleRequest()
			req.Crop = tt.crop
			assert.Equal(t, tt.want, d.Derive(req).CropType)
		})
	}
}

func TestDerive_PerHectareExact(t *testing.T) {
	d := newTestDeriver()
	for _, area := range []float64{0.1, 0.5, 1, 3.3, 10, 257.75, 1e6} {
		req := sampleRequest()
		req.Area = area
		req.Fertilizer = 1234.5
		req.Pesticide = 7.25
		v := d.Derive(req)
		if v.FertilizerPerHectare != 1234.5/(area+1) {
			t.Errorf("area %v: Fertilizer_per_Hectare = %v, want %v", area, v.FertilizerPerHectare, 1234.5/(area+1))
		}
		if v.PesticidePerHectare != 7.25/(area+1) {
			t.Errorf("area %v: Pesticide_per_Hectare = %v, want %v", area, v.PesticidePerHectare, 7.25/(area+1))
		}
	}
}

func TestDerive_Columns(t *testing.T) {
	v := newTestDeriver().Derive(sampleRequest())

	want := []string{
		"Crop", "Crop_Year", "Season", "State", "Area", "Annual_Rainfall",
		"Avg_Temperature", "Max_Temperature", "Min_Temperature",
		"Fertilizer_per_Hectare", "Pesticide_per_Hectare", "Region", "Crop_Type",
	}
	if diff := cmp.Diff(want, v.Names()); diff != "" {
		t.Errorf("column names mismatch (-want +got):\n%s", diff)
	}
	assert.NotContains(t, v.Names(), "Fertilizer")
	assert.NotContains(t, v.Names(), "Pesticide")
}

func TestDerive_Idempotent(t *testing.T) {
	d := newTestDeriver()
	req := sampleRequest()

	first := d.Derive(req)
	second := d.Derive(req)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("Derive not idempotent (-first +second):\n%s", diff)
	}
	assert.Equal(t, sampleRequest(), req, "request must not be mutated")
}

func TestNewDeriver_CopiesTables(t *testing.T) {
	regions := RegionMap{"North": {"Punjab"}}
	types := CropTypes{"Rice": "Cereal"}
	d := NewDeriver(regions, types)

	regions["South"] = []string{"Punjab"}
	types["Rice"] = "Pulse"

	assert.Equal(t, "North", d.Region("Punjab"))
	assert.Equal(t, "Cereal", d.CropType("Rice"))
}

func TestCropTypes_Merge(t *testing.T) {
	base := DefaultCropTypes()
	merged := base.Merge(map[string]string{"Rice": "Paddy", "Quinoa": "Cereal"})

	require.Equal(t, "Cereal", base["Rice"])
	assert.Equal(t, "Paddy", merged["Rice"])
	assert.Equal(t, "Cereal", merged["Quinoa"])
	assert.Equal(t, "Pulse", merged["Gram"])
}

func TestColumn_String(t *testing.T) {
	assert.Equal(t, "Rice", Column{Kind: Category, Category: "Rice"}.String())
	assert.Equal(t, "2024", Column{Kind: Number, Number: 2024}.String())
	assert.Equal(t, "0.5", Column{Kind: Number, Number: 0.5}.String())
}
