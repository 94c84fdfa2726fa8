package features

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

// RegionMap maps a region name to the states it contains.
type RegionMap map[string][]string

// CropTypes maps a crop name to its crop type.
type CropTypes map[string]string

//go:embed regions.yaml
var regionsYAML []byte

//go:embed crop_types.yaml
var cropTypesYAML []byte

// DefaultRegions returns the built-in region map.
func DefaultRegions() RegionMap {
	var regions RegionMap
	if err := yaml.Unmarshal(regionsYAML, &regions); err != nil {
		panic(fmt.Sprintf("features: parse regions.yaml: %v", err))
	}
	return regions
}

// DefaultCropTypes returns the built-in crop type dictionary. The YAML groups
// crops by type; the result is keyed by crop.
func DefaultCropTypes() CropTypes {
	var grouped map[string][]string
	if err := yaml.Unmarshal(cropTypesYAML, &grouped); err != nil {
		panic(fmt.Sprintf("features: parse crop_types.yaml: %v", err))
	}
	types := make(CropTypes)
	for typ, crops := range grouped {
		for _, crop := range crops {
			types[crop] = typ
		}
	}
	return types
}

// Merge returns a copy of t with every entry of override applied on top.
func (t CropTypes) Merge(override map[string]string) CropTypes {
	out := make(CropTypes, len(t)+len(override))
	for k, v := range t {
		out[k] = v
	}
	for k, v := range override {
		out[k] = v
	}
	return out
}
