// Package artifacts loads the pre-built model and catalog artifacts once at
// startup.
package artifacts

import (
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/lox/cropyield/internal/metrics"
	"github.com/lox/cropyield/internal/model"
	"github.com/lox/cropyield/internal/models"
)

// Default artifact locations, relative to the working directory.
const (
	DefaultModelPath   = "data/crop_yield_model.json"
	DefaultCatalogPath = "data/unique_values.json"
)

// Paths says where to find the artifacts. When PredictorURL is set the model
// file is not read and predictions go to that server instead.
type Paths struct {
	Model        string
	Catalog      string
	PredictorURL string
}

// Assets is the loaded predictor and catalog. It is built once and never
// modified afterwards, so it can be shared by every request.
type Assets struct {
	Predictor model.Predictor
	Catalog   *models.Catalog
}

// Load reads both artifacts. Any error is fatal to the caller: the application
// cannot serve without them.
func Load(paths Paths, logger *zap.Logger) (*Assets, error) {
	catalog, err := LoadCatalog(paths.Catalog)
	if err != nil {
		return nil, err
	}
	metrics.ArtifactInfo.WithLabelValues("catalog", paths.Catalog).Set(1)
	logger.Info("catalog loaded",
		zap.String("path", paths.Catalog),
		zap.Int("crops", len(catalog.Crops)),
		zap.Int("seasons", len(catalog.Seasons)),
		zap.Int("states", len(catalog.States)),
		zap.Bool("crop_types", len(catalog.CropTypes) > 0))

	var predictor model.Predictor
	if paths.PredictorURL != "" {
		predictor = model.NewRemote(paths.PredictorURL, nil)
		metrics.ArtifactInfo.WithLabelValues("model", paths.PredictorURL).Set(1)
		logger.Info("using remote predictor", zap.String("url", paths.PredictorURL))
	} else {
		p, err := model.LoadPipeline(paths.Model)
		if err != nil {
			return nil, err
		}
		predictor = p
		metrics.ArtifactInfo.WithLabelValues("model", paths.Model).Set(1)
		logger.Info("model loaded",
			zap.String("path", paths.Model),
			zap.String("estimator", p.Estimator.Type),
			zap.Int("features", len(p.Features)))
	}

	return &Assets{Predictor: predictor, Catalog: catalog}, nil
}

// LoadCatalog reads the categorical catalog. Crop, Season and State must all be
// present and non-empty.
func LoadCatalog(path string) (*models.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var c models.Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	c.Normalize()

	for field, values := range map[string][]string{"Crop": c.Crops, "Season": c.Seasons, "State": c.States} {
		if len(values) == 0 {
			return nil, fmt.Errorf("catalog %s: no values for %s", path, field)
		}
	}
	return &c, nil
}
