package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	kongdotenv "github.com/titusjaka/kong-dotenv-go"
	"go.uber.org/zap"

	"github.com/lox/cropyield/internal/api"
	"github.com/lox/cropyield/internal/artifacts"
	"github.com/lox/cropyield/internal/features"
	"github.com/lox/cropyield/internal/models"
	"github.com/lox/cropyield/internal/predict"
)

type Globals struct {
	EnvFile      kongdotenv.ENVFileConfig `kong:"optional,name=env-file,help='Path to .env file.'"`
	LogLevel     string                   `default:"info" enum:"debug,info,warn,error" env:"CROPYIELD_LOG_LEVEL" help:"Log level."`
	Model        string                   `default:"${model_path}" env:"CROPYIELD_MODEL" help:"Path to the model artifact."`
	Catalog      string                   `default:"${catalog_path}" env:"CROPYIELD_CATALOG" help:"Path to the categorical catalog artifact."`
	PredictorURL string                   `env:"CROPYIELD_PREDICTOR_URL" help:"Model server base URL; when set the model artifact is not read."`
}

type CLI struct {
	Globals

	Serve   ServeCmd   `cmd:"" default:"1" help:"Serve the prediction form."`
	Predict PredictCmd `cmd:"" help:"Run a single prediction and print the result."`
}

type ServeCmd struct {
	Listen string `default:":8080" env:"CROPYIELD_LISTEN" help:"HTTP listen address."`
}

func (c *ServeCmd) Run(g *Globals) error {
	logger, err := newLogger(g.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	assets, svc := setup(g, logger)
	server := api.NewServer(assets, svc, c.Listen, logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return server.Run(ctx)
}

type PredictCmd struct {
	Crop           string  `required:"" help:"Crop name."`
	Season         string  `required:"" help:"Season."`
	State          string  `required:"" help:"State."`
	Year           int     `default:"2024" help:"Crop year."`
	Area           float64 `default:"10.0" help:"Area in hectares."`
	Rainfall       float64 `default:"1000.0" help:"Annual rainfall in mm."`
	AvgTemperature float64 `default:"25.0" help:"Average temperature in °C."`
	MaxTemperature float64 `default:"32.0" help:"Maximum temperature in °C."`
	MinTemperature float64 `default:"18.0" help:"Minimum temperature in °C."`
	Fertilizer     float64 `default:"1000.0" help:"Total fertilizer in kg."`
	Pesticide      float64 `default:"10.0" help:"Total pesticide in kg."`
}

func (c *PredictCmd) Run(g *Globals) error {
	logger, err := newLogger(g.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	assets, svc := setup(g, logger)

	req := models.PredictionRequest{
		Crop:           c.Crop,
		Season:         c.Season,
		State:          c.State,
		CropYear:       c.Year,
		Area:           c.Area,
		AnnualRainfall: c.Rainfall,
		AvgTemperature: c.AvgTemperature,
		MaxTemperature: c.MaxTemperature,
		MinTemperature: c.MinTemperature,
		Fertilizer:     c.Fertilizer,
		Pesticide:      c.Pesticide,
	}
	if err := models.ValidateRequest(req, assets.Catalog); err != nil {
		return err
	}

	result, err := svc.Predict(context.Background(), req)
	if err != nil {
		fmt.Fprintln(os.Stderr, predict.FormatError(err))
		return errors.New("prediction failed")
	}
	fmt.Println(predict.FormatYield(result))
	fmt.Println(predict.FormatProduction(result))
	return nil
}

// setup loads the artifacts and builds the prediction service. Failing to load
// either artifact is fatal.
func setup(g *Globals, logger *zap.Logger) (*artifacts.Assets, *predict.Service) {
	assets, err := artifacts.Load(artifacts.Paths{
		Model:        g.Model,
		Catalog:      g.Catalog,
		PredictorURL: g.PredictorURL,
	}, logger)
	if err != nil {
		logger.Fatal("load artifacts", zap.Error(err))
	}

	cropTypes := features.DefaultCropTypes().Merge(assets.Catalog.CropTypes)
	deriver := features.NewDeriver(features.DefaultRegions(), cropTypes)
	return assets, predict.NewService(assets.Predictor, deriver, logger)
}

func newLogger(level string) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}
	config.Level = lvl
	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("cropyield"),
		kong.Description("Crop yield prediction form backed by a pre-trained regression model."),
		kong.UsageOnError(),
		kong.Vars{
			"model_path":   artifacts.DefaultModelPath,
			"catalog_path": artifacts.DefaultCatalogPath,
		},
	)
	ctx.FatalIfErrorf(ctx.Run(&cli.Globals))
}
