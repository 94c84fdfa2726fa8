package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PredictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cropyield_predictions_total",
			Help: "Total prediction submissions by outcome",
		},
		[]string{"outcome"},
	)

	PredictionLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cropyield_prediction_latency_seconds",
			Help:    "Prediction latency in seconds, derivation included",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"predictor"},
	)

	RemoteCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cropyield_remote_predictor_calls_total",
			Help: "Total calls to the remote model server",
		},
		[]string{"status"},
	)

	ArtifactInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cropyield_artifact_info",
			Help: "Loaded artifacts; value is 1 for each loaded artifact",
		},
		[]string{"artifact", "path"},
	)
)

// Prediction outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeInvalid = "invalid"
	OutcomeError   = "error"
)
