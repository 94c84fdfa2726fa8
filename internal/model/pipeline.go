package model

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/lox/cropyield/internal/features"
)

// FormatV1 is the only model artifact format understood by Pipeline.
const FormatV1 = "cropyield-model/v1"

// Estimator types.
const (
	EstimatorLinear  = "linear"
	EstimatorForest  = "forest"
	EstimatorBoosted = "boosted"
)

// Pipeline is a trained regressor together with the feature schema it was
// fitted on. Categorical columns are one-hot encoded in schema order before the
// estimator sees them.
type Pipeline struct {
	Format    string        `json:"format"`
	Target    string        `json:"target"`
	Features  []FeatureSpec `json:"features"`
	Estimator Estimator     `json:"estimator"`

	width int
}

// FeatureSpec describes one input column.
type FeatureSpec struct {
	Name       string        `json:"name"`
	Kind       features.Kind `json:"kind"`
	Categories []string      `json:"categories,omitempty"`

	offset int
	levels map[string]int
}

// Estimator is the fitted regressor over the encoded inputs.
type Estimator struct {
	Type string `json:"type"`

	// linear
	Intercept    float64   `json:"intercept,omitempty"`
	Coefficients []float64 `json:"coefficients,omitempty"`

	// forest / boosted
	BaseScore    float64 `json:"base_score,omitempty"`
	LearningRate float64 `json:"learning_rate,omitempty"`
	Trees        []Tree  `json:"trees,omitempty"`
}

// Tree is a flattened regression tree; node 0 is the root.
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// Node is a split (Feature >= 0) or a leaf (Feature < 0). Samples with
// x[Feature] <= Threshold go left.
type Node struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold,omitempty"`
	Left      int     `json:"left,omitempty"`
	Right     int     `json:"right,omitempty"`
	Value     float64 `json:"value,omitempty"`
}

// LoadPipeline reads and validates a model artifact.
func LoadPipeline(path string) (*Pipeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model: %w", err)
	}
	p, err := ParsePipeline(data)
	if err != nil {
		return nil, fmt.Errorf("parse model %s: %w", path, err)
	}
	return p, nil
}

// ParsePipeline decodes a model artifact and checks that it is internally
// consistent.
func ParsePipeline(data []byte) (*Pipeline, error) {
	var p Pipeline
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}
	if err := p.init(); err != nil {
		return nil, err
	}
	return &p, nil
}

func (p *Pipeline) init() error {
	if p.Format != FormatV1 {
		return fmt.Errorf("unsupported format %q", p.Format)
	}
	if len(p.Features) == 0 {
		return fmt.Errorf("no features")
	}

	seen := make(map[string]bool, len(p.Features))
	p.width = 0
	for i := range p.Features {
		f := &p.Features[i]
		if f.Name == "" {
			return fmt.Errorf("feature %d: empty name", i)
		}
		if seen[f.Name] {
			return fmt.Errorf("feature %s: duplicate", f.Name)
		}
		seen[f.Name] = true
		f.offset = p.width

		switch f.Kind {
		case features.Number:
			p.width++
		case features.Category:
			if len(f.Categories) == 0 {
				return fmt.Errorf("feature %s: no categories", f.Name)
			}
			f.levels = make(map[string]int, len(f.Categories))
			for j, c := range f.Categories {
				if _, dup := f.levels[c]; dup {
					return fmt.Errorf("feature %s: duplicate category %q", f.Name, c)
				}
				f.levels[c] = j
			}
			p.width += len(f.Categories)
		default:
			return fmt.Errorf("feature %s: unknown kind %q", f.Name, f.Kind)
		}
	}

	return p.Estimator.check(p.width)
}

func (e *Estimator) check(width int) error {
	switch e.Type {
	case EstimatorLinear:
		if len(e.Coefficients) != width {
			return fmt.Errorf("linear: %d coefficients for %d encoded inputs", len(e.Coefficients), width)
		}
	case EstimatorForest, EstimatorBoosted:
		if len(e.Trees) == 0 {
			return fmt.Errorf("%s: no trees", e.Type)
		}
		for i, t := range e.Trees {
			if err := t.check(width); err != nil {
				return fmt.Errorf("%s: tree %d: %w", e.Type, i, err)
			}
		}
	default:
		return fmt.Errorf("unknown estimator type %q", e.Type)
	}
	return nil
}

func (t Tree) check(width int) error {
	if len(t.Nodes) == 0 {
		return fmt.Errorf("empty")
	}
	for i, n := range t.Nodes {
		if n.Feature < 0 {
			continue
		}
		if n.Feature >= width {
			return fmt.Errorf("node %d: feature %d out of range", i, n.Feature)
		}
		// Children must come after their parent, which also rules out cycles.
		if n.Left <= i || n.Left >= len(t.Nodes) || n.Right <= i || n.Right >= len(t.Nodes) {
			return fmt.Errorf("node %d: bad children %d/%d", i, n.Left, n.Right)
		}
	}
	return nil
}

// Name implements Predictor.
func (p *Pipeline) Name() string {
	return "pipeline-" + p.Estimator.Type
}

// Columns returns the schema column names in order.
func (p *Pipeline) Columns() []string {
	names := make([]string, len(p.Features))
	for i, f := range p.Features {
		names[i] = f.Name
	}
	return names
}

// Predict implements Predictor.
func (p *Pipeline) Predict(ctx context.Context, v features.Vector) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	x, err := p.Encode(v.Columns())
	if err != nil {
		return 0, err
	}
	y := p.Estimator.eval(x)
	if math.IsNaN(y) || math.IsInf(y, 0) {
		return 0, fmt.Errorf("%w: model produced %v", ErrNumeric, y)
	}
	return y, nil
}

// Encode checks cols against the schema and returns the one-hot encoded input
// row. Column names, order and kinds must match exactly.
func (p *Pipeline) Encode(cols []features.Column) ([]float64, error) {
	if len(cols) != len(p.Features) {
		return nil, fmt.Errorf("%w: got %d columns, want %d", ErrSchemaMismatch, len(cols), len(p.Features))
	}
	x := make([]float64, p.width)
	for i, c := range cols {
		f := p.Features[i]
		if c.Name != f.Name {
			return nil, fmt.Errorf("%w: column %d is %q, want %q", ErrSchemaMismatch, i, c.Name, f.Name)
		}
		if c.Kind != f.Kind {
			return nil, fmt.Errorf("%w: column %s is %s, want %s", ErrSchemaMismatch, c.Name, c.Kind, f.Kind)
		}
		switch f.Kind {
		case features.Number:
			if math.IsNaN(c.Number) || math.IsInf(c.Number, 0) {
				return nil, fmt.Errorf("%w: column %s is %v", ErrNumeric, c.Name, c.Number)
			}
			x[f.offset] = c.Number
		case features.Category:
			j, ok := f.levels[c.Category]
			if !ok {
				return nil, fmt.Errorf("%w: column %s has %q", ErrUnknownCategory, c.Name, c.Category)
			}
			x[f.offset+j] = 1
		}
	}
	return x, nil
}

func (e *Estimator) eval(x []float64) float64 {
	switch e.Type {
	case EstimatorLinear:
		sum := e.Intercept
		for j, w := range e.Coefficients {
			sum += w * x[j]
		}
		return sum
	case EstimatorForest:
		var sum float64
		for _, t := range e.Trees {
			sum += t.eval(x)
		}
		return sum / float64(len(e.Trees))
	case EstimatorBoosted:
		sum := e.BaseScore
		for _, t := range e.Trees {
			sum += e.LearningRate * t.eval(x)
		}
		return sum
	}
	return math.NaN()
}

func (t Tree) eval(x []float64) float64 {
	i := 0
	for {
		n := t.Nodes[i]
		if n.Feature < 0 {
			return n.Value
		}
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}
