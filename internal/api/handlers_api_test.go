package api_test

import (
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/lox/cropyield/internal/api"
	"github.com/lox/cropyield/internal/artifacts"
)

func doJSON(srv *api.Server, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func TestAPIOptions(t *testing.T) {
	t.Parallel()
	srv := setupStubServer(t)

	w := doJSON(srv, "GET", "/api/options", "")
	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var got map[string][]string
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if strings.Join(got["Season"], ",") != "Kharif,Rabi" {
		t.Errorf("Season = %v", got["Season"])
	}
	if len(got["Crop"]) != 3 || len(got["State"]) != 3 {
		t.Errorf("unexpected options %v", got)
	}
}

func TestAPIPredict(t *testing.T) {
	t.Parallel()
	srv := setupStubServer(t)

	w := doJSON(srv, "POST", "/api/predict", `{"crop":"Wheat","season":"Rabi","state":"Kerala","area":2}`)
	if w.Code != 200 {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp api.PredictResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Yield != 3.5 || resp.TotalProduction != 7.0 {
		t.Errorf("got yield %v total %v", resp.Yield, resp.TotalProduction)
	}
	if resp.ProductionText != "Estimated Total Production: 7.00 tonnes" {
		t.Errorf("ProductionText = %q", resp.ProductionText)
	}
	if resp.RequestID == "" {
		t.Error("expected request id")
	}
}

func TestAPIPredict_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		method string
		body   string
		code   int
		want   string
	}{
		{"wrong method", "GET", "", 405, "method not allowed"},
		{"bad json", "POST", `{"crop":`, 400, "decode request"},
		{"invalid area", "POST", `{"crop":"Rice","season":"Kharif","state":"Punjab","area":0}`, 400, `"field":"Area"`},
		{"predictor rejects", "POST", `{"crop":"Quinoa","season":"Kharif","state":"Punjab"}`, 422, "unknown category"},
		{"categoricals omitted", "POST", `{"area":10}`, 400, `"field":"Crop"`},
		{"state omitted", "POST", `{"crop":"Rice","season":"Kharif"}`, 400, `{"field":"State","message":"is required"}`},
		{"total production overflows", "POST", `{"crop":"Rice","season":"Kharif","state":"Punjab","area":1e308}`, 422, "numeric error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := setupStubServer(t)
			w := doJSON(srv, tt.method, "/api/predict", tt.body)
			if w.Code != tt.code {
				t.Fatalf("expected %d, got %d: %s", tt.code, w.Code, w.Body.String())
			}
			if !strings.Contains(w.Body.String(), tt.want) {
				t.Errorf("expected %q in %s", tt.want, w.Body.String())
			}
		})
	}
}

func TestAPIPredict_WithModelArtifact(t *testing.T) {
	t.Parallel()
	assets, err := artifacts.Load(artifacts.Paths{
		Model:   filepath.Join("..", "artifacts", "testdata", "crop_yield_model.json"),
		Catalog: filepath.Join("..", "artifacts", "testdata", "unique_values.json"),
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("load artifacts: %v", err)
	}
	srv := setupServer(t, assets)

	w := doJSON(srv, "POST", "/api/predict", `{"crop":"Rice","season":"Kharif","state":"Punjab","area":10}`)
	if w.Code != 200 {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp api.PredictResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Yield != 2.25 || resp.TotalProduction != 22.5 {
		t.Errorf("got yield %v total %v, want 2.25 and 22.5", resp.Yield, resp.TotalProduction)
	}
}
