package api

import (
	"html/template"
	"math"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/lox/cropyield/internal/models"
)

func TestRender_TemplateErrorIs500(t *testing.T) {
	s := &Server{
		tmpl:   template.Must(template.New("index.html").Parse(`<h1>{{.Missing.Field}}</h1>`)),
		logger: zap.NewNop(),
	}

	w := httptest.NewRecorder()
	s.render(w, 200, PageData{Catalog: &models.Catalog{}})

	if w.Code != 500 {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "<h1>") {
		t.Error("expected no partial page")
	}
}

func TestWriteJSON_EncodeErrorIs500(t *testing.T) {
	w := httptest.NewRecorder()
	writeJSON(w, 200, map[string]float64{"total_production": math.Inf(1)})

	if w.Code != 500 {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "encode response") {
		t.Errorf("unexpected body %q", w.Body.String())
	}
}

func TestWriteJSON(t *testing.T) {
	w := httptest.NewRecorder()
	writeJSON(w, 201, map[string]string{"status": "ok"})

	if w.Code != 201 {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	if got := w.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q", got)
	}
	if strings.TrimSpace(w.Body.String()) != `{"status":"ok"}` {
		t.Errorf("unexpected body %q", w.Body.String())
	}
}
