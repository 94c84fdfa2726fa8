package api

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/lox/cropyield/internal/artifacts"
	"github.com/lox/cropyield/internal/predict"
)

type Server struct {
	assets  *artifacts.Assets
	service *predict.Service
	addr    string
	tmpl    *template.Template
	logger  *zap.Logger
}

// NewServer returns a server for the given assets. The assets are read-only
// and shared by every request.
func NewServer(assets *artifacts.Assets, service *predict.Service, addr string, logger *zap.Logger) *Server {
	return &Server{
		assets:  assets,
		service: service,
		addr:    addr,
		tmpl:    newTemplates(),
		logger:  logger,
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/options", s.handleAPIOptions)
	mux.HandleFunc("/api/predict", s.handleAPIPredict)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	s.logger.Info("starting server", zap.String("addr", s.addr))
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("shutdown", zap.Error(err))
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
