// Package server exposes the textops engine and routine service over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/skosovsky/textops"
)

// OwnerHeader carries the caller's owner id. Authentication happens upstream.
const OwnerHeader = "X-Owner-ID"

const shutdownTimeout = 10 * time.Second

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithGatherer serves /metrics from g instead of the default Prometheus registry.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		if g != nil {
			s.gatherer = g
		}
	}
}

// Server routes HTTP requests to an Engine and a RoutineService.
type Server struct {
	engine   *textops.Engine
	service  *textops.RoutineService
	logger   *slog.Logger
	gatherer prometheus.Gatherer
	router   *gin.Engine

	evaluate      *textops.Extractor[evaluateRequest]
	convert       *textops.Extractor[convertRequest]
	execute       *textops.Extractor[executeRequest]
	createRoutine *textops.Extractor[createRoutineRequest]
	appendStep    *textops.Extractor[appendStepRequest]
	runStep       *textops.Extractor[runStepRequest]
	saveTemplate  *textops.Extractor[saveTemplateRequest]
	replay        *textops.Extractor[replayRequest]
}

// New builds the router. Request schemas are compiled once here.
func New(engine *textops.Engine, service *textops.RoutineService, opts ...Option) (*Server, error) {
	s := &Server{
		engine:   engine,
		service:  service,
		logger:   slog.Default(),
		gatherer: prometheus.DefaultGatherer,
	}
	for _, opt := range opts {
		opt(s)
	}
	var err error
	if s.evaluate, err = textops.NewExtractor[evaluateRequest](false); err != nil {
		return nil, fmt.Errorf("evaluate schema: %w", err)
	}
	if s.convert, err = textops.NewExtractor[convertRequest](false); err != nil {
		return nil, fmt.Errorf("convert schema: %w", err)
	}
	if s.execute, err = textops.NewExtractor[executeRequest](false); err != nil {
		return nil, fmt.Errorf("execute schema: %w", err)
	}
	if s.createRoutine, err = textops.NewExtractor[createRoutineRequest](false); err != nil {
		return nil, fmt.Errorf("routine schema: %w", err)
	}
	if s.appendStep, err = textops.NewExtractor[appendStepRequest](false); err != nil {
		return nil, fmt.Errorf("step schema: %w", err)
	}
	if s.runStep, err = textops.NewExtractor[runStepRequest](false); err != nil {
		return nil, fmt.Errorf("run schema: %w", err)
	}
	if s.saveTemplate, err = textops.NewExtractor[saveTemplateRequest](false); err != nil {
		return nil, fmt.Errorf("template schema: %w", err)
	}
	if s.replay, err = textops.NewExtractor[replayRequest](false); err != nil {
		return nil, fmt.Errorf("replay schema: %w", err)
	}
	s.router = s.routes()
	return s, nil
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))

	v1 := r.Group("/v1")
	v1.GET("/tools", s.handleTools)
	v1.GET("/strategies", s.handleStrategies)
	v1.POST("/evaluate", s.handleEvaluate)
	v1.POST("/convert", s.handleConvert)
	v1.POST("/execute", s.handleExecute)

	v1.GET("/routines", s.handleListRoutines)
	v1.POST("/routines", s.handleCreateRoutine)
	v1.GET("/routines/:id", s.handleGetRoutine)
	v1.POST("/routines/:id/steps", s.handleAppendStep)
	v1.POST("/routines/:id/steps/:step/run", s.handleRunStep)
	v1.POST("/routines/:id/steps/:step/skip", s.handleSkipStep)
	v1.POST("/routines/:id/steps/:step/retry", s.handleRetryStep)

	v1.GET("/templates", s.handleListTemplates)
	v1.POST("/templates", s.handleSaveTemplate)
	v1.DELETE("/templates/:id", s.handleDeleteTemplate)
	v1.POST("/templates/:id/replay", s.handleReplayTemplate)
	return r
}

// requestLogger logs one line per request at debug level, warn for 5xx.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		status := c.Writer.Status()
		level := slog.LevelDebug
		if status >= http.StatusInternalServerError {
			level = slog.LevelWarn
		}
		s.logger.Log(c.Request.Context(), level, "http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", status,
			"duration", time.Since(start),
		)
	}
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("http server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
