package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel"

	"github.com/skosovsky/textops"
	"github.com/skosovsky/textops/catalog"
	"github.com/skosovsky/textops/config"
	"github.com/skosovsky/textops/store/sqlite"
)

// app holds the wired components shared by every command.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	metrics  *textops.Metrics
	registry *textops.Registry
	engine   *textops.Engine
	service  *textops.RoutineService
	store    *sqlite.Store
}

func newApp(ctx context.Context, cfg *config.Config, logOut io.Writer) (*app, error) {
	a := &app{cfg: cfg, logger: cfg.NewLogger(logOut), metrics: textops.DefaultMetrics()}

	a.registry = catalog.NewRegistry()
	a.registry.Use(
		textops.WithTracing(otel.Tracer("github.com/skosovsky/textops")),
		textops.WithMetrics(a.metrics),
		textops.WithLogging(a.logger),
	)

	heuristic := textops.NewHeuristicEvaluator()
	delegated, err := a.delegatedEvaluator()
	if err != nil {
		return nil, err
	}
	var defaultEval textops.Evaluator = heuristic
	if cfg.Backend.Mode == textops.StrategyDelegated {
		defaultEval = delegated
	}
	a.engine = textops.NewEngine(a.registry, defaultEval,
		textops.WithLogger(a.logger),
		textops.WithEngineMetrics(a.metrics))

	var st textops.Store = textops.NopStore{}
	if cfg.Store.Path != "" {
		a.store, err = sqlite.Open(ctx, cfg.Store.Path)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		st = a.store
	}
	a.service = textops.NewRoutineService(a.engine,
		textops.WithStore(st),
		textops.WithRoutineLimit(cfg.Store.LiveRoutines),
		textops.WithServiceLogger(a.logger),
		textops.WithStrategy(textops.StrategyHeuristic, heuristic),
		textops.WithStrategy(textops.StrategyDelegated, delegated))
	return a, nil
}

// delegatedEvaluator builds the backend-driven evaluator, cached when cache.size > 0.
func (a *app) delegatedEvaluator() (textops.Evaluator, error) {
	var ev textops.Evaluator = textops.NewDelegatedEvaluator(a.registry, a.cfg.BackendClient(a.logger),
		textops.WithEvaluatorLogger(a.logger))
	if a.cfg.Cache.Size == 0 {
		return ev, nil
	}
	cached, err := textops.NewCachingEvaluator(ev, a.cfg.Cache.Size)
	if err != nil {
		return nil, fmt.Errorf("evaluation cache: %w", err)
	}
	return cached, nil
}

// requireStore fails for commands that need durable templates.
func (a *app) requireStore() error {
	if a.store == nil {
		return errors.New("templates need a database: set store.path or TEXTOPS_STORE_PATH")
	}
	return nil
}

func (a *app) Close() error {
	if a.store == nil {
		return nil
	}
	return a.store.Close()
}
