package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mkd-neo4j/neo4j-mcp-payroll/internal/config"
	"github.com/mkd-neo4j/neo4j-mcp-payroll/internal/database"
	"github.com/mkd-neo4j/neo4j-mcp-payroll/internal/graph"
	"github.com/mkd-neo4j/neo4j-mcp-payroll/internal/metrics"
	"github.com/mkd-neo4j/neo4j-mcp-payroll/internal/payroll"
)

// setup loads the configuration and installs the default logger. Logs go to stderr because
// stdout carries the MCP protocol or the command's JSON output.
func setup() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	slog.SetDefault(slog.New(newLogHandler(os.Stderr, cfg.Log)))
	return cfg, nil
}

func newLogHandler(w io.Writer, lc config.LogConfig) slog.Handler {
	var level slog.Level
	if err := level.UnmarshalText([]byte(lc.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(lc.Format, "json") {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// openDatabase connects to Neo4j when a URI is configured. The returned close function is never nil.
func openDatabase(ctx context.Context, cfg *config.Config) (database.Service, func(), error) {
	noop := func() {}
	if cfg.Neo4j.URI == "" {
		slog.Info("neo4j.uri not set; neo4j tools disabled")
		return nil, noop, nil
	}

	driver, err := database.NewDriver(cfg.Neo4j.URI, cfg.Neo4j.Username, cfg.Neo4j.Password)
	if err != nil {
		return nil, noop, err
	}
	closeDriver := func() {
		if err := driver.Close(context.Background()); err != nil {
			slog.Warn("error closing neo4j driver", "error", err)
		}
	}

	svc, err := database.NewNeo4jService(driver, cfg.Neo4j.Database)
	if err != nil {
		closeDriver()
		return nil, noop, err
	}
	return svc, closeDriver, nil
}

// startMetrics serves /metrics on cfg.Metrics.Addr. The returned stop function is never nil.
func startMetrics(cfg *config.Config) func() {
	if cfg.Metrics.Addr == "" {
		return func() {}
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{
		Addr:              cfg.Metrics.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		slog.Info("metrics endpoint listening", "addr", cfg.Metrics.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server failed", "error", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

// loadSnapshot reads the CSV and builds the in-memory graph for the one-shot commands.
func loadSnapshot(cfg *config.Config, path string) (*graph.Store, *payroll.Dataset, error) {
	ds, err := loadDataset(path)
	if err != nil {
		return nil, nil, err
	}
	store := graph.NewStore(graph.WithSampleSize(cfg.Graph.SampleSize))
	if _, err := store.Build(ds); err != nil {
		return nil, nil, err
	}
	return store, ds, nil
}

// loadDataset reads the CSV without building the graph, for commands that never need it.
func loadDataset(path string) (*payroll.Dataset, error) {
	ds, err := payroll.NewLoader().LoadFile(path)
	if err != nil {
		return nil, err
	}
	for _, w := range ds.Warnings {
		slog.Debug("dataset warning", "row", w.Row, "message", w.Message)
	}
	return ds, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}
