package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lawnchairsociety/hexwfc/internal/config"
	"github.com/lawnchairsociety/hexwfc/internal/layout"
	"github.com/lawnchairsociety/hexwfc/internal/logger"
	"github.com/lawnchairsociety/hexwfc/internal/metrics"
	"github.com/lawnchairsociety/hexwfc/internal/store"
	"github.com/lawnchairsociety/hexwfc/internal/stream"
	"github.com/lawnchairsociety/hexwfc/internal/wfc"
)

func main() {
	configFile := flag.String("config", "data/hexsolve.yaml", "Path to solver config YAML file")
	seed := flag.Int64("seed", 0, "Solve seed (default: the config seed, or random when that is 0)")
	outFile := flag.String("out", "data/layout.yaml", "Path to write the layout YAML (empty to skip)")
	serve := flag.Bool("serve", false, "Keep the stream and metrics endpoints up after the solve until interrupted")
	render := flag.Bool("render", false, "Print an ASCII map of the result")
	flag.Parse()

	// Initialize logger first (before any logging)
	logConfig, _ := logger.LoadConfig(*configFile)
	if err := logger.Initialize(logConfig); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		logger.Warning("Failed to load config, using defaults", "path", *configFile, "error", err)
	}

	settings, err := cfg.Solver.ToSettings()
	if err != nil {
		log.Fatalf("Invalid solver config: %v", err)
	}
	if *seed != 0 {
		settings.Seed = *seed
	}
	if settings.Seed == 0 {
		settings.Seed = time.Now().UnixNano()
		logger.Info("Solve seed selected", "seed", settings.Seed, "random", true)
	} else {
		logger.Info("Solve seed selected", "seed", settings.Seed, "random", false)
	}

	inputs, err := cfg.Catalog.Load()
	if err != nil {
		log.Fatalf("Failed to load catalog: %v", err)
	}
	logger.Info("Catalog loaded", "tiles", inputs.Catalog.Len(), "clusters", len(inputs.Catalog.Clusters()), "hash", inputs.Hash)

	grid, err := cfg.Grid.BuildGrid()
	if err != nil {
		log.Fatalf("Failed to build grid: %v", err)
	}
	logger.Info("Grid built", "cells", grid.Len(), "tiers", grid.Tiers())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine := cfg.Solver.Engine()
	var sinks wfc.MultiSink
	var onStart []func(int, int64)
	var onRun []func(int, *wfc.Result, error)

	var hub *stream.Hub
	var srv *http.Server
	mux := http.NewServeMux()
	if cfg.Stream.Enabled {
		hub = stream.NewHub(cfg.Stream)
		mux.Handle(cfg.Stream.Path, hub)
		sinks = append(sinks, hub)
		onStart = append(onStart, hub.RunStarted)
		onRun = append(onRun, hub.RunFinished)
		if len(cfg.Stream.AllowedOrigins) == 1 && cfg.Stream.AllowedOrigins[0] == "*" {
			logger.Warning("Stream CORS allows all origins (not recommended for production)")
		}
	}
	if cfg.Metrics.Enabled {
		rec := metrics.NewRecorder()
		mux.Handle(cfg.Metrics.Path, rec.Handler())
		sinks = append(sinks, rec)
		onStart = append(onStart, rec.ObserveRunStart)
		onRun = append(onRun, rec.ObserveRun)
	}
	if cfg.Stream.Enabled || cfg.Metrics.Enabled {
		srv = &http.Server{Addr: cfg.Listen, Handler: mux}
		go func() {
			logger.Info("HTTP endpoints listening", "address", cfg.Listen,
				"stream", cfg.Stream.Enabled, "metrics", cfg.Metrics.Enabled)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("HTTP server error", "error", err)
			}
		}()
	}
	if len(sinks) > 0 {
		settings.Sink = sinks
	}

	engine.OnRunStart = func(run int, seed int64) {
		logger.Debug("Run starting", "run", run, "seed", seed)
		for _, f := range onStart {
			f(run, seed)
		}
	}
	engine.OnRun = func(run int, res *wfc.Result, err error) {
		if err != nil {
			logger.Warning("Run failed", "run", run, "error", err)
		}
		for _, f := range onRun {
			f(run, res, err)
		}
	}

	started := time.Now()
	res, solveErr := engine.Run(ctx, grid, inputs.Catalog, inputs.Directory, settings)
	if res != nil {
		logger.Info("Solve finished",
			"success", res.Success(),
			"placed", len(res.AllPlacements()),
			"ignored", len(res.Ignored),
			"duration", time.Since(started).Round(time.Millisecond))
		persist(ctx, cfg, res, inputs.Hash, *outFile)
		if *render {
			if err := layout.Render(os.Stdout, layout.FromResult(res, inputs.Hash), layout.AllPlanes()); err != nil {
				logger.Error("Failed to render layout", "error", err)
			}
		}
	}

	if *serve && srv != nil && ctx.Err() == nil {
		logger.Info("Serving until interrupted")
		<-ctx.Done()
	}
	if hub != nil {
		hub.Close()
	}
	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		srv.Shutdown(shutdownCtx)
		cancel()
	}

	if solveErr != nil {
		fmt.Fprintf(os.Stderr, "Solve failed: %v\n", solveErr)
		os.Exit(1)
	}
}

// persist saves the result to the store and the layout file. Failures are
// logged; the solve result itself is already final.
func persist(ctx context.Context, cfg *config.Config, res *wfc.Result, hash, outFile string) {
	data := layout.FromResult(res, hash)

	if cfg.Store.Enabled {
		st, err := store.Open(cfg.Store.Config)
		if err != nil {
			logger.Error("Failed to open store", "error", err)
		} else {
			defer st.Close()
			id, err := st.SaveRun(context.WithoutCancel(ctx), res, hash)
			if err != nil {
				logger.Error("Failed to save run", "error", err)
			} else {
				data.RunID = id
				logger.Info("Run stored", "run_id", id, "driver", cfg.Store.Driver)
			}
		}
	}

	if outFile != "" {
		if err := layout.SaveLayout(data, outFile); err != nil {
			logger.Error("Failed to save layout", "path", outFile, "error", err)
			return
		}
		logger.Info("Layout saved", "path", outFile)
	}
}
