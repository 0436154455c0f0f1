package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lysyi3m/kent-tracker/app/api"
	"github.com/lysyi3m/kent-tracker/app/cfg"
	"github.com/lysyi3m/kent-tracker/app/database"
	"github.com/lysyi3m/kent-tracker/app/feed"
	"github.com/lysyi3m/kent-tracker/app/rules"
	"github.com/lysyi3m/kent-tracker/app/tasks"
)

func main() {
	loaded, err := cfg.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if loaded == nil {
		// Help was shown
		return
	}

	level := slog.LevelInfo
	if loaded.Debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	if err := run(); err != nil {
		slog.Error("Kent Tracker failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	config := cfg.Get()

	slog.Info("Starting Kent Tracker", "version", config.Version, "serve", config.Serve)

	registry := rules.NewRegistry(config.RulesDir)
	if err := registry.Run(); err != nil {
		return fmt.Errorf("failed to load rulesets: %w", err)
	}
	ruleset, err := registry.Get(config.RulesVersion)
	if err != nil {
		return err
	}
	slog.Info("Ruleset selected", "version", ruleset.Version, "available", registry.Versions())

	sources := feed.NewSourceCache(config.SourcesDir)
	if err := sources.Run(); err != nil {
		return fmt.Errorf("failed to load sources: %w", err)
	}
	slog.Info("Sources loaded", "total", sources.GetConfigCount(), "enabled", len(sources.GetEnabledConfigs()))

	store := database.NewFileStore(config.StateFile, config.FeedFile, config.LockTimeout)

	var archive database.RunRepository
	if config.DBPath != "" {
		a, err := database.OpenArchive(config.DBPath)
		if err != nil {
			return err
		}
		defer a.Close()
		archive = a
		slog.Info("Archive enabled", "path", config.DBPath)
	}

	httpClient := &http.Client{}
	pipeline := &tasks.Pipeline{
		Sources: sources,
		Collector: tasks.NewCollector(
			tasks.NewFetcher(httpClient, config.UserAgent),
			feed.NewParser(),
			feed.NewPoliceExtractor(feed.NewContentExtractor()),
		),
		Classifier: feed.NewClassifier(ruleset, config.LookbackYears),
		Labeler:    feed.NewLabeler(ruleset),
		Store:      store,
		Archive:    archive,
		MaxItems:   config.MaxItems,
		MaxSeen:    config.MaxSeen,
	}

	if !config.Serve {
		return runOnce(pipeline)
	}

	return serve(config, pipeline, store, archive, sources, registry)
}

func runOnce(pipeline *tasks.Pipeline) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	task := tasks.NewRunTask(pipeline)
	task.Start()
	return task.Execute(ctx)
}

func serve(config *cfg.Cfg, pipeline *tasks.Pipeline, store database.StateRepository,
	archive database.RunRepository, sources *feed.SourceCache, registry *rules.Registry) error {
	scheduler := tasks.NewScheduler(pipeline, time.Duration(config.SchedulerInterval)*time.Second)
	scheduler.Start()
	defer scheduler.Stop()
	slog.Info("Scheduler started", "interval", time.Duration(config.SchedulerInterval)*time.Second)

	handler := api.NewHandler(store, archive, sources, registry, scheduler, api.HandlerOptions{
		RulesVersion:  config.RulesVersion,
		LookbackYears: config.LookbackYears,
		BaseURL:       config.BaseUrl,
		Version:       config.Version,
	})

	httpServer := &http.Server{
		Addr:         ":" + config.Port,
		Handler:      api.NewServer(handler, config.APIAccessKey),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", config.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	var serveErr error
	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case serveErr = <-serverErrChan:
	}

	slog.Info("Shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	return serveErr
}
