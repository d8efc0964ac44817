package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/Veraticus/lensline/internal/analysis"
	"github.com/Veraticus/lensline/internal/api"
	"github.com/Veraticus/lensline/internal/blob"
	"github.com/Veraticus/lensline/internal/common"
	"github.com/Veraticus/lensline/internal/metrics"
	"github.com/Veraticus/lensline/internal/preferences"
	"github.com/Veraticus/lensline/internal/session"
	"github.com/Veraticus/lensline/internal/storage"
	"github.com/spf13/cobra"
)

// app is the set of stores one command works with. Every command builds
// its own; nothing is shared between invocations.
type app struct {
	db           *storage.SQLiteStorage
	sessions     *session.Store
	sessionReady <-chan struct{}
	client       *api.Client
	analyses     *analysis.Store
	metrics      *metrics.Recorder
	metricsFile  string
	prefs        preferences.Settings
}

// openApp wires storage, session, remote client and history for one
// command. The session is rehydrated and the history restored and pruned
// before it returns.
func openApp(ctx context.Context, g *globals) (*app, error) {
	cfg := g.cfg

	db, err := storage.NewSQLiteStorage(cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// The client authenticates through the session store, which in turn
	// needs the client for its remote calls.
	sessions := session.NewStore(nil, db)
	client := api.New(api.Config{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout,
		Offline: cfg.API.Offline,
	}, sessions)
	sessions.SetRemote(client)

	a := &app{
		db:           db,
		sessions:     sessions,
		sessionReady: sessions.Initialize(ctx),
		client:       client,
		metrics:      metrics.New(),
		metricsFile:  cfg.Metrics.Textfile,
	}

	prefs, err := preferences.Load(ctx, db)
	if err != nil {
		slog.Warn("Failed to load settings, using defaults", "error", err)
		prefs = preferences.Defaults()
	}
	a.prefs = prefs

	opts := []analysis.Option{analysis.WithRecorder(a.metrics)}
	if prefs.Privacy.StoreHistory {
		opts = append(opts, analysis.WithJournal(db))
	}

	blobs, err := blob.New(ctx, cfg.Blob)
	if err != nil {
		slog.Warn("Image storage unavailable, placeholders will reference file names", "error", err)
	} else {
		opts = append(opts, analysis.WithBlobStore(blobs))
	}

	a.analyses = analysis.NewStore(client, opts...)

	if err := a.analyses.Restore(ctx); err != nil {
		a.close()
		return nil, err
	}
	if retention, ok := prefs.Retention(); ok {
		a.analyses.Prune(ctx, time.Now().Add(-retention))
	}

	return a, nil
}

// close waits for any background session refresh, then writes metrics and
// releases the database.
func (a *app) close() {
	<-a.sessionReady

	if a.metricsFile != "" {
		if err := a.metrics.WriteTextfile(a.metricsFile); err != nil {
			common.LogError(err, "Failed to write metrics", common.Fields{"path": a.metricsFile})
		}
	}
	if err := a.db.Close(); err != nil {
		common.LogError(err, "Failed to close database", nil)
	}
}

// withApp adapts a command body that needs the stores into a cobra RunE,
// timing the command for metrics.
func withApp(g *globals, run func(cmd *cobra.Command, args []string, a *app) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		start := time.Now()

		a, err := openApp(cmd.Context(), g)
		if err != nil {
			return err
		}
		defer a.close()

		err = run(cmd, args, a)
		a.metrics.ObserveCommand(cmd.CommandPath(), time.Since(start))
		return err
	}
}

func printf(w io.Writer, format string, args ...any) {
	if _, err := fmt.Fprintf(w, format, args...); err != nil {
		slog.Error("failed to write output", "error", err)
	}
}

func printLine(w io.Writer, s string) {
	printf(w, "%s\n", s)
}
