package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ahmethakanbesel/scraper-sdk/internal/platform/postgres"
	"github.com/ahmethakanbesel/scraper-sdk/internal/platform/sqlite"
	integrationrepo "github.com/ahmethakanbesel/scraper-sdk/internal/repository/integration"
	jobrepo "github.com/ahmethakanbesel/scraper-sdk/internal/repository/job"
	tenderrepo "github.com/ahmethakanbesel/scraper-sdk/internal/repository/tender"
	"github.com/ahmethakanbesel/scraper-sdk/internal/server"
)

func (a *app) serveCmd() *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the reference backend",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if port != "" {
				a.cfg.Server.Port = port
			}
			return a.serve(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "listen port (overrides server.port)")
	return cmd
}

func (a *app) openDB(ctx context.Context) (*sqlx.DB, error) {
	switch a.cfg.Database.Driver {
	case "postgres":
		db, err := postgres.Open(ctx, a.cfg.Database.DSN)
		if err != nil {
			return nil, err
		}
		return db.DB, nil
	default:
		db, err := sqlite.Open(a.cfg.Database.DSN)
		if err != nil {
			return nil, err
		}
		return db.DB, nil
	}
}

func (a *app) serve(ctx context.Context) error {
	db, err := a.openDB(ctx)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() { _ = db.Close() }()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewDBStatsCollector(db.DB, a.cfg.Database.Driver),
	)

	// ctx is the request base context: it is cancelled on SIGINT/SIGTERM.
	srv := server.New(ctx, a.cfg.Server.Port, server.Deps{
		Integrations: integrationrepo.NewRepository(db),
		Jobs:         jobrepo.NewRepository(db),
		Tenders:      tenderrepo.NewRepository(db),
		Log:          a.log,
		APIKey:       a.cfg.Server.APIKey,
		Registry:     reg,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		// Drain connections with a deadline.
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	a.log.Info("server stopped")
	return nil
}
