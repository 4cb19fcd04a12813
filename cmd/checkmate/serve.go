package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dgallion1/checkmate/internal/api"
	"github.com/dgallion1/checkmate/internal/auth"
	"github.com/dgallion1/checkmate/internal/importer"
)

const shutdownTimeout = 10 * time.Second

func (a *app) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and import workers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
}

// serve runs until ctx is cancelled, then drains the import queue and shuts
// the HTTP server down.
func (a *app) serve(ctx context.Context) error {
	st, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()
	if err := st.Migrate(ctx); err != nil {
		return err
	}

	// Jobs in flight keep running past the signal until Stop drains them.
	orch := importer.NewOrchestrator(a.cfg, st, a.log)
	orch.Start(context.WithoutCancel(ctx))

	srv := api.NewServer(st, orch, auth.NewSessions(a.cfg.SessionSecret), a.log, a.cfg)

	eg, egctx := errgroup.WithContext(ctx)
	httpServer := &http.Server{
		Addr:         ":" + a.cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return egctx
		},
	}

	eg.Go(func() error {
		a.log.Info("starting checkmate", "port", a.cfg.Port, "db_driver", a.cfg.DBDriver)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	eg.Go(func() error {
		<-egctx.Done()
		a.log.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := httpServer.Shutdown(shutdownCtx)
		orch.Stop(shutdownCtx)
		return err
	})
	return eg.Wait()
}
