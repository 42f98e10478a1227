package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"tailscale.com/tsnet"

	"github.com/claude/odos/internal/server"
)

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), *configPath)
		},
	}
}

func serve(ctx context.Context, configPath string) (err error) {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := loadApp(ctx, configPath)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, a.close()) }()

	log := a.log
	log.Info("odos starting", "version", Version)

	// A failed initial fetch leaves the catalog empty until the next refresh.
	if err := a.catalog.Refresh(ctx); err != nil {
		log.Warn("initial catalog fetch failed", "error", err)
	}

	srv := server.New(server.Deps{
		Catalog:   a.catalog,
		Inventory: a.inventory,
		Tracker:   a.tracker,
		Planner:   a.planner,
		History:   a.history,
		Metrics:   a.metrics,
	}, log)

	// Listen on the tailnet or on plain TCP
	var listener net.Listener
	if a.cfg.Tailscale.Enabled {
		tsServer := &tsnet.Server{
			Hostname: a.cfg.Tailscale.Hostname,
			Dir:      a.cfg.Tailscale.StateDir,
		}
		if err := tsServer.Start(); err != nil {
			return fmt.Errorf("tsnet start: %w", err)
		}
		defer func() { err = multierr.Append(err, tsServer.Close()) }()

		lc, err := tsServer.LocalClient()
		if err != nil {
			return fmt.Errorf("tsnet local client: %w", err)
		}
		srv.SetTailscale(lc)

		listener, err = tsServer.Listen("tcp", ":80")
		if err != nil {
			return fmt.Errorf("tsnet listen: %w", err)
		}
		log.Info("tsnet server starting", "hostname", a.cfg.Tailscale.Hostname)
	} else {
		addr := fmt.Sprintf("%s:%d", a.cfg.Server.Host, a.cfg.Server.Port)
		listener, err = net.Listen("tcp", addr)
		if err != nil {
			return fmt.Errorf("listen on %s: %w", addr, err)
		}
		log.Info("server starting", "addr", addr, "mode", "dev (no tailscale)")
	}

	httpSrv := &http.Server{Handler: srv}
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- httpSrv.Serve(listener)
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving http: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	// Graceful shutdown
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down http: %w", err)
	}
	log.Info("server stopped")
	return nil
}
