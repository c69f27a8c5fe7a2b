package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/HendryAvila/promptforge/internal/httpapi"
	pfserver "github.com/HendryAvila/promptforge/internal/server"
)

const shutdownTimeout = 5 * time.Second

func httpCmd(g *globals) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "http",
		Short: "Serve the REST API",
		RunE: func(cmd *cobra.Command, args []string) error {
			core, cfg, cleanup, err := g.openCore()
			defer cleanup()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.HTTP.Addr
			}

			gin.SetMode(gin.ReleaseMode)
			router := httpapi.NewRouter(core.Session, httpapi.Options{
				Service:  appName,
				Version:  pfserver.Version,
				Gatherer: core.Registry,
				Logger:   core.Logger.With("component", "http"),
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return listen(ctx, &http.Server{Addr: addr, Handler: router, ReadHeaderTimeout: 10 * time.Second}, core)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config, :8080)")
	return cmd
}

// listen serves until ctx is cancelled, then drains in-flight requests.
func listen(ctx context.Context, srv *http.Server, core *pfserver.Core) error {
	errCh := make(chan error, 1)
	go func() {
		core.Logger.Info("http listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	core.Logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
