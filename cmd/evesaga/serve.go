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

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/evesaga/evesaga/internal/httpapi"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the read-only report/health HTTP surface",
		RunE: func(cmd *cobra.Command, args []string) error {
			ac, err := loadAppContext()
			if err != nil {
				return err
			}

			cfg := httpapi.DefaultConfig()
			if ac.Config.Server.Addr != "" {
				cfg.Addr = ac.Config.Server.Addr
			}

			srv := httpapi.New(cfg, ac.Report, ac.ReportCache())

			errCh := make(chan error, 1)
			go func() { errCh <- srv.Start() }()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			select {
			case err := <-errCh:
				if err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("serve: %w", err)
				}
			case <-sigCh:
				log.Info().Msg("shutting down report http server")
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := srv.Shutdown(ctx); err != nil {
					return fmt.Errorf("shutdown: %w", err)
				}
			}
			return nil
		},
	}
}
