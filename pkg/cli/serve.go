package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"retention-ltv/pkg/server"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (a *app) serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = a.cfg.ListenAddr()
			}
			srv := server.New(a.log, VersionString(), server.Defaults{
				InitialSize:        a.cfg.InitialSize,
				RevenuePerCustomer: a.cfg.RevenuePerCustomer,
				SweepFrom:          a.cfg.Sweep.From,
				SweepTo:            a.cfg.Sweep.To,
				SweepStep:          a.cfg.Sweep.Step,
			})

			httpServer := &http.Server{
				Addr:              addr,
				Handler:           srv,
				ReadHeaderTimeout: 5 * time.Second,
			}

			// Graceful shutdown
			done := make(chan os.Signal, 1)
			signal.Notify(done, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(done)

			errc := make(chan error, 1)
			go func() {
				a.log.Info("serving", zap.String("addr", addr), zap.String("version", VersionString()))
				if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errc <- err
				}
				close(errc)
			}()

			select {
			case err := <-errc:
				return err
			case <-done:
			}
			a.log.Info("shutting down")

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return httpServer.Shutdown(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: config server.bind:server.port)")
	return cmd
}
