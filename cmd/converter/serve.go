package main

import (
	"context"
	"currency-converter/internal/handler"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the converter page and JSON API",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		if !strings.EqualFold(cfg.Log.Level, "debug") {
			gin.SetMode(gin.ReleaseMode)
		}

		converterHandler := handler.NewConverterHandler(a.usecase, cfg.Style, log)
		r := handler.NewRouter(converterHandler, a.registry, cfg.App.AllowOrigins, log)

		port, _ := cmd.Flags().GetString("port")
		if port == "" {
			port = cfg.App.Port
		}

		srv := &http.Server{
			Addr:              net.JoinHostPort("", port),
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		g, gctx := errgroup.WithContext(ctx)

		g.Go(func() error {
			log.Infof("Server starting on port %s...", port)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})

		g.Go(func() error {
			checkCtx, cancel := context.WithTimeout(gctx, cfg.Converter.Timeout)
			defer cancel()
			log.Info("Checking rate feed...")
			if rates, err := a.rates.LatestRates(checkCtx); err != nil {
				log.Warnf("Rate feed is not reachable yet: %v", err)
			} else {
				log.Infof("Rate feed is up, %d currencies quoted", len(rates))
			}
			return nil
		})

		g.Go(func() error {
			<-gctx.Done()
			log.Info("Got shutdown signal...")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return err
			}
			log.Info("Server stopped")
			return nil
		})

		if err := g.Wait(); err != nil {
			return err
		}
		log.Info("Gracefully shut down")
		return nil
	},
}

func init() {
	serveCmd.Flags().String("port", "", "listen port (overrides app.port)")
}
