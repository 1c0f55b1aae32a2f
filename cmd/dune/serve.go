package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/dunehq/dune"
	"github.com/dunehq/dune/internal/logging"
	httpAdapter "github.com/dunehq/dune/pkg/adapters/http"
	"github.com/dunehq/dune/pkg/adapters/memory"
	redisAdapter "github.com/dunehq/dune/pkg/adapters/redis"
	"github.com/dunehq/dune/pkg/observability"
	"github.com/dunehq/dune/pkg/persistence"
	"github.com/dunehq/dune/pkg/ports"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the stateless HTTP server",
	Long:  `Starts the Dune engine in server mode, exposing the conversation and gateway surfaces as a JSON API over HTTP.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		port, _ := cmd.Flags().GetInt("port")
		if !cmd.Flags().Changed("port") {
			port = cfg.HTTPPort
		}

		logger := logging.New(cfg.SlogLevel())

		registry := prometheus.NewRegistry()
		metrics := observability.New(registry)

		engine, err := buildEngine(cfg, logger, dune.WithLifecycleHooks(metrics.Hooks()))
		if err != nil {
			return err
		}

		var store ports.SessionStore = memory.NewStore()
		if cfg.RedisAddr != "" {
			redisOpts := []redisAdapter.Option{}
			key, err := cfg.DecodeSessionKey()
			if err != nil {
				return err
			}
			if key != nil {
				codec, err := persistence.NewAESCodec(key)
				if err != nil {
					return err
				}
				redisOpts = append(redisOpts, redisAdapter.WithCodec(codec))
			}
			store = redisAdapter.New(cfg.RedisAddr, "", 0, redisOpts...)
			logger.Info("using redis session store", "addr", cfg.RedisAddr, "encrypted", key != nil)
		}
		if cfg.ScrubStoredInput {
			store = persistence.Chain(store, persistence.NewScrubMiddleware())
		}

		handler := httpAdapter.NewHandler(engine, store,
			httpAdapter.WithLogger(logger),
			httpAdapter.WithMetrics(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})),
		)

		srv := &http.Server{
			Addr:    ":" + strconv.Itoa(port),
			Handler: handler,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			fmt.Printf("Starting Dune Server on %s\n", srv.Addr)
			serverErrors <- srv.ListenAndServe()
		}()

		// Channel to listen for interrupt or terminate signals.
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			return fmt.Errorf("server error: %w", err)

		case sig := <-shutdown:
			fmt.Printf("\nStart shutdown... Signal: %v\n", sig)

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				fmt.Printf("Graceful shutdown did not complete in %v: %v\n", 5*time.Second, err)
				if err := srv.Close(); err != nil {
					return fmt.Errorf("error killing server: %w", err)
				}
			}
			fmt.Println("Dune Server stopped gracefully")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
}
