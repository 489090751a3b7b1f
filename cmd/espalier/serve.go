package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	backend "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/aretw0/espalier"
	"github.com/aretw0/espalier/pkg/adapters/file"
	httpAdapter "github.com/aretw0/espalier/pkg/adapters/http"
	"github.com/aretw0/espalier/pkg/adapters/memory"
	"github.com/aretw0/espalier/pkg/adapters/redis"
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/observability"
	"github.com/aretw0/espalier/pkg/ports"
	"github.com/aretw0/espalier/pkg/session"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Starts the editor in server mode, exposing the scene as a JSON API over HTTP with SSE lifecycle streams and Prometheus metrics.`,
	Run: func(cmd *cobra.Command, args []string) {
		dir, _ := cmd.Flags().GetString("dir")
		port, _ := cmd.Flags().GetString("port")
		storeKind, _ := cmd.Flags().GetString("store")
		dataDir, _ := cmd.Flags().GetString("data-dir")
		redisAddr, _ := cmd.Flags().GetString("redis-addr")
		redisPassword, _ := cmd.Flags().GetString("redis-password")
		redisDB, _ := cmd.Flags().GetInt("redis-db")

		if !cmd.Flags().Changed("redis-addr") {
			if v := os.Getenv("ESPALIER_REDIS_ADDR"); v != "" {
				redisAddr = v
			}
		}

		var store ports.SceneStore
		var sessionOpts []session.Option
		switch storeKind {
		case "memory":
			store = memory.NewStore()
		case "file":
			store = file.New(dataDir)
		case "redis":
			client := backend.NewClient(&backend.Options{
				Addr:     redisAddr,
				Password: redisPassword,
				DB:       redisDB,
			})
			store = redis.NewFromClient(client)
			// Replicas sharing one Redis serialize edits through a
			// distributed lock.
			sessionOpts = append(sessionOpts, session.WithLocker(redis.NewLocker(client, "espalier:")))
		default:
			fmt.Printf("Unknown store: %s. Supported: memory, file, redis\n", storeKind)
			os.Exit(1)
		}
		scenes := session.NewManager(store, sessionOpts...)

		streams := httpAdapter.NewStreamManager()
		promReg := prometheus.NewRegistry()
		metrics := observability.NewMetrics(promReg)

		editor, err := espalier.Open(cmd.Context(), dir,
			espalier.WithHooks(domain.CombineHooks(metrics.Hooks(), streams.Hooks())),
		)
		if err != nil {
			fmt.Printf("Error initializing editor: %v\n", err)
			os.Exit(1)
		}

		handler := httpAdapter.NewHandler(editor,
			httpAdapter.WithStore(scenes),
			httpAdapter.WithStreams(streams),
		)

		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(promReg, promhttp.HandlerOpts{}))
		mux.Handle("/", handler)

		srv := &http.Server{
			Addr:    ":" + port,
			Handler: mux,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			fmt.Printf("Starting Espalier Server on %s\n", srv.Addr)
			fmt.Printf("Serving catalog from: %s\n", dir)
			serverErrors <- srv.ListenAndServe()
		}()

		// Channel to listen for interrupt or terminate signals.
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		// Blocking main and waiting for shutdown.
		select {
		case err := <-serverErrors:
			// Error when starting HTTP server.
			fmt.Printf("Server error: %v\n", err)
			os.Exit(1)

		case sig := <-shutdown:
			fmt.Printf("\nStart shutdown... Signal: %v\n", sig)

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			// Asking listener to shut down and shed load.
			if err := srv.Shutdown(ctx); err != nil {
				fmt.Printf("Graceful shutdown did not complete in %v: %v\n", 5*time.Second, err)
				if err := srv.Close(); err != nil {
					fmt.Printf("Error killing server: %v\n", err)
				}
			}
			fmt.Println("Espalier Server stopped gracefully")
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	serveCmd.Flags().String("store", "memory", "Scene store backend: memory, file or redis")
	serveCmd.Flags().String("data-dir", "", "Directory for the file store (defaults to .espalier/scenes)")
	serveCmd.Flags().String("redis-addr", "localhost:6379", "Redis address for the redis store (or ESPALIER_REDIS_ADDR)")
	serveCmd.Flags().String("redis-password", "", "Redis password for the redis store")
	serveCmd.Flags().Int("redis-db", 0, "Redis database for the redis store")
}
