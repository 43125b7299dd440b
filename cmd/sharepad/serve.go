package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"sharepad/internal/completion"
	"sharepad/internal/config"
	"sharepad/internal/executor"
	"sharepad/internal/room"
	"sharepad/internal/server"
	"sharepad/internal/storage"
	"sharepad/internal/storage/sqlite"
)

var portFlag int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the sharepad server",
	Long: `Start the sharepad HTTP server with room websockets, code execution, and
completion endpoints.

Examples:
  sharepad serve
  sharepad serve --port 9090`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&portFlag, "port", 0, "Port to listen on (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Open storage when configured; otherwise rooms are memory-only.
	var store storage.Store
	if cfg.Storage.DBPath != "" {
		s, err := sqlite.Open(cfg.Storage.DBPath)
		if err != nil {
			return fmt.Errorf("opening storage: %w", err)
		}
		defer s.Close()
		store = s
		log.Printf("Storage: sqlite at %s", cfg.Storage.DBPath)
	} else {
		log.Println("Storage: in-memory only")
	}

	runtimes, err := loadRuntimes(cfg)
	if err != nil {
		return err
	}
	runner := executor.NewRunner(runtimes, cfg.Executor.Timeout)

	var completer *completion.Client
	if cfg.CompletionEnabled() {
		completer = completion.NewClient(
			cfg.Completion.BaseURL,
			cfg.Completion.APIKey,
			cfg.Completion.Model,
			cfg.Completion.MaxContext,
		)
		log.Printf("Completion: %s via %s", cfg.Completion.Model, cfg.Completion.BaseURL)
	} else {
		log.Println("Completion: disabled")
	}

	registry := room.NewRegistry(store, cfg.Room.GracePeriod)
	srv := server.New(registry, runner, completer, store)

	// Determine port
	port := cfg.Server.Port
	if portFlag > 0 {
		port = portFlag
	}

	// Graceful shutdown on SIGINT/SIGTERM
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		srv.Shutdown(context.Background())
	}()

	return srv.Start(port)
}

func loadRuntimes(cfg *config.Config) (map[string]executor.Runtime, error) {
	if cfg.Executor.RuntimesFile == "" {
		return executor.DefaultRuntimes(), nil
	}
	runtimes, err := executor.LoadRuntimes(cfg.Executor.RuntimesFile)
	if err != nil {
		return nil, fmt.Errorf("loading runtimes: %w", err)
	}
	return runtimes, nil
}
