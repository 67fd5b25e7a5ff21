package commands

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"evalgo.org/gridium/internal/api"
	"evalgo.org/gridium/internal/config"
	"evalgo.org/gridium/internal/monitor"
	"evalgo.org/gridium/internal/scheduler"
	"evalgo.org/gridium/internal/worker"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the grid scheduler",
	Long: `Start the Gridium scheduler: register the workers from the workers
file, begin health monitoring, and serve the HTTP API`,
	RunE: runServer,
}

func runServer(cmd *cobra.Command, args []string) error {
	registry, err := buildRegistry(cmd.Context())
	if err != nil {
		return err
	}

	server := api.New(cfg, registry)

	// Publish liveness transitions to WebSocket clients
	notify := server.StatusChangeFunc()
	for _, host := range registry.List() {
		host.OnStatusChange = notify
	}

	mon := monitor.New(registry, cfg.Grid.HealthCheckInterval, cfg.Grid.HealthCheckTimeout)
	mon.Start()
	defer mon.Stop()

	// Setup graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)
	defer stop()

	errChan := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		fmt.Println("\n⚠️  Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			cfg.Server.ShutdownTimeout,
		)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}

		return nil

	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}
}

// buildRegistry loads the workers file and registers a host per worker.
// Workers that cannot be reached at startup are skipped; the operator can
// restart or register them later, and the monitor picks up any worker that
// was registered but is temporarily down.
func buildRegistry(ctx context.Context) (*scheduler.Registry, error) {
	entries, err := config.LoadWorkers(cfg.Grid.WorkersFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load workers: %w", err)
	}

	registry := scheduler.NewRegistry()
	for _, entry := range entries {
		client := worker.New(entry.ID, entry.URL, entry.Token)

		host, err := scheduler.NewHost(ctx, client)
		if err != nil {
			log.Printf("Skipping worker %s (%s): %v", entry.ID, entry.URL, err)
			continue
		}
		registry.Add(host)
		log.Printf("Registered worker %s with %d slots", host.ID(), host.TotalSlots())
	}

	log.Printf("Registry ready: %d of %d workers registered", registry.Count(), len(entries))
	return registry, nil
}
