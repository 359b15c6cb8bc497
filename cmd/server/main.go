/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the hour-debt engine. Handles configuration,
  dependency injection, and graceful shutdown.

COMMANDS:
  serve                  Start the HTTP server
  review TENANT_ID       Run one monthly review sweep and exit

STARTUP SEQUENCE (serve):
  1. Load TOML config
  2. Initialize SQLite store
  3. Create engine and API handler
  4. Configure HTTP router
  5. Start server with graceful shutdown

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with a config file
  ./debt-engine serve --config /etc/debt-engine/config.toml

  # Run with an in-memory database
  ./debt-engine serve --db ":memory:"

  # One-off reconciliation for a tenant
  ./debt-engine review acme --db ./debts.db

SEE ALSO:
  - api/server.go: Router configuration
  - config/config.go: Config file layout
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/zaiken/debt-engine/api"
	"github.com/zaiken/debt-engine/config"
	"github.com/zaiken/debt-engine/hourdebt"
	"github.com/zaiken/debt-engine/store/sqlite"
)

var (
	configPath string
	dbOverride string
	portFlag   int
)

var rootCmd = &cobra.Command{
	Use:   "debt-engine",
	Short: "Hour-debt compensation engine",
	Long: `The hour-debt engine tracks minutes employees owe the business and pays
them down from approved overtime, oldest debt first. It exposes a REST API
for the admin app and the time-tracking subsystem.`,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

var reviewCmd = &cobra.Command{
	Use:   "review TENANT_ID",
	Short: "Run one monthly review sweep and exit",
	Args:  cobra.ExactArgs(1),
	RunE:  runReview,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.toml", "Path to TOML config file")
	rootCmd.PersistentFlags().StringVar(&dbOverride, "db", "", "SQLite database path (overrides config)")
	serveCmd.Flags().IntVar(&portFlag, "port", 0, "HTTP server port (overrides config)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(reviewCmd)
}

// setup loads config and opens the store shared by both commands.
func setup() (*config.Config, *sqlite.Store, *hourdebt.Engine, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, err
	}
	if dbOverride != "" {
		cfg.Database.Path = dbOverride
	}

	store, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	engine := hourdebt.NewEngine(store, cfg)
	return cfg, store, engine, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, store, engine, err := setup()
	if err != nil {
		return err
	}
	defer store.Close()

	port := cfg.Server.Port
	if portFlag != 0 {
		port = portFlag
	}

	handler := api.NewHandler(engine)
	router := api.NewRouter(handler)

	// Background review sweeps for every tenant named in the config.
	tenants := make([]string, 0, len(cfg.Tenants))
	for id := range cfg.Tenants {
		tenants = append(tenants, id)
	}
	scheduler := api.NewReviewScheduler(engine, tenants)
	scheduler.Start()
	defer scheduler.Stop()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on http://localhost:%d", port)
		log.Printf("API available at http://localhost:%d/api", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
	}

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("Server stopped")
	return nil
}

func runReview(cmd *cobra.Command, args []string) error {
	tenantID := args[0]

	_, store, engine, err := setup()
	if err != nil {
		return err
	}
	defer store.Close()

	summary, err := engine.MonthlyReview(cmd.Context(), tenantID)
	if err != nil {
		return fmt.Errorf("review failed: %w", err)
	}

	fmt.Printf("Review %s for tenant %s\n", summary.RunID, summary.TenantID)
	fmt.Printf("  auto-applied:  %d min\n", summary.AutoAppliedMinutes)
	fmt.Printf("  remaining gap: %d min across %d user(s)\n", summary.RemainingGapMinutes, summary.UsersWithGaps)
	if summary.UsersFailed > 0 {
		fmt.Printf("  failed users:  %d (left for the next run)\n", summary.UsersFailed)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
