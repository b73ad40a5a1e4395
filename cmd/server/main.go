// Package main provides the server entry point.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/sparshik/automedia/internal/api/rest"
	"github.com/sparshik/automedia/internal/app/playback"
	"github.com/sparshik/automedia/internal/app/session"
	"github.com/sparshik/automedia/internal/infra/config"
	"github.com/sparshik/automedia/internal/infra/logger"
	"github.com/sparshik/automedia/internal/infra/mpris"
	"github.com/sparshik/automedia/internal/infra/player"
)

var (
	app        = kingpin.New("automedia-server", "automedia playback server")
	configPath = app.Flag("config", "Path to config file").Default("config/server.yaml").String()
	verbose    = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	logfile    = app.Flag("logfile", "Path to log file (default: stdout)").String()

	// list-tracks command
	listTracksCmd = app.Command("list-tracks", "Print the effective catalog and exit")
)

func init() {
	// start command (default) - no need to store the command
	app.Command("start", "Start the server (default)").Default()
}

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	// Initialize logger
	loggerConfig := logger.Config{
		Output: "stdout",
		Level:  "info",
	}
	if *verbose {
		loggerConfig.Level = "debug"
	}
	if *logfile != "" {
		loggerConfig.Output = *logfile
	}
	if err := logger.Init(loggerConfig); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	// Load config
	zlog.Info().Msgf("Loading config from %s", *configPath)
	cfg, err := config.Load(*configPath)
	if err != nil {
		zlog.Fatal().Msgf("Failed to load config: %v", err)
	}

	if command == listTracksCmd.FullCommand() {
		printTracks(cfg)
		return
	}

	if err := run(cfg); err != nil {
		zlog.Error().Msgf("Server error: %v", err)
		os.Exit(1)
	}
}

// run executes the main server logic. Using a separate function ensures
// defer statements are executed even when returning with an error.
func run(cfg *config.Config) error {
	// Build the fixed catalog
	catalog, err := cfg.BuildCatalog()
	if err != nil {
		return fmt.Errorf("failed to build catalog: %w", err)
	}
	zlog.Info().Msgf("Catalog loaded: %d tracks", catalog.Len())

	// Create session publisher and playback stack
	sess := session.NewManager()
	audio := player.New(player.Config{})
	controller := playback.NewController(catalog, audio, sess, playback.Config{
		Rate: cfg.Playback.Rate,
	})
	defer func() {
		if err := controller.Close(); err != nil {
			zlog.Error().Msgf("Failed to close controller: %v", err)
		}
	}()

	// Publish the session over MPRIS if enabled
	if cfg.IsPublisherEnabled("mpris") {
		settings, err := mpris.ParseSettings(cfg.GetPublisherSettings("mpris"))
		if err != nil {
			return fmt.Errorf("invalid mpris settings: %w", err)
		}
		adapter, err := mpris.New(settings, controller, sess)
		if err != nil {
			return fmt.Errorf("failed to start mpris adapter: %w", err)
		}
		defer func() {
			if err := adapter.Close(); err != nil {
				zlog.Error().Msgf("Failed to close mpris adapter: %v", err)
			}
		}()
		zlog.Info().Msgf("MPRIS adapter started: name=%s", settings.Name)
	}

	// Create HTTP mux and register the API
	mux := http.NewServeMux()
	rest.NewService(catalog, controller, sess).Register(mux)

	// Create server with h2c (HTTP/2 cleartext) support
	server := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: h2c.NewHandler(mux, &http2.Server{}),
	}

	// Channel to capture server startup errors
	serverErrCh := make(chan error, 1)
	serverStartedCh := make(chan struct{})

	go func() {
		zlog.Info().Msgf("Starting server: addr=%s", cfg.Server.Addr)
		close(serverStartedCh)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- err
		}
	}()

	// Wait for the server to start listening
	<-serverStartedCh
	time.Sleep(100 * time.Millisecond)

	// Execute startup hooks after the server is running
	executeHooks(cfg.Server.Hooks.OnStarted, "on_started")

	// Wait for shutdown signal or server error
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		zlog.Info().Msg("Received shutdown signal...")
	case err := <-serverErrCh:
		return fmt.Errorf("server error: %w", err)
	}

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zlog.Error().Msgf("Failed to shutdown server: %v", err)
	}

	zlog.Info().Msg("Server stopped")

	// Execute shutdown hooks
	executeHooks(cfg.Server.Hooks.OnStopped, "on_stopped")

	return nil
}

// printTracks prints the effective catalog.
func printTracks(cfg *config.Config) {
	fmt.Println("Catalog:")
	for i, entry := range cfg.Catalog {
		fmt.Printf("  %2d. %-30s %-20s %8dms\n      %s\n", i+1, entry.Title, entry.Artist, entry.DurationMs, entry.ID)
	}
}

// executeHooks runs a list of shell commands.
func executeHooks(hooks []string, stage string) {
	if len(hooks) == 0 {
		return
	}

	zlog.Info().Msgf("Executing %s hooks (%d commands)", stage, len(hooks))

	for _, hook := range hooks {
		zlog.Info().Msgf("Executing hook: %s", hook)
		// Use sh -c to allow shell features like redirection or pipes
		cmd := exec.Command("sh", "-c", hook)
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr

		if err := cmd.Run(); err != nil {
			zlog.Error().Err(err).Msgf("Failed to execute hook: %s", hook)
		}
	}
}
