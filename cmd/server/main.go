// Package main provides the HTTP API server entry point.
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
	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/BadrElyatim/quran-app/internal/api/httpapi"
	"github.com/BadrElyatim/quran-app/internal/app/reader"
	"github.com/BadrElyatim/quran-app/internal/infra/config"
	"github.com/BadrElyatim/quran-app/internal/infra/logger"
	"github.com/BadrElyatim/quran-app/internal/infra/quran"
)

var (
	app        = kingpin.New("quran-server", "Quran reader HTTP API server")
	configPath = app.Flag("config", "Path to config file (default: built-in defaults)").String()
	verbose    = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	logfile    = app.Flag("logfile", "Path to log file (default: stderr)").String()

	// list-rules command
	listRulesCmd = app.Command("list-rules", "List tajweed rules and exit")
)

func init() {
	// start command (default) - no need to store the command
	app.Command("start", "Start the server (default)").Default()
}

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	loggerConfig := logger.Config{Output: "stderr", Level: "info"}
	if *verbose {
		loggerConfig.Level = "debug"
	}
	if *logfile != "" {
		loggerConfig.Output = *logfile
	}
	if err := logger.Init(loggerConfig); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	if *configPath != "" {
		zlog.Info().Msgf("Loading config from %s", *configPath)
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		zlog.Fatal().Msgf("Failed to load config: %v", err)
	}

	// Flags win over the config file
	if !*verbose && *logfile == "" {
		if err := logger.Init(logger.Config{Output: cfg.Log.Output, Level: cfg.Log.Level}); err != nil {
			zlog.Fatal().Msgf("Failed to initialize logger: %v", err)
		}
	}

	if command == listRulesCmd.FullCommand() {
		if err := printRules(cfg); err != nil {
			zlog.Fatal().Msgf("Failed to list rules: %v", err)
		}
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
	sessionCfg, err := reader.ConfigFrom(cfg)
	if err != nil {
		return errors.Wrap(err, "invalid tajweed config")
	}

	client := quran.New(quran.Config{
		BaseURL:           cfg.API.BaseURL,
		AudioBaseURL:      cfg.API.AudioBaseURL,
		Timeout:           cfg.API.Timeout(),
		RequestsPerSecond: cfg.API.RequestsPerSecond,
		Burst:             cfg.API.Burst,
		Language:          cfg.Reader.Language,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Catalogues are cached by the client; a failure here is not fatal.
	go func() {
		if err := warmUpCatalogues(ctx, client); err != nil {
			zlog.Warn().Msgf("Catalogue warm-up failed: %v", err)
		}
	}()

	api := httpapi.NewServer(client, httpapi.Config{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Defaults:       sessionCfg.Selection,
		Rules:          sessionCfg.Tajweed.Rules(),
	})

	serverAddr := cfg.Server.Addr
	// Create server with h2c (HTTP/2 cleartext) support
	server := &http.Server{
		Addr:              serverAddr,
		Handler:           h2c.NewHandler(api, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrCh := make(chan error, 1)
	serverStartedCh := make(chan struct{})

	go func() {
		zlog.Info().Msgf("Starting server: addr=%s", serverAddr)
		close(serverStartedCh)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		}
	}()

	<-serverStartedCh
	// Give the server a moment to fully initialize
	time.Sleep(100 * time.Millisecond)

	executeHooks(cfg.Server.Hooks.OnStarted, "on_started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		zlog.Info().Msg("Received shutdown signal...")
	case err := <-serverErrCh:
		return errors.Wrap(err, "server error")
	}

	cancel()

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zlog.Error().Msgf("Failed to shutdown server: %v", err)
	}

	zlog.Info().Msg("Server stopped")

	executeHooks(cfg.Server.Hooks.OnStopped, "on_stopped")

	return nil
}

// printRules prints the tajweed rules with configured overrides applied.
func printRules(cfg *config.Config) error {
	settings, err := cfg.TajweedSettings()
	if err != nil {
		return err
	}
	fmt.Println("Tajweed Rules:")
	for _, r := range settings.Rules() {
		state := "on"
		if !r.Enabled {
			state = "off"
		}
		fmt.Printf("  %-20s %-26s %-20s [%s]\n", r.ID, r.Name, r.Color, state)
	}
	return nil
}

// warmUpCatalogues fills the reciter and translation caches. It retries with
// exponential backoff to ride out transient upstream errors at startup.
func warmUpCatalogues(ctx context.Context, client *quran.Client) error {
	maxRetries := 5
	baseDelay := 1 * time.Second

	warm := func(name string, fetch func(context.Context) (int, error)) error {
		var lastErr error
		for i := 0; i < maxRetries; i++ {
			if i > 0 {
				delay := baseDelay * time.Duration(1<<uint(i-1))
				zlog.Info().Msgf("Retrying %s warm-up in %v...", name, delay)
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(delay):
				}
			}

			n, err := fetch(ctx)
			if err != nil {
				lastErr = err
				zlog.Warn().Msgf("Failed to load %s (attempt %d/%d): %v", name, i+1, maxRetries, err)
				continue
			}

			zlog.Info().Msgf("Loaded %s: count=%d", name, n)
			return nil
		}
		return errors.Wrapf(lastErr, "%s: failed after %d attempts", name, maxRetries)
	}

	if err := warm("reciters", func(ctx context.Context) (int, error) {
		r, err := client.Reciters(ctx)
		return len(r), err
	}); err != nil {
		return err
	}
	return warm("translations", func(ctx context.Context) (int, error) {
		t, err := client.Translations(ctx)
		return len(t), err
	})
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
