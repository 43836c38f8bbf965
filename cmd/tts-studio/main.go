// main package for the tts-studio boundary server.
package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/book-expert/logger"
	"github.com/book-expert/tts-studio/internal/config"
	"github.com/book-expert/tts-studio/internal/elevenlabs"
	"github.com/book-expert/tts-studio/internal/httpapi"
)

const readHeaderTimeout = 10 * time.Second

func setupLogger(logPath string) (*logger.Logger, error) {
	log, err := logger.New(logPath, "tts-studio.log")
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return log, nil
}

func run() error {
	// 1. Create a temporary logger for the bootstrap process
	bootstrapLog, err := setupLogger(os.TempDir())
	if err != nil {
		// If bootstrap logger fails, we can only print to stderr
		fmt.Fprintf(os.Stderr, "FATAL: Failed to create bootstrap logger: %v\n", err)

		return err
	}

	bootstrapLog.Info("Bootstrap logger created.")

	// 2. Load configuration using the central configurator
	cfg, err := config.Load(bootstrapLog)
	if err != nil {
		bootstrapLog.Error("Failed to load configuration: %v", err)

		return fmt.Errorf("failed to load configuration: %w", err)
	}

	bootstrapLog.Info("Configuration loaded successfully.")

	// 3. Initialize the final logger based on the loaded configuration
	finalLog, err := setupLogger(cfg.Paths.BaseLogsDir)
	if err != nil {
		bootstrapLog.Error("Failed to create final logger: %v", err)

		return fmt.Errorf("failed to create final logger: %w", err)
	}

	defer func() {
		closeErr := finalLog.Close()
		if closeErr != nil {
			fmt.Fprintf(os.Stderr, "error closing final logger: %v\n", closeErr)
		}
	}()

	// 4. Build the provider client and the boundary server
	provider := elevenlabs.New(elevenlabs.Config{
		BaseURL: cfg.Provider.BaseURL,
		ModelID: cfg.Provider.ModelID,
		Timeout: cfg.ProviderTimeout(),
	})

	serverKey := ""
	if cfg.Server.APIKeyEnvVar != "" {
		serverKey = os.Getenv(cfg.Server.APIKeyEnvVar)
	}

	if serverKey == "" {
		finalLog.Warn("No server-held provider key configured; requests must carry their own key.")
	}

	api := httpapi.NewServer(provider, serverKey, finalLog)

	finalLog.System("TTS-Studio boundary server listening on %s", cfg.Server.ListenAddress)

	server := &http.Server{
		Addr:              cfg.Server.ListenAddress,
		Handler:           api.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	err = server.ListenAndServe()
	if err != nil {
		finalLog.Error("Server stopped: %v", err)

		return fmt.Errorf("server stopped: %w", err)
	}

	return nil
}

func main() {
	err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Service exited with error: %v\n", err)
		os.Exit(1)
	}
}
