package cmd

import (
	"fmt"
	"io"
	"net/http"

	"github.com/adcraftlabs/adcraft/internal/config"
	"github.com/adcraftlabs/adcraft/internal/log"
	"github.com/adcraftlabs/adcraft/internal/transport"
)

// runtime bundles the dependencies every command needs.
type runtime struct {
	cfg    *config.Config
	logger log.Logger
	client *transport.Client
	closer io.Closer
}

// newRuntime loads configuration and builds the transport client. The TUI
// owns the terminal, so logs go to the configured file; with no log file
// logging is disabled rather than fighting the UI for stderr.
func newRuntime() (*runtime, error) {
	cfg, err := config.Load(configDir)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	logCfg := log.Config{Level: log.ParseLevel(cfg.LogLevel)}

	var (
		logger log.Logger
		closer io.Closer
	)
	if cfg.LogFile != "" {
		logger, closer, err = log.NewFile(cfg.LogFile, logCfg)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
	} else {
		logger = log.NewNop()
	}

	client, err := transport.New(cfg.BackendURL, cfg.UserID, logger,
		transport.WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout}),
		transport.WithPollInterval(cfg.PollInterval),
		transport.WithPollAttempts(cfg.PollAttempts),
	)
	if err != nil {
		if closer != nil {
			_ = closer.Close()
		}
		return nil, fmt.Errorf("creating backend client: %w", err)
	}

	return &runtime{cfg: cfg, logger: logger, client: client, closer: closer}, nil
}

// Close releases runtime resources.
func (r *runtime) Close() error {
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}
