package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/eugenenazirov/ava/internal/application"
	"github.com/eugenenazirov/ava/internal/config"
	"github.com/eugenenazirov/ava/internal/logging"
)

var signalNotify = signal.Notify

func main() {
	overrides, err := parseOverrides(os.Args[1:])
	kingpin.FatalIfError(err, "parse flags")

	cfg, err := config.Load(overrides)
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}

	logger, err := logging.New()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() {
		_ = logger.Sync()
	}()

	app, err := application.New(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize echo service", zap.Error(err))
	}

	logger.Info("echo service configured",
		zap.String("port", cfg.Port),
		zap.Int64("max_body_bytes", cfg.MaxBodyBytes),
		zap.Float64("rate_limit_rps", cfg.RateLimitRPS),
		zap.Int("rate_limit_burst", cfg.RateLimitBurst),
	)

	if err := app.Start(); err != nil {
		logger.Fatal("failed to start echo service", zap.Error(err))
	}

	shutdown(app.Server(), cfg.ShutdownGracePeriod, logger)
}

// parseOverrides turns command-line flags into config overrides. Flags left
// at their sentinel defaults do not override lower layers.
func parseOverrides(args []string) (*config.CLIOverrides, error) {
	app := kingpin.New("echo-server", "HTTP echo service - returns the method, headers and body of every request")
	configFile := app.Flag("config", "Path to YAML configuration file").String()
	port := app.Flag("port", "HTTP port exposed by the service").String()
	maxBodyBytes := app.Flag("max-body-bytes", "Largest accepted request body in bytes").Default("0").Int64()
	rps := app.Flag("rate-limit-rps", "Requests per second allowed (set 0 to disable)").Default("-1").Float64()
	burst := app.Flag("rate-limit-burst", "Burst capacity for rate limiter (set 0 to disable)").Default("-1").Int()

	if _, err := app.Parse(args); err != nil {
		return nil, err
	}

	overrides := &config.CLIOverrides{ConfigFile: *configFile}
	if *port != "" {
		overrides.Port = port
	}
	if *maxBodyBytes > 0 {
		overrides.MaxBodyBytes = maxBodyBytes
	}
	if *rps >= 0 {
		overrides.RateLimitRPS = rps
	}
	if *burst >= 0 {
		overrides.RateLimitBurst = burst
	}
	return overrides, nil
}

func shutdown(server *http.Server, timeout time.Duration, logger *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signalNotify(quit, os.Interrupt, syscall.SIGTERM)

	sig := <-quit
	logger.Info("stopping echo service", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
		if closeErr := server.Close(); closeErr != nil {
			logger.Error("forced close failed", zap.Error(closeErr))
		}
	}
}
