package main

import (
	"errors"
	"net/http"
	"os"
	"time"

	"hisab/internal/backend"
	"hisab/internal/cli"
	apphttp "hisab/internal/http"
	applog "hisab/internal/log"
)

func main() {
	cli.LoadEnvFile()
	cfg, logger := cli.LoadAndValidateConfig()

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err.Error())
		os.Exit(1)
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend",
			applog.FieldError, err.Error(),
			applog.FieldErrorType, applog.ErrorTypeDatabase,
			"driver", backendCfg.Driver.String())
		os.Exit(1)
	}
	defer func() {
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", applog.FieldError, err.Error())
		}
	}()

	srv := apphttp.NewServer(apphttp.Config{
		Addr:               ":" + cfg.Port,
		AllowedOrigins:     cfg.CORSAllowedOrigins,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		TrustedProxies:     cfg.TrustedProxies,
		ReportCurrency:     cfg.ReportCurrency,
		ReportBrand:        cfg.ReportBrand,
		Logger:             logger,
		Ready:              res.Repo,
		Caches:             res.Caches,
		ChartCache:         res.Charts,
	}, res.Ledger)
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting hisab server",
			"port", cfg.Port,
			"driver", cfg.DatabaseDriver,
			"amqp_enabled", res.Events != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("Server error", applog.FieldError, err.Error(), "port", cfg.Port)
			os.Exit(1)
		}
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := cli.ShutdownContext(30 * time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", applog.FieldError, err.Error())
	}
	logger.Info("Server stopped gracefully")
}
