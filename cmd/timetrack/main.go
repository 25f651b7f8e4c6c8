package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"timetrack/internal/backend"
	"timetrack/internal/bot"
	"timetrack/internal/cache"
	"timetrack/internal/chart"
	"timetrack/internal/cli"
	"timetrack/internal/conversation"
	apphttp "timetrack/internal/http"
	applog "timetrack/internal/log"
	"timetrack/internal/middleware/ratelimit"
	"timetrack/internal/services"
)

func main() {
	cli.LoadEnvFile()
	bootLogger := cli.SetupLogger("info", applog.ComponentApp)
	cfg := cli.LoadAndValidateConfig(bootLogger)
	logger := cli.SetupLogger(cfg.LogLevel, applog.ComponentApp)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		cli.Fatal(logger, "Invalid backend configuration", err)
	}
	result, err := backend.NewFactory(logger).CreateBackend(context.Background(), backendCfg)
	if err != nil {
		cli.Fatal(logger, "Failed to create backend", err)
	}

	machine := conversation.NewMachine(cfg.SessionIdleTimeout)
	renderer := chart.NewSVGRenderer()
	reports := services.NewReportService(result.Store, logger)
	chatBot := bot.New(bot.Options{
		Users:    result.Store,
		Entries:  result.Entries,
		Reports:  reports,
		Machine:  machine,
		Charts:   renderer,
		Location: cfg.Location(),
		Logger:   logger,
	})

	limiter := ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: cfg.RateLimit})

	caches := cache.NewManager(logger.Logger.With(applog.FieldComponent, applog.ComponentCache))
	caches.Register(machine)
	caches.Register(chatBot.KnownUsers())
	caches.Register(limiter)
	caches.StartCleanup(time.Minute)

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Options{
		Bot:            chatBot,
		Reports:        reports,
		Charts:         renderer,
		Ready:          result.Ready,
		Limiter:        limiter,
		Logger:         logger,
		RequestTimeout: cfg.RequestTimeout,
		Location:       cfg.Location(),
	})
	srv.MaxHeaderBytes = 1 << 16

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(shutdownCtx context.Context) {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
		caches.Stop()
		if err := result.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", applog.FieldError, err)
		}
	})

	var g errgroup.Group
	g.Go(func() error {
		logger.Info("Starting timetrack server",
			"port", cfg.Port,
			"backend", cfg.DataBackend,
			"timezone", cfg.Timezone)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		cli.Fatal(logger, "Server error", err)
	}
	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
