package app

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bankscap/internal/api"
	"bankscap/internal/config"
	"bankscap/internal/etl"
	"bankscap/internal/etl/handler"
	httpserver "bankscap/internal/platform/http"
	"bankscap/internal/progress"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

// Run wires the pipeline and executes it once, or on an interval with the
// HTTP status server when scheduling is enabled.
func Run() error {
	flags := pflag.NewFlagSet("bankscap", pflag.ContinueOnError)
	configPath := flags.StringP("config", "c", "config.yaml", "path to the YAML config file")
	schedule := flags.Bool("schedule", false, "keep running the pipeline on the configured interval")
	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	appCfg, err := config.Init(*configPath)
	if err != nil {
		return err
	}
	if *schedule {
		appCfg.Scheduler.Enabled = true
	}
	setupLogging(appCfg.Logging)
	logrus.Info("✅ Config initialization successful")

	progressLog, err := progress.Open(appCfg.Progress.Path)
	if err != nil {
		logrus.WithError(err).Warn("Progress log unavailable, continuing without it")
		progressLog = progress.Discard()
	}
	defer func() { _ = progressLog.Close() }()

	// Root context bound to OS signals for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := newComponents(appCfg, progressLog)
	if err != nil {
		return err
	}
	defer c.close()

	if !appCfg.Scheduler.Enabled {
		return c.newPipeline().Run(ctx)
	}
	return runScheduled(ctx, appCfg, c.newPipeline)
}

func runScheduled(ctx context.Context, appCfg *config.AppConfig, newPipeline etl.PipelineFactory) error {
	scheduler := etl.NewScheduler(newPipeline, time.Duration(appCfg.Scheduler.IntervalSeconds)*time.Second)
	// Ensure scheduler stops before the process exits
	defer func() {
		if shutDownErr := scheduler.Shutdown(); shutDownErr != nil {
			logrus.Errorf("Scheduler shutdown error: %v", shutDownErr)
		}
	}()
	if startErr := scheduler.Start(ctx); startErr != nil {
		logrus.WithError(startErr).Error("Failed to start scheduler")
		return startErr
	}
	logrus.Info("✅ Scheduler activation successful")

	router := api.NewRouter(handler.NewRunHandler(scheduler))

	logrus.Info("Starting http server")
	if serverErr := httpserver.Start(ctx, appCfg.HTTPServer, router); serverErr != nil {
		logrus.Errorf("HTTP server error: %v", serverErr)
		return serverErr
	}
	return nil
}

func setupLogging(cfg config.Logging) {
	logrus.SetOutput(os.Stdout)
	if parsedLvl, parseErr := logrus.ParseLevel(cfg.Level); parseErr != nil {
		logrus.SetLevel(logrus.InfoLevel)
	} else {
		logrus.SetLevel(parsedLvl)
	}
	if cfg.Format == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
}
