package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"

	"github.com/angas/tibberwatch-go/config"
	"github.com/angas/tibberwatch-go/coordinator"
	"github.com/angas/tibberwatch-go/database"
	"github.com/angas/tibberwatch-go/logging"
	"github.com/angas/tibberwatch-go/mqtt"
	"github.com/angas/tibberwatch-go/task"
	"github.com/angas/tibberwatch-go/tibber"
	"github.com/angas/tibberwatch-go/timewindow"
	"github.com/angas/tibberwatch-go/www"
)

var Version = "?.?.?"

func main() {
	defer func() {
		if err := recover(); err != nil {
			exitWithError(slog.Default(), fmt.Errorf("application panicked: %v", err))
		} else {
			slog.Default().Info("application is shutting down...")
		}
	}()

	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cnfg, err := config.Load(*configPath)
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	consoleHandler := tint.NewHandler(os.Stdout, &tint.Options{
		Level:      cnfg.Logging.GetConsoleLevel(),
		TimeFormat: time.RFC3339,
	})
	slog.New(consoleHandler).Debug("tibberwatch is starting...", slog.String("version", Version))

	db, err := database.New(ctx, cnfg.Database.Path)
	if err != nil {
		panic(fmt.Sprintf("failed to connect to database: %v", err))
	}
	defer db.Close()

	logger := slog.New(logging.NewMultiHandler(
		consoleHandler,
		logging.NewSQLiteHandler(db, cnfg.Logging.GetDbLevel(), cnfg.Logging.GetDbAttrsFormat())))
	slog.SetDefault(logger)

	// Now we can use the logger to log database operations into the database itself
	db.SetLogger(logger.With("module", "database"))

	params, err := analyticsParams(cnfg)
	if err != nil {
		panic(fmt.Sprintf("invalid analytics config: %v", err))
	}

	coord := coordinator.New(
		logger.With("module", "coordinator"),
		tibber.New(cnfg.Tibber.ApiToken),
		params)

	windows, err := timewindow.NewManager(ctx, logger.With("module", "timewindow"), db, coord)
	if err != nil {
		panic(fmt.Sprintf("failed to load time windows: %v", err))
	}

	if cnfg.Mqtt.Enabled {
		publisher := mqtt.NewPublisher(
			cnfg.Mqtt.Host,
			cnfg.Mqtt.Port,
			cnfg.Mqtt.Username,
			cnfg.Mqtt.Password,
			cnfg.Mqtt.GetTopicPrefix())
		if err := publisher.Connect(); err != nil {
			panic(fmt.Sprintf("mqtt connection error: %v", err))
		}
		defer publisher.Disconnect()
		coord.OnUpdate(publisher.Publish)
	}

	// Runs the first refresh immediately, a bad token fails here.
	tasks, err := task.NewTasks(db, coord, cnfg)
	if err != nil {
		panic(fmt.Sprintf("initial price refresh failed: %v", err))
	}
	tasks.Run()
	defer tasks.Stop()

	config.Watch(func(c *config.AppConfig) {
		p, err := analyticsParams(c)
		if err != nil {
			logger.Warn("ignoring config change", slog.Any("error", err))
			return
		}
		coord.SetParams(p)
		logger.Info("analytics parameters updated")
	})

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case <-ctx.Done():
			logger.Info("main context done")
		case sig := <-sigCh:
			logger.Info("received signal", slog.Any("signal", sig))
			cancel()
		}
	}()

	server := www.StartServer(db, coord, windows, cnfg.Api)
	coord.OnUpdate(func(map[string]coordinator.Snapshot) { server.NotifySnapshot() })
	server.Run(ctx)
}

func analyticsParams(cnfg *config.AppConfig) (coordinator.Params, error) {
	band, err := cnfg.Analytics.GetBand()
	if err != nil {
		return coordinator.Params{}, err
	}
	return coordinator.Params{
		HoursDuration:     cnfg.Analytics.GetHoursDuration(),
		BatteryEfficiency: cnfg.Analytics.GetBatteryEfficiency(),
		Band:              band,
	}, nil
}

func exitWithError(logger *slog.Logger, err error) {
	if err != nil {
		logger.Error("application shutting down with error", slog.Any("error", err))
	}
	time.Sleep(2 * time.Second)
	os.Exit(1)
}
