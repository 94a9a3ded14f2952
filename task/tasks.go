package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/angas/tibberwatch-go/config"
	"github.com/angas/tibberwatch-go/coordinator"
	"github.com/angas/tibberwatch-go/database"
	"github.com/robfig/cron/v3"
)

type Tasks struct {
	cron            *cron.Cron
	cnfg            *config.AppConfig
	RefreshTask     func()
	MaintenanceTask func()
}

func NewTasks(db *database.Database, coord *coordinator.Coordinator, cnfg *config.AppConfig) (*Tasks, error) {
	logger := slog.Default().With("module", "tasks")

	refresh, err := NewRefreshTask(logger.With(slog.String("task", "refresh")), coord)
	if err != nil {
		return nil, err
	}

	return &Tasks{
		cron:            cron.New(),
		cnfg:            cnfg,
		RefreshTask:     refresh,
		MaintenanceTask: NewMaintenanceTask(logger.With(slog.String("task", "maintenance")), db, cnfg),
	}, nil
}

func (t *Tasks) Run() {
	interval := t.cnfg.Tibber.GetUpdateIntervalMinutes()
	_, err := t.cron.AddFunc(fmt.Sprintf("@every %dm", interval), t.RefreshTask)
	if err != nil {
		panic(err)
	}
	// The upstream "current" price pointer moves on the hour, so run
	// again shortly after every hour boundary regardless of interval.
	_, err = t.cron.AddFunc("2 * * * *", t.RefreshTask)
	if err != nil {
		panic(err)
	}
	_, err = t.cron.AddFunc("30 2 * * *", t.MaintenanceTask)
	if err != nil {
		panic(err)
	}
	t.cron.Start()
}

func (t *Tasks) Stop() context.Context {
	return t.cron.Stop()
}
