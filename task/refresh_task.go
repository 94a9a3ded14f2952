package task

import (
	"context"
	"log/slog"
	"time"

	"github.com/angas/tibberwatch-go/coordinator"
)

// NewRefreshTask runs the first refresh immediately so a bad api token
// or unreachable upstream fails at startup instead of silently serving
// nothing until the first scheduled run.
func NewRefreshTask(logger *slog.Logger, coord *coordinator.Coordinator) (func(), error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := coord.Refresh(ctx); err != nil {
		return nil, err
	}

	return func() {
		logger.Debug("running refresh task...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := coord.Refresh(ctx); err != nil {
			logger.Error("refresh task error", slog.Any("error", err))
			return
		}

		logger.Debug("refresh task done")
	}, nil
}
