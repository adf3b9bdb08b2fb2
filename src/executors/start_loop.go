package executors

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	logger "github.com/sirupsen/logrus"

	"signaltracker/src/connectors"
	"signaltracker/src/engine"
	"signaltracker/src/repository"
)

// StartLoop runs the periodic signal check until ctx is done. Overlapping
// runs with a manual "check now" are allowed; re-evaluating with a fresh
// price is idempotent, so the race is last-write-wins.
func StartLoop(ctx context.Context) error {
	config := GetConfig()

	quotes, err := connectors.NewQuoteSource(connectors.GetConfig())
	if err != nil {
		logger.WithError(err).Error("Quote source not configured")
		return err
	}

	eng := engine.NewEngine(quotes, repository.NewTrackedStockRepository(), nil, nil)

	c := cron.New()
	_, err = c.AddFunc(config.CheckSchedule, func() {
		logger.Info("loop tick")

		result, err := eng.EvaluateAll(ctx)
		if err != nil {
			logger.WithError(err).Error("scheduled signal check failed")
			return
		}

		logger.WithFields(map[string]interface{}{
			"total":   result.Total,
			"updated": result.Updated,
		}).Info("scheduled signal check done")
	})
	if err != nil {
		return fmt.Errorf("invalid CHECK_SCHEDULE %q: %w", config.CheckSchedule, err)
	}

	logger.Infof("scheduler started, schedule=%s", config.CheckSchedule)
	c.Start()

	<-ctx.Done()
	logger.Println("loop stopped")

	stopCtx := c.Stop()
	<-stopCtx.Done()

	return nil
}
