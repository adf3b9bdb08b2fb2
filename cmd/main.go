package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"signaltracker/src/connectors"
	"signaltracker/src/database"
	"signaltracker/src/engine"
	"signaltracker/src/executors"
	"signaltracker/src/repository"
)

var Version string

func main() {
	app := cli.NewApp()
	app.Name = "Signaltracker CMD"
	app.Usage = "The signaltracker command line interface"

	app.Commands = []cli.Command{
		checkerCMD,
		schedulerCMD,
	}

	if err := app.Run(os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var (
	checkerCMD = cli.Command{
		Name:        "checker",
		Usage:       "run one signal check",
		Action:      checkerAction,
		ArgsUsage:   "",
		Flags:       []cli.Flag{},
		Description: `Evaluate every watching stock once and exit`,
	}
	schedulerCMD = cli.Command{
		Name:        "scheduler",
		Usage:       "run the periodic signal checker",
		Action:      schedulerAction,
		ArgsUsage:   "",
		Flags:       []cli.Flag{},
		Description: `Run signal checks on the configured schedule until interrupted`,
	}
)

func checkerAction(_ *cli.Context) error {

	logrus.Info("Starting checker CMD")

	if err := database.InitMainDB(); err != nil {
		logrus.WithError(err).Error("Failed to connect to database")
		return err
	}

	quotes, err := connectors.NewQuoteSource(connectors.GetConfig())
	if err != nil {
		logrus.WithError(err).Error("Quote source not configured")
		return err
	}

	eng := engine.NewEngine(quotes, repository.NewTrackedStockRepository(), nil, nil)

	result, err := eng.EvaluateAll(context.Background())
	if err != nil {
		logrus.WithError(err).Error("Signal check failed")
		return err
	}

	logrus.WithFields(logrus.Fields{
		"total":   result.Total,
		"updated": result.Updated,
	}).Info("Signal check completed")

	return nil
}

func schedulerAction(_ *cli.Context) error {

	logrus.Info("Starting scheduler CMD")

	if err := database.InitMainDB(); err != nil {
		logrus.WithError(err).Error("Failed to connect to database")
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
		<-stop
		cancel()
	}()

	if err := executors.StartLoop(ctx); err != nil {
		logrus.WithError(err).Error("Scheduler stopped with error")
		return err
	}

	return nil
}
