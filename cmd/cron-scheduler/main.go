/*
Copyright (c) 2024 Diagrid Inc.
Licensed under the MIT License.
*/

package main

import (
	"fmt"
	"os"

	"github.com/dapr/kit/signals"
	"github.com/spf13/pflag"

	"github.com/diagridio/go-calendar-cron/internal/config"
	"github.com/diagridio/go-calendar-cron/internal/logging"
	"github.com/diagridio/go-calendar-cron/internal/service"
)

func main() {
	fs := pflag.NewFlagSet("cron-scheduler", pflag.ExitOnError)
	configPath := fs.String("config", config.DefaultPath, "Path of the YAML job file.")
	logLevel := fs.String("log-level", "info", "Minimum log level: debug, info, warn or error.")
	development := fs.Bool("development", false, "Use human readable development logging.")
	watch := fs.Bool("watch", true, "Restart the scheduler when the job file changes.")
	// ExitOnError handles parse failures.
	_ = fs.Parse(os.Args[1:])

	log, err := logging.New(logging.Options{
		Name:        "cron-scheduler",
		Level:       *logLevel,
		Development: *development,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx := signals.Context()

	svc := service.New(service.Options{
		Log:        log,
		ConfigPath: *configPath,
		Watch:      *watch,
	})

	log.Info("Starting scheduler", "config", *configPath, "watch", *watch)
	if err := svc.Run(ctx); err != nil {
		log.Error(err, "Scheduler failed")
		os.Exit(1)
	}
	log.Info("Scheduler stopped")
}
