package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"timetrack/internal/cli"
	applog "timetrack/internal/log"
)

var CLI struct {
	User  int64  `help:"User id to act as." env:"TIMETRACK_USER" default:"1"`
	Name  string `help:"Display name registered for the user." env:"TIMETRACK_USER_NAME"`
	Debug bool   `help:"Log at debug level."`

	Migrate MigrateCmd `cmd:"" help:"Create or upgrade the SQLite schema."`
	Add     AddCmd     `cmd:"" help:"Log an activity."`
	Report  struct {
		Day   ReportDayCmd    `cmd:"" help:"Breakdown of one day."`
		Week  ReportPeriodCmd `cmd:"" help:"Trailing seven days."`
		Stats ReportPeriodCmd `cmd:"" help:"Trailing thirty days."`
		Month ReportPeriodCmd `cmd:"" help:"Current month to date."`
	} `cmd:"" help:"Print reports."`
	SyncRetry SyncRetryCmd `cmd:"" name:"sync-retry" help:"Requeue entries whose Sheets sync failed."`
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name("timetrack-cli"),
		kong.Description("Log activities and read reports from the terminal."),
		kong.UsageOnError(),
	)

	cli.LoadEnvFile()
	level := "warn"
	if CLI.Debug {
		level = "debug"
	}
	logger := cli.SetupLogger(level, applog.ComponentCLI)
	cfg := cli.LoadAndValidateConfig(logger)

	appCtx := &Context{
		Config:  cfg,
		Logger:  logger,
		User:    CLI.User,
		Name:    CLI.Name,
		Out:     os.Stdout,
		Command: kctx.Command(),
	}
	if err := kctx.Run(appCtx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
