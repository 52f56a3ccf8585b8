package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"habit-tracker/internal/cli"
	"habit-tracker/internal/config"
	"habit-tracker/internal/logger"
	"habit-tracker/internal/model"
	"habit-tracker/internal/repository"
	"habit-tracker/internal/service"
)

var CLI struct {
	Version kong.VersionFlag
	DB      string `help:"SQLite database path (overrides DATABASE_URL)." default:""`

	List   cli.ListCmd   `cmd:"" help:"Show trackers for a day." default:"1"`
	Add    cli.AddCmd    `cmd:"" help:"Add a new tracker."`
	Edit   cli.EditCmd   `cmd:"" help:"Edit an existing tracker."`
	Delete cli.DeleteCmd `cmd:"" help:"Delete a tracker and its history."`
	Done   cli.DoneCmd   `cmd:"" help:"Mark a tracker as done for a day."`
	Undo   cli.UndoCmd   `cmd:"" help:"Remove the mark of a tracker for a day."`
	Stats  cli.StatsCmd  `cmd:"" help:"Show completion statistics."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("trackerctl"),
		kong.Description("Habit tracker command line"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": "v0.1.0"},
	)
	os.Exit(run(ctx))
}

// run wires the services and executes the parsed command. Deferred cleanup
// happens before main exits with the returned code.
func run(ctx *kong.Context) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if CLI.DB != "" {
		cfg.DatabaseURL = CLI.DB
	}

	if err := logger.Init(logger.Config{Debug: cfg.Debug, Dir: cfg.LogDir, Prefix: "trackerctl", Quiet: true}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: logging disabled: %v\n", err)
	}

	cal, err := model.NewCalendar(cfg.Timezone)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	clock := service.SystemClock{}
	events := repository.NewEvents()
	trackerRepo := repository.NewTrackerRepository(db, events, cal)
	recordRepo := repository.NewRecordRepository(db, events, cal)

	trackerSvc := service.NewTrackerService(trackerRepo, cal)
	completionSvc := service.NewCompletionService(recordRepo, clock, cal)
	pipeline := service.NewPipeline(trackerRepo, recordRepo, clock, cal)
	session := service.NewSession(pipeline, trackerSvc, completionSvc, events, clock, cal)
	defer session.Close()

	appCtx := &cli.Context{
		Ctx:        context.Background(),
		Session:    session,
		Trackers:   trackerSvc,
		Completion: completionSvc,
		Clock:      clock,
		Calendar:   cal,
		Out:        os.Stdout,
	}

	if err := ctx.Run(appCtx); err != nil {
		logger.Error("command failed", "cmd", ctx.Command(), "err", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
