package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"habit-tracker/internal/bot"
	"habit-tracker/internal/config"
	"habit-tracker/internal/logger"
	"habit-tracker/internal/model"
	"habit-tracker/internal/repository"
	"habit-tracker/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config", "err", err)
	}
	if err := logger.Init(logger.Config{Debug: cfg.Debug, Dir: cfg.LogDir, Prefix: "trackerbot"}); err != nil {
		logger.Fatal("logger", "err", err)
	}
	if err := cfg.RequireBot(); err != nil {
		logger.Fatal("config", "err", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg)
	stop()
	if err != nil {
		logger.Fatal("tracker bot", "err", err)
	}
	logger.Info("shutdown complete")
}

// run owns every resource that needs closing, so its defers complete before
// main decides how to exit.
func run(ctx context.Context, cfg config.Config) error {
	cal, err := model.NewCalendar(cfg.Timezone)
	if err != nil {
		return fmt.Errorf("timezone: %w", err)
	}

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	clock := service.SystemClock{}
	events := repository.NewEvents()
	categoryRepo := repository.NewCategoryRepository(db, events)
	trackerRepo := repository.NewTrackerRepository(db, events, cal)
	recordRepo := repository.NewRecordRepository(db, events, cal)

	categorySvc := service.NewCategoryService(categoryRepo)
	trackerSvc := service.NewTrackerService(trackerRepo, cal)
	completionSvc := service.NewCompletionService(recordRepo, clock, cal)
	pipeline := service.NewPipeline(trackerRepo, recordRepo, clock, cal)
	summarySvc := service.NewSummaryService(pipeline, completionSvc)
	session := service.NewSession(pipeline, trackerSvc, completionSvc, events, clock, cal)
	defer session.Close()

	telegramBot, err := bot.New(cfg.TelegramToken, cfg.OwnerID, bot.Deps{
		Session:    session,
		Trackers:   trackerSvc,
		Categories: categorySvc,
		Summary:    summarySvc,
		Clock:      clock,
		Calendar:   cal,
	})
	if err != nil {
		return fmt.Errorf("bot: %w", err)
	}

	scheduler := service.NewSchedulerService(cal.Loc)
	if _, err := scheduler.ScheduleMidnight(func() {
		session.RollOver(clock.Now())
	}); err != nil {
		return fmt.Errorf("schedule rollover: %w", err)
	}
	if _, err := scheduler.ScheduleDaily(cfg.DigestTime, func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := telegramBot.SendDailySummary(jobCtx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("daily summary", "err", err)
		}
	}); err != nil {
		return fmt.Errorf("schedule digest: %w", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	logger.Info("tracker bot started", "jobs", scheduler.Len(), "timezone", cal.Loc.String())
	if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("bot stopped: %w", err)
	}
	return nil
}
