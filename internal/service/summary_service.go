package service

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"habit-tracker/internal/model"
)

// SummaryService builds the daily digest sent by the bot.
type SummaryService struct {
	pipeline   *Pipeline
	completion *CompletionService
}

func NewSummaryService(pipeline *Pipeline, completion *CompletionService) *SummaryService {
	return &SummaryService{pipeline: pipeline, completion: completion}
}

// DailySummary lists the trackers due on now's day, open ones first.
func (s *SummaryService) DailySummary(ctx context.Context, now time.Time) (string, error) {
	res, err := s.pipeline.Run(ctx, Query{Date: now, Filter: model.FilterAll})
	if err != nil {
		return "", err
	}
	stats, err := s.completion.Statistics(ctx)
	if err != nil {
		return "", err
	}

	var builder strings.Builder
	builder.WriteString("📋 <b>Трекеры на сегодня</b>\n")
	builder.WriteString(fmt.Sprintf("🗓 %s\n\n", res.Date.Format("02.01.2006")))

	total, done := 0, 0
	for _, cat := range res.Categories {
		builder.WriteString(fmt.Sprintf("<b>%s</b>\n", html.EscapeString(cat.Title)))
		for _, tr := range openFirst(cat.Trackers) {
			total++
			mark := "⬜"
			if tr.CompletedOnDate {
				mark = "✅"
				done++
			}
			builder.WriteString(fmt.Sprintf("%s %s %s · %s\n", mark, tr.Emoji, html.EscapeString(tr.Name), DaysLabel(tr.CompletedDays)))
		}
		builder.WriteByte('\n')
	}

	if total == 0 {
		builder.WriteString("— на сегодня ничего не запланировано\n")
	} else {
		builder.WriteString(fmt.Sprintf("Выполнено сегодня: %d из %d\n", done, total))
	}
	if stats.HasData() {
		builder.WriteString(fmt.Sprintf("Всего отметок: %d", stats.TotalCompleted))
	}

	return strings.TrimSpace(builder.String()), nil
}

func openFirst(trackers []TrackerView) []TrackerView {
	out := make([]TrackerView, 0, len(trackers))
	for _, t := range trackers {
		if !t.CompletedOnDate {
			out = append(out, t)
		}
	}
	for _, t := range trackers {
		if t.CompletedOnDate {
			out = append(out, t)
		}
	}
	return out
}

// DaysLabel renders a day count with the Russian plural form.
func DaysLabel(n int) string {
	mod10, mod100 := n%10, n%100
	switch {
	case mod10 == 1 && mod100 != 11:
		return fmt.Sprintf("%d день", n)
	case mod10 >= 2 && mod10 <= 4 && (mod100 < 12 || mod100 > 14):
		return fmt.Sprintf("%d дня", n)
	default:
		return fmt.Sprintf("%d дней", n)
	}
}
