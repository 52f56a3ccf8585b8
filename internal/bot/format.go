package bot

import (
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"habit-tracker/internal/model"
	"habit-tracker/internal/service"
)

const (
	iconDone = "✅"
	iconOpen = "⬜"
)

func escape(s string) string {
	return html.EscapeString(s)
}

// renderView prints the projection as a numbered list. The numbers are what
// /delete and /edit accept.
func renderView(v service.View) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📋 <b>Трекеры</b> · %s\n", formatDate(v.Date)))
	b.WriteString(fmt.Sprintf("Фильтр: %s\n", escape(v.Filter.Title())))
	if v.Search != "" {
		b.WriteString(fmt.Sprintf("Поиск: «%s»\n", escape(v.Search)))
	}
	b.WriteByte('\n')

	if v.Empty != service.EmptyNone {
		b.WriteString(v.Empty.Message())
		return b.String()
	}

	n := 0
	for _, cat := range v.Categories {
		b.WriteString(fmt.Sprintf("<b>%s</b>\n", escape(cat.Title)))
		for _, tr := range cat.Trackers {
			n++
			mark := iconOpen
			if tr.CompletedOnDate {
				mark = iconDone
			}
			b.WriteString(fmt.Sprintf("%d. %s %s %s · %s\n", n, mark, tr.Emoji, escape(tr.Name), service.DaysLabel(tr.CompletedDays)))
			b.WriteString(fmt.Sprintf("   %s\n", escape(scheduleLabel(tr.Schedule, tr.OneOffDay))))
		}
		b.WriteByte('\n')
	}
	return strings.TrimSpace(b.String())
}

// viewKeyboard builds one row per tracker: toggle, delete and edit. ok is
// false when there is nothing to show.
func viewKeyboard(v service.View) (tgbotapi.InlineKeyboardMarkup, bool) {
	var rows [][]tgbotapi.InlineKeyboardButton
	for i, tr := range v.Trackers() {
		mark := iconOpen
		if tr.CompletedOnDate {
			mark = iconDone
		}
		label := fmt.Sprintf("%s %d · %s %s", mark, i+1, tr.Emoji, shortTitle(tr.Name, 20))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, cbTogglePrefix+tr.ID),
			tgbotapi.NewInlineKeyboardButtonData("🗑", cbDeletePrefix+tr.ID),
			tgbotapi.NewInlineKeyboardButtonData("✏️", cbEditPrefix+tr.ID),
		))
	}
	if len(rows) == 0 {
		return tgbotapi.InlineKeyboardMarkup{}, false
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...), true
}

func scheduleLabel(s model.Schedule, oneOffDay *string) string {
	if s.IsEmpty() {
		if oneOffDay != nil {
			return "Разово: " + *oneOffDay
		}
		return "Разово"
	}
	return s.String()
}

func toggleNotice(done bool, err error) string {
	switch {
	case errors.Is(err, model.ErrFutureDate):
		return "Нельзя отметить трекер для будущей даты"
	case errors.Is(err, model.ErrNotFound):
		return "Трекер уже удалён"
	case err != nil:
		return "Не удалось сохранить отметку"
	case done:
		return "Выполнено"
	default:
		return "Отметка снята"
	}
}

func formatStats(stats service.Stats) string {
	if !stats.HasData() {
		return "📊 Анализировать пока нечего"
	}
	return fmt.Sprintf("📊 <b>Статистика</b>\nТрекеров завершено: %d\nВсего трекеров: %d", stats.TotalCompleted, stats.Trackers)
}

// parseDateArg accepts 2006-01-02 and 02.01.2006.
func parseDateArg(s string, cal model.Calendar) (time.Time, error) {
	s = strings.TrimSpace(s)
	if d, err := cal.ParseDay(s); err == nil {
		return d, nil
	}
	loc := cal.Loc
	if loc == nil {
		loc = time.Local
	}
	d, err := time.ParseInLocation("02.01.2006", s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return d, nil
}

// trackerAt resolves a 1-based list number from renderView.
func trackerAt(v service.View, arg string) (service.TrackerView, bool) {
	n, err := strconv.Atoi(strings.TrimPrefix(strings.TrimSpace(arg), "#"))
	if err != nil || n < 1 {
		return service.TrackerView{}, false
	}
	trackers := v.Trackers()
	if n > len(trackers) {
		return service.TrackerView{}, false
	}
	return trackers[n-1], true
}

func shortTitle(title string, maxLen int) string {
	clean := strings.TrimSpace(title)
	runes := []rune(clean)
	if len(runes) <= maxLen {
		return clean
	}
	if maxLen <= 1 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-1]) + "…"
}
