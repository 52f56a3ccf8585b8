package bot

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"habit-tracker/internal/model"
)

const (
	btnConfirm          = "✅ Подтвердить"
	btnCancel           = "↩️ Отмена"
	btnCancelDialog     = "⏪ Отменить ввод"
	btnKeep             = "➡️ Оставить как есть"
	btnEveryDay         = "Каждый день"
	btnOnce             = "Разово"
	menuLabelNewTracker = "➕ Новый трекер"
	menuLabelTrackers   = "📋 Трекеры"
	menuLabelStats      = "📊 Статистика"
	menuLabelHelp       = "ℹ️ Помощь"
)

func confirmKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnConfirm),
			tgbotapi.NewKeyboardButton(btnCancel),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelNewTracker),
			tgbotapi.NewKeyboardButton(menuLabelTrackers),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelStats),
			tgbotapi.NewKeyboardButton(menuLabelHelp),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

func cancelKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnCancelDialog),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

// categoryKeyboard offers existing categories two per row.
func categoryKeyboard(titles []string) tgbotapi.ReplyKeyboardMarkup {
	labels := make([]string, 0, len(titles))
	for _, t := range titles {
		labels = append(labels, strings.TrimSpace(t))
	}
	return gridKeyboard(labels, 2)
}

func scheduleKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnEveryDay),
			tgbotapi.NewKeyboardButton(btnOnce),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("пн, вт, ср, чт, пт"),
			tgbotapi.NewKeyboardButton("сб, вс"),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnCancelDialog),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func emojiKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return gridKeyboard(model.Emojis, 6)
}

func colorKeyboard() tgbotapi.ReplyKeyboardMarkup {
	names := make([]string, 0, len(model.Colors))
	for _, c := range model.Colors {
		names = append(names, c.Name)
	}
	return gridKeyboard(names, 3)
}

// gridKeyboard lays labels out in rows of perRow and appends the cancel
// button.
func gridKeyboard(labels []string, perRow int) tgbotapi.ReplyKeyboardMarkup {
	var rows [][]tgbotapi.KeyboardButton
	var row []tgbotapi.KeyboardButton
	for _, label := range labels {
		if label == "" {
			continue
		}
		row = append(row, tgbotapi.NewKeyboardButton(label))
		if len(row) == perRow {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnCancelDialog)))

	kb := tgbotapi.NewReplyKeyboard(rows...)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

// withKeepRow puts the keep button above the rows of kb.
func withKeepRow(kb tgbotapi.ReplyKeyboardMarkup) tgbotapi.ReplyKeyboardMarkup {
	rows := make([][]tgbotapi.KeyboardButton, 0, len(kb.Keyboard)+1)
	rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnKeep)))
	kb.Keyboard = append(rows, kb.Keyboard...)
	return kb
}

func isConfirmInput(text string) bool {
	lower := strings.ToLower(strings.TrimSpace(text))
	return lower == strings.ToLower(btnConfirm) || lower == "да" || lower == "yes"
}

func isCancelInput(text string) bool {
	lower := strings.ToLower(strings.TrimSpace(text))
	return lower == strings.ToLower(btnCancel) || lower == "нет" || lower == "no"
}

func isKeepInput(text string) bool {
	return strings.EqualFold(strings.TrimSpace(text), btnKeep)
}

func isCancelDialogInput(text string) bool {
	return strings.EqualFold(strings.TrimSpace(text), btnCancelDialog)
}
