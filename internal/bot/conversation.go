package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"habit-tracker/internal/logger"
	"habit-tracker/internal/model"
	"habit-tracker/internal/service"
)

type conversationStage int

const (
	stageNone conversationStage = iota
	stageName
	stageCategory
	stageSchedule
	stageEmoji
	stageColor
)

type conversationState struct {
	stage conversationStage
	input service.TrackerInput
	// editID is set when the dialog rewrites an existing tracker. Every
	// step then offers to keep the current value.
	editID string
}

func (s *conversationState) editing() bool {
	return s.editID != ""
}

func (b *Bot) startNewTrackerConversation(ctx context.Context, msg *tgbotapi.Message) error {
	logger.Info("start new tracker conversation")
	b.clearConfirmation(msg.From.ID)
	state := &conversationState{stage: stageName}
	b.setConversation(msg.From.ID, state)
	return b.promptStage(ctx, msg.Chat.ID, state)
}

func (b *Bot) startEditTrackerConversation(ctx context.Context, chatID, userID int64, trackerID string) error {
	input, err := b.trackerSvc.Input(ctx, trackerID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return b.sendText(chatID, "Трекер не найден.")
		}
		return b.sendText(chatID, fmt.Sprintf("Ошибка: %s", escape(err.Error())))
	}
	logger.Info("start edit tracker conversation", "tracker", trackerID)
	b.clearConfirmation(userID)
	state := &conversationState{stage: stageName, input: input, editID: trackerID}
	b.setConversation(userID, state)
	return b.promptStage(ctx, chatID, state)
}

func (b *Bot) handleConversation(ctx context.Context, msg *tgbotapi.Message, state *conversationState) error {
	text := strings.TrimSpace(msg.Text)
	keep := state.editing() && isKeepInput(text)

	switch state.stage {
	case stageName:
		if !keep {
			if text == "" {
				return b.sendWithReplyMarkup(msg.Chat.ID, "Название не может быть пустым.", b.stageKeyboard(ctx, state))
			}
			state.input.Name = text
		}
		state.stage = stageCategory
	case stageCategory:
		if !keep {
			if text == "" {
				return b.sendWithReplyMarkup(msg.Chat.ID, "Категория не может быть пустой.", b.stageKeyboard(ctx, state))
			}
			state.input.Category = text
		}
		state.stage = stageSchedule
	case stageSchedule:
		if !keep {
			schedule, err := model.ParseSchedule(text)
			if err != nil {
				return b.sendWithReplyMarkup(msg.Chat.ID, "Не понял дни недели. Пример: <code>пн, ср, пт</code>.", b.stageKeyboard(ctx, state))
			}
			state.input.Schedule = schedule
		}
		state.stage = stageEmoji
	case stageEmoji:
		if !keep {
			if !model.ValidEmoji(text) {
				return b.sendWithReplyMarkup(msg.Chat.ID, "Выбери эмодзи с клавиатуры.", b.stageKeyboard(ctx, state))
			}
			state.input.Emoji = text
		}
		state.stage = stageColor
	case stageColor:
		if !keep {
			if !model.ValidColor(text) {
				return b.sendWithReplyMarkup(msg.Chat.ID, "Выбери цвет с клавиатуры.", b.stageKeyboard(ctx, state))
			}
			state.input.Color = text
		}
		b.clearConversation(msg.From.ID)
		return b.finishTrackerConversation(ctx, msg.Chat.ID, state)
	default:
		b.clearConversation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "Диалог сброшен. Попробуй ещё раз через /newtracker.")
	}
	return b.promptStage(ctx, msg.Chat.ID, state)
}

// promptStage asks for the value of the current step.
func (b *Bot) promptStage(ctx context.Context, chatID int64, state *conversationState) error {
	var text string
	switch state.stage {
	case stageName:
		if state.editing() {
			text = fmt.Sprintf("✏️ Редактируем трекер %s «%s».\n<b>Шаг 1:</b> новое название?",
				state.input.Emoji, escape(state.input.Name))
		} else {
			text = "🆕 Создаём новый трекер.\n<b>Шаг 1:</b> как его назвать?"
		}
	case stageCategory:
		text = "🏷 <b>Шаг 2:</b> выбери категорию или отправь новую."
		if state.editing() {
			text += currentValue(state.input.Category)
		}
	case stageSchedule:
		text = "📆 <b>Шаг 3:</b> в какие дни? Например <code>пн, ср, пт</code>, «Каждый день» или «Разово» для события на выбранную дату."
		if state.editing() {
			text += currentValue(scheduleLabel(state.input.Schedule, oneOffKey(b.cal, state.input)))
		}
	case stageEmoji:
		text = "😀 <b>Шаг 4:</b> выбери эмодзи."
		if state.editing() {
			text += currentValue(state.input.Emoji)
		}
	case stageColor:
		text = "🎨 <b>Шаг 5:</b> выбери цвет."
		if state.editing() {
			text += currentValue(state.input.Color)
		}
	default:
		return nil
	}
	return b.sendWithReplyMarkup(chatID, text, b.stageKeyboard(ctx, state))
}

func (b *Bot) stageKeyboard(ctx context.Context, state *conversationState) tgbotapi.ReplyKeyboardMarkup {
	var kb tgbotapi.ReplyKeyboardMarkup
	switch state.stage {
	case stageCategory:
		titles, err := b.categorySvc.Titles(ctx)
		if err != nil {
			logger.Warn("list categories", "err", err)
		}
		kb = categoryKeyboard(titles)
	case stageSchedule:
		kb = scheduleKeyboard()
	case stageEmoji:
		kb = emojiKeyboard()
	case stageColor:
		kb = colorKeyboard()
	default:
		kb = cancelKeyboard()
	}
	if state.editing() {
		kb = withKeepRow(kb)
	}
	return kb
}

func currentValue(v string) string {
	return fmt.Sprintf("\nСейчас: <b>%s</b>", escape(v))
}

func oneOffKey(cal model.Calendar, input service.TrackerInput) *string {
	if !input.Schedule.IsEmpty() || input.OneOffDate.IsZero() {
		return nil
	}
	day := cal.DayKey(input.OneOffDate)
	return &day
}

func (b *Bot) finishTrackerConversation(ctx context.Context, chatID int64, state *conversationState) error {
	var (
		tracker *model.Tracker
		err     error
	)
	if state.editing() {
		tracker, err = b.session.UpdateTracker(ctx, state.editID, state.input)
	} else {
		tracker, err = b.session.CreateTracker(ctx, state.input)
	}
	if err != nil {
		var verr *model.ValidationError
		switch {
		case errors.As(err, &verr):
			return b.sendText(chatID, fmt.Sprintf("Трекер не сохранён: %s", escape(verr.Error())))
		case errors.Is(err, model.ErrNotFound):
			return b.sendText(chatID, "Трекер уже удалён.")
		}
		return b.sendText(chatID, fmt.Sprintf("Не удалось сохранить трекер: %s", escape(err.Error())))
	}

	if err := b.sendTextWithRemove(chatID, savedSummary(tracker, state.input.Category)); err != nil {
		return err
	}
	return b.sendTrackerList(ctx, chatID)
}

func savedSummary(tracker *model.Tracker, category string) string {
	var summary strings.Builder
	summary.WriteString("✅ <b>Трекер сохранён</b>\n")
	summary.WriteString(fmt.Sprintf("• %s %s\n", tracker.Emoji, escape(tracker.Name)))
	summary.WriteString(fmt.Sprintf("• <b>Категория:</b> %s\n", escape(strings.TrimSpace(category))))
	summary.WriteString(fmt.Sprintf("• <b>Расписание:</b> %s\n", escape(scheduleLabel(tracker.Schedule, tracker.OneOffDay))))
	return strings.TrimSpace(summary.String())
}
