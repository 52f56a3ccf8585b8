package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"habit-tracker/internal/logger"
	"habit-tracker/internal/model"
	"habit-tracker/internal/service"
)

const (
	cbTogglePrefix = "toggle:"
	cbDeletePrefix = "delete:"
	cbEditPrefix   = "edit:"
)

// Bot adapts the tracker engine to a private Telegram chat with its owner.
type Bot struct {
	api         *tgbotapi.BotAPI
	ownerID     int64
	session     *service.Session
	trackerSvc  *service.TrackerService
	categorySvc *service.CategoryService
	summarySvc  *service.SummaryService
	clock       service.Clock
	cal         model.Calendar

	conversations map[int64]*conversationState
	confirmations map[int64]string
	mu            sync.Mutex
}

// Deps groups the engine pieces the bot talks to.
type Deps struct {
	Session    *service.Session
	Trackers   *service.TrackerService
	Categories *service.CategoryService
	Summary    *service.SummaryService
	Clock      service.Clock
	Calendar   model.Calendar
}

func New(token string, ownerID int64, deps Deps) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	logger.Info("bot authorized", "account", api.Self.UserName, "owner", ownerID)

	clock := deps.Clock
	if clock == nil {
		clock = service.SystemClock{}
	}

	return &Bot{
		api:           api,
		ownerID:       ownerID,
		session:       deps.Session,
		trackerSvc:    deps.Trackers,
		categorySvc:   deps.Categories,
		summarySvc:    deps.Summary,
		clock:         clock,
		cal:           deps.Calendar,
		conversations: make(map[int64]*conversationState),
		confirmations: make(map[int64]string),
	}, nil
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	logger.Info("start polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		switch {
		case update.CallbackQuery != nil:
			if !b.isOwner(update.CallbackQuery.From) {
				continue
			}
			if err := b.handleCallback(ctx, update.CallbackQuery); err != nil {
				logger.Error("handle callback", "err", err)
			}
		case update.Message != nil:
			if update.Message.Chat == nil || !update.Message.Chat.IsPrivate() {
				continue
			}
			if !b.isOwner(update.Message.From) {
				continue
			}
			if err := b.handleMessage(ctx, update.Message); err != nil {
				logger.Error("handle message", "err", err)
			}
		}
	}

	return ctx.Err()
}

func (b *Bot) isOwner(from *tgbotapi.User) bool {
	if from == nil {
		return false
	}
	if from.ID != b.ownerID {
		logger.Warn("ignoring update from stranger", "user", from.ID, "username", from.UserName)
		return false
	}
	return true
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if !msg.IsCommand() && isCancelDialogInput(msg.Text) {
		b.clearConversation(msg.From.ID)
		b.clearConfirmation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "⏪ Ввод отменён.")
	}

	if !msg.IsCommand() {
		if handled, err := b.handleMenuAlias(ctx, msg); handled {
			return err
		}
	}

	if msg.IsCommand() {
		logger.Info("command", "cmd", msg.Command(), "args", msg.CommandArguments())
		return b.handleCommand(ctx, msg)
	}

	if pending, ok := b.getConfirmation(msg.From.ID); ok {
		return b.handleConfirmationResponse(ctx, msg, pending)
	}

	if state := b.getConversation(msg.From.ID); state != nil {
		logger.Debug("conversation step", "stage", state.stage)
		return b.handleConversation(ctx, msg, state)
	}

	return b.sendText(msg.Chat.ID, "Не понял сообщение. Набери /trackers, чтобы увидеть трекеры, или /help для списка команд.")
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	args := strings.TrimSpace(msg.CommandArguments())
	switch msg.Command() {
	case "start":
		return b.handleStart(msg)
	case "help":
		return b.sendText(msg.Chat.ID, helpText)
	case "trackers":
		return b.sendTrackerList(ctx, msg.Chat.ID)
	case "date":
		return b.handleDate(ctx, msg.Chat.ID, args)
	case "today":
		b.session.SetSelectedDate(b.clock.Now())
		return b.sendTrackerList(ctx, msg.Chat.ID)
	case "filter":
		return b.handleFilter(ctx, msg.Chat.ID, args)
	case "search":
		b.session.SetSearchQuery(args)
		return b.sendTrackerList(ctx, msg.Chat.ID)
	case "newtracker":
		return b.startNewTrackerConversation(ctx, msg)
	case "delete":
		return b.handleDelete(ctx, msg, args)
	case "edit":
		return b.handleEdit(ctx, msg, args)
	case "stats":
		return b.handleStats(ctx, msg.Chat.ID)
	case "digest":
		return b.sendDigest(ctx, msg.Chat.ID)
	case "cancel":
		b.clearConversation(msg.From.ID)
		b.clearConfirmation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "⏪ Ввод отменён.")
	default:
		return b.sendText(msg.Chat.ID, "Команда не поддерживается. Загляни в /help.")
	}
}

const helpText = "ℹ️ <b>Подсказки</b>\n" +
	"• /trackers — трекеры на выбранную дату, отметка по кнопке\n" +
	"• /date 2024-03-06 — выбрать дату\n" +
	"• /today — вернуться к сегодняшнему дню\n" +
	"• /filter all|today|completed|notcompleted — фильтр\n" +
	"• /search текст — поиск по названию (пустой запрос сбрасывает)\n" +
	"• /newtracker — создать привычку или нерегулярное событие\n" +
	"• /edit &lt;номер&gt; — изменить трекер по номеру из списка\n" +
	"• /delete &lt;номер&gt; — удалить трекер по номеру из списка\n" +
	"• /stats — статистика\n" +
	"• /digest — сводка за сегодня\n" +
	"• /cancel — отменить текущий ввод"

func (b *Bot) handleStart(msg *tgbotapi.Message) error {
	name := strings.TrimSpace(msg.From.FirstName)
	if name == "" {
		name = "друг"
	}
	text := fmt.Sprintf("👋 Привет, %s!\n<b>Я помогу отслеживать привычки.</b>\n\n%s", escape(name), helpText)
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleDate(ctx context.Context, chatID int64, args string) error {
	if args == "" {
		date, _, _ := b.session.State()
		return b.sendText(chatID, fmt.Sprintf("Выбрана дата %s. Укажи новую: /date 2024-03-06", formatDate(date)))
	}
	date, err := parseDateArg(args, b.cal)
	if err != nil {
		return b.sendText(chatID, "Не могу распознать дату. Используй формат <code>2024-03-06</code> или <code>06.03.2024</code>.")
	}
	if reset := b.session.SetSelectedDate(date); reset {
		if err := b.sendText(chatID, "Фильтр «"+model.FilterToday.Title()+"» сброшен: выбрана другая дата."); err != nil {
			return err
		}
	}
	return b.sendTrackerList(ctx, chatID)
}

func (b *Bot) handleFilter(ctx context.Context, chatID int64, args string) error {
	if args == "" {
		_, current, _ := b.session.State()
		var builder strings.Builder
		builder.WriteString(fmt.Sprintf("Текущий фильтр: <b>%s</b>\n", escape(current.Title())))
		for _, f := range model.FilterTypes {
			builder.WriteString(fmt.Sprintf("• /filter %s — %s\n", f, escape(f.Title())))
		}
		return b.sendText(chatID, strings.TrimSpace(builder.String()))
	}
	f, err := model.ParseFilterType(args)
	if err != nil {
		return b.sendText(chatID, "Неизвестный фильтр. Варианты: all, today, completed, notcompleted.")
	}
	if err := b.session.SetFilter(f); err != nil {
		return b.sendText(chatID, fmt.Sprintf("Ошибка: %s", escape(err.Error())))
	}
	return b.sendTrackerList(ctx, chatID)
}

func (b *Bot) handleStats(ctx context.Context, chatID int64) error {
	stats, err := b.session.Statistics(ctx)
	if err != nil {
		return b.sendText(chatID, fmt.Sprintf("Не удалось получить статистику: %s", escape(err.Error())))
	}
	return b.sendText(chatID, formatStats(stats))
}

// SendDailySummary sends today's digest to the owner.
func (b *Bot) SendDailySummary(ctx context.Context) error {
	return b.sendDigest(ctx, b.ownerID)
}

func (b *Bot) sendDigest(ctx context.Context, chatID int64) error {
	text, err := b.summarySvc.DailySummary(ctx, b.clock.Now())
	if err != nil {
		return b.sendText(chatID, fmt.Sprintf("Не удалось сформировать сводку: %s", escape(err.Error())))
	}
	return b.sendText(chatID, text)
}

func (b *Bot) sendTrackerList(ctx context.Context, chatID int64) error {
	view, err := b.session.View(ctx)
	if err != nil {
		logger.Warn("showing last known trackers", "err", err)
	}
	msg := tgbotapi.NewMessage(chatID, renderView(view))
	msg.ParseMode = tgbotapi.ModeHTML
	if markup, ok := viewKeyboard(view); ok {
		msg.ReplyMarkup = markup
	} else {
		msg.ReplyMarkup = mainMenuKeyboard()
	}
	_, err = b.api.Send(msg)
	return err
}

// refreshTrackerList rewrites the list message a button was pressed on.
func (b *Bot) refreshTrackerList(ctx context.Context, chatID int64, messageID int) error {
	view, err := b.session.View(ctx)
	if err != nil {
		logger.Warn("showing last known trackers", "err", err)
	}
	edit := tgbotapi.NewEditMessageText(chatID, messageID, renderView(view))
	edit.ParseMode = tgbotapi.ModeHTML
	if markup, ok := viewKeyboard(view); ok {
		edit.ReplyMarkup = &markup
	}
	_, err = b.api.Send(edit)
	return err
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb.Message == nil {
		return nil
	}
	chatID := cb.Message.Chat.ID
	data := cb.Data

	switch {
	case strings.HasPrefix(data, cbTogglePrefix):
		id := strings.TrimPrefix(data, cbTogglePrefix)
		logger.Info("callback toggle", "tracker", id)
		done, err := b.session.ToggleCompletion(ctx, id)
		b.ackCallback(cb.ID, toggleNotice(done, err))
		if err != nil && !errors.Is(err, model.ErrFutureDate) && !errors.Is(err, model.ErrNotFound) {
			return err
		}
		return b.refreshTrackerList(ctx, chatID, cb.Message.MessageID)
	case strings.HasPrefix(data, cbDeletePrefix):
		id := strings.TrimPrefix(data, cbDeletePrefix)
		logger.Info("callback delete request", "tracker", id)
		b.ackCallback(cb.ID, "")
		return b.askDeleteConfirmation(ctx, chatID, cb.From.ID, id)
	case strings.HasPrefix(data, cbEditPrefix):
		id := strings.TrimPrefix(data, cbEditPrefix)
		logger.Info("callback edit", "tracker", id)
		b.ackCallback(cb.ID, "")
		return b.startEditTrackerConversation(ctx, chatID, cb.From.ID, id)
	default:
		b.ackCallback(cb.ID, "")
		return nil
	}
}

func (b *Bot) ackCallback(id, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(id, text)); err != nil {
		logger.Warn("callback ack", "err", err)
	}
}

func (b *Bot) handleDelete(ctx context.Context, msg *tgbotapi.Message, args string) error {
	if args == "" {
		return b.sendText(msg.Chat.ID, "Укажи номер трекера из списка: /delete 2")
	}
	tracker, ok, err := b.listedTracker(ctx, msg.Chat.ID, args)
	if !ok {
		return err
	}
	return b.askDeleteConfirmation(ctx, msg.Chat.ID, msg.From.ID, tracker.ID)
}

func (b *Bot) handleEdit(ctx context.Context, msg *tgbotapi.Message, args string) error {
	if args == "" {
		return b.sendText(msg.Chat.ID, "Укажи номер трекера из списка: /edit 2")
	}
	tracker, ok, err := b.listedTracker(ctx, msg.Chat.ID, args)
	if !ok {
		return err
	}
	return b.startEditTrackerConversation(ctx, msg.Chat.ID, msg.From.ID, tracker.ID)
}

// listedTracker resolves a list number against the current view. When ok is
// false the user has already been told why.
func (b *Bot) listedTracker(ctx context.Context, chatID int64, arg string) (service.TrackerView, bool, error) {
	view, err := b.session.View(ctx)
	if err != nil {
		return service.TrackerView{}, false, b.sendText(chatID, fmt.Sprintf("Ошибка: %s", escape(err.Error())))
	}
	tracker, ok := trackerAt(view, arg)
	if !ok {
		return service.TrackerView{}, false, b.sendText(chatID, "Нет трекера с таким номером. Посмотри список через /trackers.")
	}
	return tracker, true, nil
}

func (b *Bot) askDeleteConfirmation(ctx context.Context, chatID, userID int64, trackerID string) error {
	tracker, err := b.trackerSvc.Get(ctx, trackerID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return b.sendText(chatID, "Трекер не найден.")
		}
		return err
	}
	b.setConfirmation(userID, tracker.ID)
	text := fmt.Sprintf("Удалить трекер %s «%s» вместе с историей отметок?", tracker.Emoji, escape(tracker.Name))
	return b.sendWithReplyMarkup(chatID, text, confirmKeyboard())
}

func (b *Bot) handleConfirmationResponse(ctx context.Context, msg *tgbotapi.Message, trackerID string) error {
	text := strings.TrimSpace(msg.Text)
	switch {
	case isConfirmInput(text):
		b.clearConfirmation(msg.From.ID)
		return b.deleteTrackerAndRefresh(ctx, msg.Chat.ID, trackerID)
	case isCancelInput(text):
		b.clearConfirmation(msg.From.ID)
		return b.sendMenuPlaceholder(msg.Chat.ID)
	default:
		return b.sendWithReplyMarkup(msg.Chat.ID, "Подтверди или отмени удаление трекера.", confirmKeyboard())
	}
}

func (b *Bot) deleteTrackerAndRefresh(ctx context.Context, chatID int64, trackerID string) error {
	tracker, err := b.trackerSvc.Get(ctx, trackerID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return b.sendTextWithRemove(chatID, "Трекер не найден или уже удалён.")
		}
		return b.sendTextWithRemove(chatID, fmt.Sprintf("Ошибка: %s", escape(err.Error())))
	}
	if err := b.session.DeleteTracker(ctx, trackerID); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return b.sendTextWithRemove(chatID, "Трекер не найден или уже удалён.")
		}
		return b.sendTextWithRemove(chatID, fmt.Sprintf("Ошибка: %s", escape(err.Error())))
	}
	if err := b.sendTextWithRemove(chatID, fmt.Sprintf("🗑 Трекер «%s» удалён.", escape(tracker.Name))); err != nil {
		return err
	}
	return b.sendTrackerList(ctx, chatID)
}

func (b *Bot) handleMenuAlias(ctx context.Context, msg *tgbotapi.Message) (bool, error) {
	text := strings.TrimSpace(strings.ToLower(msg.Text))
	switch text {
	case strings.ToLower(menuLabelNewTracker):
		return true, b.startNewTrackerConversation(ctx, msg)
	case strings.ToLower(menuLabelTrackers):
		return true, b.sendTrackerList(ctx, msg.Chat.ID)
	case strings.ToLower(menuLabelStats):
		return true, b.handleStats(ctx, msg.Chat.ID)
	case strings.ToLower(menuLabelHelp):
		return true, b.sendText(msg.Chat.ID, helpText)
	default:
		return false, nil
	}
}

func (b *Bot) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = mainMenuKeyboard()
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) sendTextWithRemove(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) sendWithReplyMarkup(chatID int64, text string, markup interface{}) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = markup
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) sendMenuPlaceholder(chatID int64) error {
	return b.sendText(chatID, "🔹 Главное меню")
}

func (b *Bot) getConfirmation(userID int64) (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id, ok := b.confirmations[userID]
	return id, ok
}

func (b *Bot) setConfirmation(userID int64, trackerID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.confirmations[userID] = trackerID
}

func (b *Bot) clearConfirmation(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.confirmations, userID)
}

func (b *Bot) setConversation(userID int64, state *conversationState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.conversations[userID] = state
}

func (b *Bot) getConversation(userID int64) *conversationState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conversations[userID]
}

func (b *Bot) clearConversation(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.conversations, userID)
}

func formatDate(t time.Time) string {
	return t.Format("02.01.2006")
}
