package telegram

import (
	"context"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/vanishbox/vanishbot/internal/callback"
	"github.com/vanishbox/vanishbot/internal/config"
	"github.com/vanishbox/vanishbot/internal/forwarder"
	"github.com/vanishbox/vanishbot/internal/formatter"
	"github.com/vanishbox/vanishbot/internal/parser"
	"github.com/vanishbox/vanishbot/internal/repository"
	appmodels "github.com/vanishbox/vanishbot/pkg/models"
)

// Bot represents the Telegram bot
type Bot struct {
	bot        *bot.Bot
	config     *config.Config
	users      *repository.Users
	boxes      *repository.Mailboxes
	drafts     *repository.Broadcasts
	system     *repository.System
	forwarder  *forwarder.Forwarder
	htmlParser *parser.HTMLParser
	codes      *parser.CodeDetector
	formatter  *formatter.TelegramFormatter
	logger     *slog.Logger

	actions map[callback.Action]actionHandler
	states  map[appmodels.StateTag]stateHandler
}

// event carries the per-update context every handler needs: the loaded
// user record, the chat, and (for button presses) the message the
// pressed keyboard belongs to.
type event struct {
	user      *appmodels.User
	chatID    int64
	messageID int // 0 for commands and free text; render falls back to send
}

type actionHandler func(ctx context.Context, ev *event, args []string)

// A stateHandler consumes the free-text message a pending flow was
// waiting for. The dispatcher clears the state tag before the call;
// a handler that needs another round re-arms ev.user.State itself.
type stateHandler func(ctx context.Context, ev *event, text string)

// BotDeps dependencies for creating a bot
type BotDeps struct {
	Config     *config.Config
	Users      *repository.Users
	Mailboxes  *repository.Mailboxes
	Broadcasts *repository.Broadcasts
	System     *repository.System
	Forwarder  *forwarder.Forwarder
	HTMLParser *parser.HTMLParser
	Codes      *parser.CodeDetector
	Formatter  *formatter.TelegramFormatter
	Logger     *slog.Logger
}

// NewBot creates a new Telegram bot
func NewBot(deps BotDeps) (*Bot, error) {
	b := &Bot{
		config:     deps.Config,
		users:      deps.Users,
		boxes:      deps.Mailboxes,
		drafts:     deps.Broadcasts,
		system:     deps.System,
		forwarder:  deps.Forwarder,
		htmlParser: deps.HTMLParser,
		codes:      deps.Codes,
		formatter:  deps.Formatter,
		logger:     deps.Logger.With("component", "telegram_bot"),
	}

	b.actions = map[callback.Action]actionHandler{
		callback.ActionMainMenu: b.openMainMenu,

		callback.ActionCreatePrompt:  b.promptCreate,
		callback.ActionCreateRandom:  b.suggestRandom,
		callback.ActionCreateConfirm: b.confirmCreate,

		callback.ActionEmailList:  b.openEmailList,
		callback.ActionInbox:      b.openInbox,
		callback.ActionMessage:    b.openMessage,
		callback.ActionToggleRead: b.toggleRead,
		callback.ActionCopyCode:   b.copyCode,

		callback.ActionDeleteMessage:    b.confirmDeleteMessage,
		callback.ActionDeleteMessageYes: b.deleteMessage,
		callback.ActionDeleteMailbox:    b.confirmDeleteMailbox,
		callback.ActionDeleteMailboxYes: b.deleteMailbox,

		callback.ActionForward:      b.promptForward,
		callback.ActionForwardClear: b.clearForward,

		callback.ActionAdminPanel:     b.openAdminPanel,
		callback.ActionAdminStats:     b.showStats,
		callback.ActionAdminBroadcast: b.promptBroadcast,
		callback.ActionBroadcastYes:   b.confirmBroadcast,
		callback.ActionBroadcastNo:    b.cancelBroadcast,
		callback.ActionAdminFind:      b.promptFind,
		callback.ActionAdminBan:       b.banUser,
		callback.ActionAdminUnban:     b.unbanUser,
		callback.ActionAdminCleanup:   b.startCleanup,
		callback.ActionAdminWelcome:   b.promptWelcome,
	}

	b.states = map[appmodels.StateTag]stateHandler{
		appmodels.StateAwaitingEmailName:    b.stateEmailName,
		appmodels.StateAwaitingForwardEmail: b.stateForwardEmail,
		appmodels.StateAwaitingBroadcast:    b.stateBroadcast,
		appmodels.StateAwaitingUserSearch:   b.stateUserSearch,
		appmodels.StateAwaitingWelcome:      b.stateWelcome,
	}

	opts := []bot.Option{
		bot.WithDefaultHandler(b.defaultHandler),
		bot.WithMiddlewares(b.recoverMiddleware),
	}

	tgBot, err := bot.New(deps.Config.TelegramToken, opts...)
	if err != nil {
		return nil, err
	}

	b.bot = tgBot
	b.registerHandlers()

	return b, nil
}

// registerHandlers registers command and callback handlers
func (b *Bot) registerHandlers() {
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypePrefix, b.handleStart)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/help", bot.MatchTypePrefix, b.handleHelp)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/admin", bot.MatchTypePrefix, b.handleAdminCommand)
	b.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "", bot.MatchTypePrefix, b.handleCallback)
}

// Start starts the bot
func (b *Bot) Start(ctx context.Context) {
	b.setupCommandMenu(ctx)
	b.logger.Info("starting telegram bot")
	b.bot.Start(ctx)
}

// setupCommandMenu publishes the command list; admins additionally see
// /admin in their private chat scope.
func (b *Bot) setupCommandMenu(ctx context.Context) {
	commands := []models.BotCommand{
		{Command: "start", Description: "Главное меню"},
		{Command: "help", Description: "Справка"},
	}
	if _, err := b.bot.SetMyCommands(ctx, &bot.SetMyCommandsParams{Commands: commands}); err != nil {
		b.logger.Warn("failed to set command menu", "error", err)
	}

	adminCommands := append(commands, models.BotCommand{Command: "admin", Description: "Админ-панель"})
	for _, id := range b.config.AdminIDs {
		_, err := b.bot.SetMyCommands(ctx, &bot.SetMyCommandsParams{
			Commands: adminCommands,
			Scope:    &models.BotCommandScopeChat{ChatID: id},
		})
		if err != nil {
			b.logger.Warn("failed to set admin command menu", "chat_id", id, "error", err)
		}
	}
}

// recoverMiddleware is the outermost event boundary: an unexpected
// panic is logged and, for button presses, the callback is still
// answered so the client UI does not spin forever.
func (b *Bot) recoverMiddleware(next bot.HandlerFunc) bot.HandlerFunc {
	return func(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
		defer func() {
			if r := recover(); r != nil {
				b.logger.Error("panic in update handler", "panic", r)
				if update.CallbackQuery != nil {
					b.answerCallback(ctx, update.CallbackQuery.ID, "Произошла ошибка")
				}
			}
		}()
		next(ctx, tgBot, update)
	}
}

// defaultHandler receives everything the command handlers did not:
// free-text messages and unknown commands.
func (b *Bot) defaultHandler(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	msg := update.Message
	if msg == nil || msg.Text == "" {
		return
	}

	if strings.HasPrefix(msg.Text, "/") {
		// Unknown command falls back to help
		b.handleHelp(ctx, tgBot, update)
		return
	}

	ev, ok := b.beginEvent(ctx, msg.Chat.ID)
	if !ok {
		return
	}
	if ev.user.IsBanned {
		return
	}

	b.handleFreeText(ctx, ev, msg.Text)
}

// handleFreeText routes a free-text message to the pending flow, if
// any. The state tag is cleared before the handler runs and persisted
// after, so a handler that re-arms a state wins over the clearing.
func (b *Bot) handleFreeText(ctx context.Context, ev *event, text string) {
	handler, ok := b.states[ev.user.State]
	if !ok {
		b.openMainMenu(ctx, ev, nil)
		return
	}

	ev.user.State = appmodels.StateNone
	handler(ctx, ev, text)

	if err := b.users.Save(ctx, ev.user); err != nil {
		b.logger.Error("failed to persist user state", "chat_id", ev.chatID, "error", err)
	}
}

// handleCallback handles inline button presses. The callback is
// acknowledged before any further work so the client stops showing a
// loading spinner even if a later step fails.
func (b *Bot) handleCallback(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	cb := update.CallbackQuery
	if cb == nil {
		return
	}

	chatID := cb.From.ID
	messageID := 0
	if cb.Message.Message != nil {
		chatID = cb.Message.Message.Chat.ID
		messageID = cb.Message.Message.ID
	}

	ev, ok := b.beginEvent(ctx, chatID)
	if !ok {
		b.answerCallback(ctx, cb.ID, "Произошла ошибка")
		return
	}
	if ev.user.IsBanned {
		b.answerCallback(ctx, cb.ID, "Вы заблокированы")
		return
	}
	b.answerCallback(ctx, cb.ID, "")

	action, args, err := callback.Decode(cb.Data)
	if err != nil {
		b.logger.Error("failed to decode callback", "data", cb.Data, "error", err)
		return
	}

	handler, ok := b.actions[action]
	if !ok {
		// Stale buttons from an edited-away message are expected
		b.logger.Debug("unknown callback action", "action", string(action))
		return
	}

	ev.messageID = messageID
	handler(ctx, ev, args)
}

// beginEvent loads (lazily creating) the user record and stamps
// activity before anything else happens, so activity tracking survives
// a later failure in the same event. A storage failure aborts the
// event with no user-visible reply.
func (b *Bot) beginEvent(ctx context.Context, chatID int64) (*event, bool) {
	user, err := b.users.GetOrCreate(ctx, chatID)
	if err != nil {
		b.logger.Error("failed to load user", "chat_id", chatID, "error", err)
		return nil, false
	}

	user.LastActive = timeNow()
	if err := b.users.Save(ctx, user); err != nil {
		b.logger.Error("failed to stamp user activity", "chat_id", chatID, "error", err)
		return nil, false
	}

	return &event{user: user, chatID: chatID}, true
}

// isAdmin reports whether the chat is on the operator allow-list
func (b *Bot) isAdmin(chatID int64) bool {
	return b.config.IsAdmin(chatID)
}
