package telegram

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/vanishbox/vanishbot/internal/formatter"
	"github.com/vanishbox/vanishbot/internal/repository"
)

const defaultWelcome = `Привет! Это бот одноразовой почты.

Создайте ящик, получайте письма прямо сюда и выбрасывайте адрес, когда он больше не нужен.`

// handleStart handles /start command
func (b *Bot) handleStart(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	msg := update.Message
	ev, ok := b.beginEvent(ctx, msg.Chat.ID)
	if !ok || ev.user.IsBanned {
		return
	}

	welcome, err := b.system.Welcome(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		welcome = defaultWelcome
	} else if err != nil {
		b.logger.Error("failed to load welcome message", "error", err)
		welcome = defaultWelcome
	}

	b.render(ctx, ev, welcome, formatter.MainMenuKeyboard(b.isAdmin(ev.chatID)))
}

// handleHelp handles /help and unknown commands
func (b *Bot) handleHelp(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	msg := update.Message
	ev, ok := b.beginEvent(ctx, msg.Chat.ID)
	if !ok || ev.user.IsBanned {
		return
	}

	text := fmt.Sprintf(`<b>Одноразовая почта</b>

Создавайте временные адреса на <b>%s</b> и читайте входящие письма прямо в этом чате.

<b>Команды:</b>
/start — главное меню
/help — эта справка

Всё остальное делается кнопками: создание ящика, просмотр писем, пересылка на основную почту.`, formatter.EscapeHTML(b.config.MailDomain))

	b.render(ctx, ev, text, formatter.MainMenuKeyboard(b.isAdmin(ev.chatID)))
}

// handleAdminCommand handles /admin. Non-admins get the help fallback,
// same as any unknown command.
func (b *Bot) handleAdminCommand(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	if !b.isAdmin(update.Message.Chat.ID) {
		b.handleHelp(ctx, tgBot, update)
		return
	}

	ev, ok := b.beginEvent(ctx, update.Message.Chat.ID)
	if !ok || ev.user.IsBanned {
		return
	}
	b.openAdminPanel(ctx, ev, nil)
}

// openMainMenu renders the top-level menu
func (b *Bot) openMainMenu(ctx context.Context, ev *event, _ []string) {
	text := fmt.Sprintf("Главное меню\n\nЯщиков: %d", len(ev.user.CreatedEmails))
	b.render(ctx, ev, text, formatter.MainMenuKeyboard(b.isAdmin(ev.chatID)))
}
