package telegram

import (
	"context"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// timeNow is swapped out in tests
var timeNow = time.Now

// sendMessage sends an HTML message, optionally with a keyboard
func (b *Bot) sendMessage(ctx context.Context, chatID int64, text string, keyboard models.ReplyMarkup) (*models.Message, error) {
	params := &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
	}
	if keyboard != nil {
		params.ReplyMarkup = keyboard
	}
	return b.bot.SendMessage(ctx, params)
}

// render replaces the message the pressed button belongs to, falling
// back to a fresh message for command and free-text events (or when
// the edit fails for any reason other than identical content).
func (b *Bot) render(ctx context.Context, ev *event, text string, keyboard models.ReplyMarkup) {
	if ev.messageID != 0 {
		params := &bot.EditMessageTextParams{
			ChatID:    ev.chatID,
			MessageID: ev.messageID,
			Text:      text,
			ParseMode: models.ParseModeHTML,
		}
		if keyboard != nil {
			params.ReplyMarkup = keyboard
		}

		_, err := b.bot.EditMessageText(ctx, params)
		if err == nil {
			return
		}
		if strings.Contains(err.Error(), "message is not modified") {
			return
		}
		b.logger.Warn("failed to edit message", "chat_id", ev.chatID, "error", err)
	}

	if _, err := b.sendMessage(ctx, ev.chatID, text, keyboard); err != nil {
		b.logger.Error("failed to send message", "chat_id", ev.chatID, "error", err)
	}
}

// answerCallback answers a callback query
func (b *Bot) answerCallback(ctx context.Context, callbackID, text string) {
	_, err := b.bot.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
		Text:            text,
	})
	if err != nil {
		b.logger.Warn("failed to answer callback", "error", err)
	}
}

// detach runs fn on a background context so long-running work never
// blocks the update that triggered it
func (b *Bot) detach(name string, fn func(ctx context.Context)) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				b.logger.Error("panic in background task", "task", name, "panic", r)
			}
		}()
		fn(context.Background())
	}()
}
