package telegram

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vanishbox/vanishbot/internal/formatter"
	"github.com/vanishbox/vanishbot/internal/repository"
	appmodels "github.com/vanishbox/vanishbot/pkg/models"
)

// promptBroadcast arms the broadcast flow
func (b *Bot) promptBroadcast(ctx context.Context, ev *event, _ []string) {
	if !b.isAdmin(ev.chatID) {
		return
	}

	ev.user.State = appmodels.StateAwaitingBroadcast
	if err := b.users.Save(ctx, ev.user); err != nil {
		b.logger.Error("failed to arm broadcast state", "chat_id", ev.chatID, "error", err)
		return
	}
	b.render(ctx, ev, "Отправьте текст рассылки. Он будет показан для подтверждения перед отправкой.",
		formatter.BackToAdminKeyboard())
}

// stateBroadcast captures the broadcast text into a short-TTL draft
// and renders the preview. The draft lives outside the user record so
// an unrelated message cannot corrupt it and it expires on its own if
// never confirmed.
func (b *Bot) stateBroadcast(ctx context.Context, ev *event, text string) {
	if !b.isAdmin(ev.chatID) {
		return
	}

	draft, err := b.drafts.Create(ctx, ev.chatID, text)
	if err != nil {
		b.logger.Error("failed to create broadcast draft", "error", err)
		return
	}

	preview := "<b>Предпросмотр рассылки:</b>\n\n" + formatter.EscapeHTML(text)
	b.render(ctx, ev, preview, formatter.BroadcastConfirmKeyboard(draft.ID))
}

// confirmBroadcast re-fetches the draft, deletes it first so a retried
// confirm cannot double-send, and kicks off the fan-out detached from
// the request cycle.
// args: draft id
func (b *Bot) confirmBroadcast(ctx context.Context, ev *event, args []string) {
	if !b.isAdmin(ev.chatID) || len(args) < 1 {
		return
	}

	draft, err := b.drafts.Get(ctx, args[0])
	if errors.Is(err, repository.ErrNotFound) {
		// Expired, or a slow duplicate press after the first confirm
		b.render(ctx, ev, "Рассылка уже отправлена или черновик истёк.", formatter.BackToAdminKeyboard())
		return
	}
	if err != nil {
		b.logger.Error("failed to load broadcast draft", "draft_id", args[0], "error", err)
		return
	}

	if err := b.drafts.Delete(ctx, draft.ID); err != nil {
		b.logger.Error("failed to delete broadcast draft", "draft_id", draft.ID, "error", err)
		return
	}

	b.render(ctx, ev, "Рассылка запущена. Итог придёт по завершении.", formatter.BackToAdminKeyboard())

	adminID := ev.chatID
	text := draft.Text
	b.detach("broadcast", func(ctx context.Context) {
		b.runBroadcast(ctx, adminID, text)
	})
}

// cancelBroadcast discards the draft.
// args: draft id
func (b *Bot) cancelBroadcast(ctx context.Context, ev *event, args []string) {
	if !b.isAdmin(ev.chatID) || len(args) < 1 {
		return
	}

	if err := b.drafts.Delete(ctx, args[0]); err != nil {
		b.logger.Error("failed to delete broadcast draft", "draft_id", args[0], "error", err)
	}
	b.render(ctx, ev, "Рассылка отменена.", formatter.BackToAdminKeyboard())
}

// runBroadcast delivers the text to every known user. Individual send
// failures are counted, never fatal.
func (b *Bot) runBroadcast(ctx context.Context, adminID int64, text string) {
	ids, err := b.users.AllIDs(ctx)
	if err != nil {
		b.logger.Error("failed to list broadcast recipients", "error", err)
		return
	}

	escaped := formatter.EscapeHTML(text)
	sent, failed := broadcastAll(ids, b.config.BroadcastDelay, func(id int64) error {
		_, err := b.sendMessage(ctx, id, escaped, nil)
		if err != nil {
			// Blocked bots and deleted accounts land here
			b.logger.Warn("broadcast send failed", "chat_id", id, "error", err)
		}
		return err
	})

	b.logger.Info("broadcast finished", "sent", sent, "failed", failed)
	tally := fmt.Sprintf("Рассылка завершена.\nДоставлено: %d\nНе доставлено: %d", sent, failed)
	if _, err := b.sendMessage(ctx, adminID, tally, formatter.BackToAdminKeyboard()); err != nil {
		b.logger.Error("failed to report broadcast tally", "error", err)
	}
}

// broadcastAll sends to every recipient with a pacing delay between
// consecutive sends, keeping the fan-out under the transport's rate
// limit. No delay runs after the final send, so the completion tally
// follows it immediately.
func broadcastAll(ids []int64, delay time.Duration, send func(int64) error) (sent, failed int) {
	for i, id := range ids {
		if i > 0 {
			time.Sleep(delay)
		}
		if err := send(id); err != nil {
			failed++
		} else {
			sent++
		}
	}
	return sent, failed
}
