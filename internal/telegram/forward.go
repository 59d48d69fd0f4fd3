package telegram

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/vanishbox/vanishbot/internal/formatter"
	appmodels "github.com/vanishbox/vanishbot/pkg/models"
)

// promptForward shows forwarding settings and arms the flow
func (b *Bot) promptForward(ctx context.Context, ev *event, _ []string) {
	if !b.forwarder.Enabled() {
		b.render(ctx, ev, "Пересылка на внешнюю почту не настроена на этом сервере.", formatter.BackToMenuKeyboard())
		return
	}

	ev.user.State = appmodels.StateAwaitingForwardEmail
	if err := b.users.Save(ctx, ev.user); err != nil {
		b.logger.Error("failed to arm forward state", "chat_id", ev.chatID, "error", err)
		return
	}

	var text string
	if ev.user.ForwardEmail != "" {
		text = fmt.Sprintf(
			"Сейчас письма пересылаются на <b>%s</b>.\n\nОтправьте другой адрес, чтобы изменить, или отключите пересылку.",
			formatter.EscapeHTML(ev.user.ForwardEmail))
	} else {
		text = "Отправьте адрес, на который пересылать входящие письма."
	}
	b.render(ctx, ev, text, formatter.ForwardKeyboard(ev.user.ForwardEmail != ""))
}

// stateForwardEmail consumes the free-text forwarding address
func (b *Bot) stateForwardEmail(ctx context.Context, ev *event, text string) {
	addr, err := mail.ParseAddress(strings.TrimSpace(text))
	if err != nil {
		// Re-arm so the user can just type the address again
		ev.user.State = appmodels.StateAwaitingForwardEmail
		b.render(ctx, ev, "Это не похоже на адрес почты. Попробуйте ещё раз.", formatter.ForwardKeyboard(ev.user.ForwardEmail != ""))
		return
	}

	ev.user.ForwardEmail = addr.Address
	b.render(ctx, ev,
		fmt.Sprintf("Готово! Письма будут пересылаться на <b>%s</b>.", formatter.EscapeHTML(addr.Address)),
		formatter.BackToMenuKeyboard())
}

// clearForward disables forwarding
func (b *Bot) clearForward(ctx context.Context, ev *event, _ []string) {
	ev.user.ForwardEmail = ""
	ev.user.State = appmodels.StateNone
	if err := b.users.Save(ctx, ev.user); err != nil {
		b.logger.Error("failed to clear forwarding", "chat_id", ev.chatID, "error", err)
		return
	}
	b.render(ctx, ev, "Пересылка отключена.", formatter.BackToMenuKeyboard())
}
