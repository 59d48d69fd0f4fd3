package telegram

import (
	"context"

	"github.com/vanishbox/vanishbot/internal/formatter"
	appmodels "github.com/vanishbox/vanishbot/pkg/models"
)

// NotifyNewMail pushes a new-arrival notice to the mailbox owner. The
// embedded "open" button points at global index 0, where the arrival
// was just prepended, and degrades to the usual not-found view if the
// mailbox changes before the press.
func (b *Bot) NotifyNewMail(ctx context.Context, ownerChatID int64, address string, msg *appmodels.Message) {
	text := b.formatter.FormatNewMailNotice(address, msg)
	if _, err := b.sendMessage(ctx, ownerChatID, text, formatter.NewMailKeyboard(address)); err != nil {
		b.logger.Error("failed to notify about new mail", "chat_id", ownerChatID, "address", address, "error", err)
	}
}
