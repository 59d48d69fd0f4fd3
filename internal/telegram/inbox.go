package telegram

import (
	"context"
	"errors"
	"strconv"

	"github.com/vanishbox/vanishbot/internal/formatter"
	"github.com/vanishbox/vanishbot/internal/pagination"
	"github.com/vanishbox/vanishbot/internal/parser"
	"github.com/vanishbox/vanishbot/internal/repository"
	appmodels "github.com/vanishbox/vanishbot/pkg/models"
)

// openEmailList shows the user's addresses
func (b *Bot) openEmailList(ctx context.Context, ev *event, _ []string) {
	if len(ev.user.CreatedEmails) == 0 {
		b.render(ctx, ev, "У вас пока нет ящиков. Создайте первый!", formatter.CreatePromptKeyboard())
		return
	}
	b.render(ctx, ev, "<b>Ваши ящики:</b>", formatter.EmailListKeyboard(ev.user.CreatedEmails))
}

// loadOwnedBox loads a mailbox and verifies the requester owns it. A
// missing or foreign mailbox renders the same non-fatal "not found"
// view, so a guessed token leaks nothing.
func (b *Bot) loadOwnedBox(ctx context.Context, ev *event, address string) *appmodels.Mailbox {
	box, err := b.boxes.Get(ctx, address)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && box.Owner != ev.chatID) {
		b.render(ctx, ev, "Ящик не найден. Возможно, он был удалён.", formatter.BackToMenuKeyboard())
		return nil
	}
	if err != nil {
		b.logger.Error("failed to load mailbox", "address", address, "error", err)
		return nil
	}
	return box
}

// openInbox renders the paginated list view.
// args: address, page
func (b *Bot) openInbox(ctx context.Context, ev *event, args []string) {
	if len(args) < 2 {
		return
	}
	address := args[0]
	page, _ := strconv.Atoi(args[1]) // out of range or garbage clamps below

	box := b.loadOwnedBox(ctx, ev, address)
	if box == nil {
		return
	}
	b.renderInbox(ctx, ev, box, page)
}

// renderInbox computes the pagination window and draws the list view.
// It is re-invoked from scratch after every mutation, since a removal
// shifts all later global indices.
func (b *Bot) renderInbox(ctx context.Context, ev *event, box *appmodels.Mailbox, page int) {
	if len(box.Messages) == 0 {
		text := b.formatter.FormatInboxHeader(box.Address, 0, 0, 1, 1)
		b.render(ctx, ev, text, formatter.EmptyInboxKeyboard(box.Address))
		return
	}

	win := pagination.New(len(box.Messages), page, b.config.PageSize)
	text := b.formatter.FormatInboxHeader(box.Address, len(box.Messages), box.Unread(), win.Page, win.TotalPages)
	b.render(ctx, ev, text, formatter.InboxKeyboard(box.Address, win, box.Messages))
}

// openMessage renders the single-message view and marks the message
// read as a side effect.
// args: address, global index, page the list was on
func (b *Bot) openMessage(ctx context.Context, ev *event, args []string) {
	if len(args) < 3 {
		return
	}
	address := args[0]
	index, err := strconv.Atoi(args[1])
	if err != nil {
		return
	}
	page, _ := strconv.Atoi(args[2])

	box := b.loadOwnedBox(ctx, ev, address)
	if box == nil {
		return
	}

	msg := box.At(index)
	if msg == nil {
		// Deleted since the list was rendered
		b.render(ctx, ev, "Не удалось получить письмо. Возможно, оно было удалено.",
			formatter.BackToInboxKeyboard(address, page))
		return
	}

	if !msg.IsRead {
		msg.IsRead = true
		if err := b.boxes.Save(ctx, box); err != nil {
			b.logger.Error("failed to mark message read", "address", address, "error", err)
			return
		}
	}

	b.renderMessage(ctx, ev, box, index, page)
}

// displayBody returns the body as it is shown to the user: HTML that
// slipped through delivery-time parsing is stripped here, at the
// single interpolation point. Code detection always runs over this
// text, so the rendered code buttons and the copy handler agree on
// indices.
func (b *Bot) displayBody(body string) string {
	if parser.LooksLikeHTML(body) {
		if text, err := b.htmlParser.Parse(body); err == nil {
			return text
		}
	}
	return body
}

// renderMessage draws the single-message view without touching the
// read flag
func (b *Bot) renderMessage(ctx context.Context, ev *event, box *appmodels.Mailbox, index, page int) {
	msg := box.At(index)
	if msg == nil {
		b.render(ctx, ev, "Не удалось получить письмо. Возможно, оно было удалено.",
			formatter.BackToInboxKeyboard(box.Address, page))
		return
	}

	display := *msg
	display.Body = b.displayBody(msg.Body)

	codes := b.codes.DetectCodes(display.Body)
	text := b.formatter.FormatMessage(box.Address, &display, codes)
	b.render(ctx, ev, text, formatter.MessageKeyboard(box.Address, index, page, msg.IsRead, codes))
}

// toggleRead flips the read flag; the message keeps its global index.
// args: address, global index, page
func (b *Bot) toggleRead(ctx context.Context, ev *event, args []string) {
	if len(args) < 3 {
		return
	}
	address := args[0]
	index, err := strconv.Atoi(args[1])
	if err != nil {
		return
	}
	page, _ := strconv.Atoi(args[2])

	box := b.loadOwnedBox(ctx, ev, address)
	if box == nil {
		return
	}

	msg := box.At(index)
	if msg == nil {
		b.render(ctx, ev, "Не удалось получить письмо. Возможно, оно было удалено.",
			formatter.BackToInboxKeyboard(address, page))
		return
	}

	msg.IsRead = !msg.IsRead
	if err := b.boxes.Save(ctx, box); err != nil {
		b.logger.Error("failed to toggle read flag", "address", address, "error", err)
		return
	}

	b.renderMessage(ctx, ev, box, index, page)
}

// copyCode re-detects codes in the displayed message body and sends
// the chosen one as tap-to-copy monospace text.
// args: address, global index, code index
func (b *Bot) copyCode(ctx context.Context, ev *event, args []string) {
	if len(args) < 3 {
		return
	}
	address := args[0]
	index, err := strconv.Atoi(args[1])
	if err != nil {
		return
	}
	codeIndex, err := strconv.Atoi(args[2])
	if err != nil {
		return
	}

	box := b.loadOwnedBox(ctx, ev, address)
	if box == nil {
		return
	}
	msg := box.At(index)
	if msg == nil {
		return
	}

	codes := b.codes.DetectCodes(b.displayBody(msg.Body))
	if codeIndex < 0 || codeIndex >= len(codes) {
		return
	}

	text := "Код: <code>" + formatter.EscapeHTML(codes[codeIndex].Value) + "</code>"
	if _, err := b.sendMessage(ctx, ev.chatID, text, nil); err != nil {
		b.logger.Error("failed to send code", "error", err)
	}
}

// confirmDeleteMessage renders the one-shot deletion interstitial.
// args: address, global index, page
func (b *Bot) confirmDeleteMessage(ctx context.Context, ev *event, args []string) {
	if len(args) < 3 {
		return
	}
	index, err := strconv.Atoi(args[1])
	if err != nil {
		return
	}
	page, _ := strconv.Atoi(args[2])

	b.render(ctx, ev, "Удалить это письмо?", formatter.ConfirmDeleteMessageKeyboard(args[0], index, page))
}

// deleteMessage removes one message and re-renders the list from
// scratch, since removal shifts every later global index. Deleting an
// already-gone message is a no-op, so a duplicate confirm is safe.
// args: address, global index, page
func (b *Bot) deleteMessage(ctx context.Context, ev *event, args []string) {
	if len(args) < 3 {
		return
	}
	address := args[0]
	index, err := strconv.Atoi(args[1])
	if err != nil {
		return
	}
	page, _ := strconv.Atoi(args[2])

	box := b.loadOwnedBox(ctx, ev, address)
	if box == nil {
		return
	}

	if box.RemoveAt(index) {
		if err := b.boxes.Save(ctx, box); err != nil {
			b.logger.Error("failed to delete message", "address", address, "error", err)
			return
		}
	}

	b.renderInbox(ctx, ev, box, page)
}

// confirmDeleteMailbox renders the whole-mailbox interstitial.
// args: address, page the list was on
func (b *Bot) confirmDeleteMailbox(ctx context.Context, ev *event, args []string) {
	if len(args) < 1 {
		return
	}
	page := 1
	if len(args) >= 2 {
		if p, err := strconv.Atoi(args[1]); err == nil {
			page = p
		}
	}
	b.render(ctx, ev, "Удалить ящик <code>"+formatter.EscapeHTML(args[0])+"</code> со всеми письмами?",
		formatter.ConfirmDeleteMailboxKeyboard(args[0], page))
}

// deleteMailbox removes the mailbox record and its entry in the user's
// created list. Both sides are removed even if one is already gone, so
// a duplicate confirm or a half-applied earlier deletion converges.
// args: address
func (b *Bot) deleteMailbox(ctx context.Context, ev *event, args []string) {
	if len(args) < 1 {
		return
	}
	address := args[0]

	box, err := b.boxes.Get(ctx, address)
	if err == nil && box.Owner != ev.chatID {
		b.render(ctx, ev, "Ящик не найден. Возможно, он был удалён.", formatter.BackToMenuKeyboard())
		return
	}
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		b.logger.Error("failed to load mailbox", "address", address, "error", err)
		return
	}

	if err := b.boxes.Delete(ctx, address); err != nil {
		b.logger.Error("failed to delete mailbox", "address", address, "error", err)
		return
	}

	if ev.user.OwnsEmail(address) {
		ev.user.RemoveEmail(address)
		if err := b.users.Save(ctx, ev.user); err != nil {
			b.logger.Error("failed to update user after mailbox deletion", "chat_id", ev.chatID, "error", err)
			return
		}
	}

	b.render(ctx, ev, "Ящик <code>"+formatter.EscapeHTML(address)+"</code> удалён.", formatter.BackToMenuKeyboard())
}
