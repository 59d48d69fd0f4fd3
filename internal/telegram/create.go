package telegram

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/vanishbox/vanishbot/internal/formatter"
	"github.com/vanishbox/vanishbot/internal/namegen"
	"github.com/vanishbox/vanishbot/internal/repository"
	appmodels "github.com/vanishbox/vanishbot/pkg/models"
)

// localPartRegex restricts address names to lowercase letters, digits,
// dots and hyphens
var localPartRegex = regexp.MustCompile(`^[a-z0-9.-]{1,32}$`)

// promptCreate arms the email-name flow: the next free-text message is
// taken as the local part.
func (b *Bot) promptCreate(ctx context.Context, ev *event, _ []string) {
	ev.user.State = appmodels.StateAwaitingEmailName
	if err := b.users.Save(ctx, ev.user); err != nil {
		b.logger.Error("failed to arm create state", "chat_id", ev.chatID, "error", err)
		return
	}

	text := fmt.Sprintf(
		"Отправьте имя для нового ящика.\n\nДопустимы строчные латинские буквы, цифры, точка и дефис.\nПолучится адрес: <code>имя@%s</code>",
		formatter.EscapeHTML(b.config.MailDomain),
	)
	b.render(ctx, ev, text, formatter.CreatePromptKeyboard())
}

// suggestRandom skips the free-text step: the suggested local part
// travels inside the confirm button's token.
func (b *Bot) suggestRandom(ctx context.Context, ev *event, _ []string) {
	localPart := namegen.Random()
	text := fmt.Sprintf("Создать ящик <code>%s@%s</code>?",
		formatter.EscapeHTML(localPart), formatter.EscapeHTML(b.config.MailDomain))
	b.render(ctx, ev, text, formatter.RandomSuggestionKeyboard(localPart))
}

// confirmCreate creates the address embedded in the pressed button.
// args: local part
func (b *Bot) confirmCreate(ctx context.Context, ev *event, args []string) {
	if len(args) < 1 {
		return
	}
	b.createAddress(ctx, ev, args[0])
}

// stateEmailName consumes the free-text local part. Invalid input and
// collisions re-arm the state so the user can just type again.
func (b *Bot) stateEmailName(ctx context.Context, ev *event, text string) {
	if !b.createAddress(ctx, ev, strings.TrimSpace(text)) {
		ev.user.State = appmodels.StateAwaitingEmailName
	}
}

// createAddress validates the local part and atomically creates the
// mailbox plus the user's created-list entry. It reports success so
// the free-text flow knows whether to re-arm.
func (b *Bot) createAddress(ctx context.Context, ev *event, localPart string) bool {
	if !localPartRegex.MatchString(localPart) {
		b.render(ctx, ev,
			"Такое имя не подойдёт. Допустимы только строчные латинские буквы, цифры, точка и дефис.",
			formatter.RetryCreateKeyboard())
		return false
	}

	address := localPart + "@" + b.config.MailDomain

	_, err := b.boxes.Create(ctx, address, ev.chatID)
	if errors.Is(err, repository.ErrAlreadyExists) {
		b.render(ctx, ev,
			"Адрес <code>"+formatter.EscapeHTML(address)+"</code> уже занят. Попробуйте другое имя.",
			formatter.RetryCreateKeyboard())
		return false
	}
	if err != nil {
		b.logger.Error("failed to create mailbox", "address", address, "error", err)
		return false
	}

	if !ev.user.OwnsEmail(address) {
		ev.user.CreatedEmails = append(ev.user.CreatedEmails, address)
	}
	if err := b.users.Save(ctx, ev.user); err != nil {
		// Keep both sides in sync: roll the mailbox back, best effort
		b.logger.Error("failed to record created address", "address", address, "error", err)
		if delErr := b.boxes.Delete(ctx, address); delErr != nil {
			b.logger.Error("failed to roll back mailbox", "address", address, "error", delErr)
		}
		return false
	}

	text := fmt.Sprintf("Ящик <code>%s</code> создан!\n\nПисьма на этот адрес будут приходить сюда.",
		formatter.EscapeHTML(address))
	b.render(ctx, ev, text, formatter.MailboxCreatedKeyboard(address))
	return true
}
