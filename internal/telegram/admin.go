package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/vanishbox/vanishbot/internal/formatter"
	"github.com/vanishbox/vanishbot/internal/repository"
	appmodels "github.com/vanishbox/vanishbot/pkg/models"
)

// Admin-only callback handlers verify the allow-list themselves and
// silently no-op for everyone else: a leaked or guessed token must not
// error, and the router deliberately does not gatekeep.

// openAdminPanel renders the operator menu
func (b *Bot) openAdminPanel(ctx context.Context, ev *event, _ []string) {
	if !b.isAdmin(ev.chatID) {
		return
	}
	b.render(ctx, ev, "<b>Админ-панель</b>", formatter.AdminPanelKeyboard())
}

// showStats renders the cached aggregate snapshot. A cold cache
// recomputes in the background: a full scan is too slow to run inside
// a callback handler.
func (b *Bot) showStats(ctx context.Context, ev *event, _ []string) {
	if !b.isAdmin(ev.chatID) {
		return
	}

	stats, err := b.system.CachedStats(ctx)
	if err == nil {
		b.render(ctx, ev, b.formatter.FormatStats(stats), formatter.BackToAdminKeyboard())
		return
	}
	if !errors.Is(err, repository.ErrNotFound) {
		b.logger.Error("failed to read stats cache", "error", err)
		return
	}

	b.render(ctx, ev, "Считаю статистику, это может занять немного времени...", formatter.BackToAdminKeyboard())

	adminID := ev.chatID
	b.detach("stats", func(ctx context.Context) {
		stats, err := b.computeStats(ctx)
		if err != nil {
			b.logger.Error("failed to compute stats", "error", err)
			return
		}
		if err := b.system.SaveStats(ctx, stats); err != nil {
			b.logger.Error("failed to cache stats", "error", err)
		}
		if _, err := b.sendMessage(ctx, adminID, b.formatter.FormatStats(stats), formatter.BackToAdminKeyboard()); err != nil {
			b.logger.Error("failed to send stats", "error", err)
		}
	})
}

// computeStats scans every user and mailbox record
func (b *Bot) computeStats(ctx context.Context) (*appmodels.Stats, error) {
	stats := &appmodels.Stats{ComputedAt: timeNow()}

	ids, err := b.users.AllIDs(ctx)
	if err != nil {
		return nil, err
	}
	stats.Users = len(ids)
	for _, id := range ids {
		user, err := b.users.Get(ctx, id)
		if err != nil {
			continue
		}
		if user.IsBanned {
			stats.Banned++
		}
	}

	addrs, err := b.boxes.AllAddresses(ctx)
	if err != nil {
		return nil, err
	}
	stats.Mailboxes = len(addrs)
	for _, addr := range addrs {
		box, err := b.boxes.Get(ctx, addr)
		if err != nil {
			continue
		}
		stats.Messages += len(box.Messages)
	}

	return stats, nil
}

// promptFind arms the user-search flow
func (b *Bot) promptFind(ctx context.Context, ev *event, _ []string) {
	if !b.isAdmin(ev.chatID) {
		return
	}

	ev.user.State = appmodels.StateAwaitingUserSearch
	if err := b.users.Save(ctx, ev.user); err != nil {
		b.logger.Error("failed to arm search state", "chat_id", ev.chatID, "error", err)
		return
	}
	b.render(ctx, ev, "Отправьте числовой ID пользователя.", formatter.BackToAdminKeyboard())
}

// stateUserSearch consumes the free-text chat ID
func (b *Bot) stateUserSearch(ctx context.Context, ev *event, text string) {
	if !b.isAdmin(ev.chatID) {
		return
	}

	targetID, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
	if err != nil {
		ev.user.State = appmodels.StateAwaitingUserSearch
		b.render(ctx, ev, "ID должен быть числом. Попробуйте ещё раз.", formatter.BackToAdminKeyboard())
		return
	}

	b.showUserCard(ctx, ev, targetID)
}

func (b *Bot) showUserCard(ctx context.Context, ev *event, targetID int64) {
	target, err := b.users.Get(ctx, targetID)
	if errors.Is(err, repository.ErrNotFound) {
		b.render(ctx, ev, fmt.Sprintf("Пользователь <code>%d</code> не найден.", targetID), formatter.BackToAdminKeyboard())
		return
	}
	if err != nil {
		b.logger.Error("failed to load user", "target_id", targetID, "error", err)
		return
	}

	b.render(ctx, ev, b.formatter.FormatUserCard(target), formatter.UserCardKeyboard(target.ChatID, target.IsBanned))
}

// banUser sets the ban flag. args: chat id
func (b *Bot) banUser(ctx context.Context, ev *event, args []string) {
	b.setBanned(ctx, ev, args, true)
}

// unbanUser clears the ban flag. args: chat id
func (b *Bot) unbanUser(ctx context.Context, ev *event, args []string) {
	b.setBanned(ctx, ev, args, false)
}

func (b *Bot) setBanned(ctx context.Context, ev *event, args []string, banned bool) {
	if !b.isAdmin(ev.chatID) || len(args) < 1 {
		return
	}
	targetID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return
	}

	target, err := b.users.Get(ctx, targetID)
	if errors.Is(err, repository.ErrNotFound) {
		b.render(ctx, ev, fmt.Sprintf("Пользователь <code>%d</code> не найден.", targetID), formatter.BackToAdminKeyboard())
		return
	}
	if err != nil {
		b.logger.Error("failed to load user", "target_id", targetID, "error", err)
		return
	}

	target.IsBanned = banned
	if err := b.users.Save(ctx, target); err != nil {
		b.logger.Error("failed to update ban flag", "target_id", targetID, "error", err)
		return
	}

	b.logger.Info("ban flag updated", "target_id", targetID, "banned", banned, "admin_id", ev.chatID)
	b.showUserCard(ctx, ev, targetID)
}

// startCleanup removes long-inactive users and their mailboxes in the
// background, reporting a tally when the pass completes
func (b *Bot) startCleanup(ctx context.Context, ev *event, _ []string) {
	if !b.isAdmin(ev.chatID) {
		return
	}

	cutoff := timeNow().Add(-b.config.InactiveAge)
	b.render(ctx, ev,
		fmt.Sprintf("Запущена очистка пользователей, неактивных с %s...", cutoff.Format("02.01.2006")),
		formatter.BackToAdminKeyboard())

	adminID := ev.chatID
	b.detach("cleanup", func(ctx context.Context) {
		ids, err := b.users.AllIDs(ctx)
		if err != nil {
			b.logger.Error("failed to list users for cleanup", "error", err)
			return
		}

		removedUsers, removedBoxes := 0, 0
		for _, id := range ids {
			user, err := b.users.Get(ctx, id)
			if err != nil {
				continue
			}
			if b.isAdmin(id) || user.LastActive.After(cutoff) {
				continue
			}

			for _, addr := range user.CreatedEmails {
				if err := b.boxes.Delete(ctx, addr); err != nil {
					b.logger.Error("failed to delete mailbox during cleanup", "address", addr, "error", err)
					continue
				}
				removedBoxes++
			}
			if err := b.users.Delete(ctx, id); err != nil {
				b.logger.Error("failed to delete user during cleanup", "chat_id", id, "error", err)
				continue
			}
			removedUsers++
		}

		b.logger.Info("cleanup finished", "removed_users", removedUsers, "removed_mailboxes", removedBoxes)
		text := fmt.Sprintf("Очистка завершена.\nУдалено пользователей: %d\nУдалено ящиков: %d", removedUsers, removedBoxes)
		if _, err := b.sendMessage(ctx, adminID, text, formatter.BackToAdminKeyboard()); err != nil {
			b.logger.Error("failed to report cleanup tally", "error", err)
		}
	})
}

// promptWelcome arms the welcome-message flow
func (b *Bot) promptWelcome(ctx context.Context, ev *event, _ []string) {
	if !b.isAdmin(ev.chatID) {
		return
	}

	ev.user.State = appmodels.StateAwaitingWelcome
	if err := b.users.Save(ctx, ev.user); err != nil {
		b.logger.Error("failed to arm welcome state", "chat_id", ev.chatID, "error", err)
		return
	}

	current, err := b.system.Welcome(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		current = defaultWelcome
	} else if err != nil {
		b.logger.Error("failed to load welcome message", "error", err)
	}

	text := "Текущее приветствие:\n\n" + current + "\n\nОтправьте новый текст приветствия."
	b.render(ctx, ev, text, formatter.BackToAdminKeyboard())
}

// stateWelcome stores the new /start greeting
func (b *Bot) stateWelcome(ctx context.Context, ev *event, text string) {
	if !b.isAdmin(ev.chatID) {
		return
	}

	if err := b.system.SetWelcome(ctx, text); err != nil {
		b.logger.Error("failed to save welcome message", "error", err)
		return
	}
	b.render(ctx, ev, "Приветствие обновлено.", formatter.BackToAdminKeyboard())
}
