package formatter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vanishbox/vanishbot/pkg/models"
)

// TelegramFormatter renders mailbox content as Telegram HTML
type TelegramFormatter struct {
	maxLength int
}

// NewTelegramFormatter creates a new Telegram formatter
func NewTelegramFormatter() *TelegramFormatter {
	return &TelegramFormatter{
		maxLength: 4000, // leave room for markup under the 4096 hard limit
	}
}

// EscapeHTML escapes HTML special characters for Telegram. Every piece
// of mail-controlled text goes through here exactly once, at the point
// it is interpolated into an outgoing message.
func EscapeHTML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}

// FormatMessage renders the single-message view
func (f *TelegramFormatter) FormatMessage(address string, msg *models.Message, codes []models.DetectedCode) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("<b>Ящик:</b> <code>%s</code>\n", EscapeHTML(address)))
	sb.WriteString(fmt.Sprintf("<b>От:</b> %s\n", EscapeHTML(msg.From)))
	sb.WriteString(fmt.Sprintf("<b>Тема:</b> %s\n", EscapeHTML(msg.Subject)))
	sb.WriteString(fmt.Sprintf("<b>Дата:</b> %s\n\n", msg.ReceivedAt.Format("02.01.2006 15:04")))

	if len(codes) > 0 {
		sb.WriteString("<b>Коды:</b> ")
		for _, code := range codes {
			sb.WriteString(fmt.Sprintf("<code>%s</code> ", EscapeHTML(code.Value)))
		}
		sb.WriteString("\n\n")
	}

	sb.WriteString("<b>Сообщение:</b>\n")
	body := f.truncate(msg.Body, f.maxLength-sb.Len()-50)
	sb.WriteString(EscapeHTML(body.text))
	if body.truncated {
		sb.WriteString("\n\n<i>... (сообщение обрезано)</i>")
	}

	return sb.String()
}

// FormatInboxHeader renders the list view header
func (f *TelegramFormatter) FormatInboxHeader(address string, total, unread, page, totalPages int) string {
	if total == 0 {
		return fmt.Sprintf("<b>Ящик:</b> <code>%s</code>\n\nПисем пока нет. Нажмите «Обновить», чтобы проверить ещё раз.", EscapeHTML(address))
	}
	return fmt.Sprintf("<b>Ящик:</b> <code>%s</code>\nПисем: %d (непрочитанных: %d)\nСтраница %d из %d",
		EscapeHTML(address), total, unread, page, totalPages)
}

// FormatNewMailNotice renders the push notification for a new arrival
func (f *TelegramFormatter) FormatNewMailNotice(address string, msg *models.Message) string {
	subject := msg.Subject
	if subject == "" {
		subject = "(без темы)"
	}
	return fmt.Sprintf("📬 Новое письмо на <code>%s</code>\n<b>От:</b> %s\n<b>Тема:</b> %s",
		EscapeHTML(address), EscapeHTML(msg.From), EscapeHTML(subject))
}

// FormatUserCard renders the admin view of a user record
func (f *TelegramFormatter) FormatUserCard(user *models.User) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("<b>Пользователь:</b> <code>%d</code>\n", user.ChatID))
	sb.WriteString(fmt.Sprintf("<b>Ящиков:</b> %d\n", len(user.CreatedEmails)))
	for _, addr := range user.CreatedEmails {
		sb.WriteString(fmt.Sprintf("  • <code>%s</code>\n", EscapeHTML(addr)))
	}
	if user.ForwardEmail != "" {
		sb.WriteString(fmt.Sprintf("<b>Пересылка:</b> %s\n", EscapeHTML(user.ForwardEmail)))
	}
	sb.WriteString(fmt.Sprintf("<b>Зарегистрирован:</b> %s\n", user.CreatedAt.Format("02.01.2006 15:04")))
	sb.WriteString(fmt.Sprintf("<b>Активность:</b> %s\n", user.LastActive.Format("02.01.2006 15:04")))
	if user.IsBanned {
		sb.WriteString("\n🚫 Заблокирован")
	}

	return sb.String()
}

// FormatStats renders the cached aggregate snapshot
func (f *TelegramFormatter) FormatStats(stats *models.Stats) string {
	return fmt.Sprintf(
		"<b>Статистика</b>\n\nПользователей: %d\nЗаблокировано: %d\nЯщиков: %d\nПисем: %d\n\n<i>Обновлено: %s</i>",
		stats.Users, stats.Banned, stats.Mailboxes, stats.Messages,
		stats.ComputedAt.Format("02.01.2006 15:04:05"),
	)
}

// RowLabel renders a one-line inbox entry for a selectable button
func RowLabel(index int, msg *models.Message) string {
	marker := "📩"
	if msg.IsRead {
		marker = "✉️"
	}

	subject := strings.TrimSpace(msg.Subject)
	if subject == "" {
		subject = "(без темы)"
	}

	label := fmt.Sprintf("%s %d. %s — %s", marker, index+1, truncateRunes(subject, 24), truncateRunes(msg.From, 20))
	return label
}

type truncated struct {
	text      string
	truncated bool
}

// truncate cuts text to maxLen runes
func (f *TelegramFormatter) truncate(s string, maxLen int) truncated {
	if maxLen <= 0 {
		maxLen = 100
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return truncated{text: s}
	}
	return truncated{text: string(runes[:maxLen]), truncated: true}
}

func truncateRunes(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-1]) + "…"
}

// FormatChatID renders a chat identifier for display
func FormatChatID(chatID int64) string {
	return strconv.FormatInt(chatID, 10)
}
