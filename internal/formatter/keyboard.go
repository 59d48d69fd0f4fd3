package formatter

import (
	"fmt"
	"strconv"

	"github.com/go-telegram/bot/models"

	"github.com/vanishbox/vanishbot/internal/callback"
	"github.com/vanishbox/vanishbot/internal/pagination"
	appmodels "github.com/vanishbox/vanishbot/pkg/models"
)

func button(text string, action callback.Action, args ...string) models.InlineKeyboardButton {
	return models.InlineKeyboardButton{
		Text:         text,
		CallbackData: callback.Encode(action, args...),
	}
}

func markup(rows ...[]models.InlineKeyboardButton) *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// MainMenuKeyboard is the top-level menu
func MainMenuKeyboard(isAdmin bool) *models.InlineKeyboardMarkup {
	rows := [][]models.InlineKeyboardButton{
		{button("📧 Мои ящики", callback.ActionEmailList)},
		{button("➕ Создать ящик", callback.ActionCreatePrompt)},
		{button("↪️ Пересылка", callback.ActionForward)},
	}
	if isAdmin {
		rows = append(rows, []models.InlineKeyboardButton{
			button("⚙️ Админ-панель", callback.ActionAdminPanel),
		})
	}
	return markup(rows...)
}

// EmailListKeyboard lists the user's addresses, one inbox button each
func EmailListKeyboard(addresses []string) *models.InlineKeyboardMarkup {
	var rows [][]models.InlineKeyboardButton
	for _, addr := range addresses {
		rows = append(rows, []models.InlineKeyboardButton{
			button("📬 "+addr, callback.ActionInbox, addr, "1"),
		})
	}
	rows = append(rows,
		[]models.InlineKeyboardButton{button("➕ Создать ящик", callback.ActionCreatePrompt)},
		[]models.InlineKeyboardButton{button("⬅️ Меню", callback.ActionMainMenu)},
	)
	return markup(rows...)
}

// CreatePromptKeyboard offers the random-name shortcut and a way out
func CreatePromptKeyboard() *models.InlineKeyboardMarkup {
	return markup(
		[]models.InlineKeyboardButton{button("🎲 Случайное имя", callback.ActionCreateRandom)},
		[]models.InlineKeyboardButton{button("⬅️ Меню", callback.ActionMainMenu)},
	)
}

// RandomSuggestionKeyboard confirms a suggested local part. The
// suggestion travels inside the confirm token, so no free-text step
// is needed.
func RandomSuggestionKeyboard(localPart string) *models.InlineKeyboardMarkup {
	return markup(
		[]models.InlineKeyboardButton{button("✅ Создать", callback.ActionCreateConfirm, localPart)},
		[]models.InlineKeyboardButton{button("🎲 Другое имя", callback.ActionCreateRandom)},
		[]models.InlineKeyboardButton{button("⬅️ Меню", callback.ActionMainMenu)},
	)
}

// MailboxCreatedKeyboard follows up a successful creation
func MailboxCreatedKeyboard(address string) *models.InlineKeyboardMarkup {
	return markup(
		[]models.InlineKeyboardButton{button("📬 Открыть ящик", callback.ActionInbox, address, "1")},
		[]models.InlineKeyboardButton{button("⬅️ Меню", callback.ActionMainMenu)},
	)
}

// RetryCreateKeyboard is shown after a rejected or colliding name
func RetryCreateKeyboard() *models.InlineKeyboardMarkup {
	return markup(
		[]models.InlineKeyboardButton{button("🔄 Попробовать ещё раз", callback.ActionCreatePrompt)},
		[]models.InlineKeyboardButton{button("🎲 Случайное имя", callback.ActionCreateRandom)},
		[]models.InlineKeyboardButton{button("⬅️ Меню", callback.ActionMainMenu)},
	)
}

// InboxKeyboard renders one selectable row per message in the page
// window plus navigation controls. Row tokens embed the message's
// global index and the current page so "back" lands on the same page.
func InboxKeyboard(address string, win pagination.Window, messages []appmodels.Message) *models.InlineKeyboardMarkup {
	page := strconv.Itoa(win.Page)

	var rows [][]models.InlineKeyboardButton
	for i := win.Start; i < win.End; i++ {
		rows = append(rows, []models.InlineKeyboardButton{
			button(RowLabel(i, &messages[i]), callback.ActionMessage, address, strconv.Itoa(i), page),
		})
	}

	var nav []models.InlineKeyboardButton
	if win.HasPrev() {
		nav = append(nav, button("⬅️", callback.ActionInbox, address, strconv.Itoa(win.Page-1)))
	}
	if win.HasNext() {
		nav = append(nav, button("➡️", callback.ActionInbox, address, strconv.Itoa(win.Page+1)))
	}
	if len(nav) > 0 {
		rows = append(rows, nav)
	}

	rows = append(rows,
		[]models.InlineKeyboardButton{
			button("🔄 Обновить", callback.ActionInbox, address, page),
			button("🗑 Удалить ящик", callback.ActionDeleteMailbox, address, page),
		},
		[]models.InlineKeyboardButton{button("⬅️ К ящикам", callback.ActionEmailList)},
	)
	return markup(rows...)
}

// EmptyInboxKeyboard is the zero-message state
func EmptyInboxKeyboard(address string) *models.InlineKeyboardMarkup {
	return markup(
		[]models.InlineKeyboardButton{button("🔄 Обновить", callback.ActionInbox, address, "1")},
		[]models.InlineKeyboardButton{button("⬅️ К ящикам", callback.ActionEmailList)},
	)
}

// MessageKeyboard is the single-message view controls
func MessageKeyboard(address string, index, page int, isRead bool, codes []appmodels.DetectedCode) *models.InlineKeyboardMarkup {
	idx := strconv.Itoa(index)
	pg := strconv.Itoa(page)

	var rows [][]models.InlineKeyboardButton

	// Code buttons, two per row
	var codeButtons []models.InlineKeyboardButton
	for i, code := range codes {
		codeButtons = append(codeButtons, button(
			fmt.Sprintf("🔑 %s", code.Value),
			callback.ActionCopyCode, address, idx, strconv.Itoa(i),
		))
	}
	for i := 0; i < len(codeButtons); i += 2 {
		end := i + 2
		if end > len(codeButtons) {
			end = len(codeButtons)
		}
		rows = append(rows, codeButtons[i:end])
	}

	readLabel := "✉️ Прочитано"
	if isRead {
		readLabel = "📩 Не прочитано"
	}
	rows = append(rows,
		[]models.InlineKeyboardButton{
			button(readLabel, callback.ActionToggleRead, address, idx, pg),
			button("🗑 Удалить", callback.ActionDeleteMessage, address, idx, pg),
		},
		[]models.InlineKeyboardButton{button("⬅️ К списку", callback.ActionInbox, address, pg)},
	)
	return markup(rows...)
}

// BackToInboxKeyboard returns to a specific list page; used by the
// "could not retrieve" error view.
func BackToInboxKeyboard(address string, page int) *models.InlineKeyboardMarkup {
	return markup(
		[]models.InlineKeyboardButton{button("⬅️ К списку", callback.ActionInbox, address, strconv.Itoa(page))},
	)
}

// ConfirmDeleteMessageKeyboard is the single-message deletion interstitial
func ConfirmDeleteMessageKeyboard(address string, index, page int) *models.InlineKeyboardMarkup {
	idx := strconv.Itoa(index)
	pg := strconv.Itoa(page)
	return markup(
		[]models.InlineKeyboardButton{
			button("✅ Удалить", callback.ActionDeleteMessageYes, address, idx, pg),
			button("❌ Отмена", callback.ActionMessage, address, idx, pg),
		},
	)
}

// ConfirmDeleteMailboxKeyboard is the whole-mailbox deletion
// interstitial. Cancel returns to the list page the prompt was opened
// from.
func ConfirmDeleteMailboxKeyboard(address string, page int) *models.InlineKeyboardMarkup {
	return markup(
		[]models.InlineKeyboardButton{
			button("✅ Удалить ящик", callback.ActionDeleteMailboxYes, address),
			button("❌ Отмена", callback.ActionInbox, address, strconv.Itoa(page)),
		},
	)
}

// NewMailKeyboard accompanies the new-arrival notification. The
// freshly prepended message sits at global index 0.
func NewMailKeyboard(address string) *models.InlineKeyboardMarkup {
	return markup(
		[]models.InlineKeyboardButton{
			button("📖 Открыть письмо", callback.ActionMessage, address, "0", "1"),
			button("📥 Входящие", callback.ActionInbox, address, "1"),
		},
	)
}

// ForwardKeyboard shows forwarding controls
func ForwardKeyboard(hasForward bool) *models.InlineKeyboardMarkup {
	var rows [][]models.InlineKeyboardButton
	if hasForward {
		rows = append(rows, []models.InlineKeyboardButton{
			button("🚫 Отключить пересылку", callback.ActionForwardClear),
		})
	}
	rows = append(rows, []models.InlineKeyboardButton{button("⬅️ Меню", callback.ActionMainMenu)})
	return markup(rows...)
}

// AdminPanelKeyboard is the operator menu
func AdminPanelKeyboard() *models.InlineKeyboardMarkup {
	return markup(
		[]models.InlineKeyboardButton{button("📊 Статистика", callback.ActionAdminStats)},
		[]models.InlineKeyboardButton{button("📢 Рассылка", callback.ActionAdminBroadcast)},
		[]models.InlineKeyboardButton{button("🔍 Найти пользователя", callback.ActionAdminFind)},
		[]models.InlineKeyboardButton{button("👋 Приветствие", callback.ActionAdminWelcome)},
		[]models.InlineKeyboardButton{button("🧹 Очистка неактивных", callback.ActionAdminCleanup)},
		[]models.InlineKeyboardButton{button("⬅️ Меню", callback.ActionMainMenu)},
	)
}

// BroadcastConfirmKeyboard carries the draft identifier through the
// preview step
func BroadcastConfirmKeyboard(draftID string) *models.InlineKeyboardMarkup {
	return markup(
		[]models.InlineKeyboardButton{
			button("✅ Отправить всем", callback.ActionBroadcastYes, draftID),
			button("❌ Отмена", callback.ActionBroadcastNo, draftID),
		},
	)
}

// UserCardKeyboard shows ban controls for the admin user card
func UserCardKeyboard(chatID int64, banned bool) *models.InlineKeyboardMarkup {
	id := strconv.FormatInt(chatID, 10)

	var action []models.InlineKeyboardButton
	if banned {
		action = append(action, button("✅ Разблокировать", callback.ActionAdminUnban, id))
	} else {
		action = append(action, button("🚫 Заблокировать", callback.ActionAdminBan, id))
	}

	return markup(
		action,
		[]models.InlineKeyboardButton{button("⬅️ Админ-панель", callback.ActionAdminPanel)},
	)
}

// BackToAdminKeyboard returns to the admin panel
func BackToAdminKeyboard() *models.InlineKeyboardMarkup {
	return markup(
		[]models.InlineKeyboardButton{button("⬅️ Админ-панель", callback.ActionAdminPanel)},
	)
}

// BackToMenuKeyboard returns to the main menu
func BackToMenuKeyboard() *models.InlineKeyboardMarkup {
	return markup(
		[]models.InlineKeyboardButton{button("⬅️ Меню", callback.ActionMainMenu)},
	)
}
