package formatter

import (
	"strings"
	"testing"
	"time"

	"github.com/vanishbox/vanishbot/internal/callback"
	"github.com/vanishbox/vanishbot/internal/pagination"
	appmodels "github.com/vanishbox/vanishbot/pkg/models"
)

func TestEscapeHTML(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"<b>bold</b>", "&lt;b&gt;bold&lt;/b&gt;"},
		{"a & b", "a &amp; b"},
		{"&lt;", "&amp;lt;"},
	}
	for _, tt := range tests {
		if got := EscapeHTML(tt.in); got != tt.want {
			t.Errorf("EscapeHTML(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatMessageEscapesMailContent(t *testing.T) {
	f := NewTelegramFormatter()
	msg := &appmodels.Message{
		From:       `"Evil" <evil@example.com>`,
		Subject:    "<script>alert(1)</script>",
		Body:       "click <a href=x>here</a>",
		ReceivedAt: time.Date(2025, 3, 14, 15, 9, 0, 0, time.UTC),
	}

	out := f.FormatMessage("box@vanish.example", msg, nil)

	if strings.Contains(out, "<script>") || strings.Contains(out, "<a href") {
		t.Errorf("mail-controlled markup survived: %q", out)
	}
	if !strings.Contains(out, "&lt;script&gt;") {
		t.Errorf("subject not escaped: %q", out)
	}
	if !strings.Contains(out, "14.03.2025 15:09") {
		t.Errorf("date missing: %q", out)
	}
}

func TestFormatMessageTruncatesLongBody(t *testing.T) {
	f := NewTelegramFormatter()
	msg := &appmodels.Message{
		From:       "a@b.c",
		Subject:    "long",
		Body:       strings.Repeat("ж", 10000),
		ReceivedAt: time.Now(),
	}

	out := f.FormatMessage("box@vanish.example", msg, nil)

	if !strings.Contains(out, "(сообщение обрезано)") {
		t.Error("truncation notice missing")
	}
	if len([]rune(out)) > 4096 {
		t.Errorf("message length %d exceeds Telegram limit", len([]rune(out)))
	}
}

func TestFormatMessageIncludesCodes(t *testing.T) {
	f := NewTelegramFormatter()
	msg := &appmodels.Message{From: "a@b.c", ReceivedAt: time.Now()}
	codes := []appmodels.DetectedCode{{Type: "otp", Value: "482913"}}

	out := f.FormatMessage("box@vanish.example", msg, codes)
	if !strings.Contains(out, "<code>482913</code>") {
		t.Errorf("code button text missing: %q", out)
	}
}

func TestFormatInboxHeaderEmpty(t *testing.T) {
	f := NewTelegramFormatter()
	out := f.FormatInboxHeader("box@vanish.example", 0, 0, 1, 1)
	if !strings.Contains(out, "Писем пока нет") {
		t.Errorf("empty-state text missing: %q", out)
	}
}

func TestFormatInboxHeaderCounts(t *testing.T) {
	f := NewTelegramFormatter()
	out := f.FormatInboxHeader("box@vanish.example", 12, 3, 2, 3)
	for _, want := range []string{"Писем: 12", "непрочитанных: 3", "Страница 2 из 3"} {
		if !strings.Contains(out, want) {
			t.Errorf("header %q missing %q", out, want)
		}
	}
}

func TestRowLabel(t *testing.T) {
	unread := &appmodels.Message{From: "noreply@example.com", Subject: "Hello"}
	read := &appmodels.Message{From: "noreply@example.com", Subject: "Hello", IsRead: true}

	if got := RowLabel(0, unread); !strings.HasPrefix(got, "📩 1. ") {
		t.Errorf("unread label = %q", got)
	}
	if got := RowLabel(4, read); !strings.HasPrefix(got, "✉️ 5. ") {
		t.Errorf("read label = %q", got)
	}
	if got := RowLabel(0, &appmodels.Message{From: "a@b.c"}); !strings.Contains(got, "(без темы)") {
		t.Errorf("empty subject label = %q", got)
	}

	long := &appmodels.Message{From: "a@b.c", Subject: strings.Repeat("x", 100)}
	if got := RowLabel(0, long); !strings.Contains(got, "…") {
		t.Errorf("long subject not truncated: %q", got)
	}
}

func pageWindow(t *testing.T, total, page int) pagination.Window {
	t.Helper()
	return pagination.New(total, page, 5)
}

// Twelve messages at page size five: the first page navigates forward
// only, the last backward only.
func TestInboxKeyboardNavigation(t *testing.T) {
	messages := make([]appmodels.Message, 12)
	for i := range messages {
		messages[i].From = "a@b.c"
		messages[i].Subject = "s"
	}

	kb := InboxKeyboard("box@vanish.example", pageWindow(t, 12, 1), messages)
	rows := kb.InlineKeyboard
	// 5 message rows, nav row, refresh/delete row, back row
	if len(rows) != 8 {
		t.Fatalf("page 1: %d rows, want 8", len(rows))
	}
	nav := rows[5]
	if len(nav) != 1 || nav[0].Text != "➡️" {
		t.Errorf("page 1 nav = %+v, want next only", nav)
	}
	wantNext := callback.Encode(callback.ActionInbox, "box@vanish.example", "2")
	if nav[0].CallbackData != wantNext {
		t.Errorf("next token = %q, want %q", nav[0].CallbackData, wantNext)
	}

	kb = InboxKeyboard("box@vanish.example", pageWindow(t, 12, 3), messages)
	rows = kb.InlineKeyboard
	// 2 message rows, nav row, refresh/delete row, back row
	if len(rows) != 5 {
		t.Fatalf("page 3: %d rows, want 5", len(rows))
	}
	nav = rows[2]
	if len(nav) != 1 || nav[0].Text != "⬅️" {
		t.Errorf("page 3 nav = %+v, want prev only", nav)
	}

	kb = InboxKeyboard("box@vanish.example", pageWindow(t, 12, 2), messages)
	nav = kb.InlineKeyboard[5]
	if len(nav) != 2 {
		t.Errorf("page 2 nav = %+v, want prev and next", nav)
	}
}

// Row tokens carry the message's global index and the originating page
// so the back control from the message view lands on the same page.
func TestInboxKeyboardRowTokens(t *testing.T) {
	messages := make([]appmodels.Message, 12)
	for i := range messages {
		messages[i].From = "a@b.c"
	}

	kb := InboxKeyboard("box@vanish.example", pageWindow(t, 12, 3), messages)
	row := kb.InlineKeyboard[1]

	want := callback.Encode(callback.ActionMessage, "box@vanish.example", "11", "3")
	if row[0].CallbackData != want {
		t.Errorf("second row token = %q, want %q", row[0].CallbackData, want)
	}
}

// Cancelling a whole-mailbox deletion returns to the list page the
// prompt was opened from, so the delete button token carries the page
// and the cancel button routes back to it.
func TestConfirmDeleteMailboxCancelKeepsPage(t *testing.T) {
	messages := make([]appmodels.Message, 12)
	for i := range messages {
		messages[i].From = "a@b.c"
	}

	kb := InboxKeyboard("box@vanish.example", pageWindow(t, 12, 3), messages)
	del := kb.InlineKeyboard[3][1]
	wantDel := callback.Encode(callback.ActionDeleteMailbox, "box@vanish.example", "3")
	if del.CallbackData != wantDel {
		t.Errorf("delete-mailbox token = %q, want %q", del.CallbackData, wantDel)
	}

	confirm := ConfirmDeleteMailboxKeyboard("box@vanish.example", 3)
	cancel := confirm.InlineKeyboard[0][1]
	wantCancel := callback.Encode(callback.ActionInbox, "box@vanish.example", "3")
	if cancel.CallbackData != wantCancel {
		t.Errorf("cancel token = %q, want %q", cancel.CallbackData, wantCancel)
	}
}

func TestMessageKeyboardReadToggleLabel(t *testing.T) {
	kb := MessageKeyboard("box@vanish.example", 0, 1, false, nil)
	if got := kb.InlineKeyboard[0][0].Text; got != "✉️ Прочитано" {
		t.Errorf("unread toggle label = %q", got)
	}
	kb = MessageKeyboard("box@vanish.example", 0, 1, true, nil)
	if got := kb.InlineKeyboard[0][0].Text; got != "📩 Не прочитано" {
		t.Errorf("read toggle label = %q", got)
	}
}

func TestMessageKeyboardCodeRows(t *testing.T) {
	codes := []appmodels.DetectedCode{
		{Value: "1111"}, {Value: "2222"}, {Value: "3333"},
	}
	kb := MessageKeyboard("box@vanish.example", 2, 1, false, codes)

	// Two code rows (2 + 1), then read/delete row, then back row.
	if len(kb.InlineKeyboard) != 4 {
		t.Fatalf("%d rows, want 4", len(kb.InlineKeyboard))
	}
	if len(kb.InlineKeyboard[0]) != 2 || len(kb.InlineKeyboard[1]) != 1 {
		t.Errorf("code rows = %d,%d buttons, want 2,1",
			len(kb.InlineKeyboard[0]), len(kb.InlineKeyboard[1]))
	}
	want := callback.Encode(callback.ActionCopyCode, "box@vanish.example", "2", "1")
	if kb.InlineKeyboard[0][1].CallbackData != want {
		t.Errorf("code token = %q, want %q", kb.InlineKeyboard[0][1].CallbackData, want)
	}
}

func TestMainMenuKeyboardAdminRow(t *testing.T) {
	if n := len(MainMenuKeyboard(false).InlineKeyboard); n != 3 {
		t.Errorf("user menu has %d rows, want 3", n)
	}
	if n := len(MainMenuKeyboard(true).InlineKeyboard); n != 4 {
		t.Errorf("admin menu has %d rows, want 4", n)
	}
}

func TestCallbackTokensWithinTelegramLimit(t *testing.T) {
	// Longest realistic token: full-length address plus indices.
	addr := strings.Repeat("a", 32) + "@vanish.example"
	kb := MessageKeyboard(addr, 9999, 2000, false, []appmodels.DetectedCode{{Value: "12345678"}})
	for _, row := range kb.InlineKeyboard {
		for _, b := range row {
			if len(b.CallbackData) > 64 {
				t.Errorf("token %q is %d bytes, exceeds 64", b.CallbackData, len(b.CallbackData))
			}
		}
	}
}
