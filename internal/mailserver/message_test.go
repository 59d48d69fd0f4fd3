package mailserver

import (
	"strings"
	"testing"
	"time"

	"github.com/vanishbox/vanishbot/internal/parser"
)

func crlf(s string) []byte {
	return []byte(strings.ReplaceAll(s, "\n", "\r\n"))
}

func TestParseMessagePlain(t *testing.T) {
	raw := crlf(`From: Alice <alice@example.com>
Subject: Hello there
Date: Tue, 10 Jun 2025 12:00:00 +0000
Content-Type: text/plain; charset=utf-8

Привет! Это тестовое письмо.
`)

	msg := ParseMessage("envelope@example.com", raw, parser.NewHTMLParser())

	if msg.From != "Alice <alice@example.com>" {
		t.Errorf("From = %q", msg.From)
	}
	if msg.Subject != "Hello there" {
		t.Errorf("Subject = %q", msg.Subject)
	}
	want := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	if !msg.ReceivedAt.Equal(want) {
		t.Errorf("ReceivedAt = %v, want %v", msg.ReceivedAt, want)
	}
	if msg.Body != "Привет! Это тестовое письмо." {
		t.Errorf("Body = %q", msg.Body)
	}
}

func TestParseMessagePrefersPlainPart(t *testing.T) {
	raw := crlf(`From: Bob <bob@example.com>
Subject: Verify
MIME-Version: 1.0
Content-Type: multipart/alternative; boundary=BOUNDARY

--BOUNDARY
Content-Type: text/plain; charset=utf-8

plain body
--BOUNDARY
Content-Type: text/html; charset=utf-8

<p>html body</p>
--BOUNDARY--
`)

	msg := ParseMessage("bob@example.com", raw, parser.NewHTMLParser())
	if msg.Body != "plain body" {
		t.Errorf("Body = %q, want plain part", msg.Body)
	}
}

func TestParseMessageHTMLFallback(t *testing.T) {
	raw := crlf(`From: noreply@example.com
Subject: Code inside
Content-Type: text/html; charset=utf-8

<html><body><p>Ваш код: <b>123456</b></p></body></html>
`)

	msg := ParseMessage("noreply@example.com", raw, parser.NewHTMLParser())
	if strings.Contains(msg.Body, "<") {
		t.Errorf("markup survived in body: %q", msg.Body)
	}
	if !strings.Contains(msg.Body, "123456") {
		t.Errorf("content missing from body: %q", msg.Body)
	}
}

func TestParseMessageEnvelopeFallbacks(t *testing.T) {
	raw := crlf(`Content-Type: text/plain

no headers to speak of
`)

	before := time.Now()
	msg := ParseMessage("sender@example.com", raw, parser.NewHTMLParser())

	if msg.From != "sender@example.com" {
		t.Errorf("From = %q, want envelope sender", msg.From)
	}
	if msg.Subject != "" {
		t.Errorf("Subject = %q, want empty", msg.Subject)
	}
	if msg.ReceivedAt.Before(before.Add(-time.Second)) {
		t.Errorf("ReceivedAt = %v, want receipt time", msg.ReceivedAt)
	}
}

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"User@Example.COM", "user@example.com"},
		{" box@vanish.example ", "box@vanish.example"},
		{"plain@x.y", "plain@x.y"},
	}
	for _, tt := range tests {
		if got := normalizeEmail(tt.in); got != tt.want {
			t.Errorf("normalizeEmail(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
