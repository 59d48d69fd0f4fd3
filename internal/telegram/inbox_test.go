package telegram

import (
	"testing"

	"github.com/vanishbox/vanishbot/internal/parser"
)

// HTML markup hides codes from the detector until the body is
// sanitized. The message view and the copy handler both detect over
// displayBody, so a rendered code button always resolves.
func TestDisplayBodyCodeDetection(t *testing.T) {
	b := &Bot{
		htmlParser: parser.NewHTMLParser(),
		codes:      parser.NewCodeDetector(),
	}

	body := "<p>Your code:<br>481516</p>"

	if raw := b.codes.DetectCodes(body); len(raw) != 0 {
		t.Fatalf("raw HTML body unexpectedly yields codes: %+v", raw)
	}

	codes := b.codes.DetectCodes(b.displayBody(body))
	if len(codes) != 1 || codes[0].Value != "481516" {
		t.Fatalf("codes over display body = %+v, want single 481516", codes)
	}
}

func TestDisplayBodyPlainTextUntouched(t *testing.T) {
	b := &Bot{
		htmlParser: parser.NewHTMLParser(),
		codes:      parser.NewCodeDetector(),
	}

	body := "Ваш код: 5541, a < b"
	if got := b.displayBody(body); got != body {
		t.Errorf("displayBody(%q) = %q, want unchanged", body, got)
	}
}
