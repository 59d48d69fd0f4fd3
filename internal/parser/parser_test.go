package parser

import (
	"strings"
	"testing"
)

func TestHTMLParserStripsMarkup(t *testing.T) {
	p := NewHTMLParser()

	html := `<html><head><style>body { color: red }</style></head>
<body><p>Здравствуйте!</p><div>Ваш код: <b>482913</b></div>
<script>alert('x')</script></body></html>`

	text, err := p.Parse(html)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if strings.Contains(text, "<") || strings.Contains(text, ">") {
		t.Errorf("parsed text still contains markup: %q", text)
	}
	if strings.Contains(text, "color: red") || strings.Contains(text, "alert") {
		t.Errorf("style/script content leaked into text: %q", text)
	}
	if !strings.Contains(text, "Здравствуйте!") || !strings.Contains(text, "482913") {
		t.Errorf("visible content missing from %q", text)
	}
}

func TestHTMLParserCollapsesWhitespace(t *testing.T) {
	p := NewHTMLParser()

	text, err := p.Parse("<p>a</p>\n\n\n\n<p>b</p>   <p>c​​d</p>")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if strings.Contains(text, "\n\n\n") {
		t.Errorf("more than two consecutive newlines in %q", text)
	}
	if strings.Contains(text, "​") {
		t.Errorf("zero-width space survived in %q", text)
	}
}

func TestHTMLParserEmptyInput(t *testing.T) {
	p := NewHTMLParser()
	text, err := p.Parse("")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if text != "" {
		t.Errorf("Parse(\"\") = %q, want empty", text)
	}
}

func TestLooksLikeHTML(t *testing.T) {
	if LooksLikeHTML("plain text with a < b comparison") {
		t.Error("plain text misdetected as HTML")
	}
	if !LooksLikeHTML(`<div style="x">hello</div>`) {
		t.Error("div markup not detected")
	}
	if !LooksLikeHTML("<HTML><BODY>hi</BODY></HTML>") {
		t.Error("uppercase markup not detected")
	}
}

func TestDetectCodesKeywordOTP(t *testing.T) {
	d := NewCodeDetector()

	codes := d.DetectCodes("Your verification code: 482913. Do not share it.")
	if len(codes) == 0 {
		t.Fatal("no codes detected")
	}
	if codes[0].Value != "482913" {
		t.Errorf("codes[0].Value = %q, want 482913", codes[0].Value)
	}
}

func TestDetectCodesRussianKeyword(t *testing.T) {
	d := NewCodeDetector()

	codes := d.DetectCodes("Ваш код: 5541 для входа")
	if len(codes) != 1 || codes[0].Value != "5541" {
		t.Errorf("codes = %+v, want single 5541", codes)
	}
}

func TestDetectCodesStandaloneLine(t *testing.T) {
	d := NewCodeDetector()

	codes := d.DetectCodes("Введите это число:\n\n776901\n\nСпасибо")
	found := false
	for _, c := range codes {
		if c.Value == "776901" {
			found = true
		}
	}
	if !found {
		t.Errorf("standalone code not detected, got %+v", codes)
	}
}

func TestDetectCodesDeduplicates(t *testing.T) {
	d := NewCodeDetector()

	codes := d.DetectCodes("code: 1234\ncode 1234\n1234")
	if len(codes) != 1 {
		t.Errorf("len(codes) = %d, want 1 (deduplicated), got %+v", len(codes), codes)
	}
}

func TestDetectCodesIgnoresShort(t *testing.T) {
	d := NewCodeDetector()

	if codes := d.DetectCodes("pin: 12"); len(codes) != 0 {
		t.Errorf("too-short code detected: %+v", codes)
	}
}

func TestDetectCodesNone(t *testing.T) {
	d := NewCodeDetector()

	if codes := d.DetectCodes("Привет, как дела? Встретимся завтра."); len(codes) != 0 {
		t.Errorf("false positives: %+v", codes)
	}
}
