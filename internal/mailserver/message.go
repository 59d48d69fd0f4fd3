package mailserver

import (
	"bytes"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-message/mail"

	"github.com/vanishbox/vanishbot/internal/parser"
	"github.com/vanishbox/vanishbot/pkg/models"
)

// ParseMessage extracts the display fields from a raw transfer. A
// broken MIME structure degrades to whatever could be read, never to a
// rejected delivery: the envelope sender and receipt time are always
// present.
func ParseMessage(envelopeFrom string, raw []byte, htmlParser *parser.HTMLParser) models.Message {
	msg := models.Message{
		From:       envelopeFrom,
		ReceivedAt: time.Now(),
	}

	reader, err := mail.CreateReader(bytes.NewReader(raw))
	if err != nil {
		msg.Body = strings.TrimSpace(string(raw))
		return msg
	}

	if subject, err := reader.Header.Subject(); err == nil {
		msg.Subject = subject
	}
	if fromList, err := reader.Header.AddressList("From"); err == nil && len(fromList) > 0 {
		if fromList[0].Name != "" {
			msg.From = fromList[0].Name + " <" + fromList[0].Address + ">"
		} else {
			msg.From = fromList[0].Address
		}
	}
	if date, err := reader.Header.Date(); err == nil && !date.IsZero() {
		msg.ReceivedAt = date
	}

	var textBody, htmlBody string
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			break
		}

		header, ok := part.Header.(*mail.InlineHeader)
		if !ok {
			continue // attachments are not stored
		}

		mediaType, _, _ := header.ContentType()
		body, err := io.ReadAll(part.Body)
		if err != nil {
			continue
		}

		switch {
		case strings.HasPrefix(mediaType, "text/plain") || mediaType == "":
			if textBody == "" {
				textBody = string(body)
			}
		case strings.HasPrefix(mediaType, "text/html"):
			if htmlBody == "" {
				htmlBody = string(body)
			}
		}
	}

	// Prefer plain text; fall back to HTML run through the sanitizer
	msg.Body = strings.TrimSpace(textBody)
	if msg.Body == "" && htmlBody != "" {
		if parsed, err := htmlParser.Parse(htmlBody); err == nil {
			msg.Body = parsed
		}
	}

	return msg
}
