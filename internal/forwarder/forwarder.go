// Package forwarder copies stored mail to a user-configured external
// address through an outbound SMTP relay. Delivery is best effort:
// failures are logged and never surfaced to the end user.
package forwarder

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"

	"github.com/vanishbox/vanishbot/pkg/models"
)

// Forwarder submits messages to the configured relay
type Forwarder struct {
	relayAddr string
	username  string
	password  string
	logger    *slog.Logger
}

// New creates a forwarder. An empty relayAddr disables forwarding.
func New(relayAddr, username, password string, logger *slog.Logger) *Forwarder {
	return &Forwarder{
		relayAddr: relayAddr,
		username:  username,
		password:  password,
		logger:    logger.With("component", "forwarder"),
	}
}

// Enabled reports whether a relay is configured
func (f *Forwarder) Enabled() bool {
	return f.relayAddr != ""
}

// Forward sends a copy of msg, originally delivered to origin, to the
// external destination address. Errors are logged, never returned to
// the caller's user, and never retried.
func (f *Forwarder) Forward(destination, origin string, msg *models.Message) {
	if !f.Enabled() {
		return
	}

	var auth sasl.Client
	if f.username != "" {
		auth = sasl.NewPlainClient("", f.username, f.password)
	}

	raw := buildRaw(destination, origin, msg)
	if err := smtp.SendMail(f.relayAddr, auth, origin, []string{destination}, strings.NewReader(raw)); err != nil {
		f.logger.Error("failed to forward message",
			"destination", destination,
			"origin", origin,
			"error", err,
		)
		return
	}

	f.logger.Info("message forwarded", "destination", destination, "origin", origin)
}

func buildRaw(destination, origin string, msg *models.Message) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("From: %s\r\n", origin))
	sb.WriteString(fmt.Sprintf("To: %s\r\n", destination))
	sb.WriteString(fmt.Sprintf("Subject: Fwd: %s\r\n", sanitizeHeader(msg.Subject)))
	sb.WriteString(fmt.Sprintf("Date: %s\r\n", msg.ReceivedAt.Format("Mon, 02 Jan 2006 15:04:05 -0700")))
	sb.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(fmt.Sprintf("Переслано с %s\r\nОт: %s\r\n\r\n", origin, msg.From))
	sb.WriteString(msg.Body)
	sb.WriteString("\r\n")
	return sb.String()
}

// sanitizeHeader strips CR/LF so mail content cannot inject headers
func sanitizeHeader(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}
