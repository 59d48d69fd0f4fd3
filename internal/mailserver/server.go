// Package mailserver accepts inbound SMTP deliveries for disposable
// addresses. Unknown recipients are rejected at RCPT time, so the
// sending server bounces the mail instead of it vanishing silently.
package mailserver

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/emersion/go-smtp"

	"github.com/vanishbox/vanishbot/internal/forwarder"
	"github.com/vanishbox/vanishbot/internal/parser"
	"github.com/vanishbox/vanishbot/internal/repository"
	"github.com/vanishbox/vanishbot/pkg/models"
)

// Notifier delivers a new-mail notice to the mailbox owner's chat
type Notifier interface {
	NotifyNewMail(ctx context.Context, ownerChatID int64, address string, msg *models.Message)
}

// Server is the inbound SMTP listener
type Server struct {
	smtp   *smtp.Server
	logger *slog.Logger
}

// Deps dependencies for creating a server
type Deps struct {
	Mailboxes  *repository.Mailboxes
	Users      *repository.Users
	Forwarder  *forwarder.Forwarder
	Notifier   Notifier
	HTMLParser *parser.HTMLParser
	Domain     string
	Addr       string
	Logger     *slog.Logger
}

// New creates an inbound SMTP server
func New(deps Deps) *Server {
	logger := deps.Logger.With("component", "mailserver")

	be := &backend{
		boxes:      deps.Mailboxes,
		users:      deps.Users,
		forwarder:  deps.Forwarder,
		notifier:   deps.Notifier,
		htmlParser: deps.HTMLParser,
		domain:     strings.ToLower(deps.Domain),
		logger:     logger,
	}

	server := smtp.NewServer(be)
	server.Addr = deps.Addr
	server.Domain = deps.Domain
	server.ReadTimeout = 15 * time.Second
	server.WriteTimeout = 15 * time.Second
	server.MaxRecipients = 20
	server.MaxMessageBytes = 5 << 20

	return &Server{smtp: server, logger: logger}
}

// ListenAndServe blocks serving inbound mail
func (s *Server) ListenAndServe() error {
	s.logger.Info("smtp server listening", "addr", s.smtp.Addr)
	return s.smtp.ListenAndServe()
}

// Close shuts the listener down
func (s *Server) Close() error {
	return s.smtp.Close()
}

type backend struct {
	boxes      *repository.Mailboxes
	users      *repository.Users
	forwarder  *forwarder.Forwarder
	notifier   Notifier
	htmlParser *parser.HTMLParser
	domain     string
	logger     *slog.Logger
}

func (b *backend) NewSession(_ *smtp.Conn) (smtp.Session, error) {
	return &session{backend: b}, nil
}

type session struct {
	backend *backend
	from    string
	to      []string
}

func (s *session) Mail(from string, _ *smtp.MailOptions) error {
	s.from = normalizeEmail(from)
	return nil
}

// Rcpt accepts only addresses that exist as mailboxes on our domain
func (s *session) Rcpt(to string, _ *smtp.RcptOptions) error {
	addr := normalizeEmail(to)

	if !strings.HasSuffix(addr, "@"+s.backend.domain) {
		return &smtp.SMTPError{Code: 550, EnhancedCode: smtp.EnhancedCode{5, 1, 1}, Message: "Relay not permitted"}
	}

	ctx := context.Background()
	if _, err := s.backend.boxes.Get(ctx, addr); err != nil {
		return &smtp.SMTPError{Code: 550, EnhancedCode: smtp.EnhancedCode{5, 1, 1}, Message: "No such mailbox"}
	}

	s.to = append(s.to, addr)
	return nil
}

func (s *session) Data(r io.Reader) error {
	raw, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	msg := ParseMessage(s.from, raw, s.backend.htmlParser)

	ctx := context.Background()
	for _, addr := range s.to {
		if err := s.backend.deliver(ctx, addr, msg); err != nil {
			s.backend.logger.Error("failed to deliver message", "address", addr, "error", err)
		}
	}
	return nil
}

func (s *session) Reset() {
	s.from = ""
	s.to = nil
}

func (s *session) Logout() error {
	return nil
}

// deliver prepends the message to the mailbox, notifies the owner and
// hands a copy to the forwarder when one is configured
func (b *backend) deliver(ctx context.Context, address string, msg models.Message) error {
	box, err := b.boxes.Get(ctx, address)
	if err != nil {
		// Deleted between RCPT and DATA; drop it
		return err
	}

	box.Prepend(msg)
	if err := b.boxes.Save(ctx, box); err != nil {
		return err
	}

	b.logger.Info("message stored", "address", address, "from", msg.From, "subject", msg.Subject)

	if b.notifier != nil {
		b.notifier.NotifyNewMail(ctx, box.Owner, address, &msg)
	}

	if b.forwarder.Enabled() {
		owner, err := b.users.Get(ctx, box.Owner)
		if err == nil && owner.ForwardEmail != "" {
			go b.forwarder.Forward(owner.ForwardEmail, address, &msg)
		}
	}

	return nil
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}
