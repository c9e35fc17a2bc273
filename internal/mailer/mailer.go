package mailer

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/Varun5711/modesta/internal/config"
	"github.com/Varun5711/modesta/internal/logger"
	"github.com/Varun5711/modesta/internal/qrcode"
	"github.com/wneessen/go-mail"
)

// Mailer delivers the account verification message.
type Mailer interface {
	SendVerification(ctx context.Context, to, token string) error
}

type SMTPMailer struct {
	cfg      config.SMTPConfig
	renderer *Renderer
	log      *logger.Logger
	timeout  time.Duration
}

func NewSMTPMailer(cfg config.SMTPConfig, renderer *Renderer) *SMTPMailer {
	return &SMTPMailer{
		cfg:      cfg,
		renderer: renderer,
		log:      logger.New("mailer"),
		timeout:  10 * time.Second,
	}
}

func (m *SMTPMailer) client() (*mail.Client, error) {
	opts := []mail.Option{
		mail.WithPort(m.cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
		mail.WithTimeout(m.timeout),
	}
	if m.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.cfg.Username),
			mail.WithPassword(m.cfg.Password),
		)
	}
	return mail.NewClient(m.cfg.Host, opts...)
}

func (m *SMTPMailer) SendVerification(ctx context.Context, to, token string) error {
	email, err := m.renderer.Verification(to, token)
	if err != nil {
		return err
	}

	msg := mail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return fmt.Errorf("invalid sender: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("invalid recipient: %w", err)
	}
	msg.Subject(email.Subject)
	msg.SetBodyString(mail.TypeTextPlain, email.Text)
	msg.AddAlternativeString(mail.TypeTextHTML, email.HTML)

	client, err := m.client()
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send verification email: %w", err)
	}

	m.log.Info("Verification email sent to %s", to)
	return nil
}

// ConsoleMailer writes the plain-text message and a terminal QR code of the
// link instead of sending it. Used when SMTP is not configured.
type ConsoleMailer struct {
	mu       sync.Mutex
	out      io.Writer
	renderer *Renderer
}

func NewConsoleMailer(out io.Writer, renderer *Renderer) *ConsoleMailer {
	return &ConsoleMailer{out: out, renderer: renderer}
}

func (m *ConsoleMailer) SendVerification(_ context.Context, to, token string) error {
	email, err := m.renderer.Verification(to, token)
	if err != nil {
		return err
	}

	qr, err := qrcode.ASCII(email.Link)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	_, err = fmt.Fprintf(m.out, "To: %s\nSubject: %s\n\n%s\n%s\n", to, email.Subject, email.Text, qr)
	return err
}

// New picks SMTP delivery when configured and the console otherwise.
func New(cfg config.SMTPConfig, renderer *Renderer, console io.Writer) Mailer {
	if cfg.Enabled() {
		return NewSMTPMailer(cfg, renderer)
	}
	return NewConsoleMailer(console, renderer)
}
