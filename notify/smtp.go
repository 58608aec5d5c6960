package notify

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	otpAuth "github.com/MrEthical07/otpAuth"
)

var (
	// ErrSMTPConfig is returned by NewSMTP for incomplete settings.
	ErrSMTPConfig = errors.New("notify: invalid smtp config")
	// ErrHeaderInjection rejects recipients or subjects carrying line breaks.
	ErrHeaderInjection = errors.New("notify: header contains line break")
)

// SMTPConfig holds relay settings. Username and Password are optional; when
// set, PLAIN auth is used, which net/smtp only permits over TLS or to
// localhost.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTP delivers mail through a relay.
type SMTP struct {
	cfg  SMTPConfig
	addr string
	auth smtp.Auth
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
	now  func() time.Time
}

// NewSMTP validates cfg and returns a notifier.
func NewSMTP(cfg SMTPConfig) (*SMTP, error) {
	if cfg.Host == "" || cfg.Port <= 0 || cfg.From == "" {
		return nil, fmt.Errorf("%w: host, port and from are required", ErrSMTPConfig)
	}
	s := &SMTP{
		cfg:  cfg,
		addr: net.JoinHostPort(cfg.Host, fmt.Sprint(cfg.Port)),
		send: smtp.SendMail,
		now:  time.Now,
	}
	if cfg.Username != "" {
		s.auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return s, nil
}

// Send delivers a plain-text message. net/smtp has no context support, so
// ctx is only checked before dialing; the mail queue's send timeout bounds
// the wait from the caller's side.
func (s *SMTP) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.ContainsAny(to, "\r\n") || strings.ContainsAny(subject, "\r\n") {
		return ErrHeaderInjection
	}
	return s.send(s.addr, s.auth, s.cfg.From, []string{to}, s.compose(to, subject, body))
}

func (s *SMTP) compose(to, subject, body string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", s.cfg.From)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	fmt.Fprintf(&b, "Date: %s\r\n", s.now().Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	return []byte(b.String())
}

var _ otpAuth.Notifier = (*SMTP)(nil)
