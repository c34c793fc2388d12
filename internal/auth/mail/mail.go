// Package mail delivers one-time codes out of band.
package mail

import (
	"bytes"
	"context"
	"html/template"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/shopfront/internal/auth/domain"
)

// Message is a single HTML email.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Mailer sends a Message. Implementations must honour ctx.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

var otpBody = template.Must(template.New("otp").Parse(
	`<p>Your OTP is <b>{{.Code}}</b>. It expires in {{.Minutes}} minutes.</p>`,
))

// OTPMessage renders the email carrying code for purpose.
func OTPMessage(to string, purpose domain.CodePurpose, code string, ttl time.Duration) (Message, error) {
	subject := "Verify Your Email"
	if purpose == domain.PurposeReset {
		subject = "Reset Your Password"
	}

	var buf bytes.Buffer
	err := otpBody.Execute(&buf, struct {
		Code    string
		Minutes int
	}{Code: code, Minutes: int(ttl / time.Minute)})
	if err != nil {
		return Message{}, err
	}

	return Message{To: to, Subject: subject, HTML: buf.String()}, nil
}

// LogMailer writes messages to the log instead of sending them. It is the
// development fallback when no SMTP host is configured, so the code stays
// recoverable from the log.
type LogMailer struct {
	Logger *slog.Logger
}

func (l *LogMailer) Send(ctx context.Context, msg Message) error {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "mail not sent, no smtp transport configured",
		"to", msg.To,
		"subject", msg.Subject,
		"html", msg.HTML,
	)
	return nil
}
