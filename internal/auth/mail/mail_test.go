package mail_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/aussiebroadwan/shopfront/internal/auth/domain"
	"github.com/aussiebroadwan/shopfront/internal/auth/mail"
	"github.com/stretchr/testify/require"
)

func TestOTPMessage(t *testing.T) {
	t.Run("verify", func(t *testing.T) {
		msg, err := mail.OTPMessage("a@example.com", domain.PurposeVerify, "123456", 10*time.Minute)
		require.NoError(t, err)
		require.Equal(t, "a@example.com", msg.To)
		require.Equal(t, "Verify Your Email", msg.Subject)
		require.Equal(t, "<p>Your OTP is <b>123456</b>. It expires in 10 minutes.</p>", msg.HTML)
	})

	t.Run("reset", func(t *testing.T) {
		msg, err := mail.OTPMessage("a@example.com", domain.PurposeReset, "654321", 10*time.Minute)
		require.NoError(t, err)
		require.Equal(t, "Reset Your Password", msg.Subject)
		require.Contains(t, msg.HTML, "<b>654321</b>")
	})

	t.Run("code is escaped", func(t *testing.T) {
		msg, err := mail.OTPMessage("a@example.com", domain.PurposeVerify, "<script>", time.Minute)
		require.NoError(t, err)
		require.NotContains(t, msg.HTML, "<script>")
	})
}

func TestLogMailer(t *testing.T) {
	var buf bytes.Buffer
	m := &mail.LogMailer{Logger: slog.New(slog.NewJSONHandler(&buf, nil))}

	err := m.Send(context.Background(), mail.Message{To: "a@example.com", Subject: "Verify Your Email", HTML: "<p>hi</p>"})
	require.NoError(t, err)
	require.Contains(t, buf.String(), `"to":"a@example.com"`)
	require.Contains(t, buf.String(), `"subject":"Verify Your Email"`)
}

func TestNewSMTPMailerRequiresHost(t *testing.T) {
	_, err := mail.NewSMTPMailer(mail.SMTPConfig{Port: 587})
	require.ErrorIs(t, err, mail.ErrNoHost)

	m, err := mail.NewSMTPMailer(mail.SMTPConfig{Host: "smtp.example.com", Port: 587, Username: "shop@example.com", Password: "pw"})
	require.NoError(t, err)
	require.NotNil(t, m)
}

func TestSMTPMailerRejectsBadRecipient(t *testing.T) {
	m, err := mail.NewSMTPMailer(mail.SMTPConfig{Host: "smtp.example.com", Port: 587, From: "shop@example.com"})
	require.NoError(t, err)

	err = m.Send(context.Background(), mail.Message{To: "not an address", Subject: "x", HTML: "x"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "mail: to")
}
