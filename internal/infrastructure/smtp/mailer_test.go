package smtp

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMessage_Headers(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	msg := string(buildMessage("noreply@example.com", "a@b.com", "Your OTP Code", "<b>123456</b>", now))

	assert.True(t, strings.HasPrefix(msg, "From: noreply@example.com\r\nTo: a@b.com\r\n"))
	assert.Contains(t, msg, "Content-Type: text/html; charset=\"utf-8\"\r\n")
	assert.Contains(t, msg, "Subject: Your OTP Code\r\n")
	assert.True(t, strings.HasSuffix(msg, "\r\n\r\n<b>123456</b>"))
}

func TestSendEmail_UsesConfiguredServer(t *testing.T) {
	var gotAddr, gotFrom string
	var gotTo []string
	m := &mailer{
		cfg: Config{Host: "smtp.local", Port: "1025", From: "noreply@example.com"},
		send: func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
			gotAddr, gotFrom, gotTo = addr, from, to
			assert.Nil(t, a)
			return nil
		},
	}

	require.NoError(t, m.SendEmail(context.Background(), "a@b.com", "hi", "body"))
	assert.Equal(t, "smtp.local:1025", gotAddr)
	assert.Equal(t, "noreply@example.com", gotFrom)
	assert.Equal(t, []string{"a@b.com"}, gotTo)
}

func TestSendEmail_WrapsTransportError(t *testing.T) {
	m := &mailer{
		cfg:  Config{Host: "smtp.local", Port: "25"},
		send: func(string, smtp.Auth, string, []string, []byte) error { return errors.New("refused") },
	}
	err := m.SendEmail(context.Background(), "a@b.com", "hi", "body")
	assert.ErrorContains(t, err, "refused")
}
