package mail

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"opendfood/config"
	"opendfood/notify-svc/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captured struct {
	addr string
	auth smtp.Auth
	from string
	to   []string
	msg  string
}

func newTestMailer(cfg config.MailConfig, sendErr error) (*SMTPMailer, *captured) {
	m := NewSMTPMailer(cfg)
	c := &captured{}
	m.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		c.addr, c.auth, c.from, c.to, c.msg = addr, a, from, to, string(msg)
		return sendErr
	}
	m.now = func() time.Time { return time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC) }
	return m, c
}

func TestSMTPMailer_Send(t *testing.T) {
	m, c := newTestMailer(config.MailConfig{Host: "mail.local", Port: "1025", From: "orders@opendfood.local"}, nil)

	err := m.Send(context.Background(), domain.Email{
		To:      "kitchen@bistro.test",
		Subject: "New order ORD-1",
		Body:    "line one\nline two\n",
	})
	require.NoError(t, err)

	assert.Equal(t, "mail.local:1025", c.addr)
	assert.Nil(t, c.auth)
	assert.Equal(t, "orders@opendfood.local", c.from)
	assert.Equal(t, []string{"kitchen@bistro.test"}, c.to)

	headers, body, ok := strings.Cut(c.msg, "\r\n\r\n")
	require.True(t, ok)
	assert.Contains(t, headers, "Subject: New order ORD-1")
	assert.Contains(t, headers, "To: kitchen@bistro.test")
	assert.Contains(t, headers, "Date: Mon, 19 Oct 2026 09:00:00 +0000")
	assert.Contains(t, headers, "Content-Type: text/plain; charset=UTF-8")
	assert.Equal(t, "line one\r\nline two\r\n", body)
}

func TestSMTPMailer_UsesAuthWhenConfigured(t *testing.T) {
	m, c := newTestMailer(config.MailConfig{Host: "mail.local", Port: "587", User: "u", Password: "p", From: "x@y"}, nil)
	require.NoError(t, m.Send(context.Background(), domain.Email{To: "a@b", Subject: "s", Body: "b"}))
	assert.NotNil(t, c.auth)
}

func TestSMTPMailer_Errors(t *testing.T) {
	m, _ := newTestMailer(config.MailConfig{Host: "mail.local", Port: "25"}, errors.New("454 try later"))

	err := m.Send(context.Background(), domain.Email{To: "a@b", Subject: "s"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "454 try later")

	err = m.Send(context.Background(), domain.Email{To: "a@b\r\nBcc: c@d", Subject: "s"})
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, m.Send(ctx, domain.Email{To: "a@b"}), context.Canceled)
}
