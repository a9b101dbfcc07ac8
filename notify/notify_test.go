package notify

import (
	"errors"
	"net/smtp"
	"testing"

	"github.com/Farouk858/product-radar/config"
	"github.com/jordan-wright/email"
	"github.com/stretchr/testify/require"
)

func testConfig() config.EmailConfig {
	return config.EmailConfig{
		User: "radar@example.com",
		Pass: "secret",
		To:   []string{"me@example.com"},
		Host: "smtp.example.com",
		Port: 587,
	}
}

func TestSend_SkipsWithoutCredentials(t *testing.T) {
	m := NewMailer(config.EmailConfig{Host: "smtp.example.com", Port: 587})
	called := false
	m.send = func(*email.Email, string, smtp.Auth) error {
		called = true
		return nil
	}

	require.False(t, m.Configured())
	require.NoError(t, m.Send("subject", "body"))
	require.False(t, called)
}

func TestSend_BuildsMessage(t *testing.T) {
	m := NewMailer(testConfig())
	var (
		got     *email.Email
		gotAddr string
		gotAuth smtp.Auth
	)
	m.send = func(msg *email.Email, addr string, auth smtp.Auth) error {
		got, gotAddr, gotAuth = msg, addr, auth
		return nil
	}

	require.NoError(t, m.Send("Product Radar ~ 2026-10-17", "Daily Product Radar\n"))
	require.Equal(t, "smtp.example.com:587", gotAddr)
	require.NotNil(t, gotAuth)
	require.Equal(t, "radar@example.com", got.From)
	require.Equal(t, []string{"me@example.com"}, got.To)
	require.Equal(t, "Product Radar ~ 2026-10-17", got.Subject)
	require.Equal(t, "Daily Product Radar\n", string(got.Text))
}

func TestSend_FallsBackWithoutAuth(t *testing.T) {
	m := NewMailer(testConfig())
	var auths []smtp.Auth
	m.send = func(_ *email.Email, _ string, auth smtp.Auth) error {
		auths = append(auths, auth)
		if auth != nil {
			return errors.New("smtp: server doesn't support AUTH")
		}
		return nil
	}

	require.NoError(t, m.Send("s", "b"))
	require.Len(t, auths, 2)
	require.Nil(t, auths[1])
}

func TestSend_ReturnsError(t *testing.T) {
	m := NewMailer(testConfig())
	boom := errors.New("connection refused")
	m.send = func(*email.Email, string, smtp.Auth) error { return boom }

	err := m.Send("s", "b")
	require.ErrorIs(t, err, boom)
}
