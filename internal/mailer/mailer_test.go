package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"institute-service/common/logger"
	"institute-service/internal/config"

	"github.com/sendgrid/rest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_SelectsProvider(t *testing.T) {
	s, err := New(config.MailConfig{}, logger.Discard())
	require.NoError(t, err)
	assert.IsType(t, &Console{}, s)

	s, err = New(config.MailConfig{Provider: "sendgrid", SendGridAPIKey: "key", FromEmail: "no-reply@example.com"}, logger.Discard())
	require.NoError(t, err)
	assert.IsType(t, &SendGrid{}, s)

	_, err = New(config.MailConfig{Provider: "pigeon"}, logger.Discard())
	assert.Error(t, err)
}

func TestSendGrid_Send(t *testing.T) {
	s := NewSendGrid("key", "Institute", "no-reply@example.com", logger.Discard())

	var captured rest.Request
	s.api = func(req rest.Request) (*rest.Response, error) {
		captured = req
		return &rest.Response{StatusCode: http.StatusAccepted}, nil
	}

	err := s.Send(context.Background(), Message{To: "owner@example.com", Subject: "Your code", Text: "123456"})
	require.NoError(t, err)

	assert.Equal(t, rest.Method(http.MethodPost), captured.Method)
	assert.Equal(t, "https://api.sendgrid.com/v3/mail/send", captured.BaseURL)
	assert.Equal(t, "Bearer key", captured.Headers["Authorization"])

	var body map[string]any
	require.NoError(t, json.Unmarshal(captured.Body, &body))
	assert.Equal(t, "no-reply@example.com", body["from"].(map[string]any)["email"])
}

func TestSendGrid_Errors(t *testing.T) {
	s := NewSendGrid("key", "Institute", "no-reply@example.com", logger.Discard())

	s.api = func(rest.Request) (*rest.Response, error) {
		return &rest.Response{StatusCode: http.StatusUnauthorized, Body: "bad key"}, nil
	}
	assert.ErrorContains(t, s.Send(context.Background(), Message{To: "a@b.co"}), "status 401")

	s.api = func(rest.Request) (*rest.Response, error) {
		return nil, errors.New("dial tcp: timeout")
	}
	assert.ErrorContains(t, s.Send(context.Background(), Message{To: "a@b.co"}), "timeout")
}

func TestMemory(t *testing.T) {
	m := &Memory{}
	_, ok := m.Last()
	assert.False(t, ok)

	require.NoError(t, m.Send(context.Background(), Message{To: "a@b.co", Text: "1"}))
	require.NoError(t, m.Send(context.Background(), Message{To: "a@b.co", Text: "2"}))

	last, ok := m.Last()
	assert.True(t, ok)
	assert.Equal(t, "2", last.Text)
	assert.Len(t, m.Sent(), 2)

	m.Err = errors.New("down")
	assert.Error(t, m.Send(context.Background(), Message{}))
}
