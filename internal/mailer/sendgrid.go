package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

const (
	sendGridHost     = "https://api.sendgrid.com"
	sendGridEndpoint = "/v3/mail/send"
)

type SendGrid struct {
	key    string
	host   string
	from   *sgmail.Email
	logger *slog.Logger
	api    func(rest.Request) (*rest.Response, error)
}

func NewSendGrid(key, fromName, fromEmail string, logger *slog.Logger) *SendGrid {
	return &SendGrid{
		key:    key,
		host:   sendGridHost,
		from:   sgmail.NewEmail(fromName, fromEmail),
		logger: logger,
		api:    sendgrid.API,
	}
}

func (s *SendGrid) prepare(msg Message) *sgmail.SGMailV3 {
	p := sgmail.NewPersonalization()
	p.Subject = msg.Subject
	p.AddTos(sgmail.NewEmail("", msg.To))

	m := sgmail.NewV3Mail()
	m.SetFrom(s.from)
	m.AddPersonalizations(p)
	m.AddContent(sgmail.NewContent("text/plain", msg.Text))
	return m
}

func (s *SendGrid) Send(ctx context.Context, msg Message) error {
	req := sendgrid.GetRequest(s.key, sendGridEndpoint, s.host)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(s.prepare(msg))

	res, err := s.api(req)
	if err != nil {
		s.logger.ErrorContext(ctx, "sendgrid request failed", "error", err)
		return fmt.Errorf("send mail: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		s.logger.ErrorContext(ctx, "sendgrid rejected mail", "status", res.StatusCode, "body", res.Body)
		return fmt.Errorf("send mail: sendgrid status %d", res.StatusCode)
	}

	s.logger.InfoContext(ctx, "mail sent", "subject", msg.Subject)
	return nil
}
