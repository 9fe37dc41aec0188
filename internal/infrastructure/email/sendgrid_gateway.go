package email

import (
	"context"
	"fmt"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/sirupsen/logrus"

	"github.com/seldo/newww/internal/core/domain/notification"
	"github.com/seldo/newww/internal/core/ports"
)

// sendGridSender is the part of *sendgrid.Client the gateway uses
type sendGridSender interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// SendGridGateway delivers notifications through the SendGrid v3 API
type SendGridGateway struct {
	config    *Config
	logger    *logrus.Logger
	client    sendGridSender
	templates *renderer
}

// NewSendGridGateway creates a gateway authenticated with apiKey
func NewSendGridGateway(apiKey string, config *Config, logger *logrus.Logger) (*SendGridGateway, error) {
	return newSendGridGateway(sendgrid.NewSendClient(apiKey), config, logger)
}

func newSendGridGateway(client sendGridSender, config *Config, logger *logrus.Logger) (*SendGridGateway, error) {
	templates, err := loadTemplates()
	if err != nil {
		return nil, fmt.Errorf("failed to load email templates: %w", err)
	}
	return &SendGridGateway{
		config:    config,
		logger:    logger,
		client:    client,
		templates: templates,
	}, nil
}

var _ ports.NotificationGateway = (*SendGridGateway)(nil)

// Send renders msg and hands it to SendGrid. A non-2xx response counts as a failure.
func (g *SendGridGateway) Send(ctx context.Context, msg *notification.Message) error {
	htmlContent, textContent, err := g.templates.render(g.config, msg)
	if err != nil {
		return fmt.Errorf("failed to render %s email: %w", msg.Kind, err)
	}

	from := mail.NewEmail(g.config.FromName, g.config.FromEmail)
	recipient := mail.NewEmail(msg.RecipientName, msg.To)
	message := mail.NewSingleEmail(from, msg.Subject, recipient, textContent, htmlContent)

	response, err := g.client.SendWithContext(ctx, message)
	if err != nil {
		if g.logger != nil {
			g.logger.WithFields(logrus.Fields{
				"to":      msg.To,
				"subject": msg.Subject,
			}).WithError(err).Error("Failed to send email")
		}
		return fmt.Errorf("failed to send email: %w", err)
	}
	if response.StatusCode >= 300 {
		if g.logger != nil {
			g.logger.WithFields(logrus.Fields{
				"to":          msg.To,
				"subject":     msg.Subject,
				"status_code": response.StatusCode,
			}).Error("SendGrid rejected email")
		}
		return fmt.Errorf("sendgrid returned status %d", response.StatusCode)
	}

	if g.logger != nil {
		g.logger.WithFields(logrus.Fields{
			"to":          msg.To,
			"subject":     msg.Subject,
			"status_code": response.StatusCode,
		}).Info("Email sent successfully")
	}
	return nil
}
