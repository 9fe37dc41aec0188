package email

import (
	"context"
	"fmt"
	"net/mail"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/sirupsen/logrus"

	"github.com/seldo/newww/internal/core/domain/notification"
	"github.com/seldo/newww/internal/core/ports"
)

// sesSender is the part of *sesv2.Client the gateway uses
type sesSender interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESConfig selects the region and, optionally, static credentials.
// Without credentials the default AWS chain applies.
type SESConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

// SESGateway delivers notifications through Amazon SES v2
type SESGateway struct {
	config    *Config
	logger    *logrus.Logger
	client    sesSender
	templates *renderer
}

func NewSESGateway(ctx context.Context, sesCfg SESConfig, config *Config, logger *logrus.Logger) (*SESGateway, error) {
	opts := []func(*awsconfig.LoadOptions) error{}
	if sesCfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(sesCfg.Region))
	}
	if sesCfg.AccessKeyID != "" && sesCfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(sesCfg.AccessKeyID, sesCfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	return newSESGateway(sesv2.NewFromConfig(awsCfg), config, logger)
}

func newSESGateway(client sesSender, config *Config, logger *logrus.Logger) (*SESGateway, error) {
	templates, err := loadTemplates()
	if err != nil {
		return nil, fmt.Errorf("failed to load email templates: %w", err)
	}
	return &SESGateway{
		config:    config,
		logger:    logger,
		client:    client,
		templates: templates,
	}, nil
}

var _ ports.NotificationGateway = (*SESGateway)(nil)

func (g *SESGateway) Send(ctx context.Context, msg *notification.Message) error {
	htmlContent, textContent, err := g.templates.render(g.config, msg)
	if err != nil {
		return fmt.Errorf("failed to render %s email: %w", msg.Kind, err)
	}

	from := (&mail.Address{Name: g.config.FromName, Address: g.config.FromEmail}).String()
	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(from),
		Destination: &types.Destination{
			ToAddresses: []string{msg.To},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(msg.Subject), Charset: aws.String("UTF-8")},
				Body: &types.Body{
					Html: &types.Content{Data: aws.String(htmlContent), Charset: aws.String("UTF-8")},
					Text: &types.Content{Data: aws.String(textContent), Charset: aws.String("UTF-8")},
				},
			},
		},
	}

	out, err := g.client.SendEmail(ctx, input)
	if err != nil {
		if g.logger != nil {
			g.logger.WithFields(logrus.Fields{
				"to":      msg.To,
				"subject": msg.Subject,
			}).WithError(err).Error("Failed to send email")
		}
		return fmt.Errorf("failed to send email: %w", err)
	}

	if g.logger != nil {
		g.logger.WithFields(logrus.Fields{
			"to":         msg.To,
			"subject":    msg.Subject,
			"message_id": aws.ToString(out.MessageId),
		}).Info("Email sent successfully")
	}
	return nil
}
