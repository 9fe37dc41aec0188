package email

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/seldo/newww/configs"
	"github.com/seldo/newww/internal/core/ports"
)

// NewGateway builds the notification gateway named by cfg.Provider
func NewGateway(ctx context.Context, cfg *configs.EmailConfig, logger *logrus.Logger) (ports.NotificationGateway, error) {
	shared := &Config{
		FromEmail:   cfg.FromEmail,
		FromName:    cfg.FromName,
		CompanyName: cfg.CompanyName,
	}

	switch cfg.Provider {
	case configs.EmailProviderSendGrid:
		return NewSendGridGateway(cfg.SendGridAPIKey, shared, logger)
	case configs.EmailProviderSES:
		return NewSESGateway(ctx, SESConfig{
			Region:          cfg.SESRegion,
			AccessKeyID:     cfg.SESAccessKeyID,
			SecretAccessKey: cfg.SESSecretKey,
		}, shared, logger)
	default:
		return nil, fmt.Errorf("unsupported email provider %q", cfg.Provider)
	}
}
