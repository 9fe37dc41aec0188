package ports

import (
	"context"

	"github.com/seldo/newww/internal/core/domain/notification"
)

// NotificationGateway delivers outbound email.
type NotificationGateway interface {
	Send(ctx context.Context, msg *notification.Message) error
}
