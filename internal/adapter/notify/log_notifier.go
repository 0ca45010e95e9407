package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/rl1809/storefront-cart/internal/core/domain"
)

type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.Named("notification")}
}

func (l *LogNotifier) Notify(_ context.Context, n domain.Notification) {
	l.logger.Info(n.Message,
		zap.String("id", n.ID),
		zap.String("type", string(n.Type)))
}
