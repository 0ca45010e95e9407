package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/rl1809/storefront-cart/internal/core/domain"
)

const (
	MsgItemAdded     = "Product has been added to the cart!"
	MsgStockVolatile = "The system is not sure about the stock quantity (volatile). Product has been added to the cart for pre-reservation."
	MsgOutOfStock    = "Product is out of stock and has not been added to the cart."
	MsgLoadFailed    = "Your cart could not be loaded. Please try again later."
)

var closeAction = domain.NotificationAction{Label: "OK", Action: "close"}

func newNotification(typ domain.NotificationType, message string) domain.Notification {
	return domain.Notification{
		ID:        uuid.NewString(),
		Type:      typ,
		Message:   message,
		Action1:   closeAction,
		CreatedAt: time.Now(),
	}
}

// notify detaches from the caller's cancellation so a finished request does
// not drop its own notification.
func (s *CartService) notify(ctx context.Context, typ domain.NotificationType, message string) {
	s.notifier.Notify(context.WithoutCancel(ctx), newNotification(typ, message))
}
