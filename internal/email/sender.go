package email

import (
	"context"

	"coupon-api/internal/domain"
)

// Sender define la interfaz para envio de comprobantes de compra.
type Sender interface {
	SendPurchaseReceipt(ctx context.Context, toEmail string, customerName string, coupon domain.Coupon) error
}

type noopSender struct{}

// NewNoopSender devuelve un Sender que descarta los comprobantes. Se usa
// cuando no hay SMTP configurado.
func NewNoopSender() Sender {
	return noopSender{}
}

func (noopSender) SendPurchaseReceipt(_ context.Context, _ string, _ string, _ domain.Coupon) error {
	return nil
}
