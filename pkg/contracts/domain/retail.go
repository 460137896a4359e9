package domain

import (
	"time"
)

// PaymentMethod identifies how a sale was paid.
type PaymentMethod string

const (
	PaymentCash       PaymentMethod = "cash"
	PaymentDebitCard  PaymentMethod = "debit_card"
	PaymentCreditCard PaymentMethod = "credit_card"
	PaymentTransfer   PaymentMethod = "transfer"
	PaymentQR         PaymentMethod = "qr"
)

// KnownPaymentMethods lists every accepted payment method value.
var KnownPaymentMethods = []PaymentMethod{
	PaymentCash,
	PaymentDebitCard,
	PaymentCreditCard,
	PaymentTransfer,
	PaymentQR,
}

// IsValid reports whether the payment method is one of the accepted values.
func (p PaymentMethod) IsValid() bool {
	for _, known := range KnownPaymentMethods {
		if p == known {
			return true
		}
	}
	return false
}

// Channel identifies the sales channel a sale was made through.
type Channel string

const (
	ChannelInStore Channel = "in_store"
	ChannelOnline  Channel = "online"
)

// IsValid reports whether the channel is one of the accepted values.
func (c Channel) IsValid() bool {
	return c == ChannelInStore || c == ChannelOnline
}

// Product represents a catalog product.
type Product struct {
	ID        int     `json:"id_producto" csv:"id_producto" validate:"required,gt=0"`
	Name      string  `json:"nombre_producto" csv:"nombre_producto" validate:"required"`
	Category  string  `json:"categoria" csv:"categoria" validate:"required"`
	UnitPrice float64 `json:"precio_unitario" csv:"precio_unitario" validate:"gte=0"`
}

// Client represents a registered customer.
type Client struct {
	ID         int       `json:"id_cliente" csv:"id_cliente" validate:"required,gt=0"`
	Name       string    `json:"nombre_cliente" csv:"nombre_cliente" validate:"required"`
	Email      string    `json:"email" csv:"email" validate:"omitempty,email"`
	City       string    `json:"ciudad" csv:"ciudad"`
	SignupDate time.Time `json:"fecha_alta" csv:"fecha_alta"`
}

// Sale represents the header of a sales transaction.
type Sale struct {
	ID            int           `json:"id_venta" csv:"id_venta" validate:"required,gt=0"`
	Date          time.Time     `json:"fecha" csv:"fecha" validate:"required"`
	ClientID      int           `json:"id_cliente" csv:"id_cliente" validate:"required,gt=0"`
	PaymentMethod PaymentMethod `json:"medio_pago" csv:"medio_pago" validate:"required"`
	Channel       Channel       `json:"canal" csv:"canal"`
}

// SaleLine represents a single line item of a sale. ProductName is
// optional on input and backfilled from the product catalog when absent.
type SaleLine struct {
	SaleID      int     `json:"id_venta" csv:"id_venta" validate:"required,gt=0"`
	ProductID   int     `json:"id_producto" csv:"id_producto" validate:"required,gt=0"`
	ProductName string  `json:"nombre_producto" csv:"nombre_producto"`
	Quantity    int     `json:"cantidad" csv:"cantidad" validate:"gt=0"`
	UnitPrice   float64 `json:"precio_unitario" csv:"precio_unitario" validate:"gte=0"`
	Amount      float64 `json:"importe" csv:"importe" validate:"gte=0"`
}
