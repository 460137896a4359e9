package cleaning

import (
	"aurelion/pkg/contracts/domain"
)

// channelByPayment is the fixed business rule mapping payment methods
// to sales channels.
var channelByPayment = map[domain.PaymentMethod]domain.Channel{
	domain.PaymentCash:       domain.ChannelInStore,
	domain.PaymentDebitCard:  domain.ChannelInStore,
	domain.PaymentQR:         domain.ChannelInStore,
	domain.PaymentCreditCard: domain.ChannelOnline,
	domain.PaymentTransfer:   domain.ChannelOnline,
}

// DeriveChannel returns the sales channel for a payment method. Unknown
// payment methods map to in-store; callers are expected to have dropped
// them already.
func DeriveChannel(method domain.PaymentMethod) domain.Channel {
	if channel, ok := channelByPayment[method]; ok {
		return channel
	}
	return domain.ChannelInStore
}
