package enum

// PaymentMode is the tender type recorded against an invoice payment.
type PaymentMode string

const (
	PaymentModeCash   PaymentMode = "CASH"
	PaymentModeOnline PaymentMode = "ONLINE"
	PaymentModeUPI    PaymentMode = "UPI"
)

// Valid reports whether the mode is one of the known tender types.
func (m PaymentMode) Valid() bool {
	switch m {
	case PaymentModeCash, PaymentModeOnline, PaymentModeUPI:
		return true
	}
	return false
}
