package enum

// PaymentMethod is how a receipt was paid
type PaymentMethod string

const (
	PaymentMethodCheque        PaymentMethod = "Cheque"
	PaymentMethodTransferencia PaymentMethod = "Transferencia"
	PaymentMethodEfectivo      PaymentMethod = "Efectivo"
	PaymentMethodOtro          PaymentMethod = "Otro"
)

func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCheque, PaymentMethodTransferencia, PaymentMethodEfectivo, PaymentMethodOtro:
		return true
	}
	return false
}

// UsesBankDetails reports whether check number and bank account apply.
func (m PaymentMethod) UsesBankDetails() bool {
	return m == PaymentMethodCheque || m == PaymentMethodTransferencia
}

// AuthProvider identifies how a user signs in
type AuthProvider string

const (
	AuthProviderLocal  AuthProvider = "local"
	AuthProviderGoogle AuthProvider = "google"
)
