package enum

// PaymentMethod 表示結帳時選擇的付款方式
type PaymentMethod string

const (
	PaymentMethodCard           PaymentMethod = "card"
	PaymentMethodCashOnDelivery PaymentMethod = "cod"
)
