package entity

const (
	PaymentUnpaid = "unpaid"
	PaymentPaid   = "paid"
)

const (
	MethodCash = "cash"
	MethodUPI  = "upi"
	MethodBank = "bank"
)
