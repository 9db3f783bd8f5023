package models

import "time"

type PaymentStatus string

const (
	PaymentPending    PaymentStatus = "Pending"
	PaymentSuccessful PaymentStatus = "Successful"
	PaymentFailed     PaymentStatus = "Failed"
)

const (
	MethodVisaMastercard  = "Visa/Mastercard"
	MethodAmericanExpress = "American Express"
)

// CardDetails is opaque card metadata; only presence is checked.
type CardDetails struct {
	NameOnCard string `json:"nameOnCard" binding:"required"`
	CardNumber string `json:"cardNumber" binding:"required"`
	ExpiryDate string `json:"expiryDate" binding:"required"`
	CVV        string `json:"cvv,omitempty" binding:"required"`
}

// Masked drops the CVV and keeps the last four digits of the card number.
func (c CardDetails) Masked() CardDetails {
	n := c.CardNumber
	if len(n) > 4 {
		n = "****" + n[len(n)-4:]
	}
	return CardDetails{NameOnCard: c.NameOnCard, CardNumber: n, ExpiryDate: c.ExpiryDate}
}

type Payment struct {
	ID            int64         `json:"id"`
	BookingID     int64         `json:"bookingId"`
	Amount        float64       `json:"amount"`
	PaymentMethod string        `json:"paymentMethod"`
	CardDetails   CardDetails   `json:"cardDetails"`
	Status        PaymentStatus `json:"status"`
	TransactionID string        `json:"transactionId"`
	PaymentDate   time.Time     `json:"paymentDate"`
}

type PayInput struct {
	BookingID     int64       `json:"bookingId" binding:"required,gt=0"`
	PaymentMethod string      `json:"paymentMethod" binding:"required,paymentmethod"`
	CardDetails   CardDetails `json:"cardDetails"`
}
