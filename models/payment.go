package models

import "time"

const (
	PayModeCash = "cash"
	PayModeCard = "card"
	PayModeUPI  = "upi"
)

// Payment is one settlement against an invoice. The sum of payments drives
// Invoice.PaymentStatus.
type Payment struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	InvoiceID   uint      `gorm:"not null;index" json:"invoice_id"`
	OrderID     uint      `gorm:"not null;index" json:"order_id"`
	Mode        string    `gorm:"type:varchar(20);not null;default:'cash'" json:"mode"`
	Amount      float64   `gorm:"type:decimal(10,2);not null" json:"amount"`
	Tip         float64   `gorm:"type:decimal(10,2);not null;default:0.00" json:"tip"`
	ReferenceID string    `gorm:"type:varchar(64)" json:"reference_id"`
	ReceivedBy  uint      `gorm:"not null" json:"received_by"`
	PaidAt      time.Time `gorm:"not null" json:"paid_at"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
}
