package models

import "time"

const (
	DiscountFlat       = "flat"
	DiscountPercentage = "percentage"
	DiscountCodeType   = "code"
)

// Discount is one reduction attached to an order. Amount is the resolved
// value against the subtotal it was applied on; it becomes immutable once
// the order is billed.
type Discount struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OrderID   uint      `gorm:"not null;index" json:"order_id"`
	Type      string    `gorm:"type:varchar(20);not null" json:"type"`
	Value     float64   `gorm:"type:decimal(10,2);not null" json:"value"`
	Code      *string   `gorm:"type:varchar(50)" json:"code,omitempty"`
	Amount    float64   `gorm:"type:decimal(10,2);not null" json:"amount"`
	AppliedOn float64   `gorm:"type:decimal(10,2);not null" json:"applied_on"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// DiscountCode is a named code definition maintained by the outlet.
type DiscountCode struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Code      string     `gorm:"type:varchar(50);unique;not null" json:"code"`
	Rate      float64    `gorm:"type:decimal(5,2);not null" json:"rate"`
	MaxCap    float64    `gorm:"type:decimal(10,2);not null;default:0.00" json:"max_cap"`
	MinOrder  float64    `gorm:"type:decimal(10,2);not null;default:0.00" json:"min_order"`
	IsActive  bool       `gorm:"not null;default:true" json:"is_active"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	CreatedAt time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time  `gorm:"not null" json:"updated_at"`
}

// Usable reports whether the code may still be redeemed at the given time.
func (dc *DiscountCode) Usable(now time.Time) bool {
	if !dc.IsActive {
		return false
	}
	if dc.ExpiresAt != nil && now.After(*dc.ExpiresAt) {
		return false
	}
	return true
}
