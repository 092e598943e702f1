package models

import "time"

const (
	PaymentPending = "pending"
	PaymentPartial = "partial"
	PaymentPaid    = "paid"
)

// Invoice is the billed snapshot of an order. The line items and tax rows
// are frozen at bill time so charge toggling always re-derives from the
// original subtotal and discount. Immutable once paid.
type Invoice struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	InvoiceNumber string `gorm:"type:varchar(50);unique;not null" json:"invoice_number"`
	OrderID       uint   `gorm:"not null;index" json:"order_id"`
	Order         Order  `gorm:"foreignKey:OrderID" json:"order"`
	OutletID      uint   `gorm:"not null;index" json:"outlet_id"`

	Subtotal       float64 `gorm:"type:decimal(10,2);not null" json:"subtotal"`
	DiscountAmount float64 `gorm:"type:decimal(10,2);not null;default:0.00" json:"discount_amount"`
	TaxableAmount  float64 `gorm:"type:decimal(10,2);not null" json:"taxable_amount"`
	TotalTax       float64 `gorm:"type:decimal(10,2);not null;default:0.00" json:"total_tax"`
	ServiceCharge  float64 `gorm:"type:decimal(10,2);not null;default:0.00" json:"service_charge"`
	RoundOff       float64 `gorm:"type:decimal(10,2);not null;default:0.00" json:"round_off"`
	GrandTotal     float64 `gorm:"type:decimal(10,2);not null" json:"grand_total"`

	// Billing options as last applied; kept so updateCharges stays idempotent.
	ApplyServiceCharge   bool    `gorm:"not null;default:false" json:"apply_service_charge"`
	ServiceChargeRate    float64 `gorm:"type:decimal(5,2);not null;default:0.00" json:"service_charge_rate"`
	ServiceChargeRemoved bool    `gorm:"not null;default:false" json:"service_charge_removed"`
	GstRemoved           bool    `gorm:"not null;default:false" json:"gst_removed"`

	CustomerName   string `gorm:"type:varchar(100)" json:"customer_name"`
	CustomerGstin  string `gorm:"type:varchar(20)" json:"customer_gstin,omitempty"`
	IsCancelled    bool   `gorm:"not null;default:false" json:"is_cancelled"`
	CancelReason   string `gorm:"type:varchar(255)" json:"cancel_reason,omitempty"`
	PaymentStatus  string `gorm:"type:varchar(20);not null;default:'pending'" json:"payment_status"`

	Items    []InvoiceItem `gorm:"foreignKey:InvoiceID" json:"items"`
	Taxes    []InvoiceTax  `gorm:"foreignKey:InvoiceID" json:"taxes"`
	Payments []Payment     `gorm:"foreignKey:InvoiceID" json:"payments,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// InvoiceItem is an immutable line snapshot taken when the bill is generated.
type InvoiceItem struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	InvoiceID uint    `gorm:"not null;index" json:"invoice_id"`
	MenuID    uint    `gorm:"not null" json:"menu_id"`
	Name      string  `gorm:"type:varchar(255);not null" json:"name"`
	Quantity  int     `gorm:"not null" json:"quantity"`
	UnitPrice float64 `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	Total     float64 `gorm:"type:decimal(10,2);not null" json:"total"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

// InvoiceTax is one aggregated tax component (code, rate, taxable base,
// amount). Amount is preserved even while GST is removed so restoring the
// charge reproduces the original figure exactly.
type InvoiceTax struct {
	ID            uint    `gorm:"primaryKey" json:"id"`
	InvoiceID     uint    `gorm:"not null;index" json:"invoice_id"`
	Code          string  `gorm:"type:varchar(20);not null" json:"code"`
	Rate          float64 `gorm:"type:decimal(5,2);not null" json:"rate"`
	TaxableAmount float64 `gorm:"type:decimal(10,2);not null" json:"taxable_amount"`
	Amount        float64 `gorm:"type:decimal(10,2);not null" json:"amount"`
}
