package models

import "time"

const (
	ItemPending   = "pending"
	ItemSent      = "sent"
	ItemReady     = "ready"
	ItemServed    = "served"
	ItemCancelled = "cancelled"
)

type OrderItem struct {
	ID       uint     `gorm:"primaryKey" json:"id"`
	OrderID  uint     `gorm:"not null;index" json:"order_id"`
	Order    Order    `gorm:"foreignKey:OrderID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	MenuID   uint     `gorm:"not null" json:"menu_id"`
	Menu     MenuItem `gorm:"foreignKey:MenuID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"menu"`
	TicketID *uint    `gorm:"index" json:"ticket_id,omitempty"`
	Quantity int      `gorm:"not null" json:"quantity"`
	Price    float64  `gorm:"type:decimal(10,2);not null" json:"price"`
	Total    float64  `gorm:"type:decimal(10,2);not null" json:"total"`
	Notes    string   `gorm:"type:text" json:"notes"`
	Station  string   `gorm:"type:varchar(50);not null;default:'kitchen'" json:"station"`
	Status   string   `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}
