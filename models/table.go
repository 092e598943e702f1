package models

import "time"

// Table statuses. A table carries at most one active session at a time;
// every transition below is decided under a row lock.
const (
	TableAvailable = "available"
	TableOccupied  = "occupied"
	TableRunning   = "running"
	TableBilling   = "billing"
	TableCleaning  = "cleaning"
	TableReserved  = "reserved"
	TableBlocked   = "blocked"
)

type Table struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	OutletID    uint      `gorm:"not null;index" json:"outlet_id"`
	FloorID     uint      `gorm:"not null;index" json:"floor_id"`
	Floor       Floor     `gorm:"foreignKey:FloorID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"floor"`
	TableNumber string    `gorm:"type:varchar(50);not null" json:"table_number"`
	Capacity    int       `gorm:"not null;default:2" json:"capacity"`
	IsMergeable bool      `gorm:"not null;default:true" json:"is_mergeable"`
	IsSplitable bool      `gorm:"not null;default:false" json:"is_splitable"`
	Status      string    `gorm:"type:varchar(20);not null;default:'available'" json:"status"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}

// CanStartSession reports whether a new guest session may open on the table.
func (t *Table) CanStartSession() bool {
	return t.Status == TableAvailable || t.Status == TableReserved
}
