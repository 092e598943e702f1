package models

import "time"

// MenuItem is the catalog surface the order flow consumes: price, kitchen
// station and tax group are read at item-add time.
type MenuItem struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	OutletID   uint      `gorm:"not null;index" json:"outlet_id"`
	Name       string    `gorm:"type:varchar(255);not null" json:"name"`
	Price      float64   `gorm:"type:decimal(10,2);not null" json:"price"`
	Station    string    `gorm:"type:varchar(50);not null;default:'kitchen'" json:"station"`
	TaxGroupID uint      `gorm:"not null" json:"tax_group_id"`
	TaxGroup   TaxGroup  `gorm:"foreignKey:TaxGroupID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"tax_group"`
	IsActive   bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null" json:"updated_at"`
}

type TaxGroup struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	Name       string         `gorm:"type:varchar(100);unique;not null" json:"name"`
	Components []TaxComponent `gorm:"foreignKey:TaxGroupID" json:"components"`
	CreatedAt  time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"not null" json:"updated_at"`
}

// TaxComponent is one leg of a tax group, e.g. CGST 2.5 + SGST 2.5.
type TaxComponent struct {
	ID         uint    `gorm:"primaryKey" json:"id"`
	TaxGroupID uint    `gorm:"not null;index" json:"tax_group_id"`
	Code       string  `gorm:"type:varchar(20);not null" json:"code"`
	Rate       float64 `gorm:"type:decimal(5,2);not null" json:"rate"`
}
