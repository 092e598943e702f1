package models

import "time"

type Floor struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OutletID  uint      `gorm:"not null;index" json:"outlet_id"`
	Name      string    `gorm:"type:varchar(100);not null" json:"name"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}
