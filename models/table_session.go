package models

import "time"

const (
	SessionActive    = "active"
	SessionCompleted = "completed"
)

// TableSession is the guest sitting on a table. StartedBy is the actor-lock:
// it is written once, inside the session-start transaction, and never again.
type TableSession struct {
	ID         uint         `gorm:"primaryKey" json:"id"`
	TableID    uint         `gorm:"not null;index" json:"table_id"`
	Table      Table        `gorm:"foreignKey:TableID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"table"`
	GuestName  string       `gorm:"type:varchar(100)" json:"guest_name"`
	GuestCount int          `gorm:"not null;default:1" json:"guest_count"`
	StartedBy  uint         `gorm:"not null" json:"started_by"`
	Status     string       `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	OrderID    *uint        `gorm:"index" json:"order_id,omitempty"`
	SessionKey string       `gorm:"type:varchar(64)" json:"session_key"`
	StartedAt  time.Time    `gorm:"not null" json:"started_at"`
	EndedAt    *time.Time   `json:"ended_at,omitempty"`
	Merges     []TableMerge `gorm:"foreignKey:SessionID" json:"merges,omitempty"`
	CreatedAt  time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time    `gorm:"not null" json:"updated_at"`
}

// HeldBy reports whether the given actor holds the session's actor-lock.
func (s *TableSession) HeldBy(actorID uint) bool {
	return s.StartedBy == actorID
}

// TableMerge records one primary->merged table pair. Each pair is a separate
// row so a partial unmerge stays possible.
type TableMerge struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	SessionID      uint      `gorm:"not null;index" json:"session_id"`
	PrimaryTableID uint      `gorm:"not null" json:"primary_table_id"`
	MergedTableID  uint      `gorm:"not null;index" json:"merged_table_id"`
	MergedTable    Table     `gorm:"foreignKey:MergedTableID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"merged_table"`
	CreatedAt      time.Time `gorm:"not null" json:"created_at"`
}
