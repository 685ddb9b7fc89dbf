package models

import "time"

// MemoryShare grants SharedWith visibility of one memory. Only SharedBy can revoke it.
type MemoryShare struct {
	ID         uint      `json:"-" gorm:"primaryKey"`
	MemoryID   string    `json:"memory_id" gorm:"type:varchar(64);not null;index;uniqueIndex:idx_memory_share"`
	SharedWith string    `json:"shared_with" gorm:"type:varchar(128);not null;index;uniqueIndex:idx_memory_share"`
	SharedBy   string    `json:"shared_by" gorm:"type:varchar(128);not null;uniqueIndex:idx_memory_share"`
	SharedAt   time.Time `json:"shared_at" gorm:"autoCreateTime"`
}

// Out strips the record down to its listing shape.
func (s MemoryShare) Out() ShareOut {
	return ShareOut{SharedWith: s.SharedWith, SharedBy: s.SharedBy}
}

// ShareOut is the listing shape of GET /memories/:id/shares.
type ShareOut struct {
	SharedWith string `json:"shared_with"`
	SharedBy   string `json:"shared_by"`
}

// ShareQuery binds the parameters of POST /memories/:id/share-user.
type ShareQuery struct {
	SharedWith string `query:"shared_with" validate:"required"`
	SharedBy   string `query:"shared_by" validate:"required"`
}
