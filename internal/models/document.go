package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Document is the relational row backing one stored record. Data holds the
// record's fields as a JSON object.
type Document struct {
	ID        string    `gorm:"primaryKey"`
	OwnerID   string    `gorm:"index:idx_documents_owner_kind;not null"`
	Kind      string    `gorm:"index:idx_documents_owner_kind;not null"`
	Data      string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
}

func (d *Document) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}
