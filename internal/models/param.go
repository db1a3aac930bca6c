package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Param is a named configuration default.
type Param struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Key         string    `gorm:"column:key;uniqueIndex;size:200;not null" json:"key"`
	Value       Value     `gorm:"type:text;not null" json:"value"`
	Description string    `gorm:"size:1000" json:"description"`
	Version     int64     `gorm:"not null;default:0" json:"version"`
	CreatedAt   time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// BeforeCreate assigns the opaque store identifier.
func (p *Param) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

func (Param) TableName() string { return "config_params" }
