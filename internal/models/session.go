package models

import (
	"time"

	"gorm.io/datatypes"
)

// Session is one therapeutic activity instance within a workshop. Materials is an
// ordered list of material names; nil means the session declares no materials.
type Session struct {
	ID         uint                              `json:"id" gorm:"primaryKey"`
	WorkshopID uint                              `json:"workshop_id" gorm:"not null;index"`
	Prompt     string                            `json:"prompt" gorm:"type:text;not null" validate:"required,min=1"`
	Motivation *string                           `json:"motivation" gorm:"type:text" validate:"omitempty,max=4000"`
	Materials  datatypes.JSONSlice[string]       `json:"materials,omitempty" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Workshop     Workshop              `json:"-" gorm:"foreignKey:WorkshopID"`
	Observations []ObservationalRecord `json:"-" gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE"`

	// Computed fields (not stored)
	ObservationCount int `json:"observation_count,omitempty" gorm:"-"`
}

func (Session) TableName() string {
	return "sessions"
}
