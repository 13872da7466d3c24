package models

import (
	"time"

	"gorm.io/datatypes"
)

// Participant is an individual attending a workshop. ExtraData carries free-form
// attributes (age, contact, clinical notes) without schema changes.
type Participant struct {
	ID         uint              `json:"id" gorm:"primaryKey"`
	Name       string            `json:"name" gorm:"not null;size:200" validate:"required,min=1,max=200"`
	WorkshopID uint              `json:"workshop_id" gorm:"not null;index"`
	ExtraData  datatypes.JSONMap `json:"extra_data,omitempty" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Workshop     Workshop              `json:"-" gorm:"foreignKey:WorkshopID"`
	Observations []ObservationalRecord `json:"-" gorm:"foreignKey:ParticipantID;constraint:OnDelete:CASCADE"`
}

func (Participant) TableName() string {
	return "participants"
}
