package models

import (
	"time"
)

// Workshop is the top-level owned container. OwnerID is set at creation and never
// changes; ownership transfer is not supported.
type Workshop struct {
	ID        uint    `json:"id" gorm:"primaryKey"`
	Name      string  `json:"name" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	Objective *string `json:"objective" gorm:"type:text" validate:"omitempty,max=2000"`
	OwnerID   uint    `json:"owner_id" gorm:"not null;index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Owner        User          `json:"-" gorm:"foreignKey:OwnerID"`
	Participants []Participant `json:"participants,omitempty" gorm:"foreignKey:WorkshopID;constraint:OnDelete:CASCADE"`
	Sessions     []Session     `json:"sessions,omitempty" gorm:"foreignKey:WorkshopID;constraint:OnDelete:CASCADE"`

	// Computed fields (not stored)
	ParticipantCount int `json:"participant_count,omitempty" gorm:"-"`
	SessionCount     int `json:"session_count,omitempty" gorm:"-"`
}

func (Workshop) TableName() string {
	return "workshops"
}
