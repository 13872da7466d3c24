package models

import (
	"time"

	"gorm.io/datatypes"
)

// ObservationalRecord is one versioned answer-set for a (session, participant) pair.
// History is retained: redoing an observation inserts the next version instead of
// overwriting. The composite unique index keeps versions strictly increasing
// under concurrent saves.
type ObservationalRecord struct {
	ID            uint `json:"id" gorm:"primaryKey"`
	SessionID     uint `json:"session_id" gorm:"not null;index;uniqueIndex:idx_session_participant_version"`
	ParticipantID uint `json:"participant_id" gorm:"not null;index;uniqueIndex:idx_session_participant_version"`
	Version       int  `json:"version" gorm:"not null;uniqueIndex:idx_session_participant_version"`

	// Question ID -> answer value, e.g. {"entry_on_time": "yes"}
	Answers datatypes.JSONMap `json:"answers" gorm:"type:jsonb;not null"`

	FreeformNotes *string `json:"freeform_notes" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`

	// Relations
	Session     Session     `json:"-" gorm:"foreignKey:SessionID"`
	Participant Participant `json:"-" gorm:"foreignKey:ParticipantID"`
}

func (ObservationalRecord) TableName() string {
	return "observational_records"
}

// GetAnswer returns the stored answer for a question, or "" when unanswered.
func (r *ObservationalRecord) GetAnswer(questionID string) string {
	if r.Answers == nil {
		return ""
	}
	if v, ok := r.Answers[questionID].(string); ok {
		return v
	}
	return ""
}
