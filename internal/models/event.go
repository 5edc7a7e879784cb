package models

import (
	"gorm.io/gorm"

	"dreamportal/internal/uuid"
)

// DefaultEventTitle is the placeholder for events saved without a title.
const DefaultEventTitle = "Evento"

// EventDateLayout is the calendar-date wire format (no time component).
const EventDateLayout = "2006-01-02"

// CalendarEvent is a dated entry on the shared calendar. Events are
// created and deleted, never edited in place.
type CalendarEvent struct {
	ID          string `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID     string `gorm:"type:uuid;index;not null" json:"owner_id"`
	Title       string `gorm:"not null" json:"title"`
	Date        string `gorm:"index;not null" json:"date"`
	Description string `json:"description"`
}

// BeforeCreate hook generates a UUIDv7 for new rows.
func (e *CalendarEvent) BeforeCreate(tx *gorm.DB) error {
	e.EnsureIdentity()
	return nil
}

// EnsureIdentity fills in the ID if unset, for backends that bypass GORM.
func (e *CalendarEvent) EnsureIdentity() {
	if e.ID == "" {
		e.ID = uuid.New()
	}
}
