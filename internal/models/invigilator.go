package models

import "time"

// Invigilator supervises exam rooms.
type Invigilator struct {
	ID             string                 `db:"id" json:"id" yaml:"id"`
	Name           string                 `db:"name" json:"name" yaml:"name"`
	Department     string                 `db:"department" json:"department" yaml:"department"`
	IsAvailable    bool                   `db:"is_available" json:"is_available" yaml:"is_available"`
	Unavailability SlotUnavailabilityList `db:"unavailability" json:"unavailability" yaml:"unavailability"`
	Duties         DutyRecordList         `db:"duties" json:"duties" yaml:"duties"`
	CreatedAt      time.Time              `db:"created_at" json:"created_at" yaml:"-"`
	UpdatedAt      time.Time              `db:"updated_at" json:"updated_at" yaml:"-"`
}

// DutyCount returns the number of sessions the invigilator has covered.
func (i Invigilator) DutyCount() int {
	return len(i.Duties)
}

// DutyRecord is one accumulated invigilation duty.
type DutyRecord struct {
	SessionKey  string `json:"session_key" yaml:"session_key"`
	ExamID      string `json:"exam_id" yaml:"exam_id"`
	ClassroomID string `json:"classroom_id" yaml:"classroom_id"`
}

// InvigilatorFilter captures filtering options for listing invigilators.
type InvigilatorFilter struct {
	Search     string
	Department string
	Available  *bool
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}
