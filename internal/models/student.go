package models

import "time"

// Student represents a candidate who may sit exams.
type Student struct {
	ID               string                   `db:"id" json:"id" yaml:"id"`
	RollNumber       string                   `db:"roll_number" json:"roll_number" yaml:"roll_number"`
	Name             string                   `db:"name" json:"name" yaml:"name"`
	Department       string                   `db:"department" json:"department" yaml:"department"`
	Course           string                   `db:"course" json:"course" yaml:"course"`
	Semester         int                      `db:"semester" json:"semester" yaml:"semester"`
	Group            *string                  `db:"group_name" json:"group,omitempty" yaml:"group,omitempty"`
	IsDebarred       bool                     `db:"is_debarred" json:"is_debarred" yaml:"is_debarred"`
	EligibleSubjects StringList               `db:"eligible_subjects" json:"eligible_subjects" yaml:"eligible_subjects"`
	Ineligibilities  SubjectIneligibilityList `db:"ineligibilities" json:"ineligibilities" yaml:"ineligibilities"`
	Unavailability   SlotUnavailabilityList   `db:"unavailability" json:"unavailability" yaml:"unavailability"`
	SeatAssignment   *SeatAssignment          `db:"-" json:"seat_assignment,omitempty" yaml:"seat_assignment,omitempty"`
	CreatedAt        time.Time                `db:"created_at" json:"created_at" yaml:"-"`
	UpdatedAt        time.Time                `db:"updated_at" json:"updated_at" yaml:"-"`
}

// SeatAssignment records where a student sits for one session.
type SeatAssignment struct {
	SessionKey  string `json:"session_key" yaml:"session_key"`
	ExamID      string `json:"exam_id" yaml:"exam_id"`
	ClassroomID string `json:"classroom_id" yaml:"classroom_id"`
	SeatNumber  int    `json:"seat_number" yaml:"seat_number"`
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Search     string
	Department string
	Course     string
	Semester   int
	Debarred   *bool
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}
