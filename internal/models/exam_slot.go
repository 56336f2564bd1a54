package models

import (
	"fmt"
	"time"
)

const (
	// ExamDateLayout is the wire format of ExamSlot.Date.
	ExamDateLayout = "2006-01-02"
	// ExamTimeLayout is the wire format of ExamSlot.Time.
	ExamTimeLayout = "15:04"
)

// ExamSlot is one scheduled paper.
type ExamSlot struct {
	ID              string    `db:"id" json:"id" yaml:"id"`
	SubjectName     string    `db:"subject_name" json:"subject_name" yaml:"subject_name"`
	SubjectCode     string    `db:"subject_code" json:"subject_code" yaml:"subject_code"`
	Department      string    `db:"department" json:"department" yaml:"department"`
	Course          string    `db:"course" json:"course" yaml:"course"`
	Semester        int       `db:"semester" json:"semester" yaml:"semester"`
	Group           *string   `db:"group_name" json:"group,omitempty" yaml:"group,omitempty"`
	Date            string    `db:"exam_date" json:"date" yaml:"date"`
	Time            string    `db:"exam_time" json:"time" yaml:"time"`
	DurationMinutes int       `db:"duration_minutes" json:"duration_minutes" yaml:"duration_minutes"`
	CreatedAt       time.Time `db:"created_at" json:"created_at" yaml:"-"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at" yaml:"-"`
}

// SessionKey identifies the set of concurrent exams this slot belongs to.
func (e ExamSlot) SessionKey() string {
	return fmt.Sprintf("%s %s", e.Date, e.Time)
}

// StartsAt parses the slot's date and time.
func (e ExamSlot) StartsAt() (time.Time, error) {
	return time.Parse(ExamDateLayout+" "+ExamTimeLayout, e.SessionKey())
}

// ExamSlotFilter describes query params for listing exam slots.
type ExamSlotFilter struct {
	Department string
	Course     string
	Semester   int
	DateFrom   string
	DateTo     string
	Page       int
	PageSize   int
	SortOrder  string
}
