package dto

import "github.com/noah-isme/examplanner-api/internal/models"

// StudentRequest creates or replaces a student record.
type StudentRequest struct {
	RollNumber       string                        `json:"roll_number" validate:"required,max=64"`
	Name             string                        `json:"name" validate:"required,max=255"`
	Department       string                        `json:"department" validate:"omitempty,max=128"`
	Course           string                        `json:"course" validate:"required,max=128"`
	Semester         int                           `json:"semester" validate:"required,min=1,max=16"`
	Group            *string                       `json:"group" validate:"omitempty,max=64"`
	IsDebarred       bool                          `json:"is_debarred"`
	EligibleSubjects []string                      `json:"eligible_subjects" validate:"omitempty,dive,required"`
	Ineligibilities  []models.SubjectIneligibility `json:"ineligibilities" validate:"omitempty,dive"`
	Unavailability   []models.SlotUnavailability   `json:"unavailability" validate:"omitempty,dive"`
}

// ClassroomRequest creates or replaces a classroom. Either BenchCapacity or
// one entry per bench in BenchCapacities must be supplied.
type ClassroomRequest struct {
	Name            string                      `json:"name" validate:"required,max=128"`
	Building        string                      `json:"building" validate:"omitempty,max=128"`
	Rows            int                         `json:"rows" validate:"required,min=1,max=100"`
	Columns         int                         `json:"columns" validate:"required,min=1,max=100"`
	BenchCapacity   int                         `json:"bench_capacity" validate:"min=0,max=10"`
	BenchCapacities []int                       `json:"bench_capacities" validate:"omitempty,dive,min=1,max=10"`
	Unavailability  []models.SlotUnavailability `json:"unavailability" validate:"omitempty,dive"`
}

// ExamSlotRequest creates or replaces an exam slot.
type ExamSlotRequest struct {
	SubjectName     string  `json:"subject_name" validate:"required,max=255"`
	SubjectCode     string  `json:"subject_code" validate:"required,max=64"`
	Department      string  `json:"department" validate:"omitempty,max=128"`
	Course          string  `json:"course" validate:"required,max=128"`
	Semester        int     `json:"semester" validate:"required,min=1,max=16"`
	Group           *string `json:"group" validate:"omitempty,max=64"`
	Date            string  `json:"date" validate:"required,datetime=2006-01-02"`
	Time            string  `json:"time" validate:"required,datetime=15:04"`
	DurationMinutes int     `json:"duration_minutes" validate:"omitempty,min=1,max=600"`
}

// InvigilatorRequest creates or replaces an invigilator. IsAvailable defaults to true.
type InvigilatorRequest struct {
	Name           string                      `json:"name" validate:"required,max=255"`
	Department     string                      `json:"department" validate:"omitempty,max=128"`
	IsAvailable    *bool                       `json:"is_available"`
	Unavailability []models.SlotUnavailability `json:"unavailability" validate:"omitempty,dive"`
}
