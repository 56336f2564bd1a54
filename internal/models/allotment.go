package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// CandidateRef identifies a student together with the exam they are sitting.
type CandidateRef struct {
	StudentID  string `json:"student_id" yaml:"student_id"`
	RollNumber string `json:"roll_number" yaml:"roll_number"`
	Course     string `json:"course" yaml:"course"`
	ExamID     string `json:"exam_id" yaml:"exam_id"`
}

// Seat is one cell of a classroom; Student is nil when the seat is left empty.
type Seat struct {
	ClassroomID string        `json:"classroom_id" yaml:"classroom_id"`
	SeatNumber  int           `json:"seat_number" yaml:"seat_number"`
	Row         int           `json:"row" yaml:"row"`
	Column      int           `json:"column" yaml:"column"`
	Position    int           `json:"position" yaml:"position"`
	Student     *CandidateRef `json:"student,omitempty" yaml:"student,omitempty"`
}

// BenchKey identifies the bench a seat belongs to.
func (s Seat) BenchKey() BenchKey {
	return BenchKey{ClassroomID: s.ClassroomID, Row: s.Row, Column: s.Column}
}

// BenchKey identifies a bench inside a classroom.
type BenchKey struct {
	ClassroomID string
	Row         int
	Column      int
}

// EligibilityConflict reports a student eligible for more than one concurrent exam.
type EligibilityConflict struct {
	StudentID  string   `json:"student_id" yaml:"student_id"`
	ExamIDs    []string `json:"exam_ids" yaml:"exam_ids"`
	AssignedTo string   `json:"assigned_to" yaml:"assigned_to"`
}

// SeatPlan is the seating produced for one session.
type SeatPlan struct {
	SessionKey        string                `json:"session_key" yaml:"session_key"`
	ExamIDs           []string              `json:"exam_ids" yaml:"exam_ids"`
	Seats             []Seat                `json:"seats" yaml:"seats"`
	Unseated          []CandidateRef        `json:"unseated" yaml:"unseated"`
	CapacityShortfall int                   `json:"capacity_shortfall" yaml:"capacity_shortfall"`
	Conflicts         []EligibilityConflict `json:"conflicts,omitempty" yaml:"conflicts,omitempty"`
}

// SeatedCount returns the number of occupied seats.
func (p SeatPlan) SeatedCount() int {
	count := 0
	for _, seat := range p.Seats {
		if seat.Student != nil {
			count++
		}
	}
	return count
}

// InvigilatorAssignment records one invigilation duty.
type InvigilatorAssignment struct {
	ExamID        string `json:"exam_id" yaml:"exam_id"`
	ClassroomID   string `json:"classroom_id" yaml:"classroom_id"`
	InvigilatorID string `json:"invigilator_id" yaml:"invigilator_id"`
}

// InvigilatorShortfall reports a room that could not be fully staffed.
type InvigilatorShortfall struct {
	ClassroomID string `json:"classroom_id" yaml:"classroom_id"`
	Required    int    `json:"required" yaml:"required"`
	Assigned    int    `json:"assigned" yaml:"assigned"`
}

// SessionAllotment bundles the seat plan and duties of one session.
type SessionAllotment struct {
	SessionKey            string                  `json:"session_key" yaml:"session_key"`
	Plan                  SeatPlan                `json:"plan" yaml:"plan"`
	Assignments           []InvigilatorAssignment `json:"assignments" yaml:"assignments"`
	InvigilatorShortfalls []InvigilatorShortfall  `json:"invigilator_shortfalls" yaml:"invigilator_shortfalls"`
}

// PlanTotals adds up the outcome of a set of planned sessions.
type PlanTotals struct {
	Sessions          int `json:"sessions" yaml:"sessions"`
	Seated            int `json:"seated" yaml:"seated"`
	Unseated          int `json:"unseated" yaml:"unseated"`
	CapacityShortfall int `json:"capacity_shortfall" yaml:"capacity_shortfall"`
	Conflicts         int `json:"conflicts" yaml:"conflicts"`
	ShortStaffedRooms int `json:"short_staffed_rooms" yaml:"short_staffed_rooms"`
}

// SummarizeSessions totals seats, shortfalls and conflicts across sessions.
func SummarizeSessions(sessions []SessionAllotment) PlanTotals {
	totals := PlanTotals{Sessions: len(sessions)}
	for _, session := range sessions {
		totals.Seated += session.Plan.SeatedCount()
		totals.Unseated += len(session.Plan.Unseated)
		totals.CapacityShortfall += session.Plan.CapacityShortfall
		totals.Conflicts += len(session.Plan.Conflicts)
		totals.ShortStaffedRooms += len(session.InvigilatorShortfalls)
	}
	return totals
}

// AllotmentStatus represents lifecycle phases for committed allotments.
type AllotmentStatus string

const (
	AllotmentStatusCommitted AllotmentStatus = "COMMITTED"
	AllotmentStatusPublished AllotmentStatus = "PUBLISHED"
)

// Allotment is the persisted header of a committed session allotment.
type Allotment struct {
	ID          string          `db:"id" json:"id"`
	SessionKey  string          `db:"session_key" json:"session_key"`
	ExamIDs     StringList      `db:"exam_ids" json:"exam_ids"`
	Status      AllotmentStatus `db:"status" json:"status"`
	Meta        types.JSONText  `db:"meta" json:"meta"`
	CommittedBy *string         `db:"committed_by" json:"committed_by,omitempty"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}

// AllotmentSeat is a persisted occupied seat.
type AllotmentSeat struct {
	ID          string    `db:"id" json:"id"`
	AllotmentID string    `db:"allotment_id" json:"allotment_id"`
	ClassroomID string    `db:"classroom_id" json:"classroom_id"`
	SeatNumber  int       `db:"seat_number" json:"seat_number"`
	BenchRow    int       `db:"bench_row" json:"row"`
	BenchColumn int       `db:"bench_column" json:"column"`
	Position    int       `db:"position" json:"position"`
	StudentID   *string   `db:"student_id" json:"student_id,omitempty"`
	RollNumber  *string   `db:"roll_number" json:"roll_number,omitempty"`
	Course      *string   `db:"course" json:"course,omitempty"`
	ExamID      *string   `db:"exam_id" json:"exam_id,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// AllotmentDuty is a persisted invigilator assignment.
type AllotmentDuty struct {
	ID            string    `db:"id" json:"id"`
	AllotmentID   string    `db:"allotment_id" json:"allotment_id"`
	ExamID        string    `db:"exam_id" json:"exam_id"`
	ClassroomID   string    `db:"classroom_id" json:"classroom_id"`
	InvigilatorID string    `db:"invigilator_id" json:"invigilator_id"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// AllotmentDetail is a committed allotment with its seats and duties.
type AllotmentDetail struct {
	Allotment
	Seats  []AllotmentSeat `json:"seats"`
	Duties []AllotmentDuty `json:"duties"`
}

// AllotmentFilter narrows allotment listings.
type AllotmentFilter struct {
	DateFrom string
	DateTo   string
	Page     int
	PageSize int
}
