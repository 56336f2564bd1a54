// Package docstore mirrors committed allotments into a document database so
// that read-only clients (notice boards, mobile apps) can follow them.
package docstore

import (
	"context"
	"time"

	"github.com/noah-isme/examplanner-api/internal/models"
)

// SeatDocument is one occupied seat in the mirrored allotment.
type SeatDocument struct {
	ClassroomID string `firestore:"classroom_id" json:"classroom_id"`
	SeatNumber  int    `firestore:"seat_number" json:"seat_number"`
	Row         int    `firestore:"row" json:"row"`
	Column      int    `firestore:"column" json:"column"`
	StudentID   string `firestore:"student_id" json:"student_id"`
	RollNumber  string `firestore:"roll_number" json:"roll_number"`
	ExamID      string `firestore:"exam_id" json:"exam_id"`
}

// DutyDocument is one invigilation duty in the mirrored allotment.
type DutyDocument struct {
	ClassroomID   string `firestore:"classroom_id" json:"classroom_id"`
	InvigilatorID string `firestore:"invigilator_id" json:"invigilator_id"`
	ExamID        string `firestore:"exam_id" json:"exam_id"`
}

// AllotmentDocument is the mirrored shape of a committed allotment.
type AllotmentDocument struct {
	AllotmentID string         `firestore:"allotment_id" json:"allotment_id"`
	SessionKey  string         `firestore:"session_key" json:"session_key"`
	ExamIDs     []string       `firestore:"exam_ids" json:"exam_ids"`
	Status      string         `firestore:"status" json:"status"`
	Seats       []SeatDocument `firestore:"seats" json:"seats"`
	Duties      []DutyDocument `firestore:"duties" json:"duties"`
	UpdatedAt   time.Time      `firestore:"updated_at" json:"updated_at"`
}

// Mirror stores allotment documents keyed by allotment id.
type Mirror interface {
	PutAllotment(ctx context.Context, doc AllotmentDocument) error
	DeleteAllotment(ctx context.Context, allotmentID string) error
	Close() error
}

// NewAllotmentDocument flattens a committed allotment. Empty seats are skipped.
func NewAllotmentDocument(detail models.AllotmentDetail) AllotmentDocument {
	doc := AllotmentDocument{
		AllotmentID: detail.ID,
		SessionKey:  detail.SessionKey,
		ExamIDs:     append([]string{}, detail.ExamIDs...),
		Status:      string(detail.Status),
		Seats:       make([]SeatDocument, 0, len(detail.Seats)),
		Duties:      make([]DutyDocument, 0, len(detail.Duties)),
		UpdatedAt:   detail.UpdatedAt,
	}
	for _, seat := range detail.Seats {
		if seat.StudentID == nil {
			continue
		}
		doc.Seats = append(doc.Seats, SeatDocument{
			ClassroomID: seat.ClassroomID,
			SeatNumber:  seat.SeatNumber,
			Row:         seat.BenchRow,
			Column:      seat.BenchColumn,
			StudentID:   *seat.StudentID,
			RollNumber:  deref(seat.RollNumber),
			ExamID:      deref(seat.ExamID),
		})
	}
	for _, duty := range detail.Duties {
		doc.Duties = append(doc.Duties, DutyDocument{
			ClassroomID:   duty.ClassroomID,
			InvigilatorID: duty.InvigilatorID,
			ExamID:        duty.ExamID,
		})
	}
	return doc
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

// NoopMirror discards documents. It is used when no project is configured.
type NoopMirror struct{}

// PutAllotment implements Mirror.
func (NoopMirror) PutAllotment(context.Context, AllotmentDocument) error { return nil }

// DeleteAllotment implements Mirror.
func (NoopMirror) DeleteAllotment(context.Context, string) error { return nil }

// Close implements Mirror.
func (NoopMirror) Close() error { return nil }
