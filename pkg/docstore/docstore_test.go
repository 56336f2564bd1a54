package docstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/examplanner-api/internal/models"
)

func strPtr(v string) *string { return &v }

func TestNewAllotmentDocumentSkipsEmptySeats(t *testing.T) {
	updated := time.Date(2024, 5, 10, 8, 0, 0, 0, time.UTC)
	detail := models.AllotmentDetail{
		Allotment: models.Allotment{
			ID:         "a-1",
			SessionKey: "2024-05-10 09:00",
			ExamIDs:    models.StringList{"ex-1"},
			Status:     models.AllotmentStatusCommitted,
			UpdatedAt:  updated,
		},
		Seats: []models.AllotmentSeat{
			{ClassroomID: "r1", SeatNumber: 1, BenchRow: 1, BenchColumn: 1, StudentID: strPtr("s-1"), RollNumber: strPtr("BCA001"), ExamID: strPtr("ex-1")},
			{ClassroomID: "r1", SeatNumber: 2, BenchRow: 1, BenchColumn: 1},
		},
		Duties: []models.AllotmentDuty{{ClassroomID: "r1", InvigilatorID: "i-1", ExamID: "ex-1"}},
	}

	doc := NewAllotmentDocument(detail)

	assert.Equal(t, "a-1", doc.AllotmentID)
	assert.Equal(t, "COMMITTED", doc.Status)
	assert.Equal(t, []string{"ex-1"}, doc.ExamIDs)
	assert.Equal(t, updated, doc.UpdatedAt)
	require.Len(t, doc.Seats, 1)
	assert.Equal(t, SeatDocument{ClassroomID: "r1", SeatNumber: 1, Row: 1, Column: 1, StudentID: "s-1", RollNumber: "BCA001", ExamID: "ex-1"}, doc.Seats[0])
	assert.Equal(t, []DutyDocument{{ClassroomID: "r1", InvigilatorID: "i-1", ExamID: "ex-1"}}, doc.Duties)
}

func TestNewFirestoreMirrorRequiresProject(t *testing.T) {
	_, err := NewFirestoreMirror(context.Background(), FirestoreConfig{})
	assert.Error(t, err)
}

func TestNoopMirror(t *testing.T) {
	var m Mirror = NoopMirror{}
	assert.NoError(t, m.PutAllotment(context.Background(), AllotmentDocument{AllotmentID: "a-1"}))
	assert.NoError(t, m.DeleteAllotment(context.Background(), "a-1"))
	assert.NoError(t, m.Close())
}
