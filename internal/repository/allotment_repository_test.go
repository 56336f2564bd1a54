package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/examplanner-api/internal/models"
)

func TestAllotmentRepositoryCommitSequence(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewAllotmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("DELETE FROM allotments WHERE session_key = $1 RETURNING id")).
		WithArgs("2024-05-10 09:00").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("allot-old"))
	mock.ExpectExec("INSERT INTO allotments").
		WithArgs(sqlmock.AnyArg(), "2024-05-10 09:00", sqlmock.AnyArg(), models.AllotmentStatusCommitted, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO allotment_seats").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO allotment_seats").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO allotment_duties").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	ctx := context.Background()
	tx, err := db.Beginx()
	require.NoError(t, err)

	replaced, err := repo.DeleteBySessionKey(ctx, tx, "2024-05-10 09:00")
	require.NoError(t, err)
	assert.Equal(t, "allot-old", replaced)

	allotment := &models.Allotment{SessionKey: "2024-05-10 09:00", ExamIDs: models.StringList{"exam-1"}, Status: models.AllotmentStatusCommitted}
	require.NoError(t, repo.Create(ctx, tx, allotment))
	require.NotEmpty(t, allotment.ID)

	student := "s-1"
	seats := []models.AllotmentSeat{
		{AllotmentID: allotment.ID, ClassroomID: "room-1", SeatNumber: 1, StudentID: &student},
		{AllotmentID: allotment.ID, ClassroomID: "room-1", SeatNumber: 2},
	}
	require.NoError(t, repo.InsertSeats(ctx, tx, seats))
	assert.NotEmpty(t, seats[1].ID)

	duties := []models.AllotmentDuty{{AllotmentID: allotment.ID, ExamID: "exam-1", ClassroomID: "room-1", InvigilatorID: "inv-1"}}
	require.NoError(t, repo.InsertDuties(ctx, tx, duties))
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAllotmentRepositoryFindDetail(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewAllotmentRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM allotments WHERE id = $1")).
		WithArgs("allot-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "session_key", "exam_ids", "status", "meta", "committed_by", "created_at", "updated_at"}).
			AddRow("allot-1", "2024-05-10 09:00", []byte(`["exam-1"]`), "COMMITTED", []byte(`{}`), nil, now, now))
	mock.ExpectQuery(regexp.QuoteMeta("FROM allotment_seats WHERE allotment_id = $1")).
		WithArgs("allot-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "allotment_id", "classroom_id", "seat_number", "bench_row", "bench_column", "position", "student_id", "roll_number", "course", "exam_id", "created_at"}).
			AddRow("seat-1", "allot-1", "room-1", 1, 0, 0, 0, "s-1", "CS-001", "BSC-CS", "exam-1", now).
			AddRow("seat-2", "allot-1", "room-1", 2, 0, 0, 1, nil, nil, nil, nil, now))
	mock.ExpectQuery(regexp.QuoteMeta("FROM allotment_duties WHERE allotment_id = $1")).
		WithArgs("allot-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "allotment_id", "exam_id", "classroom_id", "invigilator_id", "created_at"}).
			AddRow("duty-1", "allot-1", "exam-1", "room-1", "inv-1", now))

	detail, err := repo.FindDetail(context.Background(), "allot-1")
	require.NoError(t, err)
	assert.Equal(t, models.StringList{"exam-1"}, detail.ExamIDs)
	require.Len(t, detail.Seats, 2)
	assert.Nil(t, detail.Seats[1].StudentID)
	require.Len(t, detail.Duties, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAllotmentRepositoryListByDate(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewAllotmentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE 1=1 AND LEFT(session_key, 10) >= $1 ORDER BY session_key ASC LIMIT 20 OFFSET 0")).
		WithArgs("2024-05-10").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM allotments WHERE 1=1 AND LEFT(session_key, 10) >= $1")).
		WithArgs("2024-05-10").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	_, total, err := repo.List(context.Background(), models.AllotmentFilter{DateFrom: "2024-05-10"})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAllotmentRepositoryUpdateStatus(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewAllotmentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE allotments SET status = $2")).
		WithArgs("allot-1", models.AllotmentStatusPublished, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateStatus(context.Background(), "allot-1", models.AllotmentStatusPublished))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAllotmentRepositoryDeleteBySessionKeyNothingToReplace(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewAllotmentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("DELETE FROM allotments WHERE session_key = $1 RETURNING id")).
		WithArgs("2024-05-11 14:00").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	replaced, err := repo.DeleteBySessionKey(context.Background(), nil, "2024-05-11 14:00")
	require.NoError(t, err)
	assert.Empty(t, replaced)
	assert.NoError(t, mock.ExpectationsWereMet())
}
