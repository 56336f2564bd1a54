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

func TestClassroomRepositoryListAll(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewClassroomRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "name", "building", "row_count", "column_count", "bench_capacity", "bench_capacities", "unavailability", "created_at", "updated_at"}).
		AddRow("room-1", "A-101", "Block A", 2, 3, 2, []byte(`[]`), []byte(`[]`), now, now).
		AddRow("room-2", "A-102", "Block A", 1, 2, 0, []byte(`[3,1]`), []byte(`[]`), now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM classrooms ORDER BY created_at ASC, name ASC")).WillReturnRows(rows)

	rooms, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	assert.Equal(t, 12, rooms[0].Capacity())
	assert.Equal(t, 4, rooms[1].Capacity())
	assert.Equal(t, 3, rooms[1].BenchSize(0))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassroomRepositoryExistsByName(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewClassroomRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM classrooms WHERE LOWER(name) = LOWER($1) LIMIT 1")).
		WithArgs("A-101").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(1))

	exists, err := repo.ExistsByName(context.Background(), "A-101", "")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassroomRepositoryUpdate(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewClassroomRepository(db)

	mock.ExpectExec("UPDATE classrooms SET").
		WillReturnResult(sqlmock.NewResult(0, 1))

	room := &models.Classroom{ID: "room-1", Name: "A-101", Rows: 2, Columns: 2, BenchCapacity: 2}
	require.NoError(t, repo.Update(context.Background(), room))
	assert.False(t, room.UpdatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}
