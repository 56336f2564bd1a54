package allocation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/examplanner-api/internal/models"
)

func TestGroupSessionsOrdersChronologically(t *testing.T) {
	exams := []models.ExamSlot{
		exam("late", "BCA", 3, "2024-05-11", "09:00"),
		exam("afternoon", "BCA", 5, "2024-05-10", "14:00"),
		exam("morning-a", "BCA", 1, "2024-05-10", "09:00"),
		exam("morning-b", "MCA", 1, "2024-05-10", "09:00"),
	}

	sessions, err := GroupSessions(exams)
	require.NoError(t, err)

	require.Len(t, sessions, 3)
	assert.Equal(t, "2024-05-10 09:00", sessions[0].Key)
	assert.Equal(t, []string{"morning-a", "morning-b"}, []string{sessions[0].Exams[0].ID, sessions[0].Exams[1].ID})
	assert.Equal(t, "2024-05-10 14:00", sessions[1].Key)
	assert.Equal(t, "2024-05-11 09:00", sessions[2].Key)
}

func TestGroupSessionsRejectsInvalidDate(t *testing.T) {
	_, err := GroupSessions([]models.ExamSlot{exam("bad", "BCA", 3, "10/05/2024", "9am")})
	assert.ErrorIs(t, err, ErrInputInconsistency)
}

func TestPlanSessionsThreadsSnapshot(t *testing.T) {
	pool := append(students("bca", "BCA", 3, 2), students("mca", "MCA", 1, 2)...)
	snapshot := Snapshot{
		Students:     pool,
		Classrooms:   []models.Classroom{room("r1", 1, 2, 2)},
		Invigilators: []models.Invigilator{invigilator("i1"), invigilator("i2")},
	}
	exams := []models.ExamSlot{
		exam("mca-day2", "MCA", 1, "2024-05-11", "09:00"),
		exam("bca-day1", "BCA", 3, "2024-05-10", "09:00"),
	}

	result, err := PlanSessions(snapshot, exams, DefaultOptions())
	require.NoError(t, err)

	require.Len(t, result.Sessions, 2)
	first, second := result.Sessions[0], result.Sessions[1]
	assert.Equal(t, "2024-05-10 09:00", first.SessionKey)
	assert.Equal(t, []string{"bca-1", "bca-2"}, seatedIDs(first.Plan))
	assert.Equal(t, "2024-05-11 09:00", second.SessionKey)
	assert.Equal(t, []string{"mca-1", "mca-2"}, seatedIDs(second.Plan))

	assert.Equal(t, []models.InvigilatorAssignment{{ExamID: "bca-day1", ClassroomID: "r1", InvigilatorID: "i1"}}, first.Assignments)
	// the second session starts a fresh round-robin over the updated pool
	assert.Equal(t, []models.InvigilatorAssignment{{ExamID: "mca-day2", ClassroomID: "r1", InvigilatorID: "i1"}}, second.Assignments)
	assert.Equal(t, 2, result.Snapshot.Invigilators[0].DutyCount())

	assert.Equal(t, "2024-05-10 09:00", result.Snapshot.Students[0].SeatAssignment.SessionKey)
	assert.Equal(t, "2024-05-11 09:00", result.Snapshot.Students[2].SeatAssignment.SessionKey)

	for _, s := range snapshot.Students {
		assert.Nil(t, s.SeatAssignment)
	}
	assert.Zero(t, snapshot.Invigilators[0].DutyCount())
}

func TestPlanSessionsStopsOnInconsistentSession(t *testing.T) {
	snapshot := Snapshot{
		Students:   students("bca", "BCA", 3, 2),
		Classrooms: []models.Classroom{room("r1", 1, 2, 2)},
	}
	exams := []models.ExamSlot{
		exam("bca", "BCA", 3, "2024-05-10", "09:00"),
		exam("ghost", "PHD", 9, "2024-05-11", "09:00"),
	}

	result, err := PlanSessions(snapshot, exams, DefaultOptions())
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrInputInconsistency)
	assert.Contains(t, err.Error(), "2024-05-11 09:00")
}
