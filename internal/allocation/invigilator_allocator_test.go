package allocation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/examplanner-api/internal/models"
)

func TestRequiredInvigilators(t *testing.T) {
	cases := map[int]int{0: 1, 19: 1, 20: 2, 25: 2, 60: 2, 61: 3, 90: 3, 91: 4, 240: 4}
	for headcount, want := range cases {
		assert.Equal(t, want, RequiredInvigilators(headcount), "headcount %d", headcount)
	}
}

func TestAssignInvigilatorsHeadcountBasis(t *testing.T) {
	hall := room("hall", 5, 5, 1)
	require.Equal(t, 25, hall.Capacity())
	rooms := []RoomUsage{{Classroom: hall, Seated: 10}}
	pool := []models.Invigilator{invigilator("i1"), invigilator("i2"), invigilator("i3")}
	exams := []models.ExamSlot{exam("ex-1", "BCA", 3, testDate, testTime)}

	byCapacity := AssignInvigilators(pool, rooms, exams, Options{HeadcountBasis: HeadcountCapacity})
	assert.Len(t, byCapacity.Assignments, 2)
	assert.Empty(t, byCapacity.Shortfalls)

	bySeated := AssignInvigilators(pool, rooms, exams, Options{HeadcountBasis: HeadcountSeated})
	assert.Len(t, bySeated.Assignments, 1)
	assert.Empty(t, bySeated.Shortfalls)
}

func TestAssignInvigilatorsRoundRobinAcrossRooms(t *testing.T) {
	rooms := []RoomUsage{
		{Classroom: room("a", 2, 2, 2), Seated: 5},
		{Classroom: room("b", 5, 5, 1), Seated: 25},
		{Classroom: room("c", 2, 2, 2), Seated: 3},
	}
	pool := []models.Invigilator{invigilator("i1"), invigilator("i2"), invigilator("i3")}
	exams := []models.ExamSlot{exam("ex-1", "BCA", 3, testDate, testTime), exam("ex-2", "MCA", 1, testDate, testTime)}

	result := AssignInvigilators(pool, rooms, exams, DefaultOptions())

	assert.Equal(t, []models.InvigilatorAssignment{
		{ExamID: "ex-1", ClassroomID: "a", InvigilatorID: "i1"},
		{ExamID: "ex-1", ClassroomID: "b", InvigilatorID: "i2"},
		{ExamID: "ex-1", ClassroomID: "b", InvigilatorID: "i3"},
		{ExamID: "ex-1", ClassroomID: "c", InvigilatorID: "i1"},
	}, result.Assignments)
	assert.Empty(t, result.Shortfalls)
}

func TestAssignInvigilatorsSkipsUnavailable(t *testing.T) {
	off := invigilator("off")
	off.IsAvailable = false
	busy := invigilator("busy")
	busy.Unavailability = models.SlotUnavailabilityList{{SlotID: "ex-2", Reason: "leave"}}
	elsewhere := invigilator("elsewhere")
	elsewhere.Unavailability = models.SlotUnavailabilityList{{SlotID: "ex-9"}}
	rooms := []RoomUsage{{Classroom: room("a", 5, 5, 1), Seated: 25}}
	exams := []models.ExamSlot{exam("ex-1", "BCA", 3, testDate, testTime), exam("ex-2", "MCA", 1, testDate, testTime)}

	result := AssignInvigilators([]models.Invigilator{off, busy, elsewhere}, rooms, exams, DefaultOptions())

	require.Len(t, result.Assignments, 1)
	assert.Equal(t, "elsewhere", result.Assignments[0].InvigilatorID)
	assert.Equal(t, []models.InvigilatorShortfall{{ClassroomID: "a", Required: 2, Assigned: 1}}, result.Shortfalls)
}

func TestAssignInvigilatorsNeverRepeatsInvigilatorInRoom(t *testing.T) {
	rooms := []RoomUsage{{Classroom: room("a", 10, 10, 1), Seated: 95}}
	pool := []models.Invigilator{invigilator("i1"), invigilator("i2"), invigilator("i1")}
	exams := []models.ExamSlot{exam("ex-1", "BCA", 3, testDate, testTime)}

	result := AssignInvigilators(pool, rooms, exams, DefaultOptions())

	seen := make(map[string]bool)
	for _, assignment := range result.Assignments {
		key := assignment.ClassroomID + "/" + assignment.InvigilatorID
		assert.False(t, seen[key], "invigilator %s booked twice", assignment.InvigilatorID)
		seen[key] = true
	}
	assert.Len(t, result.Assignments, 2)
	assert.Equal(t, []models.InvigilatorShortfall{{ClassroomID: "a", Required: 4, Assigned: 2}}, result.Shortfalls)
}

func TestAssignInvigilatorsEmptyPoolReportsEveryRoom(t *testing.T) {
	rooms := []RoomUsage{
		{Classroom: room("a", 1, 2, 2), Seated: 4},
		{Classroom: room("b", 1, 2, 2), Seated: 2},
	}
	result := AssignInvigilators(nil, rooms, []models.ExamSlot{exam("ex-1", "BCA", 3, testDate, testTime)}, DefaultOptions())

	assert.Empty(t, result.Assignments)
	assert.Equal(t, []models.InvigilatorShortfall{
		{ClassroomID: "a", Required: 1, Assigned: 0},
		{ClassroomID: "b", Required: 1, Assigned: 0},
	}, result.Shortfalls)
	assert.Empty(t, result.Invigilators)
}

func TestAssignInvigilatorsAppendsDutyHistory(t *testing.T) {
	veteran := invigilator("i1")
	veteran.Duties = models.DutyRecordList{{SessionKey: "2024-05-09 09:00", ExamID: "ex-0", ClassroomID: "z"}}
	pool := []models.Invigilator{veteran, invigilator("i2")}
	rooms := []RoomUsage{{Classroom: room("a", 1, 2, 2), Seated: 4}}
	exams := []models.ExamSlot{exam("ex-1", "BCA", 3, testDate, testTime)}

	result := AssignInvigilators(pool, rooms, exams, DefaultOptions())

	require.Len(t, result.Invigilators, 2)
	assert.Equal(t, 2, result.Invigilators[0].DutyCount())
	assert.Equal(t, models.DutyRecord{SessionKey: "2024-05-10 09:00", ExamID: "ex-1", ClassroomID: "a"}, result.Invigilators[0].Duties[1])
	assert.Equal(t, 0, result.Invigilators[1].DutyCount())

	assert.Equal(t, 1, pool[0].DutyCount())
}
