package allocation

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/examplanner-api/internal/models"
)

const (
	testDate = "2024-05-10"
	testTime = "09:00"
)

func TestGenerateSeatPlanSeatsAllStudentsWithoutSameCourseNeighbours(t *testing.T) {
	pool := append(students("bca", "BCA", 3, 3), students("mca", "MCA", 1, 3)...)
	rooms := []models.Classroom{room("r1", 1, 2, 2), room("r2", 1, 2, 2), room("r3", 1, 2, 2)}
	exams := []models.ExamSlot{
		exam("ex-bca", "BCA", 3, testDate, testTime),
		exam("ex-mca", "MCA", 1, testDate, testTime),
	}

	result, err := GenerateSeatPlan(pool, rooms, exams, DefaultOptions())
	require.NoError(t, err)

	plan := result.Plan
	assert.Equal(t, "2024-05-10 09:00", plan.SessionKey)
	assert.Equal(t, []string{"ex-bca", "ex-mca"}, plan.ExamIDs)
	assert.Equal(t, 6, plan.SeatedCount())
	assert.Empty(t, plan.Unseated)
	assert.Zero(t, plan.CapacityShortfall)
	assert.NoError(t, VerifySeatPlan(plan, rooms))

	assert.Equal(t, []string{"bca-1", "mca-1", "bca-2", "mca-2", "bca-3", "mca-3"}, seatedIDs(plan))
	assert.Equal(t, []string{"r1", "r2"}, roomsReceivingStudents(plan))
	require.Len(t, result.Rooms, 2)
	assert.Equal(t, 4, result.Rooms[0].Seated)
	assert.Equal(t, 2, result.Rooms[1].Seated)

	// allocation stops as soon as everyone is seated
	assert.Len(t, plan.Seats, 6)
	last := plan.Seats[len(plan.Seats)-1]
	assert.Equal(t, "r2", last.ClassroomID)
	assert.Equal(t, 2, last.SeatNumber)
}

func TestGenerateSeatPlanFillsSmallestRoomFirst(t *testing.T) {
	pool := append(students("bca", "BCA", 3, 5), students("mca", "MCA", 1, 5)...)
	rooms := []models.Classroom{
		room("big", 2, 2, 2),
		room("small", 1, 2, 2),
		room("mid", 1, 3, 2),
	}
	exams := []models.ExamSlot{
		exam("ex-bca", "BCA", 3, testDate, testTime),
		exam("ex-mca", "MCA", 1, testDate, testTime),
	}

	result, err := GenerateSeatPlan(pool, rooms, exams, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, []string{"small", "mid"}, roomsReceivingStudents(result.Plan))
	assert.Equal(t, 10, result.Plan.SeatedCount())
	for _, seat := range result.Plan.Seats {
		assert.NotEqual(t, "big", seat.ClassroomID)
	}
}

func TestGenerateSeatPlanSingleCourseLeavesBenchNeighboursEmpty(t *testing.T) {
	pool := students("bca", "BCA", 3, 5)
	rooms := []models.Classroom{room("r1", 1, 2, 2)}
	exams := []models.ExamSlot{exam("ex-bca", "BCA", 3, testDate, testTime)}

	result, err := GenerateSeatPlan(pool, rooms, exams, DefaultOptions())
	require.NoError(t, err)

	plan := result.Plan
	require.Len(t, plan.Seats, 4)
	for i, seat := range plan.Seats {
		assert.Equal(t, i+1, seat.SeatNumber)
		if seat.Position == 1 {
			assert.NotNil(t, seat.Student, "first seat of bench %d should be used", seat.Column)
		} else {
			assert.Nil(t, seat.Student, "second seat of bench %d must stay empty", seat.Column)
		}
	}
	assert.Equal(t, 2, plan.SeatedCount())
	assert.Equal(t, 1, plan.CapacityShortfall)
	require.Len(t, plan.Unseated, 3)
	assert.Equal(t, "bca-3", plan.Unseated[0].StudentID)
	assert.Equal(t, "ex-bca", plan.Unseated[0].ExamID)
}

func TestGenerateSeatPlanSkipsUnavailableRooms(t *testing.T) {
	pool := append(students("bca", "BCA", 3, 2), students("mca", "MCA", 1, 2)...)
	blocked := room("blocked", 1, 2, 2)
	blocked.Unavailability = models.SlotUnavailabilityList{{SlotID: "ex-bca", Reason: "maintenance"}}
	rooms := []models.Classroom{blocked, room("open", 2, 2, 2)}
	exams := []models.ExamSlot{
		exam("ex-bca", "BCA", 3, testDate, testTime),
		exam("ex-mca", "MCA", 1, testDate, testTime),
	}

	result, err := GenerateSeatPlan(pool, rooms, exams, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, 4, result.Plan.SeatedCount())
	for _, seat := range result.Plan.Seats {
		assert.Equal(t, "open", seat.ClassroomID)
	}
	require.Len(t, result.Rooms, 1)
	assert.Equal(t, "open", result.Rooms[0].Classroom.ID)
}

func TestGenerateSeatPlanReportsShortfallWhenNoRoomIsUsable(t *testing.T) {
	pool := students("bca", "BCA", 3, 3)
	blocked := room("blocked", 2, 2, 2)
	blocked.Unavailability = models.SlotUnavailabilityList{{SlotID: "ex-bca"}}

	result, err := GenerateSeatPlan(pool, []models.Classroom{blocked}, []models.ExamSlot{exam("ex-bca", "BCA", 3, testDate, testTime)}, DefaultOptions())
	require.NoError(t, err)

	assert.Empty(t, result.Plan.Seats)
	assert.Empty(t, result.Rooms)
	assert.Len(t, result.Plan.Unseated, 3)
	assert.Equal(t, 3, result.Plan.CapacityShortfall)
}

func TestGenerateSeatPlanRollNumberOrdering(t *testing.T) {
	pool := []models.Student{
		student("a", "BCA10", "BCA", 3),
		student("b", "BCA9", "BCA", 3),
		student("c", "BCA2", "BCA", 3),
	}
	rooms := []models.Classroom{room("r1", 1, 3, 1)}
	exams := []models.ExamSlot{exam("ex-bca", "BCA", 3, testDate, testTime)}

	sorted, err := GenerateSeatPlan(pool, rooms, exams, Options{SortByRollNumber: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "b", "a"}, seatedIDs(sorted.Plan))

	unsorted, err := GenerateSeatPlan(pool, rooms, exams, Options{SortByRollNumber: false})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, seatedIDs(unsorted.Plan))
}

func TestGenerateSeatPlanUsesPerBenchCapacities(t *testing.T) {
	pool := []models.Student{
		student("a1", "A1", "A", 1),
		student("a2", "A2", "A", 1),
		student("b1", "B1", "B", 1),
		student("c1", "C1", "C", 1),
	}
	r := room("r1", 1, 2, 0)
	r.BenchCapacities = models.IntList{3, 1}
	exams := []models.ExamSlot{
		exam("ex-a", "A", 1, testDate, testTime),
		exam("ex-b", "B", 1, testDate, testTime),
		exam("ex-c", "C", 1, testDate, testTime),
	}

	result, err := GenerateSeatPlan(pool, []models.Classroom{r}, exams, DefaultOptions())
	require.NoError(t, err)

	plan := result.Plan
	require.Len(t, plan.Seats, 4)
	assert.Equal(t, []string{"a1", "b1", "c1", "a2"}, seatedIDs(plan))
	assert.Equal(t, 1, plan.Seats[3].Row)
	assert.Equal(t, 2, plan.Seats[3].Column)
	assert.Equal(t, 1, plan.Seats[3].Position)
	assert.Equal(t, 4, plan.Seats[3].SeatNumber)
}

func TestGenerateSeatPlanExcludesStudentsAlreadySeatedInSession(t *testing.T) {
	pool := students("bca", "BCA", 3, 3)
	pool[0].SeatAssignment = &models.SeatAssignment{SessionKey: "2024-05-10 09:00", ExamID: "ex-bca", ClassroomID: "r0", SeatNumber: 1}
	pool[1].SeatAssignment = &models.SeatAssignment{SessionKey: "2024-05-09 09:00", ExamID: "ex-old", ClassroomID: "r0", SeatNumber: 1}

	result, err := GenerateSeatPlan(pool, []models.Classroom{room("r1", 1, 4, 1)}, []models.ExamSlot{exam("ex-bca", "BCA", 3, testDate, testTime)}, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, []string{"bca-2", "bca-3"}, seatedIDs(result.Plan))
	assert.Equal(t, "r0", result.Students[0].SeatAssignment.ClassroomID)
	assert.Equal(t, "2024-05-10 09:00", result.Students[1].SeatAssignment.SessionKey)
	assert.Equal(t, "r1", result.Students[1].SeatAssignment.ClassroomID)
}

func TestGenerateSeatPlanReportsConcurrentEligibilityConflicts(t *testing.T) {
	pool := append(students("bca", "BCA", 3, 2), students("mca", "MCA", 1, 1)...)
	pool[0].EligibleSubjects = models.StringList{"SUB-ex-mca"}
	exams := []models.ExamSlot{
		exam("ex-bca", "BCA", 3, testDate, testTime),
		exam("ex-mca", "MCA", 1, testDate, testTime),
	}

	result, err := GenerateSeatPlan(pool, []models.Classroom{room("r1", 2, 2, 2)}, exams, DefaultOptions())
	require.NoError(t, err)

	require.Len(t, result.Plan.Conflicts, 1)
	conflict := result.Plan.Conflicts[0]
	assert.Equal(t, "bca-1", conflict.StudentID)
	assert.Equal(t, []string{"ex-bca", "ex-mca"}, conflict.ExamIDs)
	assert.Equal(t, "ex-bca", conflict.AssignedTo)
	assert.Equal(t, 3, result.Plan.SeatedCount())
	assert.Equal(t, "ex-bca", result.Students[0].SeatAssignment.ExamID)
}

func TestGenerateSeatPlanAttachesAssignmentsWithoutMutatingInput(t *testing.T) {
	pool := append(students("bca", "BCA", 3, 2), students("mca", "MCA", 1, 2)...)
	original := make([]models.Student, len(pool))
	copy(original, pool)
	rooms := []models.Classroom{room("r1", 1, 2, 2)}
	exams := []models.ExamSlot{
		exam("ex-bca", "BCA", 3, testDate, testTime),
		exam("ex-mca", "MCA", 1, testDate, testTime),
	}

	result, err := GenerateSeatPlan(pool, rooms, exams, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, original, pool)
	for _, s := range pool {
		assert.Nil(t, s.SeatAssignment)
	}
	require.Len(t, result.Students, 4)
	for _, seat := range result.Plan.Seats {
		var updated models.Student
		for _, s := range result.Students {
			if s.ID == seat.Student.StudentID {
				updated = s
			}
		}
		require.NotNil(t, updated.SeatAssignment)
		assert.Equal(t, seat.SeatNumber, updated.SeatAssignment.SeatNumber)
		assert.Equal(t, seat.Student.ExamID, updated.SeatAssignment.ExamID)
	}
}

func TestGenerateSeatPlanIsDeterministic(t *testing.T) {
	pool := append(students("bca", "BCA", 3, 7), students("mca", "MCA", 1, 4)...)
	pool = append(pool, students("msc", "MSC", 2, 5)...)
	rooms := []models.Classroom{room("r1", 2, 2, 3), room("r2", 1, 3, 2)}
	exams := []models.ExamSlot{
		exam("ex-bca", "BCA", 3, testDate, testTime),
		exam("ex-mca", "MCA", 1, testDate, testTime),
		exam("ex-msc", "MSC", 2, testDate, testTime),
	}

	first, err := GenerateSeatPlan(pool, rooms, exams, DefaultOptions())
	require.NoError(t, err)
	second, err := GenerateSeatPlan(pool, rooms, exams, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestGenerateSeatPlanInputInconsistencies(t *testing.T) {
	pool := students("bca", "BCA", 3, 2)
	validExam := exam("ex-bca", "BCA", 3, testDate, testTime)
	mismatched := room("r1", 2, 2, 0)
	mismatched.BenchCapacities = models.IntList{2, 2, 2}
	zeroBench := room("r1", 1, 1, 0)
	zeroBench.BenchCapacities = models.IntList{0}

	cases := []struct {
		name  string
		rooms []models.Classroom
		exams []models.ExamSlot
	}{
		{name: "no exams", rooms: []models.Classroom{room("r1", 1, 1, 1)}},
		{name: "exam without candidates", rooms: []models.Classroom{room("r1", 1, 1, 1)}, exams: []models.ExamSlot{validExam, exam("ex-phd", "PHD", 1, testDate, testTime)}},
		{name: "mixed sessions", rooms: []models.Classroom{room("r1", 1, 1, 1)}, exams: []models.ExamSlot{validExam, exam("ex-late", "BCA", 3, testDate, "14:00")}},
		{name: "bench capacities length", rooms: []models.Classroom{mismatched}, exams: []models.ExamSlot{validExam}},
		{name: "zero bench in capacities", rooms: []models.Classroom{zeroBench}, exams: []models.ExamSlot{validExam}},
		{name: "zero dimensions", rooms: []models.Classroom{room("r1", 0, 2, 2)}, exams: []models.ExamSlot{validExam}},
		{name: "zero bench capacity", rooms: []models.Classroom{room("r1", 1, 2, 0)}, exams: []models.ExamSlot{validExam}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := GenerateSeatPlan(pool, tc.rooms, tc.exams, DefaultOptions())
			assert.Nil(t, result)
			assert.ErrorIs(t, err, ErrInputInconsistency)
		})
	}
}

func TestGenerateSeatPlanInvariantsHoldForRandomSessions(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	courses := []string{"BCA", "MCA", "MSC", "BTECH"}

	for iteration := 0; iteration < 200; iteration++ {
		courseCount := 1 + rng.Intn(len(courses))
		pool := make([]models.Student, 0)
		exams := make([]models.ExamSlot, 0, courseCount)
		excluded := make(map[string]bool)
		for c := 0; c < courseCount; c++ {
			course := courses[c]
			exams = append(exams, exam("ex-"+course, course, 1, testDate, testTime))
			for i := 0; i < 1+rng.Intn(15); i++ {
				id := fmt.Sprintf("%s-%d", course, i)
				s := student(id, fmt.Sprintf("%s%d", course, rng.Intn(500)), course, 1)
				switch rng.Intn(10) {
				case 0:
					s.IsDebarred = true
					excluded[id] = true
				case 1:
					s.Unavailability = models.SlotUnavailabilityList{{SlotID: "ex-" + course}}
					excluded[id] = true
				}
				pool = append(pool, s)
			}
			// keep at least one candidate per exam
			pool = append(pool, student(course+"-anchor", course+"000", course, 1))
		}

		rooms := make([]models.Classroom, 0)
		for r := 0; r < 1+rng.Intn(4); r++ {
			rm := room(fmt.Sprintf("r%d", r), 1+rng.Intn(3), 1+rng.Intn(3), 1+rng.Intn(3))
			if rng.Intn(5) == 0 {
				rm.Unavailability = models.SlotUnavailabilityList{{SlotID: exams[0].ID}}
			}
			rooms = append(rooms, rm)
		}

		result, err := GenerateSeatPlan(pool, rooms, exams, Options{SortByRollNumber: rng.Intn(2) == 0})
		require.NoError(t, err)
		plan := result.Plan

		require.NoError(t, VerifySeatPlan(plan, rooms), "iteration %d", iteration)

		eligible := len(pool) - len(excluded)
		assert.Equal(t, eligible, plan.SeatedCount()+len(plan.Unseated), "iteration %d", iteration)

		for _, id := range seatedIDs(plan) {
			assert.False(t, excluded[id], "excluded student %s seated", id)
		}

		capacities := make(map[string]models.Classroom)
		for _, rm := range rooms {
			capacities[rm.ID] = rm
		}
		previous := 0
		for _, id := range roomsReceivingStudents(plan) {
			rm := capacities[id]
			assert.Empty(t, rm.Unavailability, "unavailable room %s used", id)
			assert.GreaterOrEqual(t, rm.Capacity(), previous, "iteration %d", iteration)
			previous = rm.Capacity()
		}
	}
}

func TestCompareRollNumbers(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"CS9", "CS10", -1},
		{"CS10", "CS9", 1},
		{"CS010", "CS10", 0},
		{"A100", "B2", -1},
		{"22BCA01", "22BCA001", 0},
		{"22BCA", "22BCA01", -1},
		{"100", "99", 1},
	}
	for _, tc := range cases {
		got := compareRollNumbers(tc.a, tc.b)
		switch {
		case tc.want < 0:
			assert.Negative(t, got, "%s vs %s", tc.a, tc.b)
		case tc.want > 0:
			assert.Positive(t, got, "%s vs %s", tc.a, tc.b)
		default:
			assert.Zero(t, got, "%s vs %s", tc.a, tc.b)
		}
	}
}
