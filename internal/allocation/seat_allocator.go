package allocation

import (
	"fmt"
	"sort"

	"github.com/noah-isme/examplanner-api/internal/models"
)

// SeatCandidate pairs a student with the exam they are tagged to in a session.
type SeatCandidate struct {
	Student models.Student
	Exam    models.ExamSlot
}

// Ref returns the compact reference stored on seats.
func (c SeatCandidate) Ref() models.CandidateRef {
	return models.CandidateRef{
		StudentID:  c.Student.ID,
		RollNumber: c.Student.RollNumber,
		Course:     c.Exam.Course,
		ExamID:     c.Exam.ID,
	}
}

// RoomUsage reports how many students a session placed in a classroom.
type RoomUsage struct {
	Classroom models.Classroom
	Seated    int
}

// SessionResult is the outcome of seating one session.
type SessionResult struct {
	Plan models.SeatPlan
	// Students is the updated snapshot with seat assignments attached.
	Students []models.Student
	// Rooms lists the classrooms that received students, in fill order.
	Rooms []RoomUsage
}

type courseQueue struct {
	course string
	order  int
	items  []SeatCandidate
}

// GenerateSeatPlan seats every eligible student of a session so that no bench
// holds two students of the same course. Exams must share one session key.
func GenerateSeatPlan(students []models.Student, classrooms []models.Classroom, exams []models.ExamSlot, opts Options) (*SessionResult, error) {
	if len(exams) == 0 {
		return nil, fmt.Errorf("%w: session has no exams", ErrInputInconsistency)
	}
	sessionKey := exams[0].SessionKey()
	examIDs := make([]string, 0, len(exams))
	for _, exam := range exams {
		if exam.SessionKey() != sessionKey {
			return nil, fmt.Errorf("%w: exam %s belongs to session %q, expected %q", ErrInputInconsistency, exam.ID, exam.SessionKey(), sessionKey)
		}
		examIDs = append(examIDs, exam.ID)
	}
	if err := validateClassrooms(classrooms); err != nil {
		return nil, err
	}

	queues, conflicts, total, err := buildQueues(students, exams, sessionKey, opts)
	if err != nil {
		return nil, err
	}

	rooms := usableRooms(classrooms, examIDs)
	usable := 0
	for _, room := range rooms {
		usable += room.Capacity()
	}

	plan := models.SeatPlan{
		SessionKey: sessionKey,
		ExamIDs:    examIDs,
		Seats:      make([]models.Seat, 0),
		Conflicts:  conflicts,
	}
	if total > usable {
		plan.CapacityShortfall = total - usable
	}

	placed := make(map[string]models.SeatAssignment, total)
	usage := make([]RoomUsage, 0)
	remaining := total

	for _, room := range rooms {
		if remaining == 0 {
			break
		}
		seatNumber := 0
		seated := 0
	benches:
		for bench := 0; bench < room.Benches(); bench++ {
			row := bench/room.Columns + 1
			column := bench%room.Columns + 1
			onBench := make(map[string]bool)
			for position := 1; position <= room.BenchSize(bench); position++ {
				if remaining == 0 {
					break benches
				}
				seatNumber++
				seat := models.Seat{
					ClassroomID: room.ID,
					SeatNumber:  seatNumber,
					Row:         row,
					Column:      column,
					Position:    position,
				}
				if queue := nextQueue(queues, onBench); queue != nil {
					candidate := queue.items[0]
					queue.items = queue.items[1:]
					ref := candidate.Ref()
					seat.Student = &ref
					onBench[queue.course] = true
					placed[candidate.Student.ID] = models.SeatAssignment{
						SessionKey:  sessionKey,
						ExamID:      candidate.Exam.ID,
						ClassroomID: room.ID,
						SeatNumber:  seatNumber,
					}
					remaining--
					seated++
				}
				plan.Seats = append(plan.Seats, seat)
			}
		}
		if seated > 0 {
			usage = append(usage, RoomUsage{Classroom: room, Seated: seated})
		}
	}

	plan.Unseated = make([]models.CandidateRef, 0, remaining)
	for _, queue := range queues {
		for _, candidate := range queue.items {
			plan.Unseated = append(plan.Unseated, candidate.Ref())
		}
	}

	return &SessionResult{
		Plan:     plan,
		Students: withAssignments(students, placed),
		Rooms:    usage,
	}, nil
}

func validateClassrooms(classrooms []models.Classroom) error {
	for _, room := range classrooms {
		if room.Rows <= 0 || room.Columns <= 0 {
			return fmt.Errorf("%w: classroom %s has non-positive dimensions %dx%d", ErrInputInconsistency, room.ID, room.Rows, room.Columns)
		}
		if len(room.BenchCapacities) > 0 {
			if len(room.BenchCapacities) != room.Benches() {
				return fmt.Errorf("%w: classroom %s lists %d bench capacities for %d benches", ErrInputInconsistency, room.ID, len(room.BenchCapacities), room.Benches())
			}
			for _, size := range room.BenchCapacities {
				if size <= 0 {
					return fmt.Errorf("%w: classroom %s has a bench with capacity %d", ErrInputInconsistency, room.ID, size)
				}
			}
			continue
		}
		if room.BenchCapacity <= 0 {
			return fmt.Errorf("%w: classroom %s has bench capacity %d", ErrInputInconsistency, room.ID, room.BenchCapacity)
		}
	}
	return nil
}

// buildQueues tags every eligible student with the first concurrent exam they
// qualify for and groups them into per-course queues in encounter order.
func buildQueues(students []models.Student, exams []models.ExamSlot, sessionKey string, opts Options) ([]*courseQueue, []models.EligibilityConflict, int, error) {
	queues := make([]*courseQueue, 0)
	byCourse := make(map[string]*courseQueue)
	tagged := make(map[string]string)
	conflictIndex := make(map[string]int)
	conflicts := make([]models.EligibilityConflict, 0)
	total := 0

	for _, exam := range exams {
		eligible := EligibleStudents(students, exam)
		if len(eligible) == 0 {
			return nil, nil, 0, fmt.Errorf("%w: exam %s (%s semester %d) has no eligible students", ErrInputInconsistency, exam.ID, exam.Course, exam.Semester)
		}
		for _, student := range eligible {
			if first, ok := tagged[student.ID]; ok {
				if idx, seen := conflictIndex[student.ID]; seen {
					conflicts[idx].ExamIDs = append(conflicts[idx].ExamIDs, exam.ID)
				} else {
					conflictIndex[student.ID] = len(conflicts)
					conflicts = append(conflicts, models.EligibilityConflict{
						StudentID:  student.ID,
						ExamIDs:    []string{first, exam.ID},
						AssignedTo: first,
					})
				}
				continue
			}
			tagged[student.ID] = exam.ID
			if student.SeatAssignment != nil && student.SeatAssignment.SessionKey == sessionKey {
				continue
			}
			queue, ok := byCourse[exam.Course]
			if !ok {
				queue = &courseQueue{course: exam.Course, order: len(queues)}
				byCourse[exam.Course] = queue
				queues = append(queues, queue)
			}
			queue.items = append(queue.items, SeatCandidate{Student: student, Exam: exam})
			total++
		}
	}

	if opts.SortByRollNumber {
		for _, queue := range queues {
			sort.SliceStable(queue.items, func(i, j int) bool {
				return compareRollNumbers(queue.items[i].Student.RollNumber, queue.items[j].Student.RollNumber) < 0
			})
		}
	}
	return queues, conflicts, total, nil
}

// usableRooms drops rooms unavailable for any exam in the session and orders
// the rest by capacity, smallest first.
func usableRooms(classrooms []models.Classroom, examIDs []string) []models.Classroom {
	rooms := make([]models.Classroom, 0, len(classrooms))
	for _, room := range classrooms {
		blocked := false
		for _, examID := range examIDs {
			if room.Unavailability.Has(examID) {
				blocked = true
				break
			}
		}
		if !blocked {
			rooms = append(rooms, room)
		}
	}
	sort.SliceStable(rooms, func(i, j int) bool {
		return rooms[i].Capacity() < rooms[j].Capacity()
	})
	return rooms
}

// nextQueue returns the longest non-empty queue whose course is not yet on the
// bench. Ties go to the queue encountered first.
func nextQueue(queues []*courseQueue, onBench map[string]bool) *courseQueue {
	var best *courseQueue
	for _, queue := range queues {
		if len(queue.items) == 0 || onBench[queue.course] {
			continue
		}
		if best == nil || len(queue.items) > len(best.items) ||
			(len(queue.items) == len(best.items) && queue.order < best.order) {
			best = queue
		}
	}
	return best
}

func withAssignments(students []models.Student, placed map[string]models.SeatAssignment) []models.Student {
	updated := make([]models.Student, len(students))
	copy(updated, students)
	for i := range updated {
		if assignment, ok := placed[updated[i].ID]; ok {
			a := assignment
			updated[i].SeatAssignment = &a
		}
	}
	return updated
}
