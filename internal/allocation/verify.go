package allocation

import (
	"fmt"

	"github.com/noah-isme/examplanner-api/internal/models"
)

// VerifySeatPlan checks a plan against the seating invariants: no bench holds
// two students of one course, no room exceeds its capacity, and no student is
// seated twice.
func VerifySeatPlan(plan models.SeatPlan, classrooms []models.Classroom) error {
	capacities := make(map[string]int, len(classrooms))
	for _, room := range classrooms {
		capacities[room.ID] = room.Capacity()
	}

	benchCourses := make(map[models.BenchKey]map[string]bool)
	perRoom := make(map[string]int)
	students := make(map[string]bool)

	for _, seat := range plan.Seats {
		if seat.Student == nil {
			continue
		}
		key := seat.BenchKey()
		courses, ok := benchCourses[key]
		if !ok {
			courses = make(map[string]bool)
			benchCourses[key] = courses
		}
		if courses[seat.Student.Course] {
			return fmt.Errorf("%w: course %s appears twice on bench %d/%d of classroom %s", ErrConstraintViolation, seat.Student.Course, key.Row, key.Column, key.ClassroomID)
		}
		courses[seat.Student.Course] = true

		if students[seat.Student.StudentID] {
			return fmt.Errorf("%w: student %s seated twice", ErrConstraintViolation, seat.Student.StudentID)
		}
		students[seat.Student.StudentID] = true

		perRoom[seat.ClassroomID]++
		if capacity, known := capacities[seat.ClassroomID]; known && perRoom[seat.ClassroomID] > capacity {
			return fmt.Errorf("%w: classroom %s holds more than %d students", ErrConstraintViolation, seat.ClassroomID, capacity)
		}
	}
	return nil
}
