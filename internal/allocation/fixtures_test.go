package allocation

import (
	"fmt"

	"github.com/noah-isme/examplanner-api/internal/models"
)

func student(id, roll, course string, semester int) models.Student {
	return models.Student{ID: id, RollNumber: roll, Name: "Student " + id, Course: course, Semester: semester}
}

func students(prefix, course string, semester, count int) []models.Student {
	list := make([]models.Student, 0, count)
	for i := 1; i <= count; i++ {
		id := fmt.Sprintf("%s-%d", prefix, i)
		list = append(list, student(id, fmt.Sprintf("%s%03d", prefix, i), course, semester))
	}
	return list
}

func room(id string, rows, columns, bench int) models.Classroom {
	return models.Classroom{ID: id, Name: "Room " + id, Rows: rows, Columns: columns, BenchCapacity: bench}
}

func exam(id, course string, semester int, date, clock string) models.ExamSlot {
	return models.ExamSlot{
		ID:          id,
		SubjectName: "Subject " + id,
		SubjectCode: "SUB-" + id,
		Course:      course,
		Semester:    semester,
		Date:        date,
		Time:        clock,
	}
}

func invigilator(id string) models.Invigilator {
	return models.Invigilator{ID: id, Name: "Invigilator " + id, IsAvailable: true}
}

func seatedIDs(plan models.SeatPlan) []string {
	ids := make([]string, 0)
	for _, seat := range plan.Seats {
		if seat.Student != nil {
			ids = append(ids, seat.Student.StudentID)
		}
	}
	return ids
}

func roomsReceivingStudents(plan models.SeatPlan) []string {
	order := make([]string, 0)
	seen := make(map[string]bool)
	for _, seat := range plan.Seats {
		if seat.Student == nil || seen[seat.ClassroomID] {
			continue
		}
		seen[seat.ClassroomID] = true
		order = append(order, seat.ClassroomID)
	}
	return order
}

func strPtr(v string) *string {
	return &v
}
