package allocation

import "github.com/noah-isme/examplanner-api/internal/models"

// EligibleStudents returns, in input order, the students who must sit exam and
// are not excluded by debarment, subject ineligibility or slot unavailability.
func EligibleStudents(students []models.Student, exam models.ExamSlot) []models.Student {
	result := make([]models.Student, 0)
	for _, student := range students {
		if IsEligible(student, exam) {
			result = append(result, student)
		}
	}
	return result
}

// IsEligible reports whether a single student must sit exam.
func IsEligible(student models.Student, exam models.ExamSlot) bool {
	if !takesExam(student, exam) {
		return false
	}
	if student.IsDebarred {
		return false
	}
	if student.Ineligibilities.Has(exam.SubjectCode) {
		return false
	}
	return !student.Unavailability.Has(exam.ID)
}

func takesExam(student models.Student, exam models.ExamSlot) bool {
	if exam.SubjectCode != "" && student.EligibleSubjects.Contains(exam.SubjectCode) {
		return true
	}
	if student.Course != exam.Course || student.Semester != exam.Semester {
		return false
	}
	if exam.Group == nil || *exam.Group == "" {
		return true
	}
	return student.Group != nil && *student.Group == *exam.Group
}
