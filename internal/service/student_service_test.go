package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/examplanner-api/internal/dto"
	"github.com/noah-isme/examplanner-api/internal/models"
)

type mockStudentRepo struct {
	students   map[string]models.Student
	rollOwners map[string]string
	lastFilter models.StudentFilter
	listTotal  int
	err        error
}

func (m *mockStudentRepo) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	m.lastFilter = filter
	if m.err != nil {
		return nil, 0, m.err
	}
	students := make([]models.Student, 0, len(m.students))
	for _, s := range m.students {
		students = append(students, s)
	}
	return students, m.listTotal, nil
}

func (m *mockStudentRepo) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if s, ok := m.students[id]; ok {
		return &s, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockStudentRepo) ExistsByRollNumber(ctx context.Context, rollNumber string, excludeID string) (bool, error) {
	if id, ok := m.rollOwners[rollNumber]; ok {
		if excludeID == "" || id != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockStudentRepo) Create(ctx context.Context, student *models.Student) error {
	if m.students == nil {
		m.students = make(map[string]models.Student)
	}
	if student.ID == "" {
		student.ID = "generated"
	}
	m.students[student.ID] = *student
	return nil
}

func (m *mockStudentRepo) Update(ctx context.Context, student *models.Student) error {
	m.students[student.ID] = *student
	return nil
}

func (m *mockStudentRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.students[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.students, id)
	return nil
}

func validStudentRequest(roll string) dto.StudentRequest {
	return dto.StudentRequest{
		RollNumber:       roll,
		Name:             "Asha Rao",
		Department:       "Engineering",
		Course:           "CS",
		Semester:         4,
		EligibleSubjects: []string{"CS401"},
		Unavailability:   []models.SlotUnavailability{{SlotID: "exam-9", Reason: "medical"}},
	}
}

func TestStudentServiceCreate(t *testing.T) {
	repo := &mockStudentRepo{rollOwners: map[string]string{}}
	svc := NewStudentService(repo, validator.New(), zap.NewNop())

	student, err := svc.Create(context.Background(), validStudentRequest("CS001"))
	require.NoError(t, err)
	assert.NotEmpty(t, student.ID)
	assert.Equal(t, models.StringList{"CS401"}, student.EligibleSubjects)
	assert.Len(t, student.Unavailability, 1)
	assert.Equal(t, 1, len(repo.students))
}

func TestStudentServiceCreateDuplicate(t *testing.T) {
	repo := &mockStudentRepo{rollOwners: map[string]string{"CS001": "another"}}
	svc := NewStudentService(repo, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), validStudentRequest("CS001"))
	requireAppError(t, err, 409)
}

func TestStudentServiceCreateValidation(t *testing.T) {
	svc := NewStudentService(&mockStudentRepo{}, nil, nil)

	req := validStudentRequest("CS001")
	req.Semester = 0
	_, err := svc.Create(context.Background(), req)
	requireAppError(t, err, 400)

	req = validStudentRequest("CS001")
	req.Unavailability = []models.SlotUnavailability{{Reason: "no slot"}}
	_, err = svc.Create(context.Background(), req)
	requireAppError(t, err, 400)
}

func TestStudentServiceUpdate(t *testing.T) {
	repo := &mockStudentRepo{
		students:   map[string]models.Student{"id1": {ID: "id1", RollNumber: "CS001", Name: "Old", Course: "CS", Semester: 2}},
		rollOwners: map[string]string{"CS001": "id1"},
	}
	svc := NewStudentService(repo, validator.New(), zap.NewNop())

	req := validStudentRequest("CS001")
	req.IsDebarred = true
	updated, err := svc.Update(context.Background(), "id1", req)
	require.NoError(t, err)
	assert.Equal(t, "Asha Rao", updated.Name)
	assert.True(t, repo.students["id1"].IsDebarred)

	_, err = svc.Update(context.Background(), "missing", req)
	requireAppError(t, err, 404)
}

func TestStudentServiceListAndDelete(t *testing.T) {
	repo := &mockStudentRepo{students: map[string]models.Student{"id1": {ID: "id1"}}, listTotal: 41}
	svc := NewStudentService(repo, nil, nil)

	students, pagination, err := svc.List(context.Background(), models.StudentFilter{Page: 2, PageSize: 20, Course: "CS"})
	require.NoError(t, err)
	assert.Len(t, students, 1)
	assert.Equal(t, "CS", repo.lastFilter.Course)
	assert.Equal(t, 41, pagination.TotalCount)
	assert.Equal(t, 2, pagination.Page)

	require.NoError(t, svc.Delete(context.Background(), "id1"))
	requireAppError(t, svc.Delete(context.Background(), "id1"), 404)
}
