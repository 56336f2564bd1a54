package allocation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/examplanner-api/internal/models"
)

func seatFor(roomID string, number, column, position int, studentID, course string) models.Seat {
	return models.Seat{
		ClassroomID: roomID,
		SeatNumber:  number,
		Row:         1,
		Column:      column,
		Position:    position,
		Student:     &models.CandidateRef{StudentID: studentID, Course: course},
	}
}

func TestVerifySeatPlan(t *testing.T) {
	rooms := []models.Classroom{room("r1", 1, 2, 2)}

	t.Run("valid", func(t *testing.T) {
		plan := models.SeatPlan{Seats: []models.Seat{
			seatFor("r1", 1, 1, 1, "s1", "BCA"),
			seatFor("r1", 2, 1, 2, "s2", "MCA"),
			{ClassroomID: "r1", SeatNumber: 3, Row: 1, Column: 2, Position: 1},
			seatFor("r1", 4, 2, 2, "s3", "BCA"),
		}}
		assert.NoError(t, VerifySeatPlan(plan, rooms))
	})

	t.Run("same course on bench", func(t *testing.T) {
		plan := models.SeatPlan{Seats: []models.Seat{
			seatFor("r1", 1, 1, 1, "s1", "BCA"),
			seatFor("r1", 2, 1, 2, "s2", "BCA"),
		}}
		assert.ErrorIs(t, VerifySeatPlan(plan, rooms), ErrConstraintViolation)
	})

	t.Run("student seated twice", func(t *testing.T) {
		plan := models.SeatPlan{Seats: []models.Seat{
			seatFor("r1", 1, 1, 1, "s1", "BCA"),
			seatFor("r1", 3, 2, 1, "s1", "BCA"),
		}}
		assert.ErrorIs(t, VerifySeatPlan(plan, rooms), ErrConstraintViolation)
	})

	t.Run("over capacity", func(t *testing.T) {
		tiny := []models.Classroom{room("r1", 1, 1, 1)}
		plan := models.SeatPlan{Seats: []models.Seat{
			seatFor("r1", 1, 1, 1, "s1", "BCA"),
			seatFor("r1", 2, 2, 1, "s2", "MCA"),
		}}
		assert.ErrorIs(t, VerifySeatPlan(plan, tiny), ErrConstraintViolation)
	})
}
