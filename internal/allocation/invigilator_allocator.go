package allocation

import "github.com/noah-isme/examplanner-api/internal/models"

// InvigilatorResult is the outcome of staffing the rooms of one session.
type InvigilatorResult struct {
	Assignments []models.InvigilatorAssignment
	Shortfalls  []models.InvigilatorShortfall
	// Invigilators is the updated snapshot with new duty records appended.
	Invigilators []models.Invigilator
}

// RequiredInvigilators maps a room headcount to the number of invigilators it needs.
func RequiredInvigilators(headcount int) int {
	switch {
	case headcount > 90:
		return 4
	case headcount > 60:
		return 3
	case headcount > 19:
		return 2
	default:
		return 1
	}
}

// AssignInvigilators staffs each room in order, drawing from the available pool
// round-robin. An invigilator is never placed twice in the same room; rooms
// that cannot be fully staffed are reported as shortfalls. The first exam is
// recorded as the representative exam on every assignment.
func AssignInvigilators(invigilators []models.Invigilator, rooms []RoomUsage, exams []models.ExamSlot, opts Options) InvigilatorResult {
	result := InvigilatorResult{
		Assignments: make([]models.InvigilatorAssignment, 0),
		Shortfalls:  make([]models.InvigilatorShortfall, 0),
	}
	var representative models.ExamSlot
	if len(exams) > 0 {
		representative = exams[0]
	}

	pool := availablePool(invigilators, exams)
	duties := make(map[string][]models.DutyRecord)
	cursor := 0

	for _, room := range rooms {
		required := RequiredInvigilators(headcount(room, opts))
		inRoom := make(map[string]bool, required)
		assigned := 0
		for attempts := 0; assigned < required && attempts < len(pool); attempts++ {
			invigilator := pool[cursor%len(pool)]
			cursor++
			if inRoom[invigilator.ID] {
				continue
			}
			inRoom[invigilator.ID] = true
			assigned++
			result.Assignments = append(result.Assignments, models.InvigilatorAssignment{
				ExamID:        representative.ID,
				ClassroomID:   room.Classroom.ID,
				InvigilatorID: invigilator.ID,
			})
			duties[invigilator.ID] = append(duties[invigilator.ID], models.DutyRecord{
				SessionKey:  representative.SessionKey(),
				ExamID:      representative.ID,
				ClassroomID: room.Classroom.ID,
			})
		}
		if assigned < required {
			result.Shortfalls = append(result.Shortfalls, models.InvigilatorShortfall{
				ClassroomID: room.Classroom.ID,
				Required:    required,
				Assigned:    assigned,
			})
		}
	}

	result.Invigilators = make([]models.Invigilator, len(invigilators))
	copy(result.Invigilators, invigilators)
	for i := range result.Invigilators {
		added, ok := duties[result.Invigilators[i].ID]
		if !ok {
			continue
		}
		history := make(models.DutyRecordList, 0, len(result.Invigilators[i].Duties)+len(added))
		history = append(history, result.Invigilators[i].Duties...)
		result.Invigilators[i].Duties = append(history, added...)
		delete(duties, result.Invigilators[i].ID)
	}
	return result
}

func availablePool(invigilators []models.Invigilator, exams []models.ExamSlot) []models.Invigilator {
	pool := make([]models.Invigilator, 0, len(invigilators))
	seen := make(map[string]bool, len(invigilators))
	for _, invigilator := range invigilators {
		if !invigilator.IsAvailable || seen[invigilator.ID] {
			continue
		}
		blocked := false
		for _, exam := range exams {
			if invigilator.Unavailability.Has(exam.ID) {
				blocked = true
				break
			}
		}
		if blocked {
			continue
		}
		seen[invigilator.ID] = true
		pool = append(pool, invigilator)
	}
	return pool
}

func headcount(room RoomUsage, opts Options) int {
	if opts.HeadcountBasis == HeadcountCapacity {
		return room.Classroom.Capacity()
	}
	return room.Seated
}
