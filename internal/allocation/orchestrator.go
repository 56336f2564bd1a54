package allocation

import (
	"fmt"
	"sort"
	"time"

	"github.com/noah-isme/examplanner-api/internal/models"
)

// Snapshot is the master data threaded from one session to the next.
type Snapshot struct {
	Students     []models.Student
	Classrooms   []models.Classroom
	Invigilators []models.Invigilator
}

// Session groups the exams sharing one date and time.
type Session struct {
	Key      string
	StartsAt time.Time
	Exams    []models.ExamSlot
}

// Result carries every planned session and the final snapshot.
type Result struct {
	Sessions []models.SessionAllotment
	Snapshot Snapshot
}

// GroupSessions buckets exams by session key and orders the buckets
// chronologically. Exams keep their input order inside a session.
func GroupSessions(exams []models.ExamSlot) ([]Session, error) {
	index := make(map[string]int)
	sessions := make([]Session, 0)
	for _, exam := range exams {
		key := exam.SessionKey()
		if i, ok := index[key]; ok {
			sessions[i].Exams = append(sessions[i].Exams, exam)
			continue
		}
		startsAt, err := exam.StartsAt()
		if err != nil {
			return nil, fmt.Errorf("%w: exam %s has an invalid date or time: %v", ErrInputInconsistency, exam.ID, err)
		}
		index[key] = len(sessions)
		sessions = append(sessions, Session{Key: key, StartsAt: startsAt, Exams: []models.ExamSlot{exam}})
	}
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].StartsAt.Before(sessions[j].StartsAt)
	})
	return sessions, nil
}

// PlanSessions plans every session in chronological order. Each session sees
// the students and invigilators returned by the previous one, so seat
// assignments and duty history carry forward. The input snapshot is left
// untouched.
func PlanSessions(snapshot Snapshot, exams []models.ExamSlot, opts Options) (*Result, error) {
	sessions, err := GroupSessions(exams)
	if err != nil {
		return nil, err
	}

	current := snapshot
	planned := make([]models.SessionAllotment, 0, len(sessions))
	for _, session := range sessions {
		seating, err := GenerateSeatPlan(current.Students, current.Classrooms, session.Exams, opts)
		if err != nil {
			return nil, fmt.Errorf("session %s: %w", session.Key, err)
		}
		if err := VerifySeatPlan(seating.Plan, current.Classrooms); err != nil {
			return nil, fmt.Errorf("session %s: %w", session.Key, err)
		}
		staffing := AssignInvigilators(current.Invigilators, seating.Rooms, session.Exams, opts)

		planned = append(planned, models.SessionAllotment{
			SessionKey:            session.Key,
			Plan:                  seating.Plan,
			Assignments:           staffing.Assignments,
			InvigilatorShortfalls: staffing.Shortfalls,
		})
		current = Snapshot{
			Students:     seating.Students,
			Classrooms:   current.Classrooms,
			Invigilators: staffing.Invigilators,
		}
	}
	return &Result{Sessions: planned, Snapshot: current}, nil
}
