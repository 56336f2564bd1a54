package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/examplanner-api/internal/models"
)

const allotmentColumns = `id, session_key, exam_ids, status, meta, committed_by, created_at, updated_at`

// AllotmentRepository persists committed allotments with their seats and duties.
type AllotmentRepository struct {
	db *sqlx.DB
}

// NewAllotmentRepository constructs an AllotmentRepository.
func NewAllotmentRepository(db *sqlx.DB) *AllotmentRepository {
	return &AllotmentRepository{db: db}
}

func (r *AllotmentRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// DeleteBySessionKey removes a prior allotment for the session and returns its
// id, or "" when there was none. Seats and duties cascade.
func (r *AllotmentRepository) DeleteBySessionKey(ctx context.Context, exec sqlx.ExtContext, sessionKey string) (string, error) {
	var id string
	row := r.exec(exec).QueryRowxContext(ctx, `DELETE FROM allotments WHERE session_key = $1 RETURNING id`, sessionKey)
	if err := row.Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("delete allotment by session: %w", err)
	}
	return id, nil
}

// Create inserts the allotment header.
func (r *AllotmentRepository) Create(ctx context.Context, exec sqlx.ExtContext, allotment *models.Allotment) error {
	if allotment.ID == "" {
		allotment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if allotment.CreatedAt.IsZero() {
		allotment.CreatedAt = now
	}
	allotment.UpdatedAt = now
	if len(allotment.Meta) == 0 {
		allotment.Meta = []byte("{}")
	}
	const query = `INSERT INTO allotments (id, session_key, exam_ids, status, meta, committed_by, created_at, updated_at)
        VALUES (:id, :session_key, :exam_ids, :status, :meta, :committed_by, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, allotment); err != nil {
		return fmt.Errorf("create allotment: %w", err)
	}
	return nil
}

// InsertSeats stores the occupied and empty seats of an allotment.
func (r *AllotmentRepository) InsertSeats(ctx context.Context, exec sqlx.ExtContext, seats []models.AllotmentSeat) error {
	if len(seats) == 0 {
		return nil
	}
	target := r.exec(exec)
	now := time.Now().UTC()
	const query = `INSERT INTO allotment_seats (id, allotment_id, classroom_id, seat_number, bench_row, bench_column, position, student_id, roll_number, course, exam_id, created_at)
        VALUES (:id, :allotment_id, :classroom_id, :seat_number, :bench_row, :bench_column, :position, :student_id, :roll_number, :course, :exam_id, :created_at)`
	for i := range seats {
		seat := &seats[i]
		if seat.ID == "" {
			seat.ID = uuid.NewString()
		}
		if seat.CreatedAt.IsZero() {
			seat.CreatedAt = now
		}
		if _, err := sqlx.NamedExecContext(ctx, target, query, seat); err != nil {
			return fmt.Errorf("insert allotment seat: %w", err)
		}
	}
	return nil
}

// InsertDuties stores invigilator assignments of an allotment.
func (r *AllotmentRepository) InsertDuties(ctx context.Context, exec sqlx.ExtContext, duties []models.AllotmentDuty) error {
	if len(duties) == 0 {
		return nil
	}
	target := r.exec(exec)
	now := time.Now().UTC()
	const query = `INSERT INTO allotment_duties (id, allotment_id, exam_id, classroom_id, invigilator_id, created_at)
        VALUES (:id, :allotment_id, :exam_id, :classroom_id, :invigilator_id, :created_at)`
	for i := range duties {
		duty := &duties[i]
		if duty.ID == "" {
			duty.ID = uuid.NewString()
		}
		if duty.CreatedAt.IsZero() {
			duty.CreatedAt = now
		}
		if _, err := sqlx.NamedExecContext(ctx, target, query, duty); err != nil {
			return fmt.Errorf("insert allotment duty: %w", err)
		}
	}
	return nil
}

// UpdateStatus moves an allotment to a new lifecycle status.
func (r *AllotmentRepository) UpdateStatus(ctx context.Context, id string, status models.AllotmentStatus) error {
	result, err := r.db.ExecContext(ctx, `UPDATE allotments SET status = $2, updated_at = $3 WHERE id = $1`, id, status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update allotment status: %w", err)
	}
	return requireAffected(result)
}

// List returns allotment headers ordered by session.
func (r *AllotmentRepository) List(ctx context.Context, filter models.AllotmentFilter) ([]models.Allotment, int, error) {
	args := []interface{}{}
	conditions := []string{"1=1"}
	// session keys start with the exam date, so a lexical compare on the prefix is a date compare
	if filter.DateFrom != "" {
		args = append(args, filter.DateFrom)
		conditions = append(conditions, fmt.Sprintf("LEFT(session_key, 10) >= $%d", len(args)))
	}
	if filter.DateTo != "" {
		args = append(args, filter.DateTo)
		conditions = append(conditions, fmt.Sprintf("LEFT(session_key, 10) <= $%d", len(args)))
	}
	where := "WHERE " + strings.Join(conditions, " AND ")
	limit, offset := pageWindow(filter.Page, filter.PageSize)

	query := fmt.Sprintf("SELECT %s FROM allotments %s ORDER BY session_key ASC LIMIT %d OFFSET %d", allotmentColumns, where, limit, offset)
	var allotments []models.Allotment
	if err := r.db.SelectContext(ctx, &allotments, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list allotments: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM allotments "+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count allotments: %w", err)
	}
	return allotments, total, nil
}

// FindByID fetches an allotment header.
func (r *AllotmentRepository) FindByID(ctx context.Context, id string) (*models.Allotment, error) {
	var allotment models.Allotment
	if err := r.db.GetContext(ctx, &allotment, fmt.Sprintf("SELECT %s FROM allotments WHERE id = $1", allotmentColumns), id); err != nil {
		return nil, err
	}
	return &allotment, nil
}

// FindDetail loads an allotment with its seats and duties.
func (r *AllotmentRepository) FindDetail(ctx context.Context, id string) (*models.AllotmentDetail, error) {
	allotment, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	detail := &models.AllotmentDetail{Allotment: *allotment, Seats: []models.AllotmentSeat{}, Duties: []models.AllotmentDuty{}}

	const seatsQuery = `SELECT id, allotment_id, classroom_id, seat_number, bench_row, bench_column, position, student_id, roll_number, course, exam_id, created_at
        FROM allotment_seats WHERE allotment_id = $1 ORDER BY classroom_id ASC, seat_number ASC`
	if err := r.db.SelectContext(ctx, &detail.Seats, seatsQuery, id); err != nil {
		return nil, fmt.Errorf("list allotment seats: %w", err)
	}
	const dutiesQuery = `SELECT id, allotment_id, exam_id, classroom_id, invigilator_id, created_at
        FROM allotment_duties WHERE allotment_id = $1 ORDER BY created_at ASC, classroom_id ASC`
	if err := r.db.SelectContext(ctx, &detail.Duties, dutiesQuery, id); err != nil {
		return nil, fmt.Errorf("list allotment duties: %w", err)
	}
	return detail, nil
}

// Delete removes an allotment and, through cascade, its seats and duties.
func (r *AllotmentRepository) Delete(ctx context.Context, exec sqlx.ExtContext, id string) error {
	result, err := r.exec(exec).ExecContext(ctx, `DELETE FROM allotments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete allotment: %w", err)
	}
	return requireAffected(result)
}
