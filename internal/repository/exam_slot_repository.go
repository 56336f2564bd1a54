package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/examplanner-api/internal/models"
)

const examSlotColumns = `id, subject_name, subject_code, department, course, semester, group_name, exam_date, exam_time, duration_minutes, created_at, updated_at`

// ExamSlotRepository manages persistence for scheduled papers.
type ExamSlotRepository struct {
	db *sqlx.DB
}

// NewExamSlotRepository constructs an ExamSlotRepository.
func NewExamSlotRepository(db *sqlx.DB) *ExamSlotRepository {
	return &ExamSlotRepository{db: db}
}

// List returns exam slots matching filter ordered by session.
func (r *ExamSlotRepository) List(ctx context.Context, filter models.ExamSlotFilter) ([]models.ExamSlot, int, error) {
	args := []interface{}{}
	conditions := []string{"1=1"}
	if filter.Department != "" {
		args = append(args, filter.Department)
		conditions = append(conditions, fmt.Sprintf("department = $%d", len(args)))
	}
	if filter.Course != "" {
		args = append(args, filter.Course)
		conditions = append(conditions, fmt.Sprintf("course = $%d", len(args)))
	}
	if filter.Semester > 0 {
		args = append(args, filter.Semester)
		conditions = append(conditions, fmt.Sprintf("semester = $%d", len(args)))
	}
	if filter.DateFrom != "" {
		args = append(args, filter.DateFrom)
		conditions = append(conditions, fmt.Sprintf("exam_date >= $%d", len(args)))
	}
	if filter.DateTo != "" {
		args = append(args, filter.DateTo)
		conditions = append(conditions, fmt.Sprintf("exam_date <= $%d", len(args)))
	}
	where := "WHERE " + strings.Join(conditions, " AND ")
	order := sortDirection(filter.SortOrder, "ASC")
	limit, offset := pageWindow(filter.Page, filter.PageSize)

	query := fmt.Sprintf("SELECT %s FROM exam_slots %s ORDER BY exam_date %s, exam_time %s, created_at ASC LIMIT %d OFFSET %d",
		examSlotColumns, where, order, order, limit, offset)
	var slots []models.ExamSlot
	if err := r.db.SelectContext(ctx, &slots, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list exam slots: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM exam_slots "+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count exam slots: %w", err)
	}
	return slots, total, nil
}

// ListByIDs returns the requested exam slots in session order.
func (r *ExamSlotRepository) ListByIDs(ctx context.Context, ids []string) ([]models.ExamSlot, error) {
	if len(ids) == 0 {
		return []models.ExamSlot{}, nil
	}
	query, args, err := sqlx.In(fmt.Sprintf("SELECT %s FROM exam_slots WHERE id IN (?) ORDER BY exam_date ASC, exam_time ASC, created_at ASC", examSlotColumns), ids)
	if err != nil {
		return nil, fmt.Errorf("build exam slot query: %w", err)
	}
	var slots []models.ExamSlot
	if err := r.db.SelectContext(ctx, &slots, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list exam slots by id: %w", err)
	}
	return slots, nil
}

// ListByDateRange returns every slot between from and to inclusive.
func (r *ExamSlotRepository) ListByDateRange(ctx context.Context, from, to string) ([]models.ExamSlot, error) {
	query := fmt.Sprintf("SELECT %s FROM exam_slots WHERE exam_date >= $1 AND exam_date <= $2 ORDER BY exam_date ASC, exam_time ASC, created_at ASC", examSlotColumns)
	var slots []models.ExamSlot
	if err := r.db.SelectContext(ctx, &slots, query, from, to); err != nil {
		return nil, fmt.Errorf("list exam slots by date: %w", err)
	}
	return slots, nil
}

// FindByID fetches an exam slot.
func (r *ExamSlotRepository) FindByID(ctx context.Context, id string) (*models.ExamSlot, error) {
	var slot models.ExamSlot
	if err := r.db.GetContext(ctx, &slot, fmt.Sprintf("SELECT %s FROM exam_slots WHERE id = $1", examSlotColumns), id); err != nil {
		return nil, err
	}
	return &slot, nil
}

// Create inserts an exam slot.
func (r *ExamSlotRepository) Create(ctx context.Context, slot *models.ExamSlot) error {
	if slot.ID == "" {
		slot.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if slot.CreatedAt.IsZero() {
		slot.CreatedAt = now
	}
	slot.UpdatedAt = now
	const query = `INSERT INTO exam_slots (id, subject_name, subject_code, department, course, semester, group_name, exam_date, exam_time, duration_minutes, created_at, updated_at)
        VALUES (:id, :subject_name, :subject_code, :department, :course, :semester, :group_name, :exam_date, :exam_time, :duration_minutes, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, slot); err != nil {
		return fmt.Errorf("create exam slot: %w", err)
	}
	return nil
}

// Update modifies an exam slot.
func (r *ExamSlotRepository) Update(ctx context.Context, slot *models.ExamSlot) error {
	slot.UpdatedAt = time.Now().UTC()
	const query = `UPDATE exam_slots SET subject_name = :subject_name, subject_code = :subject_code, department = :department, course = :course,
        semester = :semester, group_name = :group_name, exam_date = :exam_date, exam_time = :exam_time, duration_minutes = :duration_minutes,
        updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, slot); err != nil {
		return fmt.Errorf("update exam slot: %w", err)
	}
	return nil
}

// Delete removes an exam slot.
func (r *ExamSlotRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM exam_slots WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete exam slot: %w", err)
	}
	return requireAffected(result)
}
