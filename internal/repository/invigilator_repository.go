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

const invigilatorColumns = `id, name, department, is_available, unavailability, duties, created_at, updated_at`

// InvigilatorRepository manages persistence for invigilators.
type InvigilatorRepository struct {
	db *sqlx.DB
}

// NewInvigilatorRepository constructs an InvigilatorRepository.
func NewInvigilatorRepository(db *sqlx.DB) *InvigilatorRepository {
	return &InvigilatorRepository{db: db}
}

func (r *InvigilatorRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// List returns invigilators matching filter.
func (r *InvigilatorRepository) List(ctx context.Context, filter models.InvigilatorFilter) ([]models.Invigilator, int, error) {
	args := []interface{}{}
	conditions := []string{"1=1"}
	if filter.Department != "" {
		args = append(args, filter.Department)
		conditions = append(conditions, fmt.Sprintf("department = $%d", len(args)))
	}
	if filter.Available != nil {
		args = append(args, *filter.Available)
		conditions = append(conditions, fmt.Sprintf("is_available = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
		conditions = append(conditions, fmt.Sprintf("LOWER(name) LIKE $%d", len(args)))
	}
	where := "WHERE " + strings.Join(conditions, " AND ")

	column := "name"
	switch filter.SortBy {
	case "created_at", "department":
		column = filter.SortBy
	case "duty_count":
		column = "jsonb_array_length(duties)"
	}
	order := sortDirection(filter.SortOrder, "ASC")
	limit, offset := pageWindow(filter.Page, filter.PageSize)

	query := fmt.Sprintf("SELECT %s FROM invigilators %s ORDER BY %s %s LIMIT %d OFFSET %d", invigilatorColumns, where, column, order, limit, offset)
	var invigilators []models.Invigilator
	if err := r.db.SelectContext(ctx, &invigilators, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list invigilators: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM invigilators "+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count invigilators: %w", err)
	}
	return invigilators, total, nil
}

// ListAll returns every invigilator in creation order, the round-robin order.
func (r *InvigilatorRepository) ListAll(ctx context.Context) ([]models.Invigilator, error) {
	var invigilators []models.Invigilator
	query := fmt.Sprintf("SELECT %s FROM invigilators ORDER BY created_at ASC, name ASC", invigilatorColumns)
	if err := r.db.SelectContext(ctx, &invigilators, query); err != nil {
		return nil, fmt.Errorf("list all invigilators: %w", err)
	}
	return invigilators, nil
}

// ListAllForUpdate is ListAll with the rows locked until exec's transaction
// ends, so concurrent commits merge duty history one after another.
func (r *InvigilatorRepository) ListAllForUpdate(ctx context.Context, exec sqlx.ExtContext) ([]models.Invigilator, error) {
	var invigilators []models.Invigilator
	query := fmt.Sprintf("SELECT %s FROM invigilators ORDER BY created_at ASC, name ASC FOR UPDATE", invigilatorColumns)
	if err := sqlx.SelectContext(ctx, r.exec(exec), &invigilators, query); err != nil {
		return nil, fmt.Errorf("lock invigilators: %w", err)
	}
	return invigilators, nil
}

// FindByID fetches an invigilator.
func (r *InvigilatorRepository) FindByID(ctx context.Context, id string) (*models.Invigilator, error) {
	var invigilator models.Invigilator
	if err := r.db.GetContext(ctx, &invigilator, fmt.Sprintf("SELECT %s FROM invigilators WHERE id = $1", invigilatorColumns), id); err != nil {
		return nil, err
	}
	return &invigilator, nil
}

// Create inserts an invigilator.
func (r *InvigilatorRepository) Create(ctx context.Context, invigilator *models.Invigilator) error {
	if invigilator.ID == "" {
		invigilator.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if invigilator.CreatedAt.IsZero() {
		invigilator.CreatedAt = now
	}
	invigilator.UpdatedAt = now
	const query = `INSERT INTO invigilators (id, name, department, is_available, unavailability, duties, created_at, updated_at)
        VALUES (:id, :name, :department, :is_available, :unavailability, :duties, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, invigilator); err != nil {
		return fmt.Errorf("create invigilator: %w", err)
	}
	return nil
}

// Update modifies an invigilator's profile. Duty history is only written by
// allotment commits through UpdateDuties.
func (r *InvigilatorRepository) Update(ctx context.Context, invigilator *models.Invigilator) error {
	invigilator.UpdatedAt = time.Now().UTC()
	const query = `UPDATE invigilators SET name = :name, department = :department, is_available = :is_available,
        unavailability = :unavailability, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, invigilator); err != nil {
		return fmt.Errorf("update invigilator: %w", err)
	}
	return nil
}

// UpdateDuties replaces the duty history of an invigilator.
func (r *InvigilatorRepository) UpdateDuties(ctx context.Context, exec sqlx.ExtContext, id string, duties models.DutyRecordList) error {
	const query = `UPDATE invigilators SET duties = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.exec(exec).ExecContext(ctx, query, id, duties, time.Now().UTC()); err != nil {
		return fmt.Errorf("update invigilator duties: %w", err)
	}
	return nil
}

// Delete removes an invigilator.
func (r *InvigilatorRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM invigilators WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete invigilator: %w", err)
	}
	return requireAffected(result)
}
