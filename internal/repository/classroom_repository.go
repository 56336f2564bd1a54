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

const classroomColumns = `id, name, building, row_count, column_count, bench_capacity, bench_capacities, unavailability, created_at, updated_at`

// ClassroomRepository manages persistence for exam halls.
type ClassroomRepository struct {
	db *sqlx.DB
}

// NewClassroomRepository constructs a ClassroomRepository.
func NewClassroomRepository(db *sqlx.DB) *ClassroomRepository {
	return &ClassroomRepository{db: db}
}

// List returns classrooms matching filter.
func (r *ClassroomRepository) List(ctx context.Context, filter models.ClassroomFilter) ([]models.Classroom, int, error) {
	args := []interface{}{}
	conditions := []string{"1=1"}
	if filter.Building != "" {
		args = append(args, filter.Building)
		conditions = append(conditions, fmt.Sprintf("building = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
		conditions = append(conditions, fmt.Sprintf("LOWER(name) LIKE $%d", len(args)))
	}
	where := "WHERE " + strings.Join(conditions, " AND ")

	column := "name"
	if filter.SortBy == "created_at" || filter.SortBy == "building" {
		column = filter.SortBy
	}
	order := sortDirection(filter.SortOrder, "ASC")
	limit, offset := pageWindow(filter.Page, filter.PageSize)

	query := fmt.Sprintf("SELECT %s FROM classrooms %s ORDER BY %s %s LIMIT %d OFFSET %d", classroomColumns, where, column, order, limit, offset)
	var rooms []models.Classroom
	if err := r.db.SelectContext(ctx, &rooms, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list classrooms: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM classrooms "+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count classrooms: %w", err)
	}
	return rooms, total, nil
}

// ListAll returns every classroom in creation order.
func (r *ClassroomRepository) ListAll(ctx context.Context) ([]models.Classroom, error) {
	var rooms []models.Classroom
	query := fmt.Sprintf("SELECT %s FROM classrooms ORDER BY created_at ASC, name ASC", classroomColumns)
	if err := r.db.SelectContext(ctx, &rooms, query); err != nil {
		return nil, fmt.Errorf("list all classrooms: %w", err)
	}
	return rooms, nil
}

// FindByID fetches a classroom by ID.
func (r *ClassroomRepository) FindByID(ctx context.Context, id string) (*models.Classroom, error) {
	var room models.Classroom
	if err := r.db.GetContext(ctx, &room, fmt.Sprintf("SELECT %s FROM classrooms WHERE id = $1", classroomColumns), id); err != nil {
		return nil, err
	}
	return &room, nil
}

// ExistsByName checks if a classroom name is taken, optionally excluding an ID.
func (r *ClassroomRepository) ExistsByName(ctx context.Context, name string, excludeID string) (bool, error) {
	query := "SELECT 1 FROM classrooms WHERE LOWER(name) = LOWER($1)"
	args := []interface{}{name}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check classroom name: %w", err)
	}
	return true, nil
}

// Create inserts a classroom.
func (r *ClassroomRepository) Create(ctx context.Context, room *models.Classroom) error {
	if room.ID == "" {
		room.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if room.CreatedAt.IsZero() {
		room.CreatedAt = now
	}
	room.UpdatedAt = now
	const query = `INSERT INTO classrooms (id, name, building, row_count, column_count, bench_capacity, bench_capacities, unavailability, created_at, updated_at)
        VALUES (:id, :name, :building, :row_count, :column_count, :bench_capacity, :bench_capacities, :unavailability, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, room); err != nil {
		return fmt.Errorf("create classroom: %w", err)
	}
	return nil
}

// Update modifies a classroom.
func (r *ClassroomRepository) Update(ctx context.Context, room *models.Classroom) error {
	room.UpdatedAt = time.Now().UTC()
	const query = `UPDATE classrooms SET name = :name, building = :building, row_count = :row_count, column_count = :column_count,
        bench_capacity = :bench_capacity, bench_capacities = :bench_capacities, unavailability = :unavailability, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, room); err != nil {
		return fmt.Errorf("update classroom: %w", err)
	}
	return nil
}

// Delete removes a classroom.
func (r *ClassroomRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM classrooms WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete classroom: %w", err)
	}
	return requireAffected(result)
}
