package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/examplanner-api/internal/dto"
	"github.com/noah-isme/examplanner-api/internal/models"
	appErrors "github.com/noah-isme/examplanner-api/pkg/errors"
)

type classroomRepository interface {
	List(ctx context.Context, filter models.ClassroomFilter) ([]models.Classroom, int, error)
	FindByID(ctx context.Context, id string) (*models.Classroom, error)
	ExistsByName(ctx context.Context, name string, excludeID string) (bool, error)
	Create(ctx context.Context, room *models.Classroom) error
	Update(ctx context.Context, room *models.Classroom) error
	Delete(ctx context.Context, id string) error
}

// ClassroomService manages exam halls.
type ClassroomService struct {
	repo      classroomRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewClassroomService constructs the classroom service.
func NewClassroomService(repo classroomRepository, validate *validator.Validate, logger *zap.Logger) *ClassroomService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassroomService{repo: repo, validator: validate, logger: logger}
}

// List returns classrooms with pagination.
func (s *ClassroomService) List(ctx context.Context, filter models.ClassroomFilter) ([]models.Classroom, *models.Pagination, error) {
	rooms, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list classrooms")
	}
	return rooms, newPagination(filter.Page, filter.PageSize, total), nil
}

// Get returns one classroom.
func (s *ClassroomService) Get(ctx context.Context, id string) (*models.Classroom, error) {
	room, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "classroom not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load classroom")
	}
	return room, nil
}

// Create registers a classroom.
func (s *ClassroomService) Create(ctx context.Context, req dto.ClassroomRequest) (*models.Classroom, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	if err := s.ensureUniqueName(ctx, req.Name, ""); err != nil {
		return nil, err
	}
	room := &models.Classroom{}
	applyClassroomRequest(room, req)
	if err := s.repo.Create(ctx, room); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create classroom")
	}
	s.logger.Info("classroom created", zap.String("classroom_id", room.ID), zap.Int("capacity", room.Capacity()))
	return room, nil
}

// Update replaces a classroom's layout and availability.
func (s *ClassroomService) Update(ctx context.Context, id string, req dto.ClassroomRequest) (*models.Classroom, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	room, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUniqueName(ctx, req.Name, id); err != nil {
		return nil, err
	}
	applyClassroomRequest(room, req)
	if err := s.repo.Update(ctx, room); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update classroom")
	}
	return room, nil
}

// Delete removes a classroom.
func (s *ClassroomService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "classroom not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete classroom")
	}
	return nil
}

func (s *ClassroomService) validate(req dto.ClassroomRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid classroom payload")
	}
	benches := req.Rows * req.Columns
	if len(req.BenchCapacities) > 0 {
		if len(req.BenchCapacities) != benches {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("bench_capacities must list %d benches, got %d", benches, len(req.BenchCapacities)))
		}
		// Same bench rule as the seat allocator.
		for i, size := range req.BenchCapacities {
			if size < 1 {
				return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("bench %d must seat at least one student", i+1))
			}
		}
		return nil
	}
	if req.BenchCapacity < 1 {
		return appErrors.Clone(appErrors.ErrValidation, "bench_capacity must be at least 1 when bench_capacities is empty")
	}
	return nil
}

func (s *ClassroomService) ensureUniqueName(ctx context.Context, name, excludeID string) error {
	exists, err := s.repo.ExistsByName(ctx, name, excludeID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate classroom name")
	}
	if exists {
		return appErrors.Clone(appErrors.ErrConflict, "classroom name already used")
	}
	return nil
}

func applyClassroomRequest(room *models.Classroom, req dto.ClassroomRequest) {
	room.Name = req.Name
	room.Building = req.Building
	room.Rows = req.Rows
	room.Columns = req.Columns
	room.BenchCapacity = req.BenchCapacity
	room.BenchCapacities = models.IntList(req.BenchCapacities)
	room.Unavailability = models.SlotUnavailabilityList(req.Unavailability)
}
