package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/examplanner-api/internal/dto"
	"github.com/noah-isme/examplanner-api/internal/models"
	appErrors "github.com/noah-isme/examplanner-api/pkg/errors"
)

type invigilatorRepository interface {
	List(ctx context.Context, filter models.InvigilatorFilter) ([]models.Invigilator, int, error)
	FindByID(ctx context.Context, id string) (*models.Invigilator, error)
	Create(ctx context.Context, invigilator *models.Invigilator) error
	Update(ctx context.Context, invigilator *models.Invigilator) error
	Delete(ctx context.Context, id string) error
}

// InvigilatorService manages invigilator profiles. Duty history is owned by
// the allotment service.
type InvigilatorService struct {
	repo      invigilatorRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewInvigilatorService constructs the invigilator service.
func NewInvigilatorService(repo invigilatorRepository, validate *validator.Validate, logger *zap.Logger) *InvigilatorService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InvigilatorService{repo: repo, validator: validate, logger: logger}
}

// List returns invigilators with pagination.
func (s *InvigilatorService) List(ctx context.Context, filter models.InvigilatorFilter) ([]models.Invigilator, *models.Pagination, error) {
	invigilators, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list invigilators")
	}
	return invigilators, newPagination(filter.Page, filter.PageSize, total), nil
}

// Get returns one invigilator including duty history.
func (s *InvigilatorService) Get(ctx context.Context, id string) (*models.Invigilator, error) {
	invigilator, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "invigilator not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load invigilator")
	}
	return invigilator, nil
}

// Create registers an invigilator with an empty duty history.
func (s *InvigilatorService) Create(ctx context.Context, req dto.InvigilatorRequest) (*models.Invigilator, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid invigilator payload")
	}
	invigilator := &models.Invigilator{Duties: models.DutyRecordList{}}
	applyInvigilatorRequest(invigilator, req)
	if err := s.repo.Create(ctx, invigilator); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create invigilator")
	}
	return invigilator, nil
}

// Update edits an invigilator's profile and availability.
func (s *InvigilatorService) Update(ctx context.Context, id string, req dto.InvigilatorRequest) (*models.Invigilator, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid invigilator payload")
	}
	invigilator, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	applyInvigilatorRequest(invigilator, req)
	if err := s.repo.Update(ctx, invigilator); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update invigilator")
	}
	return invigilator, nil
}

// Delete removes an invigilator.
func (s *InvigilatorService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "invigilator not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete invigilator")
	}
	return nil
}

func applyInvigilatorRequest(invigilator *models.Invigilator, req dto.InvigilatorRequest) {
	invigilator.Name = req.Name
	invigilator.Department = req.Department
	invigilator.IsAvailable = true
	if req.IsAvailable != nil {
		invigilator.IsAvailable = *req.IsAvailable
	}
	invigilator.Unavailability = models.SlotUnavailabilityList(req.Unavailability)
}
