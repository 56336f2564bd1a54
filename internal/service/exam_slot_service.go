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

const defaultExamDurationMinutes = 180

type examSlotRepository interface {
	List(ctx context.Context, filter models.ExamSlotFilter) ([]models.ExamSlot, int, error)
	FindByID(ctx context.Context, id string) (*models.ExamSlot, error)
	Create(ctx context.Context, slot *models.ExamSlot) error
	Update(ctx context.Context, slot *models.ExamSlot) error
	Delete(ctx context.Context, id string) error
}

// ExamSlotService manages scheduled papers.
type ExamSlotService struct {
	repo      examSlotRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewExamSlotService constructs the exam slot service.
func NewExamSlotService(repo examSlotRepository, validate *validator.Validate, logger *zap.Logger) *ExamSlotService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExamSlotService{repo: repo, validator: validate, logger: logger}
}

// List returns exam slots with pagination.
func (s *ExamSlotService) List(ctx context.Context, filter models.ExamSlotFilter) ([]models.ExamSlot, *models.Pagination, error) {
	slots, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list exam slots")
	}
	return slots, newPagination(filter.Page, filter.PageSize, total), nil
}

// Get returns one exam slot.
func (s *ExamSlotService) Get(ctx context.Context, id string) (*models.ExamSlot, error) {
	slot, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "exam slot not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exam slot")
	}
	return slot, nil
}

// Create schedules a paper.
func (s *ExamSlotService) Create(ctx context.Context, req dto.ExamSlotRequest) (*models.ExamSlot, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid exam slot payload")
	}
	slot := &models.ExamSlot{}
	applyExamSlotRequest(slot, req)
	if err := s.repo.Create(ctx, slot); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create exam slot")
	}
	s.logger.Info("exam slot created", zap.String("exam_id", slot.ID), zap.String("session_key", slot.SessionKey()))
	return slot, nil
}

// Update reschedules or edits a paper. Committed allotments keep the session
// key they were committed under.
func (s *ExamSlotService) Update(ctx context.Context, id string, req dto.ExamSlotRequest) (*models.ExamSlot, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid exam slot payload")
	}
	slot, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	applyExamSlotRequest(slot, req)
	if err := s.repo.Update(ctx, slot); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update exam slot")
	}
	return slot, nil
}

// Delete removes an exam slot.
func (s *ExamSlotService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "exam slot not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete exam slot")
	}
	return nil
}

func applyExamSlotRequest(slot *models.ExamSlot, req dto.ExamSlotRequest) {
	slot.SubjectName = req.SubjectName
	slot.SubjectCode = req.SubjectCode
	slot.Department = req.Department
	slot.Course = req.Course
	slot.Semester = req.Semester
	slot.Group = req.Group
	slot.Date = req.Date
	slot.Time = req.Time
	slot.DurationMinutes = req.DurationMinutes
	if slot.DurationMinutes == 0 {
		slot.DurationMinutes = defaultExamDurationMinutes
	}
}
