package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"

	"github.com/noah-isme/examplanner-api/internal/allocation"
	"github.com/noah-isme/examplanner-api/internal/dto"
	"github.com/noah-isme/examplanner-api/internal/models"
	"github.com/noah-isme/examplanner-api/pkg/database"
	appErrors "github.com/noah-isme/examplanner-api/pkg/errors"
	"github.com/noah-isme/examplanner-api/pkg/events"
	"github.com/noah-isme/examplanner-api/pkg/jobs"
)

type allotmentExamReader interface {
	ListByIDs(ctx context.Context, ids []string) ([]models.ExamSlot, error)
	ListByDateRange(ctx context.Context, from, to string) ([]models.ExamSlot, error)
}

type allotmentStudentReader interface {
	ListAll(ctx context.Context) ([]models.Student, error)
}

type allotmentClassroomReader interface {
	ListAll(ctx context.Context) ([]models.Classroom, error)
}

type allotmentInvigilatorStore interface {
	ListAll(ctx context.Context) ([]models.Invigilator, error)
	ListAllForUpdate(ctx context.Context, exec sqlx.ExtContext) ([]models.Invigilator, error)
	UpdateDuties(ctx context.Context, exec sqlx.ExtContext, id string, duties models.DutyRecordList) error
}

type allotmentRepository interface {
	DeleteBySessionKey(ctx context.Context, exec sqlx.ExtContext, sessionKey string) (string, error)
	Create(ctx context.Context, exec sqlx.ExtContext, allotment *models.Allotment) error
	InsertSeats(ctx context.Context, exec sqlx.ExtContext, seats []models.AllotmentSeat) error
	InsertDuties(ctx context.Context, exec sqlx.ExtContext, duties []models.AllotmentDuty) error
	List(ctx context.Context, filter models.AllotmentFilter) ([]models.Allotment, int, error)
	FindByID(ctx context.Context, id string) (*models.Allotment, error)
	FindDetail(ctx context.Context, id string) (*models.AllotmentDetail, error)
	Delete(ctx context.Context, exec sqlx.ExtContext, id string) error
}

type jobEnqueuer interface {
	Enqueue(job jobs.Job) error
}

// AllotmentPublication is the job payload announcing a committed allotment.
type AllotmentPublication struct {
	AllotmentID string
	SessionKey  string
	CommittedBy string
}

// AllotmentRemoval is the job payload announcing a withdrawn allotment.
type AllotmentRemoval struct {
	AllotmentID string
	SessionKey  string
}

// AllotmentConfig governs planner defaults and proposal lifetime.
type AllotmentConfig struct {
	ProposalTTL time.Duration
	Options     allocation.Options
}

// AllotmentService previews, commits and serves seat and invigilator allotments.
type AllotmentService struct {
	exams        allotmentExamReader
	students     allotmentStudentReader
	classrooms   allotmentClassroomReader
	invigilators allotmentInvigilatorStore
	allotments   allotmentRepository
	tx           database.TxBeginner
	cache        *CacheService
	metrics      *MetricsService
	publisher    jobEnqueuer
	validator    *validator.Validate
	logger       *zap.Logger
	cfg          AllotmentConfig
	store        *allotmentProposalStore
}

// NewAllotmentService wires allotment dependencies. cache, metrics and
// publisher are optional.
func NewAllotmentService(
	exams allotmentExamReader,
	students allotmentStudentReader,
	classrooms allotmentClassroomReader,
	invigilators allotmentInvigilatorStore,
	allotments allotmentRepository,
	tx database.TxBeginner,
	cache *CacheService,
	metrics *MetricsService,
	publisher jobEnqueuer,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg AllotmentConfig,
) *AllotmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ProposalTTL <= 0 {
		cfg.ProposalTTL = 30 * time.Minute
	}
	if cfg.Options.HeadcountBasis == "" {
		cfg.Options.HeadcountBasis = allocation.HeadcountSeated
	}
	return &AllotmentService{
		exams:        exams,
		students:     students,
		classrooms:   classrooms,
		invigilators: invigilators,
		allotments:   allotments,
		tx:           tx,
		cache:        cache,
		metrics:      metrics,
		publisher:    publisher,
		validator:    validate,
		logger:       logger,
		cfg:          cfg,
		store:        newAllotmentProposalStore(cfg.ProposalTTL),
	}
}

// Preview plans every session touched by the request and keeps the result as
// a proposal until it is committed or expires. Nothing is persisted.
func (s *AllotmentService) Preview(ctx context.Context, req dto.PreviewAllotmentRequest) (*dto.AllotmentPreviewResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid allotment preview payload")
	}
	exams, err := s.loadExams(ctx, req)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	snapshot, err := s.loadSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveDBQuery("allotment_snapshot", time.Since(start))

	opts := s.cfg.Options
	if req.SortByRollNumber != nil {
		opts.SortByRollNumber = *req.SortByRollNumber
	}
	if req.HeadcountBasis != "" {
		opts.HeadcountBasis = allocation.ParseHeadcountBasis(req.HeadcountBasis)
	}

	planStart := time.Now()
	result, err := allocation.PlanSessions(snapshot, exams, opts)
	if err != nil {
		s.metrics.ObservePreview("failed", 0, 0, 0, time.Since(planStart))
		return nil, s.planningError(err)
	}

	totals := models.SummarizeSessions(result.Sessions)
	s.metrics.ObservePreview("ok", totals.Seated, totals.Unseated, totals.ShortStaffedRooms, time.Since(planStart))

	proposal := s.store.Save(result.Sessions, opts)
	for _, session := range result.Sessions {
		if session.Plan.CapacityShortfall > 0 || len(session.InvigilatorShortfalls) > 0 {
			s.logger.Warn("allotment session has shortfalls",
				zap.String("proposal_id", proposal.ID),
				zap.String("session_key", session.SessionKey),
				zap.Int("capacity_shortfall", session.Plan.CapacityShortfall),
				zap.Int("unseated", len(session.Plan.Unseated)),
				zap.Int("short_staffed_rooms", len(session.InvigilatorShortfalls)),
			)
		}
	}
	s.logger.Info("allotment preview generated",
		zap.String("proposal_id", proposal.ID),
		zap.Int("sessions", totals.Sessions),
		zap.Int("seated", totals.Seated),
	)

	return &dto.AllotmentPreviewResponse{
		ProposalID: proposal.ID,
		ExpiresAt:  proposal.RequestedAt.Add(s.cfg.ProposalTTL),
		Sessions:   result.Sessions,
		Totals:     totals,
	}, nil
}

// Commit persists a proposal. Each session replaces any allotment already
// committed under the same session key, and invigilator duty history is
// rewritten for those sessions.
func (s *AllotmentService) Commit(ctx context.Context, req dto.CommitAllotmentRequest, committedBy string) (*dto.CommitAllotmentResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid allotment commit payload")
	}
	proposal, ok := s.store.Get(req.ProposalID)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrProposalExpired, "allotment proposal not found or expired")
	}
	if s.tx == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}

	var committer *string
	if committedBy != "" {
		committer = &committedBy
	}

	resp := &dto.CommitAllotmentResponse{Allotments: make([]models.Allotment, 0, len(proposal.Sessions)), Replaced: []string{}}
	replacedIDs := make([]string, 0)
	err := database.WithTx(ctx, s.tx, func(tx *sqlx.Tx) error {
		for _, session := range proposal.Sessions {
			replaced, err := s.allotments.DeleteBySessionKey(ctx, tx, session.SessionKey)
			if err != nil {
				return err
			}
			if replaced != "" {
				replacedIDs = append(replacedIDs, replaced)
				resp.Replaced = append(resp.Replaced, session.SessionKey)
			}

			meta, err := allotmentMeta(proposal, session)
			if err != nil {
				return err
			}
			record := &models.Allotment{
				SessionKey:  session.SessionKey,
				ExamIDs:     models.StringList(session.Plan.ExamIDs),
				Status:      models.AllotmentStatusCommitted,
				Meta:        meta,
				CommittedBy: committer,
			}
			if err := s.allotments.Create(ctx, tx, record); err != nil {
				return err
			}
			if err := s.allotments.InsertSeats(ctx, tx, allotmentSeats(record.ID, session.Plan)); err != nil {
				return err
			}
			if err := s.allotments.InsertDuties(ctx, tx, allotmentDuties(record.ID, session.Assignments)); err != nil {
				return err
			}
			resp.Allotments = append(resp.Allotments, *record)
		}
		return s.rewriteDuties(ctx, tx, proposal.Sessions)
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit allotment")
	}

	s.store.Delete(req.ProposalID)
	s.metrics.ObserveCommit(len(resp.Allotments))
	if len(replacedIDs) > 0 {
		s.cache.EvictAllotments(ctx, replacedIDs...)
	}
	for i, id := range replacedIDs {
		s.enqueue(events.TypeAllotmentDeleted, AllotmentRemoval{AllotmentID: id, SessionKey: resp.Replaced[i]})
	}
	for _, record := range resp.Allotments {
		s.enqueue(events.TypeAllotmentCommitted, AllotmentPublication{AllotmentID: record.ID, SessionKey: record.SessionKey, CommittedBy: committedBy})
	}
	s.logger.Info("allotment committed",
		zap.String("proposal_id", req.ProposalID),
		zap.Int("sessions", len(resp.Allotments)),
		zap.Strings("replaced_sessions", resp.Replaced),
	)
	return resp, nil
}

// List returns committed allotment headers.
func (s *AllotmentService) List(ctx context.Context, filter models.AllotmentFilter) ([]models.Allotment, *models.Pagination, error) {
	allotments, total, err := s.allotments.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list allotments")
	}
	return allotments, newPagination(filter.Page, filter.PageSize, total), nil
}

// Get returns a committed allotment with seats and duties, served from cache when possible.
func (s *AllotmentService) Get(ctx context.Context, id string) (*models.AllotmentDetail, bool, error) {
	if cached, hit := s.cache.Allotment(ctx, id); hit {
		return cached, true, nil
	}
	detail, err := s.allotments.FindDetail(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, appErrors.Clone(appErrors.ErrNotFound, "allotment not found")
		}
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load allotment")
	}
	s.cache.StoreAllotment(ctx, detail)
	return detail, false, nil
}

// Delete withdraws a committed allotment and strips its session from
// invigilator duty history.
func (s *AllotmentService) Delete(ctx context.Context, id string) error {
	record, err := s.allotments.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "allotment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load allotment")
	}
	if s.tx == nil {
		return appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}
	err = database.WithTx(ctx, s.tx, func(tx *sqlx.Tx) error {
		if err := s.allotments.Delete(ctx, tx, id); err != nil {
			return err
		}
		return s.rewriteDuties(ctx, tx, []models.SessionAllotment{{SessionKey: record.SessionKey}})
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "allotment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete allotment")
	}

	s.cache.EvictAllotments(ctx, id)
	s.enqueue(events.TypeAllotmentDeleted, AllotmentRemoval{AllotmentID: id, SessionKey: record.SessionKey})
	s.logger.Info("allotment deleted", zap.String("allotment_id", id), zap.String("session_key", record.SessionKey))
	return nil
}

// rewriteDuties merges sessions into duty history read under row locks on tx.
func (s *AllotmentService) rewriteDuties(ctx context.Context, tx *sqlx.Tx, sessions []models.SessionAllotment) error {
	invigilators, err := s.invigilators.ListAllForUpdate(ctx, tx)
	if err != nil {
		return err
	}
	updates := mergeDuties(invigilators, sessions)
	for _, id := range sortedKeys(updates) {
		if err := s.invigilators.UpdateDuties(ctx, tx, id, updates[id]); err != nil {
			return err
		}
	}
	return nil
}

func (s *AllotmentService) loadExams(ctx context.Context, req dto.PreviewAllotmentRequest) ([]models.ExamSlot, error) {
	hasRange := req.DateFrom != "" || req.DateTo != ""
	switch {
	case len(req.ExamIDs) > 0 && hasRange:
		return nil, appErrors.Clone(appErrors.ErrValidation, "exam_ids and a date range cannot be combined")
	case len(req.ExamIDs) > 0:
		return s.loadExamsByID(ctx, req.ExamIDs)
	case req.DateFrom == "" || req.DateTo == "":
		return nil, appErrors.Clone(appErrors.ErrValidation, "either exam_ids or both date_from and date_to are required")
	case req.DateFrom > req.DateTo:
		return nil, appErrors.Clone(appErrors.ErrValidation, "date_from must not be after date_to")
	}

	exams, err := s.exams.ListByDateRange(ctx, req.DateFrom, req.DateTo)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exam slots")
	}
	if len(exams) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no exam slots scheduled in the requested range")
	}
	return exams, nil
}

// loadExamsByID keeps the caller's order, which decides encounter order inside a session.
func (s *AllotmentService) loadExamsByID(ctx context.Context, ids []string) ([]models.ExamSlot, error) {
	unique := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}
	found, err := s.exams.ListByIDs(ctx, unique)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exam slots")
	}
	byID := make(map[string]models.ExamSlot, len(found))
	for _, exam := range found {
		byID[exam.ID] = exam
	}
	exams := make([]models.ExamSlot, 0, len(unique))
	missing := make([]string, 0)
	for _, id := range unique {
		exam, ok := byID[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		exams = append(exams, exam)
	}
	if len(missing) > 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("exam slots not found: %s", strings.Join(missing, ", ")))
	}
	return exams, nil
}

func (s *AllotmentService) loadSnapshot(ctx context.Context) (allocation.Snapshot, error) {
	students, err := s.students.ListAll(ctx)
	if err != nil {
		return allocation.Snapshot{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load students")
	}
	classrooms, err := s.classrooms.ListAll(ctx)
	if err != nil {
		return allocation.Snapshot{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load classrooms")
	}
	invigilators, err := s.invigilators.ListAll(ctx)
	if err != nil {
		return allocation.Snapshot{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load invigilators")
	}
	return allocation.Snapshot{Students: students, Classrooms: classrooms, Invigilators: invigilators}, nil
}

func (s *AllotmentService) planningError(err error) error {
	switch {
	case errors.Is(err, allocation.ErrInputInconsistency):
		return appErrors.Wrap(err, appErrors.ErrInputInconsistency.Code, appErrors.ErrInputInconsistency.Status, err.Error())
	case errors.Is(err, allocation.ErrConstraintViolation):
		s.logger.DPanic("seat plan failed verification", zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "seat plan failed verification")
	default:
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to plan allotment")
	}
}

func (s *AllotmentService) enqueue(jobType string, payload interface{}) {
	if s.publisher == nil {
		return
	}
	job := jobs.Job{ID: uuid.NewString(), Type: jobType, Payload: payload}
	if err := s.publisher.Enqueue(job); err != nil {
		s.logger.Warn("failed to enqueue allotment publication", zap.String("type", jobType), zap.Error(err))
	}
}

func allotmentMeta(proposal allotmentProposal, session models.SessionAllotment) (types.JSONText, error) {
	payload := map[string]any{
		"proposal_id":            proposal.ID,
		"generated_at":           proposal.RequestedAt,
		"sort_by_roll":           proposal.Options.SortByRollNumber,
		"headcount_basis":        proposal.Options.HeadcountBasis,
		"capacity_shortfall":     session.Plan.CapacityShortfall,
		"unseated":               session.Plan.Unseated,
		"conflicts":              session.Plan.Conflicts,
		"invigilator_shortfalls": session.InvigilatorShortfalls,
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode allotment meta: %w", err)
	}
	return types.JSONText(raw), nil
}

func allotmentSeats(allotmentID string, plan models.SeatPlan) []models.AllotmentSeat {
	seats := make([]models.AllotmentSeat, 0, len(plan.Seats))
	for _, seat := range plan.Seats {
		record := models.AllotmentSeat{
			AllotmentID: allotmentID,
			ClassroomID: seat.ClassroomID,
			SeatNumber:  seat.SeatNumber,
			BenchRow:    seat.Row,
			BenchColumn: seat.Column,
			Position:    seat.Position,
		}
		if seat.Student != nil {
			ref := *seat.Student
			record.StudentID = &ref.StudentID
			record.RollNumber = &ref.RollNumber
			record.Course = &ref.Course
			record.ExamID = &ref.ExamID
		}
		seats = append(seats, record)
	}
	return seats
}

func allotmentDuties(allotmentID string, assignments []models.InvigilatorAssignment) []models.AllotmentDuty {
	duties := make([]models.AllotmentDuty, 0, len(assignments))
	for _, assignment := range assignments {
		duties = append(duties, models.AllotmentDuty{
			AllotmentID:   allotmentID,
			ExamID:        assignment.ExamID,
			ClassroomID:   assignment.ClassroomID,
			InvigilatorID: assignment.InvigilatorID,
		})
	}
	return duties
}

// mergeDuties drops every duty recorded for the given sessions and appends
// the sessions' new assignments. Only invigilators whose history changes are
// returned.
func mergeDuties(invigilators []models.Invigilator, sessions []models.SessionAllotment) map[string]models.DutyRecordList {
	touched := make(map[string]bool, len(sessions))
	added := make(map[string]models.DutyRecordList)
	for _, session := range sessions {
		touched[session.SessionKey] = true
		for _, assignment := range session.Assignments {
			added[assignment.InvigilatorID] = append(added[assignment.InvigilatorID], models.DutyRecord{
				SessionKey:  session.SessionKey,
				ExamID:      assignment.ExamID,
				ClassroomID: assignment.ClassroomID,
			})
		}
	}

	updates := make(map[string]models.DutyRecordList)
	for _, invigilator := range invigilators {
		kept := make(models.DutyRecordList, 0, len(invigilator.Duties))
		for _, duty := range invigilator.Duties {
			if !touched[duty.SessionKey] {
				kept = append(kept, duty)
			}
		}
		fresh := added[invigilator.ID]
		if len(kept) == len(invigilator.Duties) && len(fresh) == 0 {
			continue
		}
		updates[invigilator.ID] = append(kept, fresh...)
	}
	return updates
}

func sortedKeys(m map[string]models.DutyRecordList) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type allotmentProposal struct {
	ID          string
	Sessions    []models.SessionAllotment
	Options     allocation.Options
	RequestedAt time.Time
}

type allotmentProposalStore struct {
	ttl   time.Duration
	now   func() time.Time
	mu    sync.RWMutex
	items map[string]allotmentProposal
}

func newAllotmentProposalStore(ttl time.Duration) *allotmentProposalStore {
	return &allotmentProposalStore{
		ttl:   ttl,
		now:   time.Now,
		items: make(map[string]allotmentProposal),
	}
}

// Save stores a new proposal and drops expired ones.
func (s *allotmentProposalStore) Save(sessions []models.SessionAllotment, opts allocation.Options) allotmentProposal {
	proposal := allotmentProposal{
		ID:          uuid.NewString(),
		Sessions:    sessions,
		Options:     opts,
		RequestedAt: s.now().UTC(),
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, item := range s.items {
		if s.expired(item) {
			delete(s.items, id)
		}
	}
	s.items[proposal.ID] = proposal
	return proposal
}

func (s *allotmentProposalStore) Get(id string) (allotmentProposal, bool) {
	s.mu.RLock()
	proposal, ok := s.items[id]
	s.mu.RUnlock()
	if !ok {
		return allotmentProposal{}, false
	}
	if s.expired(proposal) {
		s.Delete(id)
		return allotmentProposal{}, false
	}
	return proposal, true
}

func (s *allotmentProposalStore) Delete(id string) {
	s.mu.Lock()
	delete(s.items, id)
	s.mu.Unlock()
}

func (s *allotmentProposalStore) expired(proposal allotmentProposal) bool {
	return s.now().Sub(proposal.RequestedAt) > s.ttl
}
