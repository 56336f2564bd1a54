package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/examplanner-api/internal/models"
	"github.com/noah-isme/examplanner-api/pkg/docstore"
	"github.com/noah-isme/examplanner-api/pkg/events"
	"github.com/noah-isme/examplanner-api/pkg/jobs"
)

type publicationRepository interface {
	FindDetail(ctx context.Context, id string) (*models.AllotmentDetail, error)
	UpdateStatus(ctx context.Context, id string, status models.AllotmentStatus) error
}

// AllotmentPublicationService fans committed allotments out to the message
// broker and the document mirror. It runs on the background job queue.
type AllotmentPublicationService struct {
	allotments publicationRepository
	publisher  events.Publisher
	mirror     docstore.Mirror
	cache      *CacheService
	metrics    *MetricsService
	logger     *zap.Logger
	now        func() time.Time
}

// NewAllotmentPublicationService constructs the publication worker. Nil
// publisher or mirror fall back to no-op implementations; cache may be nil.
func NewAllotmentPublicationService(allotments publicationRepository, publisher events.Publisher, mirror docstore.Mirror, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *AllotmentPublicationService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	if mirror == nil {
		mirror = docstore.NoopMirror{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AllotmentPublicationService{
		allotments: allotments,
		publisher:  publisher,
		mirror:     mirror,
		cache:      cache,
		metrics:    metrics,
		logger:     logger,
		now:        time.Now,
	}
}

// Register binds the publication handlers to router.
func (s *AllotmentPublicationService) Register(router *jobs.Router) {
	router.Handle(events.TypeAllotmentCommitted, s.handleCommitted)
	router.Handle(events.TypeAllotmentDeleted, s.handleDeleted)
}

func (s *AllotmentPublicationService) handleCommitted(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(AllotmentPublication)
	if !ok {
		return jobs.Permanent(fmt.Errorf("unexpected payload %T for %s", job.Payload, job.Type))
	}
	detail, err := s.allotments.FindDetail(ctx, payload.AllotmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Replaced or deleted before the job ran.
			return jobs.Permanent(fmt.Errorf("allotment %s no longer exists", payload.AllotmentID))
		}
		return err
	}

	event := committedEvent(*detail, payload.CommittedBy, s.now().UTC())
	err = s.publisher.PublishAllotmentCommitted(ctx, event)
	s.metrics.ObservePublication("broker", err)
	if err != nil {
		return fmt.Errorf("publish allotment %s: %w", detail.ID, err)
	}

	detail.Status = models.AllotmentStatusPublished
	err = s.mirror.PutAllotment(ctx, docstore.NewAllotmentDocument(*detail))
	s.metrics.ObservePublication("docstore", err)
	if err != nil {
		return fmt.Errorf("mirror allotment %s: %w", detail.ID, err)
	}

	if err := s.allotments.UpdateStatus(ctx, detail.ID, models.AllotmentStatusPublished); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return jobs.Permanent(err)
		}
		return err
	}
	// Cached details still carry the committed status.
	s.cache.EvictAllotments(ctx, detail.ID)
	s.logger.Info("allotment published",
		zap.String("allotment_id", detail.ID),
		zap.String("session_key", detail.SessionKey),
		zap.Int("seated", event.SeatedCount),
	)
	return nil
}

func (s *AllotmentPublicationService) handleDeleted(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(AllotmentRemoval)
	if !ok {
		return jobs.Permanent(fmt.Errorf("unexpected payload %T for %s", job.Payload, job.Type))
	}
	err := s.publisher.PublishAllotmentDeleted(ctx, events.AllotmentDeleted{
		AllotmentID: payload.AllotmentID,
		SessionKey:  payload.SessionKey,
		DeletedAt:   s.now().UTC(),
	})
	s.metrics.ObservePublication("broker", err)
	if err != nil {
		return fmt.Errorf("publish allotment removal %s: %w", payload.AllotmentID, err)
	}
	err = s.mirror.DeleteAllotment(ctx, payload.AllotmentID)
	s.metrics.ObservePublication("docstore", err)
	if err != nil {
		return fmt.Errorf("unmirror allotment %s: %w", payload.AllotmentID, err)
	}
	s.logger.Info("allotment withdrawn", zap.String("allotment_id", payload.AllotmentID), zap.String("session_key", payload.SessionKey))
	return nil
}

func committedEvent(detail models.AllotmentDetail, committedBy string, at time.Time) events.AllotmentCommitted {
	event := events.AllotmentCommitted{
		AllotmentID: detail.ID,
		SessionKey:  detail.SessionKey,
		ExamIDs:     append([]string{}, detail.ExamIDs...),
		CommittedBy: committedBy,
		CommittedAt: at,
	}
	if event.CommittedBy == "" && detail.CommittedBy != nil {
		event.CommittedBy = *detail.CommittedBy
	}

	rooms := map[string]struct{}{}
	for _, seat := range detail.Seats {
		if _, ok := rooms[seat.ClassroomID]; !ok {
			rooms[seat.ClassroomID] = struct{}{}
			event.ClassroomIDs = append(event.ClassroomIDs, seat.ClassroomID)
		}
		if seat.StudentID != nil {
			event.SeatedCount++
		}
	}
	invigilators := map[string]struct{}{}
	for _, duty := range detail.Duties {
		invigilators[duty.InvigilatorID] = struct{}{}
	}
	event.InvigilatorCount = len(invigilators)

	var meta struct {
		Unseated              []json.RawMessage `json:"unseated"`
		InvigilatorShortfalls []json.RawMessage `json:"invigilator_shortfalls"`
	}
	if len(detail.Meta) > 0 {
		if err := json.Unmarshal(detail.Meta, &meta); err == nil {
			event.UnseatedCount = len(meta.Unseated)
			event.ShortStaffedRooms = len(meta.InvigilatorShortfalls)
		}
	}
	return event
}
