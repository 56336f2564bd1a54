package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/examplanner-api/internal/models"
	"github.com/noah-isme/examplanner-api/pkg/docstore"
	"github.com/noah-isme/examplanner-api/pkg/events"
	"github.com/noah-isme/examplanner-api/pkg/jobs"
)

type publicationRepoStub struct {
	details  map[string]*models.AllotmentDetail
	statuses map[string]models.AllotmentStatus
}

func (s *publicationRepoStub) FindDetail(_ context.Context, id string) (*models.AllotmentDetail, error) {
	detail, ok := s.details[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *detail
	return &clone, nil
}

func (s *publicationRepoStub) UpdateStatus(_ context.Context, id string, status models.AllotmentStatus) error {
	if s.statuses == nil {
		s.statuses = map[string]models.AllotmentStatus{}
	}
	s.statuses[id] = status
	return nil
}

type publisherStub struct {
	committed []events.AllotmentCommitted
	deleted   []events.AllotmentDeleted
	err       error
}

func (p *publisherStub) PublishAllotmentCommitted(_ context.Context, event events.AllotmentCommitted) error {
	if p.err != nil {
		return p.err
	}
	p.committed = append(p.committed, event)
	return nil
}

func (p *publisherStub) PublishAllotmentDeleted(_ context.Context, event events.AllotmentDeleted) error {
	if p.err != nil {
		return p.err
	}
	p.deleted = append(p.deleted, event)
	return nil
}

func (p *publisherStub) Close() error { return nil }

type mirrorStub struct {
	docs map[string]docstore.AllotmentDocument
}

func (m *mirrorStub) PutAllotment(_ context.Context, doc docstore.AllotmentDocument) error {
	m.docs[doc.AllotmentID] = doc
	return nil
}

func (m *mirrorStub) DeleteAllotment(_ context.Context, id string) error {
	delete(m.docs, id)
	return nil
}

func (m *mirrorStub) Close() error { return nil }

func newPublicationFixture() (*AllotmentPublicationService, *publicationRepoStub, *publisherStub, *mirrorStub) {
	detail := sampleDetail()
	detail.Meta = types.JSONText(`{"unseated":[{"student_id":"s-9"}],"invigilator_shortfalls":[{"classroom_id":"room-2","required":1,"assigned":0}]}`)
	repo := &publicationRepoStub{details: map[string]*models.AllotmentDetail{"allot-1": detail}}
	pub := &publisherStub{}
	mirror := &mirrorStub{docs: map[string]docstore.AllotmentDocument{}}
	svc := NewAllotmentPublicationService(repo, pub, mirror, nil, NewMetricsService(), nil)
	svc.now = func() time.Time { return time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC) }
	return svc, repo, pub, mirror
}

func TestAllotmentPublicationCommitted(t *testing.T) {
	svc, repo, pub, mirror := newPublicationFixture()
	router := jobs.NewRouter()
	svc.Register(router)

	err := router.Dispatch(context.Background(), jobs.Job{
		Type:    events.TypeAllotmentCommitted,
		Payload: AllotmentPublication{AllotmentID: "allot-1", SessionKey: "2024-05-10 09:00", CommittedBy: "admin-1"},
	})
	require.NoError(t, err)

	require.Len(t, pub.committed, 1)
	event := pub.committed[0]
	assert.Equal(t, []string{"room-1", "room-2"}, event.ClassroomIDs)
	assert.Equal(t, 2, event.SeatedCount)
	assert.Equal(t, 1, event.UnseatedCount)
	assert.Equal(t, 1, event.InvigilatorCount)
	assert.Equal(t, 1, event.ShortStaffedRooms)
	assert.Equal(t, "admin-1", event.CommittedBy)

	doc, ok := mirror.docs["allot-1"]
	require.True(t, ok)
	assert.Equal(t, string(models.AllotmentStatusPublished), doc.Status)
	assert.Len(t, doc.Seats, 2)
	assert.Equal(t, models.AllotmentStatusPublished, repo.statuses["allot-1"])
}

func TestAllotmentPublicationEvictsCachedDetail(t *testing.T) {
	svc, repo, _, _ := newPublicationFixture()
	cacheRepo := &memoryCacheRepo{items: make(map[string][]byte)}
	svc.cache = NewCacheService(cacheRepo, nil, time.Minute, nil, true)
	ctx := context.Background()

	committed := *repo.details["allot-1"]
	committed.Status = models.AllotmentStatusCommitted
	svc.cache.StoreAllotment(ctx, &committed)
	_, hit := svc.cache.Allotment(ctx, "allot-1")
	require.True(t, hit)

	err := svc.handleCommitted(ctx, jobs.Job{
		Type:    events.TypeAllotmentCommitted,
		Payload: AllotmentPublication{AllotmentID: "allot-1", SessionKey: "2024-05-10 09:00"},
	})
	require.NoError(t, err)

	assert.Equal(t, models.AllotmentStatusPublished, repo.statuses["allot-1"])
	_, hit = svc.cache.Allotment(ctx, "allot-1")
	assert.False(t, hit)
	assert.Empty(t, cacheRepo.items)
}

func TestAllotmentPublicationCommittedMissingIsPermanent(t *testing.T) {
	svc, _, pub, _ := newPublicationFixture()
	router := jobs.NewRouter()
	svc.Register(router)

	err := router.Dispatch(context.Background(), jobs.Job{
		Type:    events.TypeAllotmentCommitted,
		Payload: AllotmentPublication{AllotmentID: "gone"},
	})
	require.Error(t, err)
	assert.True(t, jobs.IsPermanent(err))
	assert.Empty(t, pub.committed)
}

func TestAllotmentPublicationBrokerFailureIsRetried(t *testing.T) {
	svc, repo, pub, mirror := newPublicationFixture()
	pub.err = errors.New("broker down")
	router := jobs.NewRouter()
	svc.Register(router)

	err := router.Dispatch(context.Background(), jobs.Job{
		Type:    events.TypeAllotmentCommitted,
		Payload: AllotmentPublication{AllotmentID: "allot-1"},
	})
	require.Error(t, err)
	assert.False(t, jobs.IsPermanent(err))
	assert.Empty(t, mirror.docs)
	assert.Empty(t, repo.statuses)
}

func TestAllotmentPublicationDeleted(t *testing.T) {
	svc, _, pub, mirror := newPublicationFixture()
	mirror.docs["allot-1"] = docstore.AllotmentDocument{AllotmentID: "allot-1"}
	router := jobs.NewRouter()
	svc.Register(router)

	err := router.Dispatch(context.Background(), jobs.Job{
		Type:    events.TypeAllotmentDeleted,
		Payload: AllotmentRemoval{AllotmentID: "allot-1", SessionKey: "2024-05-10 09:00"},
	})
	require.NoError(t, err)
	require.Len(t, pub.deleted, 1)
	assert.Equal(t, "2024-05-10 09:00", pub.deleted[0].SessionKey)
	assert.NotContains(t, mirror.docs, "allot-1")
}

func TestAllotmentPublicationRejectsForeignPayload(t *testing.T) {
	svc, _, _, _ := newPublicationFixture()
	router := jobs.NewRouter()
	svc.Register(router)

	err := router.Dispatch(context.Background(), jobs.Job{Type: events.TypeAllotmentDeleted, Payload: "allot-1"})
	require.Error(t, err)
	assert.True(t, jobs.IsPermanent(err))
}
