// Package events publishes allotment lifecycle events to RabbitMQ.
package events

import (
	"context"
	"time"
)

const (
	// TypeAllotmentCommitted is the message type of AllotmentCommitted.
	TypeAllotmentCommitted = "allotment.committed"
	// TypeAllotmentDeleted is the message type of AllotmentDeleted.
	TypeAllotmentDeleted = "allotment.deleted"
)

// AllotmentCommitted is published once a session allotment is persisted. It
// carries enough for downstream consumers (notice boards, mailers) to act
// without reading the database.
type AllotmentCommitted struct {
	AllotmentID       string    `json:"allotment_id"`
	SessionKey        string    `json:"session_key"`
	ExamIDs           []string  `json:"exam_ids"`
	ClassroomIDs      []string  `json:"classroom_ids"`
	SeatedCount       int       `json:"seated_count"`
	UnseatedCount     int       `json:"unseated_count"`
	InvigilatorCount  int       `json:"invigilator_count"`
	ShortStaffedRooms int       `json:"short_staffed_rooms"`
	CommittedBy       string    `json:"committed_by,omitempty"`
	CommittedAt       time.Time `json:"committed_at"`
}

// AllotmentDeleted is published when a committed allotment is withdrawn.
type AllotmentDeleted struct {
	AllotmentID string    `json:"allotment_id"`
	SessionKey  string    `json:"session_key"`
	DeletedAt   time.Time `json:"deleted_at"`
}

// Publisher delivers allotment events.
type Publisher interface {
	PublishAllotmentCommitted(ctx context.Context, event AllotmentCommitted) error
	PublishAllotmentDeleted(ctx context.Context, event AllotmentDeleted) error
	Close() error
}

// NoopPublisher drops every event. It is used when no broker is configured.
type NoopPublisher struct{}

// PublishAllotmentCommitted implements Publisher.
func (NoopPublisher) PublishAllotmentCommitted(context.Context, AllotmentCommitted) error {
	return nil
}

// PublishAllotmentDeleted implements Publisher.
func (NoopPublisher) PublishAllotmentDeleted(context.Context, AllotmentDeleted) error {
	return nil
}

// Close implements Publisher.
func (NoopPublisher) Close() error { return nil }
