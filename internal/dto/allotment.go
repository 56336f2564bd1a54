package dto

import (
	"time"

	"github.com/noah-isme/examplanner-api/internal/models"
)

// PreviewAllotmentRequest selects the exams to plan, either by id or by an
// inclusive date range.
type PreviewAllotmentRequest struct {
	ExamIDs          []string `json:"exam_ids" validate:"omitempty,dive,required"`
	DateFrom         string   `json:"date_from" validate:"omitempty,datetime=2006-01-02"`
	DateTo           string   `json:"date_to" validate:"omitempty,datetime=2006-01-02"`
	SortByRollNumber *bool    `json:"sort_by_roll"`
	HeadcountBasis   string   `json:"headcount_basis" validate:"omitempty,oneof=seated capacity"`
}

// PreviewTotals summarises a preview across every session.
type PreviewTotals = models.PlanTotals

// AllotmentPreviewResponse returns a stored proposal.
type AllotmentPreviewResponse struct {
	ProposalID string                    `json:"proposal_id"`
	ExpiresAt  time.Time                 `json:"expires_at"`
	Sessions   []models.SessionAllotment `json:"sessions"`
	Totals     PreviewTotals             `json:"totals"`
}

// CommitAllotmentRequest persists a previously previewed proposal.
type CommitAllotmentRequest struct {
	ProposalID string `json:"proposal_id" validate:"required"`
}

// CommitAllotmentResponse lists the allotments written by a commit.
type CommitAllotmentResponse struct {
	Allotments []models.Allotment `json:"allotments"`
	Replaced   []string           `json:"replaced_sessions"`
}

// ExportAllotmentRequest asks for a seat chart file.
type ExportAllotmentRequest struct {
	Format string `json:"format" validate:"required,oneof=csv pdf"`
}

// ExportAllotmentResponse points at a signed download.
type ExportAllotmentResponse struct {
	AllotmentID string    `json:"allotment_id"`
	Format      string    `json:"format"`
	Token       string    `json:"token"`
	URL         string    `json:"url"`
	ExpiresAt   time.Time `json:"expires_at"`
}
