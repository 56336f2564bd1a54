package handler

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/examplanner-api/internal/dto"
	"github.com/noah-isme/examplanner-api/internal/middleware"
	"github.com/noah-isme/examplanner-api/internal/models"
	appErrors "github.com/noah-isme/examplanner-api/pkg/errors"
	"github.com/noah-isme/examplanner-api/pkg/response"
)

type allotmentService interface {
	Preview(ctx context.Context, req dto.PreviewAllotmentRequest) (*dto.AllotmentPreviewResponse, error)
	Commit(ctx context.Context, req dto.CommitAllotmentRequest, committedBy string) (*dto.CommitAllotmentResponse, error)
	List(ctx context.Context, filter models.AllotmentFilter) ([]models.Allotment, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.AllotmentDetail, bool, error)
	Delete(ctx context.Context, id string) error
}

type allotmentExporter interface {
	Generate(ctx context.Context, allotmentID string, req dto.ExportAllotmentRequest) (*dto.ExportAllotmentResponse, error)
	Resolve(token string) (string, error)
	Open(relPath string) (*os.File, error)
}

// AllotmentHandler exposes seat plan preview, commit and export endpoints.
type AllotmentHandler struct {
	allotments allotmentService
	exports    allotmentExporter
}

// NewAllotmentHandler constructs AllotmentHandler.
func NewAllotmentHandler(allotments allotmentService, exports allotmentExporter) *AllotmentHandler {
	return &AllotmentHandler{allotments: allotments, exports: exports}
}

// Preview godoc
// @Summary Preview seat and invigilator allotment
// @Description Plans every session covered by exam_ids or the date range without persisting it.
// @Tags Allotments
// @Accept json
// @Produce json
// @Param payload body dto.PreviewAllotmentRequest true "Exams to plan"
// @Success 200 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /allotments/preview [post]
func (h *AllotmentHandler) Preview(c *gin.Context) {
	var req dto.PreviewAllotmentRequest
	if !bindJSON(c, &req) {
		return
	}
	start := time.Now()
	preview, err := h.allotments.Preview(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetMeta(c, "processing_time_ms", time.Since(start).Milliseconds())
	response.JSON(c, http.StatusOK, preview, nil, middleware.ExtractMeta(c))
}

// Commit godoc
// @Summary Commit a previewed allotment
// @Description Persists every session of the proposal, replacing earlier allotments for the same sessions.
// @Tags Allotments
// @Accept json
// @Produce json
// @Param payload body dto.CommitAllotmentRequest true "Proposal to commit"
// @Success 201 {object} response.Envelope
// @Failure 410 {object} response.Envelope
// @Router /allotments/commit [post]
func (h *AllotmentHandler) Commit(c *gin.Context) {
	var req dto.CommitAllotmentRequest
	if !bindJSON(c, &req) {
		return
	}
	committedBy := ""
	if claims := claimsFromContext(c); claims != nil {
		committedBy = claims.UserID
	}
	result, err := h.allotments.Commit(c.Request.Context(), req, committedBy)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// List godoc
// @Summary List committed allotments
// @Tags Allotments
// @Produce json
// @Param date_from query string false "Earliest session date (YYYY-MM-DD)"
// @Param date_to query string false "Latest session date (YYYY-MM-DD)"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /allotments [get]
func (h *AllotmentHandler) List(c *gin.Context) {
	filter := models.AllotmentFilter{
		DateFrom: c.Query("date_from"),
		DateTo:   c.Query("date_to"),
	}
	filter.Page, filter.PageSize = pageParams(c)
	items, pagination, err := h.allotments.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Get godoc
// @Summary Get committed allotment with seats and duties
// @Tags Allotments
// @Produce json
// @Param id path string true "Allotment ID"
// @Success 200 {object} response.Envelope
// @Router /allotments/{id} [get]
func (h *AllotmentHandler) Get(c *gin.Context) {
	detail, cacheHit, err := h.allotments.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, detail, nil, middleware.ExtractMeta(c))
}

// Delete godoc
// @Summary Withdraw a committed allotment
// @Tags Allotments
// @Param id path string true "Allotment ID"
// @Success 204
// @Router /allotments/{id} [delete]
func (h *AllotmentHandler) Delete(c *gin.Context) {
	if err := h.allotments.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Export godoc
// @Summary Export seat chart
// @Tags Allotments
// @Accept json
// @Produce json
// @Param id path string true "Allotment ID"
// @Param payload body dto.ExportAllotmentRequest true "Export format"
// @Success 201 {object} response.Envelope
// @Router /allotments/{id}/export [post]
func (h *AllotmentHandler) Export(c *gin.Context) {
	if h.exports == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "export service not configured"))
		return
	}
	var req dto.ExportAllotmentRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.exports.Generate(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Download godoc
// @Summary Download an exported seat chart via signed token
// @Tags Allotments
// @Produce octet-stream
// @Param token path string true "Signed token"
// @Success 200 {file} binary
// @Router /allotments/export/{token} [get]
func (h *AllotmentHandler) Download(c *gin.Context) {
	if h.exports == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "export service not configured"))
		return
	}
	token := strings.TrimSpace(c.Param("token"))
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}
	relPath, err := h.exports.Resolve(token)
	if err != nil {
		response.Error(c, err)
		return
	}
	file, err := h.exports.Open(relPath)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close() //nolint:errcheck
	info, err := file.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read export"))
		return
	}
	filename := filepath.Base(relPath)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	c.Header("Cache-Control", "no-store")
	c.DataFromReader(http.StatusOK, info.Size(), exportContentType(filename), file, nil)
}

func exportContentType(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return "text/csv"
	case ".pdf":
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}
