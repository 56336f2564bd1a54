package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/examplanner-api/internal/dto"
	"github.com/noah-isme/examplanner-api/internal/models"
	"github.com/noah-isme/examplanner-api/pkg/response"
)

type examSlotService interface {
	List(ctx context.Context, filter models.ExamSlotFilter) ([]models.ExamSlot, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.ExamSlot, error)
	Create(ctx context.Context, req dto.ExamSlotRequest) (*models.ExamSlot, error)
	Update(ctx context.Context, id string, req dto.ExamSlotRequest) (*models.ExamSlot, error)
	Delete(ctx context.Context, id string) error
}

// ExamSlotHandler exposes exam timetable endpoints.
type ExamSlotHandler struct {
	slots examSlotService
}

// NewExamSlotHandler constructs ExamSlotHandler.
func NewExamSlotHandler(slots examSlotService) *ExamSlotHandler {
	return &ExamSlotHandler{slots: slots}
}

// List godoc
// @Summary List exam slots
// @Tags ExamSlots
// @Produce json
// @Param department query string false "Filter by department"
// @Param course query string false "Filter by course"
// @Param semester query int false "Filter by semester"
// @Param date_from query string false "Earliest date (YYYY-MM-DD)"
// @Param date_to query string false "Latest date (YYYY-MM-DD)"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /exam-slots [get]
func (h *ExamSlotHandler) List(c *gin.Context) {
	filter := models.ExamSlotFilter{
		Department: c.Query("department"),
		Course:     c.Query("course"),
		DateFrom:   c.Query("date_from"),
		DateTo:     c.Query("date_to"),
		SortOrder:  c.Query("order"),
	}
	filter.Semester, _ = strconv.Atoi(c.Query("semester"))
	filter.Page, filter.PageSize = pageParams(c)
	slots, pagination, err := h.slots.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slots, pagination)
}

// Get godoc
// @Summary Get exam slot
// @Tags ExamSlots
// @Produce json
// @Param id path string true "Exam slot ID"
// @Success 200 {object} response.Envelope
// @Router /exam-slots/{id} [get]
func (h *ExamSlotHandler) Get(c *gin.Context) {
	slot, err := h.slots.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slot, nil)
}

// Create godoc
// @Summary Create exam slot
// @Tags ExamSlots
// @Accept json
// @Produce json
// @Param payload body dto.ExamSlotRequest true "Exam slot payload"
// @Success 201 {object} response.Envelope
// @Router /exam-slots [post]
func (h *ExamSlotHandler) Create(c *gin.Context) {
	var req dto.ExamSlotRequest
	if !bindJSON(c, &req) {
		return
	}
	slot, err := h.slots.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, slot)
}

// Update godoc
// @Summary Update exam slot
// @Tags ExamSlots
// @Accept json
// @Produce json
// @Param id path string true "Exam slot ID"
// @Param payload body dto.ExamSlotRequest true "Exam slot payload"
// @Success 200 {object} response.Envelope
// @Router /exam-slots/{id} [put]
func (h *ExamSlotHandler) Update(c *gin.Context) {
	var req dto.ExamSlotRequest
	if !bindJSON(c, &req) {
		return
	}
	slot, err := h.slots.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slot, nil)
}

// Delete godoc
// @Summary Delete exam slot
// @Tags ExamSlots
// @Param id path string true "Exam slot ID"
// @Success 204
// @Router /exam-slots/{id} [delete]
func (h *ExamSlotHandler) Delete(c *gin.Context) {
	if err := h.slots.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
