package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/examplanner-api/internal/dto"
	"github.com/noah-isme/examplanner-api/internal/models"
	"github.com/noah-isme/examplanner-api/pkg/response"
)

type invigilatorService interface {
	List(ctx context.Context, filter models.InvigilatorFilter) ([]models.Invigilator, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.Invigilator, error)
	Create(ctx context.Context, req dto.InvigilatorRequest) (*models.Invigilator, error)
	Update(ctx context.Context, id string, req dto.InvigilatorRequest) (*models.Invigilator, error)
	Delete(ctx context.Context, id string) error
}

// InvigilatorHandler exposes invigilator endpoints.
type InvigilatorHandler struct {
	invigilators invigilatorService
}

// NewInvigilatorHandler constructs InvigilatorHandler.
func NewInvigilatorHandler(invigilators invigilatorService) *InvigilatorHandler {
	return &InvigilatorHandler{invigilators: invigilators}
}

// List godoc
// @Summary List invigilators
// @Tags Invigilators
// @Produce json
// @Param search query string false "Search by name"
// @Param department query string false "Filter by department"
// @Param available query bool false "Filter by availability"
// @Param sort query string false "name, department, created_at or duty_count"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /invigilators [get]
func (h *InvigilatorHandler) List(c *gin.Context) {
	filter := models.InvigilatorFilter{
		Search:     strings.TrimSpace(c.Query("search")),
		Department: c.Query("department"),
		Available:  queryBool(c, "available"),
		SortBy:     c.Query("sort"),
		SortOrder:  c.Query("order"),
	}
	filter.Page, filter.PageSize = pageParams(c)
	invigilators, pagination, err := h.invigilators.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, invigilators, pagination)
}

// Get godoc
// @Summary Get invigilator with duty history
// @Tags Invigilators
// @Produce json
// @Param id path string true "Invigilator ID"
// @Success 200 {object} response.Envelope
// @Router /invigilators/{id} [get]
func (h *InvigilatorHandler) Get(c *gin.Context) {
	invigilator, err := h.invigilators.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, invigilator, nil)
}

// Create godoc
// @Summary Create invigilator
// @Tags Invigilators
// @Accept json
// @Produce json
// @Param payload body dto.InvigilatorRequest true "Invigilator payload"
// @Success 201 {object} response.Envelope
// @Router /invigilators [post]
func (h *InvigilatorHandler) Create(c *gin.Context) {
	var req dto.InvigilatorRequest
	if !bindJSON(c, &req) {
		return
	}
	invigilator, err := h.invigilators.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, invigilator)
}

// Update godoc
// @Summary Update invigilator
// @Tags Invigilators
// @Accept json
// @Produce json
// @Param id path string true "Invigilator ID"
// @Param payload body dto.InvigilatorRequest true "Invigilator payload"
// @Success 200 {object} response.Envelope
// @Router /invigilators/{id} [put]
func (h *InvigilatorHandler) Update(c *gin.Context) {
	var req dto.InvigilatorRequest
	if !bindJSON(c, &req) {
		return
	}
	invigilator, err := h.invigilators.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, invigilator, nil)
}

// Delete godoc
// @Summary Delete invigilator
// @Tags Invigilators
// @Param id path string true "Invigilator ID"
// @Success 204
// @Router /invigilators/{id} [delete]
func (h *InvigilatorHandler) Delete(c *gin.Context) {
	if err := h.invigilators.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
