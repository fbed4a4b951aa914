package http

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/albertobarcelos/nexflow/internal/application/port"
	"github.com/albertobarcelos/nexflow/internal/application/service"
	"github.com/albertobarcelos/nexflow/internal/export"
	"github.com/albertobarcelos/nexflow/internal/models"
	"github.com/albertobarcelos/nexflow/internal/repository"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	cardService service.CardService
	steps       port.StepRepository
	exporter    *export.Exporter
	logger      *zap.Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	cardService service.CardService,
	steps port.StepRepository,
	exporter *export.Exporter,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		cardService: cardService,
		steps:       steps,
		exporter:    exporter,
		logger:      logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Unmet   []string    `json:"unmet,omitempty"`
}

// CreateCardRequest is the body of POST /api/flows/:id/cards
type CreateCardRequest struct {
	Title string `json:"title" binding:"required"`
}

// MoveCardRequest is the body of POST /api/cards/:id/move. Either a
// direction ("forward"/"back") or an explicit target step id.
type MoveCardRequest struct {
	Direction string `json:"direction,omitempty"`
	StepID    string `json:"step_id,omitempty"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: gin.H{
			"status":    "healthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		},
	})
}

// ListFlowSteps handles GET /api/flows/:id/steps
func (h *Handlers) ListFlowSteps(c *gin.Context) {
	steps, err := h.steps.StepsForFlow(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: steps})
}

// CreateCard handles POST /api/flows/:id/cards
func (h *Handlers) CreateCard(c *gin.Context) {
	var req CreateCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "title is required"})
		return
	}

	card, err := h.cardService.CreateCard(c.Request.Context(), c.Param("id"), req.Title)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, Response{Success: true, Data: card})
}

// GetCardView handles GET /api/cards/:id/view. The optional flow_id query
// parameter identifies the flow currently open in the UI; it feeds the
// read-only derivation and nothing else.
func (h *Handlers) GetCardView(c *gin.Context) {
	view, err := h.cardService.GetCardView(c.Request.Context(), c.Param("id"), c.Query("flow_id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: view})
}

// SaveCard handles PUT /api/cards/:id
func (h *Handlers) SaveCard(c *gin.Context) {
	var form models.CardFormValues
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid form values"})
		return
	}

	if err := h.cardService.SaveCard(c.Request.Context(), c.Param("id"), form); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true})
}

// MoveCard handles POST /api/cards/:id/move
func (h *Handlers) MoveCard(c *gin.Context) {
	var req MoveCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid move request"})
		return
	}

	cardID := c.Param("id")
	var err error
	switch {
	case req.StepID != "":
		err = h.cardService.MoveCardToStep(c.Request.Context(), cardID, req.StepID)
	case req.Direction == string(service.MoveBack):
		err = h.cardService.MoveCard(c.Request.Context(), cardID, service.MoveBack)
	default:
		err = h.cardService.MoveCard(c.Request.Context(), cardID, service.MoveForward)
	}
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true})
}

// GetCardHistory handles GET /api/cards/:id/history, returning the
// reconstructed movement timeline without the rest of the read-model.
func (h *Handlers) GetCardHistory(c *gin.Context) {
	view, err := h.cardService.GetCardView(c.Request.Context(), c.Param("id"), c.Query("flow_id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: gin.H{
		"entries":     view.TimelineEntries,
		"last_update": view.LastHistoryUpdate,
	}})
}

// DeleteCard handles DELETE /api/cards/:id
func (h *Handlers) DeleteCard(c *gin.Context) {
	if err := h.cardService.DeleteCard(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true})
}

// ExportFlow handles GET /api/flows/:id/export, streaming an xlsx workbook.
func (h *Handlers) ExportFlow(c *gin.Context) {
	flowID := c.Param("id")
	f, err := h.exporter.ExportFlow(c.Request.Context(), flowID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	defer f.Close()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=flow-%s.xlsx", flowID))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := f.Write(c.Writer); err != nil {
		h.logger.Error("Failed to stream export", zap.String("flow_id", flowID), zap.Error(err))
	}
}

// respondError maps service errors onto HTTP statuses. Blocked moves carry
// the advisory list of unmet requirements so the client can show them.
func (h *Handlers) respondError(c *gin.Context, err error) {
	var blocked *service.MoveBlockedError
	switch {
	case errors.As(err, &blocked):
		c.JSON(http.StatusUnprocessableEntity, Response{
			Success: false,
			Error:   "move blocked by unmet requirements",
			Unmet:   blocked.Unmet,
		})
	case errors.Is(err, service.ErrCardNotFound), errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, Response{Success: false, Error: "not found"})
	case errors.Is(err, service.ErrCardBusy):
		c.JSON(http.StatusConflict, Response{Success: false, Error: err.Error()})
	case errors.Is(err, service.ErrCardDisabled):
		c.JSON(http.StatusForbidden, Response{Success: false, Error: err.Error()})
	case errors.Is(err, service.ErrNoNextStep),
		errors.Is(err, service.ErrNoPreviousStep),
		errors.Is(err, service.ErrStepNotInFlow):
		c.JSON(http.StatusUnprocessableEntity, Response{Success: false, Error: err.Error()})
	default:
		h.logger.Error("Request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "internal error"})
	}
}
