// Package http provides HTTP handlers for tickets.
package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/allisson/helpdesk/internal/errors"
	"github.com/allisson/helpdesk/internal/httputil"
	sessionHTTP "github.com/allisson/helpdesk/internal/session/http"
	"github.com/allisson/helpdesk/internal/ticket/domain"
	"github.com/allisson/helpdesk/internal/ticket/http/dto"
	"github.com/allisson/helpdesk/internal/ticket/usecase"
)

// TicketHandler handles ticket HTTP requests.
type TicketHandler struct {
	ticketUseCase usecase.UseCase
	logger        *slog.Logger
}

// NewTicketHandler creates a new TicketHandler.
func NewTicketHandler(ticketUseCase usecase.UseCase, logger *slog.Logger) *TicketHandler {
	return &TicketHandler{
		ticketUseCase: ticketUseCase,
		logger:        logger,
	}
}

func (h *TicketHandler) viewer(c *gin.Context) (domain.Viewer, bool) {
	claims, ok := sessionHTTP.GetPrincipal(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return domain.Viewer{}, false
	}
	return domain.Viewer{ID: claims.PrincipalID, Role: claims.Role}, true
}

func (h *TicketHandler) ticketID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleValidationErrorGin(c,
			fmt.Errorf("invalid ticket ID format: must be a valid UUID"),
			h.logger)
		return uuid.Nil, false
	}
	return id, true
}

// CreateHandler opens a ticket reported by the caller.
// POST /v1/tickets - Returns 201 Created.
func (h *TicketHandler) CreateHandler(c *gin.Context) {
	viewer, ok := h.viewer(c)
	if !ok {
		return
	}

	var req dto.CreateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	ticket, err := h.ticketUseCase.Create(c.Request.Context(), viewer, &usecase.CreateTicketInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapTicketToResponse(ticket))
}

// GetHandler retrieves a ticket visible to the caller.
// GET /v1/tickets/:id - Returns 200 OK, or 404 for tickets the caller may not see.
func (h *TicketHandler) GetHandler(c *gin.Context) {
	viewer, ok := h.viewer(c)
	if !ok {
		return
	}

	id, ok := h.ticketID(c)
	if !ok {
		return
	}

	ticket, err := h.ticketUseCase.Get(c.Request.Context(), viewer, id)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapTicketToResponse(ticket))
}

// UpdateHandler edits the title and description of a ticket.
// PATCH /v1/tickets/:id - Returns 200 OK, 403 for callers who may see but not edit,
// or 404 for tickets the caller may not see.
func (h *TicketHandler) UpdateHandler(c *gin.Context) {
	viewer, ok := h.viewer(c)
	if !ok {
		return
	}

	id, ok := h.ticketID(c)
	if !ok {
		return
	}

	var req dto.UpdateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	ticket, err := h.ticketUseCase.Update(c.Request.Context(), viewer, id, &usecase.UpdateTicketInput{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapTicketToResponse(ticket))
}

// ListHandler lists tickets visible to the caller.
// GET /v1/tickets?offset=0&limit=50 - Returns 200 OK.
func (h *TicketHandler) ListHandler(c *gin.Context) {
	viewer, ok := h.viewer(c)
	if !ok {
		return
	}

	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	tickets, err := h.ticketUseCase.List(c.Request.Context(), viewer, offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapTicketsToListResponse(tickets))
}
