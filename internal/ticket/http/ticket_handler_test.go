package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	sessionDomain "github.com/allisson/helpdesk/internal/session/domain"
	sessionHTTP "github.com/allisson/helpdesk/internal/session/http"
	"github.com/allisson/helpdesk/internal/ticket/domain"
	"github.com/allisson/helpdesk/internal/ticket/http/dto"
	"github.com/allisson/helpdesk/internal/ticket/usecase"
	"github.com/allisson/helpdesk/internal/ticket/usecase/mocks"
)

// createTestContext creates a test Gin context with the given request.
func createTestContext(method, path string, body interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req := httptest.NewRequest(method, path, bodyReader)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	return c, w
}

func setupTestHandler(t *testing.T) (*TicketHandler, *mocks.MockUseCase) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	mockUseCase := &mocks.MockUseCase{}
	t.Cleanup(func() { mockUseCase.AssertExpectations(t) })

	return NewTicketHandler(mockUseCase, slog.New(slog.NewTextHandler(io.Discard, nil))), mockUseCase
}

func authenticate(c *gin.Context, viewer domain.Viewer) {
	claims := &sessionDomain.AccessClaims{PrincipalID: viewer.ID, SessionID: uuid.Must(uuid.NewV7()), Role: viewer.Role}
	c.Request = c.Request.WithContext(sessionHTTP.WithPrincipal(c.Request.Context(), claims))
}

func TestTicketHandler_CreateHandler(t *testing.T) {
	viewer := domain.Viewer{ID: uuid.Must(uuid.NewV7()), Role: "CUSTOMER"}

	t.Run("Success", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		priority := 2
		ticket := &domain.Ticket{
			ID:         uuid.Must(uuid.NewV7()),
			Title:      "VPN down",
			Priority:   2,
			Status:     domain.StatusOpen,
			ReporterID: viewer.ID,
		}
		mockUseCase.On("Create", mock.Anything, viewer, &usecase.CreateTicketInput{
			Title:       "VPN down",
			Description: "Nobody can connect",
			Priority:    &priority,
		}).Return(ticket, nil).Once()

		c, w := createTestContext(http.MethodPost, "/v1/tickets", dto.CreateTicketRequest{
			Title:       "VPN down",
			Description: "Nobody can connect",
			Priority:    &priority,
		})
		authenticate(c, viewer)

		handler.CreateHandler(c)

		assert.Equal(t, http.StatusCreated, w.Code)
		var response dto.TicketResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "OPEN", response.Status)
		assert.Equal(t, viewer.ID.String(), response.ReporterID)
		assert.Nil(t, response.AssigneeID)
	})

	t.Run("Error_InvalidPriority", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		mockUseCase.On("Create", mock.Anything, viewer, mock.Anything).Return(nil, domain.ErrInvalidPriority).Once()

		priority := 9
		c, w := createTestContext(http.MethodPost, "/v1/tickets",
			dto.CreateTicketRequest{Title: "a", Description: "b", Priority: &priority})
		authenticate(c, viewer)

		handler.CreateHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("Error_Unauthenticated", func(t *testing.T) {
		handler, _ := setupTestHandler(t)

		c, w := createTestContext(http.MethodPost, "/v1/tickets", dto.CreateTicketRequest{Title: "a"})

		handler.CreateHandler(c)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestTicketHandler_GetHandler(t *testing.T) {
	viewer := domain.Viewer{ID: uuid.Must(uuid.NewV7()), Role: "CUSTOMER"}

	t.Run("Error_HiddenTicket", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)
		id := uuid.Must(uuid.NewV7())

		mockUseCase.On("Get", mock.Anything, viewer, id).Return(nil, domain.ErrTicketNotFound).Once()

		c, w := createTestContext(http.MethodGet, "/v1/tickets/"+id.String(), nil)
		c.Params = gin.Params{{Key: "id", Value: id.String()}}
		authenticate(c, viewer)

		handler.GetHandler(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Error_InvalidID", func(t *testing.T) {
		handler, _ := setupTestHandler(t)

		c, w := createTestContext(http.MethodGet, "/v1/tickets/nope", nil)
		c.Params = gin.Params{{Key: "id", Value: "nope"}}
		authenticate(c, viewer)

		handler.GetHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("Success", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)
		assignee := uuid.Must(uuid.NewV7())
		ticket := &domain.Ticket{ID: uuid.Must(uuid.NewV7()), ReporterID: viewer.ID, AssigneeID: &assignee}

		mockUseCase.On("Get", mock.Anything, viewer, ticket.ID).Return(ticket, nil).Once()

		c, w := createTestContext(http.MethodGet, "/v1/tickets/"+ticket.ID.String(), nil)
		c.Params = gin.Params{{Key: "id", Value: ticket.ID.String()}}
		authenticate(c, viewer)

		handler.GetHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		var response dto.TicketResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		require.NotNil(t, response.AssigneeID)
		assert.Equal(t, assignee.String(), *response.AssigneeID)
	})
}

func TestTicketHandler_UpdateHandler(t *testing.T) {
	viewer := domain.Viewer{ID: uuid.Must(uuid.NewV7()), Role: "CUSTOMER"}

	t.Run("Success", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)
		title := "Printer still on fire"
		ticket := &domain.Ticket{ID: uuid.Must(uuid.NewV7()), Title: title, ReporterID: viewer.ID}

		mockUseCase.On("Update", mock.Anything, viewer, ticket.ID, &usecase.UpdateTicketInput{Title: &title}).
			Return(ticket, nil).
			Once()

		c, w := createTestContext(http.MethodPatch, "/v1/tickets/"+ticket.ID.String(),
			map[string]string{"title": title})
		c.Params = gin.Params{{Key: "id", Value: ticket.ID.String()}}
		authenticate(c, viewer)

		handler.UpdateHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		var response dto.TicketResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, title, response.Title)
	})

	t.Run("Error_Forbidden", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)
		id := uuid.Must(uuid.NewV7())

		mockUseCase.On("Update", mock.Anything, viewer, id, mock.Anything).
			Return(nil, domain.ErrTicketEditForbidden).
			Once()

		c, w := createTestContext(http.MethodPatch, "/v1/tickets/"+id.String(),
			map[string]string{"description": "more detail"})
		c.Params = gin.Params{{Key: "id", Value: id.String()}}
		authenticate(c, viewer)

		handler.UpdateHandler(c)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Error_HiddenTicket", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)
		id := uuid.Must(uuid.NewV7())

		mockUseCase.On("Update", mock.Anything, viewer, id, mock.Anything).
			Return(nil, domain.ErrTicketNotFound).
			Once()

		c, w := createTestContext(http.MethodPatch, "/v1/tickets/"+id.String(),
			map[string]string{"title": "mine now"})
		c.Params = gin.Params{{Key: "id", Value: id.String()}}
		authenticate(c, viewer)

		handler.UpdateHandler(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Error_InvalidJSON", func(t *testing.T) {
		handler, _ := setupTestHandler(t)
		id := uuid.Must(uuid.NewV7())

		c, w := createTestContext(http.MethodPatch, "/v1/tickets/"+id.String(), nil)
		c.Request.Body = io.NopCloser(bytes.NewBufferString("{"))
		c.Params = gin.Params{{Key: "id", Value: id.String()}}
		authenticate(c, viewer)

		handler.UpdateHandler(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Error_Unauthenticated", func(t *testing.T) {
		handler, _ := setupTestHandler(t)
		id := uuid.Must(uuid.NewV7())

		c, w := createTestContext(http.MethodPatch, "/v1/tickets/"+id.String(), map[string]string{"title": "x"})
		c.Params = gin.Params{{Key: "id", Value: id.String()}}

		handler.UpdateHandler(c)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestTicketHandler_ListHandler(t *testing.T) {
	viewer := domain.Viewer{ID: uuid.Must(uuid.NewV7()), Role: "ENGINEER"}
	handler, mockUseCase := setupTestHandler(t)

	mockUseCase.On("List", mock.Anything, viewer, 0, 50).
		Return([]*domain.Ticket{{ID: uuid.Must(uuid.NewV7())}}, nil).Once()

	c, w := createTestContext(http.MethodGet, "/v1/tickets", nil)
	authenticate(c, viewer)

	handler.ListHandler(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var response dto.ListTicketsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Len(t, response.Data, 1)
}
