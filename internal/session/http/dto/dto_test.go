package dto

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	sessionDomain "github.com/allisson/helpdesk/internal/session/domain"
)

func TestLoginRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		request LoginRequest
		wantErr bool
	}{
		{name: "valid", request: LoginRequest{Login: "jane", Password: "secret"}},
		{name: "missing login", request: LoginRequest{Password: "secret"}, wantErr: true},
		{name: "blank login", request: LoginRequest{Login: "   ", Password: "secret"}, wantErr: true},
		{name: "missing password", request: LoginRequest{Login: "jane"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.request.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestMapSessionsToListResponse(t *testing.T) {
	now := time.Now().UTC()
	current := &sessionDomain.Session{
		ID:         uuid.Must(uuid.NewV7()),
		TokenHash:  "hash",
		ClientMeta: sessionDomain.ClientMeta{IPAddress: "10.0.0.1", UserAgent: "curl/8"},
		CreatedAt:  now,
		UpdatedAt:  now,
		ExpiresAt:  now.Add(time.Hour),
	}
	other := &sessionDomain.Session{ID: uuid.Must(uuid.NewV7())}

	response := MapSessionsToListResponse([]*sessionDomain.Session{current, other}, current.ID.String())

	assert.Len(t, response.Data, 2)
	assert.True(t, response.Data[0].Current)
	assert.Equal(t, "10.0.0.1", response.Data[0].IPAddress)
	assert.False(t, response.Data[1].Current)
}

func TestMapSessionsToListResponse_Empty(t *testing.T) {
	response := MapSessionsToListResponse(nil, "")
	assert.NotNil(t, response.Data)
	assert.Empty(t, response.Data)
}
