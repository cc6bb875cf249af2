package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewTransport(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		wantCode   Code
		wantStatus int
	}{
		{name: "unknown status defaults to 500", status: 0, wantCode: Transport, wantStatus: http.StatusInternalServerError},
		{name: "404 maps to not found", status: http.StatusNotFound, wantCode: NotFound, wantStatus: http.StatusNotFound},
		{name: "422 stays transport", status: http.StatusUnprocessableEntity, wantCode: Transport, wantStatus: http.StatusUnprocessableEntity},
		{name: "502 stays transport", status: http.StatusBadGateway, wantCode: Transport, wantStatus: http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewTransport("boom", tt.status, []byte(`{"error":"boom"}`))
			assert.Equal(t, tt.wantCode, err.Code())
			assert.Equal(t, tt.wantStatus, err.Status())
			assert.Equal(t, "boom", err.Error())
			assert.JSONEq(t, `{"error":"boom"}`, string(err.Body()))
		})
	}
}

func TestIs_MatchesByCodeThroughWrapping(t *testing.T) {
	err := fmt.Errorf("get integration: %w", New(Inactive, "Integration is not active for website origin: a"))

	assert.ErrorIs(t, err, ErrInactive)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.True(t, IsCode(err, Inactive))
	assert.Equal(t, Inactive, CodeOf(err))
	assert.Equal(t, Code(""), CodeOf(errors.New("plain")))
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, New(Validation, "x").Status())
	assert.Equal(t, http.StatusUnprocessableEntity, New(Inactive, "x").Status())
	assert.Equal(t, http.StatusConflict, New(Conflict, "x").Status())
	assert.Equal(t, http.StatusInternalServerError, New(Internal, "x").Status())
}
