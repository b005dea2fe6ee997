package httpx

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondErrorMapsSentinels(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		detail bool
	}{
		{name: "not found", err: fmt.Errorf("get quote q1: %w", ErrNotFound), status: http.StatusNotFound, detail: true},
		{name: "conflict", err: fmt.Errorf("already converted: %w", ErrConflict), status: http.StatusConflict, detail: true},
		{name: "validation", err: ErrValidation, status: http.StatusBadRequest, detail: true},
		{name: "unprocessable", err: fmt.Errorf("client unknown: %w", ErrUnprocessable), status: http.StatusUnprocessableEntity, detail: true},
		{name: "internal", err: fmt.Errorf("boom"), status: http.StatusInternalServerError, detail: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			RespondError(rec, tt.err)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
			var body ProblemDetail
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.status, body.Status)
			assert.Equal(t, tt.detail, body.Detail != "")
		})
	}
}

func TestDecodeJSONRejectsUnknownFields(t *testing.T) {
	var target struct {
		Name string `json:"name"`
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"a","extra":1}`))
	err := DecodeJSON(req, &target)
	assert.ErrorIs(t, err, ErrValidation)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"a"}`))
	require.NoError(t, DecodeJSON(req, &target))
	assert.Equal(t, "a", target.Name)
}
