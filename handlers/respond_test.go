package handlers

import (
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/123jagadeesh/ProFlow/services"
)

func TestWriteErrorStatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", fmt.Errorf("%w: title is required", services.ErrValidation), 400},
		{"credentials", services.ErrInvalidCredentials, 401},
		{"forbidden", services.ErrForbidden, 403},
		{"not found", services.ErrNotFound, 404},
		{"wrapped not found", fmt.Errorf("%w: task", services.ErrNotFound), 404},
		{"conflict", fmt.Errorf("%w: email already registered", services.ErrConflict), 409},
		{"unknown", fmt.Errorf("mongo went away"), 500},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, c.err)
			assert.Equal(t, c.want, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		})
	}
}

func TestWriteErrorHidesInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, fmt.Errorf("dial tcp 10.0.0.5:27017: connection refused"))

	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "server error", body["message"])
}

func TestWriteErrorHidesExistenceOnNotFound(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, fmt.Errorf("%w: project in another company", services.ErrNotFound))

	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "not found", body["message"])
}
