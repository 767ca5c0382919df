package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var body ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestHandleAppError(t *testing.T) {
	t.Run("wrapped app error keeps its status", func(t *testing.T) {
		rec := httptest.NewRecorder()
		appErr := &AppError{StatusCode: http.StatusConflict, Code: ErrCodeConflict, Message: "Room is not available", Err: ErrRoomUnavailable}
		HandleAppError(rec, fmt.Errorf("booking: %w", appErr))

		assert.Equal(t, http.StatusConflict, rec.Code)
		body := decodeError(t, rec)
		assert.Equal(t, ErrCodeConflict, body.Code)
		assert.Equal(t, "Room is not available", body.Message)
	})

	t.Run("plain errors become 500 without leaking", func(t *testing.T) {
		rec := httptest.NewRecorder()
		HandleAppError(rec, errors.New("pq: connection refused"))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		body := decodeError(t, rec)
		assert.Equal(t, ErrCodeInternal, body.Code)
		assert.NotContains(t, body.Message, "connection refused")
	})
}

func TestAppErrorUnwrap(t *testing.T) {
	err := &AppError{StatusCode: http.StatusConflict, Err: ErrRoomUnavailable}
	assert.ErrorIs(t, err, ErrRoomUnavailable)
}
