package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRespondDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondDetail(rec, http.StatusInternalServerError, "Chat error: boom")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"detail":"Chat error: boom"}`, rec.Body.String())
}

func TestRespondJSONEmptySlice(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondJSON(rec, http.StatusOK, []string{})
	assert.JSONEq(t, `[]`, rec.Body.String())
}
