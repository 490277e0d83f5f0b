package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWSHandlerUnavailableWithoutHub(t *testing.T) {
	s, _, _ := newTestServer(t) // no hub wired

	rec := doRequest(t, s, http.MethodGet, "/ws", nil, nil)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "WebSocket not available")
}
