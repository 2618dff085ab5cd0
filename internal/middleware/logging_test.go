package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofrs/uuid/v5"
	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogRequest(t *testing.T) {
	hook := test.NewGlobal()
	defer hook.Reset()
	prevLevel := log.GetLevel()
	log.SetLevel(log.DebugLevel)
	defer log.SetLevel(prevLevel)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	rr := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/workouts/current", nil)
	LogRequest()(next).ServeHTTP(rr, req)

	requestID := rr.Header().Get(RequestIDHeader)
	_, err := uuid.FromString(requestID)
	require.NoError(t, err)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, requestID, entry.Data["request_id"])
	assert.Equal(t, "/workouts/current", entry.Data["path"])
	assert.Equal(t, http.StatusTeapot, entry.Data["status"])

	// a client supplied id is kept
	rr = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/movements", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	LogRequest()(next).ServeHTTP(rr, req)
	assert.Equal(t, "abc-123", rr.Header().Get(RequestIDHeader))
}
