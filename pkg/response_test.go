package pkg

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type TestHttpResponseWriter struct {
	HeaderMap  http.Header
	Body       []byte
	StatusCode int
}

func (w *TestHttpResponseWriter) Header() http.Header {
	return w.HeaderMap
}

func (w *TestHttpResponseWriter) Write(bytes []byte) (int, error) {
	w.Body = bytes
	return len(bytes), nil
}

func (w *TestHttpResponseWriter) WriteHeader(statusCode int) {
	w.StatusCode = statusCode
}

func TestWriteResponseBytes(t *testing.T) {
	w := &TestHttpResponseWriter{
		HeaderMap: make(http.Header),
	}

	testJson := `{"key":"val"}`
	WriteResponseBytes(w, ContentType.JSON, []byte(testJson), http.StatusCreated)

	assert.Equal(t, http.StatusCreated, w.StatusCode)
	assert.Equal(t, ContentType.JSON, w.HeaderMap.Get("Content-Type"))
	assert.Equal(t, testJson, string(w.Body))
}

func TestWriteResponse_NoBody(t *testing.T) {
	w := &TestHttpResponseWriter{
		HeaderMap: make(http.Header),
	}

	WriteResponse(w, "", "", http.StatusNoContent)

	assert.Equal(t, http.StatusNoContent, w.StatusCode)
	assert.Empty(t, w.HeaderMap.Get("Content-Type"))
	assert.Nil(t, w.Body)
}

func TestWriteTextResponseOK(t *testing.T) {
	w := &TestHttpResponseWriter{
		HeaderMap: make(http.Header),
	}

	testText := `test text`
	WriteTextResponseOK(w, testText)

	assert.Equal(t, http.StatusOK, w.StatusCode)
	assert.Equal(t, ContentType.Text, w.HeaderMap.Get("Content-Type"))
	assert.Equal(t, testText, string(w.Body))
}

func TestWriteJSON(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteJSON(rr, map[string]int{"count": 2}, http.StatusOK)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"count": 2}`, rr.Body.String())

	rr = httptest.NewRecorder()
	WriteJSON(rr, map[string]any{"bad": make(chan int)}, http.StatusOK)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
