package httpclient

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newRequest(t *testing.T, url string) *http.Request {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	require.NoError(t, err)
	return req
}

func TestDoText_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "DATE,USD1MTD156N\n2024-01-02,5.46\n")
	}))
	defer server.Close()

	exec := New(zap.NewNop(), nil, server.Client(), 2, "fred", nil)

	body, err := exec.DoText(context.Background(), newRequest(t, server.URL), "fred")
	require.NoError(t, err)
	assert.Contains(t, string(body), "USD1MTD156N")
}

func TestDoText_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, "ok")
	}))
	defer server.Close()

	exec := New(zap.NewNop(), nil, server.Client(), 3, "fred", nil)

	body, err := exec.DoText(context.Background(), newRequest(t, server.URL), "fred")
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
	assert.Equal(t, int32(3), calls.Load())
}

func TestDoText_GivesUpAfterRetryBudget(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	exec := New(zap.NewNop(), nil, server.Client(), 1, "fred", nil)

	_, err := exec.DoText(context.Background(), newRequest(t, server.URL), "fred")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "request failed after 2 attempts")
}

func TestDoText_ClientErrorUsesHandler(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, "unknown series")
	}))
	defer server.Close()

	handler := func(status int, body []byte) error {
		return fmt.Errorf("provider rejected request (%d): %s", status, body)
	}
	exec := New(zap.NewNop(), nil, server.Client(), 2, "fred", handler)

	_, err := exec.DoText(context.Background(), newRequest(t, server.URL), "fred")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown series")
}

func TestBackoff_Progression(t *testing.T) {
	assert.Equal(t, 100*time.Millisecond, Backoff(0))
	assert.Equal(t, 250*time.Millisecond, Backoff(1))
	assert.Equal(t, 500*time.Millisecond, Backoff(2))
	assert.Equal(t, 500*time.Millisecond, Backoff(7))
}
