package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func passingCheck() CheckFunc {
	return func(_ context.Context) error {
		return nil
	}
}

func failingCheck(msg string) CheckFunc {
	return func(_ context.Context) error {
		return errors.New(msg)
	}
}

func probe(t *testing.T, endpoint http.HandlerFunc, path string) (int, statusResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	endpoint(w, req)

	var body statusResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return w.Code, body
}

func TestLiveEndpoint_AllPassing(t *testing.T) {
	h := New()
	h.AddLivenessCheck("check1", time.Second, passingCheck())
	h.AddLivenessCheck("check2", time.Second, passingCheck())

	code, body := probe(t, h.LiveEndpoint, "/livez")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body.Status)
}

func TestLiveEndpoint_FailingCheck(t *testing.T) {
	h := New()
	h.AddLivenessCheck("db", time.Second, failingCheck("connection refused"))

	code, body := probe(t, h.LiveEndpoint, "/livez")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "unhealthy", body.Status)
	assert.Equal(t, "connection refused", body.Checks["db"])
}

func TestReadyEndpoint_ReadyAndPassing(t *testing.T) {
	h := New()
	h.AddReadinessCheck("postgres", time.Second, passingCheck())
	h.SetReady(true)

	code, body := probe(t, h.ReadyEndpoint, "/readyz")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body.Status)
}

func TestReadyEndpoint_NotReady(t *testing.T) {
	h := New()
	h.AddReadinessCheck("postgres", time.Second, passingCheck())

	code, body := probe(t, h.ReadyEndpoint, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Contains(t, body.Checks, "_readiness")
}

func TestReadyEndpoint_DrainsOnShutdown(t *testing.T) {
	h := New()
	h.SetReady(true)

	code, _ := probe(t, h.ReadyEndpoint, "/readyz")
	require.Equal(t, http.StatusOK, code)

	h.SetReady(false)
	code, _ = probe(t, h.ReadyEndpoint, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, code)
}

func TestReadyEndpoint_MultipleChecksOneFailing(t *testing.T) {
	h := New()
	h.AddReadinessCheck("postgres", time.Second, passingCheck())
	h.AddReadinessCheck("redis", time.Second, failingCheck("connection reset"))
	h.SetReady(true)

	code, body := probe(t, h.ReadyEndpoint, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Contains(t, body.Checks, "redis")
	assert.NotContains(t, body.Checks, "postgres")
}

func TestChecksRunFresh(t *testing.T) {
	// On-demand checks reflect the component state at probe time, not a
	// cached verdict.
	failing := true
	h := New()
	h.AddLivenessCheck("flaky", time.Second, func(_ context.Context) error {
		if failing {
			return errors.New("down")
		}
		return nil
	})

	code, _ := probe(t, h.LiveEndpoint, "/livez")
	require.Equal(t, http.StatusServiceUnavailable, code)

	failing = false
	code, _ = probe(t, h.LiveEndpoint, "/livez")
	assert.Equal(t, http.StatusOK, code)
}

func TestCheckTimeout(t *testing.T) {
	h := New()
	h.AddReadinessCheck("slow", 10*time.Millisecond, func(ctx context.Context) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
			return nil
		}
	})
	h.SetReady(true)

	code, body := probe(t, h.ReadyEndpoint, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Contains(t, body.Checks, "slow")
}

func TestLiveEndpoint_NoChecks(t *testing.T) {
	h := New()

	code, body := probe(t, h.LiveEndpoint, "/livez")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body.Status)
}

func TestGoroutineCountCheck(t *testing.T) {
	assert.NoError(t, GoroutineCountCheck(100000)(context.Background()))

	err := GoroutineCountCheck(0)(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds threshold")
}
