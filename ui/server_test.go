package ui

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carepath/adapters/memory"
	"carepath/app"
	"carepath/ports"
)

func newTestServer() *Server {
	gin.SetMode(gin.TestMode)
	repo := memory.NewResultRepository()
	return NewServer(
		app.NewComparisonService(repo),
		app.NewSweepService(repo, 2),
		nil, // built-in scenarios only
		42,
		200,
	)
}

func do(t *testing.T, s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	w := do(t, newTestServer(), http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestListScenarios(t *testing.T) {
	w := do(t, newTestServer(), http.MethodGet, "/api/scenarios", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Scenarios []string `json:"scenarios"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.Scenarios, "legacy")
	assert.Contains(t, resp.Scenarios, "orchestrator")
}

func TestCreateAndFetchRun(t *testing.T) {
	s := newTestServer()

	w := do(t, s, http.MethodPost, "/api/runs", map[string]interface{}{
		"before": "legacy",
		"after":  "orchestrator",
		"n":      200,
		"seed":   42,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var record ports.RunRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &record))
	assert.NotEmpty(t, record.RunID)
	assert.True(t, record.Result.Total.Significant)

	w = do(t, s, http.MethodGet, "/api/runs/"+record.RunID.String(), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, s, http.MethodGet, "/api/runs/"+record.RunID.String()+"/report", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "Care Path Comparison")

	w = do(t, s, http.MethodGet, "/api/runs/"+record.RunID.String()+"/report?format=markdown", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "# Care Path Comparison")

	w = do(t, s, http.MethodGet, "/api/runs", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCreateRunUnknownScenario(t *testing.T) {
	w := do(t, newTestServer(), http.MethodPost, "/api/runs", map[string]interface{}{
		"before": "nope",
		"after":  "orchestrator",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateRunMissingFields(t *testing.T) {
	w := do(t, newTestServer(), http.MethodPost, "/api/runs", map[string]interface{}{
		"before": "legacy",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetRunNotFound(t *testing.T) {
	w := do(t, newTestServer(), http.MethodGet, "/api/runs/unknown-id", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateAndFetchSweep(t *testing.T) {
	s := newTestServer()

	w := do(t, s, http.MethodPost, "/api/sweeps", map[string]interface{}{
		"kind":   "multi_seed",
		"before": "legacy",
		"after":  "orchestrator",
		"seeds":  []int64{1, 2, 3},
		"n":      150,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var summary struct {
		SweepID string `json:"sweep_id"`
		Runs    []struct {
			VariantLabel string `json:"variant_label"`
		} `json:"runs"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	assert.Len(t, summary.Runs, 3)

	w = do(t, s, http.MethodGet, "/api/sweeps/"+summary.SweepID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCreateSweepBadKind(t *testing.T) {
	w := do(t, newTestServer(), http.MethodPost, "/api/sweeps", map[string]interface{}{
		"kind":  "bogus",
		"after": "orchestrator",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
