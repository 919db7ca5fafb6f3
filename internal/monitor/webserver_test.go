package monitor

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekstremedia/raspilapse-sub000/internal/brightness"
	"github.com/ekstremedia/raspilapse-sub000/internal/exposure"
)

func testDiag(i int) exposure.Diagnostics {
	return exposure.Diagnostics{
		Timestamp:       time.Date(2026, 8, 29, 20, 0, i, 0, time.UTC),
		Mode:            exposure.ModeTransition,
		RawLux:          30 + float64(i),
		SmoothedLux:     30 + float64(i),
		AppliedExposure: 0.05,
		AppliedGain:     1.0,
		Brightness:      brightness.Metrics{Mean: 120, StdDev: 20},
	}
}

func doRequest(t *testing.T, ws *WebServer, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	ws.setupRoutes().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	ws := NewWebServer(Config{Address: ":0"})
	rec := doRequest(t, ws, "/healthz")

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, ws.RunID(), body["run_id"])
}

func TestStatus(t *testing.T) {
	ws := NewWebServer(Config{Address: ":0"})

	t.Run("before any cycles", func(t *testing.T) {
		rec := doRequest(t, ws, "/api/exposure/status")
		require.Equal(t, http.StatusOK, rec.Code)

		var resp statusResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, ws.RunID(), resp.RunID)
		assert.Zero(t, resp.CyclesRun)
		assert.Nil(t, resp.Latest)
	})

	t.Run("after cycles", func(t *testing.T) {
		ws.Observe(testDiag(0))
		ws.Observe(testDiag(1))

		rec := doRequest(t, ws, "/api/exposure/status")
		require.Equal(t, http.StatusOK, rec.Code)

		var resp statusResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, int64(2), resp.CyclesRun)
		require.NotNil(t, resp.Latest)
		assert.InDelta(t, 31.0, resp.Latest.SmoothedLux, 1e-9)
	})
}

func TestHistory(t *testing.T) {
	ws := NewWebServer(Config{Address: ":0", HistorySize: 3})
	for i := 0; i < 5; i++ {
		ws.Observe(testDiag(i))
	}

	t.Run("ring caps retention", func(t *testing.T) {
		rec := doRequest(t, ws, "/api/exposure/history")
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			RunID  string                 `json:"run_id"`
			Cycles []exposure.Diagnostics `json:"cycles"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Cycles, 3)
		// Oldest entries were evicted; the ring holds cycles 2..4.
		assert.InDelta(t, 32.0, resp.Cycles[0].SmoothedLux, 1e-9)
		assert.InDelta(t, 34.0, resp.Cycles[2].SmoothedLux, 1e-9)
	})

	t.Run("n limits the slice", func(t *testing.T) {
		rec := doRequest(t, ws, "/api/exposure/history?n=2")
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Cycles []exposure.Diagnostics `json:"cycles"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Cycles, 2)
		assert.InDelta(t, 33.0, resp.Cycles[0].SmoothedLux, 1e-9)
	})

	t.Run("rejects bad n", func(t *testing.T) {
		rec := doRequest(t, ws, "/api/exposure/history?n=-1")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestChartEndpoints(t *testing.T) {
	ws := NewWebServer(Config{Address: ":0"})

	t.Run("empty ring is not found", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, doRequest(t, ws, "/debug/exposure/chart").Code)
		assert.Equal(t, http.StatusNotFound, doRequest(t, ws, "/debug/exposure/plot.png").Code)
	})

	for i := 0; i < 10; i++ {
		ws.Observe(testDiag(i))
	}

	t.Run("chart renders html", func(t *testing.T) {
		rec := doRequest(t, ws, "/debug/exposure/chart")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
		assert.Contains(t, rec.Body.String(), "echarts")
	})

	t.Run("plot renders png", func(t *testing.T) {
		rec := doRequest(t, ws, "/debug/exposure/plot.png")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
		// PNG magic bytes.
		require.Greater(t, rec.Body.Len(), 8)
		assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, rec.Body.Bytes()[:4])
	})
}
