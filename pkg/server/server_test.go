package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testServer(t *testing.T) *Server {
	t.Helper()
	return New(nil, "test", Defaults{
		InitialSize:        100,
		RevenuePerCustomer: 100,
		SweepFrom:          5,
		SweepTo:            95,
		SweepStep:          5,
	})
}

func do(t *testing.T, srv *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	w := do(t, testServer(t), "GET", "/api/health", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
	assert.Equal(t, "test", resp["version"])
}

func TestDecay(t *testing.T) {
	w := do(t, testServer(t), "GET", "/api/decay?rate=50&horizon=5", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		RetentionRate float64 `json:"retention_rate"`
		Series        []struct {
			Period    int `json:"period"`
			Remaining int `json:"remaining"`
		} `json:"series"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 0.5, resp.RetentionRate)
	require.Len(t, resp.Series, 6)

	got := make([]int, len(resp.Series))
	for i, p := range resp.Series {
		assert.Equal(t, i, p.Period)
		got[i] = p.Remaining
	}
	assert.Equal(t, []int{100, 50, 25, 13, 6, 3}, got)
}

func TestDecay_RejectsOutOfDomain(t *testing.T) {
	srv := testServer(t)
	for _, target := range []string{
		"/api/decay?rate=0&horizon=5",
		"/api/decay?rate=150&horizon=5",
		"/api/decay?rate=50&horizon=11",
		"/api/decay?rate=50",
		"/api/decay?rate=50&horizon=five",
		"/api/decay?rate=50&horizon=5&initial=-3",
		"/api/decay?rate=0.5&horizon=2&initial=1e19",
	} {
		w := do(t, srv, "GET", target, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, target)
		assert.Contains(t, w.Body.String(), "error", target)
	}
}

func TestLTV(t *testing.T) {
	w := do(t, testServer(t), "GET", "/api/ltv?rate=50&revenue=100", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 200.0, resp["ltv"])
	assert.Equal(t, 2.0, resp["lifespan"])
	assert.NotContains(t, resp, "infinite")
}

func TestLTV_FullRetentionIsInfinite(t *testing.T) {
	w := do(t, testServer(t), "GET", "/api/ltv?rate=100", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["infinite"])
	assert.Equal(t, 0.0, resp["ltv"])
}

func TestLTV_NegativeRevenue(t *testing.T) {
	w := do(t, testServer(t), "GET", "/api/ltv?rate=50&revenue=-1", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSweep(t *testing.T) {
	w := do(t, testServer(t), "GET", "/api/sweep?revenue=100&from=50&to=100&step=25", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Sweep []struct {
			RetentionRate float64 `json:"retention_rate"`
			LTV           float64 `json:"ltv"`
			Infinite      bool    `json:"infinite"`
		} `json:"sweep"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Sweep, 3)
	assert.InDelta(t, 200.0, resp.Sweep[0].LTV, 1e-9)
	assert.InDelta(t, 400.0, resp.Sweep[1].LTV, 1e-9)
	assert.True(t, resp.Sweep[2].Infinite)
}

func TestSweep_Defaults(t *testing.T) {
	w := do(t, testServer(t), "GET", "/api/sweep", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Sweep []json.RawMessage `json:"sweep"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Sweep, 19)
}

func TestReport(t *testing.T) {
	body := `{"rates":[50,70,0.9],"horizon":5,"revenue":100,"sweep":{"from":10,"to":90,"step":40}}`
	w := do(t, testServer(t), "POST", "/api/report", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		RunID   string `json:"run_id"`
		Cohorts []struct {
			RetentionRate float64 `json:"retention_rate"`
			LTV           float64 `json:"ltv"`
			Series        []struct {
				Remaining int `json:"remaining"`
			} `json:"series"`
		} `json:"cohorts"`
		Sweep []json.RawMessage `json:"sweep"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.RunID)
	require.Len(t, resp.Cohorts, 3)
	assert.Equal(t, 200.0, resp.Cohorts[0].LTV)
	assert.Equal(t, 59, resp.Cohorts[2].Series[5].Remaining)
	assert.Len(t, resp.Sweep, 3)
}

func TestReport_Invalid(t *testing.T) {
	srv := testServer(t)
	for _, body := range []string{
		`not json`,
		`{"rates":[],"horizon":5}`,
		`{"rates":[50],"horizon":0}`,
		`{"rates":[0],"horizon":5}`,
		`{"rates":[50],"horizon":5,"revenue":-10}`,
		`{"rates":[50],"horizon":5,"initial_size":1e19}`,
		`{"rates":[50],"horizon":5,"sweep":{"from":5,"to":95,"step":0}}`,
	} {
		w := do(t, srv, "POST", "/api/report", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
}

func TestUnknownRoute(t *testing.T) {
	w := do(t, testServer(t), "GET", "/api/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
