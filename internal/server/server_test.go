package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laresh1090/pennivault/internal/calculation"
	"github.com/laresh1090/pennivault/internal/config"
	"github.com/laresh1090/pennivault/internal/domain"
	"github.com/laresh1090/pennivault/internal/ledger"
	"github.com/laresh1090/pennivault/internal/store"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	s, err := store.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	engine, err := calculation.NewEngine(config.Default())
	require.NoError(t, err)

	srv := NewServer(ledger.NewLedger(s, engine, nil, nil), nil)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	return resp, raw
}

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer(t)
	resp, body := doJSON(t, "GET", ts.URL+"/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
}

func TestQuoteInstallmentWorkedExample(t *testing.T) {
	ts := newTestServer(t)
	resp, body := doJSON(t, "POST", ts.URL+"/quotes/installment", map[string]any{
		"price":           "85000000",
		"upfront_percent": "40",
		"term_months":     6,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Breakdown domain.PaymentBreakdown `json:"breakdown"`
	}
	require.NoError(t, json.Unmarshal(body, &result))
	assert.Equal(t, "34000000", result.Breakdown.UpfrontAmount.String())
	assert.Equal(t, "8925000", result.Breakdown.MonthlyAmount.String())
	assert.Equal(t, "87550000", result.Breakdown.TotalCost.String())
}

func TestQuoteInstallmentRejectsUnknownTerm(t *testing.T) {
	ts := newTestServer(t)
	resp, _ := doJSON(t, "POST", ts.URL+"/quotes/installment", map[string]any{
		"price":           "85000000",
		"upfront_percent": "40",
		"term_months":     7,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestQuoteGoal(t *testing.T) {
	ts := newTestServer(t)
	resp, body := doJSON(t, "POST", ts.URL+"/quotes/goal", map[string]any{
		"contribution": "5000",
		"target":       "200000",
		"frequency":    "weekly",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var projection domain.GoalProjection
	require.NoError(t, json.Unmarshal(body, &projection))
	assert.Equal(t, int64(40), projection.IntervalsNeeded)
	assert.Equal(t, int64(280), projection.TotalDays)
}

func createPlan(t *testing.T, ts *httptest.Server) *domain.InstallmentPlan {
	t.Helper()
	resp, body := doJSON(t, "POST", ts.URL+"/plans", map[string]any{
		"customer_key":    "cust-1",
		"price":           "100000",
		"upfront_percent": "40",
		"term_months":     6,
		"start_date":      time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	var plan domain.InstallmentPlan
	require.NoError(t, json.Unmarshal(body, &plan))
	return &plan
}

func TestPlanLifecycle(t *testing.T) {
	ts := newTestServer(t)
	plan := createPlan(t, ts)
	require.Len(t, plan.Payments, 6)

	resp, body := doJSON(t, "GET", ts.URL+"/plans/"+plan.ID.String(), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var fetched domain.InstallmentPlan
	require.NoError(t, json.Unmarshal(body, &fetched))
	assert.Equal(t, domain.PlanStatusActive, fetched.Status)

	payURL := fmt.Sprintf("%s/plans/%s/payments", ts.URL, plan.ID)
	resp, _ = doJSON(t, "POST", payURL, map[string]any{
		"payment_number": 1,
		"amount":         plan.Payments[0].Amount.String(),
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Retry is rejected as a conflict.
	resp, _ = doJSON(t, "POST", payURL, map[string]any{
		"payment_number": 1,
		"amount":         plan.Payments[0].Amount.String(),
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Wrong amount is a bad request.
	resp, _ = doJSON(t, "POST", payURL, map[string]any{
		"payment_number": 2,
		"amount":         "1",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetPlanNotFound(t *testing.T) {
	ts := newTestServer(t)
	resp, _ := doJSON(t, "GET", ts.URL+"/plans/0c7b4b1e-27cc-4871-9c7c-7d8bcb1e0000", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = doJSON(t, "GET", ts.URL+"/plans/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLockBreakFlow(t *testing.T) {
	ts := newTestServer(t)
	start := time.Now().UTC().AddDate(0, 0, -40)
	resp, body := doJSON(t, "POST", ts.URL+"/locks", map[string]any{
		"customer_key":  "cust-2",
		"principal":     "10000",
		"duration_days": 90,
		"interest_mode": "maturity",
		"start_date":    start,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	var lock domain.LockPlan
	require.NoError(t, json.Unmarshal(body, &lock))

	resp, body = doJSON(t, "GET", ts.URL+"/locks/"+lock.ID.String()+"/break-quote", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var quote domain.BreakQuote
	require.NoError(t, json.Unmarshal(body, &quote))
	assert.Equal(t, "250", quote.Penalty.String())

	// Breaking without acknowledgement is refused.
	resp, _ = doJSON(t, "POST", ts.URL+"/locks/"+lock.ID.String()+"/break", map[string]any{
		"acknowledged": false,
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, body = doJSON(t, "POST", ts.URL+"/locks/"+lock.ID.String()+"/break", map[string]any{
		"acknowledged": true,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Plan  domain.LockPlan   `json:"plan"`
		Quote domain.BreakQuote `json:"quote"`
	}
	require.NoError(t, json.Unmarshal(body, &result))
	assert.Equal(t, domain.LockStatusBroken, result.Plan.Status)
	assert.Equal(t, "9750", result.Quote.NetReceived.String())
}

func TestUpfrontLockBreakRejected(t *testing.T) {
	ts := newTestServer(t)
	start := time.Now().UTC().AddDate(0, 0, -40)
	resp, body := doJSON(t, "POST", ts.URL+"/locks", map[string]any{
		"customer_key":  "cust-2",
		"principal":     "10000",
		"duration_days": 90,
		"interest_mode": "upfront",
		"start_date":    start,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var lock domain.LockPlan
	require.NoError(t, json.Unmarshal(body, &lock))

	resp, _ = doJSON(t, "POST", ts.URL+"/locks/"+lock.ID.String()+"/break", map[string]any{
		"acknowledged": true,
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestGroupEndpoints(t *testing.T) {
	ts := newTestServer(t)
	resp, body := doJSON(t, "POST", ts.URL+"/groups", map[string]any{
		"name":         "test-circle",
		"total_slots":  3,
		"total_rounds": 6,
		"contribution": "1000",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	var group domain.RotatingGroup
	require.NoError(t, json.Unmarshal(body, &group))
	assert.Equal(t, 4, group.PayoutStartRound)

	for _, key := range []string{"m1", "m2", "m3"} {
		resp, body = doJSON(t, "POST", ts.URL+"/groups/"+group.ID.String()+"/join", map[string]any{
			"member_key": key,
		})
		require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	}
	require.NoError(t, json.Unmarshal(body, &group))
	assert.Equal(t, domain.GroupStatusActive, group.Status)

	// A fourth join conflicts.
	resp, _ = doJSON(t, "POST", ts.URL+"/groups/"+group.ID.String()+"/join", map[string]any{
		"member_key": "m4",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Advancing with unpaid members conflicts.
	resp, _ = doJSON(t, "POST", ts.URL+"/groups/"+group.ID.String()+"/advance", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	for _, key := range []string{"m1", "m2", "m3"} {
		resp, _ = doJSON(t, "POST", ts.URL+"/groups/"+group.ID.String()+"/contribute", map[string]any{
			"member_key": key,
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}
	resp, body = doJSON(t, "POST", ts.URL+"/groups/"+group.ID.String()+"/advance", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &group))
	assert.Equal(t, 2, group.CurrentRound)

	resp, body = doJSON(t, "GET", ts.URL+"/groups/"+group.ID.String()+"/schedule", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var schedule struct {
		Rounds []calculation.TurnRow `json:"rounds"`
	}
	require.NoError(t, json.Unmarshal(body, &schedule))
	require.Len(t, schedule.Rounds, 6)
	assert.Equal(t, domain.RoundStatusCompleted, schedule.Rounds[0].Status)
	assert.True(t, schedule.Rounds[0].Accumulating)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	doJSON(t, "POST", ts.URL+"/quotes/goal", map[string]any{
		"contribution": "100",
		"target":       "1000",
		"frequency":    "daily",
	})

	resp, body := doJSON(t, "GET", ts.URL+"/metrics", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "pennivault_quotes_total")
	assert.Contains(t, string(body), `product="goal"`)
}
