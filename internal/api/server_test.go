package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aiquira/assetrisk/internal/engine"
	"github.com/aiquira/assetrisk/internal/model"
	"github.com/aiquira/assetrisk/internal/store"
)

func newTestServer(t *testing.T) (*httptest.Server, store.Store) {
	t.Helper()

	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "api_test.db"))
	require.NoError(t, err)
	require.NoError(t, st.Migrate(t.Context()))
	t.Cleanup(func() { st.Close() })

	eng, err := engine.New(engine.DefaultConfig())
	require.NoError(t, err)

	srv := httptest.NewServer(NewServer(eng, st, nil).Router(RateLimit{}))
	t.Cleanup(srv.Close)
	return srv, st
}

func testRecord(id string) *model.PropertyRecord {
	return &model.PropertyRecord{
		ID:      id,
		Address: "12 Harbor Way",
		Location: &model.LocationRecord{
			CrimeRate:            0.3,
			FloodRisk:            0.2,
			ProximityToAmenities: 70,
			SchoolQuality:        65,
			Transportation:       80,
		},
		Condition: &model.ConditionRecord{
			Age:                 25,
			StructuralIntegrity: 75,
			MaintenanceScore:    60,
			EnergyEfficiency:    55,
			SafetyFeatures:      70,
		},
		Financial: &model.FinancialRecord{
			MarketValue:       450000,
			RentalIncome:      36000,
			OperatingExpenses: 14000,
			DebtRatio:         0.5,
			CashFlow:          18000,
			VacancyRate:       0.06,
		},
		Market: &model.MarketRecord{
			PriceHistory:      []float64{400000, 420000, 445000},
			DemandSupplyRatio: 1.1,
			Economic: model.EconomicIndicators{
				GDPGrowth:    2.1,
				Unemployment: 4.2,
				Inflation:    2.8,
				InterestRate: 5.0,
			},
		},
		Compliance: &model.ComplianceRecord{
			BuildingCodes: map[string]model.ComplianceCategoryStatus{
				"electrical": model.CategoryCompliant,
			},
			SafetyRegulations: map[string]model.ComplianceCategoryStatus{
				"fire": model.CategoryCompliant,
			},
		},
	}
}

func postAssessment(t *testing.T, srv *httptest.Server, rec *model.PropertyRecord) model.RiskAssessment {
	t.Helper()

	body, err := json.Marshal(rec)
	require.NoError(t, err)

	resp, err := http.Post(srv.URL+"/api/v1/assessments", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var a model.RiskAssessment
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&a))
	return a
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
}

func TestCreateAssessment(t *testing.T) {
	srv, st := newTestServer(t)

	a := postAssessment(t, srv, testRecord("prop-001"))
	assert.Equal(t, "prop-001", a.PropertyID)
	assert.NotEmpty(t, a.ID)
	assert.Contains(t, []model.RiskLevel{model.RiskLow, model.RiskMedium, model.RiskHigh}, a.Level)

	stored, err := st.GetAssessment(t.Context(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.Score, stored.Score)
}

func TestCreateAssessmentRejectsBadInput(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"malformed json", "{not json", http.StatusBadRequest},
		{"missing id", `{"address":"somewhere"}`, http.StatusBadRequest},
		{"missing sections", `{"id":"prop-002"}`, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(srv.URL+"/api/v1/assessments", "application/json", bytes.NewBufferString(tt.body))
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestListAssessments(t *testing.T) {
	srv, _ := newTestServer(t)

	postAssessment(t, srv, testRecord("prop-001"))
	postAssessment(t, srv, testRecord("prop-002"))

	resp, err := http.Get(srv.URL + "/api/v1/assessments?property=prop-001")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got []*model.RiskAssessment
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.Len(t, got, 1)
	assert.Equal(t, "prop-001", got[0].PropertyID)
}

func TestListAssessmentsEmptyIsJSONArray(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/assessments")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "[]", strings.TrimSpace(string(body)))
}

func TestListAssessmentsValidation(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, q := range []string{"level=bogus", "limit=-1", "limit=abc", "offset=x"} {
		resp, err := http.Get(srv.URL + "/api/v1/assessments?" + q)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, q)
	}
}

func TestGetAssessmentSubresources(t *testing.T) {
	srv, _ := newTestServer(t)

	a := postAssessment(t, srv, testRecord("prop-001"))
	base := srv.URL + "/api/v1/assessments/" + a.ID

	resp, err := http.Get(base)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var full model.RiskAssessment
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&full))
	assert.Equal(t, a.ID, full.ID)

	scoreResp, err := http.Get(base + "/score")
	require.NoError(t, err)
	defer scoreResp.Body.Close()
	require.Equal(t, http.StatusOK, scoreResp.StatusCode)

	var score struct {
		ID    string  `json:"id"`
		Score float64 `json:"score"`
	}
	require.NoError(t, json.NewDecoder(scoreResp.Body).Decode(&score))
	assert.Equal(t, a.ID, score.ID)
	assert.InDelta(t, a.Score, score.Score, 0.001)

	for _, path := range []string{"/issues", "/recommendations"} {
		r, err := http.Get(base + path)
		require.NoError(t, err)
		r.Body.Close()
		assert.Equal(t, http.StatusOK, r.StatusCode, path)
	}
}

func TestGetAssessmentNotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/assessments/nope")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestStats(t *testing.T) {
	srv, _ := newTestServer(t)
	postAssessment(t, srv, testRecord("prop-001"))

	resp, err := http.Get(srv.URL + "/api/v1/assessments/stats")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var snap struct {
		Total int `json:"total"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	assert.Equal(t, 1, snap.Total)
}

func patchStatus(t *testing.T, url, status string) *http.Response {
	t.Helper()

	body := fmt.Sprintf(`{"status":%q}`, status)
	req, err := http.NewRequest(http.MethodPatch, url, bytes.NewBufferString(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func TestUpdateIssueStatus(t *testing.T) {
	srv, st := newTestServer(t)

	// Certain structural damage so the engine detects at least one issue.
	rec := testRecord("prop-001")
	rec.Condition.StructuralIntegrity = 20
	rec.Condition.StructuralIssues = []string{"foundation crack"}
	a := postAssessment(t, srv, rec)
	require.NotEmpty(t, a.Issues)

	resp := patchStatus(t, srv.URL+"/api/v1/issues/"+a.Issues[0].ID, "in_progress")
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	stored, err := st.GetAssessment(t.Context(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, model.IssueInProgress, stored.Issues[0].Status)
}

func TestUpdateIssueStatusErrors(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := patchStatus(t, srv.URL+"/api/v1/issues/i-1", "bogus")
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = patchStatus(t, srv.URL+"/api/v1/issues/nope", "resolved")
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUpdateRecommendationStatus(t *testing.T) {
	srv, st := newTestServer(t)

	rec := testRecord("prop-001")
	rec.Condition.MaintenanceScore = 10
	a := postAssessment(t, srv, rec)
	require.NotEmpty(t, a.Recommendations)

	resp := patchStatus(t, srv.URL+"/api/v1/recommendations/"+a.Recommendations[0].ID, "approved")
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	stored, err := st.GetAssessment(t.Context(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RecApproved, stored.Recommendations[0].Status)
}

func TestRateLimit(t *testing.T) {
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "rl_test.db"))
	require.NoError(t, err)
	require.NoError(t, st.Migrate(t.Context()))
	t.Cleanup(func() { st.Close() })

	eng, err := engine.New(engine.DefaultConfig())
	require.NoError(t, err)

	srv := httptest.NewServer(NewServer(eng, st, nil).Router(RateLimit{RequestsPerSec: 1, Burst: 1}))
	t.Cleanup(srv.Close)

	first, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	first.Body.Close()
	assert.Equal(t, http.StatusOK, first.StatusCode)

	second, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	second.Body.Close()
	assert.Equal(t, http.StatusTooManyRequests, second.StatusCode)
}
