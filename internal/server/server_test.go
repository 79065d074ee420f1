package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jonathan/talent-match/internal/config"
	"github.com/jonathan/talent-match/internal/features"
	"github.com/jonathan/talent-match/internal/matching"
	"github.com/jonathan/talent-match/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func floatPtr(f float64) *float64 { return &f }

func seedRepository(t *testing.T) *matching.MemoryRepository {
	t.Helper()
	ctx := context.Background()
	repo := matching.NewMemoryRepository()

	candidates := []*types.CandidateRecord{
		{
			ID: "cand-1", Name: "Ada", YearsOfExperience: floatPtr(5), CountryOfOrigin: "Canada",
			PersonalStatement: "Backend developer building APIs in Go",
			WorkExperience: []types.WorkExperience{
				{Title: "Backend Engineer", StartDate: "2019-01", EndDate: "Present", Skills: []string{"Go", "SQL", "Docker"}},
			},
			Education: []types.Education{{Degree: "Bachelor of Science"}},
		},
		{
			ID: "cand-2", Name: "Grace", YearsOfExperience: floatPtr(1),
			PersonalStatement: "Frontend developer",
			WorkExperience: []types.WorkExperience{
				{Title: "Frontend Engineer", StartDate: "2023-01", Skills: []string{"React", "TypeScript"}},
			},
		},
	}
	for _, c := range candidates {
		require.NoError(t, repo.PutCandidate(ctx, c))
	}

	jobs := []*types.JobRecord{
		{ID: "job-a", Title: "Backend Engineer", Description: "Build services in Go", Keywords: []string{"Go", "SQL"}, MinYearsExperience: 3, PositionLevel: types.LevelSenior, Country: "USA"},
		{ID: "job-b", Title: "Frontend Engineer", Description: "Build React apps", Keywords: []string{"React", "TypeScript"}, PositionLevel: types.LevelEntry, Country: "Canada"},
	}
	for _, j := range jobs {
		require.NoError(t, repo.PutJob(ctx, j))
	}
	return repo
}

func newTestServer(t *testing.T, cfg Config) (*Server, http.Handler) {
	t.Helper()
	ext := features.NewExtractor(nil, features.NewHashingEmbedder(64),
		features.WithClock(func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }))
	svc := matching.NewService(seedRepository(t), ext, matching.WithWorkers(2))
	s, err := New(svc, cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(s.rateLimiter.Stop)
	return s, s.Handler()
}

func do(t *testing.T, h http.Handler, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealthEndpoint(t *testing.T) {
	_, h := newTestServer(t, Config{})

	w := do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode[map[string]string](t, w)["status"])
}

func TestHealthEndpoint_PingFailure(t *testing.T) {
	_, h := newTestServer(t, Config{Ping: func(context.Context) error { return errors.New("db down") }})

	w := do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestCreateAndGetJob(t *testing.T) {
	_, h := newTestServer(t, Config{})

	w := do(t, h, http.MethodPost, "/jobs", `{"title":"Data Engineer","keywords":["Python","SQL"],"minYearsExperience":2}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[types.JobRecord](t, w)
	assert.True(t, strings.HasPrefix(created.ID, "job-"))
	assert.Equal(t, 0, created.Version)

	w = do(t, h, http.MethodGet, "/jobs/"+created.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Data Engineer", decode[types.JobRecord](t, w).Title)

	// Re-posting an existing id stores a new version
	w = do(t, h, http.MethodPost, "/jobs", `{"id":"`+created.ID+`","title":"Senior Data Engineer"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 1, decode[types.JobRecord](t, w).Version)
}

func TestCreateJob_Invalid(t *testing.T) {
	_, h := newTestServer(t, Config{})

	tests := []struct {
		name string
		body string
	}{
		{name: "malformed json", body: `{"title":`},
		{name: "missing title", body: `{"company":"Acme"}`},
		{name: "wrong type", body: `{"title":"X","minYearsExperience":"lots"}`},
		{name: "unknown level", body: `{"title":"X","positionLevel":"Galactic"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, http.MethodPost, "/jobs", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.NotEmpty(t, decode[map[string]any](t, w)["error"])
		})
	}
}

func TestCreateCandidate_SchemaFields(t *testing.T) {
	_, h := newTestServer(t, Config{})

	w := do(t, h, http.MethodPost, "/candidates", `{"name":"Linus","workExperience":[{"title":"Kernel"}]}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decode[errorBody](t, w)
	assert.Equal(t, "validation failed", body.Error)
	require.NotEmpty(t, body.Fields)

	w = do(t, h, http.MethodPost, "/candidates", `{"name":"Linus","workExperience":[{"title":"Kernel","startDate":"1991-08"}]}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.True(t, strings.HasPrefix(decode[types.CandidateRecord](t, w).ID, "candidate-"))
}

func TestGetRecord_NotFound(t *testing.T) {
	_, h := newTestServer(t, Config{})

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/jobs/nope", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/candidates/nope", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/search/jobs-for-applicant/nope", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/summaries/jobs/nope", "").Code)
}

func TestListRecords(t *testing.T) {
	_, h := newTestServer(t, Config{})

	w := do(t, h, http.MethodGet, "/candidates", "")
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[listResponse[types.CandidateRecord]](t, w)
	assert.Equal(t, 2, list.Count)
	assert.Equal(t, "cand-1", list.Items[0].ID)

	w = do(t, h, http.MethodGet, "/jobs", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, decode[listResponse[types.JobRecord]](t, w).Count)
}

func TestSearchJobsForApplicant(t *testing.T) {
	_, h := newTestServer(t, Config{})

	w := do(t, h, http.MethodGet, "/search/jobs-for-applicant/cand-1", "")
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[matching.SearchResponse[types.JobRecord]](t, w)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "job-a", resp.Results[0].Item.ID)
	assert.GreaterOrEqual(t, resp.Results[0].Score, resp.Results[1].Score)
	assert.False(t, resp.Degraded)
	assert.NotNil(t, resp.Diagnostics)

	w = do(t, h, http.MethodGet, "/search/jobs-for-applicant/cand-1?country=canada&limit=5", "")
	require.Equal(t, http.StatusOK, w.Code)
	resp = decode[matching.SearchResponse[types.JobRecord]](t, w)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "job-b", resp.Results[0].Item.ID)
}

func TestSearch_InvalidFilters(t *testing.T) {
	_, h := newTestServer(t, Config{})

	for _, path := range []string{
		"/search/jobs-for-applicant/cand-1?min_years_experience=5&max_years_experience=1",
		"/search/candidates-for-job/job-a?position_level=Galactic",
		"/search/candidates-for-job/job-a?limit=many",
	} {
		w := do(t, h, http.MethodGet, path, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
	}
}

func TestSearchCandidatesForJob(t *testing.T) {
	_, h := newTestServer(t, Config{})

	w := do(t, h, http.MethodGet, "/search/candidates-for-job/job-a?limit=1", "")
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[matching.SearchResponse[types.CandidateRecord]](t, w)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "cand-1", resp.Results[0].Item.ID)
}

func TestSummaries(t *testing.T) {
	_, h := newTestServer(t, Config{})

	w := do(t, h, http.MethodGet, "/summaries/applicants/cand-1", "")
	require.Equal(t, http.StatusOK, w.Code)
	summary := decode[types.Summary](t, w)
	assert.Equal(t, "cand-1", summary.RecordID)
	assert.NotEmpty(t, summary.Summary)

	w = do(t, h, http.MethodGet, "/summaries/jobs/job-a", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, types.KindJob, decode[types.Summary](t, w).Kind)
}

func TestCompare(t *testing.T) {
	_, h := newTestServer(t, Config{})

	w := do(t, h, http.MethodGet, "/compare/cand-1?peer_ids=cand-2,ghost", "")
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[matching.ComparisonResponse](t, w)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "cand-2", resp.Results[0].PeerID)
	assert.Contains(t, resp.Results[0].SkillGaps, "react")
	require.Len(t, resp.Diagnostics, 1)
	assert.Equal(t, "ghost", resp.Diagnostics[0].RecordID)

	w = do(t, h, http.MethodGet, "/compare/cand-1/cand-2", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[matching.ComparisonResponse](t, w).Results, 1)

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/compare/cand-1/cand-1", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/compare/cand-1/ghost", "").Code)
}

func TestHeatmap(t *testing.T) {
	_, h := newTestServer(t, Config{})

	w := do(t, h, http.MethodGet, "/compare/cand-1/heatmap?peer_ids=cand-2", "")
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[matching.HeatmapResponse](t, w)
	require.NotEmpty(t, resp.Cells)
	assert.Equal(t, "You", resp.Cells[0].SubjectLabel)
	assert.Equal(t, "Peer 1", resp.Cells[1].SubjectLabel)
	assert.Len(t, resp.Cells, 2*5, "five distinct skills across two entities")
}

func TestWarm(t *testing.T) {
	_, h := newTestServer(t, Config{})

	w := do(t, h, http.MethodPost, "/admin/warm", `{"kind":"candidate","ids":["cand-1","ghost"]}`)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[WarmResponse](t, w)
	require.Len(t, resp.Diagnostics, 1)
	assert.Equal(t, "ghost", resp.Diagnostics[0].RecordID)

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/admin/warm", `{"kind":"robot"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/admin/warm", `nope`).Code)
}

func TestCORSPreflight(t *testing.T) {
	_, h := newTestServer(t, Config{})

	w := do(t, h, http.MethodOptions, "/jobs", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Authorization")
}

func TestRateLimit(t *testing.T) {
	_, h := newTestServer(t, Config{RateLimit: 1, RateBurst: 2})

	for i := 0; i < 2; i++ {
		w := do(t, h, http.MethodGet, "/jobs", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	}
	w := do(t, h, http.MethodGet, "/jobs", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	// Health checks are never limited
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/health", "").Code)
}

func TestAuthentication(t *testing.T) {
	secrets := &config.SecretConfig{BcryptCost: 10}
	hash, err := secrets.HashSecret("s3cret")
	require.NoError(t, err)

	_, h := newTestServer(t, Config{
		JWT:        &config.JWTConfig{Secret: testJWTSecret, Expiration: time.Hour, Issuer: "talent-match-test"},
		Secrets:    secrets,
		APIClients: map[string]string{"dashboard": hash},
	})

	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/health", "").Code, "health is public")
	assert.Equal(t, http.StatusUnauthorized, do(t, h, http.MethodGet, "/jobs", "").Code)

	w := do(t, h, http.MethodPost, "/auth/token", `{"clientId":"dashboard","clientSecret":"s3cret"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	token := decode[TokenResponse](t, w).Token

	w = do(t, h, http.MethodGet, "/jobs", "", "Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, h, http.MethodGet, "/jobs", "", "Authorization", "Bearer "+token+"x")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestNew_AuthRequiresSecrets(t *testing.T) {
	svc := matching.NewService(matching.NewMemoryRepository(), features.NewExtractor(nil, nil))
	_, err := New(svc, Config{JWT: &config.JWTConfig{Secret: testJWTSecret, Expiration: time.Hour}}, nil)
	assert.Error(t, err)
}
