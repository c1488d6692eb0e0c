package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/respcompare/internal/compare"
	"github.com/jonathan/respcompare/internal/db"
	"github.com/jonathan/respcompare/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory Store for handler tests
type memStore struct {
	mu          sync.Mutex
	results     map[uuid.UUID]types.BenchmarkResult
	comparisons map[uuid.UUID]map[string]types.ComparisonReport
	closed      bool
}

func newMemStore() *memStore {
	return &memStore{
		results:     make(map[uuid.UUID]types.BenchmarkResult),
		comparisons: make(map[uuid.UUID]map[string]types.ComparisonReport),
	}
}

func (m *memStore) CreateBenchmarkResult(_ context.Context, result *types.BenchmarkResult) (*types.BenchmarkResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	created := *result
	if created.ID == uuid.Nil {
		created.ID = uuid.New()
	}
	created.CreatedAt = time.Now().UTC()
	m.results[created.ID] = created
	return &created, nil
}

func (m *memStore) GetBenchmarkResult(_ context.Context, id uuid.UUID) (*types.BenchmarkResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result, ok := m.results[id]
	if !ok {
		return nil, nil
	}
	return &result, nil
}

func (m *memStore) ListBenchmarkResults(_ context.Context, filters db.BenchmarkResultFilters) ([]types.BenchmarkResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	results := []types.BenchmarkResult{}
	for _, r := range m.results {
		if filters.TestName == "" || strings.Contains(strings.ToLower(r.TestName), strings.ToLower(filters.TestName)) {
			results = append(results, r)
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].CreatedAt.After(results[j].CreatedAt) })
	if filters.Limit > 0 && len(results) > filters.Limit {
		results = results[:filters.Limit]
	}
	return results, nil
}

func (m *memStore) DeleteBenchmarkResult(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.results[id]; !ok {
		return fmt.Errorf("benchmark result %s: %w", id, db.ErrNotFound)
	}
	delete(m.results, id)
	delete(m.comparisons, id)
	return nil
}

func (m *memStore) SaveComparison(_ context.Context, report *types.ComparisonReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.comparisons[report.ResultID] == nil {
		m.comparisons[report.ResultID] = make(map[string]types.ComparisonReport)
	}
	m.comparisons[report.ResultID][string(report.Mode)] = *report
	return nil
}

func (m *memStore) GetComparison(_ context.Context, resultID uuid.UUID, mode string) (*types.ComparisonReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	report, ok := m.comparisons[resultID][mode]
	if !ok {
		return nil, nil
	}
	return &report, nil
}

func (m *memStore) ListComparisons(_ context.Context, resultID uuid.UUID) ([]db.ComparisonSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	summaries := []db.ComparisonSummary{}
	for mode, report := range m.comparisons[resultID] {
		summaries = append(summaries, db.ComparisonSummary{
			ID:                uuid.New(),
			ResultID:          resultID,
			Mode:              mode,
			SimilarityPercent: report.Stats.SimilarityPercent,
			OnlyInACount:      len(report.KeyPoints.OnlyInA),
			OnlyInBCount:      len(report.KeyPoints.OnlyInB),
			CreatedAt:         report.GeneratedAt,
		})
	}
	return summaries, nil
}

func (m *memStore) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
}

// newTestServer creates a server over an in-memory store. Auth and rate
// limiting are disabled unless env (key, value pairs) turns them on.
func newTestServer(t *testing.T, opts compare.Options, env ...string) (*Server, *memStore) {
	t.Helper()
	t.Setenv("JWT_SECRET", "")
	t.Setenv("RATE_LIMIT_ENABLED", "false")
	for i := 0; i+1 < len(env); i += 2 {
		t.Setenv(env[i], env[i+1])
	}

	store := newMemStore()
	s, err := NewWithStore(Config{Port: 0, Engine: opts}, store)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s, store
}

func doRequest(t *testing.T, s *Server, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHandleHealth(t *testing.T) {
	s, _ := newTestServer(t, compare.DefaultOptions())

	w := doRequest(t, s, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Equal(t, "ok", decodeBody[map[string]string](t, w)["status"])
}

func TestCORSPreflight(t *testing.T) {
	s, _ := newTestServer(t, compare.DefaultOptions())

	w := doRequest(t, s, http.MethodOptions, "/compare", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Authorization")
}

func TestHandleCompare(t *testing.T) {
	s, _ := newTestServer(t, compare.DefaultOptions())

	w := doRequest(t, s, http.MethodPost, "/compare", types.CompareRequest{
		TextA: "The cat sat",
		TextB: "The dog sat",
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	report := decodeBody[types.ComparisonReport](t, w)
	assert.Equal(t, uuid.Nil, report.ResultID)
	assert.Equal(t, compare.ModeGreedy, report.Mode)
	assert.Equal(t, 80.0, report.Stats.SimilarityPercent)
	assert.Equal(t, 1, report.Stats.Changed)
	assert.NotNil(t, report.KeyPoints.OnlyInA)
}

func TestHandleCompare_OptimalMode(t *testing.T) {
	s, _ := newTestServer(t, compare.DefaultOptions())

	w := doRequest(t, s, http.MethodPost, "/compare", types.CompareRequest{
		TextA: "a b c",
		TextB: "a c",
		Mode:  "optimal",
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, compare.ModeOptimal, decodeBody[types.ComparisonReport](t, w).Mode)
}

func TestHandleCompare_Errors(t *testing.T) {
	s, _ := newTestServer(t, compare.Options{MaxInputChars: 10})

	tests := []struct {
		name     string
		body     any
		expected int
	}{
		{"invalid JSON", "{not json", http.StatusBadRequest},
		{"unknown mode", types.CompareRequest{TextA: "a", TextB: "b", Mode: "fuzzy"}, http.StatusBadRequest},
		{"text A too large", types.CompareRequest{TextA: strings.Repeat("a", 11), TextB: "b"}, http.StatusRequestEntityTooLarge},
		{"text B too large", types.CompareRequest{TextA: "a", TextB: strings.Repeat("b", 11)}, http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(t, s, http.MethodPost, "/compare", tt.body, "")
			assert.Equal(t, tt.expected, w.Code, w.Body.String())
			assert.NotEmpty(t, decodeBody[map[string]string](t, w)["error"])
		})
	}
}

func TestHandleCompare_BodyTooLarge(t *testing.T) {
	s, _ := newTestServer(t, compare.Options{})

	body := `{"text_a": "` + strings.Repeat("x", maxBodyBytes) + `", "text_b": ""}`
	w := doRequest(t, s, http.MethodPost, "/compare", body, "")
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestResultsCRUD(t *testing.T) {
	s, store := newTestServer(t, compare.DefaultOptions())

	w := doRequest(t, s, http.MethodPost, "/results", types.CreateBenchmarkResultRequest{
		TestName:      "caching",
		ModeAModel:    "baseline",
		ModeAResponse: "The cat sat",
		ModeBResponse: "The dog sat",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decodeBody[types.BenchmarkResult](t, w)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, "baseline", created.ModeAModel)

	w = doRequest(t, s, http.MethodGet, "/results/"+created.ID.String(), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "The dog sat", decodeBody[types.BenchmarkResult](t, w).ModeBResponse)

	w = doRequest(t, s, http.MethodGet, "/results?test_name=CACH&limit=0", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	list := decodeBody[ListResultsResponse](t, w)
	assert.Equal(t, 1, list.Count)
	assert.Equal(t, db.DefaultListLimit, list.Limit)

	w = doRequest(t, s, http.MethodGet, "/results?test_name=other", nil, "")
	assert.Equal(t, 0, decodeBody[ListResultsResponse](t, w).Count)

	w = doRequest(t, s, http.MethodDelete, "/results/"+created.ID.String(), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, store.results)

	w = doRequest(t, s, http.MethodGet, "/results/"+created.ID.String(), nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(t, s, http.MethodDelete, "/results/"+created.ID.String(), nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateResult_Validation(t *testing.T) {
	s, _ := newTestServer(t, compare.Options{MaxInputChars: 5})

	w := doRequest(t, s, http.MethodPost, "/results", types.CreateBenchmarkResultRequest{
		ModeAResponse: "a",
	}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(t, s, http.MethodPost, "/results", types.CreateBenchmarkResultRequest{
		TestName:      "big",
		ModeAResponse: "abcdef",
	}, "")
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestGetResult_InvalidID(t *testing.T) {
	s, _ := newTestServer(t, compare.DefaultOptions())

	for _, path := range []string{"/results/not-a-uuid", "/results/not-a-uuid/comparison"} {
		w := doRequest(t, s, http.MethodGet, path, nil, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
	}
}

func TestCompareResult_PersistsReport(t *testing.T) {
	s, store := newTestServer(t, compare.DefaultOptions())
	created, err := store.CreateBenchmarkResult(context.Background(), &types.BenchmarkResult{
		TestName:      "caching",
		ModeAResponse: "Caching stores results for reuse. It is fast.",
		ModeBResponse: "Indexes speed up database lookups considerably. It is fast.",
	})
	require.NoError(t, err)
	base := "/results/" + created.ID.String()

	w := doRequest(t, s, http.MethodGet, base+"/comparison", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(t, s, http.MethodPost, base+"/compare", nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	report := decodeBody[types.ComparisonReport](t, w)
	assert.Equal(t, created.ID, report.ResultID)
	assert.Equal(t, "caching", report.TestName)
	assert.Equal(t, []string{"Caching stores results for reuse"}, report.KeyPoints.OnlyInA)
	assert.Equal(t, []string{"Indexes speed up database lookups considerably"}, report.KeyPoints.OnlyInB)

	w = doRequest(t, s, http.MethodGet, base+"/comparison", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	stored := decodeBody[types.ComparisonReport](t, w)
	assert.Equal(t, report.Stats, stored.Stats)

	w = doRequest(t, s, http.MethodGet, base+"/comparison?mode=optimal", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(t, s, http.MethodPost, base+"/compare?mode=optimal", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, s, http.MethodGet, base+"/comparisons", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, decodeBody[ListComparisonsResponse](t, w).Count)
}

func TestCompareResult_Errors(t *testing.T) {
	s, store := newTestServer(t, compare.Options{MaxInputChars: 10})
	tooLarge, err := store.CreateBenchmarkResult(context.Background(), &types.BenchmarkResult{
		TestName:      "stored before the limit changed",
		ModeAResponse: strings.Repeat("a", 20),
	})
	require.NoError(t, err)

	w := doRequest(t, s, http.MethodPost, "/results/"+uuid.New().String()+"/compare", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(t, s, http.MethodPost, "/results/"+tooLarge.ID.String()+"/compare?mode=fuzzy", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(t, s, http.MethodPost, "/results/"+tooLarge.ID.String()+"/compare", nil, "")
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestAuth_WriteRoutesRequireToken(t *testing.T) {
	s, store := newTestServer(t, compare.DefaultOptions(), "JWT_SECRET", testJWTSecret)
	require.True(t, s.AuthEnabled())

	body := types.CreateBenchmarkResultRequest{TestName: "auth", ModeAResponse: "a", ModeBResponse: "b"}

	w := doRequest(t, s, http.MethodPost, "/results", body, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(t, s, http.MethodPost, "/results", body, "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, err := s.jwtService.GenerateToken("ci-runner", uuid.Nil)
	require.NoError(t, err)

	w = doRequest(t, s, http.MethodPost, "/results", body, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decodeBody[types.BenchmarkResult](t, w)

	// Reads and ad-hoc comparisons stay public
	w = doRequest(t, s, http.MethodGet, "/results", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	w = doRequest(t, s, http.MethodPost, "/compare", types.CompareRequest{TextA: "a", TextB: "b"}, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, s, http.MethodPost, "/results/"+created.ID.String()+"/compare", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(t, s, http.MethodDelete, "/results/"+created.ID.String(), nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(t, s, http.MethodDelete, "/results/"+created.ID.String(), nil, token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, store.results)
}

func TestNewWithStore_InvalidJWTConfig(t *testing.T) {
	t.Setenv("JWT_SECRET", testJWTSecret)
	t.Setenv("JWT_EXPIRATION_HOURS", "0")
	t.Setenv("RATE_LIMIT_ENABLED", "false")

	_, err := NewWithStore(Config{}, newMemStore())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT config")
}

func TestRateLimit_Compare(t *testing.T) {
	s, _ := newTestServer(t, compare.DefaultOptions(),
		"RATE_LIMIT_ENABLED", "true",
		"RATE_LIMIT_COMPARE_LIMIT", "1",
		"RATE_LIMIT_COMPARE_BURST", "1",
	)

	body := types.CompareRequest{TextA: "a", TextB: "b"}
	w := doRequest(t, s, http.MethodPost, "/compare", body, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Limit"))

	w = doRequest(t, s, http.MethodPost, "/compare", body, "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Equal(t, "rate_limit_exceeded", decodeBody[map[string]any](t, w)["error"])

	// Health checks are never limited
	w = doRequest(t, s, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestClose_ClosesStore(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("RATE_LIMIT_ENABLED", "false")
	store := newMemStore()
	s, err := NewWithStore(Config{}, store)
	require.NoError(t, err)

	s.Close()
	assert.True(t, store.closed)
}
