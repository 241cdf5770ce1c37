package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/career-navigator/internal/ai"
	"github.com/spigell/career-navigator/internal/catalog"
	"github.com/spigell/career-navigator/internal/navigator"
	"github.com/spigell/career-navigator/internal/recommend"
)

type stubRecommender struct {
	resp    *navigator.Response
	err     error
	lastReq navigator.Request

	partition    recommend.Partition
	partitionErr error
}

func (s *stubRecommender) Recommend(_ context.Context, req navigator.Request) (*navigator.Response, error) {
	s.lastReq = req
	return s.resp, s.err
}

func (s *stubRecommender) CareerPaths(context.Context, string) (recommend.Partition, error) {
	return s.partition, s.partitionErr
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRecommendations(t *testing.T) {
	stub := &stubRecommender{resp: &navigator.Response{Recommendations: ai.StaticDefaults(), FromCache: true}}
	h := New(stub, catalog.MustDefault(), nil, nil).Router()

	body := `{"userId":"user-1","userProfile":{"name":"Ada","skills":["Python"],"skill_expertise":{"Python":"advanced"},"interests":"data science"},"availableCourses":["Data Scientist"]}`
	rec := do(t, h, http.MethodPost, "/api/ai-recommendations", body)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))

	var got struct {
		Recommendations []ai.Recommendation `json:"recommendations"`
		FromCache       bool                `json:"fromCache"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.True(t, got.FromCache)
	assert.Len(t, got.Recommendations, 3)

	assert.Equal(t, "user-1", stub.lastReq.UserID)
	require.NotNil(t, stub.lastReq.Profile)
	assert.Equal(t, "Ada", stub.lastReq.Profile.Name)
	assert.Equal(t, "advanced", string(stub.lastReq.Profile.Expertise("Python")))
	assert.Equal(t, []string{"Data Scientist"}, stub.lastReq.Titles)
}

func TestRecommendationsErrors(t *testing.T) {
	cases := []struct {
		name string
		body string
		err  error
		code int
		msg  string
	}{
		{name: "malformed body", body: "{", code: http.StatusBadRequest, msg: "invalid request body"},
		{name: "missing profile", body: `{}`, err: navigator.ErrMissingProfile, code: http.StatusBadRequest},
		{name: "internal failure", body: `{"userId":"u"}`, err: errors.New("db down"), code: http.StatusInternalServerError, msg: errRecommendations},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := New(&stubRecommender{err: tc.err}, catalog.MustDefault(), nil, nil).Router()
			rec := do(t, h, http.MethodPost, "/api/ai-recommendations", tc.body)

			assert.Equal(t, tc.code, rec.Code)

			var payload map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
			assert.NotEmpty(t, payload["error"])
			if tc.msg != "" {
				assert.Equal(t, tc.msg, payload["error"])
			}
		})
	}
}

func TestCareerPathRoutes(t *testing.T) {
	c := catalog.MustDefault()
	h := New(&stubRecommender{}, c, nil, nil).Router()

	rec := do(t, h, http.MethodGet, "/api/career-paths", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var paths []catalog.CareerPath
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &paths))
	assert.Len(t, paths, c.Len())

	rec = do(t, h, http.MethodGet, "/api/career-paths/devops", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var path catalog.CareerPath
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &path))
	assert.Equal(t, "DevOps Engineer", path.Title)
	assert.NotEmpty(t, path.Roadmap)

	rec = do(t, h, http.MethodGet, "/api/career-paths/astronaut", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUserCareerPaths(t *testing.T) {
	c := catalog.MustDefault()
	stub := &stubRecommender{partition: recommend.Split(c, []string{"frontend", "backend", "datascience"})}
	h := New(stub, c, nil, nil).Router()

	rec := do(t, h, http.MethodGet, "/api/users/user-1/career-paths", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got recommend.Partition
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Len(t, got.Recommended, 3)
	assert.Len(t, got.Other, c.Len()-3)

	stub.partitionErr = navigator.ErrMissingProfile
	rec = do(t, h, http.MethodGet, "/api/users/ghost/career-paths", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	stub.partitionErr = errors.New("timeout")
	rec = do(t, h, http.MethodGet, "/api/users/user-1/career-paths", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHealth(t *testing.T) {
	healthy := New(&stubRecommender{}, catalog.MustDefault(), func(context.Context) error { return nil }, nil).Router()
	assert.Equal(t, http.StatusOK, do(t, healthy, http.MethodGet, "/healthz", "").Code)

	broken := New(&stubRecommender{}, catalog.MustDefault(), func(context.Context) error { return errors.New("redis down") }, nil).Router()
	assert.Equal(t, http.StatusServiceUnavailable, do(t, broken, http.MethodGet, "/healthz", "").Code)
}

func TestMetricsAndRequestID(t *testing.T) {
	h := New(&stubRecommender{}, catalog.MustDefault(), nil, nil).Router()

	do(t, h, http.MethodGet, "/api/career-paths", "")
	rec := do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `career_navigator_http_requests_total{code="200",route="GET /api/career-paths"}`)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "fixed-id")
	out := httptest.NewRecorder()
	h.ServeHTTP(out, req)
	assert.Equal(t, "fixed-id", out.Header().Get(requestIDHeader))
}

func TestWrongMethod(t *testing.T) {
	h := New(&stubRecommender{}, catalog.MustDefault(), nil, nil).Router()
	assert.Equal(t, http.StatusMethodNotAllowed, do(t, h, http.MethodGet, "/api/ai-recommendations", "").Code)
}
