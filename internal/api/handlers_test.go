package api

import (
	"compress/gzip"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipe-extraction-api/internal/extractor"
	"recipe-extraction-api/internal/metrics"
	"recipe-extraction-api/internal/recipe"
	"recipe-extraction-api/internal/service"
	"recipe-extraction-api/internal/store"
	"recipe-extraction-api/internal/worker"
)

type fakeExtractor struct {
	last service.Request
	res  *service.Result
}

func (f *fakeExtractor) Extract(_ context.Context, req service.Request) *service.Result {
	f.last = req
	return f.res
}

type fakeBatch struct {
	err error
}

func (f *fakeBatch) RunBatch(_ context.Context, urls []string, userID string, _ bool) ([]*service.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]*service.Result, len(urls))
	for i, u := range urls {
		if strings.Contains(u, "bad") {
			out[i] = &service.Result{Status: http.StatusUnprocessableEntity, Message: "nope", Suggestion: service.Suggestion}
			continue
		}
		out[i] = &service.Result{Status: http.StatusOK, Recipe: &recipe.Recipe{ID: u, UserID: userID, Method: "json-ld"}}
	}
	return out, nil
}

type fakeStore struct {
	recipes map[string]*recipe.Recipe
	err     error
}

func (f *fakeStore) Get(_ context.Context, id, userID string) (*recipe.Recipe, error) {
	r, ok := f.recipes[id]
	if !ok || r.UserID != userID {
		return nil, store.ErrNotFound
	}
	return r, nil
}

func (f *fakeStore) ListByUser(_ context.Context, userID string, _ bool) ([]recipe.Recipe, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []recipe.Recipe
	for _, r := range f.recipes {
		if r.UserID == userID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeStore) SetFavorite(_ context.Context, id, userID string, fav bool) error {
	r, ok := f.recipes[id]
	if !ok || r.UserID != userID {
		return store.ErrNotFound
	}
	r.IsFavorite = fav
	return nil
}

func (f *fakeStore) Delete(_ context.Context, id, userID string) error {
	r, ok := f.recipes[id]
	if !ok || r.UserID != userID {
		return store.ErrNotFound
	}
	delete(f.recipes, id)
	return nil
}

var pasta = &recipe.Recipe{
	ID:           "r1",
	UserID:       "u1",
	Title:        "Pasta",
	Ingredients:  []string{"2 cups pasta"},
	Instructions: []string{"Boil it."},
	Servings:     2,
	Method:       "json-ld",
	Confidence:   0.85,
	SourceType:   "general-website",
}

func attempts() *extractor.Outcome {
	return &extractor.Outcome{Attempts: []extractor.Attempt{
		{Method: "schema-org", Error: &extractor.AttemptError{Name: "NotRecipeError", Message: "no recipe found on page", Stack: "chain"}},
		{Method: "json-ld", Success: true, Confidence: 0.85, Data: map[string]any{"title": "Pasta"}},
	}}
}

func newTestRouter(ex *fakeExtractor, b *fakeBatch, s *fakeStore) http.Handler {
	h := NewRecipeHandler(ex, b, s, []string{"schema-org", "json-ld", "heuristic"})
	return NewRouter(h, time.Minute, http.NotFoundHandler())
}

func do(t *testing.T, h http.Handler, method, target, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec, out
}

func TestExtractSuccess(t *testing.T) {
	ex := &fakeExtractor{res: &service.Result{Status: http.StatusOK, Recipe: pasta, Outcome: attempts()}}
	h := newTestRouter(ex, &fakeBatch{}, &fakeStore{})

	rec, out := do(t, h, http.MethodPost, "/extract", `{"url":"https://example.com/recipe","userId":"u1"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "success", out["status"])
	assert.Equal(t, "json-ld", out["method"])
	assert.Equal(t, 0.85, out["confidence"])
	assert.Equal(t, "general-website", out["source"])
	assert.Equal(t, "Pasta", out["data"].(map[string]any)["title"])
	assert.NotContains(t, out, "extractionResults")
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "u1", ex.last.UserID)
	assert.False(t, ex.last.Debug)
}

func TestExtractDebugIncludesDiagnostics(t *testing.T) {
	ex := &fakeExtractor{res: &service.Result{Status: http.StatusOK, Recipe: pasta, Outcome: attempts()}}
	h := newTestRouter(ex, &fakeBatch{}, &fakeStore{})

	_, out := do(t, h, http.MethodPost, "/recipe-extractor?debug=true", `{"url":"https://example.com/recipe","userId":"u1"}`)

	assert.True(t, ex.last.Debug)
	results := out["extractionResults"].([]any)
	require.Len(t, results, 2)
	first := results[0].(map[string]any)
	assert.Equal(t, "chain", first["error"].(map[string]any)["stack"])
}

func TestExtractUnprocessableAlwaysHasDiagnostics(t *testing.T) {
	outcome := &extractor.Outcome{Attempts: []extractor.Attempt{
		{Method: "schema-org", Error: &extractor.AttemptError{Name: "NotRecipeError", Message: "x", Stack: "s"}},
		{Method: "json-ld", Error: &extractor.AttemptError{Name: "NotRecipeError", Message: "x"}},
		{Method: "heuristic", Error: &extractor.AttemptError{Name: "NotRecipeError", Message: "x"}},
	}}
	ex := &fakeExtractor{res: &service.Result{
		Status: http.StatusUnprocessableEntity, Outcome: outcome,
		Message: "Could not extract a recipe from this URL", Suggestion: service.Suggestion,
	}}
	h := newTestRouter(ex, &fakeBatch{}, &fakeStore{})

	rec, out := do(t, h, http.MethodPost, "/extract", `{"url":"https://example.com/about","userId":"u1"}`)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "error", out["status"])
	assert.Equal(t, service.Suggestion, out["suggestion"])
	assert.NotContains(t, out, "data")
	results := out["extractionResults"].([]any)
	require.Len(t, results, 3)
	assert.NotContains(t, results[0].(map[string]any)["error"], "stack", "stacks only in debug mode")
}

func TestExtractServerErrorDebug(t *testing.T) {
	ex := &fakeExtractor{res: &service.Result{
		Status: http.StatusInternalServerError, Outcome: attempts(),
		Message: service.ErrPersistence.Error(), Err: errors.Join(service.ErrPersistence, errors.New("disk full")),
	}}
	h := newTestRouter(ex, &fakeBatch{}, &fakeStore{})

	rec, out := do(t, h, http.MethodPost, "/extract", `{"url":"https://example.com/recipe","userId":"u1","debug":true}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Len(t, out["extractionResults"], 2)
	assert.Equal(t, "PersistenceError", out["error"].(map[string]any)["name"])

	_, out = do(t, h, http.MethodPost, "/extract", `{"url":"https://example.com/recipe","userId":"u1"}`)
	assert.NotContains(t, out, "error")
}

func TestExtractBadBody(t *testing.T) {
	h := newTestRouter(&fakeExtractor{}, &fakeBatch{}, &fakeStore{})
	rec, out := do(t, h, http.MethodPost, "/extract", `{"url":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "error", out["status"])
}

func TestPreflight(t *testing.T) {
	h := newTestRouter(&fakeExtractor{}, &fakeBatch{}, &fakeStore{})
	rec, _ := do(t, h, http.MethodOptions, "/extract", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "content-type")
}

func TestBatch(t *testing.T) {
	h := newTestRouter(&fakeExtractor{}, &fakeBatch{}, &fakeStore{})

	rec, out := do(t, h, http.MethodPost, "/extract/batch", `{"urls":["https://a.example/1","https://a.example/bad"],"userId":"u1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	details := out["request_details"].(map[string]any)
	assert.EqualValues(t, 2, details["urls_requested"])
	assert.EqualValues(t, 1, details["urls_succeeded"])
	results := out["results"].([]any)
	assert.EqualValues(t, 422, results[1].(map[string]any)["httpStatus"])

	rec, _ = do(t, h, http.MethodPost, "/extract/batch", `{"urls":["https://a.example/1"]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	h = newTestRouter(&fakeExtractor{}, &fakeBatch{err: worker.ErrBatchTooLarge}, &fakeStore{})
	rec, _ = do(t, h, http.MethodPost, "/extract/batch", `{"urls":["https://a.example/1"],"userId":"u1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestClassify(t *testing.T) {
	h := newTestRouter(&fakeExtractor{}, &fakeBatch{}, &fakeStore{})

	rec, out := do(t, h, http.MethodGet, "/classify?url=https://www.instagram.com/p/abc", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "instagram", out["sourceType"])
	assert.Equal(t, true, out["isValid"])

	rec, _ = do(t, h, http.MethodGet, "/classify", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRecipeEndpoints(t *testing.T) {
	r := *pasta
	s := &fakeStore{recipes: map[string]*recipe.Recipe{"r1": &r}}
	h := newTestRouter(&fakeExtractor{}, &fakeBatch{}, s)

	rec, out := do(t, h, http.MethodGet, "/recipes?userId=u1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, out["data"], 1)

	rec, _ = do(t, h, http.MethodGet, "/recipes", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, out = do(t, h, http.MethodGet, "/recipes/r1?userId=u1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Pasta", out["data"].(map[string]any)["title"])

	rec, _ = do(t, h, http.MethodGet, "/recipes/r1?userId=u2", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, out = do(t, h, http.MethodGet, "/recipes/r1", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code, "recipes are only readable by their owner")
	assert.Equal(t, "userId is required", out["message"])
	assert.NotContains(t, out, "data")

	rec, _ = do(t, h, http.MethodGet, "/recipes/r1/scaled?servings=4", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec, _ = do(t, h, http.MethodGet, "/recipes/r1/scaled?servings=4&userId=u2", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, out = do(t, h, http.MethodGet, "/recipes/r1/scaled?servings=4&userId=u1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	data := out["data"].(map[string]any)
	assert.EqualValues(t, 4, data["servings"])
	assert.Equal(t, []any{"4 cups pasta"}, data["ingredients"])

	rec, _ = do(t, h, http.MethodGet, "/recipes/r1/scaled?servings=0&userId=u1", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, h, http.MethodPatch, "/recipes/r1/favorite", `{"userId":"u1","isFavorite":true}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, s.recipes["r1"].IsFavorite)

	rec, _ = do(t, h, http.MethodDelete, "/recipes/r1?userId=u2", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec, _ = do(t, h, http.MethodDelete, "/recipes/r1?userId=u1", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, s.recipes)
}

func TestRecipeStoreFailure(t *testing.T) {
	h := newTestRouter(&fakeExtractor{}, &fakeBatch{}, &fakeStore{err: errors.New("db down")})
	rec, out := do(t, h, http.MethodGet, "/recipes?userId=u1", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Failed to access saved recipes", out["message"])
}

func TestHealthGzip(t *testing.T) {
	h := newTestRouter(&fakeExtractor{}, &fakeBatch{}, &fakeStore{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))
	zr, err := gzip.NewReader(rec.Body)
	require.NoError(t, err)
	body, err := io.ReadAll(zr)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, "healthy", out["status"])
	assert.Len(t, out["strategies"], 3)
}

func TestExtractUnprocessableWithoutOutcome(t *testing.T) {
	ex := &fakeExtractor{res: &service.Result{
		Status: http.StatusUnprocessableEntity, Message: "Could not extract a recipe from this URL", Suggestion: service.Suggestion,
	}}
	h := newTestRouter(ex, &fakeBatch{}, &fakeStore{})

	rec, out := do(t, h, http.MethodPost, "/extract", `{"url":"https://example.com/about","userId":"u1"}`)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), `"extractionResults":[]`)
	require.Contains(t, out, "extractionResults")
	assert.Empty(t, out["extractionResults"])
}

func TestMetricsScrapeIsEncodedOnce(t *testing.T) {
	h := NewRouter(NewRecipeHandler(&fakeExtractor{}, &fakeBatch{}, &fakeStore{}, nil), time.Minute, metrics.Handler())

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))
	zr, err := gzip.NewReader(rec.Body)
	require.NoError(t, err)
	body, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Contains(t, string(body), "# HELP")
}

func TestGzipLeavesEncodedBodiesAlone(t *testing.T) {
	h := gzipMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "br")
		_, _ = w.Write([]byte("already encoded"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip, br")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "br", rec.Header().Get("Content-Encoding"))
	assert.Equal(t, "already encoded", rec.Body.String())
}
