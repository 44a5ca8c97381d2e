// Package api provides the HTTP handlers for the recipe extraction API.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	jsoniter "github.com/json-iterator/go"

	"recipe-extraction-api/internal/classifier"
	"recipe-extraction-api/internal/extractor"
	"recipe-extraction-api/internal/recipe"
	"recipe-extraction-api/internal/service"
	"recipe-extraction-api/internal/store"
	"recipe-extraction-api/internal/worker"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const maxRequestBytes = 1 << 20

// Extractor runs one extraction request.
type Extractor interface {
	Extract(ctx context.Context, req service.Request) *service.Result
}

// BatchRunner fans a batch out over the worker pool.
type BatchRunner interface {
	RunBatch(ctx context.Context, urls []string, userID string, debug bool) ([]*service.Result, error)
}

// RecipeStore reads and updates saved recipes.
type RecipeStore interface {
	Get(ctx context.Context, id, userID string) (*recipe.Recipe, error)
	ListByUser(ctx context.Context, userID string, favoritesOnly bool) ([]recipe.Recipe, error)
	SetFavorite(ctx context.Context, id, userID string, favorite bool) error
	Delete(ctx context.Context, id, userID string) error
}

// ExtractRequestPayload is the body of POST /extract.
type ExtractRequestPayload struct {
	URL    string `json:"url"`
	UserID string `json:"userId"`
	Debug  bool   `json:"debug,omitempty"`
}

// BatchRequestPayload is the body of POST /extract/batch.
type BatchRequestPayload struct {
	URLs   []string `json:"urls"`
	UserID string   `json:"userId"`
	Debug  bool     `json:"debug,omitempty"`
}

// FavoriteRequestPayload is the body of PATCH /recipes/{id}/favorite.
type FavoriteRequestPayload struct {
	UserID     string `json:"userId"`
	IsFavorite bool   `json:"isFavorite"`
}

// ExtractResponsePayload covers every outcome of an extraction.
// ExtractionResults is a pointer so that an empty trail is still written
// out while an absent one is omitted.
type ExtractResponsePayload struct {
	Status            string                  `json:"status"`
	Data              *recipe.Recipe          `json:"data,omitempty"`
	Method            string                  `json:"method,omitempty"`
	Confidence        float64                 `json:"confidence,omitempty"`
	Source            string                  `json:"source,omitempty"`
	Message           string                  `json:"message,omitempty"`
	Suggestion        string                  `json:"suggestion,omitempty"`
	ExtractionResults *[]extractor.Attempt    `json:"extractionResults,omitempty"`
	Error             *extractor.AttemptError `json:"error,omitempty"`
}

// Attempts returns the diagnostic trail, nil when none was sent.
func (p ExtractResponsePayload) Attempts() []extractor.Attempt {
	if p.ExtractionResults == nil {
		return nil
	}
	return *p.ExtractionResults
}

func trail(attempts []extractor.Attempt) *[]extractor.Attempt {
	if attempts == nil {
		attempts = []extractor.Attempt{}
	}
	return &attempts
}

// BatchItemPayload is one URL's result inside a batch response.
type BatchItemPayload struct {
	URL        string `json:"url"`
	HTTPStatus int    `json:"httpStatus"`
	ExtractResponsePayload
}

// BatchResponsePayload is the answer to POST /extract/batch.
type BatchResponsePayload struct {
	Status         string `json:"status"`
	RequestDetails struct {
		URLsRequested int `json:"urls_requested"`
		URLsSucceeded int `json:"urls_succeeded"`
	} `json:"request_details"`
	Results []BatchItemPayload `json:"results"`
}

// RecipeHandler holds dependencies for the recipe endpoints.
type RecipeHandler struct {
	Extractor  Extractor
	Batch      BatchRunner
	Recipes    RecipeStore
	Strategies []string
}

// NewRecipeHandler creates a new RecipeHandler with its dependencies.
func NewRecipeHandler(extractor Extractor, batch BatchRunner, recipes RecipeStore, strategies []string) *RecipeHandler {
	return &RecipeHandler{
		Extractor:  extractor,
		Batch:      batch,
		Recipes:    recipes,
		Strategies: strategies,
	}
}

// HandleExtract serves POST /extract and its /recipe-extractor alias.
func (h *RecipeHandler) HandleExtract(w http.ResponseWriter, r *http.Request) {
	var req ExtractRequestPayload
	if err := decodeBody(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request payload: %v", err))
		return
	}
	debug := req.Debug || queryFlag(r, "debug")

	slog.Info("Handling extract request", "url", req.URL, "user_id", req.UserID, "debug", debug)
	res := h.Extractor.Extract(r.Context(), service.Request{URL: req.URL, UserID: req.UserID, Debug: debug})
	writeJSON(w, res.Status, toPayload(res, debug))
}

// HandleBatch serves POST /extract/batch.
func (h *RecipeHandler) HandleBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequestPayload
	if err := decodeBody(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request payload: %v", err))
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		respondWithError(w, http.StatusBadRequest, "userId is required")
		return
	}
	debug := req.Debug || queryFlag(r, "debug")

	slog.Info("Handling batch extract request", "url_count", len(req.URLs), "user_id", req.UserID)
	results, err := h.Batch.RunBatch(r.Context(), req.URLs, req.UserID, debug)
	switch {
	case errors.Is(err, worker.ErrEmptyBatch), errors.Is(err, worker.ErrBatchTooLarge):
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		slog.Error("Batch extraction failed", "error", err)
		respondWithError(w, http.StatusServiceUnavailable, err.Error())
		return
	}

	resp := BatchResponsePayload{Status: "success", Results: make([]BatchItemPayload, len(results))}
	resp.RequestDetails.URLsRequested = len(req.URLs)
	for i, res := range results {
		resp.Results[i] = BatchItemPayload{URL: req.URLs[i], HTTPStatus: res.Status, ExtractResponsePayload: toPayload(res, debug)}
		if res.Status == http.StatusOK {
			resp.RequestDetails.URLsSucceeded++
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleClassify serves GET /classify?url=.
func (h *RecipeHandler) HandleClassify(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("url")
	if strings.TrimSpace(raw) == "" {
		respondWithError(w, http.StatusBadRequest, "url is required")
		return
	}
	writeJSON(w, http.StatusOK, classifier.Classify(raw))
}

// HandleListRecipes serves GET /recipes?userId=&favorites=true.
func (h *RecipeHandler) HandleListRecipes(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		respondWithError(w, http.StatusBadRequest, "userId is required")
		return
	}
	list, err := h.Recipes.ListByUser(r.Context(), userID, queryFlag(r, "favorites"))
	if err != nil {
		h.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "data": list})
}

// HandleGetRecipe serves GET /recipes/{id}.
func (h *RecipeHandler) HandleGetRecipe(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		respondWithError(w, http.StatusBadRequest, "userId is required")
		return
	}
	rec, err := h.Recipes.Get(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		h.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "data": rec})
}

// HandleScaledRecipe serves GET /recipes/{id}/scaled?userId=&servings=N.
func (h *RecipeHandler) HandleScaledRecipe(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		respondWithError(w, http.StatusBadRequest, "userId is required")
		return
	}
	servings, err := strconv.Atoi(r.URL.Query().Get("servings"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "servings must be a whole number")
		return
	}
	rec, err := h.Recipes.Get(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		h.storeError(w, err)
		return
	}
	scaled, err := rec.Scale(servings)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "data": scaled})
}

// HandleFavorite serves PATCH /recipes/{id}/favorite.
func (h *RecipeHandler) HandleFavorite(w http.ResponseWriter, r *http.Request) {
	var req FavoriteRequestPayload
	if err := decodeBody(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request payload: %v", err))
		return
	}
	if req.UserID == "" {
		respondWithError(w, http.StatusBadRequest, "userId is required")
		return
	}
	id := chi.URLParam(r, "id")
	if err := h.Recipes.SetFavorite(r.Context(), id, req.UserID, req.IsFavorite); err != nil {
		h.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "id": id, "isFavorite": req.IsFavorite})
}

// HandleDeleteRecipe serves DELETE /recipes/{id}?userId=.
func (h *RecipeHandler) HandleDeleteRecipe(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		respondWithError(w, http.StatusBadRequest, "userId is required")
		return
	}
	if err := h.Recipes.Delete(r.Context(), chi.URLParam(r, "id"), userID); err != nil {
		h.storeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleHealth serves GET /health.
func (h *RecipeHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "healthy",
		"timestamp":  time.Now().Format(time.RFC3339),
		"strategies": h.Strategies,
	})
}

func (h *RecipeHandler) storeError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		respondWithError(w, http.StatusNotFound, err.Error())
		return
	}
	slog.Error("Recipe store request failed", "error", err)
	respondWithError(w, http.StatusInternalServerError, "Failed to access saved recipes")
}

// toPayload renders a service result. Diagnostics go out on success only in
// debug mode, and always on failure.
func toPayload(res *service.Result, debug bool) ExtractResponsePayload {
	var attempts []extractor.Attempt
	if res.Outcome != nil {
		o := res.Outcome
		if !debug {
			o = o.WithoutDebug()
		}
		attempts = o.Attempts
	}

	if res.Status == http.StatusOK {
		p := ExtractResponsePayload{
			Status:     "success",
			Data:       res.Recipe,
			Method:     res.Recipe.Method,
			Confidence: res.Recipe.Confidence,
			Source:     res.Recipe.SourceType,
		}
		if debug {
			p.ExtractionResults = trail(attempts)
		}
		return p
	}

	p := ExtractResponsePayload{Status: "error", Message: res.Message, Suggestion: res.Suggestion}
	// The UI renders this trail on 422, so the key is always present there.
	if res.Status == http.StatusUnprocessableEntity || res.Status >= http.StatusInternalServerError {
		p.ExtractionResults = trail(attempts)
	}
	if debug && res.Err != nil && res.Status >= http.StatusInternalServerError {
		p.Error = extractor.DescribeError(res.Err, true)
		if errors.Is(res.Err, service.ErrPersistence) {
			p.Error.Name = "PersistenceError"
		}
	}
	return p
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(v)
}

func queryFlag(r *http.Request, name string) bool {
	b, _ := strconv.ParseBool(r.URL.Query().Get(name))
	return b
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, map[string]string{"status": "error", "message": message})
}
