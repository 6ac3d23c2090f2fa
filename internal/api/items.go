package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mlakar/foundling/internal/embed"
	"github.com/mlakar/foundling/internal/match"
	"github.com/mlakar/foundling/internal/model"
	"github.com/mlakar/foundling/internal/notify"
	"github.com/mlakar/foundling/internal/store"
)

// ItemsHandler handles item endpoints.
type ItemsHandler struct {
	Store        *store.Store
	Engine       *match.Engine
	Embedder     embed.Service // nil when no provider is configured
	Notifier     *notify.Dispatcher
	EmbedTimeout time.Duration
}

type createItemRequest struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	Location     string `json:"location"`
	Category     string `json:"category"`
	Status       string `json:"status"`
	ContactEmail string `json:"contact_email"`
	ContactPhone string `json:"contact_phone"`
}

// List handles GET /api/items.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status != "" && !model.ValidStatus(status) {
		jsonError(w, http.StatusBadRequest, "invalid status")
		return
	}

	items, err := h.Engine.List(r.Context(), r.URL.Query().Get("q"), status)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list items")
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// Create handles POST /api/items.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req createItemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(req.Title) == "" {
		jsonError(w, http.StatusBadRequest, "title required")
		return
	}
	if req.Status != "" && !model.ValidStatus(req.Status) {
		jsonError(w, http.StatusBadRequest, "invalid status")
		return
	}

	draft := &model.ItemDraft{
		Title:        req.Title,
		Description:  req.Description,
		Location:     req.Location,
		Category:     req.Category,
		Status:       req.Status,
		OwnerID:      &claims.UserID,
		ContactEmail: req.ContactEmail,
		ContactPhone: req.ContactPhone,
	}
	draft.Embedding = h.embedDraft(r.Context(), draft)

	item, err := h.Store.CreateItem(r.Context(), draft)
	if err == store.ErrTitleRequired {
		jsonError(w, http.StatusBadRequest, "title required")
		return
	}
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to create item")
		return
	}

	h.Notifier.Dispatch(item, notify.EventReported)
	jsonResponse(w, http.StatusCreated, item)
}

// embedDraft computes the draft's embedding on a best-effort basis. A
// provider failure or timeout is absorbed: the item is stored without a
// vector and stays out of similarity search.
func (h *ItemsHandler) embedDraft(ctx context.Context, draft *model.ItemDraft) []float32 {
	if h.Embedder == nil {
		return nil
	}

	embedCtx, cancel := context.WithTimeout(ctx, h.EmbedTimeout)
	defer cancel()

	vector, err := h.Embedder.Embed(embedCtx, draft.EmbeddingText())
	if err != nil {
		slog.Warn("embedding failed, storing item without vector", "error", err)
		return nil
	}
	return vector
}

// MarkFound handles POST /api/items/{id}/found.
func (h *ItemsHandler) MarkFound(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	item, err := h.Store.MarkFound(r.Context(), id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to mark item found")
		return
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}

	h.Notifier.Dispatch(item, notify.EventFound)
	jsonResponse(w, http.StatusOK, item)
}

// Similar handles GET /api/items/similar.
func (h *ItemsHandler) Similar(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		jsonError(w, http.StatusBadRequest, "query required")
		return
	}

	status := r.URL.Query().Get("status")
	if status != "" && !model.ValidStatus(status) {
		jsonError(w, http.StatusBadRequest, "invalid status")
		return
	}

	results, err := h.Engine.Similar(r.Context(), query, status)
	if errors.Is(err, match.ErrUnavailable) {
		jsonError(w, http.StatusBadGateway, "similarity search unavailable")
		return
	}
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to search items")
		return
	}

	if results == nil {
		results = []model.ScoredItem{}
	}
	jsonResponse(w, http.StatusOK, results)
}
