package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/takumi/kaigihub/internal/metrics"
	"github.com/takumi/kaigihub/internal/middleware"
	"github.com/takumi/kaigihub/internal/model"
)

// BookmarkServiceInterface はブックマークハンドラーが必要とするサービスインターフェース。
type BookmarkServiceInterface interface {
	// Toggle はブックマークの有無を切り替え、切り替え後の状態を返す。
	Toggle(ctx context.Context, attendeeID string, sessionID model.TimetableItemID) (bool, error)
	// List はブックマーク済み項目を開始時刻昇順で返す。
	List(ctx context.Context, attendeeID string) ([]model.TimetableItemWithFavorite, error)
}

// BookmarkHandler はブックマーク管理のHTTPハンドラー。
type BookmarkHandler struct {
	service BookmarkServiceInterface
	metrics metrics.MetricsCollector
}

// NewBookmarkHandler はBookmarkHandlerを生成する。
// collectorがnilの場合はメトリクスを記録しない。
func NewBookmarkHandler(service BookmarkServiceInterface, collector metrics.MetricsCollector) *BookmarkHandler {
	if collector == nil {
		collector = metrics.NopCollector{}
	}
	return &BookmarkHandler{
		service: service,
		metrics: collector,
	}
}

// bookmarkToggleResponse はブックマーク切り替え結果のレスポンス。
type bookmarkToggleResponse struct {
	SessionID  string `json:"session_id"`
	Bookmarked bool   `json:"bookmarked"`
}

// bookmarkListResponse はブックマーク一覧のレスポンス。
type bookmarkListResponse struct {
	Items []timetableItemResponse `json:"items"`
}

// Toggle はセッションのブックマークを切り替える。
// POST /api/sessions/{id}/bookmark
func (h *BookmarkHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	attendeeID, err := middleware.AttendeeIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	sessionID := model.TimetableItemID(chi.URLParam(r, "id"))

	bookmarked, err := h.service.Toggle(r.Context(), attendeeID, sessionID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	h.metrics.RecordBookmarkToggle(bookmarked)

	writeJSON(w, http.StatusOK, bookmarkToggleResponse{
		SessionID:  string(sessionID),
		Bookmarked: bookmarked,
	})
}

// List はブックマーク済みセッション一覧を取得する。
// GET /api/bookmarks
func (h *BookmarkHandler) List(w http.ResponseWriter, r *http.Request) {
	attendeeID, err := middleware.AttendeeIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	items, err := h.service.List(r.Context(), attendeeID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, bookmarkListResponse{
		Items: toTimetableItemResponses(items),
	})
}
