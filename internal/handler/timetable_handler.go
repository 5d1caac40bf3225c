package handler

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/takumi/kaigihub/internal/middleware"
	"github.com/takumi/kaigihub/internal/model"
)

// TimetableServiceInterface はタイムテーブルハンドラーが必要とするサービスインターフェース。
type TimetableServiceInterface interface {
	// GetTimetable はフィルタ適用済みのタイムテーブルを返す。
	GetTimetable(ctx context.Context, attendeeID string, filters model.Filters) (model.Timetable, error)
	// GetDayTimetable は開催日の項目を開始時刻グループ単位で返す。
	GetDayTimetable(ctx context.Context, attendeeID string, day model.ConferenceDay) ([]model.TimetableTimeGroup, error)
	// GetSession は項目詳細をお気に入りフラグ付きで返す。
	GetSession(ctx context.Context, attendeeID string, id model.TimetableItemID) (*model.TimetableItemWithFavorite, error)
}

// TimetableHandler はタイムテーブル閲覧のHTTPハンドラー。
type TimetableHandler struct {
	service TimetableServiceInterface
}

// NewTimetableHandler はTimetableHandlerを生成する。
func NewTimetableHandler(service TimetableServiceInterface) *TimetableHandler {
	return &TimetableHandler{service: service}
}

// timetableResponse はタイムテーブル一覧のレスポンス。
type timetableResponse struct {
	Items []timetableItemResponse `json:"items"`
}

// daysResponse は開催日タブのレスポンス。
type daysResponse struct {
	Days     []string `json:"days"`
	Selected string   `json:"selected"`
}

// dayTimetableResponse は日別タイムテーブルのレスポンス。
type dayTimetableResponse struct {
	Day    string              `json:"day"`
	Groups []timeGroupResponse `json:"groups"`
}

// GetTimetable はフィルタ適用済みタイムテーブルを取得する。
// GET /api/timetable?day=day1&category=1&session_type=NORMAL&language=JAPANESE&bookmarked=true&q=compose
// 各フィルタパラメータは繰り返し指定でき、同一次元内はOR、次元間はANDで評価される。
func (h *TimetableHandler) GetTimetable(w http.ResponseWriter, r *http.Request) {
	// 匿名リクエストも許可（お気に入りフラグなしで返す）
	attendeeID, _ := middleware.AttendeeIDFromContext(r.Context())

	filters, err := parseFilters(r.URL.Query())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	timetable, err := h.service.GetTimetable(r.Context(), attendeeID, filters)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, timetableResponse{
		Items: toTimetableItemResponses(timetable.Contents()),
	})
}

// GetDays はUIタブとして表示する開催日と初期選択日を返す。
// GET /api/timetable/days
func (h *TimetableHandler) GetDays(w http.ResponseWriter, r *http.Request) {
	visible := model.VisibleDays()
	days := make([]string, len(visible))
	for i, d := range visible {
		days[i] = string(d)
	}

	writeJSON(w, http.StatusOK, daysResponse{
		Days:     days,
		Selected: string(model.InitialSelectedDay(time.Now())),
	})
}

// GetDayTimetable は開催日の項目を開始時刻グループ単位で取得する。
// GET /api/timetable/day/{day}
func (h *TimetableHandler) GetDayTimetable(w http.ResponseWriter, r *http.Request) {
	attendeeID, _ := middleware.AttendeeIDFromContext(r.Context())

	dayParam := chi.URLParam(r, "day")
	day, ok := model.ParseConferenceDay(dayParam)
	if !ok {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidDayError(dayParam))
		return
	}

	groups, err := h.service.GetDayTimetable(r.Context(), attendeeID, day)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dayTimetableResponse{
		Day:    string(day),
		Groups: toTimeGroupResponses(groups),
	})
}

// GetSession はセッション詳細を取得する。
// GET /api/sessions/{id}
func (h *TimetableHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	attendeeID, _ := middleware.AttendeeIDFromContext(r.Context())

	sessionID := model.TimetableItemID(chi.URLParam(r, "id"))

	item, err := h.service.GetSession(r.Context(), attendeeID, sessionID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toTimetableItemResponse(*item))
}

// parseFilters はクエリパラメータを多次元フィルタに変換する。
// 無効な値はそのフィルタ次元ごとエラーとして扱う。
func parseFilters(query url.Values) (model.Filters, error) {
	var filters model.Filters

	for _, v := range query["day"] {
		day, ok := model.ParseConferenceDay(v)
		if !ok {
			return model.Filters{}, model.NewInvalidDayError(v)
		}
		filters.Days = append(filters.Days, day)
	}

	for _, v := range query["category"] {
		id, err := strconv.Atoi(v)
		if err != nil {
			return model.Filters{}, model.NewInvalidFilterError("カテゴリIDは整数で指定してください: " + v)
		}
		filters.Categories = append(filters.Categories, id)
	}

	for _, v := range query["session_type"] {
		st, ok := parseSessionType(v)
		if !ok {
			return model.Filters{}, model.NewInvalidFilterError("未知のセッション種別です: " + v)
		}
		filters.SessionTypes = append(filters.SessionTypes, st)
	}

	for _, v := range query["language"] {
		lang, ok := parseDisplayLanguage(v)
		if !ok {
			return model.Filters{}, model.NewInvalidFilterError("未知の表示言語です: " + v)
		}
		filters.Languages = append(filters.Languages, lang)
	}

	if v := query.Get("bookmarked"); v != "" {
		bookmarked, err := strconv.ParseBool(v)
		if err != nil {
			return model.Filters{}, model.NewInvalidFilterError("bookmarkedはtrue/falseで指定してください: " + v)
		}
		filters.FilterFavorite = bookmarked
	}

	filters.SearchWord = strings.TrimSpace(query.Get("q"))

	return filters, nil
}

// parseSessionType は文字列表現からセッション種別を解決する。
func parseSessionType(s string) (model.TimetableSessionType, bool) {
	switch model.TimetableSessionType(s) {
	case model.SessionTypeNormal, model.SessionTypeWelcomeTalk, model.SessionTypeLunch,
		model.SessionTypeBreak, model.SessionTypeOfficialParty, model.SessionTypeClosing:
		return model.TimetableSessionType(s), true
	}
	return "", false
}

// parseDisplayLanguage は文字列表現から表示言語を解決する。
func parseDisplayLanguage(s string) (model.DisplayLanguage, bool) {
	switch model.DisplayLanguage(s) {
	case model.DisplayLanguageJapanese, model.DisplayLanguageEnglish, model.DisplayLanguageMixed:
		return model.DisplayLanguage(s), true
	}
	return "", false
}
