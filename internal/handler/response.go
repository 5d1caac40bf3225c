package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/takumi/kaigihub/internal/model"
)

// apiErrorResponse はAPIエラーレスポンスのJSON表現。
type apiErrorResponse struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(apiErrorResponse{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

// writeUnauthorized は認証エラーの統一レスポンスを書き込む。
func writeUnauthorized(w http.ResponseWriter) {
	writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		statusCode := mapAPIErrorToHTTPStatus(apiErr)
		writeAPIErrorResponse(w, statusCode, apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	writeAPIErrorResponse(w, http.StatusInternalServerError, &model.APIError{
		Code:     "INTERNAL_ERROR",
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	})
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeSessionNotFound, model.ErrCodeAttendeeNotFound, model.ErrCodeProfileNotFound:
		return http.StatusNotFound
	case model.ErrCodeInvalidDay, model.ErrCodeInvalidFilter, model.ErrCodeInvalidProfile, model.ErrCodeInvalidURL:
		return http.StatusBadRequest
	case model.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case model.ErrCodeSSRFBlocked:
		return http.StatusForbidden
	case model.ErrCodeFetchFailed:
		return http.StatusBadGateway
	case model.ErrCodeParseFailed:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// --- 共通レスポンス型 ---

// multiLangTextResponse は日英対訳テキストのJSON表現。
type multiLangTextResponse struct {
	Ja string `json:"ja"`
	En string `json:"en"`
}

func toMultiLangText(t model.MultiLangText) multiLangTextResponse {
	return multiLangTextResponse{Ja: t.JaTitle, En: t.EnTitle}
}

// roomResponse はルームのJSON表現。
type roomResponse struct {
	ID   int                   `json:"id"`
	Name multiLangTextResponse `json:"name"`
	Type string                `json:"type"`
	Sort int                   `json:"sort"`
}

// categoryResponse はカテゴリのJSON表現。
type categoryResponse struct {
	ID    int                   `json:"id"`
	Title multiLangTextResponse `json:"title"`
}

// speakerResponse はスピーカーのJSON表現。
type speakerResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	IconURL string `json:"icon_url"`
	Bio     string `json:"bio"`
	TagLine string `json:"tag_line"`
}

// languageResponse はセッション言語のJSON表現。
type languageResponse struct {
	LangOfSpeaker          string `json:"lang_of_speaker"`
	IsInterpretationTarget bool   `json:"is_interpretation_target"`
	DisplayLanguage        string `json:"display_language"`
}

// assetResponse はセッション資料リンクのJSON表現。
type assetResponse struct {
	VideoURL string `json:"video_url"`
	SlideURL string `json:"slide_url"`
}

// timetableItemResponse はタイムテーブル項目のJSON表現。
// お気に入りフラグを含む。
type timetableItemResponse struct {
	ID               string                 `json:"id"`
	Kind             string                 `json:"kind"`
	Title            multiLangTextResponse  `json:"title"`
	StartsAt         time.Time              `json:"starts_at"`
	EndsAt           time.Time              `json:"ends_at"`
	StartsTimeString string                 `json:"starts_time_string"`
	EndsTimeString   string                 `json:"ends_time_string"`
	Day              string                 `json:"day,omitempty"`
	Category         categoryResponse       `json:"category"`
	SessionType      string                 `json:"session_type"`
	Room             roomResponse           `json:"room"`
	TargetAudience   string                 `json:"target_audience"`
	Language         languageResponse       `json:"language"`
	Asset            assetResponse          `json:"asset"`
	Speakers         []speakerResponse      `json:"speakers"`
	Description      multiLangTextResponse  `json:"description"`
	Message          *multiLangTextResponse `json:"message,omitempty"`
	IsFavorited      bool                   `json:"is_favorited"`
}

func toTimetableItemResponse(item model.TimetableItemWithFavorite) timetableItemResponse {
	speakers := make([]speakerResponse, len(item.Speakers))
	for i, s := range item.Speakers {
		speakers[i] = speakerResponse{
			ID:      s.ID,
			Name:    s.Name,
			IconURL: s.IconURL,
			Bio:     s.Bio,
			TagLine: s.TagLine,
		}
	}

	var message *multiLangTextResponse
	if item.Message != nil {
		m := toMultiLangText(*item.Message)
		message = &m
	}

	var day string
	if d, ok := item.Day(); ok {
		day = string(d)
	}

	return timetableItemResponse{
		ID:               string(item.ID),
		Kind:             string(item.Kind),
		Title:            toMultiLangText(item.Title),
		StartsAt:         item.StartsAt,
		EndsAt:           item.EndsAt,
		StartsTimeString: item.StartsTimeString(),
		EndsTimeString:   item.EndsTimeString(),
		Day:              day,
		Category: categoryResponse{
			ID:    item.Category.ID,
			Title: toMultiLangText(item.Category.Title),
		},
		SessionType: string(item.SessionType),
		Room: roomResponse{
			ID:   item.Room.ID,
			Name: toMultiLangText(item.Room.Name),
			Type: string(item.Room.Type),
			Sort: item.Room.Sort,
		},
		TargetAudience: item.TargetAudience,
		Language: languageResponse{
			LangOfSpeaker:          item.Language.LangOfSpeaker,
			IsInterpretationTarget: item.Language.IsInterpretationTarget,
			DisplayLanguage:        string(item.Language.DisplayLanguage()),
		},
		Asset: assetResponse{
			VideoURL: item.Asset.VideoURL,
			SlideURL: item.Asset.SlideURL,
		},
		Speakers:    speakers,
		Description: toMultiLangText(item.Description),
		Message:     message,
		IsFavorited: item.IsFavorited,
	}
}

func toTimetableItemResponses(items []model.TimetableItemWithFavorite) []timetableItemResponse {
	responses := make([]timetableItemResponse, len(items))
	for i, item := range items {
		responses[i] = toTimetableItemResponse(item)
	}
	return responses
}

// timeGroupResponse は同一開始時刻グループのJSON表現。
type timeGroupResponse struct {
	StartsTimeString string                  `json:"starts_time_string"`
	EndsTimeString   string                  `json:"ends_time_string"`
	Items            []timetableItemResponse `json:"items"`
}

func toTimeGroupResponses(groups []model.TimetableTimeGroup) []timeGroupResponse {
	responses := make([]timeGroupResponse, len(groups))
	for i, g := range groups {
		responses[i] = timeGroupResponse{
			StartsTimeString: g.StartsTimeString,
			EndsTimeString:   g.EndsTimeString,
			Items:            toTimetableItemResponses(g.Items),
		}
	}
	return responses
}

// profileResponse はプロフィールカードのJSON表現。
type profileResponse struct {
	NickName   string `json:"nick_name"`
	Occupation string `json:"occupation"`
	Link       string `json:"link"`
	ImagePath  string `json:"image_path"`
	Theme      string `json:"theme"`
}

func toProfileResponse(p *model.Profile) profileResponse {
	return profileResponse{
		NickName:   p.NickName,
		Occupation: p.Occupation,
		Link:       p.Link,
		ImagePath:  p.ImagePath,
		Theme:      string(p.Theme),
	}
}
