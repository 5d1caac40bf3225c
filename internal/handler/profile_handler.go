package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/takumi/kaigihub/internal/attendee"
	"github.com/takumi/kaigihub/internal/middleware"
	"github.com/takumi/kaigihub/internal/model"
)

// ProfileServiceInterface はプロフィールハンドラーが必要とするサービスインターフェース。
type ProfileServiceInterface interface {
	// GetProfile は参加者のプロフィールカードを返す。
	GetProfile(ctx context.Context, attendeeID string) (*model.Profile, error)
	// UpsertProfile はプロフィールカードを検証して保存する。
	UpsertProfile(ctx context.Context, attendeeID string, input attendee.ProfileInput) (*model.Profile, error)
}

// ProfileHandler はプロフィールカードのHTTPハンドラー。
type ProfileHandler struct {
	service ProfileServiceInterface
}

// NewProfileHandler はProfileHandlerを生成する。
func NewProfileHandler(service ProfileServiceInterface) *ProfileHandler {
	return &ProfileHandler{service: service}
}

// profileRequest はプロフィール更新リクエストのボディ。
type profileRequest struct {
	NickName   string `json:"nick_name"`
	Occupation string `json:"occupation"`
	Link       string `json:"link"`
	ImagePath  string `json:"image_path"`
	Theme      string `json:"theme"`
}

// GetProfile はプロフィールカードを取得する。
// GET /api/profile
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	attendeeID, err := middleware.AttendeeIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	profile, err := h.service.GetProfile(r.Context(), attendeeID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toProfileResponse(profile))
}

// UpdateProfile はプロフィールカードを作成または更新する。
// PUT /api/profile
func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	attendeeID, err := middleware.AttendeeIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     "INVALID_REQUEST",
			Message:  "リクエストボディの解析に失敗しました。",
			Category: "validation",
			Action:   "正しいJSON形式でリクエストしてください。",
		})
		return
	}

	profile, err := h.service.UpsertProfile(r.Context(), attendeeID, attendee.ProfileInput{
		NickName:   req.NickName,
		Occupation: req.Occupation,
		Link:       req.Link,
		ImagePath:  req.ImagePath,
		Theme:      model.ProfileCardTheme(req.Theme),
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toProfileResponse(profile))
}
