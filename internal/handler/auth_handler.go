// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"context"
	"net/http"

	"github.com/takumi/kaigihub/internal/middleware"
	"github.com/takumi/kaigihub/internal/model"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	// RegisterDevice は新規参加者と認証セッションを発行する。
	RegisterDevice(ctx context.Context) (*model.Attendee, *model.AuthSession, error)
	// GetCurrentAttendee はセッションIDから現在の参加者を返す。
	GetCurrentAttendee(ctx context.Context, sessionID string) (*model.Attendee, error)
	// Logout は認証セッションを破棄する。
	Logout(ctx context.Context, sessionID string) error
}

// AuthHandlerConfig は認証ハンドラーの設定。
type AuthHandlerConfig struct {
	CookieDomain  string
	CookieSecure  bool
	SessionMaxAge int // セッションCookieの有効期間（秒）
}

// AuthHandler はデバイス登録・認証関連のHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
	config  AuthHandlerConfig
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface, config AuthHandlerConfig) *AuthHandler {
	return &AuthHandler{
		service: service,
		config:  config,
	}
}

// attendeeResponse は参加者情報のJSON表現。
type attendeeResponse struct {
	AttendeeID string `json:"attendee_id"`
}

// RegisterDevice は新規デバイスを登録し、セッションCookieを発行する。
// POST /auth/device
func (h *AuthHandler) RegisterDevice(w http.ResponseWriter, r *http.Request) {
	attendee, session, err := h.service.RegisterDevice(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	h.setSessionCookie(w, session.ID, h.config.SessionMaxAge)

	writeJSON(w, http.StatusCreated, attendeeResponse{
		AttendeeID: attendee.ID,
	})
}

// Me は現在の参加者情報を返す。
// GET /auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(middleware.SessionCookieName)
	if err != nil || cookie.Value == "" {
		writeUnauthorized(w)
		return
	}

	attendee, err := h.service.GetCurrentAttendee(r.Context(), cookie.Value)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, attendeeResponse{
		AttendeeID: attendee.ID,
	})
}

// Logout は認証セッションを破棄し、セッションCookieを削除する。
// POST /auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(middleware.SessionCookieName)
	if err == nil && cookie.Value != "" {
		if err := h.service.Logout(r.Context(), cookie.Value); err != nil {
			handleServiceError(w, err)
			return
		}
	}

	// Cookieを削除
	h.setSessionCookie(w, "", -1)

	w.WriteHeader(http.StatusNoContent)
}

// setSessionCookie はHTTP OnlyのセッションCookieを設定する。
func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    value,
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
