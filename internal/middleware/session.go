// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/takumi/kaigihub/internal/model"
)

// SessionCookieName は認証セッションIDを保持するHTTP Only Cookieの名前。
const SessionCookieName = "attendee_session"

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// attendeeIDContextKey はリクエストコンテキストに参加者IDを格納するためのキー。
var attendeeIDContextKey = contextKey("attendee_id")

// AuthSessionFinder は認証セッションの検索に必要なインターフェース。
// repository.AuthSessionRepositoryの部分集合として定義する。
type AuthSessionFinder interface {
	FindByID(ctx context.Context, id string) (*model.AuthSession, error)
}

// NewSessionMiddleware はHTTP Only Cookieから認証セッションを読み取り、
// 有効性を検証するミドルウェアを返す。
// 認証済み参加者IDをリクエストコンテキストに注入する。
// 未認証リクエストには401 Unauthorizedを返す。
func NewSessionMiddleware(sessionFinder AuthSessionFinder) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			attendeeID, ok := resolveAttendeeID(r, sessionFinder)
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), attendeeIDContextKey, attendeeID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// NewOptionalSessionMiddleware は認証セッションがあれば参加者IDを
// コンテキストに注入し、なければ匿名のままリクエストを通すミドルウェアを返す。
// タイムテーブル等の公開エンドポイントでお気に入りフラグを付与するために使用する。
func NewOptionalSessionMiddleware(sessionFinder AuthSessionFinder) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if attendeeID, ok := resolveAttendeeID(r, sessionFinder); ok {
				ctx := context.WithValue(r.Context(), attendeeIDContextKey, attendeeID)
				r = r.WithContext(ctx)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// resolveAttendeeID はCookieのセッションIDから参加者IDを解決する。
// 期限切れセッションは検索時点でnilになるため未認証として扱う。
func resolveAttendeeID(r *http.Request, sessionFinder AuthSessionFinder) (string, bool) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}

	session, err := sessionFinder.FindByID(r.Context(), cookie.Value)
	if err != nil {
		slog.Error("認証セッションの検索に失敗しました",
			slog.String("error", err.Error()),
		)
		return "", false
	}
	if session == nil {
		return "", false
	}

	return session.AttendeeID, true
}

// AttendeeIDFromContext はリクエストコンテキストから参加者IDを取得する。
// セッションミドルウェアを通過したリクエストでのみ有効。
func AttendeeIDFromContext(ctx context.Context) (string, error) {
	attendeeID, ok := ctx.Value(attendeeIDContextKey).(string)
	if !ok || attendeeID == "" {
		return "", fmt.Errorf("参加者IDがコンテキストに存在しません")
	}
	return attendeeID, nil
}

// ContextWithAttendeeID はコンテキストに参加者IDを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithAttendeeID(ctx context.Context, attendeeID string) context.Context {
	return context.WithValue(ctx, attendeeIDContextKey, attendeeID)
}
