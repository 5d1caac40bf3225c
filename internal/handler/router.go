package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/takumi/kaigihub/internal/metrics"
	"github.com/takumi/kaigihub/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	SessionFinder     middleware.AuthSessionFinder
	CORSAllowedOrigin string
	CSRF              middleware.CSRFConfig
	RateLimiter       *middleware.RateLimiter

	// 認証・プロフィール
	AuthService    AuthServiceInterface
	AuthConfig     AuthHandlerConfig
	ProfileService ProfileServiceInterface

	// タイムテーブル・ブックマーク
	TimetableService TimetableServiceInterface
	BookmarkService  BookmarkServiceInterface

	// イベントマップ・名簿・お知らせ
	EventLister     EventListerInterface
	DirectoryLister DirectoryListerInterface
	NewsLister      NewsListerInterface

	// メトリクス（nil可）
	Metrics metrics.MetricsCollector
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Logging → Recovery → SecurityHeaders → CORS → CSRF → (Optional)Session → RateLimit(General)
//
// タイムテーブル・イベントマップ・名簿・お知らせは匿名でも閲覧でき、
// 認証済みの場合のみお気に入りフラグが付与される。
// ブックマーク・プロフィールは認証必須のグループに配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewLoggingMiddleware(slog.Default()))
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewCSRFMiddleware(deps.CSRF))

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig)
	profileHandler := NewProfileHandler(deps.ProfileService)
	timetableHandler := NewTimetableHandler(deps.TimetableService)
	bookmarkHandler := NewBookmarkHandler(deps.BookmarkService, deps.Metrics)
	infoHandler := NewInfoHandler(deps.EventLister, deps.DirectoryLister, deps.NewsLister)

	// --- 認証ルート ---
	r.Route("/auth", func(r chi.Router) {
		// POST /auth/device - デバイス登録（登録専用レート制限を追加）
		r.With(deps.RateLimiter.DeviceRegistrationMiddleware()).Post("/device", authHandler.RegisterDevice)
		r.Get("/me", authHandler.Me)
		r.Post("/logout", authHandler.Logout)
	})

	// --- 公開ルート（匿名可、セッションがあればお気に入りフラグ付き） ---
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewOptionalSessionMiddleware(deps.SessionFinder))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Route("/api/timetable", func(r chi.Router) {
			r.Get("/", timetableHandler.GetTimetable)
			r.Get("/days", timetableHandler.GetDays)
			r.Get("/day/{day}", timetableHandler.GetDayTimetable)
		})

		r.Get("/api/sessions/{id}", timetableHandler.GetSession)

		r.Get("/api/events", infoHandler.ListEvents)
		r.Get("/api/contributors", infoHandler.ListContributors)
		r.Get("/api/staff", infoHandler.ListStaff)
		r.Get("/api/sponsors", infoHandler.ListSponsors)
		r.Get("/api/news", infoHandler.ListNews)
	})

	// --- 認証必須ルート ---
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.SessionFinder))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Post("/api/sessions/{id}/bookmark", bookmarkHandler.Toggle)
		r.Get("/api/bookmarks", bookmarkHandler.List)

		r.Route("/api/profile", func(r chi.Router) {
			r.Get("/", profileHandler.GetProfile)
			r.Put("/", profileHandler.UpdateProfile)
		})
	})

	// ヘルスチェック
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	return r
}
