package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/takumi/kaigihub/internal/attendee"
	"github.com/takumi/kaigihub/internal/bookmark"
	"github.com/takumi/kaigihub/internal/config"
	"github.com/takumi/kaigihub/internal/database"
	"github.com/takumi/kaigihub/internal/handler"
	"github.com/takumi/kaigihub/internal/logger"
	"github.com/takumi/kaigihub/internal/metrics"
	"github.com/takumi/kaigihub/internal/middleware"
	"github.com/takumi/kaigihub/internal/model"
	"github.com/takumi/kaigihub/internal/news"
	"github.com/takumi/kaigihub/internal/repository"
	"github.com/takumi/kaigihub/internal/schedule"
	"github.com/takumi/kaigihub/internal/security"
	"github.com/takumi/kaigihub/internal/timetable"
	"github.com/takumi/kaigihub/internal/worker/cleanup"
	fetchpkg "github.com/takumi/kaigihub/internal/worker/fetch"
	"golang.org/x/time/rate"
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("base_url", cfg.BaseURL),
	)

	switch cmd {
	case CommandServe:
		return runServe(cfg)
	case CommandWorker:
		return runWorker(cfg)
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(cfg)
	}
}

// runServe はAPIサーバーモードで起動する。
// DB接続を開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	// 1. DB接続
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established")

	// 2. リポジトリの初期化
	attendeeRepo := repository.NewPostgresAttendeeRepo(db)
	sessionRepo := repository.NewPostgresAuthSessionRepo(db)
	profileRepo := repository.NewPostgresProfileRepo(db)
	scheduleRepo := repository.NewPostgresScheduleRepo(db)
	bookmarkRepo := repository.NewPostgresBookmarkRepo(db)
	newsRepo := repository.NewPostgresNewsRepo(db)
	directoryRepo := repository.NewPostgresDirectoryRepo(db)
	eventRepo := repository.NewPostgresEventRepo(db)

	// 3. シードデータの読み込み（ファイル指定時のみ）
	ctx := context.Background()
	if err := loadSeedData(ctx, cfg, directoryRepo, eventRepo); err != nil {
		return fmt.Errorf("failed to load seed data: %w", err)
	}

	// 4. ドメインサービスの初期化
	attendeeService := attendee.NewService(
		attendeeRepo, sessionRepo, profileRepo,
		attendee.ServiceConfig{SessionMaxAge: cfg.SessionMaxAge},
	)
	timetableService := timetable.NewService(scheduleRepo, bookmarkRepo)
	bookmarkService := bookmark.NewService(scheduleRepo, bookmarkRepo)
	newsService := news.NewService(newsRepo, security.NewContentSanitizer())

	// 5. メトリクスの初期化
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// 6. ルーターの構築
	rateLimiterCfg := middleware.DefaultRateLimiterConfig()
	// configはreq/min単位なのでreq/secに変換する
	rateLimiterCfg.GeneralRate = rate.Limit(float64(cfg.RateLimitGeneral) / 60.0)
	rateLimiterCfg.GeneralBurst = cfg.RateLimitGeneral
	rateLimiterCfg.DeviceRegRate = rate.Limit(float64(cfg.RateLimitDeviceReg) / 60.0)
	rateLimiterCfg.DeviceRegBurst = cfg.RateLimitDeviceReg

	deps := &handler.RouterDeps{
		SessionFinder:     sessionRepo,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		CSRF: middleware.CSRFConfig{
			CookieSecure: cfg.CookieSecure,
			CookieDomain: cfg.CookieDomain,
		},
		RateLimiter: middleware.NewRateLimiter(rateLimiterCfg),

		AuthService: attendeeService,
		AuthConfig: handler.AuthHandlerConfig{
			CookieDomain:  cfg.CookieDomain,
			CookieSecure:  cfg.CookieSecure,
			SessionMaxAge: cfg.SessionMaxAge,
		},
		ProfileService: attendeeService,

		TimetableService: timetableService,
		BookmarkService:  bookmarkService,

		EventLister:     eventRepo,
		DirectoryLister: directoryRepo,
		NewsLister:      newsService,

		Metrics: collector,
	}

	router := handler.NewRouter(deps)

	// 7. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	metricsServer := newMetricsServer(cfg.MetricsPort, registry)

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("metrics server starting",
			slog.String("addr", metricsServer.Addr),
		)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("metrics server listen error", slog.String("error", err.Error()))
		}
	}()

	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down API server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("metrics server shutdown failed", slog.String("error", err.Error()))
	}

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runWorker はワーカーモードで起動する。
// DB接続を開き、フェッチスケジューラとクリーンアップジョブを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとシャットダウンする。
func runWorker(cfg *config.Config) error {
	// 1. DB接続
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established (worker)")

	// 2. リポジトリの初期化
	sourceRepo := repository.NewPostgresSourceRepo(db)
	scheduleRepo := repository.NewPostgresScheduleRepo(db)
	newsRepo := repository.NewPostgresNewsRepo(db)
	sessionRepo := repository.NewPostgresAuthSessionRepo(db)
	bookmarkRepo := repository.NewPostgresBookmarkRepo(db)

	// 3. フェッチ対象ソースの登録
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := sourceRepo.Ensure(ctx, model.SourceKeySchedule, cfg.ScheduleURL); err != nil {
		return fmt.Errorf("failed to register schedule source: %w", err)
	}
	if cfg.NewsFeedURL != "" {
		if err := sourceRepo.Ensure(ctx, model.SourceKeyNews, cfg.NewsFeedURL); err != nil {
			return fmt.Errorf("failed to register news source: %w", err)
		}
	}

	// 4. セキュリティサービスの初期化
	ssrfGuard := security.NewSSRFGuard()
	sanitizer := security.NewContentSanitizer()

	// 5. メトリクスの初期化
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// 6. フェッチャーの初期化
	scheduleService := schedule.NewService(scheduleRepo, sanitizer)
	newsService := news.NewService(newsRepo, sanitizer)
	fetcher := fetchpkg.NewFetcher(
		sourceRepo, scheduleService, newsService, ssrfGuard,
		slog.Default(), collector,
		cfg.FetchTimeout, cfg.FetchMaxSize, cfg.FetchInterval,
	)

	// 7. スケジューラの初期化
	scheduler := fetchpkg.NewScheduler(
		sourceRepo, fetcher, slog.Default(), cfg.FetchMaxConcurrent,
	)

	// 8. クリーンアップジョブの初期化
	cleanupJob := cleanup.NewCleanupJob(sessionRepo, bookmarkRepo, slog.Default())

	// シグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-stop
		slog.Info("shutting down worker...")
		cancel()
	}()

	slog.Info("worker starting",
		slog.Duration("fetch_interval", cfg.FetchInterval),
		slog.Int("max_concurrent", cfg.FetchMaxConcurrent),
	)

	// メトリクスエンドポイントをバックグラウンドで起動
	metricsServer := newMetricsServer(cfg.MetricsPort, registry)
	go func() {
		slog.Info("metrics server starting",
			slog.String("addr", metricsServer.Addr),
		)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("metrics server listen error", slog.String("error", err.Error()))
		}
	}()

	// クリーンアップジョブを日次でバックグラウンド実行
	go func() {
		// 起動直後に1回実行
		if err := cleanupJob.Run(ctx); err != nil {
			slog.Error("cleanup job failed", slog.String("error", err.Error()))
		}

		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := cleanupJob.Run(ctx); err != nil {
					slog.Error("cleanup job failed", slog.String("error", err.Error()))
				}
			}
		}
	}()

	// フェッチスケジューラをメインgoroutineで実行（ブロッキング）
	scheduler.Start(ctx, cfg.FetchInterval)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("metrics server shutdown failed", slog.String("error", err.Error()))
	}

	slog.Info("worker stopped gracefully")
	return nil
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully")
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /healthz エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/healthz", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// newMetricsServer はPrometheusメトリクスを公開するHTTPサーバーを生成する。
func newMetricsServer(port string, gatherer prometheus.Gatherer) *http.Server {
	return &http.Server{
		Addr:         ":" + port,
		Handler:      metrics.SetupMetricsRoute(gatherer),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
}

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}
