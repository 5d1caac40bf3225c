package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/takumi/kaigihub/internal/metrics"
	"github.com/takumi/kaigihub/internal/model"
	"github.com/takumi/kaigihub/internal/repository"
)

// ScheduleIngester はスケジュールJSONの取り込みインターフェース。
type ScheduleIngester interface {
	Ingest(ctx context.Context, body []byte) (int, error)
}

// NewsIngester はお知らせフィードの取り込みインターフェース。
type NewsIngester interface {
	IngestFeed(ctx context.Context, body []byte) (int, error)
}

// SSRFValidator はSSRF検証のインターフェース。
type SSRFValidator interface {
	ValidateURL(rawURL string) error
	NewSafeClient(timeout time.Duration, maxResponseSize int64) *http.Client
}

// Fetcher は個別リモートソースのHTTPフェッチと取り込みを行う。
// ETag/Last-Modifiedを使用した条件付きGET、SSRF検証を実行し、
// ソースの種別に応じてスケジュール/お知らせの取り込みサービスへ委譲する。
type Fetcher struct {
	sourceRepo  repository.SourceRepository
	scheduleSvc ScheduleIngester
	newsSvc     NewsIngester
	ssrfGuard   SSRFValidator
	logger      *slog.Logger
	metrics     metrics.MetricsCollector
	timeout     time.Duration
	maxBodySize int64
	interval    time.Duration
}

// NewFetcher はFetcherの新しいインスタンスを生成する。
// intervalは成功時に次回フェッチまで空ける間隔。
// collectorがnilの場合はメトリクスを記録しない。
func NewFetcher(
	sourceRepo repository.SourceRepository,
	scheduleSvc ScheduleIngester,
	newsSvc NewsIngester,
	ssrfGuard SSRFValidator,
	logger *slog.Logger,
	collector metrics.MetricsCollector,
	timeout time.Duration,
	maxBodySize int64,
	interval time.Duration,
) *Fetcher {
	if collector == nil {
		collector = metrics.NopCollector{}
	}
	return &Fetcher{
		sourceRepo:  sourceRepo,
		scheduleSvc: scheduleSvc,
		newsSvc:     newsSvc,
		ssrfGuard:   ssrfGuard,
		logger:      logger,
		metrics:     collector,
		timeout:     timeout,
		maxBodySize: maxBodySize,
		interval:    interval,
	}
}

// Fetch はソースをフェッチし、結果に応じてソース状態を更新する。
// SourceFetcherServiceインターフェースを実装する。
func (f *Fetcher) Fetch(ctx context.Context, source *model.RemoteSource) error {
	start := time.Now()

	// SSRF検証
	if err := f.ssrfGuard.ValidateURL(source.URL); err != nil {
		f.logger.Error("SSRF検証に失敗しました",
			slog.String("source", string(source.Key)),
			slog.String("url", source.URL),
			slog.String("error", err.Error()),
		)
		ApplyStopSource(source, fmt.Sprintf("SSRF検証失敗: %s", err.Error()))
		f.updateState(ctx, source)
		f.metrics.RecordFetchFailure(string(source.Key), "ssrf_blocked")
		return fmt.Errorf("SSRF検証に失敗: %w", err)
	}

	// HTTPリクエスト構築
	client := f.ssrfGuard.NewSafeClient(f.timeout, f.maxBodySize)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source.URL, nil)
	if err != nil {
		return fmt.Errorf("リクエスト作成に失敗: %w", err)
	}

	req.Header.Set("User-Agent", "KaigiHub/1.0 Conference Companion")
	req.Header.Set("Accept", "application/json, application/rss+xml, application/atom+xml, application/xml, text/xml, */*")

	// 条件付きGET: ETag
	if source.ETag != "" {
		req.Header.Set("If-None-Match", source.ETag)
	}
	// 条件付きGET: Last-Modified
	if source.LastModified != "" {
		req.Header.Set("If-Modified-Since", source.LastModified)
	}

	// HTTPリクエスト実行
	resp, err := client.Do(req)
	if err != nil {
		f.logger.Error("HTTPリクエストに失敗しました",
			slog.String("source", string(source.Key)),
			slog.String("url", source.URL),
			slog.String("error", err.Error()),
		)
		ApplyBackoff(source, fmt.Sprintf("HTTPリクエスト失敗: %s", err.Error()))
		f.updateState(ctx, source)
		f.metrics.RecordFetchFailure(string(source.Key), "http_error")
		return fmt.Errorf("HTTPリクエスト失敗: %w", err)
	}
	defer resp.Body.Close()

	duration := time.Since(start)
	f.metrics.RecordHTTPStatus(resp.StatusCode)
	f.metrics.RecordFetchLatency(duration)

	// HTTPステータスに基づく処理分岐
	switch ClassifyHTTPStatus(resp.StatusCode) {
	case FetchResultNotModified:
		// 304: コンテンツ未変更 - next_fetch_atのみ更新
		f.logger.Info("ソースは未変更です（304）",
			slog.String("source", string(source.Key)),
			slog.Int("http_status", resp.StatusCode),
			slog.Float64("duration_ms", float64(duration.Milliseconds())),
		)
		ApplySuccess(source, f.interval)
		f.metrics.RecordFetchSuccess(string(source.Key))
		return f.sourceRepo.UpdateFetchState(ctx, source)

	case FetchResultStop:
		// 404/410/401/403: フェッチ停止
		reason := fmt.Sprintf("HTTPステータス %d によりフェッチを停止しました", resp.StatusCode)
		f.logger.Warn("ソースフェッチを停止します",
			slog.String("source", string(source.Key)),
			slog.String("url", source.URL),
			slog.Int("http_status", resp.StatusCode),
		)
		ApplyStopSource(source, reason)
		f.metrics.RecordFetchFailure(string(source.Key), "stopped")
		return f.sourceRepo.UpdateFetchState(ctx, source)

	case FetchResultBackoff:
		// 429/5xx: バックオフ
		reason := fmt.Sprintf("HTTPステータス %d によりバックオフを適用しました", resp.StatusCode)
		f.logger.Warn("ソースフェッチにバックオフを適用します",
			slog.String("source", string(source.Key)),
			slog.Int("http_status", resp.StatusCode),
			slog.Int("consecutive_errors", source.ConsecutiveErrors+1),
		)
		ApplyBackoff(source, reason)
		f.metrics.RecordFetchFailure(string(source.Key), "backoff")
		return f.sourceRepo.UpdateFetchState(ctx, source)

	case FetchResultOK:
		// 200: 正常フェッチ - 以下で処理を続行
	default:
		f.logger.Warn("予期しないHTTPステータスコード",
			slog.String("source", string(source.Key)),
			slog.Int("http_status", resp.StatusCode),
		)
		ApplyBackoff(source, fmt.Sprintf("予期しないHTTPステータス: %d", resp.StatusCode))
		return f.sourceRepo.UpdateFetchState(ctx, source)
	}

	// レスポンスボディを読み込み（最大サイズ制限付き）
	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		f.logger.Error("レスポンスボディの読み取りに失敗しました",
			slog.String("source", string(source.Key)),
			slog.String("error", err.Error()),
		)
		ApplyBackoff(source, fmt.Sprintf("レスポンス読み取り失敗: %s", err.Error()))
		return f.sourceRepo.UpdateFetchState(ctx, source)
	}

	// ETag/Last-Modifiedを保存
	if etag := resp.Header.Get("ETag"); etag != "" {
		source.ETag = etag
	}
	if lastMod := resp.Header.Get("Last-Modified"); lastMod != "" {
		source.LastModified = lastMod
	}

	// ソース種別に応じて取り込みサービスへ委譲
	count, err := f.ingest(ctx, source.Key, body)
	if err != nil {
		f.logger.Error("ソースの取り込みに失敗しました",
			slog.String("source", string(source.Key)),
			slog.String("error", err.Error()),
		)
		ApplyParseFailure(source, err.Error())
		f.updateState(ctx, source)
		f.metrics.RecordParseFailure(string(source.Key))
		return nil // 取り込み失敗はフェッチエラーとしない（カウントして継続）
	}

	ApplySuccess(source, f.interval)
	f.metrics.RecordFetchSuccess(string(source.Key))
	f.recordIngested(source.Key, count)
	if err := f.sourceRepo.UpdateFetchState(ctx, source); err != nil {
		f.logger.Error("ソース状態の更新に失敗しました",
			slog.String("source", string(source.Key)),
			slog.String("error", err.Error()),
		)
		return err
	}

	f.logger.Info("ソースフェッチが完了しました",
		slog.String("source", string(source.Key)),
		slog.Int("http_status", resp.StatusCode),
		slog.Int("ingested_count", count),
		slog.Float64("duration_ms", float64(duration.Milliseconds())),
	)

	return nil
}

// ingest はソース種別に応じた取り込みサービスを呼び出す。
func (f *Fetcher) ingest(ctx context.Context, key model.SourceKey, body []byte) (int, error) {
	switch key {
	case model.SourceKeySchedule:
		return f.scheduleSvc.Ingest(ctx, body)
	case model.SourceKeyNews:
		return f.newsSvc.IngestFeed(ctx, body)
	default:
		return 0, fmt.Errorf("未知のソースキーです: %s", key)
	}
}

// recordIngested はソース種別に応じた取り込み件数メトリクスを記録する。
func (f *Fetcher) recordIngested(key model.SourceKey, count int) {
	switch key {
	case model.SourceKeySchedule:
		f.metrics.RecordSessionsIngested(count)
	case model.SourceKeyNews:
		f.metrics.RecordNewsIngested(count)
	}
}

// updateState はソース状態を更新し、失敗はログ出力のみで握りつぶす。
func (f *Fetcher) updateState(ctx context.Context, source *model.RemoteSource) {
	if err := f.sourceRepo.UpdateFetchState(ctx, source); err != nil {
		f.logger.Error("ソース状態の更新に失敗しました",
			slog.String("source", string(source.Key)),
			slog.String("error", err.Error()),
		)
	}
}
