// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// ワーカーやサービス層から利用する。
type MetricsCollector interface {
	RecordFetchSuccess(sourceKey string)
	RecordFetchFailure(sourceKey string, reason string)
	RecordParseFailure(sourceKey string)
	RecordHTTPStatus(statusCode int)
	RecordFetchLatency(duration time.Duration)
	RecordSessionsIngested(count int)
	RecordNewsIngested(count int)
	RecordBookmarkToggle(bookmarked bool)
}

// NopCollector は何も記録しないMetricsCollector実装。
// メトリクス収集が不要な構成（テスト等）で使用する。
type NopCollector struct{}

func (NopCollector) RecordFetchSuccess(string)                {}
func (NopCollector) RecordFetchFailure(string, string)        {}
func (NopCollector) RecordParseFailure(string)                {}
func (NopCollector) RecordHTTPStatus(int)                     {}
func (NopCollector) RecordFetchLatency(time.Duration)         {}
func (NopCollector) RecordSessionsIngested(int)               {}
func (NopCollector) RecordNewsIngested(int)                   {}
func (NopCollector) RecordBookmarkToggle(bool)                {}

var _ MetricsCollector = NopCollector{}
var _ MetricsCollector = (*Collector)(nil)

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	fetchSuccess     *prometheus.CounterVec
	fetchFail        *prometheus.CounterVec
	parseFail        *prometheus.CounterVec
	httpStatus       *prometheus.CounterVec
	fetchLatency     prometheus.Histogram
	sessionsIngested prometheus.Counter
	newsIngested     prometheus.Counter
	bookmarkToggles  *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		fetchSuccess: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kaigihub_fetch_success_total",
			Help: "ソースフェッチ成功の合計数",
		}, []string{"source"}),
		fetchFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kaigihub_fetch_fail_total",
			Help: "ソースフェッチ失敗の合計数",
		}, []string{"source"}),
		parseFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kaigihub_parse_fail_total",
			Help: "ソースパース失敗の合計数",
		}, []string{"source"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kaigihub_fetch_http_status_total",
			Help: "フェッチのHTTPステータスコード別レスポンス数",
		}, []string{"status_code"}),
		fetchLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "kaigihub_fetch_latency_seconds",
			Help:    "ソースフェッチのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		sessionsIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kaigihub_sessions_ingested_total",
			Help: "取り込まれたタイムテーブル項目の合計数",
		}),
		newsIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kaigihub_news_ingested_total",
			Help: "取り込まれたお知らせ記事の合計数",
		}),
		bookmarkToggles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kaigihub_bookmark_toggles_total",
			Help: "ブックマークの切り替え操作の合計数",
		}, []string{"action"}),
	}

	reg.MustRegister(
		c.fetchSuccess,
		c.fetchFail,
		c.parseFail,
		c.httpStatus,
		c.fetchLatency,
		c.sessionsIngested,
		c.newsIngested,
		c.bookmarkToggles,
	)

	return c
}

// RecordFetchSuccess はフェッチ成功を記録する。
func (c *Collector) RecordFetchSuccess(sourceKey string) {
	c.fetchSuccess.WithLabelValues(sourceKey).Inc()
}

// RecordFetchFailure はフェッチ失敗を記録する。
func (c *Collector) RecordFetchFailure(sourceKey string, reason string) {
	c.fetchFail.WithLabelValues(sourceKey).Inc()
}

// RecordParseFailure はパース失敗を記録する。
func (c *Collector) RecordParseFailure(sourceKey string) {
	c.parseFail.WithLabelValues(sourceKey).Inc()
}

// RecordHTTPStatus はフェッチのHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordFetchLatency はフェッチのレイテンシを記録する。
func (c *Collector) RecordFetchLatency(duration time.Duration) {
	c.fetchLatency.Observe(duration.Seconds())
}

// RecordSessionsIngested は取り込まれたタイムテーブル項目数を記録する。
func (c *Collector) RecordSessionsIngested(count int) {
	c.sessionsIngested.Add(float64(count))
}

// RecordNewsIngested は取り込まれたお知らせ記事数を記録する。
func (c *Collector) RecordNewsIngested(count int) {
	c.newsIngested.Add(float64(count))
}

// RecordBookmarkToggle はブックマーク切り替え操作を記録する。
func (c *Collector) RecordBookmarkToggle(bookmarked bool) {
	action := "remove"
	if bookmarked {
		action = "add"
	}
	c.bookmarkToggles.WithLabelValues(action).Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
// Prometheusスクレイプに対応する。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}
