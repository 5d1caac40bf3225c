// Package model はドメインモデルを定義する。
package model

import "time"

// SourceKey はリモートソースの識別キー。
type SourceKey string

const (
	// SourceKeySchedule はスケジュールJSONのソース。
	SourceKeySchedule SourceKey = "schedule"
	// SourceKeyNews はお知らせフィードのソース。
	SourceKeyNews SourceKey = "news"
)

// FetchStatus はリモートソースのフェッチ状態を表す。
type FetchStatus string

const (
	// FetchStatusActive はアクティブなフェッチ状態。
	FetchStatusActive FetchStatus = "active"
	// FetchStatusStopped は停止されたフェッチ状態。
	FetchStatusStopped FetchStatus = "stopped"
)

// RemoteSource はバックグラウンドでフェッチするリモートソースの状態を表す。
// 条件付きGET用のETag/Last-Modifiedと、バックオフ用の連続エラー回数を保持する。
type RemoteSource struct {
	Key               SourceKey
	URL               string
	ETag              string
	LastModified      string
	FetchStatus       FetchStatus
	ConsecutiveErrors int
	ErrorMessage      string
	NextFetchAt       time.Time
	LastFetchedAt     *time.Time
	UpdatedAt         time.Time
}
