// Package model はドメインモデルを定義する。
package model

import "time"

// NewsItem はカンファレンスのお知らせフィードから取得した記事を表す。
type NewsItem struct {
	ID          string
	GuidOrLink  string
	Title       string
	Link        string
	Summary     string // サニタイズ済み
	PublishedAt *time.Time
	FetchedAt   time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
