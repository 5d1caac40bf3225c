// Package news はお知らせフィードの取り込みと提供のドメインロジックを提供する。
package news

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mmcdole/gofeed"

	"github.com/takumi/kaigihub/internal/model"
	"github.com/takumi/kaigihub/internal/repository"
	"github.com/takumi/kaigihub/internal/security"
)

// defaultListLimit はお知らせ一覧のデフォルト取得件数。
const defaultListLimit = 50

// Service はお知らせのサービス層。
// RSS/Atomのパース → サニタイズ → UPSERTのフローを統括する。
type Service struct {
	newsRepo  repository.NewsRepository
	sanitizer security.ContentSanitizerService
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(newsRepo repository.NewsRepository, sanitizer security.ContentSanitizerService) *Service {
	return &Service{
		newsRepo:  newsRepo,
		sanitizer: sanitizer,
	}
}

// ListRecent は公開日時降順でお知らせを取得する。
// limitが0以下の場合はデフォルト件数を使う。
func (s *Service) ListRecent(ctx context.Context, limit int) ([]model.NewsItem, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	return s.newsRepo.ListRecent(ctx, limit)
}

// IngestFeed はフィードのバイト列を取り込み、保存件数を返す。
// guid_or_linkで同一性を判定し、既存記事は上書き更新する。
func (s *Service) IngestFeed(ctx context.Context, body []byte) (int, error) {
	parser := gofeed.NewParser()
	parsed, err := parser.ParseString(string(body))
	if err != nil {
		slog.Warn("お知らせフィードのパースに失敗しました", "error", err)
		return 0, model.NewParseFailedError()
	}

	now := time.Now().UTC()
	saved := 0
	for _, entry := range parsed.Items {
		if entry == nil {
			continue
		}

		item := s.convertEntry(entry, now)
		if item == nil {
			continue
		}

		if err := s.newsRepo.Upsert(ctx, item); err != nil {
			return saved, fmt.Errorf("お知らせの保存に失敗しました: %w", err)
		}
		saved++
	}
	return saved, nil
}

// convertEntry はgofeedの記事をNewsItemに変換する。
// GUIDもリンクも持たない記事は同一性を判定できないため破棄する。
func (s *Service) convertEntry(entry *gofeed.Item, now time.Time) *model.NewsItem {
	guidOrLink := entry.GUID
	if guidOrLink == "" {
		guidOrLink = entry.Link
	}
	if guidOrLink == "" {
		slog.Warn("GUIDとリンクを持たないお知らせ記事をスキップします", "title", entry.Title)
		return nil
	}

	link := entry.Link
	if link == "" && (strings.HasPrefix(guidOrLink, "http://") || strings.HasPrefix(guidOrLink, "https://")) {
		link = guidOrLink
	}

	summary := entry.Description
	if summary == "" {
		summary = entry.Content
	}
	if s.sanitizer != nil {
		summary = s.sanitizer.Sanitize(summary)
	}

	// タイトルを持たない記事は本文の抜粋をタイトルとして使う
	title := strings.TrimSpace(entry.Title)
	if title == "" {
		title = plainTextExcerpt(summary, maxDerivedTitleLength)
	}
	if title == "" {
		slog.Warn("タイトルを生成できないお知らせ記事をスキップします", "guid_or_link", guidOrLink)
		return nil
	}

	item := &model.NewsItem{
		ID:         uuid.New().String(),
		GuidOrLink: guidOrLink,
		Title:      title,
		Link:       link,
		Summary:    summary,
		FetchedAt:  now,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if entry.PublishedParsed != nil {
		t := *entry.PublishedParsed
		item.PublishedAt = &t
	} else if entry.UpdatedParsed != nil {
		t := *entry.UpdatedParsed
		item.PublishedAt = &t
	}

	return item
}
