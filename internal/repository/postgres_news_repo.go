package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/takumi/kaigihub/internal/model"
)

// PostgresNewsRepo はPostgreSQLを使用したお知らせリポジトリ。
type PostgresNewsRepo struct {
	db *sql.DB
}

// NewPostgresNewsRepo はPostgresNewsRepoを生成する。
func NewPostgresNewsRepo(db *sql.DB) *PostgresNewsRepo {
	return &PostgresNewsRepo{db: db}
}

// ListRecent は公開日時降順でお知らせを最大limit件取得する。
// published_atがNULLの記事は末尾に回る。
func (r *PostgresNewsRepo) ListRecent(ctx context.Context, limit int) ([]model.NewsItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, guid_or_link, title, link, summary, published_at, fetched_at, created_at, updated_at
		 FROM news_items
		 ORDER BY published_at DESC NULLS LAST, created_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("お知らせの取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var items []model.NewsItem
	for rows.Next() {
		item, err := scanNewsItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("お知らせの走査に失敗しました: %w", err)
	}
	return items, nil
}

// FindByGuidOrLink はguid_or_linkでお知らせを検索する。見つからない場合はnilを返す。
func (r *PostgresNewsRepo) FindByGuidOrLink(ctx context.Context, guidOrLink string) (*model.NewsItem, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, guid_or_link, title, link, summary, published_at, fetched_at, created_at, updated_at
		 FROM news_items WHERE guid_or_link = $1`,
		guidOrLink,
	)

	item, err := scanNewsItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

// Upsert はguid_or_linkをキーにお知らせを冪等にUPSERTする。
// 既存記事はタイトル・リンク・サマリー・公開日時を上書きし、履歴は保持しない。
func (r *PostgresNewsRepo) Upsert(ctx context.Context, item *model.NewsItem) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO news_items (id, guid_or_link, title, link, summary, published_at, fetched_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (guid_or_link) DO UPDATE SET
		     title = EXCLUDED.title,
		     link = EXCLUDED.link,
		     summary = EXCLUDED.summary,
		     published_at = EXCLUDED.published_at,
		     fetched_at = EXCLUDED.fetched_at,
		     updated_at = EXCLUDED.updated_at`,
		item.ID, item.GuidOrLink, item.Title, item.Link, item.Summary,
		item.PublishedAt, item.FetchedAt, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("お知らせの保存に失敗しました: %w", err)
	}
	return nil
}

func scanNewsItem(row interface{ Scan(dest ...any) error }) (*model.NewsItem, error) {
	item := &model.NewsItem{}
	var publishedAt sql.NullTime

	err := row.Scan(
		&item.ID, &item.GuidOrLink, &item.Title, &item.Link, &item.Summary,
		&publishedAt, &item.FetchedAt, &item.CreatedAt, &item.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("お知らせの読み取りに失敗しました: %w", err)
	}

	if publishedAt.Valid {
		item.PublishedAt = &publishedAt.Time
	}
	return item, nil
}

// compile-time interface check
var _ NewsRepository = (*PostgresNewsRepo)(nil)
