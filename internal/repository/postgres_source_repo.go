package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/takumi/kaigihub/internal/model"
)

// PostgresSourceRepo はPostgreSQLを使用したリモートソースリポジトリ。
type PostgresSourceRepo struct {
	db *sql.DB
}

// NewPostgresSourceRepo はPostgresSourceRepoを生成する。
func NewPostgresSourceRepo(db *sql.DB) *PostgresSourceRepo {
	return &PostgresSourceRepo{db: db}
}

// Ensure は指定キーのソースを登録する。既に存在する場合はURLのみ更新する。
// 起動時に設定のURLをソーステーブルへ反映するために使う。
func (r *PostgresSourceRepo) Ensure(ctx context.Context, key model.SourceKey, url string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO remote_sources (key, url)
		 VALUES ($1, $2)
		 ON CONFLICT (key) DO UPDATE SET
		     url = EXCLUDED.url,
		     updated_at = now()`,
		string(key), url,
	)
	if err != nil {
		return fmt.Errorf("リモートソースの登録に失敗しました: %w", err)
	}
	return nil
}

// FindByKey は指定キーのソースを取得する。見つからない場合はnilを返す。
func (r *PostgresSourceRepo) FindByKey(ctx context.Context, key model.SourceKey) (*model.RemoteSource, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT key, url, etag, last_modified, fetch_status,
		        consecutive_errors, error_message, next_fetch_at, last_fetched_at, updated_at
		 FROM remote_sources WHERE key = $1`,
		string(key),
	)

	source, err := scanRemoteSource(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return source, nil
}

// ListDueForFetch はフェッチ対象のソースを取得する。
// next_fetch_at <= now() かつ fetch_status = 'active' のソースを
// FOR UPDATE SKIP LOCKEDで排他的に取得する。
func (r *PostgresSourceRepo) ListDueForFetch(ctx context.Context) ([]*model.RemoteSource, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT key, url, etag, last_modified, fetch_status,
		        consecutive_errors, error_message, next_fetch_at, last_fetched_at, updated_at
		 FROM remote_sources
		 WHERE next_fetch_at <= now()
		   AND fetch_status = 'active'
		 ORDER BY next_fetch_at ASC
		 FOR UPDATE SKIP LOCKED`,
	)
	if err != nil {
		return nil, fmt.Errorf("フェッチ対象ソースの取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var sources []*model.RemoteSource
	for rows.Next() {
		source, err := scanRemoteSource(rows)
		if err != nil {
			return nil, err
		}
		sources = append(sources, source)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("フェッチ対象ソースの走査に失敗しました: %w", err)
	}
	return sources, nil
}

// UpdateFetchState はソースのフェッチ状態を更新する。
func (r *PostgresSourceRepo) UpdateFetchState(ctx context.Context, source *model.RemoteSource) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE remote_sources SET
		     etag = $2,
		     last_modified = $3,
		     fetch_status = $4,
		     consecutive_errors = $5,
		     error_message = $6,
		     next_fetch_at = $7,
		     last_fetched_at = $8,
		     updated_at = now()
		 WHERE key = $1`,
		string(source.Key), source.ETag, source.LastModified,
		string(source.FetchStatus), source.ConsecutiveErrors, source.ErrorMessage,
		source.NextFetchAt, source.LastFetchedAt,
	)
	if err != nil {
		return fmt.Errorf("フェッチ状態の更新に失敗しました: %w", err)
	}
	return nil
}

func scanRemoteSource(row interface{ Scan(dest ...any) error }) (*model.RemoteSource, error) {
	source := &model.RemoteSource{}
	var key, fetchStatus string
	var lastFetchedAt sql.NullTime

	err := row.Scan(
		&key, &source.URL, &source.ETag, &source.LastModified, &fetchStatus,
		&source.ConsecutiveErrors, &source.ErrorMessage,
		&source.NextFetchAt, &lastFetchedAt, &source.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("リモートソースの読み取りに失敗しました: %w", err)
	}

	source.Key = model.SourceKey(key)
	source.FetchStatus = model.FetchStatus(fetchStatus)
	if lastFetchedAt.Valid {
		source.LastFetchedAt = &lastFetchedAt.Time
	}
	return source, nil
}

// compile-time interface check
var _ SourceRepository = (*PostgresSourceRepo)(nil)
