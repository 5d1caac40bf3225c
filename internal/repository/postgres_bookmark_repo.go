package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/takumi/kaigihub/internal/model"
)

// PostgresBookmarkRepo はPostgreSQLを使用したブックマークリポジトリ。
type PostgresBookmarkRepo struct {
	db *sql.DB
}

// NewPostgresBookmarkRepo はPostgresBookmarkRepoを生成する。
func NewPostgresBookmarkRepo(db *sql.DB) *PostgresBookmarkRepo {
	return &PostgresBookmarkRepo{db: db}
}

// ListByAttendee は参加者のブックマーク済みセッションID集合を返す。
// セッションテーブルに存在しない項目を指すブックマークもそのまま返し、
// 読み取り側（Timetable）が無視する。
func (r *PostgresBookmarkRepo) ListByAttendee(ctx context.Context, attendeeID string) (map[model.TimetableItemID]struct{}, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT session_id FROM bookmarks WHERE attendee_id = $1`,
		attendeeID,
	)
	if err != nil {
		return nil, fmt.Errorf("ブックマークの取得に失敗しました: %w", err)
	}
	defer rows.Close()

	bookmarks := make(map[model.TimetableItemID]struct{})
	for rows.Next() {
		var sessionID string
		if err := rows.Scan(&sessionID); err != nil {
			return nil, fmt.Errorf("ブックマークの読み取りに失敗しました: %w", err)
		}
		bookmarks[model.TimetableItemID(sessionID)] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ブックマークの走査に失敗しました: %w", err)
	}
	return bookmarks, nil
}

// Add はブックマークを冪等に追加する。
// UNIQUE(attendee_id, session_id)制約のON CONFLICT DO NOTHINGで重複を吸収する。
func (r *PostgresBookmarkRepo) Add(ctx context.Context, attendeeID string, sessionID model.TimetableItemID) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO bookmarks (id, attendee_id, session_id)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (attendee_id, session_id) DO NOTHING`,
		uuid.New().String(), attendeeID, string(sessionID),
	)
	if err != nil {
		return fmt.Errorf("ブックマークの追加に失敗しました: %w", err)
	}
	return nil
}

// Remove はブックマークを冪等に削除する。
func (r *PostgresBookmarkRepo) Remove(ctx context.Context, attendeeID string, sessionID model.TimetableItemID) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM bookmarks WHERE attendee_id = $1 AND session_id = $2`,
		attendeeID, string(sessionID),
	)
	if err != nil {
		return fmt.Errorf("ブックマークの削除に失敗しました: %w", err)
	}
	return nil
}

// DeleteByAttendee は参加者の全ブックマークを削除する。
func (r *PostgresBookmarkRepo) DeleteByAttendee(ctx context.Context, attendeeID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM bookmarks WHERE attendee_id = $1`,
		attendeeID,
	)
	if err != nil {
		return fmt.Errorf("参加者のブックマークの削除に失敗しました: %w", err)
	}
	return nil
}

// DeleteDangling はセッションテーブルに存在しない項目を指すブックマークを削除する。
// スケジュール差し替えで消えた項目のブックマークを回収するクリーンアップ用。
func (r *PostgresBookmarkRepo) DeleteDangling(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM bookmarks
		 WHERE session_id NOT IN (SELECT id FROM sessions)`,
	)
	if err != nil {
		return 0, fmt.Errorf("孤立ブックマークの削除に失敗しました: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("削除件数の取得に失敗しました: %w", err)
	}
	return count, nil
}

// compile-time interface check
var _ BookmarkRepository = (*PostgresBookmarkRepo)(nil)
