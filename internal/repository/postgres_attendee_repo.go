package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/takumi/kaigihub/internal/model"
)

// PostgresAttendeeRepo はPostgreSQLを使用した参加者リポジトリ。
type PostgresAttendeeRepo struct {
	db *sql.DB
}

// NewPostgresAttendeeRepo はPostgresAttendeeRepoを生成する。
func NewPostgresAttendeeRepo(db *sql.DB) *PostgresAttendeeRepo {
	return &PostgresAttendeeRepo{db: db}
}

// FindByID は指定IDの参加者を取得する。見つからない場合はnilを返す。
func (r *PostgresAttendeeRepo) FindByID(ctx context.Context, id string) (*model.Attendee, error) {
	attendee := &model.Attendee{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, created_at, updated_at FROM attendees WHERE id = $1`,
		id,
	).Scan(&attendee.ID, &attendee.CreatedAt, &attendee.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("参加者の取得に失敗しました: %w", err)
	}
	return attendee, nil
}

// CreateWithSession は参加者と認証セッションを同一トランザクションで作成する。
// デバイス登録で不整合（参加者のみ存在、セッションなし）を残さないための措置。
func (r *PostgresAttendeeRepo) CreateWithSession(ctx context.Context, attendee *model.Attendee, session *model.AuthSession) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("トランザクションの開始に失敗しました: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO attendees (id, created_at, updated_at) VALUES ($1, $2, $3)`,
		attendee.ID, attendee.CreatedAt, attendee.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("参加者の作成に失敗しました: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO auth_sessions (id, attendee_id, expires_at, created_at)
		 VALUES ($1, $2, $3, $4)`,
		session.ID, session.AttendeeID, session.ExpiresAt, session.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("認証セッションの作成に失敗しました: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("参加者登録のコミットに失敗しました: %w", err)
	}
	return nil
}

// DeleteByID は指定IDの参加者を削除する。
// auth_sessions、profiles、bookmarksはCASCADE削除される。
func (r *PostgresAttendeeRepo) DeleteByID(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM attendees WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("参加者の削除に失敗しました: %w", err)
	}
	return nil
}

// compile-time interface check
var _ AttendeeRepository = (*PostgresAttendeeRepo)(nil)
