package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/takumi/kaigihub/internal/model"
)

// PostgresAuthSessionRepo はPostgreSQLを使用した認証セッションリポジトリ。
type PostgresAuthSessionRepo struct {
	db *sql.DB
}

// NewPostgresAuthSessionRepo はPostgresAuthSessionRepoを生成する。
func NewPostgresAuthSessionRepo(db *sql.DB) *PostgresAuthSessionRepo {
	return &PostgresAuthSessionRepo{db: db}
}

// Create は認証セッションを作成する。
func (r *PostgresAuthSessionRepo) Create(ctx context.Context, session *model.AuthSession) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO auth_sessions (id, attendee_id, expires_at, created_at)
		 VALUES ($1, $2, $3, $4)`,
		session.ID, session.AttendeeID, session.ExpiresAt, session.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("認証セッションの作成に失敗しました: %w", err)
	}
	return nil
}

// FindByID は指定IDの認証セッションを取得する。期限切れの場合はnilを返す。
func (r *PostgresAuthSessionRepo) FindByID(ctx context.Context, id string) (*model.AuthSession, error) {
	session := &model.AuthSession{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, attendee_id, expires_at, created_at
		 FROM auth_sessions
		 WHERE id = $1 AND expires_at > now()`,
		id,
	).Scan(&session.ID, &session.AttendeeID, &session.ExpiresAt, &session.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("認証セッションの取得に失敗しました: %w", err)
	}
	return session, nil
}

// DeleteByID は指定IDの認証セッションを削除する。
func (r *PostgresAuthSessionRepo) DeleteByID(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM auth_sessions WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("認証セッションの削除に失敗しました: %w", err)
	}
	return nil
}

// DeleteByAttendeeID は指定参加者の全認証セッションを削除する。
func (r *PostgresAuthSessionRepo) DeleteByAttendeeID(ctx context.Context, attendeeID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM auth_sessions WHERE attendee_id = $1`,
		attendeeID,
	)
	if err != nil {
		return fmt.Errorf("参加者の認証セッションの削除に失敗しました: %w", err)
	}
	return nil
}

// DeleteExpired は期限切れの認証セッションを削除し、削除件数を返す。
func (r *PostgresAuthSessionRepo) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM auth_sessions WHERE expires_at <= now()`,
	)
	if err != nil {
		return 0, fmt.Errorf("期限切れ認証セッションの削除に失敗しました: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("削除件数の取得に失敗しました: %w", err)
	}
	return count, nil
}

// compile-time interface check
var _ AuthSessionRepository = (*PostgresAuthSessionRepo)(nil)
