package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/takumi/kaigihub/internal/model"
)

// PostgresProfileRepo はPostgreSQLを使用したプロフィールリポジトリ。
type PostgresProfileRepo struct {
	db *sql.DB
}

// NewPostgresProfileRepo はPostgresProfileRepoを生成する。
func NewPostgresProfileRepo(db *sql.DB) *PostgresProfileRepo {
	return &PostgresProfileRepo{db: db}
}

// FindByAttendeeID は参加者のプロフィールを取得する。未作成の場合はnilを返す。
func (r *PostgresProfileRepo) FindByAttendeeID(ctx context.Context, attendeeID string) (*model.Profile, error) {
	profile := &model.Profile{}
	var theme string

	err := r.db.QueryRowContext(ctx,
		`SELECT attendee_id, nick_name, occupation, link, image_path, theme, updated_at
		 FROM profiles WHERE attendee_id = $1`,
		attendeeID,
	).Scan(
		&profile.AttendeeID, &profile.NickName, &profile.Occupation,
		&profile.Link, &profile.ImagePath, &theme, &profile.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("プロフィールの取得に失敗しました: %w", err)
	}

	profile.Theme = model.ProfileCardTheme(theme)
	return profile, nil
}

// Upsert はプロフィールを冪等にUPSERTする。attendee_idが主キー。
func (r *PostgresProfileRepo) Upsert(ctx context.Context, profile *model.Profile) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO profiles (attendee_id, nick_name, occupation, link, image_path, theme, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (attendee_id) DO UPDATE SET
		     nick_name = EXCLUDED.nick_name,
		     occupation = EXCLUDED.occupation,
		     link = EXCLUDED.link,
		     image_path = EXCLUDED.image_path,
		     theme = EXCLUDED.theme,
		     updated_at = EXCLUDED.updated_at`,
		profile.AttendeeID, profile.NickName, profile.Occupation,
		profile.Link, profile.ImagePath, string(profile.Theme), profile.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("プロフィールの保存に失敗しました: %w", err)
	}
	return nil
}

// compile-time interface check
var _ ProfileRepository = (*PostgresProfileRepo)(nil)
