package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/takumi/kaigihub/internal/model"
)

// PostgresDirectoryRepo はPostgreSQLを使用した名簿リポジトリ。
// コントリビューター・スタッフ・スポンサーの3名簿を扱う。
type PostgresDirectoryRepo struct {
	db *sql.DB
}

// NewPostgresDirectoryRepo はPostgresDirectoryRepoを生成する。
func NewPostgresDirectoryRepo(db *sql.DB) *PostgresDirectoryRepo {
	return &PostgresDirectoryRepo{db: db}
}

// ListContributors は全コントリビューターをID昇順で取得する。
func (r *PostgresDirectoryRepo) ListContributors(ctx context.Context) ([]model.Contributor, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, username, icon_url, profile_url FROM contributors ORDER BY id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("コントリビューターの取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var contributors []model.Contributor
	for rows.Next() {
		var c model.Contributor
		if err := rows.Scan(&c.ID, &c.Username, &c.IconURL, &c.ProfileURL); err != nil {
			return nil, fmt.Errorf("コントリビューターの読み取りに失敗しました: %w", err)
		}
		contributors = append(contributors, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("コントリビューターの走査に失敗しました: %w", err)
	}
	return contributors, nil
}

// ReplaceContributors は全コントリビューターを同一トランザクションで差し替える。
func (r *PostgresDirectoryRepo) ReplaceContributors(ctx context.Context, contributors []model.Contributor) error {
	return r.replace(ctx, "contributors", func(tx *sql.Tx) error {
		for _, c := range contributors {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO contributors (id, username, icon_url, profile_url)
				 VALUES ($1, $2, $3, $4)`,
				c.ID, c.Username, c.IconURL, c.ProfileURL,
			)
			if err != nil {
				return fmt.Errorf("コントリビューターの登録に失敗しました: %w", err)
			}
		}
		return nil
	})
}

// ListStaff は全スタッフをID昇順で取得する。
func (r *PostgresDirectoryRepo) ListStaff(ctx context.Context) ([]model.Staff, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, username, icon_url, profile_url FROM staff ORDER BY id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("スタッフの取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var staff []model.Staff
	for rows.Next() {
		var s model.Staff
		if err := rows.Scan(&s.ID, &s.Username, &s.IconURL, &s.ProfileURL); err != nil {
			return nil, fmt.Errorf("スタッフの読み取りに失敗しました: %w", err)
		}
		staff = append(staff, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("スタッフの走査に失敗しました: %w", err)
	}
	return staff, nil
}

// ReplaceStaff は全スタッフを同一トランザクションで差し替える。
func (r *PostgresDirectoryRepo) ReplaceStaff(ctx context.Context, staff []model.Staff) error {
	return r.replace(ctx, "staff", func(tx *sql.Tx) error {
		for _, s := range staff {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO staff (id, username, icon_url, profile_url)
				 VALUES ($1, $2, $3, $4)`,
				s.ID, s.Username, s.IconURL, s.ProfileURL,
			)
			if err != nil {
				return fmt.Errorf("スタッフの登録に失敗しました: %w", err)
			}
		}
		return nil
	})
}

// ListSponsors は全スポンサーをプラン（platinum→gold→supporter）・ID昇順で取得する。
func (r *PostgresDirectoryRepo) ListSponsors(ctx context.Context) ([]model.Sponsor, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, logo_url, plan, link
		 FROM sponsors
		 ORDER BY CASE plan
		     WHEN 'platinum' THEN 0
		     WHEN 'gold' THEN 1
		     ELSE 2
		 END ASC, id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("スポンサーの取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var sponsors []model.Sponsor
	for rows.Next() {
		var s model.Sponsor
		var plan string
		if err := rows.Scan(&s.ID, &s.Name, &s.LogoURL, &plan, &s.Link); err != nil {
			return nil, fmt.Errorf("スポンサーの読み取りに失敗しました: %w", err)
		}
		s.Plan = model.SponsorPlan(plan)
		sponsors = append(sponsors, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("スポンサーの走査に失敗しました: %w", err)
	}
	return sponsors, nil
}

// ReplaceSponsors は全スポンサーを同一トランザクションで差し替える。
func (r *PostgresDirectoryRepo) ReplaceSponsors(ctx context.Context, sponsors []model.Sponsor) error {
	return r.replace(ctx, "sponsors", func(tx *sql.Tx) error {
		for _, s := range sponsors {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO sponsors (id, name, logo_url, plan, link)
				 VALUES ($1, $2, $3, $4, $5)`,
				s.ID, s.Name, s.LogoURL, string(s.Plan), s.Link,
			)
			if err != nil {
				return fmt.Errorf("スポンサーの登録に失敗しました: %w", err)
			}
		}
		return nil
	})
}

// replace は指定テーブルを空にしてからinsert関数を実行する共通処理。
func (r *PostgresDirectoryRepo) replace(ctx context.Context, table string, insert func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("トランザクションの開始に失敗しました: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
		return fmt.Errorf("既存名簿の削除に失敗しました: %w", err)
	}
	if err := insert(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("名簿差し替えのコミットに失敗しました: %w", err)
	}
	return nil
}

// compile-time interface check
var _ DirectoryRepository = (*PostgresDirectoryRepo)(nil)
