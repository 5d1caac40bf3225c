package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/takumi/kaigihub/internal/model"
)

// PostgresEventRepo はPostgreSQLを使用したイベントマップリポジトリ。
type PostgresEventRepo struct {
	db *sql.DB
}

// NewPostgresEventRepo はPostgresEventRepoを生成する。
func NewPostgresEventRepo(db *sql.DB) *PostgresEventRepo {
	return &PostgresEventRepo{db: db}
}

// ListAll は全イベントをID昇順で取得する。
func (r *PostgresEventRepo) ListAll(ctx context.Context) ([]model.EventMapEvent, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT e.id, e.name_ja, e.name_en,
		        e.description_ja, e.description_en, e.more_details_url,
		        e.message_ja, e.message_en,
		        r.id, r.name_ja, r.name_en, r.room_type, r.sort
		 FROM events e
		 INNER JOIN rooms r ON e.room_id = r.id
		 ORDER BY e.id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("イベントの取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var events []model.EventMapEvent
	for rows.Next() {
		var event model.EventMapEvent
		var roomType string
		var messageJa, messageEn sql.NullString

		if err := rows.Scan(
			&event.ID, &event.Name.JaTitle, &event.Name.EnTitle,
			&event.Description.JaTitle, &event.Description.EnTitle, &event.MoreDetailsURL,
			&messageJa, &messageEn,
			&event.Room.ID, &event.Room.Name.JaTitle, &event.Room.Name.EnTitle, &roomType, &event.Room.Sort,
		); err != nil {
			return nil, fmt.Errorf("イベントの読み取りに失敗しました: %w", err)
		}

		event.Room.Type = model.RoomType(roomType)
		if messageJa.Valid || messageEn.Valid {
			event.Message = &model.MultiLangText{JaTitle: messageJa.String, EnTitle: messageEn.String}
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("イベントの走査に失敗しました: %w", err)
	}
	return events, nil
}

// ReplaceAll は全イベントを同一トランザクションで差し替える。
// 参照先のルームはスケジュール取り込みで登録済みである前提。
func (r *PostgresEventRepo) ReplaceAll(ctx context.Context, events []model.EventMapEvent) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("トランザクションの開始に失敗しました: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM events`); err != nil {
		return fmt.Errorf("既存イベントの削除に失敗しました: %w", err)
	}

	for _, event := range events {
		var messageJa, messageEn sql.NullString
		if event.Message != nil {
			messageJa = sql.NullString{String: event.Message.JaTitle, Valid: true}
			messageEn = sql.NullString{String: event.Message.EnTitle, Valid: true}
		}

		_, err := tx.ExecContext(ctx,
			`INSERT INTO events (id, name_ja, name_en, room_id, description_ja, description_en, more_details_url, message_ja, message_en)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			event.ID, event.Name.JaTitle, event.Name.EnTitle, event.Room.ID,
			event.Description.JaTitle, event.Description.EnTitle, event.MoreDetailsURL,
			messageJa, messageEn,
		)
		if err != nil {
			return fmt.Errorf("イベントの登録に失敗しました: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("イベント差し替えのコミットに失敗しました: %w", err)
	}
	return nil
}

// compile-time interface check
var _ EventRepository = (*PostgresEventRepo)(nil)
