package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/takumi/kaigihub/internal/model"
)

// PostgresScheduleRepo はPostgreSQLを使用したタイムテーブルリポジトリ。
type PostgresScheduleRepo struct {
	db *sql.DB
}

// NewPostgresScheduleRepo はPostgresScheduleRepoを生成する。
func NewPostgresScheduleRepo(db *sql.DB) *PostgresScheduleRepo {
	return &PostgresScheduleRepo{db: db}
}

const sessionSelectColumns = `
	s.id, s.kind, s.title_ja, s.title_en, s.starts_at, s.ends_at,
	s.session_type, s.target_audience, s.lang_of_speaker, s.interpretation_target,
	s.video_url, s.slide_url, s.description_ja, s.description_en,
	s.message_ja, s.message_en,
	r.id, r.name_ja, r.name_en, r.room_type, r.sort,
	c.id, c.title_ja, c.title_en`

// ListAll は全タイムテーブル項目を開始時刻昇順で取得する。
func (r *PostgresScheduleRepo) ListAll(ctx context.Context) ([]model.TimetableItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+sessionSelectColumns+`
		 FROM sessions s
		 INNER JOIN rooms r ON s.room_id = r.id
		 INNER JOIN categories c ON s.category_id = c.id
		 ORDER BY s.starts_at ASC, s.id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("タイムテーブル項目の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var items []model.TimetableItem
	for rows.Next() {
		item, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("タイムテーブル項目の走査に失敗しました: %w", err)
	}

	if err := r.attachSpeakers(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

// FindByID は指定IDの項目を取得する。見つからない場合はnilを返す。
func (r *PostgresScheduleRepo) FindByID(ctx context.Context, id model.TimetableItemID) (*model.TimetableItem, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+sessionSelectColumns+`
		 FROM sessions s
		 INNER JOIN rooms r ON s.room_id = r.id
		 INNER JOIN categories c ON s.category_id = c.id
		 WHERE s.id = $1`,
		string(id),
	)

	item, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	items := []model.TimetableItem{*item}
	if err := r.attachSpeakers(ctx, items); err != nil {
		return nil, err
	}
	return &items[0], nil
}

// ReplaceAll は全項目を同一トランザクションで差し替える。
// セッション・スピーカーは削除して再投入する。ルーム・カテゴリは
// イベントテーブルからも参照されるため、削除せずUPSERTする。
func (r *PostgresScheduleRepo) ReplaceAll(ctx context.Context, items []model.TimetableItem) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("トランザクションの開始に失敗しました: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		`DELETE FROM session_speakers`,
		`DELETE FROM sessions`,
		`DELETE FROM speakers`,
	} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("既存スケジュールの削除に失敗しました: %w", err)
		}
	}

	if err := upsertRooms(ctx, tx, items); err != nil {
		return err
	}
	if err := upsertCategories(ctx, tx, items); err != nil {
		return err
	}
	if err := insertSpeakers(ctx, tx, items); err != nil {
		return err
	}

	for _, item := range items {
		var messageJa, messageEn sql.NullString
		if item.Message != nil {
			messageJa = sql.NullString{String: item.Message.JaTitle, Valid: true}
			messageEn = sql.NullString{String: item.Message.EnTitle, Valid: true}
		}

		_, err := tx.ExecContext(ctx,
			`INSERT INTO sessions (
			     id, kind, title_ja, title_en, starts_at, ends_at,
			     category_id, session_type, room_id, target_audience,
			     lang_of_speaker, interpretation_target, video_url, slide_url,
			     description_ja, description_en, message_ja, message_en
			 ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
			string(item.ID), string(item.Kind), item.Title.JaTitle, item.Title.EnTitle,
			item.StartsAt, item.EndsAt,
			item.Category.ID, string(item.SessionType), item.Room.ID, item.TargetAudience,
			item.Language.LangOfSpeaker, item.Language.IsInterpretationTarget,
			item.Asset.VideoURL, item.Asset.SlideURL,
			item.Description.JaTitle, item.Description.EnTitle,
			messageJa, messageEn,
		)
		if err != nil {
			return fmt.Errorf("セッションの登録に失敗しました: %w", err)
		}

		for pos, speaker := range item.Speakers {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO session_speakers (session_id, speaker_id, position)
				 VALUES ($1, $2, $3)`,
				string(item.ID), speaker.ID, pos,
			)
			if err != nil {
				return fmt.Errorf("セッションとスピーカーの関連付けに失敗しました: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("スケジュール差し替えのコミットに失敗しました: %w", err)
	}
	return nil
}

func upsertRooms(ctx context.Context, tx *sql.Tx, items []model.TimetableItem) error {
	seen := make(map[int]struct{})
	for _, item := range items {
		room := item.Room
		if _, ok := seen[room.ID]; ok {
			continue
		}
		seen[room.ID] = struct{}{}

		_, err := tx.ExecContext(ctx,
			`INSERT INTO rooms (id, name_ja, name_en, room_type, sort)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (id) DO UPDATE SET
			     name_ja = EXCLUDED.name_ja,
			     name_en = EXCLUDED.name_en,
			     room_type = EXCLUDED.room_type,
			     sort = EXCLUDED.sort`,
			room.ID, room.Name.JaTitle, room.Name.EnTitle, string(room.Type), room.Sort,
		)
		if err != nil {
			return fmt.Errorf("ルームの登録に失敗しました: %w", err)
		}
	}
	return nil
}

func upsertCategories(ctx context.Context, tx *sql.Tx, items []model.TimetableItem) error {
	seen := make(map[int]struct{})
	for _, item := range items {
		category := item.Category
		if _, ok := seen[category.ID]; ok {
			continue
		}
		seen[category.ID] = struct{}{}

		_, err := tx.ExecContext(ctx,
			`INSERT INTO categories (id, title_ja, title_en)
			 VALUES ($1, $2, $3)
			 ON CONFLICT (id) DO UPDATE SET
			     title_ja = EXCLUDED.title_ja,
			     title_en = EXCLUDED.title_en`,
			category.ID, category.Title.JaTitle, category.Title.EnTitle,
		)
		if err != nil {
			return fmt.Errorf("カテゴリの登録に失敗しました: %w", err)
		}
	}
	return nil
}

func insertSpeakers(ctx context.Context, tx *sql.Tx, items []model.TimetableItem) error {
	seen := make(map[string]struct{})
	for _, item := range items {
		for _, speaker := range item.Speakers {
			if _, ok := seen[speaker.ID]; ok {
				continue
			}
			seen[speaker.ID] = struct{}{}

			_, err := tx.ExecContext(ctx,
				`INSERT INTO speakers (id, name, icon_url, bio, tag_line)
				 VALUES ($1, $2, $3, $4, $5)`,
				speaker.ID, speaker.Name, speaker.IconURL, speaker.Bio, speaker.TagLine,
			)
			if err != nil {
				return fmt.Errorf("スピーカーの登録に失敗しました: %w", err)
			}
		}
	}
	return nil
}

// attachSpeakers は各項目にスピーカーをposition昇順で付与する。
func (r *PostgresScheduleRepo) attachSpeakers(ctx context.Context, items []model.TimetableItem) error {
	if len(items) == 0 {
		return nil
	}

	index := make(map[model.TimetableItemID]*model.TimetableItem, len(items))
	for i := range items {
		index[items[i].ID] = &items[i]
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT ss.session_id, sp.id, sp.name, sp.icon_url, sp.bio, sp.tag_line
		 FROM session_speakers ss
		 INNER JOIN speakers sp ON ss.speaker_id = sp.id
		 ORDER BY ss.session_id, ss.position ASC`,
	)
	if err != nil {
		return fmt.Errorf("スピーカーの取得に失敗しました: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var sessionID string
		var speaker model.Speaker
		if err := rows.Scan(
			&sessionID, &speaker.ID, &speaker.Name,
			&speaker.IconURL, &speaker.Bio, &speaker.TagLine,
		); err != nil {
			return fmt.Errorf("スピーカーの読み取りに失敗しました: %w", err)
		}
		if item, ok := index[model.TimetableItemID(sessionID)]; ok {
			item.Speakers = append(item.Speakers, speaker)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("スピーカーの走査に失敗しました: %w", err)
	}
	return nil
}

// scanSession はsessionSelectColumnsの並びで1行をTimetableItemに読み取る。
func scanSession(row interface{ Scan(dest ...any) error }) (*model.TimetableItem, error) {
	item := &model.TimetableItem{}
	var id, kind, sessionType, roomType string
	var messageJa, messageEn sql.NullString

	err := row.Scan(
		&id, &kind, &item.Title.JaTitle, &item.Title.EnTitle,
		&item.StartsAt, &item.EndsAt,
		&sessionType, &item.TargetAudience,
		&item.Language.LangOfSpeaker, &item.Language.IsInterpretationTarget,
		&item.Asset.VideoURL, &item.Asset.SlideURL,
		&item.Description.JaTitle, &item.Description.EnTitle,
		&messageJa, &messageEn,
		&item.Room.ID, &item.Room.Name.JaTitle, &item.Room.Name.EnTitle, &roomType, &item.Room.Sort,
		&item.Category.ID, &item.Category.Title.JaTitle, &item.Category.Title.EnTitle,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("タイムテーブル項目の読み取りに失敗しました: %w", err)
	}

	item.ID = model.TimetableItemID(id)
	item.Kind = model.ItemKind(kind)
	item.SessionType = model.TimetableSessionType(sessionType)
	item.Room.Type = model.RoomType(roomType)
	if messageJa.Valid || messageEn.Valid {
		item.Message = &model.MultiLangText{JaTitle: messageJa.String, EnTitle: messageEn.String}
	}
	return item, nil
}

// compile-time interface check
var _ ScheduleRepository = (*PostgresScheduleRepo)(nil)
