// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/takumi/kaigihub/internal/model"
)

// ScheduleRepository はタイムテーブル項目の永続化インターフェース。
// 項目はスケジュールJSONの取り込み単位でまとめて差し替えられる。
type ScheduleRepository interface {
	// ListAll は全タイムテーブル項目を開始時刻昇順で取得する。
	ListAll(ctx context.Context) ([]model.TimetableItem, error)

	// FindByID は指定IDの項目を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id model.TimetableItemID) (*model.TimetableItem, error)

	// ReplaceAll は全項目を同一トランザクションで差し替える。
	// セッション・スピーカーは削除して再投入し、ルーム・カテゴリは
	// 他テーブルから参照されるためUPSERTで更新する。
	ReplaceAll(ctx context.Context, items []model.TimetableItem) error
}

// BookmarkRepository は参加者ごとのブックマークの永続化インターフェース。
type BookmarkRepository interface {
	// ListByAttendee は参加者のブックマーク済みセッションID集合を返す。
	ListByAttendee(ctx context.Context, attendeeID string) (map[model.TimetableItemID]struct{}, error)

	// Add はブックマークを冪等に追加する。既に存在する場合は何もしない。
	Add(ctx context.Context, attendeeID string, sessionID model.TimetableItemID) error

	// Remove はブックマークを冪等に削除する。存在しない場合は何もしない。
	Remove(ctx context.Context, attendeeID string, sessionID model.TimetableItemID) error

	// DeleteByAttendee は参加者の全ブックマークを削除する。
	DeleteByAttendee(ctx context.Context, attendeeID string) error

	// DeleteDangling はセッションテーブルに存在しない項目を指す
	// ブックマークを削除し、削除件数を返す。
	DeleteDangling(ctx context.Context) (int64, error)
}

// AttendeeRepository は参加者データの永続化インターフェース。
type AttendeeRepository interface {
	// FindByID は指定IDの参加者を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Attendee, error)

	// CreateWithSession は参加者と認証セッションを同一トランザクションで作成する。
	CreateWithSession(ctx context.Context, attendee *model.Attendee, session *model.AuthSession) error

	// DeleteByID は指定IDの参加者を削除する。
	// 関連するauth_sessions、profiles、bookmarksはCASCADE削除される。
	DeleteByID(ctx context.Context, id string) error
}

// AuthSessionRepository は認証セッションの永続化インターフェース。
type AuthSessionRepository interface {
	// Create は認証セッションを作成する。
	Create(ctx context.Context, session *model.AuthSession) error
	// FindByID は指定IDの認証セッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.AuthSession, error)
	// DeleteByID は指定IDの認証セッションを削除する。
	DeleteByID(ctx context.Context, id string) error
	// DeleteByAttendeeID は指定参加者の全認証セッションを削除する。
	DeleteByAttendeeID(ctx context.Context, attendeeID string) error
	// DeleteExpired は期限切れの認証セッションを削除し、削除件数を返す。
	DeleteExpired(ctx context.Context) (int64, error)
}

// ProfileRepository はプロフィールカードの永続化インターフェース。
type ProfileRepository interface {
	// FindByAttendeeID は参加者のプロフィールを取得する。未作成の場合はnilを返す。
	FindByAttendeeID(ctx context.Context, attendeeID string) (*model.Profile, error)

	// Upsert はプロフィールを冪等にUPSERTする。
	Upsert(ctx context.Context, profile *model.Profile) error
}

// EventRepository はイベントマップデータの永続化インターフェース。
type EventRepository interface {
	// ListAll は全イベントをID昇順で取得する。
	ListAll(ctx context.Context) ([]model.EventMapEvent, error)

	// ReplaceAll は全イベントを同一トランザクションで差し替える。
	ReplaceAll(ctx context.Context, events []model.EventMapEvent) error
}

// DirectoryRepository はコントリビューター・スタッフ・スポンサーの
// 名簿データの永続化インターフェース。
type DirectoryRepository interface {
	// ListContributors は全コントリビューターをID昇順で取得する。
	ListContributors(ctx context.Context) ([]model.Contributor, error)
	// ReplaceContributors は全コントリビューターを差し替える。
	ReplaceContributors(ctx context.Context, contributors []model.Contributor) error

	// ListStaff は全スタッフをID昇順で取得する。
	ListStaff(ctx context.Context) ([]model.Staff, error)
	// ReplaceStaff は全スタッフを差し替える。
	ReplaceStaff(ctx context.Context, staff []model.Staff) error

	// ListSponsors は全スポンサーをプラン・ID昇順で取得する。
	ListSponsors(ctx context.Context) ([]model.Sponsor, error)
	// ReplaceSponsors は全スポンサーを差し替える。
	ReplaceSponsors(ctx context.Context, sponsors []model.Sponsor) error
}

// NewsRepository はお知らせ記事の永続化インターフェース。
type NewsRepository interface {
	// ListRecent は公開日時降順でお知らせを最大limit件取得する。
	ListRecent(ctx context.Context, limit int) ([]model.NewsItem, error)

	// FindByGuidOrLink はguid_or_linkでお知らせを検索する。見つからない場合はnilを返す。
	FindByGuidOrLink(ctx context.Context, guidOrLink string) (*model.NewsItem, error)

	// Upsert はguid_or_linkをキーにお知らせを冪等にUPSERTする。
	Upsert(ctx context.Context, item *model.NewsItem) error
}

// SourceRepository はリモートソースのフェッチ状態の永続化インターフェース。
type SourceRepository interface {
	// Ensure は指定キーのソースを登録する。既に存在する場合はURLのみ更新する。
	Ensure(ctx context.Context, key model.SourceKey, url string) error

	// FindByKey は指定キーのソースを取得する。見つからない場合はnilを返す。
	FindByKey(ctx context.Context, key model.SourceKey) (*model.RemoteSource, error)

	// ListDueForFetch はフェッチ対象のソースを取得する。
	// next_fetch_at <= now() かつ fetch_status = 'active' のソースを
	// FOR UPDATE SKIP LOCKEDで排他的に取得する。
	ListDueForFetch(ctx context.Context) ([]*model.RemoteSource, error)

	// UpdateFetchState はソースのフェッチ状態を更新する。
	// fetch_status、consecutive_errors、error_message、next_fetch_at、
	// etag、last_modified、last_fetched_atを更新する。
	UpdateFetchState(ctx context.Context, source *model.RemoteSource) error
}
