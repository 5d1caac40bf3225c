// Package timetable はタイムテーブルの組み立てと照会のドメインロジックを提供する。
package timetable

import (
	"context"
	"fmt"

	"github.com/takumi/kaigihub/internal/model"
	"github.com/takumi/kaigihub/internal/repository"
)

// Service はタイムテーブルのサービス層。
// 項目コレクションとブックマーク集合を集約し、フィルタ・日別・グループ化の
// 派生ビューを提供する。
type Service struct {
	scheduleRepo repository.ScheduleRepository
	bookmarkRepo repository.BookmarkRepository
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(scheduleRepo repository.ScheduleRepository, bookmarkRepo repository.BookmarkRepository) *Service {
	return &Service{
		scheduleRepo: scheduleRepo,
		bookmarkRepo: bookmarkRepo,
	}
}

// Load は全項目と参加者のブックマーク集合からTimetableを組み立てる。
// attendeeIDが空の場合（未認証）はブックマーク集合を空として扱う。
func (s *Service) Load(ctx context.Context, attendeeID string) (model.Timetable, error) {
	items, err := s.scheduleRepo.ListAll(ctx)
	if err != nil {
		return model.Timetable{}, fmt.Errorf("タイムテーブルの読み込みに失敗しました: %w", err)
	}

	var bookmarks map[model.TimetableItemID]struct{}
	if attendeeID != "" {
		bookmarks, err = s.bookmarkRepo.ListByAttendee(ctx, attendeeID)
		if err != nil {
			return model.Timetable{}, fmt.Errorf("ブックマークの読み込みに失敗しました: %w", err)
		}
	}

	return model.NewTimetable(items, bookmarks), nil
}

// GetTimetable はフィルタ適用済みのTimetableを返す。
func (s *Service) GetTimetable(ctx context.Context, attendeeID string, filters model.Filters) (model.Timetable, error) {
	timetable, err := s.Load(ctx, attendeeID)
	if err != nil {
		return model.Timetable{}, err
	}
	return timetable.Filtered(filters), nil
}

// GetDayTimetable は指定開催日の項目を開始時刻グループに分割して返す。
func (s *Service) GetDayTimetable(ctx context.Context, attendeeID string, day model.ConferenceDay) ([]model.TimetableTimeGroup, error) {
	timetable, err := s.Load(ctx, attendeeID)
	if err != nil {
		return nil, err
	}
	return model.GroupByStartTime(timetable.DayTimetable(day).Contents()), nil
}

// GetSession は指定IDの項目をブックマーク状態付きで返す。
// 見つからない場合はSESSION_NOT_FOUNDエラーを返す。
func (s *Service) GetSession(ctx context.Context, attendeeID string, id model.TimetableItemID) (*model.TimetableItemWithFavorite, error) {
	item, err := s.scheduleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("セッションの取得に失敗しました: %w", err)
	}
	if item == nil {
		return nil, model.NewSessionNotFoundError(id)
	}

	favorited := false
	if attendeeID != "" {
		bookmarks, err := s.bookmarkRepo.ListByAttendee(ctx, attendeeID)
		if err != nil {
			return nil, fmt.Errorf("ブックマークの読み込みに失敗しました: %w", err)
		}
		_, favorited = bookmarks[id]
	}

	return &model.TimetableItemWithFavorite{
		TimetableItem: *item,
		IsFavorited:   favorited,
	}, nil
}
