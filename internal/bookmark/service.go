// Package bookmark は参加者のブックマーク操作のドメインロジックを提供する。
package bookmark

import (
	"context"
	"fmt"

	"github.com/takumi/kaigihub/internal/model"
	"github.com/takumi/kaigihub/internal/repository"
)

// Service はブックマークのサービス層。
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

// Toggle は指定セッションのブックマーク状態を反転し、反転後の状態を返す。
// 追加時のみセッションの存在を検証する。削除は未知のIDに対しても冪等に成功し、
// スケジュール差し替えで消えた項目の残留ブックマークを外せるようにする。
func (s *Service) Toggle(ctx context.Context, attendeeID string, sessionID model.TimetableItemID) (bool, error) {
	bookmarks, err := s.bookmarkRepo.ListByAttendee(ctx, attendeeID)
	if err != nil {
		return false, fmt.Errorf("ブックマークの読み込みに失敗しました: %w", err)
	}

	if _, ok := bookmarks[sessionID]; ok {
		if err := s.bookmarkRepo.Remove(ctx, attendeeID, sessionID); err != nil {
			return false, err
		}
		return false, nil
	}

	item, err := s.scheduleRepo.FindByID(ctx, sessionID)
	if err != nil {
		return false, fmt.Errorf("セッションの確認に失敗しました: %w", err)
	}
	if item == nil {
		return false, model.NewSessionNotFoundError(sessionID)
	}

	if err := s.bookmarkRepo.Add(ctx, attendeeID, sessionID); err != nil {
		return false, err
	}
	return true, nil
}

// List は参加者のブックマーク済み項目を元の時刻順のまま返す。
// 現在のスケジュールに存在しない残留ブックマークは結果に含まれない。
func (s *Service) List(ctx context.Context, attendeeID string) ([]model.TimetableItemWithFavorite, error) {
	items, err := s.scheduleRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("タイムテーブルの読み込みに失敗しました: %w", err)
	}
	bookmarks, err := s.bookmarkRepo.ListByAttendee(ctx, attendeeID)
	if err != nil {
		return nil, fmt.Errorf("ブックマークの読み込みに失敗しました: %w", err)
	}

	timetable := model.NewTimetable(items, bookmarks)
	filtered := timetable.Filtered(model.Filters{FilterFavorite: true})
	return filtered.Contents(), nil
}
