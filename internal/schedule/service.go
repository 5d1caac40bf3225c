package schedule

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/takumi/kaigihub/internal/model"
	"github.com/takumi/kaigihub/internal/repository"
	"github.com/takumi/kaigihub/internal/security"
)

// Service はスケジュールJSONの取り込みサービス層。
// パース → ドメインモデル変換 → サニタイズ → 全件差し替えのフローを統括する。
type Service struct {
	scheduleRepo repository.ScheduleRepository
	sanitizer    security.ContentSanitizerService
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(scheduleRepo repository.ScheduleRepository, sanitizer security.ContentSanitizerService) *Service {
	return &Service{
		scheduleRepo: scheduleRepo,
		sanitizer:    sanitizer,
	}
}

// Ingest はスケジュールJSONのバイト列を取り込み、登録件数を返す。
// 保存は全件差し替えで行うため、同一ボディの再取り込みは冪等になる。
func (s *Service) Ingest(ctx context.Context, body []byte) (int, error) {
	resp, err := Parse(body)
	if err != nil {
		slog.Warn("スケジュールJSONのパースに失敗しました", "error", err)
		return 0, model.NewParseFailedError()
	}

	items, err := MapItems(resp)
	if err != nil {
		slog.Warn("スケジュールJSONの変換に失敗しました", "error", err)
		return 0, model.NewParseFailedError()
	}

	s.sanitizeItems(items)

	if err := s.scheduleRepo.ReplaceAll(ctx, items); err != nil {
		return 0, fmt.Errorf("スケジュールの保存に失敗しました: %w", err)
	}

	slog.Info("スケジュールを取り込みました", "sessions_count", len(items))
	return len(items), nil
}

// sanitizeItems は外部由来の自由記述フィールドをサニタイズする。
// タイトル等の短いラベルはそのまま、説明とメッセージのみ対象にする。
func (s *Service) sanitizeItems(items []model.TimetableItem) {
	if s.sanitizer == nil {
		return
	}
	for i := range items {
		items[i].Description.JaTitle = s.sanitizer.Sanitize(items[i].Description.JaTitle)
		items[i].Description.EnTitle = s.sanitizer.Sanitize(items[i].Description.EnTitle)
		if items[i].Message != nil {
			sanitized := model.MultiLangText{
				JaTitle: s.sanitizer.Sanitize(items[i].Message.JaTitle),
				EnTitle: s.sanitizer.Sanitize(items[i].Message.EnTitle),
			}
			items[i].Message = &sanitized
		}
	}
}
