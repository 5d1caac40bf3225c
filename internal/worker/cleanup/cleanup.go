// Package cleanup は期限切れデータの自動削除ジョブを提供する。
// 期限切れの認証セッションと、スケジュール差し替えで孤立した
// ブックマークを日次バッチで削除する。
package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/takumi/kaigihub/internal/repository"
)

// CleanupJob は期限切れデータの自動削除ジョブ。
// 日次実行のバッチジョブとして設計されており、冪等な削除処理を保証する。
type CleanupJob struct {
	sessionRepo  repository.AuthSessionRepository
	bookmarkRepo repository.BookmarkRepository
	logger       *slog.Logger
}

// NewCleanupJob は新しいCleanupJobを生成する。
func NewCleanupJob(
	sessionRepo repository.AuthSessionRepository,
	bookmarkRepo repository.BookmarkRepository,
	logger *slog.Logger,
) *CleanupJob {
	return &CleanupJob{
		sessionRepo:  sessionRepo,
		bookmarkRepo: bookmarkRepo,
		logger:       logger,
	}
}

// Run は期限切れ認証セッションと孤立ブックマークを削除する。
// 冪等: 削除対象がない場合でもエラーにならない。
func (j *CleanupJob) Run(ctx context.Context) error {
	start := time.Now()

	expiredSessions, err := j.sessionRepo.DeleteExpired(ctx)
	if err != nil {
		j.logger.Error("期限切れ認証セッションの削除に失敗しました",
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("期限切れ認証セッションの削除に失敗: %w", err)
	}

	danglingBookmarks, err := j.bookmarkRepo.DeleteDangling(ctx)
	if err != nil {
		j.logger.Error("孤立ブックマークの削除に失敗しました",
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("孤立ブックマークの削除に失敗: %w", err)
	}

	duration := time.Since(start)
	j.logger.Info("クリーンアップジョブが完了しました",
		slog.Int64("expired_sessions", expiredSessions),
		slog.Int64("dangling_bookmarks", danglingBookmarks),
		slog.Float64("duration_ms", float64(duration.Milliseconds())),
	)

	return nil
}
