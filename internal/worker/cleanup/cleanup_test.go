package cleanup

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/takumi/kaigihub/internal/model"
)

type mockAuthSessionRepo struct {
	deleteExpiredCount int64
	deleteExpiredErr   error
	called             int
}

func (m *mockAuthSessionRepo) Create(_ context.Context, _ *model.AuthSession) error { return nil }

func (m *mockAuthSessionRepo) FindByID(_ context.Context, _ string) (*model.AuthSession, error) {
	return nil, nil
}

func (m *mockAuthSessionRepo) DeleteByID(_ context.Context, _ string) error { return nil }

func (m *mockAuthSessionRepo) DeleteByAttendeeID(_ context.Context, _ string) error { return nil }

func (m *mockAuthSessionRepo) DeleteExpired(_ context.Context) (int64, error) {
	m.called++
	return m.deleteExpiredCount, m.deleteExpiredErr
}

type mockBookmarkRepo struct {
	deleteDanglingCount int64
	deleteDanglingErr   error
	called              int
}

func (m *mockBookmarkRepo) ListByAttendee(_ context.Context, _ string) (map[model.TimetableItemID]struct{}, error) {
	return nil, nil
}

func (m *mockBookmarkRepo) Add(_ context.Context, _ string, _ model.TimetableItemID) error {
	return nil
}

func (m *mockBookmarkRepo) Remove(_ context.Context, _ string, _ model.TimetableItemID) error {
	return nil
}

func (m *mockBookmarkRepo) DeleteByAttendee(_ context.Context, _ string) error { return nil }

func (m *mockBookmarkRepo) DeleteDangling(_ context.Context) (int64, error) {
	m.called++
	return m.deleteDanglingCount, m.deleteDanglingErr
}

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

// TestCleanupJob_Run は両方の削除処理が実行され件数がログされることを検証する。
func TestCleanupJob_Run(t *testing.T) {
	sessionRepo := &mockAuthSessionRepo{deleteExpiredCount: 5}
	bookmarkRepo := &mockBookmarkRepo{deleteDanglingCount: 3}
	var buf bytes.Buffer
	job := NewCleanupJob(sessionRepo, bookmarkRepo, newTestLogger(&buf))

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if sessionRepo.called != 1 {
		t.Errorf("DeleteExpired called %d times, want 1", sessionRepo.called)
	}
	if bookmarkRepo.called != 1 {
		t.Errorf("DeleteDangling called %d times, want 1", bookmarkRepo.called)
	}
	logOutput := buf.String()
	if !strings.Contains(logOutput, `"expired_sessions":5`) {
		t.Errorf("log should contain expired session count: %s", logOutput)
	}
	if !strings.Contains(logOutput, `"dangling_bookmarks":3`) {
		t.Errorf("log should contain dangling bookmark count: %s", logOutput)
	}
}

// TestCleanupJob_Run_NothingToDelete は削除対象ゼロ件でもエラーにならないことを検証する。
func TestCleanupJob_Run_NothingToDelete(t *testing.T) {
	var buf bytes.Buffer
	job := NewCleanupJob(&mockAuthSessionRepo{}, &mockBookmarkRepo{}, newTestLogger(&buf))

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
}

// TestCleanupJob_Run_SessionDeleteError はセッション削除失敗時にエラーを返し、
// ブックマーク削除が実行されないことを検証する。
func TestCleanupJob_Run_SessionDeleteError(t *testing.T) {
	sessionRepo := &mockAuthSessionRepo{deleteExpiredErr: errors.New("db error")}
	bookmarkRepo := &mockBookmarkRepo{}
	var buf bytes.Buffer
	job := NewCleanupJob(sessionRepo, bookmarkRepo, newTestLogger(&buf))

	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error, got nil")
	}
	if bookmarkRepo.called != 0 {
		t.Errorf("DeleteDangling called %d times, want 0", bookmarkRepo.called)
	}
}

// TestCleanupJob_Run_BookmarkDeleteError はブックマーク削除失敗時にエラーを返すことを検証する。
func TestCleanupJob_Run_BookmarkDeleteError(t *testing.T) {
	bookmarkRepo := &mockBookmarkRepo{deleteDanglingErr: errors.New("db error")}
	var buf bytes.Buffer
	job := NewCleanupJob(&mockAuthSessionRepo{}, bookmarkRepo, newTestLogger(&buf))

	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error, got nil")
	}
}
