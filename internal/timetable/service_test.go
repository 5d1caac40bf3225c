package timetable

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/takumi/kaigihub/internal/model"
)

// --- モック定義 ---

type mockScheduleRepo struct {
	listAllFn  func(ctx context.Context) ([]model.TimetableItem, error)
	findByIDFn func(ctx context.Context, id model.TimetableItemID) (*model.TimetableItem, error)
}

func (m *mockScheduleRepo) ListAll(ctx context.Context) ([]model.TimetableItem, error) {
	if m.listAllFn != nil {
		return m.listAllFn(ctx)
	}
	return nil, nil
}

func (m *mockScheduleRepo) FindByID(ctx context.Context, id model.TimetableItemID) (*model.TimetableItem, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockScheduleRepo) ReplaceAll(_ context.Context, _ []model.TimetableItem) error {
	return nil
}

type mockBookmarkRepo struct {
	listByAttendeeFn func(ctx context.Context, attendeeID string) (map[model.TimetableItemID]struct{}, error)
}

func (m *mockBookmarkRepo) ListByAttendee(ctx context.Context, attendeeID string) (map[model.TimetableItemID]struct{}, error) {
	if m.listByAttendeeFn != nil {
		return m.listByAttendeeFn(ctx, attendeeID)
	}
	return map[model.TimetableItemID]struct{}{}, nil
}

func (m *mockBookmarkRepo) Add(_ context.Context, _ string, _ model.TimetableItemID) error {
	return nil
}

func (m *mockBookmarkRepo) Remove(_ context.Context, _ string, _ model.TimetableItemID) error {
	return nil
}

func (m *mockBookmarkRepo) DeleteByAttendee(_ context.Context, _ string) error {
	return nil
}

func (m *mockBookmarkRepo) DeleteDangling(_ context.Context) (int64, error) {
	return 0, nil
}

// --- フィクスチャ ---

func testItem(id string, start time.Time) model.TimetableItem {
	return model.TimetableItem{
		ID:          model.TimetableItemID(id),
		Kind:        model.ItemKindSession,
		Title:       model.MultiLangText{JaTitle: id, EnTitle: id},
		StartsAt:    start,
		EndsAt:      start.Add(time.Hour),
		SessionType: model.SessionTypeNormal,
	}
}

func day1At(hour, min int) time.Time {
	return time.Date(2025, 9, 11, hour, min, 0, 0, model.JST)
}

func day2At(hour, min int) time.Time {
	return time.Date(2025, 9, 12, hour, min, 0, 0, model.JST)
}

func fixtureItems() []model.TimetableItem {
	return []model.TimetableItem{
		testItem("1", day1At(10, 0)),
		testItem("2", day1At(10, 0)),
		testItem("3", day1At(12, 30)),
		testItem("4", day2At(10, 0)),
	}
}

// --- テスト ---

// TestService_Load は項目とブックマークが集約されることを検証する。
func TestService_Load(t *testing.T) {
	scheduleRepo := &mockScheduleRepo{
		listAllFn: func(ctx context.Context) ([]model.TimetableItem, error) {
			return fixtureItems(), nil
		},
	}
	bookmarkRepo := &mockBookmarkRepo{
		listByAttendeeFn: func(ctx context.Context, attendeeID string) (map[model.TimetableItemID]struct{}, error) {
			return map[model.TimetableItemID]struct{}{"3": {}}, nil
		},
	}
	svc := NewService(scheduleRepo, bookmarkRepo)

	timetable, err := svc.Load(context.Background(), "attendee-1")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(timetable.Items) != 4 {
		t.Errorf("len(Items) = %d, want 4", len(timetable.Items))
	}
	if !timetable.IsBookmarked("3") {
		t.Error("expected item 3 to be bookmarked")
	}
}

// TestService_Load_Anonymous は未認証時にブックマークが空になることを検証する。
func TestService_Load_Anonymous(t *testing.T) {
	called := false
	scheduleRepo := &mockScheduleRepo{
		listAllFn: func(ctx context.Context) ([]model.TimetableItem, error) {
			return fixtureItems(), nil
		},
	}
	bookmarkRepo := &mockBookmarkRepo{
		listByAttendeeFn: func(ctx context.Context, attendeeID string) (map[model.TimetableItemID]struct{}, error) {
			called = true
			return nil, nil
		},
	}
	svc := NewService(scheduleRepo, bookmarkRepo)

	timetable, err := svc.Load(context.Background(), "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if called {
		t.Error("bookmark repo should not be called for anonymous access")
	}
	if timetable.IsBookmarked("3") {
		t.Error("anonymous timetable should have no bookmarks")
	}
}

// TestService_GetTimetable_Filtered はフィルタが適用されることを検証する。
func TestService_GetTimetable_Filtered(t *testing.T) {
	scheduleRepo := &mockScheduleRepo{
		listAllFn: func(ctx context.Context) ([]model.TimetableItem, error) {
			return fixtureItems(), nil
		},
	}
	svc := NewService(scheduleRepo, &mockBookmarkRepo{})

	timetable, err := svc.GetTimetable(context.Background(), "", model.Filters{
		Days: []model.ConferenceDay{model.DayConferenceDay2},
	})
	if err != nil {
		t.Fatalf("GetTimetable() error = %v", err)
	}
	if len(timetable.Items) != 1 || timetable.Items[0].ID != "4" {
		t.Errorf("unexpected filtered items: %+v", timetable.Items)
	}
}

// TestService_GetDayTimetable は開催日の項目が時刻グループ化されることを検証する。
func TestService_GetDayTimetable(t *testing.T) {
	scheduleRepo := &mockScheduleRepo{
		listAllFn: func(ctx context.Context) ([]model.TimetableItem, error) {
			return fixtureItems(), nil
		},
	}
	svc := NewService(scheduleRepo, &mockBookmarkRepo{})

	groups, err := svc.GetDayTimetable(context.Background(), "", model.DayConferenceDay1)
	if err != nil {
		t.Fatalf("GetDayTimetable() error = %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("len(groups) = %d, want 2", len(groups))
	}
	if groups[0].StartsTimeString != "10:00" || len(groups[0].Items) != 2 {
		t.Errorf("unexpected first group: %+v", groups[0])
	}
	if groups[1].StartsTimeString != "12:30" || len(groups[1].Items) != 1 {
		t.Errorf("unexpected second group: %+v", groups[1])
	}
}

// TestService_GetSession はブックマーク状態付きの項目取得を検証する。
func TestService_GetSession(t *testing.T) {
	item := testItem("1", day1At(10, 0))
	scheduleRepo := &mockScheduleRepo{
		findByIDFn: func(ctx context.Context, id model.TimetableItemID) (*model.TimetableItem, error) {
			if id == "1" {
				return &item, nil
			}
			return nil, nil
		},
	}
	bookmarkRepo := &mockBookmarkRepo{
		listByAttendeeFn: func(ctx context.Context, attendeeID string) (map[model.TimetableItemID]struct{}, error) {
			return map[model.TimetableItemID]struct{}{"1": {}}, nil
		},
	}
	svc := NewService(scheduleRepo, bookmarkRepo)

	got, err := svc.GetSession(context.Background(), "attendee-1", "1")
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if got.ID != "1" || !got.IsFavorited {
		t.Errorf("unexpected result: %+v", got)
	}

	// 未認証の場合はブックマーク状態なし
	got, err = svc.GetSession(context.Background(), "", "1")
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if got.IsFavorited {
		t.Error("anonymous access should not report favorite state")
	}
}

// TestService_GetSession_NotFound は未知のIDがSESSION_NOT_FOUNDになることを検証する。
func TestService_GetSession_NotFound(t *testing.T) {
	svc := NewService(&mockScheduleRepo{}, &mockBookmarkRepo{})

	_, err := svc.GetSession(context.Background(), "", "missing")
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeSessionNotFound {
		t.Errorf("error = %v, want SESSION_NOT_FOUND", err)
	}
}

// TestService_Load_RepoError はリポジトリエラーが伝播することを検証する。
func TestService_Load_RepoError(t *testing.T) {
	scheduleRepo := &mockScheduleRepo{
		listAllFn: func(ctx context.Context) ([]model.TimetableItem, error) {
			return nil, errors.New("db down")
		},
	}
	svc := NewService(scheduleRepo, &mockBookmarkRepo{})

	if _, err := svc.Load(context.Background(), ""); err == nil {
		t.Fatal("expected error, got nil")
	}
}
