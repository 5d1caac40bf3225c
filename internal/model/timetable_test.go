package model

import (
	"reflect"
	"testing"
	"time"
)

// --- テスト用フィクスチャ ---

func roomJellyfish() Room {
	return Room{ID: 1, Name: MultiLangText{JaTitle: "ジェリーフィッシュ", EnTitle: "JELLYFISH"}, Type: RoomTypeJ, Sort: 1}
}

func roomKoala() Room {
	return Room{ID: 2, Name: MultiLangText{JaTitle: "コアラ", EnTitle: "KOALA"}, Type: RoomTypeK, Sort: 2}
}

func categoryA() TimetableCategory {
	return TimetableCategory{ID: 1, Title: MultiLangText{JaTitle: "開発ツール", EnTitle: "Developer Tools"}}
}

func categoryB() TimetableCategory {
	return TimetableCategory{ID: 2, Title: MultiLangText{JaTitle: "UI", EnTitle: "UI"}}
}

// testItem はテスト用のTimetableItemを構築する。
func testItem(id string, title string, startsAt, endsAt time.Time, opts ...func(*TimetableItem)) TimetableItem {
	item := TimetableItem{
		ID:          TimetableItemID(id),
		Kind:        ItemKindSession,
		Title:       MultiLangText{JaTitle: title, EnTitle: title},
		StartsAt:    startsAt,
		EndsAt:      endsAt,
		Category:    categoryA(),
		SessionType: SessionTypeNormal,
		Room:        roomJellyfish(),
		Language:    TimetableLanguage{LangOfSpeaker: "JAPANESE"},
	}
	for _, opt := range opts {
		opt(&item)
	}
	return item
}

func withRoom(room Room) func(*TimetableItem) {
	return func(i *TimetableItem) { i.Room = room }
}

func withCategory(c TimetableCategory) func(*TimetableItem) {
	return func(i *TimetableItem) { i.Category = c }
}

func withLanguage(code string) func(*TimetableItem) {
	return func(i *TimetableItem) { i.Language = TimetableLanguage{LangOfSpeaker: code} }
}

func withSpecial(st TimetableSessionType) func(*TimetableItem) {
	return func(i *TimetableItem) {
		i.Kind = ItemKindSpecial
		i.SessionType = st
	}
}

func day1At(hour, min int) time.Time {
	return time.Date(2025, 9, 11, hour, min, 0, 0, JST)
}

func day2At(hour, min int) time.Time {
	return time.Date(2025, 9, 12, hour, min, 0, 0, JST)
}

// sampleTimetable は2カテゴリ×2言語×2日にまたがる4項目のタイムテーブルを返す。
func sampleTimetable() Timetable {
	return NewTimetable([]TimetableItem{
		testItem("1", "Opening Keynote", day1At(10, 0), day1At(11, 0), withCategory(categoryA()), withLanguage("ENGLISH")),
		testItem("2", "Workshop", day1At(10, 0), day1At(11, 0), withRoom(roomKoala()), withCategory(categoryB()), withLanguage("JAPANESE")),
		testItem("3", "Lunch", day1At(12, 30), day1At(13, 30), withSpecial(SessionTypeLunch)),
		testItem("4", "Closing Session", day2At(10, 0), day2At(11, 0), withCategory(categoryB()), withLanguage("ENGLISH")),
	}, nil)
}

// --- フィルタの恒等則 ---

// TestTimetable_Filtered_EmptyFiltersIsIdentity は空のFiltersによるフィルタリングが恒等変換であることをテストする。
func TestTimetable_Filtered_EmptyFiltersIsIdentity(t *testing.T) {
	timetable := sampleTimetable()
	filtered := timetable.Filtered(Filters{})

	if !reflect.DeepEqual(filtered, timetable) {
		t.Errorf("空のFiltersでのFilteredは元のTimetableと一致すべき")
	}
}

// TestTimetable_Filtered_EmptyTimetable は空のタイムテーブルへのフィルタが空の結果を返すことをテストする。
func TestTimetable_Filtered_EmptyTimetable(t *testing.T) {
	timetable := NewTimetable(nil, nil)
	filtered := timetable.Filtered(Filters{Days: []ConferenceDay{DayConferenceDay1}})

	if !filtered.IsEmpty() {
		t.Errorf("空のタイムテーブルのフィルタ結果は空であるべき")
	}
}

// --- 日別分割の法則 ---

// TestTimetable_DayTimetable_Partition は全表示対象日+「日なし」の和が元の項目集合を過不足なく復元することをテストする。
func TestTimetable_DayTimetable_Partition(t *testing.T) {
	timetable := NewTimetable([]TimetableItem{
		testItem("1", "A", day1At(10, 0), day1At(11, 0)),
		testItem("2", "B", day2At(10, 0), day2At(11, 0)),
		testItem("3", "Workday", time.Date(2025, 9, 10, 10, 0, 0, 0, JST), time.Date(2025, 9, 10, 11, 0, 0, 0, JST)),
		// どの開催日にも属さない壊れたタイムスタンプの項目
		testItem("4", "Orphan", time.Date(2000, 1, 1, 0, 0, 0, 0, JST), time.Date(2000, 1, 1, 1, 0, 0, 0, JST)),
	}, nil)

	counts := map[TimetableItemID]int{}
	for _, day := range AllDays() {
		sub := timetable.DayTimetable(day)
		for _, item := range sub.Items {
			gotDay, ok := item.Day()
			if !ok || gotDay != day {
				t.Errorf("DayTimetable(%s) に開催日%v(ok=%v)の項目%sが含まれている", day, gotDay, ok, item.ID)
			}
			counts[item.ID]++
		}
	}

	// 「日なし」: どの開催日にも属さない項目
	for _, item := range timetable.Items {
		if _, ok := item.Day(); !ok {
			counts[item.ID]++
		}
	}

	for _, item := range timetable.Items {
		if counts[item.ID] != 1 {
			t.Errorf("項目%sが%d回出現した, want 1回（重複も欠落もなし）", item.ID, counts[item.ID])
		}
	}
}

// TestTimetable_DayTimetable_CarriesBookmarks は日別ビューがブックマーク集合を引き継ぐことをテストする。
func TestTimetable_DayTimetable_CarriesBookmarks(t *testing.T) {
	timetable := sampleTimetable().WithToggledBookmark("1")
	sub := timetable.DayTimetable(DayConferenceDay1)

	if !sub.IsBookmarked("1") {
		t.Errorf("日別ビューはブックマーク集合をそのまま引き継ぐべき")
	}
}

// --- ブックマークのトグル ---

// TestTimetable_WithToggledBookmark_Idempotence は同じIDを2回トグルすると元の集合に戻ることをテストする。
func TestTimetable_WithToggledBookmark_Idempotence(t *testing.T) {
	timetable := sampleTimetable()

	once := timetable.WithToggledBookmark("3")
	if !once.IsBookmarked("3") {
		t.Fatalf("1回目のトグルでブックマークされていない")
	}

	twice := once.WithToggledBookmark("3")
	if twice.IsBookmarked("3") {
		t.Errorf("2回目のトグルでブックマークが解除されていない")
	}
	if len(twice.Bookmarks) != len(timetable.Bookmarks) {
		t.Errorf("2回トグル後の集合サイズ = %d, want %d", len(twice.Bookmarks), len(timetable.Bookmarks))
	}

	// 元の値は変更されない
	if timetable.IsBookmarked("3") {
		t.Errorf("WithToggledBookmarkが元のTimetableを変更した")
	}
}

// TestTimetable_Contents_FavoriteFlag は項目"3"のブックマーク後にContents()が正しいフラグを返すことをテストする。
func TestTimetable_Contents_FavoriteFlag(t *testing.T) {
	timetable := sampleTimetable().WithToggledBookmark("3")
	contents := timetable.Contents()

	if len(contents) != 4 {
		t.Fatalf("len(Contents()) = %d, want 4", len(contents))
	}

	favorited := 0
	for i, c := range contents {
		// 元の項目順が保たれる
		if c.ID != timetable.Items[i].ID {
			t.Errorf("contents[%d].ID = %s, want %s（順序保存）", i, c.ID, timetable.Items[i].ID)
		}
		if c.IsFavorited {
			favorited++
			if c.ID != "3" {
				t.Errorf("ブックマーク済みの項目ID = %s, want 3", c.ID)
			}
		}
	}
	if favorited != 1 {
		t.Errorf("ブックマーク済み項目数 = %d, want 1", favorited)
	}
}

// TestTimetable_DanglingBookmark_Ignored は現在の項目に対応しないブックマークIDが黙って無視されることをテストする。
func TestTimetable_DanglingBookmark_Ignored(t *testing.T) {
	timetable := sampleTimetable().WithToggledBookmark("removed-item")

	for _, c := range timetable.Contents() {
		if c.IsFavorited {
			t.Errorf("存在しないIDのブックマークがフラグに影響した: %s", c.ID)
		}
	}

	filtered := timetable.Filtered(Filters{FilterFavorite: true})
	if !filtered.IsEmpty() {
		t.Errorf("宙に浮いたブックマークIDはお気に入りフィルタにヒットすべきでない")
	}
}

// --- フィルタの論理積 ---

// TestTimetable_Filtered_Conjunction は複数次元の組み合わせが両方を満たす項目のみを返すことをテストする。
func TestTimetable_Filtered_Conjunction(t *testing.T) {
	timetable := sampleTimetable()

	filtered := timetable.Filtered(Filters{
		Categories: []int{categoryA().ID},
		Languages:  []DisplayLanguage{DisplayLanguageEnglish},
	})

	if len(filtered.Items) != 1 {
		t.Fatalf("len(filtered.Items) = %d, want 1", len(filtered.Items))
	}
	if filtered.Items[0].ID != "1" {
		t.Errorf("filtered.Items[0].ID = %s, want 1", filtered.Items[0].ID)
	}
}

// TestTimetable_Filtered_WithinDimensionIsOR は同一次元内の複数値がORで評価されることをテストする。
func TestTimetable_Filtered_WithinDimensionIsOR(t *testing.T) {
	timetable := sampleTimetable()

	filtered := timetable.Filtered(Filters{
		Categories: []int{categoryA().ID, categoryB().ID},
	})

	if len(filtered.Items) != 4 {
		t.Errorf("len(filtered.Items) = %d, want 4（カテゴリA OR B）", len(filtered.Items))
	}
}

// TestTimetable_Filtered_Days は開催日フィルタが開始時刻の属する日で評価されることをテストする。
func TestTimetable_Filtered_Days(t *testing.T) {
	timetable := sampleTimetable()

	filtered := timetable.Filtered(Filters{Days: []ConferenceDay{DayConferenceDay2}})

	if len(filtered.Items) != 1 {
		t.Fatalf("len(filtered.Items) = %d, want 1", len(filtered.Items))
	}
	if filtered.Items[0].ID != "4" {
		t.Errorf("filtered.Items[0].ID = %s, want 4", filtered.Items[0].ID)
	}
}

// TestTimetable_Filtered_SearchWord は検索語による大文字小文字を区別しない部分一致をテストする。
func TestTimetable_Filtered_SearchWord(t *testing.T) {
	timetable := NewTimetable([]TimetableItem{
		testItem("1", "Opening Keynote", day1At(10, 0), day1At(11, 0)),
		testItem("2", "Workshop", day1At(11, 0), day1At(12, 0)),
	}, nil)

	tests := []struct {
		word    string
		wantIDs []TimetableItemID
	}{
		{"keynote", []TimetableItemID{"1"}},
		{"KEYNOTE", []TimetableItemID{"1"}},
		{"Key", []TimetableItemID{"1"}},
		{"shop", []TimetableItemID{"2"}},
		{"絶対に一致しない", nil},
	}

	for _, tt := range tests {
		filtered := timetable.Filtered(Filters{SearchWord: tt.word})
		var gotIDs []TimetableItemID
		for _, item := range filtered.Items {
			gotIDs = append(gotIDs, item.ID)
		}
		if !reflect.DeepEqual(gotIDs, tt.wantIDs) {
			t.Errorf("Filtered(searchWord=%q) = %v, want %v", tt.word, gotIDs, tt.wantIDs)
		}
	}
}

// TestTimetable_Filtered_Favorite はお気に入りフィルタがブックマーク集合の所属で評価されることをテストする。
func TestTimetable_Filtered_Favorite(t *testing.T) {
	timetable := sampleTimetable().WithToggledBookmark("2")

	filtered := timetable.Filtered(Filters{FilterFavorite: true})

	if len(filtered.Items) != 1 {
		t.Fatalf("len(filtered.Items) = %d, want 1", len(filtered.Items))
	}
	if filtered.Items[0].ID != "2" {
		t.Errorf("filtered.Items[0].ID = %s, want 2", filtered.Items[0].ID)
	}
}

// --- 派生ビューの重複排除 ---

// TestTimetable_Rooms_Deduplicated はルーム一覧が重複排除され表示順で返ることをテストする。
func TestTimetable_Rooms_Deduplicated(t *testing.T) {
	timetable := NewTimetable([]TimetableItem{
		testItem("1", "A", day1At(10, 0), day1At(11, 0), withRoom(roomKoala())),
		testItem("2", "B", day1At(11, 0), day1At(12, 0), withRoom(roomJellyfish())),
		testItem("3", "C", day1At(12, 0), day1At(13, 0), withRoom(roomKoala())),
	}, nil)

	rooms := timetable.Rooms(LangEnglish)
	if len(rooms) != 2 {
		t.Fatalf("len(Rooms()) = %d, want 2", len(rooms))
	}
	if rooms[0].Name.EnTitle != "JELLYFISH" || rooms[1].Name.EnTitle != "KOALA" {
		t.Errorf("Rooms() = [%s %s], want [JELLYFISH KOALA]", rooms[0].Name.EnTitle, rooms[1].Name.EnTitle)
	}
}

// TestTimetable_Categories_SortedByID はカテゴリ一覧が数値ID昇順で返ることをテストする。
func TestTimetable_Categories_SortedByID(t *testing.T) {
	timetable := NewTimetable([]TimetableItem{
		testItem("1", "A", day1At(10, 0), day1At(11, 0), withCategory(categoryB())),
		testItem("2", "B", day1At(11, 0), day1At(12, 0), withCategory(categoryA())),
		testItem("3", "C", day1At(12, 0), day1At(13, 0), withCategory(categoryB())),
	}, nil)

	categories := timetable.Categories()
	if len(categories) != 2 {
		t.Fatalf("len(Categories()) = %d, want 2", len(categories))
	}
	if categories[0].ID != 1 || categories[1].ID != 2 {
		t.Errorf("Categories() IDs = [%d %d], want [1 2]", categories[0].ID, categories[1].ID)
	}
}

// TestTimetable_Days_DeclarationOrder は出現する開催日が宣言順で返ることをテストする。
func TestTimetable_Days_DeclarationOrder(t *testing.T) {
	timetable := NewTimetable([]TimetableItem{
		testItem("1", "A", day2At(10, 0), day2At(11, 0)),
		testItem("2", "B", day1At(10, 0), day1At(11, 0)),
	}, nil)

	days := timetable.Days()
	want := []ConferenceDay{DayConferenceDay1, DayConferenceDay2}
	if !reflect.DeepEqual(days, want) {
		t.Errorf("Days() = %v, want %v", days, want)
	}
}

// TestTimetable_IsEmpty はIsEmptyが項目の有無のみに依存することをテストする。
func TestTimetable_IsEmpty(t *testing.T) {
	empty := NewTimetable(nil, map[TimetableItemID]struct{}{"ghost": {}})
	if !empty.IsEmpty() {
		t.Errorf("項目が空ならブックマーク集合が非空でもIsEmpty() = trueであるべき")
	}

	if sampleTimetable().IsEmpty() {
		t.Errorf("項目があるのにIsEmpty() = true")
	}
}

// TestTimetable_WithItems_DoesNotMutate はコピーオンライトのコンストラクタが元の値を変更しないことをテストする。
func TestTimetable_WithItems_DoesNotMutate(t *testing.T) {
	original := sampleTimetable()
	replaced := original.WithItems(nil)

	if original.IsEmpty() {
		t.Errorf("WithItemsが元のTimetableを変更した")
	}
	if !replaced.IsEmpty() {
		t.Errorf("WithItems(nil)の結果は空であるべき")
	}
}
