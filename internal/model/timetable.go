// Package model はドメインモデルを定義する。
package model

import (
	"sort"
	"strings"
)

// Timetable はタイムテーブルの集約ルート。
// IDで一意な項目の順序付きコレクションと、ブックマーク済みIDの集合を保持する。
// フェッチのたびに全体が置き換えられ、構築後は変更されない。
// 派生ビューはすべて新しい値を割り当てて返すため、並行する読み取りは安全である。
//
// ブックマーク集合には現在の項目に対応しないIDが残留しうる
// （スケジュール差し替え後の古いブックマーク）。派生ビューはこれを
// エラーにせず「現在の項目には存在しない」として黙って無視する。
type Timetable struct {
	Items     []TimetableItem
	Bookmarks map[TimetableItemID]struct{}
}

// NewTimetable は項目コレクションとブックマーク集合からTimetableを構築する。
// bookmarksがnilの場合は空集合として扱う。
func NewTimetable(items []TimetableItem, bookmarks map[TimetableItemID]struct{}) Timetable {
	if bookmarks == nil {
		bookmarks = map[TimetableItemID]struct{}{}
	}
	return Timetable{Items: items, Bookmarks: bookmarks}
}

// IsEmpty は項目コレクションが空かどうかを返す。ブックマーク集合の大きさには依存しない。
func (t Timetable) IsEmpty() bool {
	return len(t.Items) == 0
}

// IsBookmarked は指定IDがブックマーク済みかどうかを返す。
func (t Timetable) IsBookmarked(id TimetableItemID) bool {
	_, ok := t.Bookmarks[id]
	return ok
}

// Contents は各項目をブックマーク状態付きで元の順序のまま返す。
func (t Timetable) Contents() []TimetableItemWithFavorite {
	contents := make([]TimetableItemWithFavorite, len(t.Items))
	for i, item := range t.Items {
		contents[i] = TimetableItemWithFavorite{
			TimetableItem: item,
			IsFavorited:   t.IsBookmarked(item.ID),
		}
	}
	return contents
}

// FindItem は指定IDの項目を返す。見つからない場合はok=falseを返す。
func (t Timetable) FindItem(id TimetableItemID) (TimetableItem, bool) {
	for _, item := range t.Items {
		if item.ID == id {
			return item, true
		}
	}
	return TimetableItem{}, false
}

// DayTimetable は開始時刻が指定の開催日に属する項目のみのTimetableを返す。
// ブックマーク集合はそのまま引き継がれる。
func (t Timetable) DayTimetable(day ConferenceDay) Timetable {
	var items []TimetableItem
	for _, item := range t.Items {
		if d, ok := item.Day(); ok && d == day {
			items = append(items, item)
		}
	}
	return t.WithItems(items)
}

// Filtered はフィルタ条件を満たす項目のみのTimetableを返す。
// 空でない各次元が独立した述語として適用される（次元間AND・次元内OR）。
// 空のFiltersの場合は元のTimetableをそのまま返す。
func (t Timetable) Filtered(filters Filters) Timetable {
	if filters.IsEmpty() {
		return t
	}

	var items []TimetableItem
	for _, item := range t.Items {
		if t.matches(item, filters) {
			items = append(items, item)
		}
	}
	return t.WithItems(items)
}

// matches は項目が全フィルタ次元を満たすかどうかを評価する。
// 述語は純粋な論理積であり、評価順序は結果に影響しない。
func (t Timetable) matches(item TimetableItem, filters Filters) bool {
	if len(filters.Days) > 0 {
		day, ok := item.Day()
		if !ok || !containsDay(filters.Days, day) {
			return false
		}
	}
	if len(filters.Categories) > 0 && !containsInt(filters.Categories, item.Category.ID) {
		return false
	}
	if len(filters.SessionTypes) > 0 && !containsSessionType(filters.SessionTypes, item.SessionType) {
		return false
	}
	if len(filters.Languages) > 0 && !containsLanguage(filters.Languages, item.Language.DisplayLanguage()) {
		return false
	}
	if filters.FilterFavorite && !t.IsBookmarked(item.ID) {
		return false
	}
	if filters.SearchWord != "" && !titleContains(item.Title, filters.SearchWord) {
		return false
	}
	return true
}

// titleContains は表示タイトルに対する大文字小文字を区別しない部分一致を判定する。
// サーバー側にはアクティブなロケールがないため、日英どちらかのタイトルに
// 一致すればヒットとして扱う。
func titleContains(title MultiLangText, word string) bool {
	lower := strings.ToLower(word)
	return strings.Contains(strings.ToLower(title.JaTitle), lower) ||
		strings.Contains(strings.ToLower(title.EnTitle), lower)
}

// Rooms は項目に現れるルームを重複排除し、ルームの表示順で返す。
func (t Timetable) Rooms(lang Lang) []Room {
	seen := map[int]struct{}{}
	var rooms []Room
	for _, item := range t.Items {
		if _, ok := seen[item.Room.ID]; ok {
			continue
		}
		seen[item.Room.ID] = struct{}{}
		rooms = append(rooms, item.Room)
	}
	sort.SliceStable(rooms, func(i, j int) bool {
		return rooms[i].Less(rooms[j], lang)
	})
	return rooms
}

// Categories は項目に現れるカテゴリを重複排除し、数値IDの昇順で返す。
func (t Timetable) Categories() []TimetableCategory {
	seen := map[int]struct{}{}
	var categories []TimetableCategory
	for _, item := range t.Items {
		if _, ok := seen[item.Category.ID]; ok {
			continue
		}
		seen[item.Category.ID] = struct{}{}
		categories = append(categories, item.Category)
	}
	sort.Slice(categories, func(i, j int) bool {
		return categories[i].ID < categories[j].ID
	})
	return categories
}

// SessionTypes は項目に現れるセッション種別を重複排除し、安定した順序で返す。
func (t Timetable) SessionTypes() []TimetableSessionType {
	seen := map[TimetableSessionType]struct{}{}
	var types []TimetableSessionType
	for _, item := range t.Items {
		if _, ok := seen[item.SessionType]; ok {
			continue
		}
		seen[item.SessionType] = struct{}{}
		types = append(types, item.SessionType)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// Languages は項目に現れる表示言語を重複排除し、安定した順序で返す。
func (t Timetable) Languages() []DisplayLanguage {
	seen := map[DisplayLanguage]struct{}{}
	var langs []DisplayLanguage
	for _, item := range t.Items {
		lang := item.Language.DisplayLanguage()
		if _, ok := seen[lang]; ok {
			continue
		}
		seen[lang] = struct{}{}
		langs = append(langs, lang)
	}
	sort.Slice(langs, func(i, j int) bool { return langs[i] < langs[j] })
	return langs
}

// Days は項目に現れる開催日を重複排除し、開催日の宣言順で返す。
// どの開催日にも属さない項目は含まれない。
func (t Timetable) Days() []ConferenceDay {
	present := map[ConferenceDay]struct{}{}
	for _, item := range t.Items {
		if day, ok := item.Day(); ok {
			present[day] = struct{}{}
		}
	}
	var days []ConferenceDay
	for _, day := range AllDays() {
		if _, ok := present[day]; ok {
			days = append(days, day)
		}
	}
	return days
}

// WithItems は項目コレクションを差し替えた新しいTimetableを返す。元の値は変更しない。
func (t Timetable) WithItems(items []TimetableItem) Timetable {
	return Timetable{Items: items, Bookmarks: t.Bookmarks}
}

// WithBookmarks はブックマーク集合を差し替えた新しいTimetableを返す。元の値は変更しない。
func (t Timetable) WithBookmarks(bookmarks map[TimetableItemID]struct{}) Timetable {
	if bookmarks == nil {
		bookmarks = map[TimetableItemID]struct{}{}
	}
	return Timetable{Items: t.Items, Bookmarks: bookmarks}
}

// WithToggledBookmark は指定IDのブックマーク状態を反転した新しいTimetableを返す。
// 同じIDを2回トグルするとブックマーク集合は元の状態に戻る。
func (t Timetable) WithToggledBookmark(id TimetableItemID) Timetable {
	bookmarks := make(map[TimetableItemID]struct{}, len(t.Bookmarks)+1)
	for k := range t.Bookmarks {
		bookmarks[k] = struct{}{}
	}
	if _, ok := bookmarks[id]; ok {
		delete(bookmarks, id)
	} else {
		bookmarks[id] = struct{}{}
	}
	return Timetable{Items: t.Items, Bookmarks: bookmarks}
}

func containsDay(days []ConferenceDay, day ConferenceDay) bool {
	for _, d := range days {
		if d == day {
			return true
		}
	}
	return false
}

func containsInt(values []int, v int) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

func containsSessionType(types []TimetableSessionType, t TimetableSessionType) bool {
	for _, x := range types {
		if x == t {
			return true
		}
	}
	return false
}

func containsLanguage(langs []DisplayLanguage, l DisplayLanguage) bool {
	for _, x := range langs {
		if x == l {
			return true
		}
	}
	return false
}
