// Package model はドメインモデルを定義する。
package model

// Filters はタイムテーブルに適用する多次元フィルタ条件を表す。
// 次元間はAND、次元内（同一集合内）はORで評価される。
type Filters struct {
	Days           []ConferenceDay
	Categories     []int
	SessionTypes   []TimetableSessionType
	Languages      []DisplayLanguage
	FilterFavorite bool
	SearchWord     string
}

// IsEmpty は全フィルタ次元が未指定かどうかを返す。
// 空のFiltersによるフィルタリングは恒等変換となる。
func (f Filters) IsEmpty() bool {
	return len(f.Days) == 0 &&
		len(f.Categories) == 0 &&
		len(f.SessionTypes) == 0 &&
		len(f.Languages) == 0 &&
		!f.FilterFavorite &&
		f.SearchWord == ""
}
