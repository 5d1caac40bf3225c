// Package model はドメインモデルを定義する。
package model

import "time"

// JST はカンファレンス開催地のタイムゾーン。
// 日付境界の判定と時刻表示はすべてこのタイムゾーンで行う。
var JST = time.FixedZone("Asia/Tokyo", 9*60*60)

// ConferenceDay はカンファレンスの開催日を表す閉じた集合。
type ConferenceDay string

const (
	// DayWorkday は前日のワークデイ。UIタブには表示されない。
	DayWorkday ConferenceDay = "workday"
	// DayConferenceDay1 はカンファレンス1日目。
	DayConferenceDay1 ConferenceDay = "day1"
	// DayConferenceDay2 はカンファレンス2日目。
	DayConferenceDay2 ConferenceDay = "day2"
)

// dayRange は開催日の開始・終了時刻（両端を含む）を表す。
type dayRange struct {
	day   ConferenceDay
	start time.Time
	end   time.Time
}

// dayRanges は開催日の日付範囲テーブル。起動時に一度だけ初期化され、以後変更されない。
// 範囲は重複しないよう設計されているが、万一重複した場合は宣言順で先勝ちとなる。
var dayRanges = []dayRange{
	{
		day:   DayWorkday,
		start: time.Date(2025, 9, 10, 0, 0, 0, 0, JST),
		end:   time.Date(2025, 9, 10, 23, 59, 59, 0, JST),
	},
	{
		day:   DayConferenceDay1,
		start: time.Date(2025, 9, 11, 0, 0, 0, 0, JST),
		end:   time.Date(2025, 9, 11, 23, 59, 59, 0, JST),
	},
	{
		day:   DayConferenceDay2,
		start: time.Date(2025, 9, 12, 0, 0, 0, 0, JST),
		end:   time.Date(2025, 9, 12, 23, 59, 59, 0, JST),
	},
}

// AllDays は全開催日を宣言順で返す。
func AllDays() []ConferenceDay {
	days := make([]ConferenceDay, len(dayRanges))
	for i, r := range dayRanges {
		days[i] = r.day
	}
	return days
}

// DayOf はタイムスタンプを含む開催日を返す。
// どの開催日の範囲にも含まれない場合（壊れたタイムスタンプ等）はok=falseを返す。
// 呼び出し側はこれをエラーではなく「日別グルーピングから除外」として扱うこと。
func DayOf(t time.Time) (ConferenceDay, bool) {
	for _, r := range dayRanges {
		if !t.Before(r.start) && !t.After(r.end) {
			return r.day, true
		}
	}
	return "", false
}

// VisibleDays はUIタブとして表示する開催日を返す。ワークデイは含まない。
func VisibleDays() []ConferenceDay {
	return []ConferenceDay{DayConferenceDay1, DayConferenceDay2}
}

// InitialSelectedDay はデフォルトで選択する開催日タブを返す。
// nowを含む開催日があればその日、なければ最初の表示対象日を返す。
func InitialSelectedDay(now time.Time) ConferenceDay {
	if day, ok := DayOf(now); ok {
		return day
	}
	return VisibleDays()[0]
}

// ParseConferenceDay は文字列表現から開催日を解決する。
func ParseConferenceDay(s string) (ConferenceDay, bool) {
	switch ConferenceDay(s) {
	case DayWorkday, DayConferenceDay1, DayConferenceDay2:
		return ConferenceDay(s), true
	}
	return "", false
}
