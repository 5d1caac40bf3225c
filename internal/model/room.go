// Package model はドメインモデルを定義する。
package model

import "strings"

// RoomType は物理ルームの閉じた集合を表す。
type RoomType string

const (
	// RoomTypeJ はJELLYFISHルーム。
	RoomTypeJ RoomType = "room_j"
	// RoomTypeK はKOALAルーム。
	RoomTypeK RoomType = "room_k"
	// RoomTypeL はLADYBUGルーム。
	RoomTypeL RoomType = "room_l"
	// RoomTypeM はMEERKATルーム。
	RoomTypeM RoomType = "room_m"
	// RoomTypeN はNARWHALルーム。
	RoomTypeN RoomType = "room_n"
)

// Room は会場の物理ルームを表す。カンファレンスの静的データから一度だけ構築される。
type Room struct {
	ID   int
	Name MultiLangText
	Type RoomType
	Sort int
}

// specialRoomSortThreshold 以上のSort値を持つルームは
// 特殊なプレースホルダ行として実ルームの後ろに並ぶ。
const specialRoomSortThreshold = 900

// Less はルームの表示順を定義する。
// 両者のSortが900未満の場合はローカライズ名の辞書順、
// それ以外はSort値の昇順で並べる。
func (r Room) Less(other Room, lang Lang) bool {
	if r.Sort < specialRoomSortThreshold && other.Sort < specialRoomSortThreshold {
		return r.Name.Localized(lang) < other.Name.Localized(lang)
	}
	return r.Sort < other.Sort
}

// ThemeKey はテーマカラー参照用のキーを返す。英語名の小文字表記。
func (r Room) ThemeKey() string {
	return strings.ToLower(r.Name.EnTitle)
}
