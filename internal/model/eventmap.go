// Package model はドメインモデルを定義する。
package model

// EventMapEvent はイベントマップ画面に表示する会場イベントを表す。
type EventMapEvent struct {
	ID             string
	Name           MultiLangText
	Room           Room
	Description    MultiLangText
	MoreDetailsURL string
	Message        *MultiLangText
}
