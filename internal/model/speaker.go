// Package model はドメインモデルを定義する。
package model

// Speaker は登壇者を表すイミュータブルな値。
// 項目ごとにリストとして埋め込まれ、参照ではなく値として保持される。
type Speaker struct {
	ID      string
	Name    string
	IconURL string
	Bio     string
	TagLine string
}
