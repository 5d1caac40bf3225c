// Package model はドメインモデルを定義する。
package model

// Lang は表示言語のロケールを表す。
type Lang string

const (
	// LangJapanese は日本語ロケール。
	LangJapanese Lang = "ja"
	// LangEnglish は英語ロケール。
	LangEnglish Lang = "en"
)

// MultiLangText は日英2言語のラベルを保持するイミュータブルな値。
type MultiLangText struct {
	JaTitle string
	EnTitle string
}

// Localized はロケールに応じた表示文字列を返す。
// 日本語以外のロケールは英語にフォールバックする。
func (t MultiLangText) Localized(lang Lang) string {
	if lang == LangJapanese {
		return t.JaTitle
	}
	return t.EnTitle
}
