// Package model はドメインモデルを定義する。
package model

import (
	"strings"
	"time"
)

// TimetableItemID はタイムテーブル項目の識別子。
// ブックマークと同一性判定のキーとして使用する不透明な文字列ラッパー。
type TimetableItemID string

// ItemKind はタイムテーブル項目の種別（通常セッション/特別枠）を表す。
type ItemKind string

const (
	// ItemKindSession は通常のトークセッション。
	ItemKindSession ItemKind = "session"
	// ItemKindSpecial はランチ・休憩・キーノート等の特別枠。
	ItemKindSpecial ItemKind = "special"
)

// TimetableSessionType はセッション枠の分類を表す。
type TimetableSessionType string

const (
	// SessionTypeNormal は通常セッション。
	SessionTypeNormal TimetableSessionType = "NORMAL"
	// SessionTypeWelcomeTalk はウェルカムトーク。
	SessionTypeWelcomeTalk TimetableSessionType = "WELCOME_TALK"
	// SessionTypeLunch はランチ。
	SessionTypeLunch TimetableSessionType = "LUNCH"
	// SessionTypeBreak は休憩。
	SessionTypeBreak TimetableSessionType = "BREAK"
	// SessionTypeOfficialParty は公式パーティー。
	SessionTypeOfficialParty TimetableSessionType = "OFFICIAL_PARTY"
	// SessionTypeClosing はクロージング。
	SessionTypeClosing TimetableSessionType = "CLOSING"
)

// DisplayLanguage は項目の表示言語（日本語/英語/ミックス）を表す。
type DisplayLanguage string

const (
	// DisplayLanguageJapanese は日本語セッション。
	DisplayLanguageJapanese DisplayLanguage = "JAPANESE"
	// DisplayLanguageEnglish は英語セッション。
	DisplayLanguageEnglish DisplayLanguage = "ENGLISH"
	// DisplayLanguageMixed は日英ミックスのセッション。
	DisplayLanguageMixed DisplayLanguage = "MIXED"
)

// TimetableLanguage はセッションの発表言語と同時通訳の有無を表す。
type TimetableLanguage struct {
	LangOfSpeaker          string
	IsInterpretationTarget bool
}

// DisplayLanguage は発表言語の生コードを表示言語に解決する。
// 未知のコードはミックスとして扱う。
func (l TimetableLanguage) DisplayLanguage() DisplayLanguage {
	switch strings.ToUpper(l.LangOfSpeaker) {
	case "JAPANESE", "JA":
		return DisplayLanguageJapanese
	case "ENGLISH", "EN":
		return DisplayLanguageEnglish
	default:
		return DisplayLanguageMixed
	}
}

// TimetableCategory はセッションのカテゴリを表す。
type TimetableCategory struct {
	ID    int
	Title MultiLangText
}

// TimetableAsset はセッションの資料リンク（スライド/動画）を表す。
// いずれも存在しない場合は空文字列。
type TimetableAsset struct {
	VideoURL string
	SlideURL string
}

// TimetableItem はタイムテーブルの1項目を表す。
// Session/Specialの2バリアントをKindで判別するタグ付き構造として表現し、
// 構築後は一切変更されない。状態（ブックマーク）はTimetable側で外部管理する。
type TimetableItem struct {
	ID             TimetableItemID
	Kind           ItemKind
	Title          MultiLangText
	StartsAt       time.Time
	EndsAt         time.Time
	Category       TimetableCategory
	SessionType    TimetableSessionType
	Room           Room
	TargetAudience string
	Language       TimetableLanguage
	Asset          TimetableAsset
	Speakers       []Speaker
	Description    MultiLangText
	Message        *MultiLangText
}

// Day は項目の開始時刻が属する開催日を返す。
// どの開催日にも属さない場合はok=falseを返す。
func (i TimetableItem) Day() (ConferenceDay, bool) {
	return DayOf(i.StartsAt)
}

// StartsTimeString は開始時刻を24時間表記の"HH:mm"（JST）で返す。
func (i TimetableItem) StartsTimeString() string {
	return i.StartsAt.In(JST).Format("15:04")
}

// EndsTimeString は終了時刻を24時間表記の"HH:mm"（JST）で返す。
func (i TimetableItem) EndsTimeString() string {
	return i.EndsAt.In(JST).Format("15:04")
}

// TimetableItemWithFavorite は項目とブックマーク状態を結合した表示用モデル。
type TimetableItemWithFavorite struct {
	TimetableItem
	IsFavorited bool
}
