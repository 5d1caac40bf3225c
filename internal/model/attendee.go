// Package model はドメインモデルを定義する。
package model

import "time"

// Attendee はデバイス登録された参加者を表す。
// 外部IdPによる認証は行わず、デバイスごとに匿名の参加者を1つ発行する。
type Attendee struct {
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AuthSession は参加者デバイスの認証セッションを表す。
type AuthSession struct {
	ID         string
	AttendeeID string
	ExpiresAt  time.Time
	CreatedAt  time.Time
}

// ProfileCardTheme はプロフィールカードのテーマを表す。
type ProfileCardTheme string

const (
	// ThemeDarkPill はダークのピル型テーマ。
	ThemeDarkPill ProfileCardTheme = "dark_pill"
	// ThemeLightPill はライトのピル型テーマ。
	ThemeLightPill ProfileCardTheme = "light_pill"
	// ThemeDarkDiamond はダークのダイヤ型テーマ。
	ThemeDarkDiamond ProfileCardTheme = "dark_diamond"
	// ThemeLightDiamond はライトのダイヤ型テーマ。
	ThemeLightDiamond ProfileCardTheme = "light_diamond"
)

// Profile は参加者のプロフィールカードを表す。
type Profile struct {
	AttendeeID string
	NickName   string
	Occupation string
	Link       string
	ImagePath  string
	Theme      ProfileCardTheme
	UpdatedAt  time.Time
}
