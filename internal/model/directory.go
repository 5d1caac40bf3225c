// Package model はドメインモデルを定義する。
package model

// Contributor はアプリへのコントリビューターを表す。
type Contributor struct {
	ID         int
	Username   string
	IconURL    string
	ProfileURL string
}

// Staff はカンファレンスの運営スタッフを表す。
type Staff struct {
	ID         int
	Username   string
	IconURL    string
	ProfileURL string
}

// SponsorPlan はスポンサープランの区分を表す。
type SponsorPlan string

const (
	// SponsorPlanPlatinum はプラチナスポンサー。
	SponsorPlanPlatinum SponsorPlan = "platinum"
	// SponsorPlanGold はゴールドスポンサー。
	SponsorPlanGold SponsorPlan = "gold"
	// SponsorPlanSupporter はサポーター。
	SponsorPlanSupporter SponsorPlan = "supporter"
)

// Sponsor はカンファレンスのスポンサー企業を表す。
type Sponsor struct {
	ID      int
	Name    string
	LogoURL string
	Plan    SponsorPlan
	Link    string
}
