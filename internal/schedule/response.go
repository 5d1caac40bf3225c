// Package schedule はスケジュールJSONの取り込みロジックを提供する。
package schedule

import (
	"encoding/json"
	"fmt"
)

// LocaledResponse は日英2言語のテキストを持つ応答要素。
type LocaledResponse struct {
	Ja string `json:"ja"`
	En string `json:"en"`
}

// SessionAssetResponse はセッション資料リンクの応答要素。
type SessionAssetResponse struct {
	VideoURL *string `json:"videoUrl"`
	SlideURL *string `json:"slideUrl"`
}

// SessionResponse はスケジュールJSONのセッション1件。
type SessionResponse struct {
	ID                    string                `json:"id"`
	IsServiceSession      bool                  `json:"isServiceSession"`
	Title                 LocaledResponse       `json:"title"`
	Speakers              []string              `json:"speakers"`
	Description           *string               `json:"description"`
	I18nDesc              *LocaledResponse      `json:"i18nDesc"`
	StartsAt              string                `json:"startsAt"`
	EndsAt                string                `json:"endsAt"`
	Language              string                `json:"language"`
	RoomID                int                   `json:"roomId"`
	SessionCategoryItemID int                   `json:"sessionCategoryItemId"`
	SessionType           string                `json:"sessionType"`
	Message               *LocaledResponse      `json:"message"`
	TargetAudience        string                `json:"targetAudience"`
	InterpretationTarget  bool                  `json:"interpretationTarget"`
	Asset                 *SessionAssetResponse `json:"asset"`
}

// RoomResponse はスケジュールJSONのルーム1件。
type RoomResponse struct {
	ID   int             `json:"id"`
	Name LocaledResponse `json:"name"`
	Sort int             `json:"sort"`
}

// SpeakerResponse はスケジュールJSONのスピーカー1件。
type SpeakerResponse struct {
	ID             string `json:"id"`
	FullName       string `json:"fullName"`
	Bio            string `json:"bio"`
	TagLine        string `json:"tagLine"`
	ProfilePicture string `json:"profilePicture"`
}

// CategoryItemResponse はカテゴリグループ内の選択肢1件。
// セッションはsessionCategoryItemIdでこのIDを参照する。
type CategoryItemResponse struct {
	ID   int             `json:"id"`
	Name LocaledResponse `json:"name"`
	Sort int             `json:"sort"`
}

// CategoryResponse はスケジュールJSONのカテゴリグループ1件。
type CategoryResponse struct {
	ID    int                    `json:"id"`
	Sort  int                    `json:"sort"`
	Title LocaledResponse        `json:"title"`
	Items []CategoryItemResponse `json:"items"`
}

// SessionsAllResponse はスケジュールJSONのルート要素。
type SessionsAllResponse struct {
	Sessions   []SessionResponse  `json:"sessions"`
	Rooms      []RoomResponse     `json:"rooms"`
	Speakers   []SpeakerResponse  `json:"speakers"`
	Categories []CategoryResponse `json:"categories"`
}

// Parse はスケジュールJSONのバイト列をパースする。
func Parse(data []byte) (*SessionsAllResponse, error) {
	var resp SessionsAllResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("スケジュールJSONのパースに失敗しました: %w", err)
	}
	return &resp, nil
}
