package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/takumi/kaigihub/internal/model"
)

// sessionizeTimeLayout はスケジュールJSONの日時形式。タイムゾーン情報を
// 持たないローカル日時で、会場時刻（JST）として解釈する。
const sessionizeTimeLayout = "2006-01-02T15:04:05"

// MapItems は応答全体をドメインモデルのタイムテーブル項目に変換する。
// 未知のルーム・カテゴリを参照するセッションは変換エラーになる。
func MapItems(resp *SessionsAllResponse) ([]model.TimetableItem, error) {
	rooms := make(map[int]model.Room, len(resp.Rooms))
	for _, r := range resp.Rooms {
		rooms[r.ID] = mapRoom(r)
	}

	speakers := make(map[string]model.Speaker, len(resp.Speakers))
	for _, s := range resp.Speakers {
		speakers[s.ID] = model.Speaker{
			ID:      s.ID,
			Name:    s.FullName,
			IconURL: s.ProfilePicture,
			Bio:     s.Bio,
			TagLine: s.TagLine,
		}
	}

	// カテゴリグループを展開し、選択肢IDから直接引けるようにする
	categories := make(map[int]model.TimetableCategory)
	for _, group := range resp.Categories {
		for _, item := range group.Items {
			categories[item.ID] = model.TimetableCategory{
				ID:    item.ID,
				Title: model.MultiLangText{JaTitle: item.Name.Ja, EnTitle: item.Name.En},
			}
		}
	}

	items := make([]model.TimetableItem, 0, len(resp.Sessions))
	for _, s := range resp.Sessions {
		item, err := mapSession(s, rooms, speakers, categories)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, nil
}

func mapSession(
	s SessionResponse,
	rooms map[int]model.Room,
	speakers map[string]model.Speaker,
	categories map[int]model.TimetableCategory,
) (*model.TimetableItem, error) {
	room, ok := rooms[s.RoomID]
	if !ok {
		return nil, fmt.Errorf("セッション %s が未知のルーム %d を参照しています", s.ID, s.RoomID)
	}
	category, ok := categories[s.SessionCategoryItemID]
	if !ok {
		return nil, fmt.Errorf("セッション %s が未知のカテゴリ %d を参照しています", s.ID, s.SessionCategoryItemID)
	}

	startsAt, err := parseSessionTime(s.StartsAt)
	if err != nil {
		return nil, fmt.Errorf("セッション %s の開始時刻が不正です: %w", s.ID, err)
	}
	endsAt, err := parseSessionTime(s.EndsAt)
	if err != nil {
		return nil, fmt.Errorf("セッション %s の終了時刻が不正です: %w", s.ID, err)
	}

	kind := model.ItemKindSession
	if s.IsServiceSession {
		kind = model.ItemKindSpecial
	}

	item := &model.TimetableItem{
		ID:             model.TimetableItemID(s.ID),
		Kind:           kind,
		Title:          model.MultiLangText{JaTitle: s.Title.Ja, EnTitle: s.Title.En},
		StartsAt:       startsAt,
		EndsAt:         endsAt,
		Category:       category,
		SessionType:    model.TimetableSessionType(s.SessionType),
		Room:           room,
		TargetAudience: s.TargetAudience,
		Language: model.TimetableLanguage{
			LangOfSpeaker:          s.Language,
			IsInterpretationTarget: s.InterpretationTarget,
		},
		Description: mapDescription(s),
	}

	if s.Asset != nil {
		if s.Asset.VideoURL != nil {
			item.Asset.VideoURL = *s.Asset.VideoURL
		}
		if s.Asset.SlideURL != nil {
			item.Asset.SlideURL = *s.Asset.SlideURL
		}
	}

	if s.Message != nil && (s.Message.Ja != "" || s.Message.En != "") {
		item.Message = &model.MultiLangText{JaTitle: s.Message.Ja, EnTitle: s.Message.En}
	}

	for _, speakerID := range s.Speakers {
		speaker, ok := speakers[speakerID]
		if !ok {
			return nil, fmt.Errorf("セッション %s が未知のスピーカー %s を参照しています", s.ID, speakerID)
		}
		item.Speakers = append(item.Speakers, speaker)
	}

	return item, nil
}

// mapDescription はi18nDescを優先し、なければdescriptionを両言語に使う。
func mapDescription(s SessionResponse) model.MultiLangText {
	if s.I18nDesc != nil && (s.I18nDesc.Ja != "" || s.I18nDesc.En != "") {
		return model.MultiLangText{JaTitle: s.I18nDesc.Ja, EnTitle: s.I18nDesc.En}
	}
	if s.Description != nil {
		return model.MultiLangText{JaTitle: *s.Description, EnTitle: *s.Description}
	}
	return model.MultiLangText{}
}

func mapRoom(r RoomResponse) model.Room {
	return model.Room{
		ID:   r.ID,
		Name: model.MultiLangText{JaTitle: r.Name.Ja, EnTitle: r.Name.En},
		Type: roomTypeFor(r.Name.En),
		Sort: r.Sort,
	}
}

// roomTypeFor は英語ルーム名からルーム種別を解決する。
// 未知の名前は頭文字で推定し、どれにも該当しない場合はJ扱いにする。
func roomTypeFor(enName string) model.RoomType {
	switch strings.ToUpper(enName) {
	case "JELLYFISH":
		return model.RoomTypeJ
	case "KOALA":
		return model.RoomTypeK
	case "LADYBUG":
		return model.RoomTypeL
	case "MEERKAT":
		return model.RoomTypeM
	case "NARWHAL":
		return model.RoomTypeN
	}

	upper := strings.ToUpper(enName)
	for prefix, roomType := range map[string]model.RoomType{
		"J": model.RoomTypeJ,
		"K": model.RoomTypeK,
		"L": model.RoomTypeL,
		"M": model.RoomTypeM,
		"N": model.RoomTypeN,
	} {
		if strings.HasPrefix(upper, prefix) {
			return roomType
		}
	}
	return model.RoomTypeJ
}

// parseSessionTime はタイムゾーンなしのローカル日時をJSTとして解釈する。
// オフセット付きのRFC3339形式も受け付ける。
func parseSessionTime(value string) (time.Time, error) {
	if t, err := time.ParseInLocation(sessionizeTimeLayout, value, model.JST); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}
