package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/takumi/kaigihub/internal/model"
)

// EventListerInterface はイベントマップ一覧の取得インターフェース。
// repository.EventRepositoryの部分集合として定義する。
type EventListerInterface interface {
	ListAll(ctx context.Context) ([]model.EventMapEvent, error)
}

// DirectoryListerInterface は名簿一覧の取得インターフェース。
// repository.DirectoryRepositoryの部分集合として定義する。
type DirectoryListerInterface interface {
	ListContributors(ctx context.Context) ([]model.Contributor, error)
	ListStaff(ctx context.Context) ([]model.Staff, error)
	ListSponsors(ctx context.Context) ([]model.Sponsor, error)
}

// NewsListerInterface はお知らせ一覧の取得インターフェース。
type NewsListerInterface interface {
	ListRecent(ctx context.Context, limit int) ([]model.NewsItem, error)
}

// InfoHandler はイベントマップ・名簿・お知らせのHTTPハンドラー。
// いずれも認証不要の読み取り専用エンドポイント。
type InfoHandler struct {
	events    EventListerInterface
	directory DirectoryListerInterface
	news      NewsListerInterface
}

// NewInfoHandler はInfoHandlerを生成する。
func NewInfoHandler(events EventListerInterface, directory DirectoryListerInterface, news NewsListerInterface) *InfoHandler {
	return &InfoHandler{
		events:    events,
		directory: directory,
		news:      news,
	}
}

// --- レスポンス型 ---

// eventResponse はイベントマップ項目のJSON表現。
type eventResponse struct {
	ID             string                 `json:"id"`
	Name           multiLangTextResponse  `json:"name"`
	Room           roomResponse           `json:"room"`
	Description    multiLangTextResponse  `json:"description"`
	MoreDetailsURL string                 `json:"more_details_url,omitempty"`
	Message        *multiLangTextResponse `json:"message,omitempty"`
}

// personResponse はコントリビューター・スタッフ共通のJSON表現。
type personResponse struct {
	ID         int    `json:"id"`
	Username   string `json:"username"`
	IconURL    string `json:"icon_url"`
	ProfileURL string `json:"profile_url"`
}

// sponsorResponse はスポンサーのJSON表現。
type sponsorResponse struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	LogoURL string `json:"logo_url"`
	Plan    string `json:"plan"`
	Link    string `json:"link"`
}

// newsItemResponse はお知らせ記事のJSON表現。
type newsItemResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Link        string     `json:"link"`
	Summary     string     `json:"summary"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

// ListEvents はイベントマップ一覧を取得する。
// GET /api/events
func (h *InfoHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.events.ListAll(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	responses := make([]eventResponse, len(events))
	for i, e := range events {
		var message *multiLangTextResponse
		if e.Message != nil {
			m := toMultiLangText(*e.Message)
			message = &m
		}
		responses[i] = eventResponse{
			ID:          e.ID,
			Name:        toMultiLangText(e.Name),
			Description: toMultiLangText(e.Description),
			Room: roomResponse{
				ID:   e.Room.ID,
				Name: toMultiLangText(e.Room.Name),
				Type: string(e.Room.Type),
				Sort: e.Room.Sort,
			},
			MoreDetailsURL: e.MoreDetailsURL,
			Message:        message,
		}
	}

	writeJSON(w, http.StatusOK, map[string][]eventResponse{"events": responses})
}

// ListContributors はコントリビューター一覧を取得する。
// GET /api/contributors
func (h *InfoHandler) ListContributors(w http.ResponseWriter, r *http.Request) {
	contributors, err := h.directory.ListContributors(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	responses := make([]personResponse, len(contributors))
	for i, c := range contributors {
		responses[i] = personResponse{
			ID:         c.ID,
			Username:   c.Username,
			IconURL:    c.IconURL,
			ProfileURL: c.ProfileURL,
		}
	}

	writeJSON(w, http.StatusOK, map[string][]personResponse{"contributors": responses})
}

// ListStaff はスタッフ一覧を取得する。
// GET /api/staff
func (h *InfoHandler) ListStaff(w http.ResponseWriter, r *http.Request) {
	staff, err := h.directory.ListStaff(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	responses := make([]personResponse, len(staff))
	for i, s := range staff {
		responses[i] = personResponse{
			ID:         s.ID,
			Username:   s.Username,
			IconURL:    s.IconURL,
			ProfileURL: s.ProfileURL,
		}
	}

	writeJSON(w, http.StatusOK, map[string][]personResponse{"staff": responses})
}

// ListSponsors はスポンサー一覧をプラン順で取得する。
// GET /api/sponsors
func (h *InfoHandler) ListSponsors(w http.ResponseWriter, r *http.Request) {
	sponsors, err := h.directory.ListSponsors(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	responses := make([]sponsorResponse, len(sponsors))
	for i, s := range sponsors {
		responses[i] = sponsorResponse{
			ID:      s.ID,
			Name:    s.Name,
			LogoURL: s.LogoURL,
			Plan:    string(s.Plan),
			Link:    s.Link,
		}
	}

	writeJSON(w, http.StatusOK, map[string][]sponsorResponse{"sponsors": responses})
}

// ListNews はお知らせ一覧を公開日時降順で取得する。
// GET /api/news
func (h *InfoHandler) ListNews(w http.ResponseWriter, r *http.Request) {
	items, err := h.news.ListRecent(r.Context(), 0) // 0はサービス側デフォルト件数
	if err != nil {
		handleServiceError(w, err)
		return
	}

	responses := make([]newsItemResponse, len(items))
	for i, n := range items {
		responses[i] = newsItemResponse{
			ID:          n.ID,
			Title:       n.Title,
			Link:        n.Link,
			Summary:     n.Summary,
			PublishedAt: n.PublishedAt,
		}
	}

	writeJSON(w, http.StatusOK, map[string][]newsItemResponse{"news": responses})
}
