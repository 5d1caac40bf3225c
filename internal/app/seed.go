package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/takumi/kaigihub/internal/config"
	"github.com/takumi/kaigihub/internal/model"
	"github.com/takumi/kaigihub/internal/repository"
)

// directorySeed は名簿シードファイルのJSON構造。
type directorySeed struct {
	Contributors []struct {
		ID         int    `json:"id"`
		Username   string `json:"username"`
		IconURL    string `json:"icon_url"`
		ProfileURL string `json:"profile_url"`
	} `json:"contributors"`
	Staff []struct {
		ID         int    `json:"id"`
		Username   string `json:"username"`
		IconURL    string `json:"icon_url"`
		ProfileURL string `json:"profile_url"`
	} `json:"staff"`
	Sponsors []struct {
		ID      int    `json:"id"`
		Name    string `json:"name"`
		LogoURL string `json:"logo_url"`
		Plan    string `json:"plan"`
		Link    string `json:"link"`
	} `json:"sponsors"`
}

// eventMapSeed はイベントマップシードファイルのJSON構造。
type eventMapSeed struct {
	Events []struct {
		ID   string       `json:"id"`
		Name seedLangText `json:"name"`
		Room struct {
			ID   int          `json:"id"`
			Name seedLangText `json:"name"`
			Type string       `json:"type"`
			Sort int          `json:"sort"`
		} `json:"room"`
		Description    seedLangText  `json:"description"`
		MoreDetailsURL string        `json:"more_details_url"`
		Message        *seedLangText `json:"message"`
	} `json:"events"`
}

type seedLangText struct {
	Ja string `json:"ja"`
	En string `json:"en"`
}

func (t seedLangText) toModel() model.MultiLangText {
	return model.MultiLangText{JaTitle: t.Ja, EnTitle: t.En}
}

// loadSeedData は設定で指定されたシードファイルをDBに反映する。
// ファイルパスが未設定の項目はスキップする。
func loadSeedData(
	ctx context.Context,
	cfg *config.Config,
	directoryRepo repository.DirectoryRepository,
	eventRepo repository.EventRepository,
) error {
	if cfg.DirectoryFile != "" {
		if err := loadDirectorySeed(ctx, cfg.DirectoryFile, directoryRepo); err != nil {
			return fmt.Errorf("名簿シードの読み込みに失敗しました: %w", err)
		}
	}

	if cfg.EventMapFile != "" {
		if err := loadEventMapSeed(ctx, cfg.EventMapFile, eventRepo); err != nil {
			return fmt.Errorf("イベントマップシードの読み込みに失敗しました: %w", err)
		}
	}

	return nil
}

// loadDirectorySeed は名簿シードファイルを読み込み、
// コントリビューター・スタッフ・スポンサーを全件差し替える。
func loadDirectorySeed(ctx context.Context, path string, repo repository.DirectoryRepository) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("ファイルの読み込みに失敗しました: %w", err)
	}

	var seed directorySeed
	if err := json.Unmarshal(data, &seed); err != nil {
		return fmt.Errorf("JSONの解析に失敗しました: %w", err)
	}

	contributors := make([]model.Contributor, len(seed.Contributors))
	for i, c := range seed.Contributors {
		contributors[i] = model.Contributor{
			ID:         c.ID,
			Username:   c.Username,
			IconURL:    c.IconURL,
			ProfileURL: c.ProfileURL,
		}
	}
	if err := repo.ReplaceContributors(ctx, contributors); err != nil {
		return fmt.Errorf("コントリビューターの差し替えに失敗しました: %w", err)
	}

	staff := make([]model.Staff, len(seed.Staff))
	for i, s := range seed.Staff {
		staff[i] = model.Staff{
			ID:         s.ID,
			Username:   s.Username,
			IconURL:    s.IconURL,
			ProfileURL: s.ProfileURL,
		}
	}
	if err := repo.ReplaceStaff(ctx, staff); err != nil {
		return fmt.Errorf("スタッフの差し替えに失敗しました: %w", err)
	}

	sponsors := make([]model.Sponsor, len(seed.Sponsors))
	for i, s := range seed.Sponsors {
		sponsors[i] = model.Sponsor{
			ID:      s.ID,
			Name:    s.Name,
			LogoURL: s.LogoURL,
			Plan:    model.SponsorPlan(s.Plan),
			Link:    s.Link,
		}
	}
	if err := repo.ReplaceSponsors(ctx, sponsors); err != nil {
		return fmt.Errorf("スポンサーの差し替えに失敗しました: %w", err)
	}

	slog.Info("directory seed loaded",
		slog.String("path", path),
		slog.Int("contributors", len(contributors)),
		slog.Int("staff", len(staff)),
		slog.Int("sponsors", len(sponsors)),
	)

	return nil
}

// loadEventMapSeed はイベントマップシードファイルを読み込み、全件差し替える。
func loadEventMapSeed(ctx context.Context, path string, repo repository.EventRepository) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("ファイルの読み込みに失敗しました: %w", err)
	}

	var seed eventMapSeed
	if err := json.Unmarshal(data, &seed); err != nil {
		return fmt.Errorf("JSONの解析に失敗しました: %w", err)
	}

	events := make([]model.EventMapEvent, len(seed.Events))
	for i, e := range seed.Events {
		var message *model.MultiLangText
		if e.Message != nil {
			m := e.Message.toModel()
			message = &m
		}
		events[i] = model.EventMapEvent{
			ID:   e.ID,
			Name: e.Name.toModel(),
			Room: model.Room{
				ID:   e.Room.ID,
				Name: e.Room.Name.toModel(),
				Type: model.RoomType(e.Room.Type),
				Sort: e.Room.Sort,
			},
			Description:    e.Description.toModel(),
			MoreDetailsURL: e.MoreDetailsURL,
			Message:        message,
		}
	}
	if err := repo.ReplaceAll(ctx, events); err != nil {
		return fmt.Errorf("イベントの差し替えに失敗しました: %w", err)
	}

	slog.Info("event map seed loaded",
		slog.String("path", path),
		slog.Int("events", len(events)),
	)

	return nil
}
