// Package attendee はデバイス登録・認証セッション・プロフィールカードの
// ドメインロジックを提供する。
package attendee

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/takumi/kaigihub/internal/model"
	"github.com/takumi/kaigihub/internal/repository"
)

// ServiceConfig は参加者サービスの設定。
type ServiceConfig struct {
	SessionMaxAge int // 認証セッション有効期間（秒）
}

// フィールド長の上限（文字数）。
const (
	maxNickNameLength   = 64
	maxOccupationLength = 128
	maxLinkLength       = 2048
)

// Service は参加者に関するビジネスロジックを提供する。
// 外部IdPは使わず、デバイスごとに匿名の参加者を1つ発行する。
type Service struct {
	attendeeRepo repository.AttendeeRepository
	sessionRepo  repository.AuthSessionRepository
	profileRepo  repository.ProfileRepository
	config       ServiceConfig
}

// NewService はServiceを生成する。
func NewService(
	attendeeRepo repository.AttendeeRepository,
	sessionRepo repository.AuthSessionRepository,
	profileRepo repository.ProfileRepository,
	config ServiceConfig,
) *Service {
	return &Service{
		attendeeRepo: attendeeRepo,
		sessionRepo:  sessionRepo,
		profileRepo:  profileRepo,
		config:       config,
	}
}

// RegisterDevice は新しい参加者と認証セッションを発行する。
// 参加者とセッションは同一トランザクションで作成される。
func (s *Service) RegisterDevice(ctx context.Context) (*model.Attendee, *model.AuthSession, error) {
	sessionID, err := generateSessionID()
	if err != nil {
		return nil, nil, fmt.Errorf("セッションIDの生成に失敗しました: %w", err)
	}

	now := time.Now()
	attendee := &model.Attendee{
		ID:        uuid.New().String(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	session := &model.AuthSession{
		ID:         sessionID,
		AttendeeID: attendee.ID,
		ExpiresAt:  now.Add(time.Duration(s.config.SessionMaxAge) * time.Second),
		CreatedAt:  now,
	}

	if err := s.attendeeRepo.CreateWithSession(ctx, attendee, session); err != nil {
		return nil, nil, err
	}

	slog.Info("デバイスを登録しました", slog.String("attendee_id", attendee.ID))
	return attendee, session, nil
}

// GetCurrentAttendee はセッションIDから現在の参加者を取得する。
// セッションが無効・期限切れ、または参加者が存在しない場合はUNAUTHORIZEDを返す。
func (s *Service) GetCurrentAttendee(ctx context.Context, sessionID string) (*model.Attendee, error) {
	if sessionID == "" {
		return nil, model.NewUnauthorizedError()
	}

	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("認証セッションの取得に失敗しました: %w", err)
	}
	if session == nil {
		return nil, model.NewUnauthorizedError()
	}

	attendee, err := s.attendeeRepo.FindByID(ctx, session.AttendeeID)
	if err != nil {
		return nil, fmt.Errorf("参加者の取得に失敗しました: %w", err)
	}
	if attendee == nil {
		return nil, model.NewAttendeeNotFoundError()
	}

	return attendee, nil
}

// Logout は認証セッションを破棄する。
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return model.NewUnauthorizedError()
	}

	if err := s.sessionRepo.DeleteByID(ctx, sessionID); err != nil {
		return err
	}

	slog.Info("ログアウトしました", slog.String("session_id", sessionID))
	return nil
}

// GetProfile は参加者のプロフィールカードを取得する。
// 未作成の場合はPROFILE_NOT_FOUNDを返す。
func (s *Service) GetProfile(ctx context.Context, attendeeID string) (*model.Profile, error) {
	profile, err := s.profileRepo.FindByAttendeeID(ctx, attendeeID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, model.NewProfileNotFoundError()
	}
	return profile, nil
}

// ProfileInput はプロフィール更新の入力。
type ProfileInput struct {
	NickName   string
	Occupation string
	Link       string
	ImagePath  string
	Theme      model.ProfileCardTheme
}

// UpsertProfile はプロフィールカードを検証して保存する。
func (s *Service) UpsertProfile(ctx context.Context, attendeeID string, input ProfileInput) (*model.Profile, error) {
	if err := validateProfileInput(input); err != nil {
		return nil, err
	}

	profile := &model.Profile{
		AttendeeID: attendeeID,
		NickName:   strings.TrimSpace(input.NickName),
		Occupation: strings.TrimSpace(input.Occupation),
		Link:       strings.TrimSpace(input.Link),
		ImagePath:  input.ImagePath,
		Theme:      input.Theme,
		UpdatedAt:  time.Now(),
	}
	if profile.Theme == "" {
		profile.Theme = model.ThemeDarkPill
	}

	if err := s.profileRepo.Upsert(ctx, profile); err != nil {
		return nil, err
	}

	slog.Info("プロフィールを保存しました", slog.String("attendee_id", attendeeID))
	return profile, nil
}

// validateProfileInput はプロフィール入力を検証する。
func validateProfileInput(input ProfileInput) error {
	nickName := strings.TrimSpace(input.NickName)
	if nickName == "" {
		return model.NewInvalidProfileError("ニックネームは必須です")
	}
	if utf8.RuneCountInString(nickName) > maxNickNameLength {
		return model.NewInvalidProfileError(fmt.Sprintf("ニックネームは%d文字以内で入力してください", maxNickNameLength))
	}
	if utf8.RuneCountInString(input.Occupation) > maxOccupationLength {
		return model.NewInvalidProfileError(fmt.Sprintf("職業は%d文字以内で入力してください", maxOccupationLength))
	}

	link := strings.TrimSpace(input.Link)
	if link != "" {
		if len(link) > maxLinkLength {
			return model.NewInvalidProfileError(fmt.Sprintf("リンクは%d文字以内で入力してください", maxLinkLength))
		}
		parsed, err := url.Parse(link)
		if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
			return model.NewInvalidProfileError("リンクはhttp(s)のURLで入力してください")
		}
	}

	switch input.Theme {
	case "", model.ThemeDarkPill, model.ThemeLightPill, model.ThemeDarkDiamond, model.ThemeLightDiamond:
	default:
		return model.NewInvalidProfileError(fmt.Sprintf("未知のテーマです: %s", input.Theme))
	}

	return nil
}

// generateSessionID は暗号的に安全なセッションIDを生成する。
func generateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
