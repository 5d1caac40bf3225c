// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, schedule, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeSessionNotFound  = "SESSION_NOT_FOUND"
	ErrCodeInvalidDay       = "INVALID_DAY"
	ErrCodeInvalidFilter    = "INVALID_FILTER"
	ErrCodeInvalidURL       = "INVALID_URL"
	ErrCodeSSRFBlocked      = "SSRF_BLOCKED"
	ErrCodeFetchFailed      = "FETCH_FAILED"
	ErrCodeParseFailed      = "PARSE_FAILED"
	ErrCodeProfileNotFound  = "PROFILE_NOT_FOUND"
	ErrCodeInvalidProfile   = "INVALID_PROFILE"
	ErrCodeAttendeeNotFound = "ATTENDEE_NOT_FOUND"
	ErrCodeUnauthorized     = "UNAUTHORIZED"
)

// NewSessionNotFoundError はセッション未検出エラーを生成する。
func NewSessionNotFoundError(itemID TimetableItemID) *APIError {
	return &APIError{
		Code:     ErrCodeSessionNotFound,
		Message:  fmt.Sprintf("指定されたセッションが見つかりません: %s", itemID),
		Category: "schedule",
		Action:   "セッションIDを確認してください。",
	}
}

// NewInvalidDayError は無効な開催日エラーを生成する。
func NewInvalidDayError(day string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidDay,
		Message:  fmt.Sprintf("無効な開催日です: %s", day),
		Category: "validation",
		Action:   "開催日には workday、day1、day2 のいずれかを指定してください。",
	}
}

// NewInvalidFilterError は無効なフィルタエラーを生成する。
func NewInvalidFilterError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidFilter,
		Message:  fmt.Sprintf("無効なフィルタです: %s", reason),
		Category: "validation",
		Action:   "フィルタパラメータの値を確認してください。",
	}
}

// NewInvalidURLError は無効なURLエラーを生成する。
func NewInvalidURLError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidURL,
		Message:  fmt.Sprintf("無効なURLです: %s", reason),
		Category: "validation",
		Action:   "正しいURL形式（http:// または https:// で始まるURL）を設定してください。",
	}
}

// NewSSRFBlockedError はSSRFブロックエラーを生成する。
func NewSSRFBlockedError() *APIError {
	return &APIError{
		Code:     ErrCodeSSRFBlocked,
		Message:  "セキュリティポリシーにより、指定されたURLへのアクセスがブロックされました。",
		Category: "validation",
		Action:   "公開されているWebサイトのURLを設定してください。ローカルネットワークやプライベートIPへのアクセスは許可されていません。",
	}
}

// NewFetchFailedError はフェッチ失敗エラーを生成する。
func NewFetchFailedError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeFetchFailed,
		Message:  fmt.Sprintf("スケジュールの取得に失敗しました: %s", reason),
		Category: "schedule",
		Action:   "URLが正しいか確認し、しばらく待ってから再度お試しください。",
	}
}

// NewParseFailedError はパース失敗エラーを生成する。
func NewParseFailedError() *APIError {
	return &APIError{
		Code:     ErrCodeParseFailed,
		Message:  "スケジュールデータの解析に失敗しました。",
		Category: "schedule",
		Action:   "配信されているJSONの形式を確認してください。",
	}
}

// NewProfileNotFoundError はプロフィール未検出エラーを生成する。
func NewProfileNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeProfileNotFound,
		Message:  "プロフィールカードがまだ作成されていません。",
		Category: "validation",
		Action:   "プロフィールカードを作成してください。",
	}
}

// NewInvalidProfileError は無効なプロフィールエラーを生成する。
func NewInvalidProfileError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidProfile,
		Message:  fmt.Sprintf("無効なプロフィールです: %s", reason),
		Category: "validation",
		Action:   "入力内容を確認してください。",
	}
}

// NewAttendeeNotFoundError は参加者未検出エラーを生成する。
func NewAttendeeNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeAttendeeNotFound,
		Message:  "参加者が見つかりません。",
		Category: "auth",
		Action:   "デバイスを再登録してください。",
	}
}

// NewUnauthorizedError は認証エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "デバイスを登録してください。",
	}
}
