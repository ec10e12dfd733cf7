// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: validation, source, storage, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeFetchFailed    = "FETCH_FAILED"
	ErrCodeParseFailed    = "PARSE_FAILED"
	ErrCodeInvalidRequest = "INVALID_REQUEST"
	ErrCodeStorageFailed  = "STORAGE_FAILED"
)

// NewFetchFailedError は日課ページの取得失敗エラーを生成する。
// ネットワークエラー、タイムアウト、2xx以外のステータスで発生する。
// 当日のキャッシュ状態は「未取得」のまま残るため、再試行で回復できる。
func NewFetchFailedError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeFetchFailed,
		Message:  fmt.Sprintf("日課ページの取得に失敗しました: %s", reason),
		Category: "source",
		Action:   "インターネット接続を確認し、しばらく待ってから再度お試しください。",
	}
}

// NewParseFailedError は日課ページの解析失敗エラーを生成する。
// マークアップとして解釈できない場合にのみ発生し、
// 期待するセクションが欠けているだけでは発生しない。
func NewParseFailedError() *APIError {
	return &APIError{
		Code:     ErrCodeParseFailed,
		Message:  "日課ページの解析に失敗しました。",
		Category: "source",
		Action:   "日課ページの形式が変更された可能性があります。時間をおいて再度お試しください。",
	}
}

// NewInvalidRequestError はリクエストボディ不正のエラーを生成する。
// 状態は一切変更されない。
func NewInvalidRequestError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  fmt.Sprintf("リクエストの形式が正しくありません: %s", reason),
		Category: "validation",
		Action:   "readingId（文字列）とcompleted（真偽値）を含むJSONを送信してください。",
	}
}

// NewStorageFailedError はストレージ操作の失敗エラーを生成する。
// バックエンド固有のエラーを汎用的な失敗として呼び出し元へ伝播する。
func NewStorageFailedError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeStorageFailed,
		Message:  fmt.Sprintf("読了状態の保存に失敗しました: %s", reason),
		Category: "storage",
		Action:   "しばらく待ってから再度お試しください。",
	}
}
