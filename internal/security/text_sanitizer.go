package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// TextSanitizer はスクレイプしたテキストからマークアップを除去する。
// 日課タイトルや祝祭日名は外部サイト由来の文字列であり、
// APIレスポンスに載せる前にタグを完全に取り除いてプレーンテキスト化する。
type TextSanitizer struct {
	policy *bluemonday.Policy
}

// NewTextSanitizer はTextSanitizerの新しいインスタンスを生成する。
func NewTextSanitizer() *TextSanitizer {
	// StrictPolicyは全てのHTML要素と属性を除去する
	return &TextSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// Clean はテキストからHTMLタグを除去し、前後の空白を取り除く。
// bluemondayはタグ除去後にテキストをエスケープするため、
// 実体参照を元の文字に戻してプレーンテキストとして返す。
// 冪等な操作であり、同じ入力には常に同じ出力を返す。
func (s *TextSanitizer) Clean(text string) string {
	sanitized := s.policy.Sanitize(text)
	return strings.TrimSpace(html.UnescapeString(sanitized))
}
