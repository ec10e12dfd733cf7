package model

import (
	"crypto/sha256"
	"fmt"
)

// DeriveReadingID はタイトルとURLから日課の安定した識別子を導出する。
// 日課ページは外部IDを提供しないため、識別子はコンテンツのみから決定する。
// 同一の (title, url) は処理順序や分類結果に依存せず常に同一のIDを生成し、
// タイトルとURLが変わらない限り、再導出しても記録済みの読了状態と対応し続ける。
func DeriveReadingID(title, url string) string {
	data := fmt.Sprintf("%s|%s", title, url)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}
