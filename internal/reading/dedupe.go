// Package reading は日課の取得・キャッシュ・読了状態管理のドメインロジックを提供する。
package reading

import "github.com/hitoshi/lectio/internal/model"

// Dedupe は1回のフェッチバッチ内の重複エントリを除去する。
// (title, url) の完全一致で比較し、最初の出現を残して以降を捨てる。
// 冪等であり、既に重複のない列に適用しても結果は変わらない。
// タイトルのみ、またはURLのみが一致するエントリは重複とみなさない。
func Dedupe(entries []model.ScrapedReading) []model.ScrapedReading {
	if len(entries) == 0 {
		return entries
	}

	seen := make(map[string]struct{}, len(entries))
	deduped := make([]model.ScrapedReading, 0, len(entries))

	for _, e := range entries {
		key := e.Title + "|" + e.URL
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		deduped = append(deduped, e)
	}

	return deduped
}
