package scrape

import (
	"strings"

	"github.com/hitoshi/lectio/internal/model"
)

// gospelKeywords は福音書と判定するキーワード。
var gospelKeywords = []string{"matthew", "mark", "luke", "john"}

// epistleKeywords は使徒書と判定するキーワード。
// "john"は福音書側にも含まれるが、福音書の判定が先に行われるため、
// "john"を含むタイトルは常にGospelに分類される（リスト順による意図的なタイブレーク）。
var epistleKeywords = []string{
	"romans", "corinthians", "galatians", "ephesians",
	"philippians", "colossians", "thessalonians", "timothy",
	"titus", "philemon", "hebrews", "james", "peter", "john",
	"jude", "revelation", "acts",
}

// vespersKeywords は晩課と判定するキーワード。
var vespersKeywords = []string{"wisdom", "vespers"}

// ClassifyReading はタイトル文字列から日課の種別を判定する。
// 大文字小文字を区別しない部分一致で、以下の優先順位で最初に一致したものを返す:
//
//	Gospel > Epistle > Vespers
//
// どのキーワードにも一致しない場合はReadingTypeNone（空文字列）を返す。
// 純粋関数であり、副作用を持たず、失敗しない。
func ClassifyReading(title string) model.ReadingType {
	lower := strings.ToLower(title)

	if containsAny(lower, gospelKeywords) {
		return model.ReadingTypeGospel
	}
	if containsAny(lower, epistleKeywords) {
		return model.ReadingTypeEpistle
	}
	if containsAny(lower, vespersKeywords) {
		return model.ReadingTypeVespers
	}

	return model.ReadingTypeNone
}

// containsAny はsがキーワードのいずれかを部分文字列として含むかを返す。
func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
