// Package scrape は日課ページのHTML解析と種別分類を提供する。
package scrape

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/hitoshi/lectio/internal/model"
)

// feastDayPrefixPattern は見出しの先頭にある日付スタンプを除去するパターン。
// 「June 1 — Feast of Pentecost」のようにemダッシュで区切られた接頭辞を落とし、
// 説明部分のみを残す。
var feastDayPrefixPattern = regexp.MustCompile(`^.*?—\s*`)

// PageParser は日課ページの生マークアップから祭日ラベルと
// 朗読箇所エントリの順序付きリストを抽出する。
// 重複排除と種別分類は行わない（下流の責務）。
type PageParser struct {
	baseURL string
}

// NewPageParser はPageParserを生成する。
// baseURLは相対リンクの解決に使用するサイトのオリジンを指定する。
func NewPageParser(baseURL string) *PageParser {
	return &PageParser{
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Parse は日課ページのマークアップを解析してScrapedPageを返す。
//
// 抽出規則:
//   - 祭日ラベルは最初のh2見出しのテキスト。emダッシュ区切りの接頭辞は除去する。
//     見出しが存在しない場合は空文字列。
//   - エントリはsection配下のリスト内アンカーから抽出する。
//     テキストとhrefの両方が（トリム後に）非空の場合のみ1エントリとなる。
//   - 相対hrefはbaseURLに対して絶対URLへ解決する。絶対hrefはそのまま通す。
//
// マークアップとして全く解釈できない場合のみPARSE_FAILEDを返す。
// 期待するセクションが欠けているだけならエントリ空のScrapedPageを返し、
// 対応は呼び出し元に委ねる。
func (p *PageParser) Parse(markup string) (*model.ScrapedPage, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, model.NewParseFailedError()
	}

	page := &model.ScrapedPage{}

	heading := strings.TrimSpace(doc.Find("h2").First().Text())
	page.FeastDay = strings.TrimSpace(feastDayPrefixPattern.ReplaceAllString(heading, ""))

	doc.Find("section ul li a").Each(func(_ int, sel *goquery.Selection) {
		title := strings.TrimSpace(sel.Text())
		href := strings.TrimSpace(sel.AttrOr("href", ""))
		if title == "" || href == "" {
			return
		}

		page.Readings = append(page.Readings, model.ScrapedReading{
			Title: title,
			URL:   p.resolveURL(href),
		})
	})

	return page, nil
}

// resolveURL は相対hrefをサイトオリジンの絶対URLへ解決する。
// スキーム付きのhrefは変更せず通す。
func (p *PageParser) resolveURL(href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	if !strings.HasPrefix(href, "/") {
		href = "/" + href
	}
	return p.baseURL + href
}
