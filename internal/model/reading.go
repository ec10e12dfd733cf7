// Package model はドメインモデルを定義する。
package model

import "time"

// Reading は特定の日付の聖書日課（朗読箇所）を表す。
// IDはタイトルとURLから導出されるコンテンツハッシュであり、
// 外部ソースからIDが付与されることはない。
// 作成後は不変として扱い、上書き更新は行わない。
type Reading struct {
	ID          string
	Date        string // YYYY-MM-DD形式
	Title       string
	URL         string
	ReadingType ReadingType // 未分類の場合は空文字列
	FeastDay    string
	CreatedAt   time.Time
}

// ReadingType は日課の種別を表す。
type ReadingType string

const (
	// ReadingTypeGospel は福音書の朗読。
	ReadingTypeGospel ReadingType = "Gospel"
	// ReadingTypeEpistle は使徒書の朗読。
	ReadingTypeEpistle ReadingType = "Epistle"
	// ReadingTypeVespers は晩課の朗読。
	ReadingTypeVespers ReadingType = "Vespers"
	// ReadingTypeNone は未分類を表す。
	ReadingTypeNone ReadingType = ""
)

// InsertReading は保存前の日課データを表す。
// IDとCreatedAtはストア側で付与される。
type InsertReading struct {
	Date        string
	Title       string
	URL         string
	ReadingType ReadingType
	FeastDay    string
}

// ReadingProgress はユーザーごとの日課の読了状態を表す。
// (reading_id, date) の組につき論理的に1件のみ存在し、
// 2回目以降の更新は既存エントリを上書きする（UPSERT）。
type ReadingProgress struct {
	ID          string
	ReadingID   string
	Date        string
	Completed   bool
	CompletedAt *time.Time // Completedがtrueに遷移した時刻。falseに戻すとクリアされる。
}

// ScrapedReading はページパーサーが抽出した未保存の生エントリを表す。
// 重複排除と種別分類は下流の責務であり、この段階では行われない。
type ScrapedReading struct {
	Title string
	URL   string
}

// ScrapedPage はページパーサーの抽出結果を表す。
type ScrapedPage struct {
	FeastDay string
	Readings []ScrapedReading
}

// DailyReadings は日課一覧と読了状態を結合した表示用バンドル。
// ReadingとReadingProgressの日付JOINで都度算出され、それ自体は保存されない。
type DailyReadings struct {
	Date     string                `json:"date"`
	FeastDay string                `json:"feastDay,omitempty"`
	Readings []ReadingWithProgress `json:"readings"`
}

// ReadingWithProgress は日課と読了状態を結合したモデル。
type ReadingWithProgress struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	URL         string      `json:"url"`
	ReadingType ReadingType `json:"readingType,omitempty"`
	Completed   bool        `json:"completed"`
}
