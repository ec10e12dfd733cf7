// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/lectio/internal/model"
)

// ReadingStore は日課と読了状態の永続化インターフェース。
// 日付をキーとする5操作のみで構成され、任意のバックエンド
// （インメモリマップ、リレーショナルテーブル）が一様に実装する。
type ReadingStore interface {
	// GetReadingsByDate は指定日付の日課一覧を返す。
	// (title, url) の組で重複排除された結果を返す。
	GetReadingsByDate(ctx context.Context, date string) ([]model.Reading, error)

	// CreateReading は日課を保存する。
	// (date, title, url) に対して冪等であり、同一内容の2回目の呼び出しは
	// 新しいエンティティを作らず既存のReadingを返す。
	// 同時実行された初回フェッチ同士の競合はこの冪等性で解消される（ロックは使わない）。
	CreateReading(ctx context.Context, reading model.InsertReading) (*model.Reading, error)

	// GetProgressByDate は指定日付の読了状態一覧を返す。
	GetProgressByDate(ctx context.Context, date string) ([]model.ReadingProgress, error)

	// UpdateProgress は (readingID, date) の読了状態を冪等にUPSERTする。
	// completed=trueでCompletedAtに現在時刻を記録し、falseでクリアする。
	// readingIDが既知のReadingを参照しない場合でも失敗しない
	// （孤児エントリは許容され、バンドルには現れない）。
	UpdateProgress(ctx context.Context, readingID, date string, completed bool) (*model.ReadingProgress, error)

	// GetDailyReadingsWithProgress は日課と読了状態を日付でJOINした
	// 表示用バンドルを返す。読了状態が無いReadingのcompletedはfalseとなる。
	GetDailyReadingsWithProgress(ctx context.Context, date string) (*model.DailyReadings, error)
}
