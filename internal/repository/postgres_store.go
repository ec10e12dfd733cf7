package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/lectio/internal/model"
)

// PostgresReadingStore はPostgreSQLを使用したReadingStore実装。
// readingsテーブルのUNIQUE(date, title, url)制約と
// reading_progressテーブルのUNIQUE(reading_id, date)制約により、
// 挿入の冪等性をロックなしで保証する。
type PostgresReadingStore struct {
	db *sql.DB
}

// NewPostgresReadingStore はPostgresReadingStoreを生成する。
func NewPostgresReadingStore(db *sql.DB) *PostgresReadingStore {
	return &PostgresReadingStore{db: db}
}

// GetReadingsByDate は指定日付の日課一覧を作成順で返す。
func (s *PostgresReadingStore) GetReadingsByDate(ctx context.Context, date string) ([]model.Reading, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, date, title, url, reading_type, feast_day, created_at
		 FROM readings WHERE date = $1
		 ORDER BY created_at, id`,
		date,
	)
	if err != nil {
		return nil, fmt.Errorf("日課一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var readings []model.Reading
	for rows.Next() {
		r, err := scanReading(rows)
		if err != nil {
			return nil, err
		}
		readings = append(readings, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("日課一覧の読み取りに失敗しました: %w", err)
	}

	return readings, nil
}

// CreateReading は日課を保存する。(date, title, url) のUNIQUE制約と
// ON CONFLICT DO NOTHINGにより冪等であり、同一内容の2回目の呼び出しは
// 既存のReadingを返す。同時実行された初回フェッチの競合もここで解消される。
func (s *PostgresReadingStore) CreateReading(ctx context.Context, insert model.InsertReading) (*model.Reading, error) {
	id := model.DeriveReadingID(insert.Title, insert.URL)
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO readings (id, date, title, url, reading_type, feast_day, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (date, title, url) DO NOTHING`,
		id, insert.Date, insert.Title, insert.URL,
		nullableString(string(insert.ReadingType)), nullableString(insert.FeastDay),
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("日課の保存に失敗しました: %w", err)
	}

	// 競合時は既存行が残っているため、保存済みの内容を読み直して返す
	row := s.db.QueryRowContext(ctx,
		`SELECT id, date, title, url, reading_type, feast_day, created_at
		 FROM readings WHERE date = $1 AND title = $2 AND url = $3`,
		insert.Date, insert.Title, insert.URL,
	)
	reading, err := scanReading(row)
	if err != nil {
		return nil, err
	}

	return reading, nil
}

// GetProgressByDate は指定日付の読了状態一覧を返す。
func (s *PostgresReadingStore) GetProgressByDate(ctx context.Context, date string) ([]model.ReadingProgress, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, reading_id, date, completed, completed_at
		 FROM reading_progress WHERE date = $1`,
		date,
	)
	if err != nil {
		return nil, fmt.Errorf("読了状態一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var entries []model.ReadingProgress
	for rows.Next() {
		var p model.ReadingProgress
		var completedAt sql.NullTime
		if err := rows.Scan(&p.ID, &p.ReadingID, &p.Date, &p.Completed, &completedAt); err != nil {
			return nil, fmt.Errorf("読了状態の読み取りに失敗しました: %w", err)
		}
		if completedAt.Valid {
			p.CompletedAt = &completedAt.Time
		}
		entries = append(entries, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("読了状態一覧の読み取りに失敗しました: %w", err)
	}

	return entries, nil
}

// UpdateProgress は (reading_id, date) の読了状態を冪等にUPSERTする。
// UNIQUE(reading_id, date)制約を利用したINSERT ON CONFLICTで実装する。
// readingIDが既知のReadingを参照しない場合でも失敗しない。
func (s *PostgresReadingStore) UpdateProgress(ctx context.Context, readingID, date string, completed bool) (*model.ReadingProgress, error) {
	now := time.Now().UTC()

	entry := &model.ReadingProgress{
		ID:        uuid.New().String(),
		ReadingID: readingID,
		Date:      date,
		Completed: completed,
	}
	var completedAt sql.NullTime
	if completed {
		completedAt = sql.NullTime{Time: now, Valid: true}
		entry.CompletedAt = &now
	}

	// 競合時は既存行のIDを維持したまま状態のみ上書きする
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO reading_progress (id, reading_id, date, completed, completed_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (reading_id, date) DO UPDATE SET
		     completed = EXCLUDED.completed,
		     completed_at = EXCLUDED.completed_at
		 RETURNING id`,
		entry.ID, entry.ReadingID, entry.Date, entry.Completed, completedAt,
	).Scan(&entry.ID)
	if err != nil {
		return nil, fmt.Errorf("読了状態の更新に失敗しました: %w", err)
	}

	return entry, nil
}

// GetDailyReadingsWithProgress は日課と読了状態をLEFT JOINしたバンドルを返す。
// 読了状態が無いReadingのcompletedはfalseとなる。
func (s *PostgresReadingStore) GetDailyReadingsWithProgress(ctx context.Context, date string) (*model.DailyReadings, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT r.id, r.title, r.url, r.reading_type, r.feast_day,
		        COALESCE(p.completed, FALSE)
		 FROM readings r
		 LEFT JOIN reading_progress p
		     ON p.reading_id = r.id AND p.date = r.date
		 WHERE r.date = $1
		 ORDER BY r.created_at, r.id`,
		date,
	)
	if err != nil {
		return nil, fmt.Errorf("日課バンドルの取得に失敗しました: %w", err)
	}
	defer rows.Close()

	bundle := &model.DailyReadings{
		Date:     date,
		Readings: []model.ReadingWithProgress{},
	}

	for rows.Next() {
		var rw model.ReadingWithProgress
		var readingType, feastDay sql.NullString
		if err := rows.Scan(&rw.ID, &rw.Title, &rw.URL, &readingType, &feastDay, &rw.Completed); err != nil {
			return nil, fmt.Errorf("日課バンドルの読み取りに失敗しました: %w", err)
		}
		rw.ReadingType = model.ReadingType(readingType.String)
		if bundle.FeastDay == "" && feastDay.Valid {
			bundle.FeastDay = feastDay.String
		}
		bundle.Readings = append(bundle.Readings, rw)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("日課バンドルの読み取りに失敗しました: %w", err)
	}

	return bundle, nil
}

// rowScanner はsql.Rowとsql.Rowsの共通Scanインターフェース。
type rowScanner interface {
	Scan(dest ...any) error
}

// scanReading は1行分のreadingsレコードをmodel.Readingへ変換する。
func scanReading(row rowScanner) (*model.Reading, error) {
	r := &model.Reading{}
	var readingType, feastDay sql.NullString

	err := row.Scan(&r.ID, &r.Date, &r.Title, &r.URL, &readingType, &feastDay, &r.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("日課の読み取りに失敗しました: %w", err)
	}

	r.ReadingType = model.ReadingType(readingType.String)
	r.FeastDay = feastDay.String

	return r, nil
}

// nullableString は空文字列をNULLへ変換する。
func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// compile-time interface check
var _ ReadingStore = (*PostgresReadingStore)(nil)
