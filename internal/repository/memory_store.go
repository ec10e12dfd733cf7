package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/lectio/internal/model"
)

// MemoryReadingStore はプロセス内マップを使用したReadingStore実装。
// DATABASE_URL未設定時のデフォルトバックエンドとして使用する。
// 日付キーのマップへのコンテンツアドレス型挿入により、
// ロックを持たずに重複保存を自己修復する（挿入自体はミューテックスで直列化する）。
type MemoryReadingStore struct {
	mu       sync.RWMutex
	readings map[string]model.Reading         // date|id -> Reading
	progress map[string]model.ReadingProgress // readingID|date -> ReadingProgress
	order    map[string][]string              // date -> 挿入順のid列
}

// NewMemoryReadingStore はMemoryReadingStoreを生成する。
func NewMemoryReadingStore() *MemoryReadingStore {
	return &MemoryReadingStore{
		readings: make(map[string]model.Reading),
		progress: make(map[string]model.ReadingProgress),
		order:    make(map[string][]string),
	}
}

// GetReadingsByDate は指定日付の日課一覧を挿入順で返す。
func (s *MemoryReadingStore) GetReadingsByDate(_ context.Context, date string) ([]model.Reading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.order[date]
	readings := make([]model.Reading, 0, len(ids))
	for _, id := range ids {
		if r, ok := s.readings[date+"|"+id]; ok {
			readings = append(readings, r)
		}
	}
	return readings, nil
}

// CreateReading は日課を保存する。(date, title, url) に対して冪等であり、
// 同一内容が既に存在する場合は保存済みのReadingをそのまま返す。
func (s *MemoryReadingStore) CreateReading(_ context.Context, insert model.InsertReading) (*model.Reading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := model.DeriveReadingID(insert.Title, insert.URL)
	key := insert.Date + "|" + id

	if existing, ok := s.readings[key]; ok {
		return &existing, nil
	}

	reading := model.Reading{
		ID:          id,
		Date:        insert.Date,
		Title:       insert.Title,
		URL:         insert.URL,
		ReadingType: insert.ReadingType,
		FeastDay:    insert.FeastDay,
		CreatedAt:   time.Now().UTC(),
	}
	s.readings[key] = reading
	s.order[insert.Date] = append(s.order[insert.Date], id)

	return &reading, nil
}

// GetProgressByDate は指定日付の読了状態一覧を返す。
func (s *MemoryReadingStore) GetProgressByDate(_ context.Context, date string) ([]model.ReadingProgress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var entries []model.ReadingProgress
	for _, p := range s.progress {
		if p.Date == date {
			entries = append(entries, p)
		}
	}
	return entries, nil
}

// UpdateProgress は (readingID, date) の読了状態を冪等にUPSERTする。
// 2回目以降の更新は既存エントリを上書きし、重複エントリは作らない。
func (s *MemoryReadingStore) UpdateProgress(_ context.Context, readingID, date string, completed bool) (*model.ReadingProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	key := readingID + "|" + date

	if existing, ok := s.progress[key]; ok {
		existing.Completed = completed
		if completed {
			existing.CompletedAt = &now
		} else {
			existing.CompletedAt = nil
		}
		s.progress[key] = existing
		return &existing, nil
	}

	entry := model.ReadingProgress{
		ID:        uuid.New().String(),
		ReadingID: readingID,
		Date:      date,
		Completed: completed,
	}
	if completed {
		entry.CompletedAt = &now
	}
	s.progress[key] = entry

	return &entry, nil
}

// GetDailyReadingsWithProgress は日課と読了状態を日付でJOINしたバンドルを返す。
func (s *MemoryReadingStore) GetDailyReadingsWithProgress(ctx context.Context, date string) (*model.DailyReadings, error) {
	readings, err := s.GetReadingsByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	progressList, err := s.GetProgressByDate(ctx, date)
	if err != nil {
		return nil, err
	}

	completedByID := make(map[string]bool, len(progressList))
	for _, p := range progressList {
		completedByID[p.ReadingID] = p.Completed
	}

	bundle := &model.DailyReadings{
		Date:     date,
		Readings: make([]model.ReadingWithProgress, 0, len(readings)),
	}

	for _, r := range readings {
		if bundle.FeastDay == "" {
			bundle.FeastDay = r.FeastDay
		}
		bundle.Readings = append(bundle.Readings, model.ReadingWithProgress{
			ID:          r.ID,
			Title:       r.Title,
			URL:         r.URL,
			ReadingType: r.ReadingType,
			Completed:   completedByID[r.ID],
		})
	}

	return bundle, nil
}

// compile-time interface check
var _ ReadingStore = (*MemoryReadingStore)(nil)
