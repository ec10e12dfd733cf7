package reading

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hitoshi/lectio/internal/model"
	"github.com/hitoshi/lectio/internal/repository"
	"github.com/hitoshi/lectio/internal/scrape"
)

// PageFetcher は日課ページの生マークアップ取得のインターフェース。
type PageFetcher interface {
	// FetchPage は日課ページのマークアップを取得する。
	// ネットワークエラー、タイムアウト、2xx以外のステータスでエラーを返す。
	FetchPage(ctx context.Context) (string, error)
}

// PageParser は日課ページの解析インターフェース。
type PageParser interface {
	Parse(markup string) (*model.ScrapedPage, error)
}

// TextSanitizer はスクレイプしたテキストのサニタイズインターフェース。
type TextSanitizer interface {
	Clean(text string) string
}

// ScrapeRecorder はスクレイプ処理のメトリクス収集インターフェース。
type ScrapeRecorder interface {
	RecordScrapeSuccess(readingsCount int)
	RecordScrapeFailure(reason string)
	RecordScrapeLatency(duration time.Duration)
}

// Service は日課の日次キャッシュ管理と読了状態のマージを提供する。
//
// 「1日1回のフェッチ」の状態は日付キーのストアとして外部化されており、
// プロセス起動時に1回構築されるServiceが所有する（暗黙のシングルトンは持たない）。
// 「今日」の判定はlocationで指定された基準タイムゾーンの暦日に従う。
type Service struct {
	store     repository.ReadingStore
	fetcher   PageFetcher
	parser    PageParser
	sanitizer TextSanitizer
	metrics   ScrapeRecorder
	location  *time.Location
	now       func() time.Time
}

// NewService はServiceを生成する。
func NewService(
	store repository.ReadingStore,
	fetcher PageFetcher,
	parser PageParser,
	sanitizer TextSanitizer,
	metrics ScrapeRecorder,
	location *time.Location,
) *Service {
	return &Service{
		store:     store,
		fetcher:   fetcher,
		parser:    parser,
		sanitizer: sanitizer,
		metrics:   metrics,
		location:  location,
		now:       time.Now,
	}
}

// Today は基準タイムゾーンにおける今日の日付をYYYY-MM-DD形式で返す。
func (s *Service) Today() string {
	return s.now().In(s.location).Format("2006-01-02")
}

// GetToday は今日の日課バンドルを返す。
//
// ストアに今日の日課が存在する場合はネットワークアクセスなしで即座に返す
// （キャッシュヒット経路。再フェッチは決して行わない）。
// 存在しない場合は1回のフェッチ・解析・分類・重複排除サイクルを実行し、
// 結果を永続化してから読了状態をマージしたバンドルを返す。
//
// フェッチまたは解析に失敗した場合、今日の状態は「未取得」のまま残り、
// 次回の呼び出しで再試行される（失敗のネガティブキャッシュは持たない）。
// 同時に複数の呼び出しが「未取得」を観測した場合は両方がフェッチするが、
// ストアのコンテンツアドレス型挿入により重複保存は発生しない。
func (s *Service) GetToday(ctx context.Context) (*model.DailyReadings, error) {
	date := s.Today()

	bundle, err := s.store.GetDailyReadingsWithProgress(ctx, date)
	if err != nil {
		return nil, err
	}

	if len(bundle.Readings) > 0 {
		return bundle, nil
	}

	if err := s.scrapeAndStore(ctx, date); err != nil {
		return nil, err
	}

	return s.store.GetDailyReadingsWithProgress(ctx, date)
}

// UpdateProgress は今日の日課の読了状態を冪等に更新する。
// readingIDが既知のReadingを参照しない場合でも失敗しない
// （孤児エントリはバンドルに現れないだけで、整合性保証ではなく簡潔さのための許容）。
func (s *Service) UpdateProgress(ctx context.Context, readingID string, completed bool) (*model.ReadingProgress, error) {
	return s.store.UpdateProgress(ctx, readingID, s.Today(), completed)
}

// scrapeAndStore は1回のフェッチ・解析・分類・重複排除・保存サイクルを実行する。
// 永続化は全ページの解析完了後にのみ行われるため、途中キャンセルされた
// フェッチが部分的なReadingを残すことはない。各エントリの挿入は個別に冪等。
func (s *Service) scrapeAndStore(ctx context.Context, date string) error {
	start := s.now()

	markup, err := s.fetcher.FetchPage(ctx)
	if err != nil {
		s.metrics.RecordScrapeFailure("fetch")
		slog.Error("日課ページの取得に失敗しました",
			slog.String("date", date),
			slog.String("error", err.Error()),
		)
		var apiErr *model.APIError
		if errors.As(err, &apiErr) {
			return apiErr
		}
		return model.NewFetchFailedError(err.Error())
	}

	page, err := s.parser.Parse(markup)
	if err != nil {
		s.metrics.RecordScrapeFailure("parse")
		slog.Error("日課ページの解析に失敗しました",
			slog.String("date", date),
			slog.String("error", err.Error()),
		)
		var apiErr *model.APIError
		if errors.As(err, &apiErr) {
			return apiErr
		}
		return model.NewParseFailedError()
	}

	feastDay := s.sanitizer.Clean(page.FeastDay)
	entries := Dedupe(page.Readings)

	for _, entry := range entries {
		title := s.sanitizer.Clean(entry.Title)
		if _, err := s.store.CreateReading(ctx, model.InsertReading{
			Date:        date,
			Title:       title,
			URL:         entry.URL,
			ReadingType: scrape.ClassifyReading(title),
			FeastDay:    feastDay,
		}); err != nil {
			s.metrics.RecordScrapeFailure("store")
			return err
		}
	}

	duration := s.now().Sub(start)
	s.metrics.RecordScrapeSuccess(len(entries))
	s.metrics.RecordScrapeLatency(duration)

	slog.Info("日課の取得が完了しました",
		slog.String("date", date),
		slog.String("feast_day", feastDay),
		slog.Int("readings_count", len(entries)),
		slog.Float64("duration_ms", float64(duration.Milliseconds())),
	)

	return nil
}
