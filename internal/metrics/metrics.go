// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector は日課スクレイプのメトリクスを収集する。
type Collector struct {
	scrapeSuccess     prometheus.Counter
	scrapeFail        *prometheus.CounterVec
	scrapeLatency     prometheus.Histogram
	readingsPersisted prometheus.Counter
	httpStatus        *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		scrapeSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lectio_scrape_success_total",
			Help: "日課スクレイプ成功の合計数",
		}),
		scrapeFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lectio_scrape_fail_total",
			Help: "日課スクレイプ失敗の合計数（失敗段階別）",
		}, []string{"reason"}),
		scrapeLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "lectio_scrape_latency_seconds",
			Help:    "日課スクレイプ全体のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		readingsPersisted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lectio_readings_persisted_total",
			Help: "保存された日課エントリの合計数",
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lectio_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
	}

	reg.MustRegister(
		c.scrapeSuccess,
		c.scrapeFail,
		c.scrapeLatency,
		c.readingsPersisted,
		c.httpStatus,
	)

	return c
}

// RecordScrapeSuccess はスクレイプ成功と保存エントリ数を記録する。
func (c *Collector) RecordScrapeSuccess(readingsCount int) {
	c.scrapeSuccess.Inc()
	c.readingsPersisted.Add(float64(readingsCount))
}

// RecordScrapeFailure はスクレイプ失敗を失敗段階(fetch/parse/store)付きで記録する。
func (c *Collector) RecordScrapeFailure(reason string) {
	c.scrapeFail.WithLabelValues(reason).Inc()
}

// RecordScrapeLatency はスクレイプ全体のレイテンシを記録する。
func (c *Collector) RecordScrapeLatency(duration time.Duration) {
	c.scrapeLatency.Observe(duration.Seconds())
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
