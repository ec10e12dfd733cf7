// Package source は日課ページの取得クライアントを提供する。
package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hitoshi/lectio/internal/model"
)

// readingsPath は日課ページのパス。当日分はパスパラメータなしで取得できる。
const readingsPath = "/readings"

// userAgent は日課サイトへのリクエストに使用するUser-Agent。
// サイト側がボット判定でブロックするため、一般的なブラウザを名乗る。
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// SSRFValidator はSSRF検証のインターフェース。
// security.SSRFGuardを抽象化してテスタビリティを向上させる。
type SSRFValidator interface {
	ValidateURL(rawURL string) error
	NewSafeClient(timeout time.Duration, maxResponseSize int64) *http.Client
}

// Client は日課ページのHTTPフェッチを行う。
// ページ取得はこのシステムで唯一ネットワークI/Oで待機する操作であり、
// タイムアウトとコンテキストキャンセルで常に打ち切り可能にする。
type Client struct {
	baseURL     string
	ssrfGuard   SSRFValidator
	timeout     time.Duration
	maxBodySize int64
}

// NewClient はClientの新しいインスタンスを生成する。
func NewClient(baseURL string, ssrfGuard SSRFValidator, timeout time.Duration, maxBodySize int64) *Client {
	return &Client{
		baseURL:     baseURL,
		ssrfGuard:   ssrfGuard,
		timeout:     timeout,
		maxBodySize: maxBodySize,
	}
}

// FetchPage は当日の日課ページのマークアップを取得する。
// ネットワークエラー、タイムアウト、2xx以外のステータスでFETCH_FAILEDを返す。
func (c *Client) FetchPage(ctx context.Context) (string, error) {
	pageURL := c.baseURL + readingsPath

	if err := c.ssrfGuard.ValidateURL(pageURL); err != nil {
		return "", model.NewFetchFailedError(fmt.Sprintf("URL検証に失敗: %s", err.Error()))
	}

	client := c.ssrfGuard.NewSafeClient(c.timeout, c.maxBodySize)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", model.NewFetchFailedError(fmt.Sprintf("リクエスト作成に失敗: %s", err.Error()))
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html, application/xhtml+xml, */*")

	resp, err := client.Do(req)
	if err != nil {
		return "", model.NewFetchFailedError(err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", model.NewFetchFailedError(fmt.Sprintf("HTTPステータス %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodySize))
	if err != nil {
		return "", model.NewFetchFailedError(fmt.Sprintf("レスポンス読み取りに失敗: %s", err.Error()))
	}

	return string(body), nil
}
