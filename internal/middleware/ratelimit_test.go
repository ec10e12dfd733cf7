package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

// testRateLimiterConfig はテスト用の短いクリーンアップ間隔の設定を返す。
func testRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		Rate:            rate.Limit(2.0),
		Burst:           3,
		CleanupInterval: 50 * time.Millisecond,
	}
}

func TestRateLimiter_AllowsWithinBurst(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig())
	defer rl.Stop()

	handler := rl.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/readings/today", nil)
		req.RemoteAddr = "203.0.113.10:54321"
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		if w.Result().StatusCode != http.StatusOK {
			t.Fatalf("request %d: status = %d, want %d", i+1, w.Result().StatusCode, http.StatusOK)
		}
	}
}

func TestRateLimiter_RejectsOverBurst(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig())
	defer rl.Stop()

	handler := rl.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	var lastStatus int
	var lastBody []byte
	var retryAfter string
	for i := 0; i < 4; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/readings/today", nil)
		req.RemoteAddr = "203.0.113.20:54321"
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		lastStatus = w.Result().StatusCode
		lastBody = w.Body.Bytes()
		retryAfter = w.Result().Header.Get("Retry-After")
	}

	if lastStatus != http.StatusTooManyRequests {
		t.Errorf("status = %d, want %d", lastStatus, http.StatusTooManyRequests)
	}
	if retryAfter == "" {
		t.Error("expected Retry-After header")
	}

	var body map[string]string
	if err := json.Unmarshal(lastBody, &body); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
	if body["code"] != "rate_limit_exceeded" {
		t.Errorf("code = %q, want %q", body["code"], "rate_limit_exceeded")
	}
}

func TestRateLimiter_IsolatesClients(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig())
	defer rl.Stop()

	handler := rl.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// 1つ目のクライアントのバーストを使い切る
	for i := 0; i < 4; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/readings/today", nil)
		req.RemoteAddr = "203.0.113.30:1111"
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}

	// 別のクライアントは制限されない
	req := httptest.NewRequest(http.MethodGet, "/api/readings/today", nil)
	req.RemoteAddr = "203.0.113.31:2222"
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}

	if count := rl.LimiterCount(); count != 2 {
		t.Errorf("LimiterCount() = %d, want 2", count)
	}
}

func TestRateLimiter_UsesForwardedForHeader(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig())
	defer rl.Stop()

	handler := rl.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// 同一プロキシ経由でも転送元IPが異なれば別クライアント扱い
	for _, forwardedIP := range []string{"198.51.100.1", "198.51.100.2"} {
		req := httptest.NewRequest(http.MethodGet, "/api/readings/today", nil)
		req.RemoteAddr = "10.0.0.1:443"
		req.Header.Set("X-Forwarded-For", forwardedIP+", 10.0.0.1")
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}

	if count := rl.LimiterCount(); count != 2 {
		t.Errorf("LimiterCount() = %d, want 2", count)
	}
}

func TestRateLimiter_CleanupRemovesStaleEntries(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{
		Rate:            rate.Limit(2.0),
		Burst:           3,
		CleanupInterval: 20 * time.Millisecond,
	})
	defer rl.Stop()

	handler := rl.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/readings/today", nil)
	req.RemoteAddr = "203.0.113.40:3333"
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if count := rl.LimiterCount(); count != 1 {
		t.Fatalf("LimiterCount() = %d, want 1", count)
	}

	// TTL (CleanupInterval * 2) が経過したエントリはクリーンアップされる
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if rl.LimiterCount() == 0 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Errorf("LimiterCount() = %d, want 0 after cleanup", rl.LimiterCount())
}

func TestExtractClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		forwarded  string
		want       string
	}{
		{
			name:       "RemoteAddrのみ",
			remoteAddr: "203.0.113.5:12345",
			forwarded:  "",
			want:       "203.0.113.5",
		},
		{
			name:       "X-Forwarded-Forの先頭を優先",
			remoteAddr: "10.0.0.1:443",
			forwarded:  "198.51.100.7, 10.0.0.1",
			want:       "198.51.100.7",
		},
		{
			name:       "ポートなしのRemoteAddr",
			remoteAddr: "203.0.113.5",
			forwarded:  "",
			want:       "203.0.113.5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}

			if got := extractClientIP(req); got != tt.want {
				t.Errorf("extractClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
