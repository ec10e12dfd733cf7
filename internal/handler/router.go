package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/lectio/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Logger            *slog.Logger

	// 日課サービス
	ReadingService ReadingServiceInterface

	// Prometheusスクレイプ用ハンドラー
	MetricsHandler http.Handler
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	CORSMiddleware → LoggingMiddleware → RecoveryMiddleware → RateLimitMiddleware
//
// 運用エンドポイント（/health、/metrics）はレート制限の外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	// CORS ミドルウェアを最上位に適用（全ルートに効く）
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())

	readingHandler := NewReadingHandler(deps.ReadingService)

	// --- 運用エンドポイント ---
	r.Get("/health", Health)
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	// --- APIルート ---
	// クライアントIPごとのレート制限を適用する
	r.Group(func(r chi.Router) {
		r.Use(deps.RateLimiter.Middleware())

		r.Route("/api/readings/today", func(r chi.Router) {
			r.Get("/", readingHandler.GetToday)
			r.Post("/progress", readingHandler.UpdateProgress)
		})
	})

	return r
}
