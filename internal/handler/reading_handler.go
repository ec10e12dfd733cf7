// Package handler はHTTP APIのハンドラーを提供する。
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/hitoshi/lectio/internal/model"
)

// ReadingServiceInterface は日課ハンドラーが必要とするサービスインターフェース。
type ReadingServiceInterface interface {
	// GetToday は当日の日課一覧を読了状態付きで返す。
	// 当日分が未取得の場合はスクレイプを実行してから返す。
	GetToday(ctx context.Context) (*model.DailyReadings, error)
	// UpdateProgress は当日の日課の読了状態を冪等に更新する。
	UpdateProgress(ctx context.Context, readingID string, completed bool) (*model.ReadingProgress, error)
}

// ReadingHandler は日課APIのHTTPハンドラー。
type ReadingHandler struct {
	service ReadingServiceInterface
}

// NewReadingHandler はReadingHandlerを生成する。
func NewReadingHandler(service ReadingServiceInterface) *ReadingHandler {
	return &ReadingHandler{service: service}
}

// --- リクエスト・レスポンス型 ---

// progressRequest は読了状態更新リクエストのボディ。
type progressRequest struct {
	ReadingID *string `json:"readingId"`
	Completed *bool   `json:"completed"`
}

// progressResponse は読了状態のレスポンス。
type progressResponse struct {
	ID          string     `json:"id"`
	ReadingID   string     `json:"readingId"`
	Date        string     `json:"date"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// apiErrorResponse はAPIエラーレスポンスのボディ。
type apiErrorResponse struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// GetToday は当日の日課一覧を取得する。
// GET /api/readings/today
func (h *ReadingHandler) GetToday(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.GetToday(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// UpdateProgress は当日の日課の読了状態を更新する。
// POST /api/readings/today/progress
func (h *ReadingHandler) UpdateProgress(w http.ResponseWriter, r *http.Request) {
	var req progressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("JSONとして解釈できません"))
		return
	}

	if req.ReadingID == nil || *req.ReadingID == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("readingIdが指定されていません"))
		return
	}
	if req.Completed == nil {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("completedが指定されていません"))
		return
	}

	progress, err := h.service.UpdateProgress(r.Context(), *req.ReadingID, *req.Completed)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(progressResponse{
		ID:          progress.ID,
		ReadingID:   progress.ReadingID,
		Date:        progress.Date,
		Completed:   progress.Completed,
		CompletedAt: progress.CompletedAt,
	})
}

// Health はヘルスチェックに応答する。
// GET /health
func Health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// writeAPIErrorResponse は統一エラーフォーマットでレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(apiErrorResponse{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		writeAPIErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	writeAPIErrorResponse(w, http.StatusInternalServerError, &model.APIError{
		Code:     "INTERNAL_ERROR",
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	})
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeInvalidRequest:
		return http.StatusBadRequest
	case model.ErrCodeFetchFailed, model.ErrCodeParseFailed, model.ErrCodeStorageFailed:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
