// Package health 健康、就緒與存活檢查
package health

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"meal-planner/internal/core/ai/queue"
	"meal-planner/internal/pkg/common"
)

const readinessTimeout = 2 * time.Second

// Pinger 可檢查連線的依賴，例如資料庫
type Pinger interface {
	Ping(ctx context.Context) error
}

// QueueReporter 回報生成隊列狀態
type QueueReporter interface {
	QueueStatus() *queue.Status
}

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status    string         `json:"status"`
	Timestamp time.Time      `json:"timestamp"`
	Version   string         `json:"version"`
	Runtime   map[string]any `json:"runtime"`
	Queue     *queue.Status  `json:"queue,omitempty"`
}

// Handler 健康檢查處理器
type Handler struct {
	version string
	db      Pinger
	queue   QueueReporter
}

// NewHandler 創建處理器，db 與 q 可為 nil
func NewHandler(version string, db Pinger, q QueueReporter) *Handler {
	return &Handler{version: version, db: db, queue: q}
}

// Register 註冊 /health、/ready、/live
func (h *Handler) Register(r gin.IRoutes) {
	r.GET("/health", h.HealthCheck)
	r.GET("/ready", h.ReadinessCheck)
	r.GET("/live", h.LivenessCheck)
}

// HealthCheck 版本、執行期與隊列狀態
func (h *Handler) HealthCheck(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   h.version,
		Runtime: map[string]any{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
	}
	if h.queue != nil {
		response.Queue = h.queue.QueueStatus()
	}

	common.LogDebug("Health check request",
		zap.String("client_ip", c.ClientIP()),
		zap.String("path", c.Request.URL.Path),
	)
	c.JSON(http.StatusOK, response)
}

// ReadinessCheck 資料庫可連線才算就緒
func (h *Handler) ReadinessCheck(c *gin.Context) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			common.LogWarn("資料庫未就緒", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "not_ready",
				"database": err.Error(),
			})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}

// LivenessCheck 存活檢查
func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
