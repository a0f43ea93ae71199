package health

import (
	"net/http"
	"runtime"
	"time"

	"ai-chef-service/internal/infrastructure/config"
	"ai-chef-service/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	AI        AIStatus               `json:"ai"`
	Runtime   map[string]interface{} `json:"runtime"`
}

// AIStatus 生成端點狀態
type AIStatus struct {
	Model      string `json:"model"`
	Configured bool   `json:"configured"`
}

// Handler 健康檢查處理器
type Handler struct {
	cfg *config.Config
}

// NewHandler 創建健康檢查處理器
func NewHandler(cfg *config.Config) *Handler {
	return &Handler{cfg: cfg}
}

// HealthCheck 健康檢查；未設定 API Key 時仍回應 ok，生成會走規則式備援
func (h *Handler) HealthCheck(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   h.cfg.App.Version,
		AI: AIStatus{
			Model:      h.cfg.Gemini.Model,
			Configured: h.cfg.Gemini.HasAPIKey(),
		},
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
	}

	common.LogDebug("Health check request",
		zap.String("client_ip", c.ClientIP()),
		zap.String("path", c.Request.URL.Path),
	)

	c.JSON(http.StatusOK, response)
}

// ReadinessCheck 就緒檢查
func (h *Handler) ReadinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":        "ready",
		"ai_configured": h.cfg.Gemini.HasAPIKey(),
	})
}

// LivenessCheck 存活檢查
func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
