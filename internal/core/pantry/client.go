package pantry

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"ai-chef-service/internal/infrastructure/config"
	"ai-chef-service/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const (
	itemsPath         = "/api/pantry/items"
	expiringItemsPath = "/api/pantry/items/expiring"
	userIDHeader      = "User-Id"
)

// Client pantry 服務 HTTP 客戶端
type Client struct {
	client *resty.Client
}

// NewClient 創建 pantry 客戶端
func NewClient(cfg config.PantryConfig) *Client {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json")

	return &Client{client: client}
}

// GetUserPantry 取得使用者所有 pantry 食材
func (c *Client) GetUserPantry(ctx context.Context, userID string) ([]Item, error) {
	return c.fetch(ctx, itemsPath, userID)
}

// GetExpiringItems 取得即將過期的食材
func (c *Client) GetExpiringItems(ctx context.Context, userID string) ([]Item, error) {
	return c.fetch(ctx, expiringItemsPath, userID)
}

func (c *Client) fetch(ctx context.Context, path, userID string) ([]Item, error) {
	start := time.Now()

	var items []Item
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader(userIDHeader, userID).
		SetResult(&items).
		Get(path)
	if err != nil {
		common.LogError("Failed to reach pantry service",
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to send request to pantry service: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		common.LogError("Pantry service returned error status",
			zap.String("path", path),
			zap.Int("status_code", resp.StatusCode()),
		)
		return nil, fmt.Errorf("pantry service error (status %d): %s", resp.StatusCode(), resp.String())
	}

	common.LogDebug("Fetched pantry items",
		zap.String("path", path),
		zap.Int("count", len(items)),
		zap.Duration("duration", time.Since(start)),
	)

	return NormalizeItems(items), nil
}
