package recipe

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"ai-chef-service/internal/core/pantry"
	recipeService "ai-chef-service/internal/core/recipe"
	"ai-chef-service/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserIDHeader 使用者識別標頭
const UserIDHeader = "User-Id"

// Generator 食譜生成服務
type Generator interface {
	GenerateRecipes(ctx context.Context, items, expiring []pantry.Item, prefs recipeService.Preferences) *recipeService.GenerationResult
	GenerateForUser(ctx context.Context, userID string, prefs recipeService.Preferences) *recipeService.GenerationResult
}

// PantryGenerationRequest 由呼叫端提供 pantry 快照的生成請求
type PantryGenerationRequest struct {
	PantryItems   []pantry.Item             `json:"pantryItems"`
	ExpiringItems []pantry.Item             `json:"expiringItems,omitempty"`
	Preferences   recipeService.Preferences `json:"preferences"`
}

// Handler 食譜生成處理程序
type Handler struct {
	service Generator
	debug   bool
}

// NewHandler 創建新的食譜生成處理程序
func NewHandler(service Generator, debug bool) *Handler {
	return &Handler{
		service: service,
		debug:   debug,
	}
}

// HandleGenerateRecipes 依使用者 pantry 與偏好生成食譜
func (h *Handler) HandleGenerateRecipes(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	var prefs recipeService.Preferences
	if err := c.ShouldBindJSON(&prefs); err != nil && !errors.Is(err, io.EOF) {
		h.fail(c, common.ErrInvalidRequest.WithErr(err))
		return
	}
	if err := prefs.Validate(); err != nil {
		h.fail(c, common.ErrInvalidPreferences.WithErr(err))
		return
	}

	common.LogInfo("Generating recipes for user",
		zap.String("user_id", userID),
		zap.String("request_id", requestid.Get(c)),
	)

	c.JSON(http.StatusOK, h.service.GenerateForUser(c.Request.Context(), userID, prefs))
}

// HandleGenerateFromPantry 以請求中的 pantry 快照生成食譜
func (h *Handler) HandleGenerateFromPantry(c *gin.Context) {
	var req PantryGenerationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, common.ErrInvalidRequest.WithErr(err))
		return
	}
	if err := req.Preferences.Validate(); err != nil {
		h.fail(c, common.ErrInvalidPreferences.WithErr(err))
		return
	}

	common.LogInfo("Generating recipes from supplied pantry",
		zap.Int("pantry_items", len(req.PantryItems)),
		zap.Int("expiring_items", len(req.ExpiringItems)),
		zap.String("request_id", requestid.Get(c)),
	)

	c.JSON(http.StatusOK, h.service.GenerateRecipes(c.Request.Context(), req.PantryItems, req.ExpiringItems, req.Preferences))
}

// HandleQuickSuggestions 快速建議：只接受餐別與時間上限
func (h *Handler) HandleQuickSuggestions(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	var maxTime *int
	if raw := strings.TrimSpace(c.Query("maxTime")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			h.fail(c, common.ErrInvalidPreferences.WithErr(err))
			return
		}
		maxTime = &v
	}

	prefs := recipeService.QuickPreferences(c.Query("mealType"), maxTime)
	if err := prefs.Validate(); err != nil {
		h.fail(c, common.ErrInvalidPreferences.WithErr(err))
		return
	}
	c.JSON(http.StatusOK, h.service.GenerateForUser(c.Request.Context(), userID, prefs))
}

// HandleUseItUp 清冰箱建議
func (h *Handler) HandleUseItUp(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, h.service.GenerateForUser(c.Request.Context(), userID, recipeService.UseItUpPreferences()))
}

func (h *Handler) userID(c *gin.Context) (string, bool) {
	userID := strings.TrimSpace(c.GetHeader(UserIDHeader))
	if userID == "" {
		h.fail(c, common.ErrMissingUserID)
		return "", false
	}
	return userID, true
}

func (h *Handler) fail(c *gin.Context, err *common.CustomError) {
	common.LogWarn("Rejected generation request",
		zap.String("code", err.Code),
		zap.Error(err),
		zap.String("path", c.Request.URL.Path),
		zap.String("request_id", requestid.Get(c)),
	)
	_ = c.Error(err)
	c.AbortWithStatusJSON(err.Status, err.Response(h.debug))
}
