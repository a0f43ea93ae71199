package recipe

import (
	"context"
	"strings"
	"time"

	"ai-chef-service/internal/core/pantry"
	"ai-chef-service/internal/infrastructure/config"
	"ai-chef-service/internal/pkg/common"
	"ai-chef-service/internal/pkg/metrics"

	"go.uber.org/zap"
)

// Generator LLM 文字生成介面
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// synthesizer 規則式備援
type synthesizer interface {
	Synthesize(items []pantry.Item, prefs Preferences) []Suggestion
}

// Service 食譜生成協調者，永遠返回結果而不返回錯誤
type Service struct {
	generator Generator
	pantry    pantry.Source
	cfg       config.GenerationConfig

	prompts     *PromptBuilder
	parser      *Parser
	synthesizer synthesizer
	now         func() time.Time
}

// Option Service 設定選項
type Option func(*Service)

// WithNamer 指定名稱產生器，測試時可注入固定亂數
func WithNamer(namer *Namer) Option {
	return func(s *Service) {
		s.parser = NewParser(namer)
	}
}

// WithClock 指定時間來源
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService 創建食譜生成服務；generator 為 nil 時只走規則式生成，source 為 nil 時 GenerateForUser 走備援
func NewService(generator Generator, source pantry.Source, cfg config.GenerationConfig, opts ...Option) *Service {
	s := &Service{
		generator:   generator,
		pantry:      source,
		cfg:         cfg,
		prompts:     NewPromptBuilder(),
		parser:      NewParser(nil),
		synthesizer: NewSynthesizer(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GenerateRecipes 以呼叫端提供的 pantry 快照生成食譜
func (s *Service) GenerateRecipes(ctx context.Context, items, expiring []pantry.Item, prefs Preferences) *GenerationResult {
	start := time.Now()
	items = pantry.NormalizeItems(items)
	prefs = prefs.Normalized()

	if len(items) == 0 {
		common.LogInfo("Pantry is empty, returning placeholder")
		return s.observe(start, s.emptyPantryResult(prefs))
	}

	return s.observe(start, s.generate(ctx, items, pantry.NormalizeItems(expiring), prefs))
}

// GenerateForUser 從 pantry 服務取得使用者食材後生成食譜
func (s *Service) GenerateForUser(ctx context.Context, userID string, prefs Preferences) *GenerationResult {
	start := time.Now()
	prefs = prefs.Normalized()

	if s.pantry == nil {
		common.LogWarn("No pantry source configured, using fallback recipes", zap.String("user_id", userID))
		return s.observe(start, s.fallbackResult(nil, prefs))
	}

	items, err := s.pantry.GetUserPantry(ctx, userID)
	if err != nil {
		common.LogError("Failed to fetch pantry items",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return s.observe(start, s.fallbackResult(s.refetch(ctx, userID), prefs))
	}

	if len(items) == 0 {
		common.LogInfo("Pantry is empty, returning placeholder", zap.String("user_id", userID))
		return s.observe(start, s.emptyPantryResult(prefs))
	}

	var expiring []pantry.Item
	if s.cfg.UseExpiringFirst {
		expiring, err = s.pantry.GetExpiringItems(ctx, userID)
		if err != nil {
			common.LogError("Failed to fetch expiring items",
				zap.String("user_id", userID),
				zap.Error(err),
			)
			return s.observe(start, s.fallbackResult(pantry.NormalizeItems(items), prefs))
		}
	}

	return s.GenerateRecipes(ctx, items, expiring, prefs)
}

// refetch 盡力重新取得 pantry，失敗時返回空清單
func (s *Service) refetch(ctx context.Context, userID string) []pantry.Item {
	items, err := s.pantry.GetUserPantry(ctx, userID)
	if err != nil {
		common.LogError("Failed to re-fetch pantry items", zap.String("user_id", userID), zap.Error(err))
		return []pantry.Item{}
	}
	return pantry.NormalizeItems(items)
}

func (s *Service) generate(ctx context.Context, items, expiring []pantry.Item, prefs Preferences) (result *GenerationResult) {
	defer func() {
		if r := recover(); r != nil {
			common.LogError("Recovered from panic in AI generation path",
				zap.Any("panic", r),
				zap.Stack("stack"),
			)
			result = s.safeFallbackResult(items, prefs)
		}
	}()

	if s.cfg.UseExpiringFirst {
		items = Prioritize(items, expiring)
	}

	suggestions := s.aiSuggestions(ctx, items, prefs)
	if len(suggestions) == 0 {
		common.LogInfo("AI returned no suggestions, using fallback recipes")
		return s.newResult(s.synthesizer.Synthesize(items, prefs), "", SourceFallback)
	}

	return s.newResult(suggestions, "", SourceAI)
}

func (s *Service) aiSuggestions(ctx context.Context, items []pantry.Item, prefs Preferences) []Suggestion {
	if s.generator == nil {
		return nil
	}

	count := s.recipeCount()
	prompt := s.prompts.Build(items, prefs, count)
	common.LogDebug("Built recipe prompt",
		zap.Int("length", len(prompt)),
		zap.Int("recipe_count", count),
	)

	text, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		common.LogWarn("AI generation unavailable", zap.Error(err))
		return nil
	}
	if strings.TrimSpace(text) == "" {
		common.LogWarn("AI returned empty text")
		return nil
	}

	return s.parser.Parse(text, count, items, prefs)
}

func (s *Service) recipeCount() int {
	return min(max(1, s.cfg.RecipeCount), config.MaxRecipeCount)
}

func (s *Service) fallbackResult(items []pantry.Item, prefs Preferences) *GenerationResult {
	return s.newResult(s.synthesizer.Synthesize(items, prefs), FallbackIDPrefix, SourceFallback)
}

// safeFallbackResult 備援本身再 panic 時返回空建議
func (s *Service) safeFallbackResult(items []pantry.Item, prefs Preferences) (result *GenerationResult) {
	defer func() {
		if r := recover(); r != nil {
			common.LogError("Recovered from panic in fallback synthesis", zap.Any("panic", r))
			result = s.newResult(nil, FallbackIDPrefix, SourceFallback)
		}
	}()
	return s.fallbackResult(items, prefs)
}

func (s *Service) emptyPantryResult(prefs Preferences) *GenerationResult {
	placeholder := Suggestion{
		Title:       "Pantry is Empty",
		Description: "Add some ingredients to your pantry to get recipe suggestions",
		Ingredients: []IngredientLine{},
		Instructions: []string{
			"1. Go to your pantry page",
			"2. Add ingredients you have",
			"3. Try generating recipes again",
		},
		PreparationTime:    0,
		Servings:           prefs.ServingsOr(0),
		Difficulty:         "easy",
		Cuisine:            "General",
		ConfidenceScore:    0,
		MissingIngredients: []string{},
	}
	return s.newResult([]Suggestion{placeholder}, EmptyPantryIDPrefix, SourceEmptyPantry)
}

func (s *Service) newResult(suggestions []Suggestion, idPrefix string, source Source) *GenerationResult {
	if suggestions == nil {
		suggestions = []Suggestion{}
	}
	return &GenerationResult{
		Suggestions:  suggestions,
		GenerationID: idPrefix + common.GenerateUUID(),
		Timestamp:    s.now().UnixMilli(),
		Source:       source,
	}
}

func (s *Service) observe(start time.Time, result *GenerationResult) *GenerationResult {
	elapsed := time.Since(start)
	metrics.ObserveGeneration(string(result.Source), elapsed)
	common.LogInfo("Recipe generation completed",
		zap.String("generation_id", result.GenerationID),
		zap.String("source", string(result.Source)),
		zap.Int("suggestions", len(result.Suggestions)),
		zap.Duration("duration", elapsed),
	)
	return result
}

// Prioritize 將即將過期的食材穩定地排到前面，各組保持原順序
func Prioritize(items, expiring []pantry.Item) []pantry.Item {
	if len(expiring) == 0 {
		return items
	}

	names := make(map[string]struct{}, len(expiring))
	for _, item := range expiring {
		names[item.Name] = struct{}{}
	}

	prioritized := make([]pantry.Item, 0, len(items))
	rest := make([]pantry.Item, 0, len(items))
	for _, item := range items {
		if _, ok := names[item.Name]; ok {
			prioritized = append(prioritized, item)
		} else {
			rest = append(rest, item)
		}
	}
	return append(prioritized, rest...)
}
