package recipe

import (
	"fmt"
	"strings"

	"ai-chef-service/internal/pkg/common"
)

// Source 生成結果來源
type Source string

const (
	SourceAI          Source = "ai"
	SourceFallback    Source = "fallback"
	SourceEmptyPantry Source = "empty-pantry"
)

// 生成 ID 前綴
const (
	FallbackIDPrefix    = "fallback-"
	EmptyPantryIDPrefix = "empty-pantry-"
)

// anyValue 表示不限制
const anyValue = "any"

// Preferences 使用者偏好，所有欄位皆為選填
type Preferences struct {
	MealType            string   `json:"mealType,omitempty" yaml:"mealType,omitempty"`
	Difficulty          string   `json:"difficulty,omitempty" yaml:"difficulty,omitempty"`
	PreferredCuisines   []string `json:"preferredCuisines,omitempty" yaml:"preferredCuisines,omitempty"`
	MaxPreparationTime  *int     `json:"maxPreparationTime,omitempty" yaml:"maxPreparationTime,omitempty"`
	Servings            *int     `json:"servings,omitempty" yaml:"servings,omitempty"`
	DietaryRestrictions []string `json:"dietaryRestrictions,omitempty" yaml:"dietaryRestrictions,omitempty"`
	ExcludeIngredients  []string `json:"excludeIngredients,omitempty" yaml:"excludeIngredients,omitempty"`
}

// HasMealType mealType 有值且不是 "any"
func (p Preferences) HasMealType() bool {
	return constrained(p.MealType)
}

// HasDifficulty difficulty 有值且不是 "any"
func (p Preferences) HasDifficulty() bool {
	return constrained(p.Difficulty)
}

// ServingsOr 返回偏好份量，未設定或非正數時返回 def
func (p Preferences) ServingsOr(def int) int {
	if p.Servings != nil && *p.Servings > 0 {
		return *p.Servings
	}
	return def
}

// Validate 份量與時間上限若有設定必須為正數
func (p Preferences) Validate() error {
	if p.Servings != nil && *p.Servings <= 0 {
		return fmt.Errorf("servings must be positive, got %d", *p.Servings)
	}
	if p.MaxPreparationTime != nil && *p.MaxPreparationTime <= 0 {
		return fmt.Errorf("maxPreparationTime must be positive, got %d", *p.MaxPreparationTime)
	}
	return nil
}

// Normalized 丟棄非正數的份量與時間上限，視同未設定
func (p Preferences) Normalized() Preferences {
	if p.Servings != nil && *p.Servings <= 0 {
		p.Servings = nil
	}
	if p.MaxPreparationTime != nil && *p.MaxPreparationTime <= 0 {
		p.MaxPreparationTime = nil
	}
	return p
}

// Excludes 名稱是否命中 excludeIngredients
func (p Preferences) Excludes(name string) bool {
	for _, ex := range p.ExcludeIngredients {
		ex = common.NormalizeName(ex)
		if ex != "" && common.ContainsAny(name, ex) {
			return true
		}
	}
	return false
}

func constrained(v string) bool {
	v = strings.TrimSpace(v)
	return v != "" && !strings.EqualFold(v, anyValue)
}

// IngredientLine 食譜中的一行食材
type IngredientLine struct {
	Name     string  `json:"name" yaml:"name"`
	Quantity float64 `json:"quantity" yaml:"quantity"`
	Unit     string  `json:"unit" yaml:"unit"`
}

// Suggestion 單一食譜建議
type Suggestion struct {
	Title              string           `json:"title" yaml:"title"`
	Description        string           `json:"description" yaml:"description"`
	Ingredients        []IngredientLine `json:"ingredients" yaml:"ingredients"`
	Instructions       []string         `json:"instructions" yaml:"instructions"`
	PreparationTime    int              `json:"preparationTime" yaml:"preparationTime"`
	Servings           int              `json:"servings" yaml:"servings"`
	Difficulty         string           `json:"difficulty" yaml:"difficulty"`
	Cuisine            string           `json:"cuisine" yaml:"cuisine"`
	ConfidenceScore    float64          `json:"confidenceScore" yaml:"confidenceScore"`
	MissingIngredients []string         `json:"missingIngredients" yaml:"missingIngredients"`
}

// GenerationResult 一次生成請求的結果
type GenerationResult struct {
	Suggestions  []Suggestion `json:"suggestions" yaml:"suggestions"`
	GenerationID string       `json:"generationId" yaml:"generationId"`
	Timestamp    int64        `json:"timestamp" yaml:"timestamp"`
	Source       Source       `json:"source" yaml:"source"`
}
