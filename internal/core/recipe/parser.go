package recipe

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"ai-chef-service/internal/core/pantry"
	"ai-chef-service/internal/pkg/common"

	"go.uber.org/zap"
)

// 解析預設值
const (
	defaultDescription    = "Delicious recipe based on your ingredients"
	defaultTime           = 30
	defaultServings       = 2
	defaultDifficulty     = "Easy"
	defaultCuisine        = "International"
	defaultUnit           = "portion"
	parsedConfidence      = 0.95
	unstructuredConfident = 0.8

	pantryTopUpThreshold = 5
	pantryTopUpCount     = 3
	pantryQuantityCap    = 200.0

	unstructuredMaxRecipes  = 3
	unstructuredDescRunes   = 100
	unstructuredDescription = "Delicious recipe based on your available ingredients"
)

var (
	parsedMissing       = []string{"salt", "pepper", "oil", "water"}
	unstructuredMissing = []string{"salt", "pepper", "oil", "herbs"}

	defaultInstructions = []string{
		"Follow the recipe instructions above",
		"Adjust seasoning to taste",
		"Serve and enjoy",
	}

	unstructuredInstructions = []string{
		"1. Prepare all ingredients as needed",
		"2. Follow the cooking instructions for your chosen recipe",
		"3. Adjust seasoning to taste",
		"4. Plate and garnish if desired",
		"5. Serve and enjoy your creation!",
	}

	numberedLine = regexp.MustCompile(`^\d+[.)]\s*`)
	nonDigit     = regexp.MustCompile(`[^0-9]`)
)

const anyStartMarker = "===RECIPE "

// Parser 解析 LLM 自由文字回應
type Parser struct {
	namer *Namer
}

// NewParser 創建 Parser
func NewParser(namer *Namer) *Parser {
	if namer == nil {
		namer = NewNamer(nil)
	}
	return &Parser{namer: namer}
}

// Parse 依起訖標記切出每份食譜並解析；無法辨識格式時返回通用佔位食譜
func (p *Parser) Parse(raw string, recipeCount int, items []pantry.Item, prefs Preferences) []Suggestion {
	recipeCount = max(1, recipeCount)
	if !strings.Contains(raw, StartMarker(1)) {
		common.LogWarn("AI response does not follow expected format, using unstructured placeholders")
		return p.unstructured(raw, recipeCount, items, prefs)
	}

	suggestions := make([]Suggestion, 0, recipeCount)
	for i := 1; i <= recipeCount; i++ {
		block, ok := extractBlock(raw, i)
		if !ok {
			common.LogWarn("Recipe block not found in response, skipping", zap.Int("index", i))
			continue
		}

		suggestion, err := p.parseBlock(block, items, prefs)
		if err != nil {
			common.LogWarn("Failed to parse recipe block, dropping",
				zap.Int("index", i),
				zap.Error(err),
			)
			continue
		}
		common.LogDebug("Parsed recipe block",
			zap.Int("index", i),
			zap.String("title", suggestion.Title),
		)
		suggestions = append(suggestions, suggestion)
	}

	if len(suggestions) == 0 {
		common.LogWarn("No recipe blocks parsed, using unstructured placeholders")
		return p.unstructured(raw, recipeCount, items, prefs)
	}
	return suggestions
}

// extractBlock 取出第 i 份食譜內容；缺少結束標記時截至下一個起始標記或文末
func extractBlock(raw string, i int) (string, bool) {
	start := StartMarker(i)
	idx := strings.Index(raw, start)
	if idx < 0 {
		return "", false
	}
	rest := raw[idx+len(start):]

	if end := strings.Index(rest, EndMarker(i)); end >= 0 {
		return strings.TrimSpace(rest[:end]), true
	}
	if next := strings.Index(rest, anyStartMarker); next >= 0 {
		return strings.TrimSpace(rest[:next]), true
	}
	return strings.TrimSpace(rest), true
}

func (p *Parser) parseBlock(block string, items []pantry.Item, prefs Preferences) (s Suggestion, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while parsing recipe block: %v", r)
		}
	}()

	prepTime := parseInt(extractValue(block, labelPrepTime))
	cookTime := parseInt(extractValue(block, labelCookTime))
	totalTime := parseInt(extractValue(block, labelTotalTime))
	if totalTime <= 0 {
		totalTime = prepTime + cookTime
	}
	if totalTime <= 0 {
		totalTime = defaultTime
	}

	servings := parseInt(extractValue(block, labelServings))
	if servings <= 0 {
		servings = servingsOr(prefs, defaultServings)
	}

	return Suggestion{
		Title:              p.namer.Enhance(extractValue(block, labelName), items),
		Description:        valueOr(extractValue(block, labelDescription), defaultDescription),
		Ingredients:        parseIngredients(block, items),
		Instructions:       parseInstructions(block),
		PreparationTime:    totalTime,
		Servings:           servings,
		Difficulty:         valueOr(extractValue(block, labelDifficulty), defaultDifficulty),
		Cuisine:            valueOr(extractValue(block, labelCuisine), defaultCuisine),
		ConfidenceScore:    parsedConfidence,
		MissingIngredients: append([]string(nil), parsedMissing...),
	}, nil
}

// extractValue 取標籤後至行尾的文字，標籤不存在返回空字串
func extractValue(text, label string) string {
	idx := strings.Index(text, label)
	if idx < 0 {
		return ""
	}
	rest := text[idx+len(label):]
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		rest = rest[:nl]
	}
	return strings.TrimSpace(rest)
}

// parseInt 移除所有非數字字元後解析，失敗返回 0
func parseInt(s string) int {
	n, err := strconv.Atoi(nonDigit.ReplaceAllString(s, ""))
	if err != nil {
		return 0
	}
	return n
}

func parseIngredients(block string, items []pantry.Item) []IngredientLine {
	var lines []IngredientLine

	start := strings.Index(block, labelIngredients)
	end := strings.Index(block, labelInstructions)
	if start >= 0 && end > start {
		section := block[start+len(labelIngredients) : end]
		for _, line := range strings.Split(section, "\n") {
			entry, ok := stripBullet(strings.TrimSpace(line))
			if !ok {
				continue
			}
			lines = append(lines, ParseIngredientLine(entry))
		}
	}

	if len(lines) < pantryTopUpThreshold {
		lines = append(lines, pantryLines(items, pantryTopUpCount, pantryQuantityCap)...)
	}

	if len(lines) == 0 {
		lines = append(lines, IngredientLine{Name: "Your ingredients", Quantity: 1, Unit: defaultUnit})
	}
	return lines
}

func stripBullet(line string) (string, bool) {
	for _, bullet := range []string{"-", "*", "•"} {
		if strings.HasPrefix(line, bullet) {
			entry := strings.TrimSpace(strings.TrimPrefix(line, bullet))
			return entry, entry != ""
		}
	}
	return "", false
}

// ParseIngredientLine 解析 "<數量> <單位> <名稱>"；首欄非數字時整行視為名稱
func ParseIngredientLine(line string) IngredientLine {
	line = strings.TrimSpace(line)
	fields := strings.Fields(line)
	if len(fields) >= 3 {
		if qty, ok := parseQuantity(fields[0]); ok {
			return IngredientLine{
				Name:     strings.Join(fields[2:], " "),
				Quantity: qty,
				Unit:     fields[1],
			}
		}
	}
	return IngredientLine{Name: line, Quantity: 1, Unit: defaultUnit}
}

// parseQuantity 接受小數與簡單分數，負數或非有限值視為無法解析
func parseQuantity(s string) (float64, bool) {
	var qty float64
	if num, den, found := strings.Cut(s, "/"); found {
		n, err1 := strconv.ParseFloat(num, 64)
		d, err2 := strconv.ParseFloat(den, 64)
		if err1 != nil || err2 != nil || d == 0 {
			return 0, false
		}
		qty = n / d
	} else {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		qty = v
	}
	if qty < 0 || math.IsNaN(qty) || math.IsInf(qty, 0) {
		return 0, false
	}
	return qty, true
}

func parseInstructions(block string) []string {
	var steps []string

	if idx := strings.Index(block, labelInstructions); idx >= 0 {
		section := block[idx+len(labelInstructions):]
		for _, line := range strings.Split(section, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if loc := numberedLine.FindStringIndex(line); loc != nil {
				if step := strings.TrimSpace(line[loc[1]:]); step != "" {
					steps = append(steps, step)
				}
				continue
			}
			if len(steps) > 0 {
				steps[len(steps)-1] += " " + line
			}
		}
	}

	if len(steps) == 0 {
		steps = append(steps, defaultInstructions...)
	}
	return steps
}

func (p *Parser) unstructured(raw string, recipeCount int, items []pantry.Item, prefs Preferences) []Suggestion {
	n := min(unstructuredMaxRecipes, max(1, recipeCount))

	description := unstructuredDescription
	if trimmed := strings.TrimSpace(raw); utf8.RuneCountInString(trimmed) > unstructuredDescRunes {
		description = common.Truncate(trimmed, unstructuredDescRunes) + "..."
	}

	suggestions := make([]Suggestion, 0, n)
	for i := 0; i < n; i++ {
		ingredients := pantryLines(items, pantryTopUpCount, pantryQuantityCap)
		if len(ingredients) == 0 {
			ingredients = []IngredientLine{{Name: "Available ingredients", Quantity: 1, Unit: defaultUnit}}
		}

		suggestions = append(suggestions, Suggestion{
			Title:              p.namer.Creative(items),
			Description:        description,
			Ingredients:        ingredients,
			Instructions:       append([]string(nil), unstructuredInstructions...),
			PreparationTime:    defaultTime,
			Servings:           servingsOr(prefs, defaultServings),
			Difficulty:         defaultDifficulty,
			Cuisine:            defaultCuisine,
			ConfidenceScore:    unstructuredConfident,
			MissingIngredients: append([]string(nil), unstructuredMissing...),
		})
	}
	return suggestions
}

// pantryLines 取前 limit 項食材並限制數量上限
func pantryLines(items []pantry.Item, limit int, quantityCap float64) []IngredientLine {
	lines := make([]IngredientLine, 0, min(limit, len(items)))
	for _, item := range items {
		if len(lines) == limit {
			break
		}
		lines = append(lines, capped(item, quantityCap, valueOr(item.Unit, defaultUnit)))
	}
	return lines
}

// capped 以食材建立一行，數量不超過 quantityCap 且不為負
func capped(item pantry.Item, quantityCap float64, unit string) IngredientLine {
	return IngredientLine{
		Name:     item.Name,
		Quantity: math.Max(0, math.Min(item.Quantity, quantityCap)),
		Unit:     unit,
	}
}

func servingsOr(prefs Preferences, def int) int {
	if s := prefs.ServingsOr(def); s > 0 {
		return s
	}
	return def
}

func valueOr(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}
