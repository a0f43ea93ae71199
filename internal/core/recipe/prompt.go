package recipe

import (
	"fmt"
	"strconv"
	"strings"

	"ai-chef-service/internal/core/pantry"
)

// 回應格式標籤，PromptBuilder 與 Parser 共用
const (
	labelName         = "Recipe Name:"
	labelDescription  = "Description:"
	labelPrepTime     = "Prep Time:"
	labelCookTime     = "Cook Time:"
	labelTotalTime    = "Total Time:"
	labelServings     = "Servings:"
	labelDifficulty   = "Difficulty:"
	labelCuisine      = "Cuisine:"
	labelIngredients  = "INGREDIENTS:"
	labelInstructions = "INSTRUCTIONS:"
)

// StartMarker 第 i 份食譜的起始標記
func StartMarker(i int) string {
	return fmt.Sprintf("===RECIPE %d START===", i)
}

// EndMarker 第 i 份食譜的結束標記
func EndMarker(i int) string {
	return fmt.Sprintf("===RECIPE %d END===", i)
}

// PromptBuilder 建立送往 LLM 的提示詞
type PromptBuilder struct{}

// NewPromptBuilder 創建 PromptBuilder
func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// Build 依食材、偏好與食譜數量建立提示詞
func (b *PromptBuilder) Build(items []pantry.Item, prefs Preferences, recipeCount int) string {
	if recipeCount < 1 {
		recipeCount = 1
	}

	var sb strings.Builder

	sb.WriteString("You are a creative chef who invents unique and exciting recipe names. ")
	fmt.Fprintf(&sb, "Create %d delicious recipe(s) using primarily the available ingredients below.\n\n", recipeCount)

	sb.WriteString("AVAILABLE INGREDIENTS:\n")
	for _, item := range items {
		fmt.Fprintf(&sb, "- %s (%s %s)\n", item.Name, formatQuantity(item.Quantity), item.Unit)
	}

	sb.WriteString("\nUSER PREFERENCES:\n")
	writePreferences(&sb, prefs)

	sb.WriteString("\nCREATIVITY REQUIREMENTS FOR RECIPE NAMES:\n")
	sb.WriteString("- Recipe names MUST be UNIQUE, DESCRIPTIVE, and CREATIVE\n")
	sb.WriteString("- Include adjectives, cooking methods, or cultural references\n")
	sb.WriteString("- Make each recipe name different based on specific ingredients\n")
	sb.WriteString("- Avoid generic names like 'Stir Fry', 'Soup', 'Pasta Dish'\n")
	sb.WriteString("- GOOD examples: 'Spicy Ginger-Garlic Chicken Stir Fry', 'Creamy Tomato Basil Pasta', 'Hearty Autumn Vegetable Stew'\n")
	sb.WriteString("- BAD examples: 'Vegetable Stir Fry', 'Pasta', 'Soup'\n\n")

	sb.WriteString("IMPORTANT: You may suggest common pantry items (salt, pepper, oil, etc.) ")
	sb.WriteString("even if not listed above, but focus on using the listed ingredients.\n\n")

	sb.WriteString("RESPONSE FORMAT - Reply EXACTLY in this format:\n")
	for i := 1; i <= recipeCount; i++ {
		writeTemplate(&sb, i)
		if i < recipeCount {
			sb.WriteString("\n")
		}
	}

	sb.WriteString("\nMake the recipes practical, delicious, and easy to follow! ")
	sb.WriteString("Each recipe should be distinctly different from the others.\n")

	return sb.String()
}

func writePreferences(sb *strings.Builder, prefs Preferences) {
	if prefs.HasMealType() {
		fmt.Fprintf(sb, "- Meal type: %s\n", prefs.MealType)
	}
	if prefs.MaxPreparationTime != nil {
		fmt.Fprintf(sb, "- Maximum prep time: %d minutes\n", *prefs.MaxPreparationTime)
	}
	if prefs.Servings != nil {
		fmt.Fprintf(sb, "- Servings: %d\n", *prefs.Servings)
	}
	if prefs.HasDifficulty() {
		fmt.Fprintf(sb, "- Difficulty level: %s\n", prefs.Difficulty)
	}
	if len(prefs.PreferredCuisines) > 0 {
		fmt.Fprintf(sb, "- Preferred cuisines: %s\n", strings.Join(prefs.PreferredCuisines, ", "))
	}
	if len(prefs.DietaryRestrictions) > 0 {
		fmt.Fprintf(sb, "- Dietary restrictions: %s\n", strings.Join(prefs.DietaryRestrictions, ", "))
	}
	if len(prefs.ExcludeIngredients) > 0 {
		fmt.Fprintf(sb, "- Do NOT use: %s\n", strings.Join(prefs.ExcludeIngredients, ", "))
	}
}

func writeTemplate(sb *strings.Builder, i int) {
	sb.WriteString(StartMarker(i) + "\n")
	sb.WriteString(labelName + " [Creative recipe name]\n")
	sb.WriteString(labelDescription + " [Brief description (1-2 sentences)]\n")
	sb.WriteString(labelPrepTime + " [number] minutes\n")
	sb.WriteString(labelCookTime + " [number] minutes\n")
	sb.WriteString(labelTotalTime + " [number] minutes\n")
	sb.WriteString(labelServings + " [number]\n")
	sb.WriteString(labelDifficulty + " [Easy/Medium/Hard]\n")
	sb.WriteString(labelCuisine + " [Type of cuisine]\n")
	sb.WriteString("\n" + labelIngredients + "\n")
	sb.WriteString("- [Quantity] [Unit] [Ingredient name]\n")
	sb.WriteString("- [Quantity] [Unit] [Ingredient name]\n")
	sb.WriteString("\n" + labelInstructions + "\n")
	sb.WriteString("1. [Step 1]\n")
	sb.WriteString("2. [Step 2]\n")
	sb.WriteString("3. [Step 3]\n")
	sb.WriteString(EndMarker(i) + "\n")
}

// formatQuantity 整數不顯示小數點
func formatQuantity(q float64) string {
	return strconv.FormatFloat(q, 'f', -1, 64)
}
