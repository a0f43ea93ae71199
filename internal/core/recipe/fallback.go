package recipe

import (
	"ai-chef-service/internal/core/pantry"
	"ai-chef-service/internal/pkg/common"

	"go.uber.org/zap"
)

// pantryView 已分類的 pantry 快照
type pantryView struct {
	items      []pantry.Item
	categories []Category
	present    map[Category]bool
}

func newPantryView(items []pantry.Item) *pantryView {
	v := &pantryView{
		items:      items,
		categories: make([]Category, len(items)),
		present:    make(map[Category]bool),
	}
	for i, item := range items {
		c := Categorize(item.Name)
		v.categories[i] = c
		v.present[c] = true
	}
	return v
}

func (v *pantryView) has(c Category) bool {
	return v.present[c]
}

func (v *pantryView) hasName(keywords ...string) bool {
	for _, item := range v.items {
		if common.ContainsAny(item.Name, keywords...) {
			return true
		}
	}
	return false
}

// filter 依序返回符合條件的前 limit 項；limit <= 0 表示不限
func (v *pantryView) filter(limit int, match func(item pantry.Item, c Category) bool) []pantry.Item {
	var out []pantry.Item
	for i, item := range v.items {
		if limit > 0 && len(out) == limit {
			break
		}
		if match(item, v.categories[i]) {
			out = append(out, item)
		}
	}
	return out
}

func (v *pantryView) inCategory(limit int, c Category) []pantry.Item {
	return v.filter(limit, func(_ pantry.Item, got Category) bool { return got == c })
}

func (v *pantryView) withName(limit int, keywords ...string) []pantry.Item {
	return v.filter(limit, func(item pantry.Item, _ Category) bool {
		return common.ContainsAny(item.Name, keywords...)
	})
}

// fallbackTemplate 一條可用性判斷與對應的食譜模板
type fallbackTemplate struct {
	name    string
	applies func(v *pantryView) bool
	build   func(v *pantryView, prefs Preferences) Suggestion
}

var (
	pastaKeywords = []string{"pasta", "spaghetti", "noodle"}
	sauceKeywords = []string{"sauce", "tomato"}
)

// fallbackTemplates 依序評估，每個命中的模板產生一份食譜
var fallbackTemplates = []fallbackTemplate{
	{
		name: "stir-fry",
		applies: func(v *pantryView) bool {
			return v.has(CategoryVegetable) && v.has(CategoryProtein)
		},
		build: stirFryRecipe,
	},
	{
		name: "pasta",
		applies: func(v *pantryView) bool {
			return (v.has(CategoryGrain) || v.hasName(pastaKeywords...)) && v.hasName(sauceKeywords...)
		},
		build: pastaRecipe,
	},
	{
		name: "soup",
		applies: func(v *pantryView) bool {
			return v.has(CategoryVegetable) && len(v.present) >= 3
		},
		build: soupRecipe,
	},
	{
		name: "omelette",
		applies: func(v *pantryView) bool {
			return v.hasName("egg") && v.has(CategoryVegetable)
		},
		build: omeletteRecipe,
	},
	{
		name: "fried-rice",
		applies: func(v *pantryView) bool {
			return v.hasName("rice") && v.has(CategoryVegetable)
		},
		build: friedRiceRecipe,
	},
}

// Synthesizer 不依賴 AI 的規則式食譜生成
type Synthesizer struct{}

// NewSynthesizer 創建 Synthesizer
func NewSynthesizer() *Synthesizer {
	return &Synthesizer{}
}

// Synthesize 依 pantry 內容套用模板；pantry 為空時返回空切片
func (s *Synthesizer) Synthesize(items []pantry.Item, prefs Preferences) []Suggestion {
	items = withoutExcluded(items, prefs)
	suggestions := make([]Suggestion, 0, len(fallbackTemplates))
	if len(items) == 0 {
		return suggestions
	}

	v := newPantryView(items)
	for _, tmpl := range fallbackTemplates {
		if tmpl.applies(v) {
			suggestions = append(suggestions, tmpl.build(v, prefs))
			common.LogDebug("Fallback template applied", zap.String("template", tmpl.name))
		}
	}

	if len(suggestions) == 0 {
		suggestions = append(suggestions, grainBowlRecipe(v, prefs))
		common.LogDebug("Fallback template applied", zap.String("template", "grain-bowl"))
	}
	return suggestions
}

// withoutExcluded 移除排除的食材，全部被排除時保留原清單
func withoutExcluded(items []pantry.Item, prefs Preferences) []pantry.Item {
	if len(prefs.ExcludeIngredients) == 0 {
		return items
	}
	kept := make([]pantry.Item, 0, len(items))
	for _, item := range items {
		if !prefs.Excludes(item.Name) {
			kept = append(kept, item)
		}
	}
	if len(kept) == 0 {
		return items
	}
	return kept
}

func cappedLines(items []pantry.Item, quantityCap float64, unit string) []IngredientLine {
	lines := make([]IngredientLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, capped(item, quantityCap, unit))
	}
	return lines
}

func stirFryRecipe(v *pantryView, prefs Preferences) Suggestion {
	ingredients := cappedLines(v.inCategory(3, CategoryVegetable), 200, "g")
	ingredients = append(ingredients, cappedLines(v.inCategory(1, CategoryProtein), 150, "g")...)

	return Suggestion{
		Title:       "Quick Vegetable Stir Fry",
		Description: "A quick and healthy stir fry using your available vegetables and protein",
		Ingredients: ingredients,
		Instructions: []string{
			"Chop all vegetables into bite-sized pieces",
			"Cut protein into thin strips or cubes",
			"Heat 1 tablespoon of oil in a wok or large pan over high heat",
			"Cook protein first until browned, then remove from pan",
			"Add vegetables and stir fry for 3-5 minutes until tender-crisp",
			"Return protein to pan, add 2 tablespoons of soy sauce",
			"Stir fry for another 1-2 minutes until everything is heated through",
			"Serve hot over rice or noodles if available",
		},
		PreparationTime:    20,
		Servings:           servingsOr(prefs, 2),
		Difficulty:         "easy",
		Cuisine:            "Asian",
		ConfidenceScore:    0.7,
		MissingIngredients: []string{"cooking oil", "soy sauce", "garlic"},
	}
}

func pastaRecipe(v *pantryView, prefs Preferences) Suggestion {
	var ingredients []IngredientLine

	pasta := v.withName(1, pastaKeywords...)
	if len(pasta) > 0 {
		ingredients = append(ingredients, cappedLines(pasta, 200, "g")...)
	} else {
		ingredients = append(ingredients, cappedLines(v.inCategory(1, CategoryGrain), 200, "g")...)
	}
	ingredients = append(ingredients, cappedLines(v.withName(3, "tomato", "sauce", "cream"), 150, "g")...)
	ingredients = append(ingredients, cappedLines(v.withName(1, "cheese"), 50, "g")...)

	description := "Grain-based dish with flavorful sauce"
	if len(pasta) > 0 {
		description = "A delicious pasta dish with your available ingredients"
	}

	return Suggestion{
		Title:       "Simple Pasta Dish",
		Description: description,
		Ingredients: ingredients,
		Instructions: []string{
			"Cook the pasta/grain according to package instructions",
			"While pasta cooks, chop sauce ingredients if needed",
			"Heat 1 tablespoon of oil in a pan over medium heat",
			"Add sauce ingredients and cook for 5-7 minutes until softened",
			"Season with salt, pepper, and herbs if available",
			"Drain pasta/grain and add to the sauce",
			"Toss everything together until well coated",
			"Grate cheese on top if available and serve immediately",
		},
		PreparationTime:    25,
		Servings:           servingsOr(prefs, 2),
		Difficulty:         "easy",
		Cuisine:            "Italian",
		ConfidenceScore:    0.6,
		MissingIngredients: []string{"salt", "pepper", "olive oil", "herbs"},
	}
}

func soupRecipe(v *pantryView, prefs Preferences) Suggestion {
	ingredients := cappedLines(v.inCategory(4, CategoryVegetable), 150, "g")
	protein := v.inCategory(1, CategoryProtein)
	ingredients = append(ingredients, cappedLines(protein, 100, "g")...)
	ingredients = append(ingredients, cappedLines(v.withName(1, "broth", "stock"), 500, "ml")...)

	description := "Simple vegetable soup"
	instructions := []string{"Chop all vegetables into bite-sized pieces"}
	if len(protein) > 0 {
		description = "Nourishing soup with vegetables and protein"
		instructions = append(instructions, "Cut "+protein[0].Name+" into small cubes")
	}
	instructions = append(instructions,
		"Heat 1 tablespoon of oil in a large pot over medium heat",
		"Add vegetables (and protein if using) and cook for 5 minutes",
		"Add 4 cups of water or broth to the pot",
		"Bring to a boil, then reduce heat and simmer for 20-25 minutes",
		"Season with salt and pepper to taste",
		"Serve hot with crusty bread if available",
	)

	return Suggestion{
		Title:              "Hearty Vegetable Soup",
		Description:        description,
		Ingredients:        ingredients,
		Instructions:       instructions,
		PreparationTime:    35,
		Servings:           servingsOr(prefs, 4),
		Difficulty:         "easy",
		Cuisine:            "International",
		ConfidenceScore:    0.8,
		MissingIngredients: []string{"salt", "pepper", "herbs", "broth/stock"},
	}
}

func omeletteRecipe(v *pantryView, _ Preferences) Suggestion {
	var ingredients []IngredientLine
	if eggs := v.withName(1, "egg"); len(eggs) > 0 {
		line := capped(eggs[0], 3, "pieces")
		line.Name = "Eggs"
		ingredients = append(ingredients, line)
	}
	fillings := v.filter(3, func(item pantry.Item, c Category) bool {
		return c == CategoryVegetable || common.ContainsAny(item.Name, "cheese", "ham")
	})
	ingredients = append(ingredients, cappedLines(fillings, 50, "g")...)

	return Suggestion{
		Title:       "Custom Omelette",
		Description: "Fluffy omelette filled with your available ingredients",
		Ingredients: ingredients,
		Instructions: []string{
			"Chop filling ingredients into small pieces",
			"Beat eggs in a bowl with a pinch of salt and pepper",
			"Heat 1 teaspoon of butter or oil in a non-stick pan over medium heat",
			"Add filling ingredients and cook for 2-3 minutes until softened",
			"Pour beaten eggs over the fillings",
			"Cook for 2-3 minutes until edges set, then gently lift edges",
			"When top is nearly set, fold omelette in half",
			"Slide onto plate and serve immediately",
		},
		PreparationTime:    15,
		Servings:           1,
		Difficulty:         "easy",
		Cuisine:            "French",
		ConfidenceScore:    0.9,
		MissingIngredients: []string{"butter/oil", "salt", "pepper"},
	}
}

func friedRiceRecipe(v *pantryView, prefs Preferences) Suggestion {
	ingredients := cappedLines(v.withName(1, "rice"), 300, "g")
	mixins := v.filter(4, func(item pantry.Item, c Category) bool {
		return c == CategoryVegetable || c == CategoryProtein || common.ContainsAny(item.Name, "egg")
	})
	ingredients = append(ingredients, cappedLines(mixins, 100, "g")...)

	return Suggestion{
		Title:       "Fried Rice",
		Description: "Quick and versatile fried rice using leftover rice and available ingredients",
		Ingredients: ingredients,
		Instructions: []string{
			"If rice is freshly cooked, spread it on a plate to cool slightly",
			"Chop all mix-in ingredients into small, uniform pieces",
			"Heat 2 tablespoons of oil in a wok or large pan over high heat",
			"Add protein (if using) and cook until done, then remove",
			"Add vegetables and cook for 2-3 minutes until tender-crisp",
			"Push vegetables to one side, add beaten eggs if using and scramble",
			"Add rice and break up any clumps",
			"Add 2 tablespoons of soy sauce and stir fry for 2-3 minutes",
			"Return protein to pan and mix everything together",
			"Serve hot",
		},
		PreparationTime:    20,
		Servings:           servingsOr(prefs, 2),
		Difficulty:         "easy",
		Cuisine:            "Asian",
		ConfidenceScore:    0.7,
		MissingIngredients: []string{"cooking oil", "soy sauce", "garlic"},
	}
}

func grainBowlRecipe(v *pantryView, prefs Preferences) Suggestion {
	grains := v.filter(1, func(item pantry.Item, c Category) bool {
		return c == CategoryGrain || common.ContainsAny(item.Name, "rice", "quinoa")
	})
	toppings := v.filter(5, func(_ pantry.Item, c Category) bool { return c != CategoryGrain })

	ingredients := cappedLines(grains, 150, "g")
	ingredients = append(ingredients, cappedLines(toppings, 75, "g")...)

	first := "Cook grain according to package instructions"
	if len(grains) == 0 {
		first = "Arrange your ingredients attractively on a plate"
	}

	return Suggestion{
		Title:       "Simple Grain Bowl",
		Description: "Customizable bowl with grains and your available toppings",
		Ingredients: ingredients,
		Instructions: []string{
			first,
			"Prepare toppings: chop vegetables, cook protein if needed",
			"If using dressing, whisk together 3 parts oil to 1 part acid (vinegar/lemon)",
			"Place grain in bowl (if using) and arrange toppings on top",
			"Drizzle with dressing or sauce if available",
			"Season with salt and pepper to taste",
		},
		PreparationTime:    15,
		Servings:           servingsOr(prefs, 1),
		Difficulty:         "very easy",
		Cuisine:            "International",
		ConfidenceScore:    0.95,
		MissingIngredients: []string{"salt", "pepper", "dressing ingredients"},
	}
}
