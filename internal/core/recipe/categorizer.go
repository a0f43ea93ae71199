package recipe

import "strings"

// Category 食材分類
type Category string

const (
	CategoryProtein   Category = "protein"
	CategoryGrain     Category = "grain"
	CategoryVegetable Category = "vegetable"
	CategoryDairy     Category = "dairy"
	CategoryCondiment Category = "condiment"
	CategoryOther     Category = "other"
)

type categoryRule struct {
	category Category
	keywords []string
}

// categoryRules 依優先順序排列，第一個命中的分類勝出
var categoryRules = []categoryRule{
	{CategoryProtein, []string{
		"chicken", "beef", "pork", "fish", "tofu", "egg",
		"turkey", "lamb", "shrimp", "prawn", "salmon", "tuna", "bacon", "sausage", "tempeh",
	}},
	{CategoryGrain, []string{
		"rice", "pasta", "noodle", "bread", "flour",
		"spaghetti", "quinoa", "couscous", "tortilla", "barley",
	}},
	{CategoryVegetable, []string{
		"tomato", "onion", "garlic", "carrot", "potato", "broccoli",
		"pepper", "spinach", "lettuce", "cabbage", "mushroom", "zucchini", "celery", "cucumber", "kale", "leek",
	}},
	{CategoryDairy, []string{
		"milk", "cheese", "yogurt",
		"butter", "cream",
	}},
	{CategoryCondiment, []string{
		"oil", "vinegar", "sauce",
		"ketchup", "mustard", "mayo", "honey",
	}},
}

// Categorize 以關鍵字判斷食材分類，無命中返回 CategoryOther
func Categorize(name string) Category {
	lower := strings.ToLower(name)
	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.category
			}
		}
	}
	return CategoryOther
}
