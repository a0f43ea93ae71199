package recipe

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"ai-chef-service/internal/core/pantry"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// RandSource 名稱組合使用的亂數來源
type RandSource interface {
	Intn(n int) int
}

type globalRand struct{}

func (globalRand) Intn(n int) int {
	return rand.IntN(n)
}

// 名稱詞庫
var (
	stirFryAdjectives = []string{"Savory", "Spicy", "Creamy", "Crispy", "Zesty", "Herbed", "Garlicky", "Ginger"}
	stirFryStyles     = []string{"Sautéed", "Pan-Fried", "Wok-Tossed", "Quick", "Easy", "Gourmet", "Sizzling"}
	stirFryExtras     = []string{"Delight", "Fusion", "Medley", "Bowl", "Creation", "Special", "Feast"}
	stirFryProteins   = []string{"chicken", "beef", "tofu", "shrimp"}

	pastaSauces      = []string{"Creamy", "Tomato-Based", "Garlic", "Pesto", "Alfredo", "Marinara", "Arrabbiata"}
	pastaShapes      = []string{"Pasta", "Noodles", "Spaghetti", "Fettuccine", "Penne", "Fusilli"}
	pastaDescriptors = []string{"Delight", "Toss", "Dish", "Perfection", "Special", "Creation"}

	soupHeartiness = []string{"Hearty", "Comforting", "Nourishing", "Warming", "Rustic", "Homestyle"}
	soupSeasons    = []string{"Autumn", "Winter", "Spring", "Summer", "Seasonal", "Farmhouse"}
	soupTypes      = []string{"Stew", "Soup", "Chowder", "Broth", "Potage", "Bisque"}
	soupVegetables = []string{"vegetable", "carrot", "potato", "tomato"}

	creativeMethods = []string{"Roasted", "Grilled", "Baked", "Sautéed", "Steamed", "Simmered"}
	creativeTypes   = []string{"Fusion Bowl", "Kitchen Creation", "Pantry Special", "Chef's Choice", "Quick Fix"}
)

const defaultSoupVegetable = "Vegetable"

// Namer 將過於通用的食譜名稱改寫為較有特色的名稱
type Namer struct {
	rnd RandSource
}

// NewNamer 創建 Namer；rnd 為 nil 時使用全域亂數
func NewNamer(rnd RandSource) *Namer {
	if rnd == nil {
		rnd = globalRand{}
	}
	return &Namer{rnd: rnd}
}

// Enhance 依名稱模式改寫；空名稱以前三項食材組合新名稱
func (n *Namer) Enhance(title string, items []pantry.Item) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return n.Creative(items)
	}

	lower := strings.ToLower(title)
	switch {
	case strings.Contains(lower, "stir fry"), strings.Contains(lower, "stir-fry"):
		return n.stirFry(title, items)
	case strings.Contains(lower, "pasta"), strings.Contains(lower, "noodle"):
		return n.pasta()
	case strings.Contains(lower, "soup"), strings.Contains(lower, "stew"):
		return n.soup(items)
	}
	return title
}

// Creative 以前三項食材組合名稱
func (n *Namer) Creative(items []pantry.Item) string {
	method := n.pick(creativeMethods)
	kind := n.pick(creativeTypes)

	names := make([]string, 0, 3)
	for _, item := range items {
		if len(names) == 3 {
			break
		}
		if name := strings.TrimSpace(item.Name); name != "" {
			names = append(names, titleCase(name))
		}
	}

	if len(names) == 0 {
		return fmt.Sprintf("Creative %s %s", method, kind)
	}
	return fmt.Sprintf("%s %s %s", method, strings.Join(names, " & "), kind)
}

func (n *Namer) stirFry(base string, items []pantry.Item) string {
	adjective := n.pick(stirFryAdjectives)
	style := n.pick(stirFryStyles)
	extra := n.pick(stirFryExtras)

	subject := base
	if protein := firstMatching(items, stirFryProteins); protein != "" {
		subject = titleCase(protein)
	}
	return fmt.Sprintf("%s %s %s %s", adjective, style, subject, extra)
}

func (n *Namer) pasta() string {
	return fmt.Sprintf("%s %s %s", n.pick(pastaSauces), n.pick(pastaShapes), n.pick(pastaDescriptors))
}

func (n *Namer) soup(items []pantry.Item) string {
	heart := n.pick(soupHeartiness)
	season := n.pick(soupSeasons)
	kind := n.pick(soupTypes)

	veg := defaultSoupVegetable
	if match := firstMatching(items, soupVegetables); match != "" {
		veg = titleCase(match)
	}
	return fmt.Sprintf("%s %s %s %s", heart, season, veg, kind)
}

func (n *Namer) pick(words []string) string {
	return words[n.rnd.Intn(len(words))]
}

// titleCase Caser 有狀態，不可跨 goroutine 共用
func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}

// firstMatching 返回第一個名稱包含任一關鍵字的食材名稱
func firstMatching(items []pantry.Item, keywords []string) string {
	for _, item := range items {
		lower := strings.ToLower(item.Name)
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				return item.Name
			}
		}
	}
	return ""
}
