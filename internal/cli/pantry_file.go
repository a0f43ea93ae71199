package cli

import (
	"fmt"
	"os"
	"strings"

	"ai-chef-service/internal/core/pantry"
	"ai-chef-service/internal/core/recipe"
	"ai-chef-service/internal/pkg/common"

	"gopkg.in/yaml.v3"
)

// PantryFile chefctl 讀取的 pantry 快照檔
type PantryFile struct {
	Items       []PantryEntry      `yaml:"items"`
	Expiring    []string           `yaml:"expiring,omitempty"`
	Preferences recipe.Preferences `yaml:"preferences,omitempty"`
}

// PantryEntry 檔案中的單一食材
type PantryEntry struct {
	Name       string  `yaml:"name"`
	Quantity   float64 `yaml:"quantity"`
	Unit       string  `yaml:"unit"`
	ExpiryDate string  `yaml:"expiryDate,omitempty"`
}

// LoadPantryFile 讀取並解析 YAML pantry 檔
func LoadPantryFile(path string) (*PantryFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read pantry file %q: %w", path, err)
	}
	return ParsePantryFile(data)
}

// ParsePantryFile 解析 YAML 內容
func ParsePantryFile(data []byte) (*PantryFile, error) {
	var file PantryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("invalid pantry yaml: %w", err)
	}
	return &file, nil
}

// PantryItems 轉換為 pantry 項目；無名稱的條目略過
func (f *PantryFile) PantryItems() ([]pantry.Item, error) {
	items := make([]pantry.Item, 0, len(f.Items))
	for i, entry := range f.Items {
		if strings.TrimSpace(entry.Name) == "" {
			continue
		}

		item := pantry.Item{
			Name:     entry.Name,
			Quantity: entry.Quantity,
			Unit:     entry.Unit,
		}
		if entry.ExpiryDate != "" {
			date, err := pantry.ParseDate(entry.ExpiryDate)
			if err != nil {
				return nil, fmt.Errorf("item %d (%s): %w", i, entry.Name, err)
			}
			item.ExpiryDate = &date
		}
		items = append(items, item.Normalize())
	}
	return items, nil
}

// ExpiringItems 以名稱挑出即將過期的項目，順序依 names
func ExpiringItems(items []pantry.Item, names []string) []pantry.Item {
	byName := make(map[string]pantry.Item, len(items))
	for _, item := range items {
		byName[item.Name] = item
	}

	seen := make(map[string]struct{}, len(names))
	expiring := make([]pantry.Item, 0, len(names))
	for _, name := range names {
		key := common.NormalizeName(name)
		if _, dup := seen[key]; dup {
			continue
		}
		if item, ok := byName[key]; ok {
			expiring = append(expiring, item)
			seen[key] = struct{}{}
		}
	}
	return expiring
}
