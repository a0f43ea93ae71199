package recipe

import (
	"fmt"
	"strings"
)

// 預設請求類型
const (
	PresetQuick   = "quick"
	PresetUseItUp = "use-it-up"
)

// QuickPreferences 快速建議：只限制餐別與時間
func QuickPreferences(mealType string, maxTime *int) Preferences {
	return Preferences{
		MealType:           strings.TrimSpace(mealType),
		MaxPreparationTime: maxTime,
	}
}

// UseItUpPreferences 清冰箱：不限餐別，難度簡單
func UseItUpPreferences() Preferences {
	return Preferences{
		MealType:   anyValue,
		Difficulty: "easy",
	}
}

// ApplyPreset 依名稱套用預設；空名稱返回原偏好
func ApplyPreset(name string, base Preferences) (Preferences, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "":
		return base, nil
	case PresetQuick:
		return QuickPreferences(base.MealType, base.MaxPreparationTime), nil
	case PresetUseItUp:
		return UseItUpPreferences(), nil
	default:
		return base, fmt.Errorf("unknown preset %q (want %q or %q)", name, PresetQuick, PresetUseItUp)
	}
}
