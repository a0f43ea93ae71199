package common

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// GenerateUUID 生成 UUID
func GenerateUUID() string {
	return uuid.New().String()
}

// Truncate 依字元截斷字串，不會切斷多位元組字元
func Truncate(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxRunes {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxRunes])
}

// ContainsAny 檢查 s 是否包含任一關鍵字（不分大小寫）
func ContainsAny(s string, keywords ...string) bool {
	lower := strings.ToLower(s)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// NormalizeName 去除首尾空白並轉小寫
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
