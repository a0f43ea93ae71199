package pantry

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ai-chef-service/internal/pkg/common"
)

// DateLayout pantry 服務使用的日期格式
const DateLayout = "2006-01-02"

// Date 只含日期的時間，JSON 格式為 "YYYY-MM-DD"
type Date struct {
	time.Time
}

// NewDate 以年月日建立 Date
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate 解析 "YYYY-MM-DD"，亦接受 RFC3339
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return Date{Time: t}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date{Time: t}, nil
}

// MarshalJSON 實現 json.Marshaler
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Format(DateLayout) + `"`), nil
}

// UnmarshalJSON 實現 json.Unmarshaler
func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		d.Time = time.Time{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Item pantry 中的單一食材
type Item struct {
	Name       string  `json:"name"`
	Quantity   float64 `json:"quantity"`
	Unit       string  `json:"unit"`
	ExpiryDate *Date   `json:"expiryDate,omitempty"`
	AddedDate  *Date   `json:"addedDate,omitempty"`
}

// Normalize 統一名稱大小寫並修正負數量
func (i Item) Normalize() Item {
	i.Name = common.NormalizeName(i.Name)
	i.Unit = strings.TrimSpace(i.Unit)
	if i.Quantity < 0 {
		i.Quantity = 0
	}
	return i
}

// NormalizeItems 對整個清單套用 Normalize，nil 輸入返回空切片
func NormalizeItems(items []Item) []Item {
	out := make([]Item, 0, len(items))
	for _, item := range items {
		out = append(out, item.Normalize())
	}
	return out
}

// Source 提供使用者 pantry 快照
type Source interface {
	GetUserPantry(ctx context.Context, userID string) ([]Item, error)
	GetExpiringItems(ctx context.Context, userID string) ([]Item, error)
}
