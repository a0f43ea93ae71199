package recipe

import (
	"context"

	"ai-chef-service/internal/core/pantry"

	"github.com/stretchr/testify/mock"
)

// MockGenerator LLM 生成 mock
type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

// MockPantrySource pantry 來源 mock
type MockPantrySource struct {
	mock.Mock
}

func (m *MockPantrySource) GetUserPantry(ctx context.Context, userID string) ([]pantry.Item, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]pantry.Item), args.Error(1)
}

func (m *MockPantrySource) GetExpiringItems(ctx context.Context, userID string) ([]pantry.Item, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]pantry.Item), args.Error(1)
}

// fixedRand 永遠返回固定索引
type fixedRand int

func (f fixedRand) Intn(n int) int {
	return int(f) % n
}

func items(names ...string) []pantry.Item {
	out := make([]pantry.Item, 0, len(names))
	for _, name := range names {
		out = append(out, pantry.Item{Name: name, Quantity: 500, Unit: "g"})
	}
	return out
}

func itemNames(items []pantry.Item) []string {
	names := make([]string, 0, len(items))
	for _, item := range items {
		names = append(names, item.Name)
	}
	return names
}

func intPtr(v int) *int {
	return &v
}
