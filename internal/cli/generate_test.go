package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"ai-chef-service/internal/core/pantry"
	"ai-chef-service/internal/core/recipe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const samplePantry = `items:
  - name: Chicken Breast
    quantity: 500
    unit: g
  - name: Rice
    quantity: 2
    unit: cups
  - name: spinach
    quantity: 1
    unit: bag
    expiryDate: 2026-10-20
expiring:
  - spinach
preferences:
  mealType: dinner
  servings: 2
`

// MockGenerator 生成服務 mock
type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) GenerateRecipes(ctx context.Context, items, expiring []pantry.Item, prefs recipe.Preferences) *recipe.GenerationResult {
	args := m.Called(ctx, items, expiring, prefs)
	return args.Get(0).(*recipe.GenerationResult)
}

func writePantry(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pantry.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func sampleResult() *recipe.GenerationResult {
	return &recipe.GenerationResult{
		Suggestions: []recipe.Suggestion{{
			Title:           "Garlic Chicken Rice Bowl",
			PreparationTime: 25,
			Servings:        2,
			Difficulty:      "easy",
			ConfidenceScore: 0.8,
		}},
		GenerationID: "gen-42",
		Timestamp:    1700000000000,
		Source:       recipe.SourceFallback,
	}
}

func run(gen Generator, args ...string) (string, error) {
	var out bytes.Buffer
	factory := func() (Generator, error) { return gen, nil }
	err := NewApp("test", factory, &out).Run(context.Background(), append([]string{name}, args...))
	return out.String(), err
}

func TestGenerateCommand(t *testing.T) {
	t.Run("should generate json from pantry file", func(t *testing.T) {
		path := writePantry(t, samplePantry)
		gen := new(MockGenerator)
		servings := 2
		gen.On("GenerateRecipes", mock.Anything,
			mock.MatchedBy(func(items []pantry.Item) bool {
				return len(items) == 3 && items[0].Name == "chicken breast" && items[2].ExpiryDate != nil
			}),
			mock.MatchedBy(func(expiring []pantry.Item) bool {
				return len(expiring) == 1 && expiring[0].Name == "spinach"
			}),
			recipe.Preferences{MealType: "dinner", Servings: &servings},
		).Return(sampleResult())

		out, err := run(gen, "generate", "--pantry", path)

		require.NoError(t, err)
		var result recipe.GenerationResult
		require.NoError(t, json.Unmarshal([]byte(out), &result))
		assert.Equal(t, "gen-42", result.GenerationID)
		assert.Equal(t, recipe.SourceFallback, result.Source)
		gen.AssertExpectations(t)
	})

	t.Run("should apply flag overrides and preset", func(t *testing.T) {
		path := writePantry(t, samplePantry)
		gen := new(MockGenerator)
		maxTime := 15
		gen.On("GenerateRecipes", mock.Anything, mock.Anything,
			mock.MatchedBy(func(expiring []pantry.Item) bool {
				return len(expiring) == 2 && expiring[0].Name == "spinach" && expiring[1].Name == "rice"
			}),
			recipe.QuickPreferences("lunch", &maxTime),
		).Return(sampleResult())

		_, err := run(gen, "generate", "--pantry", path, "--expiring", "Rice",
			"--meal-type", "lunch", "--max-time", "15", "--preset", "quick")

		require.NoError(t, err)
		gen.AssertExpectations(t)
	})

	t.Run("should write yaml to output file", func(t *testing.T) {
		path := writePantry(t, samplePantry)
		output := filepath.Join(t.TempDir(), "result.yaml")
		gen := new(MockGenerator)
		gen.On("GenerateRecipes", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(sampleResult())

		out, err := run(gen, "generate", "--pantry", path, "--format", "yaml", "--output", output)

		require.NoError(t, err)
		assert.Empty(t, out)
		data, err := os.ReadFile(output)
		require.NoError(t, err)
		var result recipe.GenerationResult
		require.NoError(t, yaml.Unmarshal(data, &result))
		assert.Equal(t, "gen-42", result.GenerationID)
		require.Len(t, result.Suggestions, 1)
		assert.Equal(t, "Garlic Chicken Rice Bowl", result.Suggestions[0].Title)
	})

	t.Run("should reject unknown format", func(t *testing.T) {
		gen := new(MockGenerator)

		_, err := run(gen, "generate", "--pantry", writePantry(t, samplePantry), "--format", "xml")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown output format")
		gen.AssertNotCalled(t, "GenerateRecipes", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("should reject unknown preset", func(t *testing.T) {
		gen := new(MockGenerator)

		_, err := run(gen, "generate", "--pantry", writePantry(t, samplePantry), "--preset", "feast")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown preset")
	})

	t.Run("should reject non positive servings", func(t *testing.T) {
		gen := new(MockGenerator)

		_, err := run(gen, "generate", "--pantry", writePantry(t, samplePantry), "--servings", "0")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "servings must be positive")
	})

	t.Run("should reject non positive servings from the pantry file", func(t *testing.T) {
		gen := new(MockGenerator)

		_, err := run(gen, "generate", "--pantry", writePantry(t, "items:\n  - name: egg\npreferences:\n  servings: -2\n"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "servings must be positive")
		gen.AssertNotCalled(t, "GenerateRecipes", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("should fail on missing pantry file", func(t *testing.T) {
		gen := new(MockGenerator)

		_, err := run(gen, "generate", "--pantry", filepath.Join(t.TempDir(), "missing.yaml"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read pantry file")
	})

	t.Run("should surface factory errors", func(t *testing.T) {
		var out bytes.Buffer
		factory := func() (Generator, error) { return nil, errors.New("bad config") }

		err := NewApp("test", factory, &out).Run(context.Background(),
			[]string{name, "generate", "--pantry", writePantry(t, samplePantry)})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "bad config")
	})
}

func TestPantryFile(t *testing.T) {
	t.Run("should normalize items and skip unnamed entries", func(t *testing.T) {
		file, err := ParsePantryFile([]byte("items:\n  - name: '  Tomato '\n    quantity: -1\n  - name: ''\n"))
		require.NoError(t, err)

		items, err := file.PantryItems()

		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "tomato", items[0].Name)
		assert.Zero(t, items[0].Quantity)
	})

	t.Run("should reject invalid expiry date", func(t *testing.T) {
		file, err := ParsePantryFile([]byte("items:\n  - name: milk\n    expiryDate: soon\n"))
		require.NoError(t, err)

		_, err = file.PantryItems()

		require.Error(t, err)
		assert.Contains(t, err.Error(), "milk")
	})

	t.Run("should reject malformed yaml", func(t *testing.T) {
		_, err := ParsePantryFile([]byte("items: [\n"))

		assert.Error(t, err)
	})
}

func TestExpiringItems(t *testing.T) {
	items := []pantry.Item{{Name: "tomato"}, {Name: "onion"}, {Name: "chicken"}}

	expiring := ExpiringItems(items, []string{"Onion", "basil", "onion", "tomato"})

	require.Len(t, expiring, 2)
	assert.Equal(t, "onion", expiring[0].Name)
	assert.Equal(t, "tomato", expiring[1].Name)
}
