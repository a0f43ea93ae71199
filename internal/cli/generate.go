package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"ai-chef-service/internal/core/pantry"
	"ai-chef-service/internal/core/recipe"
	"ai-chef-service/internal/pkg/common"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// 輸出格式
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Generator 以呼叫端提供的 pantry 快照生成食譜
type Generator interface {
	GenerateRecipes(ctx context.Context, items, expiring []pantry.Item, prefs recipe.Preferences) *recipe.GenerationResult
}

// GeneratorFactory 在命令執行時建立生成服務
type GeneratorFactory func() (Generator, error)

func generateCmd(factory GeneratorFactory, stdout io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "generate",
		Usage: "Generate recipe suggestions from a pantry file",
		Description: `Reads a YAML pantry snapshot and prints recipe suggestions.

When the generative endpoint is not configured or fails, suggestions come
from the rule-based fallback, so the command always produces a result.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "pantry",
				Aliases:  []string{"p"},
				Usage:    "Path to the YAML pantry file",
				Required: true,
			},
			&cli.StringSliceFlag{
				Name:  "expiring",
				Usage: "Name of a pantry item to use first (repeatable)",
			},
			&cli.StringFlag{
				Name:  "preset",
				Usage: fmt.Sprintf("Preference preset (supported values: %s, %s)", recipe.PresetQuick, recipe.PresetUseItUp),
			},
			&cli.StringFlag{
				Name:  "meal-type",
				Usage: "Meal type (e.g., breakfast, lunch, dinner)",
			},
			&cli.IntFlag{
				Name:  "max-time",
				Usage: "Maximum preparation time in minutes",
			},
			&cli.IntFlag{
				Name:  "servings",
				Usage: "Number of servings",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"t"},
				Value:   FormatJSON,
				Usage:   fmt.Sprintf("Output format (supported values: %s, %s)", FormatJSON, FormatYAML),
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write output to file instead of stdout",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			format := strings.ToLower(cmd.String("format"))
			if format != FormatJSON && format != FormatYAML {
				return fmt.Errorf("unknown output format: %q", format)
			}

			file, err := LoadPantryFile(cmd.String("pantry"))
			if err != nil {
				return err
			}

			items, err := file.PantryItems()
			if err != nil {
				return fmt.Errorf("invalid pantry file: %w", err)
			}
			expiring := ExpiringItems(items, append(file.Expiring, cmd.StringSlice("expiring")...))

			prefs, err := buildPreferences(cmd, file.Preferences)
			if err != nil {
				return err
			}

			generator, err := factory()
			if err != nil {
				return fmt.Errorf("failed to create generator: %w", err)
			}

			common.LogDebug("Generating recipes from pantry file",
				zap.String("pantry", cmd.String("pantry")),
				zap.Int("items", len(items)),
				zap.Int("expiring", len(expiring)),
			)

			result := generator.GenerateRecipes(ctx, items, expiring, prefs)

			return writeResult(result, format, cmd.String("output"), stdout)
		},
	}
}

// buildPreferences 以旗標覆寫檔案偏好，最後套用 preset
func buildPreferences(cmd *cli.Command, base recipe.Preferences) (recipe.Preferences, error) {
	prefs := base
	if cmd.IsSet("meal-type") {
		prefs.MealType = cmd.String("meal-type")
	}
	if cmd.IsSet("max-time") {
		maxTime := cmd.Int("max-time")
		prefs.MaxPreparationTime = &maxTime
	}
	if cmd.IsSet("servings") {
		servings := cmd.Int("servings")
		prefs.Servings = &servings
	}
	if err := prefs.Validate(); err != nil {
		return prefs, err
	}

	return recipe.ApplyPreset(cmd.String("preset"), prefs)
}

func writeResult(result *recipe.GenerationResult, format, output string, stdout io.Writer) error {
	w := stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file %q: %w", output, err)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil {
				common.LogWarn("Failed to close output file", zap.String("path", output), zap.Error(cerr))
			}
		}()
		w = f
	}

	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(result); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return fmt.Errorf("failed to encode json: %w", err)
		}
		return nil
	}
}
