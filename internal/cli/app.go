package cli

import (
	"context"
	"io"
	"os"

	"ai-chef-service/internal/pkg/common"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const name = "chefctl"

// NewApp 創建 chefctl 根命令，結果寫到 stdout，日誌寫到 stderr
func NewApp(version string, factory GeneratorFactory, stdout io.Writer) *cli.Command {
	return &cli.Command{
		Name:    name,
		Usage:   "Generate recipe suggestions from a pantry snapshot",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-level",
				Value: "warn",
				Usage: "Log level (debug, info, warn, error)",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			common.SetLogger(newStderrLogger(cmd.String("log-level")))
			return ctx, nil
		},
		Commands: []*cli.Command{
			generateCmd(factory, stdout),
		},
	}
}

func newStderrLogger(level string) *zap.Logger {
	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.Lock(os.Stderr),
		common.ParseLevel(level),
	)
	return zap.New(core, zap.AddCallerSkip(1), zap.Fields(zap.String("service", name)))
}
