package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"meal-planner/internal/cli"
	"meal-planner/internal/pkg/common"
)

func main() {
	var app cli.App
	ctx := kong.Parse(&app,
		kong.Name("planctl"),
		kong.Description("Offline diabetic meal-planning pipeline"),
		kong.UsageOnError(),
		kong.Vars{"version": "v1.0.0"},
	)

	if app.Verbose {
		cfg := zap.NewDevelopmentConfig()
		cfg.OutputPaths = []string{"stderr"}
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		if logger, err := cfg.Build(); err == nil {
			common.SetLogger(logger)
			defer common.Sync()
		}
	}

	ds, err := cli.LoadDataset(app.Data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := ctx.Run(cli.NewContext(ds, app.Options(), os.Stdout)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if pe, ok := common.AsPipelineError(err); ok {
			sample := pe.SampleDetails()
			for _, d := range sample {
				fmt.Fprintf(os.Stderr, "  - %s\n", d)
			}
			if more := pe.Total() - len(sample); more > 0 {
				fmt.Fprintf(os.Stderr, "  ... and %d more\n", more)
			}
		}
		os.Exit(1)
	}
}
