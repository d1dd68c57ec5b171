package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"hexbind/enclave/pkg/cli"
	"hexbind/enclave/pkg/expr/interp"
	"hexbind/enclave/pkg/telemetry/logging"
)

var renderFlags struct {
	context     string
	contextFile string
	file        string
}

var renderCmd = &cobra.Command{
	Use:   "render [template]",
	Short: "Render a template with embedded expressions",
	Long: `Render a template containing {{ expr }} placeholders.

Rendering never fails: a placeholder whose expression errors renders as an
empty string, and the rest of the template is unaffected. The reserved
placeholder {{ __uid }} produces a fresh unique identifier per occurrence.

Examples:
  # Inline template
  enclave render "Hello {{ user.name || 'anonymous' }}!" --context '{"user": {"name": "Ada"}}'

  # Template from a file
  enclave render --file greeting.tmpl --context-file ctx.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().StringVar(&renderFlags.context, "context", "", "evaluation context as a JSON object")
	renderCmd.Flags().StringVar(&renderFlags.contextFile, "context-file", "", "file containing the evaluation context as JSON")
	renderCmd.Flags().StringVarP(&renderFlags.file, "file", "f", "", "template file to render")
}

func runRender(cmd *cobra.Command, args []string) error {
	var template string
	switch {
	case renderFlags.file != "":
		data, err := os.ReadFile(renderFlags.file)
		if err != nil {
			return fmt.Errorf("failed to read template file: %w", err)
		}
		template = string(data)
	case len(args) == 1:
		template = args[0]
	default:
		return fmt.Errorf("either a template argument or --file must be provided")
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := setupLogger(cfg)
	if err != nil {
		return err
	}

	eng, err := buildEngine(cfg, logger)
	if err != nil {
		return cli.NewCommandError("render", err)
	}

	context, err := parseContext(renderFlags.context, renderFlags.contextFile)
	if err != nil {
		return err
	}

	interpolator := interp.New(eng, logging.ForComponent(logger, "expr.interp"))
	fmt.Println(interpolator.Interpolate(template, context))
	return nil
}
