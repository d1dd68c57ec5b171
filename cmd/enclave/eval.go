package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"hexbind/enclave/pkg/audit"
	auditrecorder "hexbind/enclave/pkg/audit/recorder"
	"hexbind/enclave/pkg/cli"
	exprErrors "hexbind/enclave/pkg/expr/errors"
)

var evalFlags struct {
	context     string
	contextFile string
	format      string
}

var evalCmd = &cobra.Command{
	Use:   "eval <expression>",
	Short: "Evaluate an expression",
	Long: `Evaluate a sandboxed expression against a JSON context.

The context is a JSON object whose top-level keys become identifiers in the
expression. Missing identifiers evaluate softly: they produce an empty
result instead of an error.

Examples:
  # Literal arithmetic
  enclave eval "2 + 3 * 4"

  # With an inline context
  enclave eval "user.score > 10 ? 'high' : 'low'" --context '{"user": {"score": 32}}'

  # With a context file and JSON output
  enclave eval "items[0].name" --context-file ctx.json --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runEval,
}

func init() {
	rootCmd.AddCommand(evalCmd)

	evalCmd.Flags().StringVar(&evalFlags.context, "context", "", "evaluation context as a JSON object")
	evalCmd.Flags().StringVar(&evalFlags.contextFile, "context-file", "", "file containing the evaluation context as JSON")
	evalCmd.Flags().StringVar(&evalFlags.format, "format", "text", "output format: text, json")
}

// evalResult is the JSON output shape of the eval command.
type evalResult struct {
	Expression string `json:"expression"`
	Value      string `json:"value"`
	Kind       string `json:"kind"`
	Outcome    string `json:"outcome"`
	Error      string `json:"error,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

func runEval(cmd *cobra.Command, args []string) error {
	expression := args[0]

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
		return cli.NewCommandError("eval", err)
	}

	context, err := parseContext(evalFlags.context, evalFlags.contextFile)
	if err != nil {
		return err
	}

	var recorder *auditrecorder.Recorder
	if cfg.Audit.Enabled {
		store, err := openAuditStorage(cfg, logger)
		if err != nil {
			return cli.NewCommandError("eval", err)
		}
		defer store.Close()

		recorder = auditrecorder.New(store, &auditrecorder.Config{
			Enabled:      true,
			BufferSize:   cfg.Audit.BufferSize,
			WriteTimeout: 5 * time.Second,
		}, logger)
		defer recorder.Close()
	}

	result, stats, evalErr := eng.EvaluateWithStats(expression, context)
	elapsed := stats.Duration

	outcome := audit.OutcomeOK
	if evalErr != nil {
		outcome = string(exprErrors.TypeOf(evalErr))
	}
	if recorder != nil {
		recorder.Observe(expression, outcome, evalErr, stats.Duration, stats.CacheHit)
	}

	formatter := cli.NewFormatter(cli.OutputFormat(evalFlags.format))

	if evalErr != nil {
		if evalFlags.format == "json" {
			out := evalResult{
				Expression: expression,
				Outcome:    outcome,
				Error:      evalErr.Error(),
				DurationMS: elapsed.Milliseconds(),
			}
			if err := formatter.FormatTo(os.Stdout, out); err != nil {
				return err
			}
			os.Exit(1)
		}
		return cli.NewCommandError("eval", evalErr)
	}

	if evalFlags.format == "json" {
		out := evalResult{
			Expression: expression,
			Value:      result.Render(),
			Kind:       string(result.Kind()),
			Outcome:    outcome,
			DurationMS: elapsed.Milliseconds(),
		}
		return formatter.FormatTo(os.Stdout, out)
	}

	fmt.Println(result.Render())
	return nil
}
