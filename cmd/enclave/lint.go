package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"hexbind/enclave/pkg/cli"
	exprErrors "hexbind/enclave/pkg/expr/errors"
	"hexbind/enclave/pkg/expr/lexer"
	"hexbind/enclave/pkg/expr/parser"
)

var lintFlags struct {
	file   string
	format string
}

var lintCmd = &cobra.Command{
	Use:   "lint [expression...]",
	Short: "Check expressions without evaluating them",
	Long: `Check expressions for lexical, syntactic, and sandbox violations.

Each expression is tokenized and parsed under the configured ceilings, and
identifiers are checked against the sandbox deny list. Nothing is evaluated,
so no context is needed.

Examples:
  # Check expressions from arguments
  enclave lint "a.b[0] === 'x'" "count > 10 ? 'many' : 'few'"

  # Check a file with one expression per line
  enclave lint --file expressions.txt

  # JSON output for CI
  enclave lint --file expressions.txt --format json`,
	RunE: runLint,
}

func init() {
	rootCmd.AddCommand(lintCmd)

	lintCmd.Flags().StringVarP(&lintFlags.file, "file", "f", "", "file with one expression per line")
	lintCmd.Flags().StringVar(&lintFlags.format, "format", "text", "output format: text, json")
}

// lintFinding is the result of checking one expression.
type lintFinding struct {
	Expression string `json:"expression"`
	OK         bool   `json:"ok"`
	ErrorType  string `json:"error_type,omitempty"`
	Error      string `json:"error,omitempty"`
}

func runLint(cmd *cobra.Command, args []string) error {
	expressions := append([]string{}, args...)

	if lintFlags.file != "" {
		f, err := os.Open(lintFlags.file)
		if err != nil {
			return fmt.Errorf("failed to open expression file: %w", err)
		}
		defer f.Close()

		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			expressions = append(expressions, line)
		}
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("failed to read expression file: %w", err)
		}
	}

	if len(expressions) == 0 {
		return fmt.Errorf("no expressions to check: pass arguments or --file")
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	lex := lexer.New(cfg.Engine.Limits)

	var findings []lintFinding
	failures := 0
	for _, expression := range expressions {
		finding := lintFinding{Expression: expression, OK: true}

		tokens, err := lex.Tokenize(expression)
		if err == nil {
			_, err = parser.Parse(tokens)
		}
		if err != nil {
			finding.OK = false
			finding.ErrorType = string(exprErrors.TypeOf(err))
			finding.Error = err.Error()
			failures++
		}

		findings = append(findings, finding)
	}

	if lintFlags.format == "json" {
		formatter := cli.NewFormatter(cli.FormatJSON)
		if err := formatter.FormatTo(os.Stdout, findings); err != nil {
			return err
		}
	} else {
		for _, finding := range findings {
			if finding.OK {
				fmt.Printf("ok    %s\n", finding.Expression)
			} else {
				fmt.Printf("FAIL  %s\n      %s\n", finding.Expression, finding.Error)
			}
		}
		fmt.Printf("\n%d checked, %d failed\n", len(findings), failures)
	}

	if failures > 0 {
		os.Exit(1)
	}
	return nil
}
