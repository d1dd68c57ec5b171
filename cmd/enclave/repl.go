package main

import (
	"bufio"
	"fmt"
	"os"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"hexbind/enclave/pkg/cli"
	"hexbind/enclave/pkg/config"
	"hexbind/enclave/pkg/expr/engine"
)

var replFlags struct {
	context     string
	contextFile string
	watch       bool
}

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Evaluate expressions interactively",
	Long: `Read expressions from standard input and evaluate each line against a
fixed JSON context.

With --watch, the configuration file is monitored and changed resource
ceilings take effect on the next evaluation without restarting.

Exit with Ctrl-D or an interrupt.`,
	RunE: runRepl,
}

func init() {
	rootCmd.AddCommand(replCmd)

	replCmd.Flags().StringVar(&replFlags.context, "context", "", "evaluation context as a JSON object")
	replCmd.Flags().StringVar(&replFlags.contextFile, "context-file", "", "file containing the evaluation context as JSON")
	replCmd.Flags().BoolVar(&replFlags.watch, "watch", false, "reload the configuration file on change")
}

func runRepl(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := setupLogger(cfg)
	if err != nil {
		return err
	}

	context, err := parseContext(replFlags.context, replFlags.contextFile)
	if err != nil {
		return err
	}

	eng, err := buildEngine(cfg, logger)
	if err != nil {
		return cli.NewCommandError("repl", err)
	}

	// The watcher swaps in a freshly built engine; evaluation picks up the
	// current one per line.
	var current atomic.Pointer[engine.Engine]
	current.Store(eng)

	if replFlags.watch {
		watcher, err := config.NewWatcher(cfgFile, logger, func(next *config.Config) {
			// The old engine's collectors must leave the registry before the
			// rebuild registers fresh ones under the same names.
			current.Load().Metrics().Unregister(prometheus.DefaultRegisterer)

			rebuilt, err := buildEngine(next, logger)
			if err != nil {
				logger.Error("failed to apply reloaded configuration", "error", err)
				return
			}
			current.Store(rebuilt)
		})
		if err != nil {
			return cli.NewCommandError("repl", err)
		}
		if err := watcher.Start(); err != nil {
			return cli.NewCommandError("repl", err)
		}
		defer watcher.Close()
	}

	ctx := cli.SetupSignalHandler()
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if line == "" {
				continue
			}

			result, err := current.Load().Evaluate(line, context)
			if err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				continue
			}
			fmt.Println(result.Render())
		}
	}
}
