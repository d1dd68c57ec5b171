package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"hexbind/enclave/pkg/audit"
	"hexbind/enclave/pkg/audit/retention"
	"hexbind/enclave/pkg/cli"
	"hexbind/enclave/pkg/config"
	"hexbind/enclave/pkg/telemetry/logging"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Inspect and maintain the evaluation audit trail",
	Long: `Inspect and maintain the evaluation audit trail.

The audit trail records every evaluation: a redacted expression, its
content hash, the outcome, and timing. These commands read the backend
configured in the audit section of the configuration file; they are only
useful with a persistent backend such as sqlite.`,
}

var auditQueryFlags struct {
	outcome string
	hash    string
	since   time.Duration
	limit   int
	format  string
}

var auditQueryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query audit records",
	Long: `Query audit records, newest first.

Examples:
  # The 20 most recent evaluations
  enclave audit query --limit 20

  # Sandbox violations in the last 24 hours
  enclave audit query --outcome security --since 24h

  # Every evaluation of one expression, by content hash
  enclave audit query --hash 6b86b273ff... --format json`,
	RunE: runAuditQuery,
}

var auditPruneFlags struct {
	daemon bool
}

var auditPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Apply retention policy to the audit trail",
	Long: `Delete audit records past the configured retention period and cap
the total record count, using the retention settings from the audit section
of the configuration file.

With --daemon, the command keeps running and prunes on the cron expression
in audit.prune_schedule until interrupted.`,
	RunE: runAuditPrune,
}

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.AddCommand(auditQueryCmd)
	auditCmd.AddCommand(auditPruneCmd)

	auditQueryCmd.Flags().StringVar(&auditQueryFlags.outcome, "outcome", "", "filter by outcome (ok, syntax, security, resource_limit, division_by_zero, rate_limited)")
	auditQueryCmd.Flags().StringVar(&auditQueryFlags.hash, "hash", "", "filter by expression hash")
	auditQueryCmd.Flags().DurationVar(&auditQueryFlags.since, "since", 0, "only records newer than this age (e.g. 24h)")
	auditQueryCmd.Flags().IntVar(&auditQueryFlags.limit, "limit", 50, "maximum records to return")
	auditQueryCmd.Flags().StringVar(&auditQueryFlags.format, "format", "text", "output format: text, json")

	auditPruneCmd.Flags().BoolVar(&auditPruneFlags.daemon, "daemon", false, "keep running and prune on the configured cron schedule")
}

func runAuditQuery(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := setupLogger(cfg)
	if err != nil {
		return err
	}

	store, err := openAuditStorage(cfg, logger)
	if err != nil {
		return cli.NewCommandError("audit query", err)
	}
	defer store.Close()

	query := &audit.Query{
		Outcome:        auditQueryFlags.outcome,
		ExpressionHash: auditQueryFlags.hash,
		Limit:          auditQueryFlags.limit,
	}
	if auditQueryFlags.since > 0 {
		since := time.Now().Add(-auditQueryFlags.since)
		query.Since = &since
	}

	records, err := store.Query(cmd.Context(), query)
	if err != nil {
		return cli.NewCommandError("audit query", err)
	}

	if auditQueryFlags.format == "json" {
		formatter := cli.NewFormatter(cli.FormatJSON)
		return formatter.FormatTo(os.Stdout, records)
	}

	if len(records) == 0 {
		fmt.Println("no matching audit records")
		return nil
	}
	for _, record := range records {
		line := fmt.Sprintf("%s  %-16s  %6dus  %s",
			record.RecordedAt.Format(time.RFC3339),
			record.Outcome,
			record.Duration.Microseconds(),
			record.Expression,
		)
		if record.Error != "" {
			line += "  (" + record.Error + ")"
		}
		fmt.Println(line)
	}
	return nil
}

func runAuditPrune(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := setupLogger(cfg)
	if err != nil {
		return err
	}

	store, err := openAuditStorage(cfg, logger)
	if err != nil {
		return cli.NewCommandError("audit prune", err)
	}
	defer store.Close()

	pruner := newPruner(cfg, store, logger)

	if auditPruneFlags.daemon {
		scheduler := retention.NewScheduler(pruner, logger)
		ctx := cli.SetupSignalHandler()
		if err := scheduler.Start(ctx); err != nil {
			return cli.NewCommandError("audit prune", err)
		}
		if next := scheduler.NextRun(); next != nil {
			fmt.Printf("pruning on schedule %q, next run %s\n",
				cfg.Audit.PruneSchedule, next.Format(time.RFC3339))
		}
		<-ctx.Done()
		scheduler.Stop()
		return nil
	}

	deleted, err := pruner.Prune(cmd.Context())
	if err != nil {
		return cli.NewCommandError("audit prune", err)
	}

	fmt.Printf("pruned %d audit records\n", deleted)
	return nil
}

// newPruner builds a retention pruner from the audit section of the
// configuration.
func newPruner(cfg *config.Config, store audit.Storage, logger *slog.Logger) *retention.Pruner {
	return retention.NewPruner(store, &retention.Config{
		RetentionDays: cfg.Audit.RetentionDays,
		MaxRecords:    int64(cfg.Audit.MaxRecords),
		PruneSchedule: cfg.Audit.PruneSchedule,
	}, logging.ForComponent(logger, "audit.retention"))
}
