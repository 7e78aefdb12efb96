package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"affiliate-sync/feature/affiliate"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	dryRunReconcile  bool
	yesConfirm       bool
	noStubsReconcile bool
	feedOverride     string
)

// reconcileCmd runs one reconciliation of the feed against the catalog.
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Reconcile the affiliate feed against the catalog",
	Long: `Plans one action per feed record (patch_link, create_stub, review or skip),
prints the plan and applies it after confirmation.

Examples:
  # Report only
  reconcile --dry-run

  # Apply with interactive confirmation
  reconcile

  # Apply without prompting, never creating stubs
  reconcile --yes --no-stubs

  # Use a different feed file
  reconcile --feed data/other_feed.yaml`,
	RunE: runReconcile,
}

func init() {
	reconcileCmd.Flags().BoolVar(&dryRunReconcile, "dry-run", false, "Plan and report without writing")
	reconcileCmd.Flags().BoolVar(&yesConfirm, "yes", false, "Auto-confirm writes (non-interactive)")
	reconcileCmd.Flags().BoolVar(&noStubsReconcile, "no-stubs", false, "Skip unmatched records instead of creating stubs")
	reconcileCmd.Flags().StringVar(&feedOverride, "feed", "", "Feed file to use instead of the configured one")

	RootCmd.AddCommand(reconcileCmd)
}

func runReconcile(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	a, err := newApp(ctx, feedOverride)
	if err != nil {
		return err
	}
	defer a.close()
	l := a.logger

	opts := affiliate.RunOptions{DryRun: dryRunReconcile, NoStubs: noStubsReconcile}
	startedAt := time.Now()

	l.Info("Planning reconciliation...")
	plan, err := a.service.Plan(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to plan reconciliation: %w", err)
	}
	printPlan(l, plan)

	switch {
	case dryRunReconcile:
		l.Info("Dry-run mode: No changes were made.")
	case plan.Writes() == 0:
		l.Info("No actions required.")
	case !confirmWrites(plan.Writes()):
		l.Warn("Operation cancelled by user. No changes were made.")
	default:
		opts.Confirmed = true
	}

	if opts.Confirmed {
		l.Info("Applying actions...")
	}
	report, err := a.service.Apply(ctx, plan, opts, startedAt)
	if err != nil {
		return fmt.Errorf("failed to apply plan: %w", err)
	}
	return printResult(l, report)
}

// printPlan logs the plan summary and a sample of its actions.
func printPlan(l *zap.Logger, plan *affiliate.RunPlan) {
	s := plan.Summary
	l.Info("Reconciliation plan",
		zap.String("feed", plan.Load.Source),
		zap.Int("records", s.TotalRecords),
		zap.Int("patches", s.Patches),
		zap.Int("stubs", s.Stubs),
		zap.Int("reviews", s.Reviews),
		zap.Int("skipped", s.Skipped),
		zap.Int("unmatchable", s.Unmatchable),
		zap.Int("invalid", len(plan.Load.Skipped)),
	)

	maxShow := 10
	if len(plan.Actions) < maxShow {
		maxShow = len(plan.Actions)
	}
	for _, action := range plan.Actions[:maxShow] {
		l.Info("Planned action",
			zap.String("type", string(action.Type)),
			zap.String("key", action.Key),
			zap.String("catalog_id", action.CatalogID),
			zap.Float64("score", action.Match.Score),
			zap.String("reason", action.Reason),
		)
	}
	if len(plan.Actions) > maxShow {
		l.Info("Additional actions not shown", zap.Int("count", len(plan.Actions)-maxShow))
	}
}

// printResult logs the outcome of a run and fails when any action failed.
func printResult(l *zap.Logger, report *affiliate.Report) error {
	for _, f := range report.Result.Failed {
		l.Error("Action failed",
			zap.String("type", string(f.Action.Type)),
			zap.String("key", f.Action.Key),
			zap.String("error", f.Error),
		)
	}
	if report.Location != "" {
		l.Info("Run report archived", zap.String("location", report.Location))
	}
	if n := len(report.Result.Failed); n > 0 {
		return fmt.Errorf("%d of %d actions failed", n, n+report.Result.Executed)
	}
	return nil
}

// confirmWrites prompts the user for confirmation or uses the --yes flag.
func confirmWrites(n int) bool {
	if yesConfirm {
		fmt.Println("\n✓ Auto-confirmed via --yes flag")
		return true
	}

	fmt.Printf("\n⚠️  Type 'yes' to apply %d catalog writes: ", n)
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	return strings.TrimSpace(response) == "yes"
}
