package cmd

import (
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"affiliate-sync/feature/affiliate"
	"affiliate-sync/feature/affiliate/feed"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	watchDebounce time.Duration
	watchNoStubs  bool
)

// watchCmd reconciles whenever the local feed file changes.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Reconcile automatically whenever the feed file changes",
	Long: `Watches the local feed file and runs a confirmed reconciliation after each
change. Writes happen without a prompt, so --yes is required.`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 2*time.Second, "Quiet period after a change before reconciling")
	watchCmd.Flags().BoolVar(&watchNoStubs, "no-stubs", false, "Skip unmatched records instead of creating stubs")
	watchCmd.Flags().BoolVar(&yesConfirm, "yes", false, "Confirm unattended writes")
	watchCmd.Flags().StringVar(&feedOverride, "feed", "", "Feed file to use instead of the configured one")

	RootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if !yesConfirm {
		return errors.New("watch applies changes unattended, pass --yes to confirm")
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, feedOverride)
	if err != nil {
		return err
	}
	defer a.close()

	path := feedOverride
	if path == "" {
		if a.cfg.Reconcile.FeedObject != "" {
			return fmt.Errorf("watch needs a local feed file, %s is an object", a.cfg.Reconcile.FeedObject)
		}
		path = a.cfg.Reconcile.FeedPath
	}

	watcher, err := feed.NewWatcher(path, watchDebounce, a.logger)
	if err != nil {
		return err
	}

	opts := affiliate.RunOptions{Confirmed: true, NoStubs: watchNoStubs}
	run := func() {
		report, err := a.service.Reconcile(ctx, opts)
		if err != nil {
			a.logger.Error("Reconciliation failed", zap.Error(err))
			return
		}
		a.logger.Info("Reconciliation applied",
			zap.String("report_id", report.ID),
			zap.Int("executed", report.Result.Executed),
			zap.Int("failed", len(report.Result.Failed)),
		)
	}

	a.logger.Info("Watching feed", zap.String("path", path), zap.Duration("debounce", watchDebounce))
	run()
	return watcher.Run(ctx, run)
}
