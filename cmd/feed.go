package cmd

import (
	"context"
	"errors"
	"fmt"

	"affiliate-sync/feature/affiliate/feed"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	feedPathFlag   string
	feedBrand      string
	feedNetwork    string
	feedExternalID string
	feedNotes      string
	feedThreshold  float64
	feedForce      bool
)

// feedCmd is the parent command for feed maintenance.
var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Inspect and edit the affiliate feed",
}

var feedListCmd = &cobra.Command{
	Use:   "list",
	Short: "List valid feed records and report invalid ones",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openFeed(commandContext(cmd))
		if err != nil {
			return err
		}
		defer a.close()

		report, err := a.feed.Load(commandContext(cmd))
		if err != nil {
			return err
		}
		for _, e := range a.feed.Entries() {
			a.logger.Info("Record",
				zap.String("key", e.Key),
				zap.String("product_name", e.Record.ProductName),
				zap.String("brand", e.Record.Brand),
				zap.String("network", e.Record.AffiliateNetwork),
				zap.String("link", e.Record.AffiliateLink),
			)
		}
		for _, inv := range report.Skipped {
			a.logger.Warn("Invalid record", zap.Int("index", inv.Index), zap.String("product_name", inv.ProductName), zap.String("reason", inv.Reason))
		}
		a.logger.Info("Feed loaded",
			zap.String("source", report.Source),
			zap.Bool("missing", report.Missing),
			zap.Int("records", report.Loaded),
			zap.Int("duplicates", report.Duplicates),
			zap.Int("invalid", len(report.Skipped)),
		)
		return nil
	},
}

var feedAddCmd = &cobra.Command{
	Use:   "add <product name> <affiliate link>",
	Short: "Add a record, refusing near-duplicates unless --force is given",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openFeed(commandContext(cmd))
		if err != nil {
			return err
		}
		defer a.close()

		if _, err := a.feed.Load(commandContext(cmd)); err != nil {
			return err
		}
		r := feed.Record{
			ProductName:      args[0],
			Brand:            feedBrand,
			AffiliateLink:    args[1],
			AffiliateNetwork: feedNetwork,
			ExternalID:       feedExternalID,
			Notes:            feedNotes,
		}
		if feedForce {
			err = a.feed.Put(r)
		} else {
			err = a.feed.Add(r)
		}
		if err != nil {
			return err
		}
		if err := a.feed.Commit(commandContext(cmd)); err != nil {
			return err
		}
		a.logger.Info("Record saved", zap.String("product_name", r.ProductName), zap.String("feed", a.feed.Source()))
		return nil
	},
}

var feedRemoveCmd = &cobra.Command{
	Use:   "remove <product name>",
	Short: "Remove the record with the same normalized name and brand",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openFeed(commandContext(cmd))
		if err != nil {
			return err
		}
		defer a.close()

		if _, err := a.feed.Load(commandContext(cmd)); err != nil {
			return err
		}
		if err := a.feed.Delete(args[0], feedBrand); err != nil {
			if errors.Is(err, feed.ErrNotFound) {
				return fmt.Errorf("no record for %q", args[0])
			}
			return err
		}
		if err := a.feed.Commit(commandContext(cmd)); err != nil {
			return err
		}
		a.logger.Info("Record removed", zap.String("product_name", args[0]))
		return nil
	},
}

var feedLookupCmd = &cobra.Command{
	Use:   "lookup <product name>",
	Short: "Find the affiliate link for a free-text product name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openFeed(commandContext(cmd))
		if err != nil {
			return err
		}
		defer a.close()

		if _, err := a.feed.Load(commandContext(cmd)); err != nil {
			return err
		}
		r, result, ok := a.feed.Find(args[0], feedBrand, feedThreshold)
		if !ok {
			a.logger.Info("No affiliate record found", zap.String("query", args[0]), zap.Float64("best_score", result.Score))
			return nil
		}
		a.logger.Info("Affiliate record found",
			zap.String("product_name", r.ProductName),
			zap.String("brand", r.Brand),
			zap.String("link", r.AffiliateLink),
			zap.String("network", r.AffiliateNetwork),
			zap.Float64("score", result.Score),
			zap.Bool("ambiguous", result.Ambiguous),
		)
		return nil
	},
}

func openFeed(ctx context.Context) (*app, error) {
	return newFeedApp(ctx, feedPathFlag)
}

func init() {
	feedCmd.PersistentFlags().StringVar(&feedPathFlag, "feed", "", "Feed file to use instead of the configured one")
	feedCmd.PersistentFlags().StringVar(&feedBrand, "brand", "", "Brand of the product")

	feedAddCmd.Flags().StringVar(&feedNetwork, "network", "", "Affiliate network (amazon, shareasale, custom)")
	feedAddCmd.Flags().StringVar(&feedExternalID, "external-id", "", "Network specific id, e.g. an ASIN")
	feedAddCmd.Flags().StringVar(&feedNotes, "notes", "", "Free-form notes")
	feedAddCmd.Flags().BoolVar(&feedForce, "force", false, "Replace an existing record with the same identity and skip the near-duplicate check")

	feedLookupCmd.Flags().Float64Var(&feedThreshold, "threshold", 0, "Minimum similarity (0 uses the configured threshold)")

	feedCmd.AddCommand(feedListCmd, feedAddCmd, feedRemoveCmd, feedLookupCmd)
	RootCmd.AddCommand(feedCmd)
}
