package cmd

import (
	"context"

	"affiliate-sync/feature/affiliate/review"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	reviewStatus    string
	reviewCatalogID string
)

// reviewCmd is the parent command for the ambiguous match review queue.
var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "List and resolve ambiguous matches",
}

var reviewListCmd = &cobra.Command{
	Use:   "list",
	Short: "List reviews (pending by default)",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(commandContext(cmd), "")
		if err != nil {
			return err
		}
		defer a.close()

		status := review.Status(reviewStatus)
		if reviewStatus == "all" {
			status = ""
		}
		reviews, err := a.service.Reviews(commandContext(cmd), status)
		if err != nil {
			return err
		}
		for _, r := range reviews {
			fields := []zap.Field{
				zap.String("id", r.ID),
				zap.String("product_name", r.ProductName),
				zap.String("brand", r.Brand),
				zap.String("status", string(r.Status)),
				zap.Float64("best_score", r.BestScore),
			}
			for _, c := range r.Candidates {
				fields = append(fields, zap.Float64("candidate."+c.ID, c.Score))
			}
			if r.Status == review.StatusResolved {
				fields = append(fields, zap.String("resolved_catalog_id", r.ResolvedCatalogID), zap.Bool("create_stub", r.CreateStub))
			}
			a.logger.Info("Review", fields...)
		}
		a.logger.Info("Reviews listed", zap.Int("count", len(reviews)))
		return nil
	},
}

var reviewResolveCmd = &cobra.Command{
	Use:   "resolve <review id>",
	Short: "Pin a review to a catalog product, or to a new stub without --catalog-id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(commandContext(cmd), "")
		if err != nil {
			return err
		}
		defer a.close()

		r, err := a.service.ResolveReview(commandContext(cmd), args[0], reviewCatalogID)
		if err != nil {
			return err
		}
		a.logger.Info("Review resolved",
			zap.String("id", r.ID),
			zap.String("catalog_id", r.ResolvedCatalogID),
			zap.Bool("create_stub", r.CreateStub),
		)
		return nil
	},
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func init() {
	reviewListCmd.Flags().StringVar(&reviewStatus, "status", string(review.StatusPending), "pending, resolved or all")
	reviewResolveCmd.Flags().StringVar(&reviewCatalogID, "catalog-id", "", "Catalog product to pin the record to")

	reviewCmd.AddCommand(reviewListCmd, reviewResolveCmd)
	RootCmd.AddCommand(reviewCmd)
}
