package cmd

import (
	"affiliate-sync/core/database"
	"affiliate-sync/feature/affiliate/catalog"
	"affiliate-sync/feature/affiliate/review"
	"affiliate-sync/feature/feedback"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// migrateCmd creates or updates every table the service uses.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database tables",
	Long: `Migrates catalog_products, pending_reviews and vote_tallies, regardless of
database.auto_migrate.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newFeedApp(commandContext(cmd), "")
		if err != nil {
			return err
		}
		defer a.close()

		db, err := database.Connect(a.cfg.Database)
		if err != nil {
			return err
		}
		a.db = db

		steps := []struct {
			table   string
			prepare func() error
		}{
			{"catalog_products", func() error { return catalog.NewStore(db).Prepare(true) }},
			{"pending_reviews", review.NewQueue(db).Prepare},
			{"vote_tallies", feedback.NewCounter(db).Prepare},
		}
		for _, s := range steps {
			if err := s.prepare(); err != nil {
				return err
			}
			a.logger.Info("Table migrated", zap.String("table", s.table))
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(migrateCmd)
}
