package cmd

import (
	"context"
	"fmt"

	"affiliate-sync/core/config"
	"affiliate-sync/core/database"
	"affiliate-sync/core/logger"
	"affiliate-sync/core/storage"
	"affiliate-sync/feature/affiliate"
	"affiliate-sync/feature/affiliate/catalog"
	"affiliate-sync/feature/affiliate/feed"
	"affiliate-sync/feature/affiliate/review"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// app bundles the components shared by the commands.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	db      *gorm.DB
	storage storage.Client
	feed    *feed.Store
	catalog *catalog.Store
	reviews *review.Queue
	service *affiliate.Service
}

// newApp loads configuration and wires the affiliate service.
// feedPath overrides the configured feed location when set.
func newApp(ctx context.Context, feedPath string) (*app, error) {
	a, err := newFeedApp(ctx, feedPath)
	if err != nil {
		return nil, err
	}
	if err := a.connect(); err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}

// newFeedApp wires configuration, logging, storage and the feed store without
// touching the catalog database.
func newFeedApp(ctx context.Context, feedPath string) (*app, error) {
	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	a := &app{cfg: cfg, logger: l}

	if cfg.Storage.Enabled {
		client, err := storage.NewClient(cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage client: %w", err)
		}
		if err := storage.EnsureBucket(ctx, client, cfg.Storage.Bucket, cfg.Storage.Region); err != nil {
			return nil, err
		}
		a.storage = client
	}

	a.feed = feed.NewStore(a.feedBackend(feedPath), cfg.Reconcile, l)
	return a, nil
}

// connect opens the catalog database and builds the affiliate service.
func (a *app) connect() error {
	db, err := database.Connect(a.cfg.Database)
	if err != nil {
		return err
	}
	a.db = db
	a.logger.Info("Connected to catalog database", zap.String("driver", a.cfg.Database.Driver))

	a.catalog = catalog.NewStore(db)
	if err := a.catalog.Prepare(a.cfg.Database.AutoMigrate); err != nil {
		return err
	}
	a.reviews = review.NewQueue(db)
	if err := a.reviews.Prepare(); err != nil {
		return err
	}

	var sink affiliate.ReportSink
	if a.storage != nil {
		sink = affiliate.NewObjectReportSink(a.storage, a.cfg.Storage.Bucket, a.cfg.Reconcile.ReportPrefix)
	}
	a.service = affiliate.NewService(a.feed, a.catalog, a.reviews, a.cfg.Reconcile, sink, a.logger)
	return nil
}

// feedBackend picks the object backend when a feed object is configured and
// no local path override is given.
func (a *app) feedBackend(override string) feed.Backend {
	if override == "" && a.cfg.Reconcile.FeedObject != "" && a.storage != nil {
		return feed.ObjectBackend{Client: a.storage, Bucket: a.cfg.Storage.Bucket, Object: a.cfg.Reconcile.FeedObject}
	}
	path := a.cfg.Reconcile.FeedPath
	if override != "" {
		path = override
	}
	return feed.FileBackend{Path: path}
}

func (a *app) close() {
	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	_ = a.logger.Sync()
}
