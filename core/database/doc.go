// Package database handles database connections and schema inspection.
//
// It wraps GORM to configure MySQL, PostgreSQL (through lib/pq) or SQLite
// connections from the application's configuration. The catalog, the review queue
// and the vote tallies all live behind the *gorm.DB returned by Connect.
//
// # Schema Inspection
//
// When the catalog table is owned by the content pipeline, auto-migration is
// disabled and MissingColumns verifies that the columns the reconciler patches exist.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	missing, err := database.MissingColumns(db, "catalog_products", []string{"affiliate_link"})
package database
