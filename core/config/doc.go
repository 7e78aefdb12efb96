// Package config provides configuration management for affiliate-sync.
//
// It utilizes Viper for loading configuration from environment variables,
// an optional config.yaml and a .env file.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Server: HTTP port, admin API key and allowed CORS origins
//   - Database: catalog database driver and connection details
//   - Storage: S3/MinIO credentials, bucket and whether storage is used at all
//   - Log: logging level and format
//   - Reconcile: matching thresholds, write behavior and feed location
//
// Every field carries a default tag, so each option can be overridden by an
// environment variable such as RECONCILE_THRESHOLD or DATABASE_DRIVER.
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Reconcile.Threshold)
package config
