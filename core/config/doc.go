// Package config provides configuration management for the Character Manager.
//
// It utilizes Viper for loading configuration from environment variables and
// an optional .env file.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings,
// divided into subsections:
//   - Server: HTTP server settings (port, API key)
//   - Database: record store connection (sqlite file or MySQL)
//   - Storage: S3/MinIO credentials and portrait bucket
//   - Hub: notification hub tuning (per-connection queue size)
//   - Log: logging level and format
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Server.Port)
package config
