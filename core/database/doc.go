// Package database handles connections to the character record store.
//
// It provides a wrapper around GORM to configure either a file-backed sqlite
// database (the default, zero-setup path) or a MySQL server connection based
// on the application's configuration.
//
// Schema migration is owned by the caller: cmd/start.go and cmd/seed.go run
// AutoMigrate for the character models after connecting.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
package database
