// Package database handles database connections for user-authored codex
// content.
//
// It provides a wrapper around GORM (Go Object Relational Mapping) that
// configures MySQL connections for deployments and SQLite connections for
// local development and tests.
//
// # Connect
//
// The Connect function establishes a connection based on the configured
// driver. The database is an optional collaborator: when it is unreachable
// the application runs with the remaining content sources.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    logg.Warn("Optional database connection failed", zap.Error(err))
//	}
package database
