package repository

import "errors"

var (
	// ErrOpenDatabase indicates the database connection could not be
	// established.
	ErrOpenDatabase = errors.New("opening database failed")

	// ErrMigrate indicates schema migration failed.
	ErrMigrate = errors.New("migrating schema failed")

	// ErrQuery indicates a query failed.
	ErrQuery = errors.New("query failed")
)
