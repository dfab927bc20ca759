package services

import (
	"context"

	"gorm.io/gorm"
)

// withTransaction runs fn inside a database transaction. A nil db runs
// fn directly with a nil tx, which lets unit tests drive services
// against mock repositories without a database.
func withTransaction(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}
