package repository

import (
	"context"

	"gorm.io/gorm"
)

// Transactor runs a unit of work atomically. Repositories called with the
// context passed to fn share the transaction; any error or panic rolls it back.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type gormTransactor struct {
	db *gorm.DB
}

// NewTransactor returns a Transactor backed by GORM transactions.
func NewTransactor(db *gorm.DB) Transactor {
	return &gormTransactor{db: db}
}

// WithinTransaction commits when fn returns nil. Errors that are not already
// AppErrors come back as internal errors. Nested calls join the outer transaction.
func (t *gormTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}

	err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
	return wrapDBError(err)
}
