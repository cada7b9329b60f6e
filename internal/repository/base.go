// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"
	"strings"

	"agora/internal/models"

	"gorm.io/gorm"
)

// DefaultPageSize is the keyset page size used by listing queries.
const DefaultPageSize = 10

type txKey struct{}

// conn returns the transaction bound to ctx, or the primary handle scoped to ctx.
func conn(ctx context.Context, primary *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return primary.WithContext(ctx)
}

// isUniqueConstraintError checks if a DB error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	// PostgreSQL unique violation SQLSTATE 23505
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "23505")
}

// wrapDBError passes classified errors through and marks everything else internal.
func wrapDBError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := models.AsAppError(err); ok {
		return err
	}
	return models.NewInternalError(err)
}

func likePattern(query string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(strings.ToLower(query))
	return "%" + escaped + "%"
}
