package database

import (
	"fmt"
	"time"

	"agora/internal/observability"

	"gorm.io/gorm"
)

const queryStartKey = "agora:query_start"

// RegisterQueryMetrics installs GORM callbacks that feed the query latency histogram.
func RegisterQueryMetrics(db *gorm.DB) error {
	type hook struct {
		operation string
		before    func(name string, fn func(*gorm.DB)) error
		after     func(name string, fn func(*gorm.DB)) error
	}
	cb := db.Callback()
	hooks := []hook{
		{"create", cb.Create().Before("gorm:create").Register, cb.Create().After("gorm:create").Register},
		{"query", cb.Query().Before("gorm:query").Register, cb.Query().After("gorm:query").Register},
		{"update", cb.Update().Before("gorm:update").Register, cb.Update().After("gorm:update").Register},
		{"delete", cb.Delete().Before("gorm:delete").Register, cb.Delete().After("gorm:delete").Register},
		{"raw", cb.Raw().Before("gorm:raw").Register, cb.Raw().After("gorm:raw").Register},
		{"row", cb.Row().Before("gorm:row").Register, cb.Row().After("gorm:row").Register},
	}

	for _, h := range hooks {
		operation := h.operation
		if err := h.before("metrics:before_"+operation, func(tx *gorm.DB) {
			tx.InstanceSet(queryStartKey, time.Now())
		}); err != nil {
			return fmt.Errorf("register %s metrics callback: %w", operation, err)
		}
		if err := h.after("metrics:after_"+operation, func(tx *gorm.DB) {
			v, ok := tx.InstanceGet(queryStartKey)
			if !ok {
				return
			}
			start, ok := v.(time.Time)
			if !ok {
				return
			}
			table := tx.Statement.Table
			if table == "" {
				table = "unknown"
			}
			observability.ObserveQuery(operation, table, start)
		}); err != nil {
			return fmt.Errorf("register %s metrics callback: %w", operation, err)
		}
	}
	return nil
}
