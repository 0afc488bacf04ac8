package services

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// Options are shared by every service.
type Options struct {
	// TxTimeout bounds each transaction; zero means no bound.
	TxTimeout time.Duration
}

type txRunner struct {
	db      *gorm.DB
	timeout time.Duration
}

// run executes fn in one transaction. Any error returned by fn rolls back
// every write made through tx.
func (r txRunner) run(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	err := r.db.WithContext(ctx).Transaction(fn)
	return timeoutErr(ctx, err)
}
