package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/derssen/controller-bot/internal/domain"
)

const maxRetries = 3

// withRetry runs op with bounded exponential backoff. Not-found results
// and business conditions abort immediately; anything else is treated as
// a transient storage failure and wrapped as ErrStorageUnavailable once
// retries are exhausted.
func withRetry(ctx context.Context, op func() error) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 50 * time.Millisecond
	bo.MaxInterval = time.Second

	err := backoff.Retry(func() error {
		err := op()
		if err == nil {
			return nil
		}
		if isPermanent(err) || ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithContext(backoff.WithMaxRetries(bo, maxRetries), ctx))

	if err == nil {
		return nil
	}
	if isPermanent(err) {
		return err
	}
	return fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
}

func isPermanent(err error) bool {
	return errors.Is(err, sql.ErrNoRows) ||
		errors.Is(err, domain.ErrRecordNotFound) ||
		errors.Is(err, domain.ErrNoActiveShift) ||
		errors.Is(err, domain.ErrStaffNotFound)
}
