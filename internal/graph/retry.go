// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graph

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/BlueBrain/citation-graph/internal/audit"
)

// RetryBaseDelay controls the base duration for exponential backoff on
// failed batches. Tests override this to avoid real sleeps.
var RetryBaseDelay = 2 * time.Second

// BatchWriteError reports a batch that kept failing after bounded
// retries. It aborts the whole run; batches committed before it remain
// in the database (there is no global transaction).
type BatchWriteError struct {
	Label    string
	Batch    int
	Attempts int
	Err      error
}

func (e *BatchWriteError) Error() string {
	return fmt.Sprintf("writing %s batch %d failed after %d attempts: %v",
		e.Label, e.Batch, e.Attempts, e.Err)
}

func (e *BatchWriteError) Unwrap() error { return e.Err }

// runWithRetry executes one batch statement, retrying up to
// cfg.MaxRetries with exponential backoff: 2s, 4s, 8s, ... Each retry is
// logged and audited; exhaustion yields a BatchWriteError. Re-running a
// batch is safe because every statement is an upsert.
func (w *Writer) runWithRetry(ctx context.Context, label string, batch int, query string, params map[string]any) error {
	var lastErr error
	for attempt := 0; ; attempt++ {
		lastErr = w.exec.WriteQuery(ctx, query, params)
		if lastErr == nil {
			return nil
		}

		if attempt >= w.cfg.MaxRetries {
			return &BatchWriteError{Label: label, Batch: batch, Attempts: attempt + 1, Err: lastErr}
		}

		backoff := time.Duration(math.Pow(2, float64(attempt))) * RetryBaseDelay
		if w.log != nil {
			w.log.Warnw("batch write failed, retrying",
				"label", label, "batch", batch,
				"attempt", attempt+1, "max_retries", w.cfg.MaxRetries,
				"backoff", backoff, "error", lastErr)
		}
		w.audit.Record(audit.KindBatchRetry, map[string]any{
			"label": label, "batch": batch, "attempt": attempt + 1, "error": lastErr.Error(),
		})

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
}
