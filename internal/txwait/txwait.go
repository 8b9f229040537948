package txwait

import (
	"context"
	"log/slog"
	"time"

	"github.com/Cleverse/go-utilities/utils"
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/pool-portal/common/errs"
	"github.com/gaze-network/pool-portal/internal/backend"
	"github.com/gaze-network/pool-portal/internal/entity"
	"github.com/gaze-network/pool-portal/pkg/logger"
	"github.com/gaze-network/pool-portal/pkg/logger/slogx"
)

const (
	DefaultInterval       = 1000 * time.Millisecond
	DefaultMaxQueryErrors = 10
)

// ErrTransactionFailed is returned when the transaction completed without being applied.
var ErrTransactionFailed = errors.New("transaction failed")

type Config struct {
	// Interval between status queries.
	Interval time.Duration `mapstructure:"interval"`

	// Timeout bounds the whole wait. 0 waits until the context ends.
	Timeout time.Duration `mapstructure:"timeout"`

	// MaxQueryErrors is the number of consecutive failed status queries
	// tolerated before giving up. 0 retries forever.
	MaxQueryErrors int `mapstructure:"max_query_errors"`
}

// StatusQuerier reports the confirmation status of a transaction.
type StatusQuerier interface {
	GetTransactionStatus(ctx context.Context, handle entity.TxHandle) backend.Result[entity.TxStatus]
}

// Waiter polls a transaction until it is confirmed.
type Waiter struct {
	querier StatusQuerier
	config  Config
}

func New(querier StatusQuerier, config Config) *Waiter {
	if querier == nil {
		panic("txwait: status querier is required")
	}
	config.Interval = utils.Default(config.Interval, DefaultInterval)
	return &Waiter{querier: querier, config: config}
}

// Wait queries the status immediately and then once per interval until the
// transaction is confirmed, fails, or ctx ends.
func (w *Waiter) Wait(ctx context.Context, handle entity.TxHandle) (entity.TxStatus, error) {
	if handle == "" {
		return entity.TxStatus{}, errors.Wrap(errs.InvalidArgument, "transaction handle is required")
	}

	if w.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeoutCause(ctx, w.config.Timeout, errs.Timeout)
		defer cancel()
	}
	ctx = logger.WithPackage(ctx, "txwait", slogx.Stringer("tx", handle))

	timer := time.NewTimer(0)
	defer timer.Stop()
	<-timer.C

	var (
		start             = time.Now()
		consecutiveErrors int
	)
	for attempt := 1; ; attempt++ {
		result := w.querier.GetTransactionStatus(ctx, handle)
		switch {
		case ctx.Err() != nil:
			return entity.TxStatus{}, w.contextError(ctx, handle)
		case result.Failed():
			consecutiveErrors++
			logger.WarnContext(ctx, "Transaction status query failed",
				slogx.Error(result.Err),
				slog.Int("attempt", attempt),
				slog.Int("consecutive_errors", consecutiveErrors),
			)
			if w.config.MaxQueryErrors > 0 && consecutiveErrors >= w.config.MaxQueryErrors {
				return entity.TxStatus{}, errors.WithSecondaryError(
					errors.Wrapf(errs.Unavailable, "transaction %s status unavailable after %d failed queries: %v", handle, consecutiveErrors, result.Err),
					result.Err,
				)
			}
		case result.Response.Confirmed():
			logger.DebugContext(ctx, "Transaction confirmed", slog.Int("attempts", attempt), slog.Duration("elapsed", time.Since(start)))
			return result.Response, nil
		case result.Response.Failed():
			return result.Response, errors.Wrapf(ErrTransactionFailed, "transaction %s", handle)
		default:
			consecutiveErrors = 0
		}

		timer.Reset(w.config.Interval)
		select {
		case <-ctx.Done():
			return entity.TxStatus{}, w.contextError(ctx, handle)
		case <-timer.C:
		}
	}
}

func (w *Waiter) contextError(ctx context.Context, handle entity.TxHandle) error {
	return errors.Wrapf(context.Cause(ctx), "transaction %s not confirmed", handle)
}
