package poller

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/pool-portal/common/errs"
	"github.com/gaze-network/pool-portal/pkg/logger"
	"github.com/gaze-network/pool-portal/pkg/logger/slogx"
	"github.com/samber/lo"
)

// Keys of the list views refreshed in the background.
const (
	KeyPools        = "getPoolsPoolTable"
	KeyTransactions = "getTransactionsTransactionsTable"
)

const (
	DefaultPoolsInterval        = 10000 * time.Millisecond
	DefaultTransactionsInterval = 4000 * time.Millisecond
)

// FetchFunc refreshes one list. Its error is logged and the poll continues.
type FetchFunc func(ctx context.Context) error

type task struct {
	key      string
	interval time.Duration
	fetch    FetchFunc

	cancel   context.CancelFunc
	quitOnce sync.Once
	quit     chan struct{}
	done     chan struct{}
}

// Poller runs keyed periodic fetches. At most one schedule exists per key.
type Poller struct {
	mu    sync.Mutex
	tasks map[string]*task
}

func New() *Poller {
	return &Poller{tasks: make(map[string]*task)}
}

// Start invokes fetch immediately and then every interval until End is called
// for key. An active schedule under the same key is replaced.
func (p *Poller) Start(key string, fetch FetchFunc, interval time.Duration) error {
	if key == "" {
		return errors.Wrap(errs.InvalidArgument, "poll key is required")
	}
	if interval <= 0 {
		return errors.Wrapf(errs.InvalidArgument, "poll interval must be positive, got %s", interval)
	}
	if fetch == nil {
		return errors.Wrap(errs.ArgumentRequired, "fetch function is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	t := &task{
		key:      key,
		interval: interval,
		fetch:    fetch,
		cancel:   cancel,
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}

	p.mu.Lock()
	prev := p.tasks[key]
	p.tasks[key] = t
	p.mu.Unlock()

	if prev != nil {
		prev.stop()
	}

	go t.run(logger.WithPackage(ctx, "poller",
		slog.String("key", key),
		slogx.Duration("interval", interval),
	))
	return nil
}

// End stops the schedule for key and returns once its loop has exited.
// Ending an unknown key is a no-op.
func (p *Poller) End(key string) {
	p.mu.Lock()
	t, ok := p.tasks[key]
	if ok {
		delete(p.tasks, key)
	}
	p.mu.Unlock()

	if ok {
		t.stop()
	}
}

func (p *Poller) Active(key string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.tasks[key]
	return ok
}

// Keys returns the active keys in sorted order.
func (p *Poller) Keys() []string {
	p.mu.Lock()
	keys := lo.Keys(p.tasks)
	p.mu.Unlock()
	slices.Sort(keys)
	return keys
}

// Shutdown ends every schedule. It gives up waiting when ctx ends.
func (p *Poller) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	tasks := lo.Values(p.tasks)
	clear(p.tasks)
	p.mu.Unlock()

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		for _, t := range tasks {
			t.stop()
		}
	}()

	select {
	case <-stopped:
		return nil
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "poller shutdown context canceled")
	}
}

func (t *task) stop() {
	t.quitOnce.Do(func() {
		close(t.quit)
		t.cancel()
	})
	<-t.done
}

func (t *task) run(ctx context.Context) {
	defer close(t.done)
	defer t.cancel()

	logger.DebugContext(ctx, "Polling started")
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	t.invoke(ctx)
	for {
		select {
		case <-t.quit:
			logger.DebugContext(ctx, "Got quit signal, stopping poller")
			return
		case <-ticker.C:
			// quit wins over a tick that fired at the same time
			select {
			case <-t.quit:
				return
			default:
			}
			t.invoke(ctx)
		}
	}
}

func (t *task) invoke(ctx context.Context) {
	start := time.Now()
	if err := t.fetch(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		logger.WarnContext(ctx, "Poll fetch failed", slogx.Error(err))
		return
	}
	logger.DebugContext(ctx, "Poll fetch completed", slogx.Duration("duration", time.Since(start)))
}
