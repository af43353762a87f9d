package sim

import (
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"netsim-dashboard/internal/telemetry"
)

// Queue defaults for QueuedWriter.
const (
	DefaultQueueSize  = 256
	queueMaxBatch     = 100
	queueCloseTimeout = 5 * time.Second
)

type queuedItem struct {
	row *telemetry.StatsRow
	ev  *telemetry.EventRow
}

// QueuedWriter puts a slow sink behind a buffered channel and one worker, so
// writes return immediately. Rows that pile up while the worker is busy are
// written as one batch. When the queue is full new rows are dropped and
// counted.
type QueuedWriter struct {
	stats  StatsWriter
	events EventWriter
	queue  chan queuedItem
	done   chan struct{}
	log    *slog.Logger

	mu      sync.RWMutex
	closed  bool
	dropped atomic.Int64
}

// NewQueuedWriter starts the worker. A size <= 0 uses DefaultQueueSize.
func NewQueuedWriter(stats StatsWriter, events EventWriter, size int, log *slog.Logger) *QueuedWriter {
	if size <= 0 {
		size = DefaultQueueSize
	}
	if log == nil {
		log = slog.Default()
	}
	q := &QueuedWriter{
		stats:  stats,
		events: events,
		queue:  make(chan queuedItem, size),
		done:   make(chan struct{}),
		log:    log.With("writer", "queue"),
	}
	go q.run()
	return q
}

// WriteStats queues a stats row.
func (q *QueuedWriter) WriteStats(row telemetry.StatsRow) error {
	q.enqueue(queuedItem{row: &row})
	return nil
}

// WriteEvent queues an event.
func (q *QueuedWriter) WriteEvent(ev telemetry.EventRow) error {
	q.enqueue(queuedItem{ev: &ev})
	return nil
}

// Dropped reports how many rows were discarded because the queue was full
// or closed.
func (q *QueuedWriter) Dropped() int64 {
	return q.dropped.Load()
}

func (q *QueuedWriter) enqueue(item queuedItem) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		q.dropped.Add(1)
		return
	}
	select {
	case q.queue <- item:
	default:
		n := q.dropped.Add(1)
		q.log.Warn("queue full, dropping row", "dropped", n)
	}
}

func (q *QueuedWriter) run() {
	defer close(q.done)
	for item := range q.queue {
		var rows []telemetry.StatsRow
		var evs []telemetry.EventRow
		add := func(it queuedItem) {
			if it.row != nil {
				rows = append(rows, *it.row)
			}
			if it.ev != nil {
				evs = append(evs, *it.ev)
			}
		}
		add(item)
	collect:
		for len(rows)+len(evs) < queueMaxBatch {
			select {
			case next, ok := <-q.queue:
				if !ok {
					break collect
				}
				add(next)
			default:
				break collect
			}
		}
		q.flush(rows, evs)
	}
}

func (q *QueuedWriter) flush(rows []telemetry.StatsRow, evs []telemetry.EventRow) {
	if len(evs) > 0 && q.events != nil {
		if err := writeEventBatch(q.events, evs); err != nil {
			q.log.Error("event batch failed", "events", len(evs), "err", err)
		}
	}
	if len(rows) > 0 && q.stats != nil {
		if err := writeStatsBatch(q.stats, rows); err != nil {
			q.log.Error("stats batch failed", "rows", len(rows), "err", err)
		}
	}
}

// Close stops accepting rows, waits for the queue to drain and closes the
// wrapped sinks. It gives up waiting after a few seconds.
func (q *QueuedWriter) Close() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.queue)
	q.mu.Unlock()

	var errs []error
	select {
	case <-q.done:
	case <-time.After(queueCloseTimeout):
		errs = append(errs, errors.New("queued writer: timed out draining queue"))
	}
	closed := map[any]bool{}
	for _, w := range []any{q.stats, q.events} {
		c, ok := w.(interface{ Close() error })
		if !ok || closed[w] {
			continue
		}
		closed[w] = true
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if n := q.dropped.Load(); n > 0 {
		q.log.Warn("rows dropped", "dropped", n)
	}
	return errors.Join(errs...)
}
