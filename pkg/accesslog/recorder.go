package accesslog

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"stagehand-hq/stagehand/pkg/config"
)

// writeTimeout bounds a single journal write on the background worker.
const writeTimeout = 5 * time.Second

// Recorder journals records asynchronously so request handling never
// blocks on the database. Records are dropped, with a log line, when the
// buffer is full.
type Recorder struct {
	store      *Store
	enabled    bool
	recordChan chan *Record
	wg         sync.WaitGroup
	done       chan struct{}
	closeOnce  sync.Once
	logger     *slog.Logger
}

// NewRecorder creates a recorder writing to the given store and starts
// its background worker. A nil store disables recording.
func NewRecorder(store *Store, cfg *config.AccessLogConfig) *Recorder {
	r := &Recorder{
		store:      store,
		enabled:    cfg.Enabled && store != nil,
		recordChan: make(chan *Record, cfg.AsyncBuffer),
		done:       make(chan struct{}),
		logger:     slog.Default().With("component", "accesslog"),
	}

	if !r.enabled {
		return r
	}

	r.wg.Add(1)
	go r.worker()

	r.logger.Info("access log recorder started",
		"path", cfg.Path,
		"async_buffer", cfg.AsyncBuffer,
	)

	return r
}

// Record enqueues a record for async writing. The record's ID and Time
// are filled in if unset. Never blocks.
func (r *Recorder) Record(rec *Record) {
	if r == nil || !r.enabled {
		return
	}

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Time.IsZero() {
		rec.Time = time.Now()
	}

	select {
	case r.recordChan <- rec:
	default:
		r.logger.Warn("access log buffer full, dropping record",
			"request_id", rec.RequestID,
			"path", rec.Path,
		)
	}
}

// Close drains pending records and stops the worker. The underlying
// store is left open for the caller to close.
func (r *Recorder) Close() error {
	if r == nil || !r.enabled {
		return nil
	}

	r.closeOnce.Do(func() {
		close(r.done)
		r.wg.Wait()
	})
	return nil
}

// worker drains the record channel and writes entries to the store.
func (r *Recorder) worker() {
	defer r.wg.Done()

	for {
		select {
		case rec := <-r.recordChan:
			r.write(rec)

		case <-r.done:
			// Drain remaining records before exit.
			for {
				select {
				case rec := <-r.recordChan:
					r.write(rec)
				default:
					return
				}
			}
		}
	}
}

func (r *Recorder) write(rec *Record) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	if err := r.store.Insert(ctx, rec); err != nil {
		r.logger.Error("failed to journal request",
			"request_id", rec.RequestID,
			"path", rec.Path,
			"error", err,
		)
	}
}
