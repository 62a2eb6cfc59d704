// Package pipeline turns large raw-order batches into deduplicated work
// orders without hogging the scheduler: input is processed in fixed-size
// chunks with a cooperative yield between them, results are folded into an
// explicit accumulator, and deduplication runs once over the full set.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"optimaflow/internal/service/dedupe"
	"optimaflow/internal/service/normalize"
	"optimaflow/internal/storage"
)

const DefaultChunkSize = 50

// Stats summarises one transform run.
type Stats struct {
	Input      int   `json:"input"`
	Normalized int   `json:"normalized"`
	Unique     int   `json:"unique"`
	ElapsedMS  int64 `json:"elapsed_ms"`
}

// TransformFunc converts one raw order. An error aborts the whole run
// (fail-empty: nothing processed so far is published).
type TransformFunc func(raw normalize.RawOrder) (storage.WorkOrder, error)

// YieldFunc gives the scheduler a turn between chunks.
type YieldFunc func(ctx context.Context) error

type Transformer struct {
	log       *slog.Logger
	chunkSize int
	transform TransformFunc
	yield     YieldFunc

	active atomic.Int64

	mu        sync.Mutex
	latestRun uint64
	orders    []storage.WorkOrder
	stats     Stats
}

func New(log *slog.Logger, chunkSize int) *Transformer {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Transformer{
		log:       log,
		chunkSize: chunkSize,
		transform: func(raw normalize.RawOrder) (storage.WorkOrder, error) {
			return normalize.Order(raw, nil), nil
		},
		yield: tickYield,
	}
}

// SetTransform overrides the per-record conversion, e.g. to attach a search
// overlay per order.
func (t *Transformer) SetTransform(fn TransformFunc) { t.transform = fn }

// SetYield overrides the between-chunks yield (tests use a no-op).
func (t *Transformer) SetYield(fn YieldFunc) { t.yield = fn }

// Busy reports whether any run is in flight.
func (t *Transformer) Busy() bool { return t.active.Load() > 0 }

// Latest returns the published output of the newest completed run.
func (t *Transformer) Latest() ([]storage.WorkOrder, Stats) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.orders, t.stats
}

// Run processes raws in chunks and returns the deduplicated set. On any
// error the run publishes nothing and returns the error with an empty
// result. Each run carries an id; only the newest run may publish, so a
// slow stale run can never overwrite fresher output.
func (t *Transformer) Run(ctx context.Context, raws []normalize.RawOrder) (orders []storage.WorkOrder, stats Stats, err error) {
	const op = "service.pipeline.Run"

	t.active.Add(1)
	defer t.active.Add(-1)

	t.mu.Lock()
	t.latestRun++
	run := t.latestRun
	t.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			t.log.Error("transform run panicked",
				slog.String("op", op),
				slog.Any("panic", r),
			)
			orders, stats = nil, Stats{}
			err = fmt.Errorf("%s: panic: %v", op, r)
		}
	}()

	start := time.Now()
	accumulated := make([]storage.WorkOrder, 0, len(raws))

	for offset := 0; offset < len(raws); offset += t.chunkSize {
		end := offset + t.chunkSize
		if end > len(raws) {
			end = len(raws)
		}

		for _, raw := range raws[offset:end] {
			wo, terr := t.transform(raw)
			if terr != nil {
				t.log.Error("transform failed, discarding run",
					slog.String("op", op),
					slog.Int("offset", offset),
					slog.String("error", terr.Error()),
				)
				return nil, Stats{}, fmt.Errorf("%s: %w", op, terr)
			}
			accumulated = append(accumulated, wo)
		}

		if end < len(raws) {
			if yerr := t.yield(ctx); yerr != nil {
				return nil, Stats{}, fmt.Errorf("%s: %w", op, yerr)
			}
		}
	}

	deduped := dedupe.Deduplicate(t.log, accumulated)

	stats = Stats{
		Input:      len(raws),
		Normalized: len(accumulated),
		Unique:     len(deduped),
		ElapsedMS:  time.Since(start).Milliseconds(),
	}

	t.publish(run, deduped, stats)

	return deduped, stats, nil
}

func (t *Transformer) publish(run uint64, orders []storage.WorkOrder, stats Stats) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if run != t.latestRun {
		return
	}
	t.orders = orders
	t.stats = stats
}

// tickYield hands back one scheduler tick, honouring cancellation.
func tickYield(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	timer := time.NewTimer(0)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
