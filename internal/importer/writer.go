package importer

import (
	"context"
	"fmt"
	"time"

	"github.com/SFDataHub/scanpipe/internal/adapters/docstore"
	"github.com/SFDataHub/scanpipe/pkg/logger"
	"github.com/SFDataHub/scanpipe/pkg/metrics"
)

// Default writer configuration constants. Latest documents carry the full,
// potentially wide row and are the largest record class, hence the smaller
// chunk.
const (
	defaultScanBatchSize    = 120
	defaultLatestBatchSize  = 40
	defaultHistoryBatchSize = 120
	defaultBatchPause       = 150 * time.Millisecond
)

// doc is one pending merge-write.
type doc struct {
	path string
	key  string
	body any
}

// writer flushes pending documents in bounded chunks with a throttling pause
// between commits, reporting progress after every chunk. Flushes of distinct
// record classes are sequential, never concurrent, to bound peak write
// pressure on the store.
type writer struct {
	store docstore.Store
	pause time.Duration
	emit  Callback
	log   logger.Logger
}

// flush commits docs in chunks of chunkSize under the given pass. A commit
// failure propagates immediately; chunks already committed stay committed.
// Between chunks the writer sleeps and honors ctx cancellation, so cancelling
// is cooperative at chunk boundaries only.
func (w *writer) flush(ctx context.Context, pass Pass, docs []doc, chunkSize int) error {
	total := len(docs)
	safeEmit(w.emit, Update{Phase: PhasePrepare, Current: 0, Total: total, Pass: pass})

	for start := 0; start < total; start += chunkSize {
		end := start + chunkSize
		if end > total {
			end = total
		}

		batch := w.store.Batch()
		for _, d := range docs[start:end] {
			batch.Set(d.path, d.key, d.body)
		}

		began := time.Now()
		if err := batch.Commit(ctx); err != nil {
			return fmt.Errorf("committing %s batch at %d/%d: %w", pass, end, total, err)
		}
		metrics.RecordBatchFlush(time.Since(began).Seconds())
		safeEmit(w.emit, Update{Phase: PhaseWrite, Current: end, Total: total, Pass: pass})

		if end < total && w.pause > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(w.pause):
			}
		}
	}

	safeEmit(w.emit, Update{Phase: PhaseDone, Current: total, Total: total, Pass: pass})
	w.log.Debug(ctx, "flushed pass",
		logger.String("pass", string(pass)),
		logger.Int("documents", total),
	)
	return nil
}
