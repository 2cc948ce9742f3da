package scraper

import (
	"context"

	"github.com/sirupsen/logrus"

	"vehicle-scraper/models"
)

// batcher buffers listings and flushes them to the store every size items.
type batcher struct {
	store   Store
	size    int
	pending []models.Listing
	log     *logrus.Entry

	flushes  int
	inserted int
	dropped  int
}

func newBatcher(store Store, size int, log *logrus.Entry) *batcher {
	if size < 1 {
		size = 1
	}
	return &batcher{
		store:   store,
		size:    size,
		pending: make([]models.Listing, 0, size),
		log:     log,
	}
}

func (b *batcher) Add(ctx context.Context, l models.Listing) {
	b.pending = append(b.pending, l)
	if len(b.pending) >= b.size {
		b.Flush(ctx)
	}
}

// Flush writes the pending listings. On a storage failure the batch is
// logged and dropped; the run carries on.
func (b *batcher) Flush(ctx context.Context) {
	if len(b.pending) == 0 {
		return
	}
	batch := b.pending
	b.pending = make([]models.Listing, 0, b.size)
	b.flushes++

	n, err := b.store.InsertBatch(ctx, batch)
	if err != nil {
		b.dropped += len(batch)
		b.log.WithError(err).WithField("batch", len(batch)).Error("Batch insert failed, batch dropped")
		return
	}
	b.inserted += n
	b.log.WithFields(logrus.Fields{"batch": len(batch), "inserted": n}).Info("Flushed batch")
}
