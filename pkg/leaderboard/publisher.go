package leaderboard

import (
	"context"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// Publisher moves records from the tick loop to a Store. Offer never blocks; records that
// do not fit in the buffer are dropped and counted.
type Publisher struct {
	store   Store
	queue   chan Record
	dropped atomic.Int64
	logger  zerolog.Logger
}

func NewPublisher(store Store, capacity int, logger zerolog.Logger) *Publisher {
	return &Publisher{
		store:  store,
		queue:  make(chan Record, capacity),
		logger: logger,
	}
}

func (p *Publisher) Offer(r Record) bool {
	select {
	case p.queue <- r:
		return true
	default:
		p.dropped.Add(1)
		p.logger.Warn().Str("player", r.Player).Msg("leaderboard queue full, dropping record")
		return false
	}
}

func (p *Publisher) Dropped() int64 {
	return p.dropped.Load()
}

// Run writes queued records in batches until ctx is done, then flushes what is left.
func (p *Publisher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			p.flush(context.WithoutCancel(ctx), p.drain(nil))
			return nil
		case r := <-p.queue:
			p.flush(ctx, p.drain([]Record{r}))
		}
	}
}

func (p *Publisher) drain(batch []Record) []Record {
	for {
		select {
		case r := <-p.queue:
			batch = append(batch, r)
		default:
			return batch
		}
	}
}

func (p *Publisher) flush(ctx context.Context, batch []Record) {
	if len(batch) == 0 {
		return
	}
	if err := p.store.Add(ctx, batch); err != nil {
		p.logger.Error().Err(err).Int("records", len(batch)).Msg("failed to publish leaderboard records")
	}
}

func (p *Publisher) Store() Store {
	return p.store
}
