package mailbox

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/stoik/tempmail/services/mail-service/internal/store"
)

const DefaultSweepInterval = time.Minute

// Sweeper periodically deletes expired accounts and their messages.
// Reads already hide expired accounts; sweeping only reclaims space.
type Sweeper struct {
	store    store.Store
	interval time.Duration
	now      func() time.Time
	log      zerolog.Logger
}

func NewSweeper(st store.Store, interval time.Duration, log zerolog.Logger) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Sweeper{store: st, interval: interval, now: time.Now, log: log}
}

// Run sweeps immediately and then on every tick until ctx is done.
func (w *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	if _, err := w.SweepOnce(ctx); err != nil {
		w.log.Error().Err(err).Msg("initial sweep failed")
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := w.SweepOnce(ctx); err != nil {
				w.log.Error().Err(err).Msg("sweep failed")
			}
		}
	}
}

func (w *Sweeper) SweepOnce(ctx context.Context) (store.Deleted, error) {
	d, err := w.store.PurgeExpired(ctx, w.now())
	if err != nil {
		return store.Deleted{}, err
	}
	if d.Accounts > 0 || d.Messages > 0 {
		w.log.Info().
			Int64("accounts", d.Accounts).
			Int64("messages", d.Messages).
			Msg("expired mailboxes purged")
	}
	return d, nil
}
