package mailbox

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stoik/tempmail/internal/models"
	"github.com/stoik/tempmail/services/mail-service/internal/store"
)

func TestSweeper_SweepOnce(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory(func() time.Time { return fixedNow })
	require.NoError(t, st.CreateAccount(ctx, accountFor(models.ProviderGuerrilla, "s1", "g@sharklasers.com")))
	require.NoError(t, st.CreateAccount(ctx, accountFor(models.ProviderMailTM, "s1", "m@mail.tm")))
	require.NoError(t, st.UpsertMessage(ctx, &models.Message{MessageID: "1", AccountID: "id-g@sharklasers.com", Email: "g@sharklasers.com"}))

	w := NewSweeper(st, time.Minute, zerolog.Nop())
	w.now = func() time.Time { return fixedNow.Add(90 * time.Minute) }

	d, err := w.SweepOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, store.Deleted{Accounts: 1, Messages: 1}, d)

	d, err = w.SweepOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, store.Deleted{}, d)
}

func TestSweeper_RunStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	w := NewSweeper(store.NewMemory(nil), 10*time.Millisecond, zerolog.Nop())

	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}

func TestNewSweeper_DefaultInterval(t *testing.T) {
	w := NewSweeper(store.NewMemory(nil), 0, zerolog.Nop())
	assert.Equal(t, DefaultSweepInterval, w.interval)
}
