package mailbox

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/stoik/tempmail/internal/models"
	"github.com/stoik/tempmail/services/mail-service/internal/normalize"
	"github.com/stoik/tempmail/services/mail-service/internal/provider"
	"github.com/stoik/tempmail/services/mail-service/internal/store"
)

type fixture struct {
	svc       *Service
	store     *store.Memory
	mailtm    *mockAdapter
	guerrilla *mockAdapter
}

func newFixture(t *testing.T, shuffle ShuffleFunc) *fixture {
	t.Helper()
	f := &fixture{
		store:     store.NewMemory(func() time.Time { return fixedNow }),
		mailtm:    newMockAdapter(models.ProviderMailTM),
		guerrilla: newMockAdapter(models.ProviderGuerrilla),
	}
	registry := provider.NewRegistry(f.mailtm, f.guerrilla)
	normalizer := normalize.New(normalize.WithClock(func() time.Time { return fixedNow }))
	f.svc = NewService(registry, f.store, normalizer,
		WithShuffle(shuffle),
		WithClock(func() time.Time { return fixedNow }),
	)
	return f
}

var errProvider = errors.New("provider down")

func TestCreateAccount_RequestedProvider(t *testing.T) {
	f := newFixture(t, keepOrder)
	f.guerrilla.On("CreateAccount", mock.Anything, "s1").
		Return(accountFor(models.ProviderGuerrilla, "s1", "g@sharklasers.com"), nil).Once()

	account, err := f.svc.CreateAccount(context.Background(), "s1", "guerrillamail")
	require.NoError(t, err)

	assert.Equal(t, models.ProviderGuerrilla, account.Provider)
	assert.Equal(t, account.CreatedAt.Add(time.Hour), account.ExpiresAt)
	f.mailtm.AssertNotCalled(t, "CreateAccount", mock.Anything, mock.Anything)
	f.guerrilla.AssertExpectations(t)

	stored, err := f.store.GetAccount(context.Background(), account.AccountID)
	require.NoError(t, err)
	assert.Equal(t, "g@sharklasers.com", stored.Email)
}

func TestCreateAccount_RequestedProviderFailsFallsThrough(t *testing.T) {
	f := newFixture(t, keepOrder)
	// requested first, then again as part of the full shuffled list
	f.mailtm.On("CreateAccount", mock.Anything, "s1").Return(nil, errProvider).Twice()
	f.guerrilla.On("CreateAccount", mock.Anything, "s1").
		Return(accountFor(models.ProviderGuerrilla, "s1", "g@sharklasers.com"), nil).Once()

	account, err := f.svc.CreateAccount(context.Background(), "s1", "mail.tm")
	require.NoError(t, err)

	assert.Equal(t, models.ProviderGuerrilla, account.Provider)
	f.mailtm.AssertExpectations(t)
	f.guerrilla.AssertExpectations(t)
}

func TestCreateAccount_UnsupportedProviderFallsBack(t *testing.T) {
	f := newFixture(t, keepOrder)
	f.mailtm.On("CreateAccount", mock.Anything, "s1").
		Return(accountFor(models.ProviderMailTM, "s1", "a@mail.tm"), nil).Once()

	account, err := f.svc.CreateAccount(context.Background(), "s1", "providerA")
	require.NoError(t, err)

	assert.Contains(t, models.Providers, account.Provider)
	assert.Equal(t, account.CreatedAt.Add(24*time.Hour), account.ExpiresAt)
}

func TestCreateAccount_ShuffledOrder(t *testing.T) {
	f := newFixture(t, reverseOrder)
	f.guerrilla.On("CreateAccount", mock.Anything, "s1").
		Return(accountFor(models.ProviderGuerrilla, "s1", "g@sharklasers.com"), nil).Once()

	account, err := f.svc.CreateAccount(context.Background(), "s1", "")
	require.NoError(t, err)

	assert.Equal(t, models.ProviderGuerrilla, account.Provider)
	f.mailtm.AssertNotCalled(t, "CreateAccount", mock.Anything, mock.Anything)
}

func TestCreateAccount_AllProvidersFail(t *testing.T) {
	f := newFixture(t, keepOrder)
	f.mailtm.On("CreateAccount", mock.Anything, "s1").Return(nil, errProvider)
	f.guerrilla.On("CreateAccount", mock.Anything, "s1").Return(nil, errProvider)

	account, err := f.svc.CreateAccount(context.Background(), "s1", "")

	assert.Nil(t, account)
	assert.ErrorIs(t, err, ErrAllProvidersFailed)
	assert.NotContains(t, err.Error(), "provider down")

	counts, err := f.store.Counts(context.Background())
	require.NoError(t, err)
	assert.Zero(t, counts.Accounts)
}

func TestCreateAccount_PersistenceFailureIsFatal(t *testing.T) {
	f := newFixture(t, keepOrder)
	require.NoError(t, f.store.CreateAccount(context.Background(), accountFor(models.ProviderMailTM, "other", "taken@mail.tm")))
	f.mailtm.On("CreateAccount", mock.Anything, "s1").
		Return(accountFor(models.ProviderMailTM, "s1", "taken@mail.tm"), nil).Once()

	account, err := f.svc.CreateAccount(context.Background(), "s1", "mail.tm")

	assert.Nil(t, account)
	assert.ErrorIs(t, err, store.ErrDuplicate)
	assert.NotErrorIs(t, err, ErrAllProvidersFailed)
	f.guerrilla.AssertNotCalled(t, "CreateAccount", mock.Anything, mock.Anything)
}

func TestCreateAccount_DefaultSessionID(t *testing.T) {
	f := newFixture(t, keepOrder)
	want := DefaultSessionID(fixedNow)
	f.mailtm.On("CreateAccount", mock.Anything, want).
		Return(accountFor(models.ProviderMailTM, want, "a@mail.tm"), nil).Once()

	account, err := f.svc.CreateAccount(context.Background(), "", "")
	require.NoError(t, err)

	assert.Equal(t, "session_1773480600000", account.SessionID)
}

func TestListSessionAccountsAndDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, keepOrder)
	older := accountFor(models.ProviderMailTM, "s1", "old@mail.tm")
	older.CreatedAt = fixedNow.Add(-time.Minute)
	require.NoError(t, f.store.CreateAccount(ctx, older))
	require.NoError(t, f.store.CreateAccount(ctx, accountFor(models.ProviderMailTM, "s1", "new@mail.tm")))
	require.NoError(t, f.store.UpsertMessage(ctx, &models.Message{
		MessageID: "m1", AccountID: "id-new@mail.tm", Email: "new@mail.tm", Provider: models.ProviderMailTM,
	}))

	accounts, err := f.svc.ListSessionAccounts(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, "new@mail.tm", accounts[0].Email)

	require.NoError(t, f.svc.DeleteAccount(ctx, "new@mail.tm"))
	require.NoError(t, f.svc.DeleteAccount(ctx, "never-existed@mail.tm"))

	accounts, err = f.svc.ListSessionAccounts(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, "old@mail.tm", accounts[0].Email)

	msgs, err := f.svc.StoredMessages(ctx, "id-new@mail.tm")
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestHealthAndProbe(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, keepOrder)
	f.mailtm.On("Probe", mock.Anything).Return(nil)
	f.guerrilla.On("Probe", mock.Anything).Return(errProvider)
	require.NoError(t, f.store.CreateAccount(ctx, accountFor(models.ProviderMailTM, "s1", "a@mail.tm")))

	h, err := f.svc.Health(ctx)
	require.NoError(t, err)
	assert.Equal(t, "healthy", h.Status)
	assert.Equal(t, store.Counts{Accounts: 1}, h.Database)
	assert.Equal(t, []models.Provider{models.ProviderMailTM, models.ProviderGuerrilla}, h.Providers)

	statuses := f.svc.ProbeProviders(ctx)
	require.Len(t, statuses, 2)
	assert.Equal(t, models.ProviderMailTM, statuses[0].Provider)
	assert.True(t, statuses[0].Available)
	assert.Empty(t, statuses[0].Error)
	assert.Equal(t, models.ProviderGuerrilla, statuses[1].Provider)
	assert.False(t, statuses[1].Available)
	assert.Equal(t, "provider down", statuses[1].Error)
}

func TestCodes_SearchesSubjectAndBodyOnly(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, keepOrder)
	a := seedAccount(t, f, models.ProviderMailTM, "a@mail.tm")
	f.mailtm.On("FetchMessageList", mock.Anything, mock.Anything).Return([]provider.RawMessage{
		provider.GenericMessage{"id": "m1"},
	}, nil)
	f.mailtm.On("FetchFullMessage", mock.Anything, mock.Anything, "m1").Return(provider.GenericMessage{
		"id":      "m1",
		"from":    "verify@accounts.example",
		"subject": "Sign-in attempt",
		"text":    "Your verification code: 739201",
	}, nil)

	_, err := f.svc.SyncMessages(ctx, a.AccountID, a.Email, "mail.tm")
	require.NoError(t, err)

	found, err := f.svc.Codes(ctx, a.AccountID)
	require.NoError(t, err)

	require.Len(t, found, 1)
	assert.Equal(t, "739201", found[0].Code.Code)
	assert.Equal(t, "m1", found[0].MessageID)
	assert.Equal(t, "Sign-in attempt", found[0].Subject)
}
