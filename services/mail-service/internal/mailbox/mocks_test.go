package mailbox

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/stoik/tempmail/internal/models"
	"github.com/stoik/tempmail/services/mail-service/internal/provider"
)

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

type mockAdapter struct {
	mock.Mock
	name models.Provider
}

func newMockAdapter(name models.Provider) *mockAdapter {
	return &mockAdapter{name: name}
}

func (m *mockAdapter) Name() models.Provider { return m.name }

func (m *mockAdapter) CreateAccount(ctx context.Context, sessionID string) (*models.Account, error) {
	args := m.Called(ctx, sessionID)
	account, _ := args.Get(0).(*models.Account)
	return account, args.Error(1)
}

func (m *mockAdapter) FetchMessageList(ctx context.Context, auth provider.AuthContext) ([]provider.RawMessage, error) {
	args := m.Called(ctx, auth)
	raws, _ := args.Get(0).([]provider.RawMessage)
	return raws, args.Error(1)
}

func (m *mockAdapter) FetchFullMessage(ctx context.Context, auth provider.AuthContext, messageID string) (provider.RawMessage, error) {
	args := m.Called(ctx, auth, messageID)
	raw, _ := args.Get(0).(provider.RawMessage)
	return raw, args.Error(1)
}

func (m *mockAdapter) Probe(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// accountFor mimics what a real adapter returns for p.
func accountFor(p models.Provider, sessionID, email string) *models.Account {
	return models.NewAccount(p, sessionID, email, "pw", "tok-"+email, "id-"+email, fixedNow)
}

// keepOrder leaves the registry order untouched.
func keepOrder(int, func(i, j int)) {}

// reverseOrder flips the registry order.
func reverseOrder(n int, swap func(i, j int)) {
	for i := 0; i < n/2; i++ {
		swap(i, n-1-i)
	}
}
