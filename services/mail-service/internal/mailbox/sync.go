package mailbox

import (
	"context"
	"errors"
	"fmt"

	"github.com/stoik/tempmail/internal/models"
	"github.com/stoik/tempmail/services/mail-service/internal/normalize"
	"github.com/stoik/tempmail/services/mail-service/internal/provider"
	"github.com/stoik/tempmail/services/mail-service/internal/store"
)

// SyncMessages pulls the account's mailbox from its provider, normalizes and upserts every message,
// and returns them in provider order.
//
// An unknown or expired account and an unregistered provider yield an empty result.
// A message whose detail fetch or normalization fails is skipped. A failed list fetch
// or any store failure aborts the sync.
func (s *Service) SyncMessages(ctx context.Context, accountID, email, providerName string) ([]models.Message, error) {
	account, err := s.store.GetAccount(ctx, accountID)
	if errors.Is(err, store.ErrNotFound) {
		s.log.Debug().Str("account_id", accountID).Msg("sync for unknown account")
		return []models.Message{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load account: %w", err)
	}

	if providerName == "" {
		providerName = account.Provider.String()
	}
	adapter, err := s.adapterFor(providerName)
	if err != nil {
		s.log.Warn().Err(err).Str("account_id", accountID).Msg("sync skipped")
		return []models.Message{}, nil
	}

	log := s.log.With().
		Str("provider", adapter.Name().String()).
		Str("email", email).
		Logger()

	auth := provider.AuthFor(account)
	raws, err := adapter.FetchMessageList(ctx, auth)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch messages from %s: %w", adapter.Name(), err)
	}

	messages := make([]models.Message, 0, len(raws))
	for _, raw := range raws {
		detail, err := adapter.FetchFullMessage(ctx, auth, raw.RawID())
		if err != nil {
			log.Warn().Err(err).Str("message_id", raw.RawID()).Msg("skipping message: detail fetch failed")
			continue
		}

		msg, err := s.normalizer.Normalize(detail, adapter.Name(), account)
		if errors.Is(err, normalize.ErrEmptyContent) {
			log.Debug().Str("message_id", raw.RawID()).Msg("dropping empty message")
			continue
		}
		if err != nil {
			log.Warn().Err(err).Str("message_id", raw.RawID()).Msg("skipping message: normalization failed")
			continue
		}

		if err := s.store.UpsertMessage(ctx, msg); err != nil {
			return nil, fmt.Errorf("failed to save message %s: %w", msg.MessageID, err)
		}
		messages = append(messages, *msg)
	}

	if err := s.store.TouchAccount(ctx, account.AccountID, s.now()); err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("failed to update last checked: %w", err)
	}

	log.Info().Int("count", len(messages)).Msg("mailbox synced")
	return messages, nil
}
