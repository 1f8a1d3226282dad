package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stoik/tempmail/internal/models"
)

const uniqueViolation = "23505"

// Postgres is a Store backed by a pgx connection pool.
type Postgres struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

var _ Store = (*Postgres)(nil)

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool, now: time.Now}
}

// Migrate applies Schema.
func (p *Postgres) Migrate(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

const accountColumns = `id, email, password, provider, session_id, token, account_id,
	created_at, expires_at, last_checked, is_active`

func scanAccount(row pgx.Row) (models.Account, error) {
	var a models.Account
	err := row.Scan(
		&a.ID,
		&a.Email,
		&a.Password,
		&a.Provider,
		&a.SessionID,
		&a.Token,
		&a.AccountID,
		&a.CreatedAt,
		&a.ExpiresAt,
		&a.LastChecked,
		&a.Active,
	)
	return a, err
}

func (p *Postgres) CreateAccount(ctx context.Context, account *models.Account) error {
	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}
	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := p.pool.Exec(ctx, query,
		account.ID,
		account.Email,
		account.Password,
		account.Provider,
		account.SessionID,
		account.Token,
		account.AccountID,
		account.CreatedAt,
		account.ExpiresAt,
		account.LastChecked,
		account.Active,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("account %s: %w", account.Email, ErrDuplicate)
		}
		return fmt.Errorf("failed to insert account: %w", err)
	}
	return nil
}

func (p *Postgres) GetAccount(ctx context.Context, accountID string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = $1 AND expires_at > $2`

	a, err := scanAccount(p.pool.QueryRow(ctx, query, accountID, p.now()))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &a, nil
}

func (p *Postgres) ListSessionAccounts(ctx context.Context, sessionID string) ([]models.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE session_id = $1 AND expires_at > $2
		ORDER BY created_at DESC
	`
	rows, err := p.pool.Query(ctx, query, sessionID, p.now())
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (p *Postgres) TouchAccount(ctx context.Context, accountID string, at time.Time) error {
	tag, err := p.pool.Exec(ctx, `UPDATE accounts SET last_checked = $2 WHERE account_id = $1`, accountID, at)
	if err != nil {
		return fmt.Errorf("failed to touch account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteMailbox removes the account and its messages in one transaction.
func (p *Postgres) DeleteMailbox(ctx context.Context, email string) (Deleted, error) {
	var d Deleted
	err := pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM messages WHERE lower(email) = lower($1)`, email)
		if err != nil {
			return fmt.Errorf("failed to delete messages: %w", err)
		}
		d.Messages = tag.RowsAffected()

		tag, err = tx.Exec(ctx, `DELETE FROM accounts WHERE lower(email) = lower($1)`, email)
		if err != nil {
			return fmt.Errorf("failed to delete account: %w", err)
		}
		d.Accounts = tag.RowsAffected()
		return nil
	})
	if err != nil {
		return Deleted{}, err
	}
	return d, nil
}

// UpsertMessage refreshes the mutable fields on conflict. received_at and id keep their first values.
func (p *Postgres) UpsertMessage(ctx context.Context, msg *models.Message) error {
	if msg.ID == uuid.Nil {
		msg.ID = uuid.New()
	}
	query := `
		INSERT INTO messages (id, message_id, account_id, email, provider, sender, subject,
			content, preview, date, date_unix, unread, received_at, last_checked)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (account_id, message_id)
		DO UPDATE SET
			email = EXCLUDED.email,
			provider = EXCLUDED.provider,
			sender = EXCLUDED.sender,
			subject = EXCLUDED.subject,
			content = EXCLUDED.content,
			preview = EXCLUDED.preview,
			date = EXCLUDED.date,
			date_unix = EXCLUDED.date_unix,
			unread = EXCLUDED.unread,
			last_checked = EXCLUDED.last_checked
	`
	_, err := p.pool.Exec(ctx, query,
		msg.ID,
		msg.MessageID,
		msg.AccountID,
		msg.Email,
		msg.Provider,
		msg.Sender,
		msg.Subject,
		msg.Content,
		msg.Preview,
		msg.Date,
		msg.DateUnix,
		msg.Unread,
		msg.ReceivedAt,
		msg.LastChecked,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert message %s: %w", msg.MessageID, err)
	}
	return nil
}

func (p *Postgres) ListMessages(ctx context.Context, accountID string) ([]models.Message, error) {
	query := `
		SELECT id, message_id, account_id, email, provider, sender, subject,
			content, preview, date, date_unix, unread, received_at, last_checked
		FROM messages
		WHERE account_id = $1
		ORDER BY date_unix DESC, message_id ASC
	`
	rows, err := p.pool.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(
			&m.ID,
			&m.MessageID,
			&m.AccountID,
			&m.Email,
			&m.Provider,
			&m.Sender,
			&m.Subject,
			&m.Content,
			&m.Preview,
			&m.Date,
			&m.DateUnix,
			&m.Unread,
			&m.ReceivedAt,
			&m.LastChecked,
		); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func (p *Postgres) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	err := p.pool.QueryRow(ctx,
		`SELECT (SELECT count(*) FROM accounts), (SELECT count(*) FROM messages)`,
	).Scan(&c.Accounts, &c.Messages)
	if err != nil {
		return Counts{}, fmt.Errorf("failed to count records: %w", err)
	}
	return c, nil
}

func (p *Postgres) PurgeExpired(ctx context.Context, now time.Time) (Deleted, error) {
	var d Deleted
	err := pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			DELETE FROM messages
			WHERE account_id IN (SELECT account_id FROM accounts WHERE expires_at <= $1)
		`, now)
		if err != nil {
			return fmt.Errorf("failed to purge messages: %w", err)
		}
		d.Messages = tag.RowsAffected()

		tag, err = tx.Exec(ctx, `DELETE FROM accounts WHERE expires_at <= $1`, now)
		if err != nil {
			return fmt.Errorf("failed to purge accounts: %w", err)
		}
		d.Accounts = tag.RowsAffected()
		return nil
	})
	if err != nil {
		return Deleted{}, err
	}
	return d, nil
}

// Close is a no-op; the pool belongs to the db package.
func (p *Postgres) Close() {}
