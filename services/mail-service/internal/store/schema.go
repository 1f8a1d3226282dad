package store

// Schema creates the accounts and messages tables. It is idempotent.
const Schema = `
	-- Provisioned disposable addresses
	CREATE TABLE IF NOT EXISTS accounts (
	    id UUID PRIMARY KEY,
	    email VARCHAR(320) NOT NULL UNIQUE,
	    password VARCHAR(255) NOT NULL,
	    provider VARCHAR(32) NOT NULL CHECK (provider IN ('mail.tm', 'guerrillamail')),
	    session_id VARCHAR(255) NOT NULL,
	    token TEXT,
	    account_id VARCHAR(255) NOT NULL UNIQUE,
	    created_at TIMESTAMP WITH TIME ZONE NOT NULL,
	    expires_at TIMESTAMP WITH TIME ZONE NOT NULL,
	    last_checked TIMESTAMP WITH TIME ZONE NOT NULL,
	    is_active BOOLEAN NOT NULL DEFAULT TRUE
	);

	CREATE INDEX IF NOT EXISTS idx_accounts_session_id ON accounts(session_id);
	CREATE INDEX IF NOT EXISTS idx_accounts_expires_at ON accounts(expires_at);

	-- Normalized messages, one row per provider message per account
	CREATE TABLE IF NOT EXISTS messages (
	    id UUID PRIMARY KEY,
	    message_id VARCHAR(255) NOT NULL,
	    account_id VARCHAR(255) NOT NULL,
	    email VARCHAR(320) NOT NULL,
	    provider VARCHAR(32) NOT NULL,
	    sender TEXT NOT NULL,
	    subject TEXT NOT NULL,
	    content TEXT NOT NULL,
	    preview TEXT NOT NULL,
	    date VARCHAR(32) NOT NULL,
	    date_unix BIGINT NOT NULL,
	    unread BOOLEAN NOT NULL DEFAULT TRUE,
	    received_at TIMESTAMP WITH TIME ZONE NOT NULL,
	    last_checked TIMESTAMP WITH TIME ZONE NOT NULL,
	    UNIQUE (account_id, message_id)
	);

	CREATE INDEX IF NOT EXISTS idx_messages_account_date ON messages(account_id, date_unix DESC);
	CREATE INDEX IF NOT EXISTS idx_messages_email ON messages(email);
`
