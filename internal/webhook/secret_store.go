package webhook

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/garyjia/asana-automation/pkg/database"
	"go.uber.org/zap"
)

// SecretStore persists the X-Hook-Secret delivered during the webhook
// handshake so restarts keep validating deliveries without re-registering
// the webhook.
type SecretStore struct {
	db     *database.DB
	logger *zap.Logger
}

// NewSecretStore creates the store and its backing table.
func NewSecretStore(db *database.DB, logger *zap.Logger) (*SecretStore, error) {
	query := `
		CREATE TABLE IF NOT EXISTS webhook_secrets (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			secret TEXT NOT NULL,
			updated_at DATETIME NOT NULL
		);
	`
	if _, err := db.Exec(query); err != nil {
		return nil, fmt.Errorf("failed to create webhook_secrets table: %w", err)
	}

	return &SecretStore{db: db, logger: logger}, nil
}

// Save stores the handshake secret, replacing any previous one.
func (s *SecretStore) Save(ctx context.Context, secret string) error {
	query := `
		INSERT INTO webhook_secrets (id, secret, updated_at) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET secret = excluded.secret, updated_at = excluded.updated_at
	`
	if _, err := s.db.ExecContext(ctx, query, secret, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to save webhook secret: %w", err)
	}

	s.logger.Info("Webhook handshake secret stored")
	return nil
}

// Load returns the stored handshake secret, or "" when none was saved yet.
func (s *SecretStore) Load(ctx context.Context) (string, error) {
	var secret string
	err := s.db.QueryRowContext(ctx, "SELECT secret FROM webhook_secrets WHERE id = 1").Scan(&secret)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to load webhook secret: %w", err)
	}
	return secret, nil
}
