package content

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// PostgresStore implements Store using PostgreSQL.
type PostgresStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// PostgresConfig holds PostgreSQL configuration.
type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	SSLMode  string
	Logger   *zap.Logger
}

// NewPostgresStore creates a new PostgreSQL content store.
func NewPostgresStore(cfg *PostgresConfig) (*PostgresStore, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	err = db.Ping()
	if err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	cfg.Logger.Info("content-store-connected",
		zap.String("host", cfg.Host),
		zap.String("database", cfg.Database))

	return &PostgresStore{
		db:     db,
		logger: cfg.Logger,
	}, nil
}

// Upsert inserts the record or refreshes an existing row with the same
// signature. The original content id is preserved on conflict, which is
// what makes double-delivery of a confirmed transaction harmless.
func (p *PostgresStore) Upsert(ctx context.Context, record *Record) (contentID string, err error) {
	properties, err := json.Marshal(record.Properties)
	if err != nil {
		return "", fmt.Errorf("marshal properties: %w", err)
	}

	query := `
		INSERT INTO content_records (
			content_id, signature, owner_id, kind, properties, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6
		)
		ON CONFLICT (signature) DO UPDATE SET
			owner_id = EXCLUDED.owner_id,
			kind = EXCLUDED.kind,
			properties = EXCLUDED.properties
		RETURNING content_id
	`

	err = p.db.QueryRowContext(ctx, query,
		uuid.New().String(),
		record.Signature,
		record.OwnerID,
		record.Kind,
		properties,
		record.CreatedAt,
	).Scan(&contentID)
	if err != nil {
		return "", fmt.Errorf("upsert content record: %w", err)
	}

	p.logger.Debug("content-record-upserted",
		zap.String("content-id", contentID),
		zap.String("signature", record.Signature),
		zap.String("owner-id", record.OwnerID))

	return contentID, nil
}

// Close closes the database connection.
func (p *PostgresStore) Close() error {
	p.logger.Info("closing-content-store")
	return p.db.Close()
}
