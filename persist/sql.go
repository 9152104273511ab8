package persist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/zeptools/gw-dispatch/db/sqldb"
)

const TableName = "persisted_state"

type sqlDialect struct {
	create string
	upsert string
	load   string
	remove string
}

// "key" is reserved in MySQL, so it is always quoted
var sqlDialects = map[string]sqlDialect{
	"pgsql": {
		create: `CREATE TABLE IF NOT EXISTS persisted_state ("key" VARCHAR(255) PRIMARY KEY, payload BYTEA NOT NULL, updated_at BIGINT NOT NULL)`,
		upsert: `INSERT INTO persisted_state ("key", payload, updated_at) VALUES (?, ?, ?) ON CONFLICT ("key") DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at`,
		load:   `SELECT payload FROM persisted_state WHERE "key" = ?`,
		remove: `DELETE FROM persisted_state WHERE "key" = ?`,
	},
	"mysql": {
		create: "CREATE TABLE IF NOT EXISTS persisted_state (`key` VARCHAR(255) PRIMARY KEY, payload LONGBLOB NOT NULL, updated_at BIGINT NOT NULL)",
		upsert: "INSERT INTO persisted_state (`key`, payload, updated_at) VALUES (?, ?, ?) ON DUPLICATE KEY UPDATE payload = VALUES(payload), updated_at = VALUES(updated_at)",
		load:   "SELECT payload FROM persisted_state WHERE `key` = ?",
		remove: "DELETE FROM persisted_state WHERE `key` = ?",
	},
	"sqlite": {
		create: `CREATE TABLE IF NOT EXISTS persisted_state ("key" TEXT PRIMARY KEY, payload BLOB NOT NULL, updated_at INTEGER NOT NULL)`,
		upsert: `INSERT INTO persisted_state ("key", payload, updated_at) VALUES (?, ?, ?) ON CONFLICT ("key") DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		load:   `SELECT payload FROM persisted_state WHERE "key" = ?`,
		remove: `DELETE FROM persisted_state WHERE "key" = ?`,
	},
}

// SQLStorage keeps payloads in the persisted_state table
type SQLStorage struct {
	Client  sqldb.Client
	dialect sqlDialect
	now     func() time.Time
}

// Ensure SQLStorage implements Storage
var _ Storage = (*SQLStorage)(nil)

// NewSQLStorage creates the table if it does not exist yet
func NewSQLStorage(ctx context.Context, client sqldb.Client) (*SQLStorage, error) {
	dbType := client.GetConf().Type
	d, ok := sqlDialects[dbType]
	if !ok {
		return nil, fmt.Errorf("persist: unsupported sql database type: %s", dbType)
	}
	if _, err := client.Exec(ctx, d.create); err != nil {
		return nil, fmt.Errorf("persist: create %s: %w", TableName, err)
	}
	return &SQLStorage{Client: client, dialect: d, now: time.Now}, nil
}

func (s *SQLStorage) Load(ctx context.Context, key string) ([]byte, bool, error) {
	var payload []byte
	err := s.Client.QueryRow(ctx, s.dialect.load, key).Scan(&payload)
	if errors.Is(err, sqldb.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return payload, true, nil
}

func (s *SQLStorage) Save(ctx context.Context, key string, payload []byte) error {
	_, err := s.Client.Exec(ctx, s.dialect.upsert, key, payload, s.now().UTC().UnixMilli())
	return err
}

func (s *SQLStorage) Remove(ctx context.Context, key string) error {
	_, err := s.Client.Exec(ctx, s.dialect.remove, key)
	return err
}
