package sqldb

import (
	"context"
)

// Client is the SQL backend used for persisted state.
// Statements are written with '?' placeholders; implementations rewrite them for their dialect
type Client interface {
	Init() error
	Close() error
	GetConf() *Conf
	GetDSN() string
	Ping(ctx context.Context) error
	// Exec executes SQL statement like INSERT, UPDATE, DELETE. Returns rows affected
	Exec(ctx context.Context, query string, args ...any) (int64, error)
	QueryRow(ctx context.Context, query string, args ...any) Row // Lazy. only fails at Scan()
}
