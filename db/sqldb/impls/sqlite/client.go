package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/zeptools/gw-dispatch/db/sqldb"
	_ "modernc.org/sqlite" // side-effect
)

const DBType = "sqlite"

type Client struct {
	Conf *sqldb.Conf

	db  *sql.DB
	dsn string
}

// Ensure sqlite.Client implements sqldb.Client interface
var _ sqldb.Client = (*Client)(nil)

// Register makes "sqlite" available to sqldb.New
func Register() {
	sqldb.RegisterFactory(DBType, func(conf *sqldb.Conf) (sqldb.Client, error) {
		return &Client{Conf: conf}, nil
	})
}

func (c *Client) Init() error {
	c.dsn = c.Conf.DSN
	if c.dsn == "" {
		c.dsn = c.Conf.DB
	}
	if c.dsn == "" {
		return errors.New("sqlite: empty db path")
	}
	var err error
	if c.db, err = sql.Open("sqlite", c.dsn); err != nil {
		return fmt.Errorf("open sqlite: %w", err)
	}
	// single writer. also keeps a ":memory:" database alive across calls
	c.db.SetMaxOpenConns(1)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err = c.Ping(ctx); err != nil {
		_ = c.db.Close()
		return fmt.Errorf("sqlite ping failed: %w", err)
	}
	log.Println("[INFO] sqlite client initialized")
	return nil
}

func (c *Client) GetConf() *sqldb.Conf {
	return c.Conf
}

func (c *Client) GetDSN() string {
	return c.dsn
}

func (c *Client) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

func (c *Client) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

func (c *Client) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := c.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (c *Client) QueryRow(ctx context.Context, query string, args ...any) sqldb.Row {
	return row{c.db.QueryRowContext(ctx, query, args...)}
}

type row struct {
	*sql.Row
}

func (r row) Scan(dest ...any) error {
	err := r.Row.Scan(dest...)
	if errors.Is(err, sql.ErrNoRows) {
		return sqldb.ErrNoRows
	}
	return err
}
