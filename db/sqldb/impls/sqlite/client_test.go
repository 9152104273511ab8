package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/zeptools/gw-dispatch/db/sqldb"
)

func TestClient_ExecAndQueryRow(t *testing.T) {
	c := &Client{Conf: &sqldb.Conf{Type: DBType, DB: ":memory:"}}
	if err := c.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer c.Close()

	ctx := context.Background()
	if _, err := c.Exec(ctx, `CREATE TABLE kv (k TEXT PRIMARY KEY, v TEXT)`); err != nil {
		t.Fatalf("create: %v", err)
	}
	n, err := c.Exec(ctx, `INSERT INTO kv (k, v) VALUES (?, ?)`, "a", "1")
	if err != nil || n != 1 {
		t.Fatalf("insert = %d, %v", n, err)
	}

	var v string
	if err := c.QueryRow(ctx, `SELECT v FROM kv WHERE k = ?`, "a").Scan(&v); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if v != "1" {
		t.Fatalf("v = %q, want 1", v)
	}

	err = c.QueryRow(ctx, `SELECT v FROM kv WHERE k = ?`, "missing").Scan(&v)
	if !errors.Is(err, sqldb.ErrNoRows) {
		t.Fatalf("missing row err = %v, want ErrNoRows", err)
	}
}

func TestRegister(t *testing.T) {
	Register()
	c, err := sqldb.New(DBType, &sqldb.Conf{DB: ":memory:"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, ok := c.(*Client); !ok {
		t.Fatalf("New() returned %T", c)
	}
}

func TestInit_EmptyPath(t *testing.T) {
	c := &Client{Conf: &sqldb.Conf{}}
	if err := c.Init(); err == nil {
		t.Fatal("expected error for empty path")
	}
}
