package sqldb

import "errors"

// ErrNoRows is returned by Row.Scan of every implementation when the query matched nothing
var ErrNoRows = errors.New("sqldb: no rows in result set")

type Row interface {
	Scan(dest ...any) error
}
