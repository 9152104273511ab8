package sqldb

import (
	"strconv"
	"strings"
)

// PlaceholderPrefixForDBType maps a Conf.Type to its placeholder style
var PlaceholderPrefixForDBType = map[string]byte{
	"mysql":  '?',
	"pgsql":  '$',
	"sqlite": 0, // NOTE: sqlite supports all of them
}

// Rebind rewrites the '?' placeholders of query for dbType e.g. pgsql -> $1, $2
func Rebind(dbType string, query string) string {
	return ReplaceStaticPlaceholders(query, PlaceholderPrefixForDBType[dbType])
}

// ReplaceStaticPlaceholders rewrites each '?' into prefix+ordinal.
// '?' and 0 prefixes leave the query untouched. Quoted literals are not scanned:
// keep '?' out of string constants
func ReplaceStaticPlaceholders(sql string, prefix byte) string {
	if prefix == '?' || prefix == 0 {
		return sql
	}
	var builder strings.Builder
	builder.Grow(len(sql) + 8)
	cnt := 1
	for i := 0; i < len(sql); i++ {
		if sql[i] != '?' {
			builder.WriteByte(sql[i])
			continue
		}
		builder.WriteByte(prefix)
		builder.WriteString(strconv.Itoa(cnt))
		cnt++
	}
	return builder.String()
}
