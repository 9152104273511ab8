package persist

import "time"

const (
	DefaultKey           = "root"
	DefaultFlushEverySec = 1
)

type Conf struct {
	Backend       string `json:"backend" env:"PERSIST_BACKEND"`                 // "kv", "sql". empty disables persistence
	SQLDatabase   string `json:"sql_database" env:"PERSIST_SQL_DATABASE"`       // name in .sql-databases.json
	Key           string `json:"key" env:"PERSIST_KEY"`                         // storage key of the snapshot
	FlushEverySec int    `json:"flush_every_sec" env:"PERSIST_FLUSH_EVERY_SEC"` // write loop interval
	TTLSec        int    `json:"ttl_sec" env:"PERSIST_TTL_SEC"`                 // kv only. 0 = no expiry
	EncryptionKey string `json:"encryption_key" env:"PERSIST_ENCRYPTION_KEY"`   // base64 32-byte key. empty = plain JSON
}

func (c *Conf) ApplyDefaults() {
	if c.Key == "" {
		c.Key = DefaultKey
	}
	if c.FlushEverySec <= 0 {
		c.FlushEverySec = DefaultFlushEverySec
	}
}

func (c *Conf) Interval() time.Duration {
	return time.Duration(c.FlushEverySec) * time.Second
}

func (c *Conf) TTL() time.Duration {
	return time.Duration(c.TTLSec) * time.Second
}
