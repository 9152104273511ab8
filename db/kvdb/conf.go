package kvdb

type Conf struct {
	Type string `json:"type" env:"KVDB_TYPE"` // "redis"
	Host string `json:"host" env:"KVDB_HOST"`
	Port int    `json:"port" env:"KVDB_PORT"`
	PW   string `json:"pw" env:"KVDB_PW"`
	DB   int    `json:"db" env:"KVDB_DB"` // optional db number e.g. redis
	// KeyPrefix is prepended to every key
	KeyPrefix string `json:"key_prefix" env:"KVDB_KEY_PREFIX"`
}
