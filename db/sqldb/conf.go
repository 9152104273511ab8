package sqldb

// Conf of one SQL database.
// env tags are read with a per-database prefix, e.g. SQLDB_MAIN_HOST
type Conf struct {
	Type string `json:"type" env:"TYPE"` // mysql, pgsql, sqlite
	Host string `json:"host" env:"HOST"`
	Port int    `json:"port" env:"PORT"`
	User string `json:"user" env:"USER"`
	PW   string `json:"pw" env:"PW"`
	DB   string `json:"db" env:"DB"`   // database name. file path for sqlite
	TZ   string `json:"tz" env:"TZ"`   // Connection Timezone
	DSN  string `json:"dsn" env:"DSN"` // To Overwrite Default DSN
}
