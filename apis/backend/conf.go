package backend

const (
	DefaultBaseURL      = "/api"
	DefaultFixturesPath = "/fixtures"
)

type Conf struct {
	Host         string `json:"host" env:"API_HOST"`                   // scheme://host[:port] of the backend
	BaseURL      string `json:"base_url" env:"API_BASE_URL"`           // path prefix of every endpoint. default "/api"
	FixturesPath string `json:"fixtures_path" env:"API_FIXTURES_PATH"` // static fixture dir. default "/fixtures"
	ClientID     string `json:"client_id" env:"API_CLIENT_ID"`         // optional Client-Id header
}

// ApplyDefaults fills unset paths
func (c *Conf) ApplyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.FixturesPath == "" {
		c.FixturesPath = DefaultFixturesPath
	}
}
