package backend

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/zeptools/gw-dispatch/requests"
	"github.com/zeptools/gw-dispatch/responses"
	"github.com/zeptools/gw-dispatch/sec"
)

type Client struct {
	*http.Client // [Embedded]
	Conf         *Conf
}

func NewClient(httpClient *http.Client, conf *Conf) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	conf.ApplyDefaults()
	return &Client{Client: httpClient, Conf: conf}
}

// Request is one call to the backend API
type Request struct {
	Method   string
	Endpoint string      // relative to Conf.BaseURL
	Query    string      // already encoded, without "?"
	Token    string      // bearer token. empty = anonymous
	Header   http.Header // overrides the default headers
	Body     io.Reader
}

// URL joins host, base url, endpoint and query
func (c *Client) URL(endpoint string, query string) string {
	u := strings.TrimRight(c.Conf.Host, "/") + "/" + strings.Trim(c.Conf.BaseURL, "/")
	u = strings.TrimRight(u, "/") + "/" + strings.TrimLeft(endpoint, "/")
	if query != "" {
		sep := "?"
		if strings.Contains(u, "?") {
			sep = "&"
		}
		u += sep + query
	}
	return u
}

// FixtureURL is the static path of a fixture file
func (c *Client) FixtureURL(name string) string {
	return strings.TrimRight(c.Conf.Host, "/") + "/" + strings.Trim(c.Conf.FixturesPath, "/") + "/" + strings.TrimLeft(name, "/")
}

// NewRequest builds the http.Request with default headers, bearer and overrides applied
func (c *Client) NewRequest(ctx context.Context, r Request) (*http.Request, error) {
	method := r.Method
	if method == "" {
		method = http.MethodGet
	}
	var body io.Reader
	if requests.HasBody(method) {
		body = r.Body
	}
	upstrReq, err := http.NewRequestWithContext(ctx, method, c.URL(r.Endpoint, r.Query), body)
	if err != nil {
		return nil, err
	}
	upstrReq.Header.Set("Accept", responses.ContentTypeJSON)
	upstrReq.Header.Set("Content-Type", responses.ContentTypeJSON)
	upstrReq.Header.Set("Expires", "0")
	if c.Conf.ClientID != "" {
		upstrReq.Header.Set("Client-Id", c.Conf.ClientID)
	}
	if auth := sec.BearerHeader(r.Token); auth != "" {
		upstrReq.Header.Set("Authorization", auth)
	}
	for k, vals := range r.Header {
		upstrReq.Header.Del(k)
		for _, v := range vals {
			upstrReq.Header.Add(k, v)
		}
	}
	return upstrReq, nil
}

// Send performs the request. The caller is responsible for closing response.Body.
func (c *Client) Send(ctx context.Context, r Request) (*http.Response, error) {
	upstrReq, err := c.NewRequest(ctx, r)
	if err != nil {
		return nil, err
	}
	return c.Do(upstrReq)
}

// FetchFixture GETs a static fixture file with no header overrides.
// The caller is responsible for closing response.Body.
func (c *Client) FetchFixture(ctx context.Context, name string) (*http.Response, error) {
	upstrReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.FixtureURL(name), nil)
	if err != nil {
		return nil, err
	}
	return c.Do(upstrReq)
}
