package actions

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ResponseTypes pairs the action types dispatched on success and on failure
type ResponseTypes struct {
	Success Type
	Failure Type
}

// CallAPI describes one HTTP call to the backend API.
// Build it with NewCallAPI. The zero value is not a valid descriptor.
type CallAPI struct {
	Endpoint      string
	Method        string
	Body          any // JSON-encoded unless the call is a bulk upload
	ResponseTypes ResponseTypes
	QueryParams   map[string]any // falsy values are dropped
	ShowToast     bool
	ToastMessage  string
	ContentType   string // expected response content type. PDF & spreadsheet decode to []byte
	EnableFixture bool
	Fixture       string // fixture file name. derived from Endpoint if empty
	Silent        bool   // no alert on failure
}

var (
	ErrEmptyEndpoint      = errors.New("callapi: endpoint is required")
	ErrMissingTypes       = errors.New("callapi: success and failure types are required")
	ErrSameTypes          = errors.New("callapi: success and failure types must differ")
	ErrEmptyToastMessage  = errors.New("callapi: toast requested without a message")
	ErrBulkUploadBodyKind = errors.New("callapi: bulk upload body must be []byte, string or io.Reader")
)

// CallOption customizes a CallAPI during NewCallAPI
type CallOption func(*CallAPI)

func WithMethod(method string) CallOption {
	return func(d *CallAPI) { d.Method = strings.ToUpper(method) }
}

func WithBody(body any) CallOption {
	return func(d *CallAPI) { d.Body = body }
}

func WithQuery(params map[string]any) CallOption {
	return func(d *CallAPI) {
		d.QueryParams = make(map[string]any, len(params))
		for k, v := range params {
			d.QueryParams[k] = v
		}
	}
}

func WithToast(message string) CallOption {
	return func(d *CallAPI) {
		d.ShowToast = true
		d.ToastMessage = message
	}
}

func WithContentType(contentType string) CallOption {
	return func(d *CallAPI) { d.ContentType = contentType }
}

// WithFixture redirects the call to a static fixture file.
// An empty name derives the file name from the endpoint
func WithFixture(name string) CallOption {
	return func(d *CallAPI) {
		d.EnableFixture = true
		d.Fixture = name
	}
}

func Silent() CallOption {
	return func(d *CallAPI) { d.Silent = true }
}

// NewCallAPI builds and validates a descriptor
func NewCallAPI(endpoint string, success, failure Type, opts ...CallOption) (*CallAPI, error) {
	d := &CallAPI{
		Endpoint:      strings.TrimSpace(endpoint),
		Method:        http.MethodGet,
		ResponseTypes: ResponseTypes{Success: success, Failure: failure},
	}
	for _, opt := range opts {
		opt(d)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// Validate checks the descriptor invariants
func (d *CallAPI) Validate() error {
	if d.Endpoint == "" {
		return ErrEmptyEndpoint
	}
	if d.ResponseTypes.Success == "" || d.ResponseTypes.Failure == "" {
		return ErrMissingTypes
	}
	if d.ResponseTypes.Success == d.ResponseTypes.Failure {
		return ErrSameTypes
	}
	switch d.Method {
	case http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut,
		http.MethodPatch, http.MethodDelete, http.MethodOptions:
	default:
		return fmt.Errorf("callapi: unsupported method %q", d.Method)
	}
	if d.ShowToast && strings.TrimSpace(d.ToastMessage) == "" {
		return ErrEmptyToastMessage
	}
	if d.IsBulkUpload() {
		switch d.Body.(type) {
		case []byte, string, io.Reader:
		default:
			return ErrBulkUploadBodyKind
		}
	}
	return nil
}

func (d *CallAPI) IsBulkUpload() bool {
	return IsBulkUpload(d.ResponseTypes.Success)
}

// FixtureName returns the fixture file for the call e.g. "/users/list" -> "users_list.json"
func (d *CallAPI) FixtureName() string {
	if d.Fixture != "" {
		if strings.HasSuffix(d.Fixture, ".json") {
			return d.Fixture
		}
		return d.Fixture + ".json"
	}
	name := strings.Trim(d.Endpoint, "/")
	if i := strings.IndexByte(name, '?'); i >= 0 {
		name = name[:i]
	}
	return strings.ReplaceAll(name, "/", "_") + ".json"
}
