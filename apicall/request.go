package apicall

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/zeptools/gw-dispatch/actions"
	"github.com/zeptools/gw-dispatch/apierrors"
	"github.com/zeptools/gw-dispatch/apis/backend"
	"github.com/zeptools/gw-dispatch/requests"
	"github.com/zeptools/gw-dispatch/responses"
	"github.com/zeptools/gw-dispatch/state"
)

// Envelope is the outcome of one call. Exactly one of Data and Err is meaningful
type Envelope struct {
	Data any
	Err  error
}

// SelectToken picks the bearer token for a call.
// Consent approve/reject and CVL verify go out anonymous; otherwise the standard
// token wins over the investor token
func SelectToken(st state.RootState, rt actions.ResponseTypes) string {
	if actions.IsTokenless(rt.Success) {
		return ""
	}
	standard, investor := st.Tokens()
	if standard != "" {
		return standard
	}
	return investor
}

// BuildRequest maps a descriptor onto a backend.Request
func BuildRequest(d *actions.CallAPI, st state.RootState) (backend.Request, error) {
	req := backend.Request{
		Method:   d.Method,
		Endpoint: d.Endpoint,
		Query:    requests.QueryString(d.QueryParams),
		Token:    SelectToken(st, d.ResponseTypes),
	}
	if d.IsBulkUpload() {
		req.Header = http.Header{"Content-Type": {responses.ContentTypeSpreadsheet}}
		switch body := d.Body.(type) {
		case []byte:
			req.Body = bytes.NewReader(body)
		case string:
			req.Body = strings.NewReader(body)
		case io.Reader:
			req.Body = body
		default:
			return req, actions.ErrBulkUploadBodyKind
		}
		return req, nil
	}
	if d.Body != nil {
		b, err := json.Marshal(d.Body)
		if err != nil {
			return req, fmt.Errorf("encode body: %w", err)
		}
		req.Body = bytes.NewReader(b)
	}
	return req, nil
}

func (h *handler) execute(ctx context.Context, d *actions.CallAPI, st state.RootState) Envelope {
	var (
		res *http.Response
		err error
	)
	if d.EnableFixture {
		res, err = h.client.FetchFixture(ctx, d.FixtureName())
	} else {
		var req backend.Request
		if req, err = BuildRequest(d, st); err != nil {
			return Envelope{Err: apierrors.Wrap(apierrors.TypeError, err, apierrors.MsgUnableToProcess)}
		}
		res, err = h.client.Send(ctx, req)
	}
	if err != nil {
		return Envelope{Err: apierrors.FromTransport(err)}
	}
	defer func() {
		if closeErr := res.Body.Close(); closeErr != nil {
			h.logf("[WARN][apicall] close body: %v", closeErr)
		}
	}()
	return Interpret(res, d.ContentType)
}

// Interpret maps an HTTP response onto an Envelope
func Interpret(res *http.Response, contentType string) Envelope {
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return Envelope{Err: apierrors.FromTransport(err)}
	}
	if res.StatusCode == http.StatusUnauthorized {
		return Envelope{Err: apierrors.Auth(res.StatusCode)}
	}
	if res.StatusCode >= http.StatusBadRequest {
		msg, _ := responses.DecodeMessage(body)
		return Envelope{Err: apierrors.API(res.StatusCode, msg)}
	}
	if responses.IsBlob(contentType) {
		return Envelope{Data: body}
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return Envelope{}
	}
	var data any
	if err = json.Unmarshal(body, &data); err != nil {
		return Envelope{Err: apierrors.Wrap(apierrors.TypeError, err, apierrors.MsgUnableToProcess)}
	}
	return Envelope{Data: data}
}
