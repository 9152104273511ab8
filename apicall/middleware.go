// Package apicall turns API-call actions into HTTP requests.
//
// An action carrying an actions.CallAPI descriptor is consumed here: the call is
// executed once through the backend client, then the declared success or
// failure action is dispatched, plus a toast or global alert and, on HTTP 401,
// a logout. Every other action is forwarded to the next handler untouched.
package apicall

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/zeptools/gw-dispatch/actions"
	"github.com/zeptools/gw-dispatch/apierrors"
	"github.com/zeptools/gw-dispatch/apis/backend"
	"github.com/zeptools/gw-dispatch/state"
	"github.com/zeptools/gw-dispatch/store"
)

const tracerName = "github.com/zeptools/gw-dispatch/apicall"

type options struct {
	tracerProvider trace.TracerProvider
	logf           func(format string, args ...any)
}

type Option func(*options)

func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) { o.tracerProvider = tp }
}

// WithLogf replaces log.Printf. nil silences logging
func WithLogf(logf func(format string, args ...any)) Option {
	return func(o *options) {
		if logf == nil {
			logf = func(string, ...any) {}
		}
		o.logf = logf
	}
}

// New returns the API-call middleware
func New(client *backend.Client, opts ...Option) store.Middleware[state.RootState] {
	o := options{logf: log.Printf}
	for _, opt := range opts {
		opt(&o)
	}
	if o.tracerProvider == nil {
		o.tracerProvider = otel.GetTracerProvider()
	}
	h := &handler{
		client: client,
		tracer: o.tracerProvider.Tracer(tracerName),
		logf:   o.logf,
	}
	return func(api store.API[state.RootState], next store.DispatchFunc) store.DispatchFunc {
		return func(ctx context.Context, action actions.Action) (any, error) {
			if !action.IsAPICall() {
				return next(ctx, action)
			}
			return h.handle(ctx, api, action.CallAPI)
		}
	}
}

type handler struct {
	client *backend.Client
	tracer trace.Tracer
	logf   func(format string, args ...any)
}

// handle is a single attempt-then-classify flow
func (h *handler) handle(ctx context.Context, api store.API[state.RootState], d *actions.CallAPI) (any, error) {
	ctx, span := h.tracer.Start(ctx, "apicall "+d.Method+" "+d.Endpoint, trace.WithAttributes(
		attribute.String("apicall.success_type", string(d.ResponseTypes.Success)),
		attribute.Bool("apicall.fixture", d.EnableFixture),
	))
	defer span.End()
	start := time.Now()

	env := h.execute(ctx, d, api.GetState())

	// follow-up dispatches must land even if the caller gave up on the call
	dispatchCtx := context.WithoutCancel(ctx)

	if env.Err == nil {
		span.SetStatus(codes.Ok, "")
		h.logf("[INFO][apicall] %s %s -> %s (%v)", d.Method, d.Endpoint, d.ResponseTypes.Success, time.Since(start))
		if err := h.onSuccess(dispatchCtx, api, d, env.Data); err != nil {
			return nil, err
		}
		return env.Data, nil
	}

	kind := apierrors.KindOf(env.Err)
	span.SetAttributes(attribute.String("apicall.error_kind", kind.String()))
	if status := statusOf(env.Err); status != 0 {
		span.SetAttributes(attribute.Int("http.response.status_code", status))
	}
	span.RecordError(env.Err)
	span.SetStatus(codes.Error, kind.String())
	h.logf("[WARN][apicall] %s %s -> %s %s: %v", d.Method, d.Endpoint, d.ResponseTypes.Failure, kind, env.Err)

	h.onFailure(dispatchCtx, api, d, env.Err)
	return nil, env.Err
}

func (h *handler) onSuccess(ctx context.Context, api store.API[state.RootState], d *actions.CallAPI, body any) error {
	if d.ShowToast {
		if _, err := api.Dispatch(ctx, actions.Action{
			Type:    actions.ShowToast,
			Payload: actions.Toast{Message: d.ToastMessage, Severity: actions.SeveritySuccess},
		}); err != nil {
			return err
		}
	}
	_, err := api.Dispatch(ctx, actions.Action{Type: d.ResponseTypes.Success, Body: body})
	return err
}

// onFailure is the single site matching error kinds to side effects
func (h *handler) onFailure(ctx context.Context, api store.API[state.RootState], d *actions.CallAPI, callErr error) {
	for _, a := range FailureActions(d, callErr) {
		if _, err := api.Dispatch(ctx, a); err != nil {
			h.logf("[ERROR][apicall] dispatch %s: %v", a.Type, err)
		}
	}
}

// FailureActions lists the actions dispatched for a failed call, in order
func FailureActions(d *actions.CallAPI, callErr error) []actions.Action {
	kind := apierrors.KindOf(callErr)
	failure := actions.Action{Type: d.ResponseTypes.Failure, Error: callErr}
	alert := func(msg string) actions.Action {
		return actions.Action{
			Type:    actions.ShowGlobalError,
			Payload: actions.Alert{Message: msg, Kind: kind.String()},
		}
	}

	if kind == apierrors.AuthError {
		return []actions.Action{{Type: actions.LogoutSuccess}, alert(apierrors.MsgSessionTimedOut)}
	}
	if d.Silent || kind == apierrors.SilentError {
		return []actions.Action{failure}
	}

	if kind == apierrors.APIError {
		return []actions.Action{failure, alert(callErr.Error())}
	}
	// network, type, unknown and the domain kinds share the generic alert
	return []actions.Action{failure, alert(apierrors.MsgUnableToProcess)}
}

func statusOf(err error) int {
	if e, ok := err.(*apierrors.Error); ok {
		return e.Status
	}
	return 0
}
