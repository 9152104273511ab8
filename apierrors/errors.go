package apierrors

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
)

// Kind tags an Error. The set is closed
type Kind int

const (
	Unknown Kind = iota
	AuthError
	APIError
	NetworkError
	InternetDisconnected
	TypeError
	SilentError
	// Domain kinds. Distinct tags, routed like generic failures for now
	FatcaError
	AuthorizationError
	UBOError
	BankError
	RiskProfileError
)

var kindNames = [...]string{
	Unknown:              "Unknown",
	AuthError:            "AuthError",
	APIError:             "APIError",
	NetworkError:         "NetworkError",
	InternetDisconnected: "InternetDisconnected",
	TypeError:            "TypeError",
	SilentError:          "SilentError",
	FatcaError:           "FatcaError",
	AuthorizationError:   "AuthorizationError",
	UBOError:             "UBOError",
	BankError:            "BankError",
	RiskProfileError:     "RiskProfileError",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// IsDomain reports whether k is one of the domain-tagged kinds
func (k Kind) IsDomain() bool {
	return k >= FatcaError && k <= RiskProfileError
}

// Error is the single error type returned by the apicall middleware
type Error struct {
	Kind    Kind
	Status  int    // HTTP status code if any
	Message string // user-facing
	Cause   error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error with the same Kind, so errors.Is(err, &Error{Kind: AuthError}) works
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func Wrap(kind Kind, cause error, msg string) *Error {
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

// Auth builds the error for an HTTP 401
func Auth(status int) *Error {
	return &Error{Kind: AuthError, Status: status, Message: MsgSessionTimedOut}
}

// API builds the error for an HTTP status >= 400. Empty msg falls back to MsgGeneric
func API(status int, msg string) *Error {
	if msg == "" {
		msg = MsgGeneric
	}
	return &Error{Kind: APIError, Status: status, Message: msg}
}

// KindOf returns the Kind of err, Unknown if err is not an *Error
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

// FromTransport classifies a failure of http.Client.Do
func FromTransport(err error) *Error {
	if errors.Is(err, context.Canceled) {
		return Wrap(SilentError, err, "request canceled")
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) || errors.Is(err, syscall.ECONNREFUSED) {
		return Wrap(InternetDisconnected, err, MsgUnableToProcess)
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return Wrap(InternetDisconnected, err, MsgUnableToProcess)
	}
	return Wrap(NetworkError, err, MsgUnableToProcess)
}

// User-facing messages
const (
	MsgSessionTimedOut = "Your session has timed out. Please login again."
	MsgGeneric         = "Something went wrong. Please try again later."
	MsgUnableToProcess = "Unable to process your request. Please try again later."
)
