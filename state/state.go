// Package state holds the root application state and its reducers.
package state

import (
	"time"

	"github.com/zeptools/gw-dispatch/actions"
)

type RootState struct {
	Auth      AuthState      `json:"auth"`
	Investor  InvestorState  `json:"investor"`
	Toast     ToastState     `json:"toast"`
	Error     ErrorState     `json:"error"`
	Params    ParamsState    `json:"paramsObj"`
	Responses ResponsesState `json:"responses"`
}

// AuthState is the standard user session
type AuthState struct {
	Token     string    `json:"token,omitempty"`
	ExpiresAt time.Time `json:"expiresAt,omitzero"` // from the jwt `exp` claim, display only
	Profile   any       `json:"profile,omitempty"`  // login response body
}

// InvestorState is the investor session. Same shape as AuthState
type InvestorState AuthState

type ToastState struct {
	Open     bool   `json:"open"`
	Message  string `json:"message,omitempty"`
	Severity string `json:"severity,omitempty"`
}

type ErrorState struct {
	Open    bool   `json:"open"`
	Message string `json:"message,omitempty"`
	Kind    string `json:"kind,omitempty"`
}

type ParamsState map[string]any

// ResponsesState keeps the latest body of every action that carried one
type ResponsesState map[actions.Type]any

func Initial() RootState {
	return RootState{}
}

// Tokens returns the standard and investor session tokens
func (s RootState) Tokens() (standard, investor string) {
	return s.Auth.Token, s.Investor.Token
}

// Persisted is the whitelist of slices saved across restarts
type Persisted struct {
	Auth     AuthState     `json:"auth"`
	Investor InvestorState `json:"investor"`
}

func (s RootState) Persisted() Persisted {
	return Persisted{Auth: s.Auth, Investor: s.Investor}
}

// WithPersisted returns s with the whitelisted slices replaced by p
func (s RootState) WithPersisted(p Persisted) RootState {
	s.Auth = p.Auth
	s.Investor = p.Investor
	return s
}
