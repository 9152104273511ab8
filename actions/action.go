package actions

// Type identifies an action. Reducers switch on it.
type Type string

// Action is a plain value describing an intent to change state.
// When CallAPI is non-nil the action is an API-call request and is consumed by
// the apicall middleware instead of reaching the reducers.
type Action struct {
	Type    Type     `json:"type,omitempty"`
	Body    any      `json:"body,omitempty"`    // success payload (decoded response)
	Error   error    `json:"-"`                 // failure payload
	Payload any      `json:"payload,omitempty"` // Toast, Alert, params, etc
	CallAPI *CallAPI `json:"-"`                 // [Marker] API-call descriptor
}

// Call wraps a descriptor into an API-call action
func Call(d *CallAPI) Action {
	return Action{CallAPI: d}
}

// IsAPICall reports whether the action carries the API-call marker
func (a Action) IsAPICall() bool {
	return a.CallAPI != nil
}

// Toast is the payload of ShowToast
type Toast struct {
	Message  string `json:"message"`
	Severity string `json:"severity"` // "success", "error", "info", ...
}

// Alert is the payload of ShowGlobalError
type Alert struct {
	Message string `json:"message"`
	Kind    string `json:"kind,omitempty"`
}

const (
	SeveritySuccess = "success"
	SeverityError   = "error"
)
