package state

import (
	"maps"

	"github.com/zeptools/gw-dispatch/actions"
	"github.com/zeptools/gw-dispatch/sec"
)

// Reduce is the root reducer. Each slice reducer sees every action
func Reduce(s RootState, a actions.Action) RootState {
	return RootState{
		Auth:      reduceAuth(s.Auth, a),
		Investor:  reduceInvestor(s.Investor, a),
		Toast:     reduceToast(s.Toast, a),
		Error:     reduceError(s.Error, a),
		Params:    reduceParams(s.Params, a),
		Responses: reduceResponses(s.Responses, a),
	}
}

func reduceAuth(s AuthState, a actions.Action) AuthState {
	switch a.Type {
	case actions.LoginSuccess:
		return sessionFromBody(a.Body)
	case actions.InvestorLoginSuccess, actions.LogoutSuccess:
		return AuthState{}
	default:
		return s
	}
}

func reduceInvestor(s InvestorState, a actions.Action) InvestorState {
	switch a.Type {
	case actions.InvestorLoginSuccess:
		return InvestorState(sessionFromBody(a.Body))
	case actions.LoginSuccess, actions.LogoutSuccess:
		return InvestorState{}
	default:
		return s
	}
}

// sessionFromBody reads `token` (or `accessToken`) from a decoded login response
func sessionFromBody(body any) AuthState {
	m, _ := body.(map[string]any)
	token, _ := m["token"].(string)
	if token == "" {
		token, _ = m["accessToken"].(string)
	}
	st := AuthState{Token: token, Profile: body}
	if exp, ok := sec.ExpiryOf(token); ok {
		st.ExpiresAt = exp
	}
	return st
}

func reduceToast(s ToastState, a actions.Action) ToastState {
	switch a.Type {
	case actions.ShowToast:
		t, _ := a.Payload.(actions.Toast)
		return ToastState{Open: true, Message: t.Message, Severity: t.Severity}
	case actions.HideToast:
		return ToastState{}
	default:
		return s
	}
}

func reduceError(s ErrorState, a actions.Action) ErrorState {
	switch a.Type {
	case actions.ShowGlobalError:
		al, _ := a.Payload.(actions.Alert)
		return ErrorState{Open: true, Message: al.Message, Kind: al.Kind}
	case actions.HideGlobalError:
		return ErrorState{}
	default:
		return s
	}
}

func reduceParams(s ParamsState, a actions.Action) ParamsState {
	switch a.Type {
	case actions.SetParams:
		p, _ := a.Payload.(map[string]any)
		next := make(ParamsState, len(s)+len(p))
		maps.Copy(next, s)
		maps.Copy(next, p)
		return next
	case actions.ResetParams:
		return nil
	default:
		return s
	}
}

func reduceResponses(s ResponsesState, a actions.Action) ResponsesState {
	if a.Type == actions.LogoutSuccess {
		return nil
	}
	if a.Type == "" || a.Body == nil {
		return s
	}
	next := make(ResponsesState, len(s)+1)
	maps.Copy(next, s)
	next[a.Type] = a.Body
	return next
}
