package requests

import "net/http"

// HasBody reports whether requests with this method carry a body
func HasBody(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		// bodiless
		return false
	default:
		return true
	}
}
