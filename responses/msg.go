package responses

import (
	"encoding/json"
	"strings"
)

// Message is the error body shape of the backend API
type Message struct {
	Type    string `json:"type"` // "error", etc
	Message string `json:"message"`
	Code    int    `json:"code"` // application-level logic code
}

// DecodeMessage reads the `message` field of an error body. ok is false when absent
func DecodeMessage(body []byte) (string, bool) {
	var m Message
	if err := json.Unmarshal(body, &m); err != nil {
		return "", false
	}
	msg := strings.TrimSpace(m.Message)
	return msg, msg != ""
}
