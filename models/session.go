package models

import "encoding/json"

// Session 代表已登入使用者的憑證
//
// The client only stores the token; the backend enforces it. User is kept
// as raw JSON because the profile shape belongs to the backend.
type Session struct {
	User          json.RawMessage `json:"user,omitempty"`
	Token         string          `json:"token,omitempty"`
	Authenticated bool            `json:"is_authenticated"`
}

func NewSession() *Session {
	return new(Session)
}
