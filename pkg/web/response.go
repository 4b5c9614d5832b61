// Package web defines common components for a web application.
package web

import "time"

// Response holds the common response type for all APIs.
type Response struct {
	AccessToken          string    `json:"access_token,omitempty"`
	AccessTokenExpiresAt time.Time `json:"access_token_expires_at,omitempty"`
	Data                 any       `json:"data,omitempty"`
	Error                string    `json:"error,omitempty"`
}

// Error wraps the given err into the common response type.
func Error(err error) Response {
	return Response{Error: err.Error()}
}
