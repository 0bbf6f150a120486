// Package identity defines the signed-in principal and the session object that
// tracks it for the lifetime of the process.
package identity

import (
	"context"
	"errors"
	"strings"
)

// ErrNoSession is returned by a Provider when no valid session token exists.
var ErrNoSession = errors.New("no active session")

// AnonymousName is used when a principal has neither a name nor a username.
const AnonymousName = "Anonymous"

// Principal is the signed-in user as reported by the identity provider.
type Principal struct {
	ID       string `json:"id"`
	Name     string `json:"name,omitempty"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
	Bio      string `json:"bio,omitempty"`
}

// DisplayName returns the name to attach to messages sent by p.
func (p Principal) DisplayName() string {
	if name := strings.TrimSpace(p.Name); name != "" {
		return name
	}
	if username := strings.TrimSpace(p.Username); username != "" {
		return username
	}
	return AnonymousName
}

// Provider resolves the current principal from whatever session token is
// stored locally.
type Provider interface {
	// CurrentUser returns the signed-in principal. Returns ErrNoSession when
	// nobody is signed in or the token is no longer valid.
	CurrentUser(ctx context.Context) (Principal, error)
}
