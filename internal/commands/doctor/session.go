package doctor

import (
	"context"

	"github.com/hay-kot/roomchat/internal/core/identity"
)

// sessionChecker is satisfied by *identity.Session.
type sessionChecker interface {
	Check(ctx context.Context) bool
	User() (identity.Principal, bool)
}

// SessionCheck reports whether someone is signed in.
type SessionCheck struct {
	session sessionChecker
}

// NewSessionCheck creates a session check.
func NewSessionCheck(session sessionChecker) *SessionCheck {
	return &SessionCheck{session: session}
}

func (c *SessionCheck) Name() string {
	return "Session"
}

func (c *SessionCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	if !c.session.Check(ctx) {
		result.Items = append(result.Items, CheckItem{
			Label:  "Signed in",
			Status: StatusWarn,
			Detail: "no active session; run 'roomchat signin'",
		})
		return result
	}

	user, _ := c.session.User()
	result.Items = append(result.Items, CheckItem{
		Label:  "Signed in",
		Status: StatusPass,
		Detail: user.DisplayName(),
	})
	return result
}
