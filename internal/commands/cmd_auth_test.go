package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/roomchat/internal/auth"
	"github.com/hay-kot/roomchat/internal/core/identity"
	"github.com/hay-kot/roomchat/internal/printer"
	"github.com/hay-kot/roomchat/internal/store/jsonfile"
)

func newAuthFlags(t *testing.T) *Flags {
	t.Helper()
	dir := t.TempDir()

	secret, err := auth.LoadOrCreateSecret(filepath.Join(dir, "secret.key"))
	require.NoError(t, err)

	svc := auth.NewService(
		jsonfile.NewAccountStore(filepath.Join(dir, "accounts.json")),
		auth.NewSessionFile(filepath.Join(dir, "session.json")),
		secret,
		time.Hour,
		zerolog.Nop(),
	)
	return &Flags{Auth: svc, Session: identity.NewSession(svc, zerolog.Nop())}
}

type cmdOutput struct {
	stdout string
	stderr string
}

// runAuth runs one account command against flags with fresh flag state.
func runAuth(t *testing.T, flags *Flags, args ...string) (cmdOutput, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer

	app := &cli.Command{Name: "roomchat", Writer: &stdout, ErrWriter: &stderr}
	app = NewAuthCmd(flags).Register(app)

	ctx := printer.NewContext(context.Background(), printer.New(&stderr))
	err := app.Run(ctx, append([]string{"roomchat"}, args...))
	return cmdOutput{stdout: stdout.String(), stderr: stderr.String()}, err
}

var aliceSignup = []string{
	"signup",
	"--name", "Alice",
	"--username", "alice",
	"--email", "alice@example.com",
	"--password", "correct horse",
}

func TestAuthCmd_SignUpAndWhoami(t *testing.T) {
	flags := newAuthFlags(t)

	out, err := runAuth(t, flags, aliceSignup...)
	require.NoError(t, err)
	assert.Contains(t, out.stderr, "Signed up as Alice")
	assert.Contains(t, out.stderr, "alice@example.com")
	assert.True(t, flags.Session.IsAuthenticated())

	out, err = runAuth(t, flags, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out.stdout, "Alice\n")
	assert.Contains(t, out.stdout, "username: alice")
	assert.Contains(t, out.stdout, "email:    alice@example.com")
	assert.NotContains(t, out.stdout, "bio:", "empty fields are omitted")
}

func TestAuthCmd_WhoamiJSON(t *testing.T) {
	flags := newAuthFlags(t)
	_, err := runAuth(t, flags, aliceSignup...)
	require.NoError(t, err)

	out, err := runAuth(t, flags, "whoami", "--json")
	require.NoError(t, err)

	var got identity.Principal
	require.NoError(t, json.Unmarshal([]byte(out.stdout), &got))
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, "alice@example.com", got.Email)
}

func TestAuthCmd_SignUpDuplicate(t *testing.T) {
	flags := newAuthFlags(t)
	_, err := runAuth(t, flags, aliceSignup...)
	require.NoError(t, err)

	_, err = runAuth(t, flags, aliceSignup...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestAuthCmd_SignOutAndIn(t *testing.T) {
	flags := newAuthFlags(t)
	_, err := runAuth(t, flags, aliceSignup...)
	require.NoError(t, err)

	out, err := runAuth(t, flags, "signout")
	require.NoError(t, err)
	assert.Contains(t, out.stderr, "Signed out")
	assert.False(t, flags.Session.IsAuthenticated())

	_, err = runAuth(t, flags, "whoami")
	assert.ErrorIs(t, err, errNotSignedIn)

	out, err = runAuth(t, flags, "signout")
	require.NoError(t, err)
	assert.Contains(t, out.stderr, "No active session")

	_, err = runAuth(t, flags, "signin", "--email", "alice@example.com", "--password", "wrong password")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	assert.False(t, flags.Session.IsAuthenticated())

	out, err = runAuth(t, flags, "signin", "--email", "alice@example.com", "--password", "correct horse")
	require.NoError(t, err)
	assert.Contains(t, out.stderr, "Signed in as Alice")

	out, err = runAuth(t, flags, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out.stdout, "Alice\n")
}
