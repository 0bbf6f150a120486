package auth

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/roomchat/internal/core/identity"
	"github.com/hay-kot/roomchat/internal/store/jsonfile"
)

type testEnv struct {
	svc         *Service
	sessionPath string
}

func newTestService(t *testing.T) testEnv {
	t.Helper()
	dir := t.TempDir()

	secret, err := LoadOrCreateSecret(filepath.Join(dir, "secret.key"))
	require.NoError(t, err)

	sessionPath := filepath.Join(dir, "session.json")
	svc := NewService(
		jsonfile.NewAccountStore(filepath.Join(dir, "accounts.json")),
		NewSessionFile(sessionPath),
		secret,
		time.Hour,
		zerolog.Nop(),
	)
	return testEnv{svc: svc, sessionPath: sessionPath}
}

var aliceReq = RegisterRequest{
	Name:     "Alice",
	Username: "alice",
	Email:    "alice@example.com",
	Password: "correct horse",
}

func TestService_SignUpStartsSession(t *testing.T) {
	env := newTestService(t)
	ctx := context.Background()

	p, err := env.svc.SignUp(ctx, aliceReq)
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "Alice", p.Name)

	current, err := env.svc.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, p, current)
}

func TestService_SignUpValidation(t *testing.T) {
	env := newTestService(t)

	req := aliceReq
	req.Email = "not-an-email"
	req.Password = "short"

	_, err := env.svc.SignUp(context.Background(), req)

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	assert.ElementsMatch(t, []string{"Email", "Password"}, fields)
}

func TestService_SignUpPasswordByteLimit(t *testing.T) {
	env := newTestService(t)

	req := aliceReq
	req.Password = strings.Repeat("é", 40) // 40 runes, 80 bytes

	_, err := env.svc.SignUp(context.Background(), req)

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.Len(t, verrs, 1)
	assert.Equal(t, "Password", verrs[0].Field())
	assert.Equal(t, "bcryptlen", verrs[0].Tag())

	req.Password = strings.Repeat("é", 36) // exactly 72 bytes
	_, err = env.svc.SignUp(context.Background(), req)
	require.NoError(t, err)
}

func TestService_SignUpDuplicate(t *testing.T) {
	env := newTestService(t)
	ctx := context.Background()

	_, err := env.svc.SignUp(ctx, aliceReq)
	require.NoError(t, err)

	_, err = env.svc.SignUp(ctx, aliceReq)
	assert.ErrorIs(t, err, ErrAccountExists)
}

func TestService_SignInAndOut(t *testing.T) {
	env := newTestService(t)
	ctx := context.Background()

	created, err := env.svc.SignUp(ctx, aliceReq)
	require.NoError(t, err)
	require.NoError(t, env.svc.SignOut(ctx))

	_, err = env.svc.CurrentUser(ctx)
	require.ErrorIs(t, err, identity.ErrNoSession)

	_, err = env.svc.SignIn(ctx, aliceReq.Email, "wrong password")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = env.svc.SignIn(ctx, "nobody@example.com", aliceReq.Password)
	require.ErrorIs(t, err, ErrInvalidCredentials)

	p, err := env.svc.SignIn(ctx, "  alice@example.com ", aliceReq.Password)
	require.NoError(t, err)
	assert.Equal(t, created.ID, p.ID)

	require.NoError(t, env.svc.SignOut(ctx))
	require.NoError(t, env.svc.SignOut(ctx), "signing out twice is fine")
}

func TestService_CurrentUser_EmptySessionFile(t *testing.T) {
	for _, content := range []string{"", "[]", "  []\n"} {
		env := newTestService(t)
		require.NoError(t, os.WriteFile(env.sessionPath, []byte(content), 0o600))

		_, err := env.svc.CurrentUser(context.Background())
		assert.ErrorIs(t, err, identity.ErrNoSession, "content %q", content)
	}
}

func TestService_CurrentUser_ExpiredToken(t *testing.T) {
	env := newTestService(t)
	ctx := context.Background()

	_, err := env.svc.SignUp(ctx, aliceReq)
	require.NoError(t, err)

	env.svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	_, err = env.svc.CurrentUser(ctx)
	assert.ErrorIs(t, err, identity.ErrNoSession)
}

func TestService_CurrentUser_ForeignSecret(t *testing.T) {
	env := newTestService(t)
	ctx := context.Background()

	_, err := env.svc.SignUp(ctx, aliceReq)
	require.NoError(t, err)

	env.svc.secret = []byte("some-other-key")

	_, err = env.svc.CurrentUser(ctx)
	assert.ErrorIs(t, err, identity.ErrNoSession)
}

func TestLoadOrCreateSecret(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys", "secret.key")

	first, err := LoadOrCreateSecret(path)
	require.NoError(t, err)
	assert.Len(t, first, 64)

	second, err := LoadOrCreateSecret(path)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestToken_RoundTrip(t *testing.T) {
	secret := []byte("test-secret")
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	token, err := issueToken(secret, "acct-1", now, time.Minute)
	require.NoError(t, err)

	sub, err := parseToken(secret, token, now.Add(30*time.Second))
	require.NoError(t, err)
	assert.Equal(t, "acct-1", sub)

	_, err = parseToken(secret, token, now.Add(2*time.Minute))
	assert.Error(t, err)
}
