// Package auth manages local accounts and the signed-in session.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/hay-kot/roomchat/internal/core/identity"
)

// Sentinel errors for auth operations.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountExists      = identity.ErrAccountExists
)

// maxPasswordBytes is the longest password bcrypt accepts.
const maxPasswordBytes = 72

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// max counts runes; bcrypt limits bytes.
	_ = v.RegisterValidation("bcryptlen", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= maxPasswordBytes
	})
	return v
}

// RegisterRequest holds the fields needed to create an account.
type RegisterRequest struct {
	Name     string `validate:"max=128"`
	Username string `validate:"omitempty,alphanum,max=32"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=8,bcryptlen"`
}

// Service implements identity.Provider on top of local accounts.
type Service struct {
	accounts identity.AccountStore
	sessions *SessionFile
	secret   []byte
	ttl      time.Duration
	now      func() time.Time
	log      zerolog.Logger
}

var _ identity.Provider = (*Service)(nil)

// NewService creates an auth service.
func NewService(accounts identity.AccountStore, sessions *SessionFile, secret []byte, ttl time.Duration, log zerolog.Logger) *Service {
	return &Service{
		accounts: accounts,
		sessions: sessions,
		secret:   secret,
		ttl:      ttl,
		now:      time.Now,
		log:      log,
	}
}

// SignUp registers a new account and signs it in.
func (s *Service) SignUp(ctx context.Context, req RegisterRequest) (identity.Principal, error) {
	req.Email = strings.TrimSpace(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	req.Username = strings.TrimSpace(req.Username)

	if err := validate.Struct(req); err != nil {
		return identity.Principal{}, fmt.Errorf("validate registration: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return identity.Principal{}, fmt.Errorf("hash password: %w", err)
	}

	account := identity.Account{
		ID:           uuid.NewString(),
		Email:        req.Email,
		Username:     req.Username,
		Name:         req.Name,
		PasswordHash: string(hash),
		CreatedAt:    s.now(),
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		return identity.Principal{}, err
	}

	s.log.Info().Str("account_id", account.ID).Msg("account created")

	if err := s.startSession(account.ID); err != nil {
		return identity.Principal{}, err
	}
	return account.Principal(), nil
}

// SignIn checks credentials and starts a session.
func (s *Service) SignIn(ctx context.Context, email, password string) (identity.Principal, error) {
	account, err := s.accounts.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, identity.ErrAccountNotFound) {
			return identity.Principal{}, ErrInvalidCredentials
		}
		return identity.Principal{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return identity.Principal{}, ErrInvalidCredentials
	}

	if err := s.startSession(account.ID); err != nil {
		return identity.Principal{}, err
	}

	s.log.Info().Str("account_id", account.ID).Msg("signed in")
	return account.Principal(), nil
}

// SignOut ends the current session. Signing out with no session is not an
// error.
func (s *Service) SignOut(ctx context.Context) error {
	return s.sessions.clear()
}

// CurrentUser returns the principal for the stored session token.
func (s *Service) CurrentUser(ctx context.Context) (identity.Principal, error) {
	stored, ok, err := s.sessions.load()
	if err != nil {
		return identity.Principal{}, err
	}
	if !ok {
		return identity.Principal{}, identity.ErrNoSession
	}

	accountID, err := parseToken(s.secret, stored.Token, s.now())
	if err != nil {
		s.log.Debug().Err(err).Msg("stored session token rejected")
		return identity.Principal{}, fmt.Errorf("%w: %v", identity.ErrNoSession, err)
	}

	account, err := s.accounts.Get(ctx, accountID)
	if err != nil {
		if errors.Is(err, identity.ErrAccountNotFound) {
			return identity.Principal{}, fmt.Errorf("%w: account %s no longer exists", identity.ErrNoSession, accountID)
		}
		return identity.Principal{}, err
	}

	return account.Principal(), nil
}

func (s *Service) startSession(accountID string) error {
	now := s.now()
	token, err := issueToken(s.secret, accountID, now, s.ttl)
	if err != nil {
		return fmt.Errorf("sign session token: %w", err)
	}

	return s.sessions.save(storedSession{
		Token:     token,
		AccountID: accountID,
		CreatedAt: now,
	})
}
