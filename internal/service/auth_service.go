package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"smartreads/internal/ids"
	"smartreads/internal/models"
	"smartreads/internal/repository"
	"smartreads/internal/security"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
)

// Messages shown to the user for the sentinel errors above.
const (
	MsgInvalidCredentials = "Invalid credentials. Please try again."
	MsgEmailTaken         = "An account with this email already exists."
	MsgSignedIn           = "Sign in successful! Redirecting..."
	MsgAccountCreated     = "Account created successfully! You can now sign in."
)

// DemoAccount is a built-in login that works whatever the user list holds.
type DemoAccount struct {
	Email    string
	Password string
	Role     models.UserRole
}

var DemoAccounts = map[models.UserRole]DemoAccount{
	models.UserRoleAdmin: {Email: "admin@smartreads.com", Password: "admin123", Role: models.UserRoleAdmin},
	models.UserRoleUser:  {Email: "user@smartreads.com", Password: "user123", Role: models.UserRoleUser},
}

type AuthService struct {
	users    *repository.UserRepository
	sessions *repository.SessionRepository
	hash     func(string) (string, error)
	log      zerolog.Logger
	now      func() time.Time
}

type AuthOption func(*AuthService)

// WithClock replaces time.Now for the login timestamp.
func WithClock(now func() time.Time) AuthOption {
	return func(s *AuthService) { s.now = now }
}

func WithHasher(hash func(string) (string, error)) AuthOption {
	return func(s *AuthService) { s.hash = hash }
}

func NewAuthService(
	users *repository.UserRepository,
	sessions *repository.SessionRepository,
	log zerolog.Logger,
	opts ...AuthOption,
) *AuthService {
	s := &AuthService{
		users:    users,
		sessions: sessions,
		hash:     security.HashPassword,
		log:      log,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type SignInInput struct {
	Email    string
	Password string
	Role     models.UserRole
}

// SignIn checks the demo accounts first, then the registered users, and on
// success overwrites the profile's session.
func (s *AuthService) SignIn(ctx context.Context, profileID string, input SignInInput) (models.Session, error) {
	if !s.isDemoAccount(input) {
		ok, err := s.matchRegistered(ctx, input)
		if err != nil {
			return models.Session{}, err
		}
		if !ok {
			return models.Session{}, ErrInvalidCredentials
		}
	}

	session := models.Session{
		Role:      input.Role,
		Email:     input.Email,
		LoginTime: s.now().UTC(),
	}
	if err := s.sessions.Save(ctx, profileID, session); err != nil {
		return models.Session{}, fmt.Errorf("save session: %w", err)
	}

	s.log.Info().Str("profile", profileID).Str("role", string(input.Role)).Msg("signed in")
	return session, nil
}

func (s *AuthService) isDemoAccount(input SignInInput) bool {
	demo, ok := DemoAccounts[input.Role]
	return ok && demo.Email == input.Email && demo.Password == input.Password
}

func (s *AuthService) matchRegistered(ctx context.Context, input SignInInput) (bool, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return false, err
	}
	for _, u := range users {
		if u.Email != input.Email || u.Role != input.Role {
			continue
		}
		ok, err := security.VerifyPassword(input.Password, u.PasswordHash)
		if err != nil {
			s.log.Warn().Err(err).Str("user_id", u.ID).Msg("stored password hash unreadable")
			continue
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// SignUp validates the form, then rejects known emails, then appends the
// user to the persisted list. No session is opened.
func (s *AuthService) SignUp(ctx context.Context, input SignUpInput) (models.User, error) {
	if err := input.Validate(); err != nil {
		return models.User{}, err
	}

	passwordHash, err := s.hash(input.Password)
	if err != nil {
		return models.User{}, err
	}

	user := models.User{
		ID:           ids.New(),
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Email:        input.Email,
		PasswordHash: passwordHash,
		Role:         input.Role,
		CreatedAt:    s.now().UTC(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return models.User{}, ErrEmailTaken
		}
		return models.User{}, err
	}

	s.log.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("account created")
	return user, nil
}

func (s *AuthService) SignOut(ctx context.Context, profileID string) error {
	return s.sessions.Delete(ctx, profileID)
}

// Users returns the registered accounts.
func (s *AuthService) Users(ctx context.Context) ([]models.User, error) {
	return s.users.List(ctx)
}

// SocialLoginMessage is the notice shown for every third-party provider.
func SocialLoginMessage(provider string) string {
	name := strings.TrimSpace(provider)
	if name != "" {
		name = strings.ToUpper(name[:1]) + name[1:]
	}
	return name + " login is not implemented in this demo."
}
