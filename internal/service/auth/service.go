package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/eventease/internal/domain"
	"github.com/kirinyoku/eventease/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// DefaultProfilePic is shown for users who never set an avatar.
const DefaultProfilePic = "https://cdn-icons-png.flaticon.com/512/149/149071.png"

const minPasswordLen = 6

type UserStore interface {
	Create(ctx context.Context, u domain.User) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, upd domain.ProfileUpdate) (*domain.User, error)
}

type Limiter interface {
	Allow(ctx context.Context, key string) (allowed bool, current int64, retryAfter time.Duration, err error)
}

type Config struct {
	// AdminCode grants the admin role at registration. Empty disables it.
	AdminCode  string
	BcryptCost int
}

type Service struct {
	users   UserStore
	limiter Limiter
	cfg     Config
}

// New builds the service. limiter may be nil to disable login throttling.
func New(users UserStore, limiter Limiter, cfg Config) *Service {
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}

	return &Service{
		users:   users,
		limiter: limiter,
		cfg:     cfg,
	}
}

type RegisterInput struct {
	FullName  string
	Email     string
	Password  string
	Phone     string
	AdminCode string
}

// Register creates an account. A non-empty admin code must match the
// configured one and makes the account an admin.
//
// Returns:
//   - error: auth.ErrInvalidInput if a field is missing or malformed.
//   - error: auth.ErrInvalidAdminCode if the admin code does not match.
//   - error: auth.ErrEmailTaken if the email is already registered.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	const op = "service.auth.Register"

	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = strings.TrimSpace(in.Email)

	if err := validateNameEmail(in.FullName, in.Email); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if len(in.Password) < minPasswordLen {
		return nil, fmt.Errorf("%s: %w", op, InputError{Field: "password", Reason: fmt.Sprintf("must be at least %d characters", minPasswordLen)})
	}

	role := domain.RoleUser
	if in.AdminCode != "" {
		if !s.adminCodeMatches(in.AdminCode) {
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidAdminCode)
		}
		role = domain.RoleAdmin
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	u, err := s.users.Create(ctx, domain.User{
		FullName:     in.FullName,
		Email:        in.Email,
		Phone:        strings.TrimSpace(in.Phone),
		ProfilePic:   DefaultProfilePic,
		Role:         role,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, fmt.Errorf("%s: %w", op, ErrEmailTaken)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return u, nil
}

func (s *Service) adminCodeMatches(code string) bool {
	if s.cfg.AdminCode == "" {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(code), []byte(s.cfg.AdminCode)) == 1
}

// Login checks the credentials. rlKey identifies the caller for
// throttling; an empty key skips it.
//
// Returns:
//   - error: auth.ErrInvalidCredentials on an unknown email or a wrong
//     password.
//   - error: auth.RateLimitedError when the caller is throttled.
func (s *Service) Login(ctx context.Context, email, password, rlKey string) (*domain.User, error) {
	const op = "service.auth.Login"

	if s.limiter != nil && rlKey != "" {
		ok, _, retry, err := s.limiter.Allow(ctx, rlKey)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if !ok {
			return nil, fmt.Errorf("%s: %w", op, RateLimitedError{RetryAfter: retry})
		}
	}

	u, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)); err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	return u, nil
}

// GetUser returns the profile of a user with display defaults applied.
func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	const op = "service.auth.GetUser"

	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	p := withDefaults(u.Profile())

	return &p, nil
}

// UpdateProfile saves the editable fields and returns the new profile.
// An empty ProfilePic keeps the default avatar.
func (s *Service) UpdateProfile(ctx context.Context, id uuid.UUID, upd domain.ProfileUpdate) (*domain.Profile, error) {
	const op = "service.auth.UpdateProfile"

	upd.FullName = strings.TrimSpace(upd.FullName)
	upd.Email = strings.TrimSpace(upd.Email)
	upd.Phone = strings.TrimSpace(upd.Phone)

	if err := validateNameEmail(upd.FullName, upd.Email); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if upd.ProfilePic == "" {
		upd.ProfilePic = DefaultProfilePic
	}

	u, err := s.users.UpdateProfile(ctx, id, upd)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		case errors.Is(err, repository.ErrConflict):
			return nil, fmt.Errorf("%s: %w", op, ErrEmailTaken)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	p := withDefaults(u.Profile())

	return &p, nil
}

func validateNameEmail(name, email string) error {
	if name == "" {
		return InputError{Field: "full_name", Reason: "is required"}
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return InputError{Field: "email", Reason: "is not a valid address"}
	}

	return nil
}

func withDefaults(p domain.Profile) domain.Profile {
	if p.ProfilePic == "" {
		p.ProfilePic = DefaultProfilePic
	}

	return p
}
