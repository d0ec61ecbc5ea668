package auth

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/openshelf/bookshelf/internal/config"
	"github.com/openshelf/bookshelf/internal/database/users"
	"github.com/openshelf/bookshelf/internal/entities"
)

// Validation patterns
var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z ]{4,150}$`)
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

var (
	ErrUsernameExists     = errors.New("username already exists")
	ErrEmailExists        = errors.New("email already exists")
	ErrUsernameInvalid    = errors.New("username must be 4-150 characters, letters and spaces only")
	ErrEmailInvalid       = errors.New("invalid email format")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrNoFields           = errors.New("no recognized fields to update")
)

// ProfileUpdate carries the optional fields of a partial profile edit.
type ProfileUpdate struct {
	Username *string
	Email    *string
	Password *string
}

// Service handles registration, login and profile management.
type Service struct {
	users  *users.Repository
	config config.Auth
}

// NewService creates a new authentication service.
func NewService(repo *users.Repository, cfg config.Auth) *Service {
	return &Service{users: repo, config: cfg}
}

// Register creates a new user after validating username, email and the
// password policy.
func (s *Service) Register(username, email, password string) (*entities.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if !usernamePattern.MatchString(username) {
		return nil, ErrUsernameInvalid
	}
	if !emailPattern.MatchString(email) {
		return nil, ErrEmailInvalid
	}

	if taken, err := s.users.UsernameTaken(username, 0); err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	} else if taken {
		return nil, ErrUsernameExists
	}
	if taken, err := s.users.EmailTaken(email, 0); err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	} else if taken {
		return nil, ErrEmailExists
	}

	hash, err := HashPassword(password, s.config.BcryptCost)
	if err != nil {
		return nil, err
	}

	user := &entities.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.Create(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// Login authenticates a user and issues a token pair. A missing user and
// a wrong password are indistinguishable to the caller.
func (s *Service) Login(username, password string) (*entities.User, *TokenPair, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByUsername(username)
	if errors.Is(err, users.ErrNotFound) {
		return nil, nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, nil, err
	}

	if err := CheckPassword(password, user.PasswordHash); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	pair, err := s.issueTokens(user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// Refresh exchanges a valid refresh token for a fresh token pair.
func (s *Service) Refresh(refreshToken string) (*TokenPair, error) {
	claims, err := ParseToken([]byte(s.config.JWTSecret), refreshToken, TokenTypeRefresh)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(claims.UserID)
	if errors.Is(err, users.ErrNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}
	return s.issueTokens(user)
}

// GetProfile returns the user behind an authenticated ID.
func (s *Service) GetProfile(userID uint) (*entities.User, error) {
	return s.users.GetByID(userID)
}

// UpdateProfile applies a partial profile edit. At least one field must
// be supplied; uniqueness is checked against every other user.
func (s *Service) UpdateProfile(userID uint, update ProfileUpdate) (*entities.User, error) {
	fields := map[string]any{}

	if update.Username != nil {
		username := strings.TrimSpace(*update.Username)
		if !usernamePattern.MatchString(username) {
			return nil, ErrUsernameInvalid
		}
		if taken, err := s.users.UsernameTaken(username, userID); err != nil {
			return nil, err
		} else if taken {
			return nil, ErrUsernameExists
		}
		fields["username"] = username
	}

	if update.Email != nil {
		email := strings.TrimSpace(*update.Email)
		if !emailPattern.MatchString(email) {
			return nil, ErrEmailInvalid
		}
		if taken, err := s.users.EmailTaken(email, userID); err != nil {
			return nil, err
		} else if taken {
			return nil, ErrEmailExists
		}
		fields["email"] = email
	}

	if update.Password != nil {
		hash, err := HashPassword(*update.Password, s.config.BcryptCost)
		if err != nil {
			return nil, err
		}
		fields["password_hash"] = hash
	}

	if len(fields) == 0 {
		return nil, ErrNoFields
	}

	if err := s.users.Update(userID, fields); err != nil {
		return nil, err
	}
	return s.users.GetByID(userID)
}

func (s *Service) issueTokens(user *entities.User) (*TokenPair, error) {
	return IssueTokenPair(
		[]byte(s.config.JWTSecret),
		user.ID,
		user.Username,
		s.config.AccessTokenTTL,
		s.config.RefreshTokenTTL,
	)
}
