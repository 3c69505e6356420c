// Package account implements the credential and session-issuance workflow:
// registration with uniqueness enforcement, password verification on login,
// partial profile updates, and the outward user envelope with a fresh token.
package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/Farvi-13/Medium-Clone/internal/auth"
	"github.com/Farvi-13/Medium-Clone/internal/models"
	"github.com/Farvi-13/Medium-Clone/internal/models/dto"
	"github.com/Farvi-13/Medium-Clone/internal/storage"
)

// ErrDuplicateAccount indicates the email or username is already registered.
// The message deliberately does not say which field collided.
var ErrDuplicateAccount = errors.New("email or username are taken")

// ErrInvalidCredentials is returned for both an unknown email and a wrong
// password, so a caller cannot tell which factor failed.
var ErrInvalidCredentials = errors.New("invalid email or password")

// Service orchestrates the store, password verifier, and token issuer.
type Service struct {
	store  storage.UserStore
	tokens *auth.TokenManager
}

// NewService constructs the workflow over the given store and token manager.
func NewService(store storage.UserStore, tokens *auth.TokenManager) *Service {
	return &Service{store: store, tokens: tokens}
}

// Create registers a new account. Both email and username are pre-checked;
// a save-time uniqueness conflict from the store is reported the same way,
// covering the race between pre-check and insert. The returned record never
// carries the password hash.
func (s *Service) Create(ctx context.Context, req dto.RegisterRequest) (models.User, error) {
	if _, err := s.store.FindByEmail(ctx, req.Email); err == nil {
		return models.User{}, ErrDuplicateAccount
	} else if !errors.Is(err, storage.ErrNotFound) {
		return models.User{}, fmt.Errorf("lookup email: %w", err)
	}
	if _, err := s.store.FindByUsername(ctx, req.Username); err == nil {
		return models.User{}, ErrDuplicateAccount
	} else if !errors.Is(err, storage.ErrNotFound) {
		return models.User{}, fmt.Errorf("lookup username: %w", err)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	created, err := s.store.CreateUser(ctx, models.User{
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: hash,
		Bio:          req.Bio,
		Image:        req.Image,
	})
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return models.User{}, ErrDuplicateAccount
		}
		return models.User{}, fmt.Errorf("create user: %w", err)
	}

	created.PasswordHash = ""
	return created, nil
}

// Login verifies the email/password pair and returns the matching record
// without its hash. An unknown email and a wrong password produce the
// identical error value.
func (s *Service) Login(ctx context.Context, req dto.LoginRequest) (models.User, error) {
	user, err := s.store.FindByEmailWithPassword(ctx, req.Email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, fmt.Errorf("lookup email: %w", err)
	}

	if !auth.CheckPassword(req.Password, user.PasswordHash) {
		return models.User{}, ErrInvalidCredentials
	}

	user.PasswordHash = ""
	return user, nil
}

// Get loads a user by id, for the current-user endpoint. The id comes from
// an already-verified token, so absence is an internal inconsistency rather
// than a user error.
func (s *Service) Get(ctx context.Context, id int64) (models.User, error) {
	user, err := s.store.FindByID(ctx, id)
	if err != nil {
		return models.User{}, fmt.Errorf("lookup user %d: %w", id, err)
	}
	return user, nil
}

// Update overlays the non-nil fields of the request onto the stored record
// and persists it. Unspecified fields keep their prior values, so applying
// the same partial update twice is idempotent. Uniqueness of a changed email
// or username is enforced only by the storage constraint at save time.
func (s *Service) Update(ctx context.Context, id int64, req dto.UpdateUserRequest) (models.User, error) {
	user, err := s.store.FindByID(ctx, id)
	if err != nil {
		return models.User{}, fmt.Errorf("lookup user %d: %w", id, err)
	}

	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Username != nil {
		user.Username = *req.Username
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}
	if req.Image != nil {
		user.Image = *req.Image
	}
	if req.Password != nil {
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			return models.User{}, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = hash
	}

	updated, err := s.store.UpdateUser(ctx, user)
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return models.User{}, ErrDuplicateAccount
		}
		return models.User{}, fmt.Errorf("update user %d: %w", id, err)
	}

	updated.PasswordHash = ""
	return updated, nil
}

// BuildResponse issues a fresh token and wraps the user in the response
// envelope. The password hash never reaches the payload.
func (s *Service) BuildResponse(user models.User) (dto.UserResponse, error) {
	token, err := s.tokens.Generate(user)
	if err != nil {
		return dto.UserResponse{}, fmt.Errorf("generate token: %w", err)
	}
	return dto.UserResponse{
		User: dto.UserPayload{
			ID:       user.ID,
			Email:    user.Email,
			Username: user.Username,
			Bio:      user.Bio,
			Image:    user.Image,
			Token:    token,
		},
	}, nil
}
