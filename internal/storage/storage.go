package storage

import (
	"context"
	"errors"

	"github.com/Farvi-13/Medium-Clone/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict on email or username.
var ErrAlreadyExists = errors.New("record already exists")

// UserStore captures the persistence operations the account workflow needs.
// Lookups omit the password hash; FindByEmailWithPassword is the single
// exception and exists only for the login path. UpdateUser keeps the stored
// hash when the given record carries an empty one.
type UserStore interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	UpdateUser(ctx context.Context, user models.User) (models.User, error)
	FindByID(ctx context.Context, id int64) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindByUsername(ctx context.Context, username string) (models.User, error)
	FindByEmailWithPassword(ctx context.Context, email string) (models.User, error)
}
