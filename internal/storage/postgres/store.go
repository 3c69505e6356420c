package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/Farvi-13/Medium-Clone/internal/models"
	"github.com/Farvi-13/Medium-Clone/internal/storage"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// uniqueViolation is the Postgres SQLSTATE for unique constraint violations.
const uniqueViolation = "23505"

// Ensure Store satisfies the storage.UserStore interface at compile time.
var _ storage.UserStore = (*Store)(nil)

// Store provides Postgres-backed persistence for users.
type Store struct {
	pool *pgxpool.Pool
}

// NewUserStore connects a pool and brings the schema up to date.
func NewUserStore(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	return &Store{pool: pool}, nil
}

// Close releases database resources.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// migrate runs the embedded goose migrations over a transient database/sql
// handle; queries afterwards go through the pgx pool directly.
func migrate(ctx context.Context, pool *pgxpool.Pool) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set migration dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

const userColumns = `id, email, username, bio, image, created_at, updated_at`

// CreateUser inserts a new user row. A unique-constraint violation on email
// or username surfaces as storage.ErrAlreadyExists, so racing creations
// cannot both succeed even when both passed the workflow's pre-check.
func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	const query = `
	INSERT INTO users (email, username, password_hash, bio, image)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING ` + userColumns + `;`
	row := s.pool.QueryRow(ctx, query, user.Email, user.Username, user.PasswordHash, user.Bio, user.Image)
	return scanUser(row)
}

// UpdateUser overwrites the row identified by user.ID with the given
// fields. An empty PasswordHash keeps the stored hash, since callers load
// users without it.
func (s *Store) UpdateUser(ctx context.Context, user models.User) (models.User, error) {
	const query = `
	UPDATE users
	SET email = $2, username = $3,
	    password_hash = COALESCE(NULLIF($4, ''), password_hash),
	    bio = $5, image = $6, updated_at = NOW()
	WHERE id = $1
	RETURNING ` + userColumns + `;`
	row := s.pool.QueryRow(ctx, query, user.ID, user.Email, user.Username, user.PasswordHash, user.Bio, user.Image)
	return scanUser(row)
}

// FindByID fetches a user by primary key.
func (s *Store) FindByID(ctx context.Context, id int64) (models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1;`
	return scanUser(s.pool.QueryRow(ctx, query, id))
}

// FindByEmail fetches a user by email address, without the password hash.
func (s *Store) FindByEmail(ctx context.Context, email string) (models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email = $1;`
	return scanUser(s.pool.QueryRow(ctx, query, email))
}

// FindByUsername fetches a user by username, without the password hash.
func (s *Store) FindByUsername(ctx context.Context, username string) (models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE username = $1;`
	return scanUser(s.pool.QueryRow(ctx, query, username))
}

// FindByEmailWithPassword fetches a user by email including the stored
// password hash. Used only by the login path.
func (s *Store) FindByEmailWithPassword(ctx context.Context, email string) (models.User, error) {
	const query = `
	SELECT id, email, username, password_hash, bio, image, created_at, updated_at
	FROM users WHERE email = $1;`
	var user models.User
	err := s.pool.QueryRow(ctx, query, email).Scan(
		&user.ID, &user.Email, &user.Username, &user.PasswordHash,
		&user.Bio, &user.Image, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return models.User{}, mapError(err)
	}
	return user, nil
}

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID, &user.Email, &user.Username,
		&user.Bio, &user.Image, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return models.User{}, mapError(err)
	}
	return user, nil
}

func mapError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return storage.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return storage.ErrAlreadyExists
	}
	return err
}

// Ping verifies database connectivity, for health checks.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
