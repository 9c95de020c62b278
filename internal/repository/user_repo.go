package repository

import (
	"context"
	"database/sql"
	"fmt"

	"storefront/internal/domain"

	"github.com/sirupsen/logrus"
)

type postgresUserRepository struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewPostgresUserRepository(db *sql.DB, logger *logrus.Logger) domain.UserRepository {
	return &postgresUserRepository{
		db:  db,
		log: logger,
	}
}

func (r *postgresUserRepository) CreateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	query := `
        INSERT INTO users (email, first_name, last_name, password_hash)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at`

	r.log.Debugf("Repository: Attempting to create user with email: %s", user.Email)
	err := r.db.QueryRowContext(ctx, query, user.Email, user.FirstName, user.LastName, user.PasswordHash).Scan(
		&user.ID,
		&user.CreatedAt,
	)
	if err != nil {
		r.log.Warnf("Repository: Failed to create user '%s': %v", user.Email, err)
		return nil, translate(err, fmt.Sprintf("user with email '%s'", user.Email))
	}

	r.log.Infof("Repository: User created successfully with ID: %s, Email: %s", user.ID, user.Email)
	return user, nil
}

func (r *postgresUserRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getUser(ctx, "email", email)
}

func (r *postgresUserRepository) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getUser(ctx, "id", id)
}

func (r *postgresUserRepository) getUser(ctx context.Context, column, value string) (*domain.User, error) {
	query := `
        SELECT id, email, first_name, last_name, password_hash, created_at
        FROM users
        WHERE ` + column + ` = $1`

	user := &domain.User{}
	err := r.db.QueryRowContext(ctx, query, value).Scan(
		&user.ID,
		&user.Email,
		&user.FirstName,
		&user.LastName,
		&user.PasswordHash,
		&user.CreatedAt,
	)
	if err != nil {
		r.log.Warnf("Repository: Failed to get user by %s %s: %v", column, value, err)
		return nil, translate(err, fmt.Sprintf("user with %s %s", column, value))
	}
	return user, nil
}
