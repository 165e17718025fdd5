package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Dosada05/sports-registry/models"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrUserUsernameConflict = errors.New("user username conflict")
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	// CreateFirstAdmin вставляет пользователя, только если таблица пуста.
	// false без ошибки - пользователи уже есть.
	CreateFirstAdmin(ctx context.Context, user *models.User) (bool, error)
}

type postgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) UserRepository {
	return &postgresUserRepository{db: db}
}

func mapUserWriteError(err error) error {
	if pqErr, ok := pqError(err); ok && pqErr.Code == pqUniqueViolation && pqErr.Constraint == "users_username_key" {
		return ErrUserUsernameConflict
	}
	return err
}

func (r *postgresUserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (username, password_hash, role)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, user.Username, user.PasswordHash, user.Role).
		Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		return mapUserWriteError(err)
	}
	return nil
}

func (r *postgresUserRepository) getOne(ctx context.Context, where string, arg interface{}) (*models.User, error) {
	query := `SELECT id, username, password_hash, role, created_at FROM users WHERE ` + where

	var u models.User
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *postgresUserRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	return r.getOne(ctx, "id = $1", id)
}

func (r *postgresUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getOne(ctx, "username = $1", username)
}

func (r *postgresUserRepository) CreateFirstAdmin(ctx context.Context, user *models.User) (created bool, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() {
		if err != nil || !created {
			_ = tx.Rollback()
		}
	}()

	// Блокировка конфликтует сама с собой и с обычными INSERT:
	// два параллельных запроса не увидят пустую таблицу одновременно.
	if _, err = tx.ExecContext(ctx, `LOCK TABLE users IN SHARE ROW EXCLUSIVE MODE`); err != nil {
		return false, err
	}

	query := `
		INSERT INTO users (username, password_hash, role)
		SELECT $1, $2, $3
		WHERE NOT EXISTS (SELECT 1 FROM users)
		RETURNING id, created_at`
	err = tx.QueryRowContext(ctx, query, user.Username, user.PasswordHash, models.RoleAdmin).
		Scan(&user.ID, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, mapUserWriteError(err)
	}
	user.Role = models.RoleAdmin

	if err = tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}
