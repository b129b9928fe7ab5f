package repositories

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/turtacn/VitaQuote/internal/domain/user"
	"github.com/turtacn/VitaQuote/internal/infrastructure/database/postgres"
	"github.com/turtacn/VitaQuote/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/VitaQuote/pkg/errors"
)

// pgUniqueViolation is the SQLSTATE for unique constraint violations.
const pgUniqueViolation = "23505"

type postgresUserRepo struct {
	conn     *postgres.Connection
	log      logging.Logger
	executor queryExecutor
}

// NewPostgresUserRepo builds the operator account repository.
func NewPostgresUserRepo(conn *postgres.Connection, log logging.Logger) user.Repository {
	return &postgresUserRepo{
		conn:     conn,
		log:      log,
		executor: conn.DB(),
	}
}

func (r *postgresUserRepo) Create(ctx context.Context, u *user.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	const query = `
		INSERT INTO users (id, username, display_name, password_hash, active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`
	err := r.executor.QueryRowContext(ctx, query,
		u.ID, u.Username, u.DisplayName, u.PasswordHash, u.Active,
	).Scan(&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if pgErr, ok := err.(*pgconn.PgError); ok && pgErr.Code == pgUniqueViolation {
			return errors.Wrap(err, errors.ErrCodeConflict, "username already exists")
		}
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to create user")
	}
	return nil
}

const selectUserColumns = `
	SELECT id, username, display_name, password_hash, active,
	       last_login_at, created_at, updated_at
	FROM users
`

func (r *postgresUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	row := r.executor.QueryRowContext(ctx, selectUserColumns+` WHERE id = $1`, id)
	return scanUser(row)
}

func (r *postgresUserRepo) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	row := r.executor.QueryRowContext(ctx, selectUserColumns+` WHERE username = $1`, username)
	return scanUser(row)
}

func (r *postgresUserRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID) error {
	const query = `UPDATE users SET last_login_at = NOW(), updated_at = NOW() WHERE id = $1`
	res, err := r.executor.ExecContext(ctx, query, id)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to update last login")
	}
	return requireOneRow(res)
}

func (r *postgresUserRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	const query = `UPDATE users SET active = $2, updated_at = NOW() WHERE id = $1`
	res, err := r.executor.ExecContext(ctx, query, id, active)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to update user state")
	}
	return requireOneRow(res)
}

func scanUser(row *sql.Row) (*user.User, error) {
	u := &user.User{}
	var lastLogin sql.NullTime
	err := row.Scan(
		&u.ID, &u.Username, &u.DisplayName, &u.PasswordHash, &u.Active,
		&lastLogin, &u.CreatedAt, &u.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, errors.New(errors.ErrCodeUserNotFound, "user not found")
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan user")
	}
	if lastLogin.Valid {
		u.LastLoginAt = &lastLogin.Time
	}
	return u, nil
}

func requireOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to read rows affected")
	}
	if n == 0 {
		return errors.New(errors.ErrCodeUserNotFound, "user not found")
	}
	return nil
}
