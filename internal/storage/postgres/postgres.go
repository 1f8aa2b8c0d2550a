package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"user_service/internal/config"
	"user_service/internal/models"
	"user_service/internal/storage"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolationCode = "23505"

type PostgresRepo struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, cfg *config.Config) (*PostgresRepo, error) {
	const op = "storage.postgres.New"

	dsn := dsn(cfg)

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse config: %w", op, err)
	}

	poolConfig.MaxConns = 10
	poolConfig.MinConns = 2
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = time.Minute * 30

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create pool: %w", op, err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%s: failed to ping database: %w", op, err)
	}

	return &PostgresRepo{pool: pool}, nil
}

// * SaveUser вставляет нового пользователя. Уникальность username и email
// обеспечивает констрейнт: гонка двух одинаковых регистраций даёт
// ErrUserExists у проигравшего, без предварительного SELECT.
func (r *PostgresRepo) SaveUser(ctx context.Context, username, email, passHash string) (int64, error) {
	const op = "storage.postgres.SaveUser"

	query := `
		INSERT INTO users (username, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id;
	`

	var id int64

	err := r.pool.QueryRow(ctx, query, username, email, passHash).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return 0, storage.ErrUserExists
		}

		return 0, fmt.Errorf("%s: failed to save user: %w", op, err)
	}

	return id, nil
}

func (r *PostgresRepo) UserByEmail(ctx context.Context, email string) (models.User, error) {
	query := `
		SELECT id, username, email, password_hash, is_admin, created_at
		FROM users
		WHERE email = $1;
	`

	return r.scanUser(r.pool.QueryRow(ctx, query, email))
}

func (r *PostgresRepo) UserByID(ctx context.Context, id int64) (models.User, error) {
	query := `
		SELECT id, username, email, password_hash, is_admin, created_at
		FROM users
		WHERE id = $1;
	`

	return r.scanUser(r.pool.QueryRow(ctx, query, id))
}

// * UpdateUser применяет частичное обновление одним UPDATE.
// created_at не трогаем никогда.
func (r *PostgresRepo) UpdateUser(ctx context.Context, id int64, upd models.UserUpdate) error {
	const op = "storage.postgres.UpdateUser"

	query := `
		UPDATE users
		SET username      = COALESCE($2::varchar, username),
		    email         = COALESCE($3::varchar, email),
		    password_hash = COALESCE($4::varchar, password_hash)
		WHERE id = $1;
	`

	tag, err := r.pool.Exec(ctx, query, id, upd.Username, upd.Email, upd.PassHash)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return storage.ErrUserExists
		}

		return fmt.Errorf("%s: failed to update user: %w", op, err)
	}

	if tag.RowsAffected() == 0 {
		return storage.ErrUserNotFound
	}

	return nil
}

func (r *PostgresRepo) DeleteUser(ctx context.Context, id int64) error {
	const op = "storage.postgres.DeleteUser"

	query := `DELETE FROM users WHERE id = $1;`

	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("%s: failed to delete user: %w", op, err)
	}

	if tag.RowsAffected() == 0 {
		return storage.ErrUserNotFound
	}

	return nil
}

func (r *PostgresRepo) ListUsers(ctx context.Context, offset, limit int) ([]models.User, error) {
	const op = "storage.postgres.ListUsers"

	query := `
		SELECT id, username, email, password_hash, is_admin, created_at
		FROM users
		ORDER BY id
		OFFSET $1 LIMIT $2;
	`

	rows, err := r.pool.Query(ctx, query, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to list users: %w", op, err)
	}
	defer rows.Close()

	var users []models.User

	for rows.Next() {
		var u models.User

		err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.PassHash, &u.IsAdmin, &u.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to scan user: %w", op, err)
		}

		users = append(users, u)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("%s: %w", op, rows.Err())
	}

	return users, nil
}

func (r *PostgresRepo) CountUsers(ctx context.Context) (int64, error) {
	const op = "storage.postgres.CountUsers"

	var total int64

	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users;`).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("%s: failed to count users: %w", op, err)
	}

	return total, nil
}

func (r *PostgresRepo) Close() {
	r.pool.Close()
}

func (r *PostgresRepo) scanUser(row pgx.Row) (models.User, error) {
	var u models.User

	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PassHash,
		&u.IsAdmin,
		&u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, storage.ErrUserNotFound
		}

		return models.User{}, err
	}

	return u, nil
}

// * dsn формирует конфигурацию базы данных.
func dsn(cfg *config.Config) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s database=%s sslmode=%s",
		cfg.Postgres.Host,
		cfg.Postgres.Port,
		cfg.Postgres.User,
		cfg.Postgres.Password,
		cfg.Postgres.DBName,
		cfg.Postgres.SSLMode,
	)
}
