package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinica/clinica/internal/platform/db"
	"github.com/clinica/clinica/internal/platform/httperr"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

func (r *repoPG) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const accCols = `id, email, name, password_hash, role, active, created_at`

func scanAccount(row pgx.Row) (*Account, error) {
	var a Account
	err := row.Scan(&a.ID, &a.Email, &a.Name, &a.PasswordHash, &a.Role, &a.Active, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, httperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan account: %w", err)
	}
	return &a, nil
}

func (r *repoPG) Create(ctx context.Context, acc *Account) error {
	acc.ID = uuid.New()
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO accounts (id, email, name, password_hash, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, active`,
		acc.ID, acc.Email, acc.Name, acc.PasswordHash, acc.Role,
	).Scan(&acc.CreatedAt, &acc.Active)
	if isUniqueViolation(err) {
		return fmt.Errorf("email %s: %w", acc.Email, httperr.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	return scanAccount(r.conn(ctx).QueryRow(ctx,
		`SELECT `+accCols+` FROM accounts WHERE id = $1 AND active = TRUE`, id))
}

func (r *repoPG) GetByEmail(ctx context.Context, email string) (*Account, error) {
	return scanAccount(r.conn(ctx).QueryRow(ctx,
		`SELECT `+accCols+` FROM accounts WHERE LOWER(email) = LOWER($1) AND active = TRUE`, email))
}

func (r *repoPG) List(ctx context.Context) ([]*Account, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+accCols+` FROM accounts WHERE active = TRUE ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accs []*Account
	for rows.Next() {
		var a Account
		if err := rows.Scan(&a.ID, &a.Email, &a.Name, &a.PasswordHash, &a.Role, &a.Active, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accs = append(accs, &a)
	}
	return accs, rows.Err()
}

func (r *repoPG) EmailInUseByOther(ctx context.Context, email string, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM accounts
			WHERE LOWER(email) = LOWER($1) AND id <> $2 AND active = TRUE
		)`, email, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check email in use: %w", err)
	}
	return exists, nil
}

func (r *repoPG) UpdateProfile(ctx context.Context, id uuid.UUID, email, name *string) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE accounts SET
			email = COALESCE($2, email),
			name = COALESCE($3, name)
		WHERE id = $1 AND active = TRUE`,
		id, email, name)
	if isUniqueViolation(err) {
		return fmt.Errorf("email already registered: %w", httperr.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return httperr.ErrNotFound
	}
	return nil
}

func (r *repoPG) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE accounts SET password_hash = $2 WHERE id = $1 AND active = TRUE`, id, hash)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return httperr.ErrNotFound
	}
	return nil
}

func (r *repoPG) UpdateRole(ctx context.Context, id uuid.UUID, role string) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE accounts SET role = $2 WHERE id = $1 AND active = TRUE`, id, role)
	if err != nil {
		return fmt.Errorf("update role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return httperr.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
