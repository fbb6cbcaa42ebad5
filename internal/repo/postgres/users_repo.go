package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/inkwellcms/inkwell/internal/domain/user"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrEmailAlreadyUsed = errors.New("email already in use")

type UsersRepo struct {
	pool *pgxpool.Pool
}

func NewUsersRepo(pool *pgxpool.Pool) *UsersRepo {
	return &UsersRepo{pool: pool}
}

const userColumns = `id, email, password_hash, name, role, avatar, last_login, created_at, updated_at`

func scanUser(row pgx.Row) (user.User, error) {
	var u user.User

	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.Name,
		&u.Role,
		&u.Avatar,
		&u.LastLogin,
		&u.CreatedAt,
		&u.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}

		return user.User{}, err
	}
	return u, nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return scanUser(r.pool.QueryRow(
		ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`,
		email,
	))
}

func (r *UsersRepo) GetByID(ctx context.Context, id int64) (user.User, error) {
	return scanUser(r.pool.QueryRow(
		ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`,
		id,
	))
}

func (r *UsersRepo) List(ctx context.Context) ([]user.User, error) {
	rows, err := r.pool.Query(
		ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at DESC`,
	)

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	out := make([]user.User, 0)

	for rows.Next() {
		u, err := scanUser(rows)

		if err != nil {
			return nil, err
		}

		out = append(out, u)
	}

	return out, rows.Err()
}

func (r *UsersRepo) Create(ctx context.Context, email, passwordHash, name, role string) (user.User, error) {
	u, err := scanUser(r.pool.QueryRow(
		ctx,
		`INSERT INTO users (email, password_hash, name, role)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+userColumns,
		email, passwordHash, name, role,
	))

	if err != nil {
		if isUniqueViolation(err) {
			return user.User{}, ErrEmailAlreadyUsed
		}
		return user.User{}, err
	}

	return u, nil
}

// Update applies only the fields present on the patch, always bumping
// updated_at.
func (r *UsersRepo) Update(ctx context.Context, id int64, p user.Patch) (user.User, error) {
	var sets []string
	var args []interface{}

	argsPosition := 1

	if p.Name != nil {
		sets = append(sets, fmt.Sprintf("name = $%d", argsPosition))
		args = append(args, *p.Name)
		argsPosition++
	}

	if p.Role != nil {
		sets = append(sets, fmt.Sprintf("role = $%d", argsPosition))
		args = append(args, *p.Role)
		argsPosition++
	}

	if p.Avatar != nil {
		sets = append(sets, fmt.Sprintf("avatar = $%d", argsPosition))
		args = append(args, *p.Avatar)
		argsPosition++
	}

	sets = append(sets, "updated_at = NOW()")

	query := fmt.Sprintf(
		`UPDATE users SET %s WHERE id = $%d RETURNING `+userColumns,
		strings.Join(sets, ", "), argsPosition,
	)
	args = append(args, id)

	return scanUser(r.pool.QueryRow(ctx, query, args...))
}

func (r *UsersRepo) TouchLastLogin(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `UPDATE users SET last_login = NOW() WHERE id = $1`, id)
	return err
}

func (r *UsersRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return user.ErrNotFound
	}

	return nil
}
