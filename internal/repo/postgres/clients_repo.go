package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/inkwellcms/inkwell/internal/domain/client"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ClientsRepo struct {
	pool *pgxpool.Pool
}

func NewClientsRepo(pool *pgxpool.Pool) *ClientsRepo {
	return &ClientsRepo{pool: pool}
}

const clientColumns = `id, name, email, phone, company, address, notes, created_by, created_at, updated_at`

func scanClient(row pgx.Row) (client.Client, error) {
	var c client.Client

	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.Email,
		&c.Phone,
		&c.Company,
		&c.Address,
		&c.Notes,
		&c.CreatedBy,
		&c.CreatedAt,
		&c.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return client.Client{}, client.ErrNotFound
		}
		return client.Client{}, err
	}

	return c, nil
}

func (r *ClientsRepo) List(ctx context.Context) ([]client.Client, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+clientColumns+` FROM clients ORDER BY created_at DESC`,
	)

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	out := make([]client.Client, 0)

	for rows.Next() {
		c, err := scanClient(rows)

		if err != nil {
			return nil, err
		}

		out = append(out, c)
	}

	return out, rows.Err()
}

func (r *ClientsRepo) GetByID(ctx context.Context, id int64) (client.Client, error) {
	return scanClient(r.pool.QueryRow(ctx,
		`SELECT `+clientColumns+` FROM clients WHERE id = $1`, id,
	))
}

func (r *ClientsRepo) Create(ctx context.Context, createdBy int64, req client.CreateRequest) (client.Client, error) {
	c, err := scanClient(r.pool.QueryRow(ctx,
		`INSERT INTO clients (name, email, phone, company, address, notes, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+clientColumns,
		req.Name, req.Email, req.Phone, req.Company, req.Address, req.Notes, createdBy,
	))

	if err != nil {
		if isUniqueViolation(err) {
			return client.Client{}, client.ErrEmailTaken
		}
		return client.Client{}, err
	}

	return c, nil
}

func (r *ClientsRepo) Update(ctx context.Context, id int64, p client.Patch) (client.Client, error) {
	var sets []string
	var args []interface{}

	argsPosition := 1

	set := func(column string, val interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, argsPosition))
		args = append(args, val)
		argsPosition++
	}

	if p.Name != nil {
		set("name", *p.Name)
	}
	if p.Email != nil {
		set("email", *p.Email)
	}
	if p.Phone != nil {
		set("phone", *p.Phone)
	}
	if p.Company != nil {
		set("company", *p.Company)
	}
	if p.Address != nil {
		set("address", *p.Address)
	}
	if p.Notes != nil {
		set("notes", *p.Notes)
	}

	sets = append(sets, "updated_at = NOW()")

	query := fmt.Sprintf(
		`UPDATE clients SET %s WHERE id = $%d RETURNING `+clientColumns,
		strings.Join(sets, ", "), argsPosition,
	)
	args = append(args, id)

	c, err := scanClient(r.pool.QueryRow(ctx, query, args...))

	if err != nil {
		if isUniqueViolation(err) {
			return client.Client{}, client.ErrEmailTaken
		}
		return client.Client{}, err
	}

	return c, nil
}

func (r *ClientsRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM clients WHERE id = $1`, id)

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return client.ErrNotFound
	}

	return nil
}
