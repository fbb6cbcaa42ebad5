package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/inkwellcms/inkwell/internal/domain/page"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PagesRepo struct {
	pool *pgxpool.Pool
}

func NewPagesRepo(pool *pgxpool.Pool) *PagesRepo {
	return &PagesRepo{pool: pool}
}

const pageSelect = `
	SELECT p.id, p.title, p.slug, p.content, p.template, p.status,
	       p.author_id, u.name, p.created_at, p.updated_at
	FROM pages p
	LEFT JOIN users u ON p.author_id = u.id
`

func scanPage(row pgx.Row) (page.Page, error) {
	var pg page.Page

	err := row.Scan(
		&pg.ID,
		&pg.Title,
		&pg.Slug,
		&pg.Content,
		&pg.Template,
		&pg.Status,
		&pg.AuthorID,
		&pg.AuthorName,
		&pg.CreatedAt,
		&pg.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return page.Page{}, page.ErrNotFound
		}
		return page.Page{}, err
	}

	return pg, nil
}

func (r *PagesRepo) List(ctx context.Context) ([]page.Page, error) {
	rows, err := r.pool.Query(ctx, pageSelect+` ORDER BY p.created_at DESC`)

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	out := make([]page.Page, 0)

	for rows.Next() {
		pg, err := scanPage(rows)

		if err != nil {
			return nil, err
		}

		out = append(out, pg)
	}

	return out, rows.Err()
}

func (r *PagesRepo) GetByID(ctx context.Context, id int64) (page.Page, error) {
	return scanPage(r.pool.QueryRow(ctx, pageSelect+` WHERE p.id = $1`, id))
}

func (r *PagesRepo) GetBySlug(ctx context.Context, slug string) (page.Page, error) {
	return scanPage(r.pool.QueryRow(ctx, pageSelect+` WHERE p.slug = $1`, slug))
}

func (r *PagesRepo) Create(ctx context.Context, authorID int64, req page.CreateRequest) (page.Page, error) {
	status := req.Status
	if status == "" {
		status = "draft"
	}

	template := req.Template
	if template == "" {
		template = "default"
	}

	var id int64

	err := r.pool.QueryRow(ctx,
		`INSERT INTO pages (title, slug, content, template, status, author_id)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		req.Title, req.Slug, req.Content, template, status, authorID,
	).Scan(&id)

	if err != nil {
		if isUniqueViolation(err) {
			return page.Page{}, page.ErrSlugTaken
		}
		return page.Page{}, err
	}

	return r.GetByID(ctx, id)
}

func (r *PagesRepo) Update(ctx context.Context, id int64, p page.Patch) (page.Page, error) {
	var sets []string
	var args []interface{}

	argsPosition := 1

	set := func(column string, val interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, argsPosition))
		args = append(args, val)
		argsPosition++
	}

	if p.Title != nil {
		set("title", *p.Title)
	}
	if p.Slug != nil {
		set("slug", *p.Slug)
	}
	if p.Content != nil {
		set("content", *p.Content)
	}
	if p.Template != nil {
		set("template", *p.Template)
	}
	if p.Status != nil {
		set("status", *p.Status)
	}

	sets = append(sets, "updated_at = NOW()")

	query := fmt.Sprintf(
		`UPDATE pages SET %s WHERE id = $%d RETURNING id`,
		strings.Join(sets, ", "), argsPosition,
	)
	args = append(args, id)

	var updatedID int64

	err := r.pool.QueryRow(ctx, query, args...).Scan(&updatedID)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return page.Page{}, page.ErrNotFound
		}
		if isUniqueViolation(err) {
			return page.Page{}, page.ErrSlugTaken
		}
		return page.Page{}, err
	}

	return r.GetByID(ctx, id)
}

func (r *PagesRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM pages WHERE id = $1`, id)

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return page.ErrNotFound
	}

	return nil
}
