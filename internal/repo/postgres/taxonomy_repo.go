package postgres

import (
	"context"

	"github.com/inkwellcms/inkwell/internal/domain/taxonomy"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TaxonomyRepo struct {
	pool *pgxpool.Pool
}

func NewTaxonomyRepo(pool *pgxpool.Pool) *TaxonomyRepo {
	return &TaxonomyRepo{pool: pool}
}

func (r *TaxonomyRepo) ListCategories(ctx context.Context) ([]taxonomy.Category, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, slug, description, created_at FROM blog_categories ORDER BY name`,
	)

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	out := make([]taxonomy.Category, 0)

	for rows.Next() {
		var c taxonomy.Category

		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.CreatedAt); err != nil {
			return nil, err
		}

		out = append(out, c)
	}

	return out, rows.Err()
}

func (r *TaxonomyRepo) CreateCategory(ctx context.Context, req taxonomy.CreateCategoryRequest) (taxonomy.Category, error) {
	var c taxonomy.Category

	err := r.pool.QueryRow(ctx,
		`INSERT INTO blog_categories (name, slug, description)
		 VALUES ($1, $2, $3)
		 RETURNING id, name, slug, description, created_at`,
		req.Name, req.Slug, req.Description,
	).Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.CreatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return taxonomy.Category{}, taxonomy.ErrSlugTaken
		}
		return taxonomy.Category{}, err
	}

	return c, nil
}

func (r *TaxonomyRepo) DeleteCategory(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM blog_categories WHERE id = $1`, id)

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return taxonomy.ErrNotFound
	}

	return nil
}

func (r *TaxonomyRepo) ListTags(ctx context.Context) ([]taxonomy.Tag, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, slug, created_at FROM blog_tags ORDER BY name`,
	)

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	out := make([]taxonomy.Tag, 0)

	for rows.Next() {
		var t taxonomy.Tag

		if err := rows.Scan(&t.ID, &t.Name, &t.Slug, &t.CreatedAt); err != nil {
			return nil, err
		}

		out = append(out, t)
	}

	return out, rows.Err()
}

func (r *TaxonomyRepo) CreateTag(ctx context.Context, req taxonomy.CreateTagRequest) (taxonomy.Tag, error) {
	var t taxonomy.Tag

	err := r.pool.QueryRow(ctx,
		`INSERT INTO blog_tags (name, slug)
		 VALUES ($1, $2)
		 RETURNING id, name, slug, created_at`,
		req.Name, req.Slug,
	).Scan(&t.ID, &t.Name, &t.Slug, &t.CreatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return taxonomy.Tag{}, taxonomy.ErrSlugTaken
		}
		return taxonomy.Tag{}, err
	}

	return t, nil
}

func (r *TaxonomyRepo) DeleteTag(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM blog_tags WHERE id = $1`, id)

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return taxonomy.ErrNotFound
	}

	return nil
}

func (r *TaxonomyRepo) CategoriesForPost(ctx context.Context, postID int64) ([]taxonomy.Category, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT c.id, c.name, c.slug, c.description, c.created_at
		 FROM blog_categories c
		 JOIN post_categories pc ON pc.category_id = c.id
		 WHERE pc.post_id = $1
		 ORDER BY c.name`,
		postID,
	)

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	out := make([]taxonomy.Category, 0)

	for rows.Next() {
		var c taxonomy.Category

		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.CreatedAt); err != nil {
			return nil, err
		}

		out = append(out, c)
	}

	return out, rows.Err()
}

func (r *TaxonomyRepo) TagsForPost(ctx context.Context, postID int64) ([]taxonomy.Tag, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT t.id, t.name, t.slug, t.created_at
		 FROM blog_tags t
		 JOIN post_tags pt ON pt.tag_id = t.id
		 WHERE pt.post_id = $1
		 ORDER BY t.name`,
		postID,
	)

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	out := make([]taxonomy.Tag, 0)

	for rows.Next() {
		var t taxonomy.Tag

		if err := rows.Scan(&t.ID, &t.Name, &t.Slug, &t.CreatedAt); err != nil {
			return nil, err
		}

		out = append(out, t)
	}

	return out, rows.Err()
}
