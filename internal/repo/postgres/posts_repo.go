package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/inkwellcms/inkwell/internal/domain/post"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostsRepo struct {
	pool *pgxpool.Pool
}

func NewPostsRepo(pool *pgxpool.Pool) *PostsRepo {
	return &PostsRepo{pool: pool}
}

const postSelect = `
	SELECT p.id, p.title, p.slug, p.content, p.excerpt, p.featured_image, p.url,
	       p.author_id, u.name, u.avatar, p.status, p.published_at, p.created_at, p.updated_at
	FROM blog_posts p
	LEFT JOIN users u ON p.author_id = u.id
`

func scanPost(row pgx.Row) (post.Post, error) {
	var p post.Post

	err := row.Scan(
		&p.ID,
		&p.Title,
		&p.Slug,
		&p.Content,
		&p.Excerpt,
		&p.FeaturedImage,
		&p.URL,
		&p.AuthorID,
		&p.AuthorName,
		&p.AuthorAvatar,
		&p.Status,
		&p.PublishedAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return post.Post{}, post.ErrNotFound
		}
		return post.Post{}, err
	}

	return p, nil
}

func (r *PostsRepo) List(ctx context.Context, filter post.ListFilter) ([]post.Post, error) {
	var conds []string
	var args []interface{}

	argsPosition := 1

	if filter.Status != nil {
		conds = append(conds, fmt.Sprintf("p.status = $%d", argsPosition))
		args = append(args, *filter.Status)
		argsPosition++
	}

	if filter.AuthorID != nil {
		conds = append(conds, fmt.Sprintf("p.author_id = $%d", argsPosition))
		args = append(args, *filter.AuthorID)
		argsPosition++
	}

	query := postSelect

	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	// newest first, id as tiebreaker for stable pagination
	query += fmt.Sprintf(" ORDER BY p.created_at DESC, p.id DESC LIMIT $%d OFFSET $%d", argsPosition, argsPosition+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	out := make([]post.Post, 0, filter.Limit)

	for rows.Next() {
		p, err := scanPost(rows)

		if err != nil {
			return nil, err
		}

		out = append(out, p)
	}

	return out, rows.Err()
}

func (r *PostsRepo) GetByID(ctx context.Context, id int64) (post.Post, error) {
	return scanPost(r.pool.QueryRow(ctx, postSelect+` WHERE p.id = $1`, id))
}

func (r *PostsRepo) GetBySlug(ctx context.Context, slug string) (post.Post, error) {
	return scanPost(r.pool.QueryRow(ctx, postSelect+` WHERE p.slug = $1`, slug))
}

func (r *PostsRepo) Create(ctx context.Context, authorID int64, req post.CreateRequest) (post.Post, error) {
	status := req.Status
	if status == "" {
		status = post.StatusDraft
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return post.Post{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var id int64

	err = tx.QueryRow(ctx,
		`INSERT INTO blog_posts (title, slug, content, excerpt, featured_image, url, author_id, status, published_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8,
		         CASE WHEN $8 = 'published' THEN NOW() ELSE NULL END)
		 RETURNING id`,
		req.Title, req.Slug, req.Content, req.Excerpt, req.FeaturedImage, req.URL, authorID, status,
	).Scan(&id)

	if err != nil {
		if isUniqueViolation(err) {
			return post.Post{}, post.ErrSlugTaken
		}
		return post.Post{}, err
	}

	if err := replacePostTerms(ctx, tx, id, req.CategoryIDs, req.TagIDs, true, true); err != nil {
		return post.Post{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return post.Post{}, err
	}

	return r.GetByID(ctx, id)
}

// buildPostUpdateSet renders the SET clause and positional args for a
// patch. Publishing stamps published_at only on the first transition;
// it must never be reset on later saves.
func buildPostUpdateSet(p post.Patch) (string, []interface{}) {
	var sets []string
	var args []interface{}

	set := func(column string, val interface{}) {
		args = append(args, val)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
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
	if p.Excerpt != nil {
		set("excerpt", *p.Excerpt)
	}
	if p.FeaturedImage != nil {
		set("featured_image", *p.FeaturedImage)
	}
	if p.URL != nil {
		set("url", *p.URL)
	}
	if p.Status != nil {
		set("status", *p.Status)

		if *p.Status == post.StatusPublished {
			sets = append(sets, "published_at = COALESCE(published_at, NOW())")
		}
	}

	sets = append(sets, "updated_at = NOW()")

	return strings.Join(sets, ", "), args
}

// Update applies the patch field by field. A transition into
// "published" stamps published_at only if it has never been set.
func (r *PostsRepo) Update(ctx context.Context, id int64, p post.Patch) (post.Post, error) {
	setClause, args := buildPostUpdateSet(p)

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return post.Post{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := fmt.Sprintf(
		`UPDATE blog_posts SET %s WHERE id = $%d RETURNING id`,
		setClause, len(args)+1,
	)
	args = append(args, id)

	var updatedID int64

	err = tx.QueryRow(ctx, query, args...).Scan(&updatedID)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return post.Post{}, post.ErrNotFound
		}
		if isUniqueViolation(err) {
			return post.Post{}, post.ErrSlugTaken
		}
		return post.Post{}, err
	}

	if err := replacePostTerms(ctx, tx, id, p.CategoryIDs, p.TagIDs, p.CategoryIDs != nil, p.TagIDs != nil); err != nil {
		return post.Post{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return post.Post{}, err
	}

	return r.GetByID(ctx, id)
}

func (r *PostsRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM blog_posts WHERE id = $1`, id)

	if err != nil {
		return err
	}

	// join rows and comments cascade at the schema level
	if tag.RowsAffected() == 0 {
		return post.ErrNotFound
	}

	return nil
}

func replacePostTerms(ctx context.Context, tx pgx.Tx, postID int64, categoryIDs, tagIDs []int64, replaceCategories, replaceTags bool) error {
	if replaceCategories {
		if _, err := tx.Exec(ctx, `DELETE FROM post_categories WHERE post_id = $1`, postID); err != nil {
			return err
		}
		for _, cid := range categoryIDs {
			if _, err := tx.Exec(ctx,
				`INSERT INTO post_categories (post_id, category_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
				postID, cid,
			); err != nil {
				return err
			}
		}
	}

	if replaceTags {
		if _, err := tx.Exec(ctx, `DELETE FROM post_tags WHERE post_id = $1`, postID); err != nil {
			return err
		}
		for _, tid := range tagIDs {
			if _, err := tx.Exec(ctx,
				`INSERT INTO post_tags (post_id, tag_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
				postID, tid,
			); err != nil {
				return err
			}
		}
	}

	return nil
}
