package postgres

import (
	"context"
	"errors"

	"github.com/inkwellcms/inkwell/internal/domain/comment"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CommentsRepo struct {
	pool *pgxpool.Pool
}

func NewCommentsRepo(pool *pgxpool.Pool) *CommentsRepo {
	return &CommentsRepo{pool: pool}
}

const commentColumns = `id, post_id, author_name, author_email, content, status, created_at`

func scanComment(row pgx.Row) (comment.Comment, error) {
	var c comment.Comment

	err := row.Scan(
		&c.ID,
		&c.PostID,
		&c.AuthorName,
		&c.AuthorEmail,
		&c.Content,
		&c.Status,
		&c.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return comment.Comment{}, comment.ErrNotFound
		}
		return comment.Comment{}, err
	}

	return c, nil
}

// ListForPost returns comments newest first, optionally limited to one
// moderation status.
func (r *CommentsRepo) ListForPost(ctx context.Context, postID int64, status *string) ([]comment.Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM comments WHERE post_id = $1`
	args := []interface{}{postID}

	if status != nil {
		query += ` AND status = $2`
		args = append(args, *status)
	}

	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	out := make([]comment.Comment, 0)

	for rows.Next() {
		c, err := scanComment(rows)

		if err != nil {
			return nil, err
		}

		out = append(out, c)
	}

	return out, rows.Err()
}

func (r *CommentsRepo) Create(ctx context.Context, postID int64, req comment.CreateRequest) (comment.Comment, error) {
	return scanComment(r.pool.QueryRow(ctx,
		`INSERT INTO comments (post_id, author_name, author_email, content, status)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+commentColumns,
		postID, req.AuthorName, req.AuthorEmail, req.Content, comment.StatusPending,
	))
}

func (r *CommentsRepo) SetStatus(ctx context.Context, id int64, status string) (comment.Comment, error) {
	return scanComment(r.pool.QueryRow(ctx,
		`UPDATE comments SET status = $2 WHERE id = $1 RETURNING `+commentColumns,
		id, status,
	))
}

func (r *CommentsRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return comment.ErrNotFound
	}

	return nil
}
