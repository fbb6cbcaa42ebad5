package postgres

import (
	"context"
	"errors"

	"github.com/inkwellcms/inkwell/internal/domain/media"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MediaRepo struct {
	pool *pgxpool.Pool
}

func NewMediaRepo(pool *pgxpool.Pool) *MediaRepo {
	return &MediaRepo{pool: pool}
}

const mediaSelect = `
	SELECT m.id, m.filename, m.original_name, m.mime_type, m.size, m.path,
	       m.uploaded_by, u.name, m.created_at
	FROM media m
	LEFT JOIN users u ON m.uploaded_by = u.id
`

func scanMedia(row pgx.Row) (media.Media, error) {
	var m media.Media

	err := row.Scan(
		&m.ID,
		&m.Filename,
		&m.OriginalName,
		&m.MimeType,
		&m.Size,
		&m.Path,
		&m.UploadedBy,
		&m.UploadedByName,
		&m.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return media.Media{}, media.ErrNotFound
		}
		return media.Media{}, err
	}

	return m, nil
}

func (r *MediaRepo) List(ctx context.Context) ([]media.Media, error) {
	rows, err := r.pool.Query(ctx, mediaSelect+` ORDER BY m.created_at DESC`)

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	out := make([]media.Media, 0)

	for rows.Next() {
		m, err := scanMedia(rows)

		if err != nil {
			return nil, err
		}

		out = append(out, m)
	}

	return out, rows.Err()
}

func (r *MediaRepo) GetByID(ctx context.Context, id int64) (media.Media, error) {
	return scanMedia(r.pool.QueryRow(ctx, mediaSelect+` WHERE m.id = $1`, id))
}

func (r *MediaRepo) Create(ctx context.Context, uploadedBy int64, filename, originalName, mimeType string, size int64, path string) (media.Media, error) {
	var id int64

	err := r.pool.QueryRow(ctx,
		`INSERT INTO media (filename, original_name, mime_type, size, path, uploaded_by)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		filename, originalName, mimeType, size, path, uploadedBy,
	).Scan(&id)

	if err != nil {
		return media.Media{}, err
	}

	return r.GetByID(ctx, id)
}

func (r *MediaRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM media WHERE id = $1`, id)

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return media.ErrNotFound
	}

	return nil
}
