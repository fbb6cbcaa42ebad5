package postgres

import (
	"context"
	"errors"

	"github.com/inkwellcms/inkwell/internal/domain/setting"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SettingsRepo struct {
	pool *pgxpool.Pool
}

func NewSettingsRepo(pool *pgxpool.Pool) *SettingsRepo {
	return &SettingsRepo{pool: pool}
}

func (r *SettingsRepo) GetAll(ctx context.Context) ([]setting.Setting, error) {
	rows, err := r.pool.Query(ctx, `SELECT key, value, type, updated_at FROM settings ORDER BY key`)

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	out := make([]setting.Setting, 0)

	for rows.Next() {
		var key, text string
		var kind setting.Kind
		var s setting.Setting

		if err := rows.Scan(&key, &text, &kind, &s.UpdatedAt); err != nil {
			return nil, err
		}

		s.Key = key
		s.Value = setting.Decode(text, kind)
		out = append(out, s)
	}

	return out, rows.Err()
}

func (r *SettingsRepo) Get(ctx context.Context, key string) (setting.Setting, error) {
	var text string
	var kind setting.Kind
	var s setting.Setting

	err := r.pool.QueryRow(ctx,
		`SELECT key, value, type, updated_at FROM settings WHERE key = $1`, key,
	).Scan(&s.Key, &text, &kind, &s.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return setting.Setting{}, setting.ErrNotFound
		}
		return setting.Setting{}, err
	}

	s.Value = setting.Decode(text, kind)
	return s, nil
}

// UpsertMany writes the whole batch in one transaction so a failure
// partway leaves no key updated.
func (r *SettingsRepo) UpsertMany(ctx context.Context, values map[string]setting.Value) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})

	if err != nil {
		return err
	}

	defer func() { _ = tx.Rollback(ctx) }()

	for key, val := range values {
		_, err = tx.Exec(ctx,
			`INSERT INTO settings (key, value, type, updated_at)
			 VALUES ($1, $2, $3, NOW())
			 ON CONFLICT (key) DO UPDATE SET value = $2, type = $3, updated_at = NOW()`,
			key, val.EncodeText(), string(val.Kind),
		)

		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}
