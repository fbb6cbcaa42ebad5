package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Author/uploader/creator references are SET NULL on user deletion so
// content outlives its author; join tables and comments cascade with
// their post.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		email VARCHAR(255) UNIQUE NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		name VARCHAR(255) NOT NULL,
		role VARCHAR(50) NOT NULL DEFAULT 'editor',
		avatar VARCHAR(255),
		last_login TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS blog_posts (
		id BIGSERIAL PRIMARY KEY,
		title VARCHAR(255) NOT NULL,
		slug VARCHAR(255) UNIQUE NOT NULL,
		content TEXT NOT NULL DEFAULT '',
		excerpt TEXT NOT NULL DEFAULT '',
		featured_image VARCHAR(255),
		url VARCHAR(500),
		author_id BIGINT REFERENCES users(id) ON DELETE SET NULL,
		status VARCHAR(50) NOT NULL DEFAULT 'draft',
		published_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS blog_categories (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		slug VARCHAR(255) UNIQUE NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS blog_tags (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		slug VARCHAR(255) UNIQUE NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS post_categories (
		post_id BIGINT REFERENCES blog_posts(id) ON DELETE CASCADE,
		category_id BIGINT REFERENCES blog_categories(id) ON DELETE CASCADE,
		PRIMARY KEY (post_id, category_id)
	)`,
	`CREATE TABLE IF NOT EXISTS post_tags (
		post_id BIGINT REFERENCES blog_posts(id) ON DELETE CASCADE,
		tag_id BIGINT REFERENCES blog_tags(id) ON DELETE CASCADE,
		PRIMARY KEY (post_id, tag_id)
	)`,
	`CREATE TABLE IF NOT EXISTS pages (
		id BIGSERIAL PRIMARY KEY,
		title VARCHAR(255) NOT NULL,
		slug VARCHAR(255) UNIQUE NOT NULL,
		content TEXT NOT NULL DEFAULT '',
		template VARCHAR(100) NOT NULL DEFAULT 'default',
		status VARCHAR(50) NOT NULL DEFAULT 'draft',
		author_id BIGINT REFERENCES users(id) ON DELETE SET NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS media (
		id BIGSERIAL PRIMARY KEY,
		filename VARCHAR(255) NOT NULL,
		original_name VARCHAR(255) NOT NULL,
		mime_type VARCHAR(100) NOT NULL DEFAULT '',
		size BIGINT NOT NULL DEFAULT 0,
		path VARCHAR(500) NOT NULL,
		uploaded_by BIGINT REFERENCES users(id) ON DELETE SET NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS settings (
		id BIGSERIAL PRIMARY KEY,
		key VARCHAR(255) UNIQUE NOT NULL,
		value TEXT NOT NULL DEFAULT '',
		type VARCHAR(50) NOT NULL DEFAULT 'string',
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS comments (
		id BIGSERIAL PRIMARY KEY,
		post_id BIGINT REFERENCES blog_posts(id) ON DELETE CASCADE,
		author_name VARCHAR(255) NOT NULL,
		author_email VARCHAR(255) NOT NULL,
		content TEXT NOT NULL,
		status VARCHAR(50) NOT NULL DEFAULT 'pending',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS clients (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		email VARCHAR(255) UNIQUE NOT NULL,
		phone VARCHAR(50),
		company VARCHAR(255),
		address TEXT,
		notes TEXT,
		created_by BIGINT REFERENCES users(id) ON DELETE SET NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id UUID PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		token_hash VARCHAR(64) NOT NULL,
		expires_at TIMESTAMPTZ NOT NULL,
		revoked_at TIMESTAMPTZ,
		replaced_by UUID,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schemaStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
