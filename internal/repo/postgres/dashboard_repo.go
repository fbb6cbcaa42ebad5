package postgres

import (
	"context"

	"github.com/inkwellcms/inkwell/internal/domain/post"
	"github.com/inkwellcms/inkwell/internal/domain/user"
	"github.com/inkwellcms/inkwell/internal/observability"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Stats is the dashboard summary payload: a fixed battery of counts
// plus the five most recent posts and users.
type Stats struct {
	TotalPosts     int         `json:"totalPosts"`
	PublishedPosts int         `json:"publishedPosts"`
	DraftPosts     int         `json:"draftPosts"`
	TotalPages     int         `json:"totalPages"`
	TotalUsers     int         `json:"totalUsers"`
	TotalMedia     int         `json:"totalMedia"`
	RecentPosts    []post.Post `json:"recentPosts"`
	RecentUsers    []user.User `json:"recentUsers"`
}

type DashboardRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

// prom may be nil, the query battery then runs unobserved.
func NewDashboardRepo(pool *pgxpool.Pool, prom *observability.Prom) *DashboardRepo {
	return &DashboardRepo{pool: pool, prom: prom}
}

func (r *DashboardRepo) Stats(ctx context.Context) (Stats, error) {
	var s Stats

	err := r.observe("dashboard_stats", func() error {
		return r.load(ctx, &s)
	})

	if err != nil {
		return Stats{}, err
	}

	return s, nil
}

func (r *DashboardRepo) observe(op string, fn func() error) error {
	if r.prom == nil {
		return fn()
	}

	return r.prom.ObserveDB(op, fn)
}

func (r *DashboardRepo) load(ctx context.Context, s *Stats) error {
	counts := []struct {
		query string
		dest  *int
	}{
		{`SELECT COUNT(*) FROM blog_posts`, &s.TotalPosts},
		{`SELECT COUNT(*) FROM blog_posts WHERE status = 'published'`, &s.PublishedPosts},
		{`SELECT COUNT(*) FROM blog_posts WHERE status = 'draft'`, &s.DraftPosts},
		{`SELECT COUNT(*) FROM pages`, &s.TotalPages},
		{`SELECT COUNT(*) FROM users`, &s.TotalUsers},
		{`SELECT COUNT(*) FROM media`, &s.TotalMedia},
	}

	for _, c := range counts {
		if err := r.pool.QueryRow(ctx, c.query).Scan(c.dest); err != nil {
			return err
		}
	}

	rows, err := r.pool.Query(ctx, postSelect+` ORDER BY p.created_at DESC LIMIT 5`)

	if err != nil {
		return err
	}

	defer rows.Close()

	s.RecentPosts = make([]post.Post, 0, 5)

	for rows.Next() {
		p, err := scanPost(rows)

		if err != nil {
			return err
		}

		s.RecentPosts = append(s.RecentPosts, p)
	}

	if err := rows.Err(); err != nil {
		return err
	}

	userRows, err := r.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at DESC LIMIT 5`,
	)

	if err != nil {
		return err
	}

	defer userRows.Close()

	s.RecentUsers = make([]user.User, 0, 5)

	for userRows.Next() {
		u, err := scanUser(userRows)

		if err != nil {
			return err
		}

		s.RecentUsers = append(s.RecentUsers, u)
	}

	return userRows.Err()
}
