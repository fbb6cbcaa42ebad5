package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/inkwellcms/inkwell/internal/domain/post"
	"github.com/inkwellcms/inkwell/internal/domain/taxonomy"
	"github.com/inkwellcms/inkwell/internal/domain/user"
	"github.com/inkwellcms/inkwell/internal/http/handlers"
	"github.com/inkwellcms/inkwell/internal/http/middlewares"
)

// Make sure Gin does not spam the console during the test

func init() {
	gin.SetMode(gin.TestMode)
}

// Fake repository implementations of the handlers.PostsStore interface

type fakePostsRepo struct {
	listFn      func(ctx context.Context, filter post.ListFilter) ([]post.Post, error)
	getByIDFn   func(ctx context.Context, id int64) (post.Post, error)
	getBySlugFn func(ctx context.Context, slug string) (post.Post, error)
	createFn    func(ctx context.Context, authorID int64, req post.CreateRequest) (post.Post, error)
	updateFn    func(ctx context.Context, id int64, p post.Patch) (post.Post, error)
	deleteFn    func(ctx context.Context, id int64) error
}

func (f *fakePostsRepo) List(ctx context.Context, filter post.ListFilter) ([]post.Post, error) {
	if f.listFn != nil {
		return f.listFn(ctx, filter)
	}

	return []post.Post{}, nil
}

func (f *fakePostsRepo) GetByID(ctx context.Context, id int64) (post.Post, error) {
	if f.getByIDFn != nil {
		return f.getByIDFn(ctx, id)
	}

	return post.Post{}, post.ErrNotFound
}

func (f *fakePostsRepo) GetBySlug(ctx context.Context, slug string) (post.Post, error) {
	if f.getBySlugFn != nil {
		return f.getBySlugFn(ctx, slug)
	}

	return post.Post{}, post.ErrNotFound
}

func (f *fakePostsRepo) Create(ctx context.Context, authorID int64, req post.CreateRequest) (post.Post, error) {
	if f.createFn != nil {
		return f.createFn(ctx, authorID, req)
	}

	return post.Post{}, nil
}

func (f *fakePostsRepo) Update(ctx context.Context, id int64, p post.Patch) (post.Post, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, id, p)
	}

	return post.Post{}, nil
}

func (f *fakePostsRepo) Delete(ctx context.Context, id int64) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}

	return nil
}

type fakeTermsRepo struct {
	categoriesFn func(ctx context.Context, postID int64) ([]taxonomy.Category, error)
	tagsFn       func(ctx context.Context, postID int64) ([]taxonomy.Tag, error)
}

func (f *fakeTermsRepo) CategoriesForPost(ctx context.Context, postID int64) ([]taxonomy.Category, error) {
	if f.categoriesFn != nil {
		return f.categoriesFn(ctx, postID)
	}

	return []taxonomy.Category{}, nil
}

func (f *fakeTermsRepo) TagsForPost(ctx context.Context, postID int64) ([]taxonomy.Tag, error) {
	if f.tagsFn != nil {
		return f.tagsFn(ctx, postID)
	}

	return []taxonomy.Tag{}, nil
}

// small helper which returns a gin engine mounting one handler per test,
// with an optional identity injected the way the auth middleware would

func setupRouter(method, path string, ident *middlewares.Identity, h gin.HandlerFunc) *gin.Engine {
	r := gin.New()

	if ident != nil {
		r.Use(func(c *gin.Context) {
			middlewares.SetIdentity(c, *ident)
			c.Next()
		})
	}

	r.Handle(method, path, h)

	return r
}

func editorIdentity(id int64) *middlewares.Identity {
	return &middlewares.Identity{ID: id, Email: "editor@example.com", Name: "Editor", Role: user.RoleEditor}
}

func adminIdentity(id int64) *middlewares.Identity {
	return &middlewares.Identity{ID: id, Email: "admin@example.com", Name: "Admin", Role: user.RoleAdmin}
}

func samplePost(id int64, authorID int64) post.Post {
	now := time.Now().UTC()

	return post.Post{
		ID:        id,
		Title:     "Hello World",
		Slug:      "hello-world",
		Content:   "body",
		Status:    post.StatusDraft,
		AuthorID:  &authorID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestGetPostHandler(t *testing.T) {
	tests := []struct {
		name           string
		url            string
		repoSetUp      func(*fakePostsRepo)
		wantStatusCode int
	}{
		{
			name: "by_numeric_id",
			url:  "/blog/42",
			repoSetUp: func(f *fakePostsRepo) {
				f.getByIDFn = func(ctx context.Context, id int64) (post.Post, error) {
					if id != 42 {
						return post.Post{}, errors.New("wrong id")
					}
					return samplePost(42, 1), nil
				}
				f.getBySlugFn = func(ctx context.Context, slug string) (post.Post, error) {
					return post.Post{}, errors.New("slug lookup must not happen for a numeric identifier")
				}
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "by_slug",
			url:  "/blog/hello-world",
			repoSetUp: func(f *fakePostsRepo) {
				f.getBySlugFn = func(ctx context.Context, slug string) (post.Post, error) {
					if slug != "hello-world" {
						return post.Post{}, errors.New("wrong slug")
					}
					return samplePost(42, 1), nil
				}
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "slug_with_digits_and_dash_is_still_a_slug",
			url:  "/blog/2024-recap",
			repoSetUp: func(f *fakePostsRepo) {
				f.getBySlugFn = func(ctx context.Context, slug string) (post.Post, error) {
					if slug != "2024-recap" {
						return post.Post{}, errors.New("wrong slug")
					}
					return samplePost(7, 1), nil
				}
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "not_found",
			url:            "/blog/missing",
			repoSetUp:      func(f *fakePostsRepo) {},
			wantStatusCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			repo := &fakePostsRepo{}
			tt.repoSetUp(repo)

			h := handlers.NewPostsHandler(repo, &fakeTermsRepo{})

			r := setupRouter(http.MethodGet, "/blog/:identifier", nil, h.GetPost)

			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestCreatePostHandler(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		ident          *middlewares.Identity
		repoSetUp      func(*fakePostsRepo)
		wantStatusCode int
	}{
		{
			name:  "success",
			body:  `{"title": "Hello", "slug": "hello", "content": "hi", "status": "draft"}`,
			ident: editorIdentity(3),
			repoSetUp: func(f *fakePostsRepo) {
				f.createFn = func(ctx context.Context, authorID int64, req post.CreateRequest) (post.Post, error) {
					if authorID != 3 {
						return post.Post{}, errors.New("author must come from the identity")
					}
					return samplePost(1, authorID), nil
				}
			},
			wantStatusCode: http.StatusCreated,
		},
		{
			name:           "missing_title",
			body:           `{"slug": "hello"}`,
			ident:          editorIdentity(3),
			repoSetUp:      func(f *fakePostsRepo) {},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "bad_status_value",
			body:           `{"title": "Hello", "slug": "hello", "status": "archived"}`,
			ident:          editorIdentity(3),
			repoSetUp:      func(f *fakePostsRepo) {},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:  "duplicate_slug",
			body:  `{"title": "Hello", "slug": "hello"}`,
			ident: editorIdentity(3),
			repoSetUp: func(f *fakePostsRepo) {
				f.createFn = func(ctx context.Context, authorID int64, req post.CreateRequest) (post.Post, error) {
					return post.Post{}, post.ErrSlugTaken
				}
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "no_identity",
			body:           `{"title": "Hello", "slug": "hello"}`,
			ident:          nil,
			repoSetUp:      func(f *fakePostsRepo) {},
			wantStatusCode: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			repo := &fakePostsRepo{}
			tt.repoSetUp(repo)

			h := handlers.NewPostsHandler(repo, &fakeTermsRepo{})

			r := setupRouter(http.MethodPost, "/blog", tt.ident, h.CreatePost)

			req := httptest.NewRequest(http.MethodPost, "/blog", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestUpdatePostHandler(t *testing.T) {
	tests := []struct {
		name           string
		url            string
		body           string
		ident          *middlewares.Identity
		repoSetUp      func(*fakePostsRepo)
		wantStatusCode int
	}{
		{
			name:  "owner_can_update",
			url:   "/blog/42",
			body:  `{"title": "Renamed"}`,
			ident: editorIdentity(3),
			repoSetUp: func(f *fakePostsRepo) {
				f.getByIDFn = func(ctx context.Context, id int64) (post.Post, error) {
					return samplePost(42, 3), nil
				}
				f.updateFn = func(ctx context.Context, id int64, p post.Patch) (post.Post, error) {
					if p.Title == nil || *p.Title != "Renamed" {
						return post.Post{}, errors.New("patch lost the title")
					}
					if p.Slug != nil {
						return post.Post{}, errors.New("absent fields must stay nil")
					}
					updated := samplePost(42, 3)
					updated.Title = *p.Title
					return updated, nil
				}
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name:  "non_owner_editor_forbidden",
			url:   "/blog/42",
			body:  `{"title": "Renamed"}`,
			ident: editorIdentity(9),
			repoSetUp: func(f *fakePostsRepo) {
				f.getByIDFn = func(ctx context.Context, id int64) (post.Post, error) {
					return samplePost(42, 3), nil
				}
			},
			wantStatusCode: http.StatusForbidden,
		},
		{
			name:  "admin_can_update_anyones",
			url:   "/blog/42",
			body:  `{"status": "published"}`,
			ident: adminIdentity(1),
			repoSetUp: func(f *fakePostsRepo) {
				f.getByIDFn = func(ctx context.Context, id int64) (post.Post, error) {
					return samplePost(42, 3), nil
				}
				f.updateFn = func(ctx context.Context, id int64, p post.Patch) (post.Post, error) {
					updated := samplePost(42, 3)
					updated.Status = post.StatusPublished
					return updated, nil
				}
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name:  "update_by_slug_identifier",
			url:   "/blog/hello-world",
			body:  `{"title": "Renamed"}`,
			ident: editorIdentity(3),
			repoSetUp: func(f *fakePostsRepo) {
				f.getBySlugFn = func(ctx context.Context, slug string) (post.Post, error) {
					return samplePost(42, 3), nil
				}
				f.updateFn = func(ctx context.Context, id int64, p post.Patch) (post.Post, error) {
					if id != 42 {
						return post.Post{}, errors.New("update must use the resolved id")
					}
					return samplePost(42, 3), nil
				}
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name:  "slug_collision_on_update",
			url:   "/blog/42",
			body:  `{"slug": "taken"}`,
			ident: editorIdentity(3),
			repoSetUp: func(f *fakePostsRepo) {
				f.getByIDFn = func(ctx context.Context, id int64) (post.Post, error) {
					return samplePost(42, 3), nil
				}
				f.updateFn = func(ctx context.Context, id int64, p post.Patch) (post.Post, error) {
					return post.Post{}, post.ErrSlugTaken
				}
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "not_found",
			url:            "/blog/42",
			body:           `{"title": "Renamed"}`,
			ident:          editorIdentity(3),
			repoSetUp:      func(f *fakePostsRepo) {},
			wantStatusCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			repo := &fakePostsRepo{}
			tt.repoSetUp(repo)

			h := handlers.NewPostsHandler(repo, &fakeTermsRepo{})

			r := setupRouter(http.MethodPut, "/blog/:identifier", tt.ident, h.UpdatePost)

			req := httptest.NewRequest(http.MethodPut, tt.url, bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestDeletePostHandler(t *testing.T) {
	t.Run("owner_deletes", func(t *testing.T) {
		deleted := false

		repo := &fakePostsRepo{
			getByIDFn: func(ctx context.Context, id int64) (post.Post, error) {
				return samplePost(42, 3), nil
			},
			deleteFn: func(ctx context.Context, id int64) error {
				deleted = true
				return nil
			},
		}

		h := handlers.NewPostsHandler(repo, &fakeTermsRepo{})
		r := setupRouter(http.MethodDelete, "/blog/:identifier", editorIdentity(3), h.DeletePost)

		req := httptest.NewRequest(http.MethodDelete, "/blog/42", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
		}
		if !deleted {
			t.Fatal("delete was never forwarded to the repo")
		}
	})

	t.Run("non_owner_forbidden", func(t *testing.T) {
		repo := &fakePostsRepo{
			getByIDFn: func(ctx context.Context, id int64) (post.Post, error) {
				return samplePost(42, 3), nil
			},
			deleteFn: func(ctx context.Context, id int64) error {
				return errors.New("must not be reached")
			},
		}

		h := handlers.NewPostsHandler(repo, &fakeTermsRepo{})
		r := setupRouter(http.MethodDelete, "/blog/:identifier", editorIdentity(9), h.DeletePost)

		req := httptest.NewRequest(http.MethodDelete, "/blog/42", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusForbidden {
			t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
		}
	})
}

func TestListPostsHandler(t *testing.T) {
	t.Run("filters_and_caps", func(t *testing.T) {
		repo := &fakePostsRepo{
			listFn: func(ctx context.Context, filter post.ListFilter) ([]post.Post, error) {
				if filter.Status == nil || *filter.Status != post.StatusPublished {
					return nil, errors.New("status filter missing")
				}
				if filter.AuthorID == nil || *filter.AuthorID != 3 {
					return nil, errors.New("author filter missing")
				}
				if filter.Limit != 20 {
					return nil, errors.New("oversized limit must fall back to the default")
				}
				return []post.Post{samplePost(1, 3)}, nil
			},
		}

		h := handlers.NewPostsHandler(repo, &fakeTermsRepo{})
		r := setupRouter(http.MethodGet, "/blog", nil, h.ListPosts)

		req := httptest.NewRequest(http.MethodGet, "/blog?status=published&author_id=3&limit=500", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
		}

		var resp struct {
			Posts []post.Post `json:"posts"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("bad response body: %v", err)
		}
		if len(resp.Posts) != 1 {
			t.Fatalf("got %d posts, want 1", len(resp.Posts))
		}
	})

	t.Run("garbage_author_id", func(t *testing.T) {
		h := handlers.NewPostsHandler(&fakePostsRepo{}, &fakeTermsRepo{})
		r := setupRouter(http.MethodGet, "/blog", nil, h.ListPosts)

		req := httptest.NewRequest(http.MethodGet, "/blog?author_id=abc", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
		}
	})
}
