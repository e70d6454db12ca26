// Package site is the demo application: a blog and a lesson catalogue
// served from one route table.
package site

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strconv"

	"github.com/vango-dev/waypoint/internal/content"
	"github.com/vango-dev/waypoint/pkg/querycache"
	"github.com/vango-dev/waypoint/pkg/router"
)

// RecentPosts is the number of posts on the home page.
const RecentPosts = 3

// Site wires content to routes.
type Site struct {
	store  content.Store
	cache  *querycache.Cache
	pages  fs.FS
	logger *slog.Logger
}

// Option configures a Site.
type Option func(*Site)

// WithPages replaces the embedded page files. fsys must hold a "pages"
// directory.
func WithPages(fsys fs.FS) Option {
	return func(s *Site) { s.pages = fsys }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Site) { s.logger = l }
}

// New creates a Site reading from store through cache.
func New(store content.Store, cache *querycache.Cache, opts ...Option) *Site {
	s := &Site{
		store:  store,
		cache:  cache,
		pages:  pagesFS,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "site")
	return s
}

// Routes returns the declared routes with the discovered page files merged
// under the root layout, ahead of the catch-all.
func (s *Site) Routes() ([]router.Route, error) {
	discovered, err := router.Discover(s.pages, pagesRoot, s.loadPage)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("pages discovered", "count", len(discovered))

	children := []router.Route{
		router.Index(Home, router.WithName("home"), router.WithLoader(s.loadRecentPosts)),
		router.Page("about", About, router.WithName("about")),
		router.Layout("blog", BlogLayout,
			router.Index(BlogIndex, router.WithName("blog"), router.WithLoader(s.loadPosts)),
			router.Page(":slug", PostPage,
				router.WithName("post"),
				router.WithLoader(s.loadPost),
				router.WithPlaceholder(PostPlaceholder),
				router.WithFallback(PostFallback),
			),
		),
		router.Layout("lessons", LessonTabs,
			router.Index(LessonList, router.WithName("lessons"), router.WithLoader(s.lessonsLoader(content.TrackBasics))),
			router.Page("advanced", LessonList, router.WithName("lessons-advanced"), router.WithLoader(s.lessonsLoader(content.TrackAdvanced))),
			router.Page(":id:int", LessonPage,
				router.WithName("lesson"),
				router.WithLoader(s.loadLesson),
				router.WithFallback(LessonFallback),
			),
		),
	}
	children = append(children, discovered...)
	children = append(children, router.Wildcard(NotFound, router.WithName("not-found"), router.WithStatus(404)))

	return []router.Route{router.Layout("", Shell, children...)}, nil
}

// Table builds the site's route table.
func (s *Site) Table() (*router.Table, error) {
	routes, err := s.Routes()
	if err != nil {
		return nil, err
	}
	return router.NewTable(routes...)
}

// notFound marks missing content so the page renders its not-found
// fallback with a 404.
func notFound(err error) error {
	if errors.Is(err, content.ErrNotFound) {
		return fmt.Errorf("%w: %w", router.ErrNotFound, err)
	}
	return err
}

func (s *Site) loadRecentPosts(ctx context.Context, req *router.Request) (any, error) {
	posts, err := querycache.Fetch(ctx, s.cache, "posts:recent", func(ctx context.Context) ([]content.Post, error) {
		all, err := s.store.ListPosts(ctx)
		if err != nil {
			return nil, err
		}
		if len(all) > RecentPosts {
			all = all[:RecentPosts]
		}
		return all, nil
	})
	return posts, notFound(err)
}

func (s *Site) loadPosts(ctx context.Context, req *router.Request) (any, error) {
	posts, err := querycache.Fetch(ctx, s.cache, "posts:all", s.store.ListPosts)
	return posts, notFound(err)
}

func (s *Site) loadPost(ctx context.Context, req *router.Request) (any, error) {
	slug := req.Params.Get("slug")
	post, err := querycache.Fetch(ctx, s.cache, "post:"+slug, func(ctx context.Context) (content.Post, error) {
		return s.store.GetPost(ctx, slug)
	})
	return post, notFound(err)
}

func (s *Site) lessonsLoader(track string) router.Loader {
	return func(ctx context.Context, req *router.Request) (any, error) {
		lessons, err := querycache.Fetch(ctx, s.cache, "lessons:"+track, func(ctx context.Context) ([]content.Lesson, error) {
			return s.store.ListLessons(ctx, track)
		})
		return lessons, notFound(err)
	}
}

type lessonParams struct {
	ID int `param:"id"`
}

func (s *Site) loadLesson(ctx context.Context, req *router.Request) (any, error) {
	var p lessonParams
	if err := router.BindParams(req.Params, &p); err != nil {
		return nil, err
	}
	lesson, err := querycache.Fetch(ctx, s.cache, "lesson:"+strconv.Itoa(p.ID), func(ctx context.Context) (content.Lesson, error) {
		return s.store.GetLesson(ctx, p.ID)
	})
	return lesson, notFound(err)
}
