// Package content holds the posts and lessons the demo site renders, and
// the stores that serve them.
package content

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a post or lesson does not exist.
var ErrNotFound = errors.New("content: not found")

// Post is a blog post.
type Post struct {
	Slug      string
	Title     string
	Summary   string
	Body      string
	Tags      []string
	Published time.Time
}

// Lesson is one entry in a lesson track.
type Lesson struct {
	ID       int
	Track    string
	Title    string
	Order    int
	Body     string
	Duration time.Duration
}

// Lesson tracks.
const (
	TrackBasics   = "basics"
	TrackAdvanced = "advanced"
)

// Store reads site content. Implementations must be safe for concurrent use
// and return ErrNotFound, possibly wrapped, for missing items.
type Store interface {
	// ListPosts returns every post, newest first.
	ListPosts(ctx context.Context) ([]Post, error)

	// GetPost returns the post with the given slug.
	GetPost(ctx context.Context, slug string) (Post, error)

	// ListLessons returns the lessons of a track in order.
	ListLessons(ctx context.Context, track string) ([]Lesson, error)

	// GetLesson returns the lesson with the given id.
	GetLesson(ctx context.Context, id int) (Lesson, error)
}
