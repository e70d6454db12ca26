package content

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"
)

// MemoryStore serves content from memory, optionally after a fixed delay.
type MemoryStore struct {
	delay time.Duration

	mu      sync.RWMutex
	posts   map[string]Post
	lessons map[int]Lesson
}

// NewMemoryStore creates a store holding the seed content. Every read waits
// delay first, returning early if the context is cancelled.
func NewMemoryStore(delay time.Duration) *MemoryStore {
	s := &MemoryStore{
		delay:   delay,
		posts:   make(map[string]Post),
		lessons: make(map[int]Lesson),
	}
	for _, p := range SeedPosts() {
		s.posts[p.Slug] = p
	}
	for _, l := range SeedLessons() {
		s.lessons[l.ID] = l
	}
	return s
}

// PutPost adds or replaces a post.
func (s *MemoryStore) PutPost(p Post) {
	s.mu.Lock()
	s.posts[p.Slug] = p
	s.mu.Unlock()
}

// PutLesson adds or replaces a lesson.
func (s *MemoryStore) PutLesson(l Lesson) {
	s.mu.Lock()
	s.lessons[l.ID] = l
	s.mu.Unlock()
}

func (s *MemoryStore) wait(ctx context.Context) error {
	if s.delay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(s.delay)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *MemoryStore) ListPosts(ctx context.Context) ([]Post, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	out := make([]Post, 0, len(s.posts))
	for _, p := range s.posts {
		out = append(out, p)
	}
	s.mu.RUnlock()
	sortPosts(out)
	return out, nil
}

func (s *MemoryStore) GetPost(ctx context.Context, slug string) (Post, error) {
	if err := s.wait(ctx); err != nil {
		return Post{}, err
	}
	s.mu.RLock()
	p, ok := s.posts[slug]
	s.mu.RUnlock()
	if !ok {
		return Post{}, fmt.Errorf("post %q: %w", slug, ErrNotFound)
	}
	return p, nil
}

func (s *MemoryStore) ListLessons(ctx context.Context, track string) ([]Lesson, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	var out []Lesson
	for _, l := range s.lessons {
		if l.Track == track {
			out = append(out, l)
		}
	}
	s.mu.RUnlock()
	slices.SortFunc(out, func(a, b Lesson) int { return a.Order - b.Order })
	return out, nil
}

func (s *MemoryStore) GetLesson(ctx context.Context, id int) (Lesson, error) {
	if err := s.wait(ctx); err != nil {
		return Lesson{}, err
	}
	s.mu.RLock()
	l, ok := s.lessons[id]
	s.mu.RUnlock()
	if !ok {
		return Lesson{}, fmt.Errorf("lesson %d: %w", id, ErrNotFound)
	}
	return l, nil
}

// sortPosts orders posts newest first, by slug for equal dates.
func sortPosts(posts []Post) {
	slices.SortFunc(posts, func(a, b Post) int {
		if c := b.Published.Compare(a.Published); c != 0 {
			return c
		}
		if a.Slug < b.Slug {
			return -1
		}
		if a.Slug > b.Slug {
			return 1
		}
		return 0
	})
}
