package blog

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Post is one blog entry
type Post struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Locale    string    `json:"locale"`
	CreatedAt time.Time `json:"created_at"`
}

// Store keeps posts in memory
type Store struct {
	mu    sync.RWMutex
	posts map[uuid.UUID]*Post
	now   func() time.Time
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		posts: make(map[uuid.UUID]*Post),
		now:   time.Now,
	}
}

// Create stores a new post and returns a copy of it
func (s *Store) Create(title, body, locale string) Post {
	s.mu.Lock()
	defer s.mu.Unlock()

	post := &Post{
		ID:        uuid.New(),
		Title:     title,
		Body:      body,
		Locale:    locale,
		CreatedAt: s.now(),
	}
	s.posts[post.ID] = post
	return *post
}

// Get retrieves a post by ID
func (s *Store) Get(id uuid.UUID) (Post, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	post, exists := s.posts[id]
	if !exists {
		return Post{}, false
	}
	return *post, true
}

// All returns every post, newest first
func (s *Store) All() []Post {
	s.mu.RLock()
	defer s.mu.RUnlock()

	posts := make([]Post, 0, len(s.posts))
	for _, post := range s.posts {
		posts = append(posts, *post)
	}
	sort.Slice(posts, func(i, j int) bool {
		if posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].Title < posts[j].Title
		}
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	return posts
}

// Delete removes a post and reports whether it existed
func (s *Store) Delete(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.posts[id]; !exists {
		return false
	}
	delete(s.posts, id)
	return true
}

// Len returns the number of posts
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.posts)
}
