// Package handlers provides HTTP request handlers for the REST API.
//
// Each handler type validates inputs, delegates to the content or record
// layer, and returns dto responses. Conversion between domain types and dto
// types lives in convert.go; mapping of domain errors onto API errors lives
// in errors.go.
package handlers

import (
	"sync"
	"time"

	"github.com/yotsuba-lab/manabi/internal/ghrepo"
	"github.com/yotsuba-lab/manabi/internal/recordapi"
	"github.com/yotsuba-lab/manabi/internal/session"
)

// Services bundles what handlers need: the record-backend client and
// per-user GitHub repository clients with their listing caches.
type Services struct {
	Backend *recordapi.Client

	ghOpts []ghrepo.Option
	grace  time.Duration

	mu    sync.Mutex
	repos map[string]*repoEntry
}

type repoEntry struct {
	token  string
	client *ghrepo.Client
	cache  *ghrepo.TreeCache
}

// NewServices creates the handler service bundle. grace is the post-write
// invalidation delay for each user's tree cache; ghOpts configure every
// GitHub client built for a session.
func NewServices(backend *recordapi.Client, grace time.Duration, ghOpts ...ghrepo.Option) *Services {
	return &Services{
		Backend: backend,
		ghOpts:  ghOpts,
		grace:   grace,
		repos:   make(map[string]*repoEntry),
	}
}

// repo returns the GitHub client and tree cache bound to the session's user,
// building them on first use. A session carrying a different credential for
// the same login replaces the entry, dropping state tied to the old token.
func (s *Services) repo(sess session.Session) (*ghrepo.Client, *ghrepo.TreeCache) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.repos[sess.Login]
	if !ok || e.token != sess.Token {
		if ok {
			e.cache.Stop()
		}
		client := ghrepo.New(sess, s.ghOpts...)
		e = &repoEntry{
			token:  sess.Token,
			client: client,
			cache:  ghrepo.NewTreeCache(client, s.grace),
		}
		s.repos[sess.Login] = e
	}
	return e.client, e.cache
}

// Close stops every per-user cache's pending invalidation timer.
func (s *Services) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.repos {
		e.cache.Stop()
	}
}
