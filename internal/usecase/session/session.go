// Package session holds the authenticated-session state shared by the views:
// who is logged in and how many bookmarks they have.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"newsclient/internal/domain/entity"
)

// API is the subset of the remote API the session needs.
type API interface {
	Status(ctx context.Context) (entity.AuthStatus, error)
	BookmarkCount(ctx context.Context) (int, error)
}

// Snapshot is a point-in-time copy of the session state.
type Snapshot struct {
	Authenticated bool
	User          *entity.User
	BookmarkCount int
}

// Session is shared by pointer between the feed, bookmark and account use cases.
// Refresh is the single entry point for updating the bookmark counter.
type Session struct {
	api API

	mu          sync.RWMutex
	snap        Snapshot
	subscribers []func(Snapshot)
}

// New creates an unauthenticated session.
func New(api API) *Session {
	return &Session{api: api}
}

// Bootstrap asks the server who is logged in, then loads the bookmark count.
// A failed status check leaves the session unauthenticated.
func (s *Session) Bootstrap(ctx context.Context) error {
	status, err := s.api.Status(ctx)
	if err != nil {
		s.set(Snapshot{})
		return fmt.Errorf("check auth status: %w", err)
	}

	if !status.Authenticated {
		s.set(Snapshot{})
		return nil
	}

	s.set(Snapshot{Authenticated: true, User: status.User})
	s.Refresh(ctx)
	return nil
}

// Refresh re-fetches the bookmark count. Unauthenticated sessions make no
// request and report zero. Failures are logged and the previous count kept.
func (s *Session) Refresh(ctx context.Context) {
	if !s.IsAuthenticated() {
		s.update(func(snap *Snapshot) { snap.BookmarkCount = 0 })
		return
	}

	count, err := s.api.BookmarkCount(ctx)
	if err != nil {
		slog.Warn("failed to fetch bookmark count", slog.Any("error", err))
		return
	}
	s.update(func(snap *Snapshot) {
		// a logout may have landed while the count was in flight
		if snap.Authenticated {
			snap.BookmarkCount = count
		}
	})
}

// Reset forgets the current user without contacting the server.
func (s *Session) Reset() {
	s.set(Snapshot{})
}

// IsAuthenticated reports whether a user is logged in.
func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.Authenticated
}

// User returns the logged-in user, or nil.
func (s *Session) User() *entity.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snap.User == nil {
		return nil
	}
	u := *s.snap.User
	return &u
}

// BookmarkCount returns the last known bookmark count.
func (s *Session) BookmarkCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.BookmarkCount
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Subscribe registers fn to receive every state change.
// fn runs synchronously on the updating goroutine and must not call back into Subscribe.
func (s *Session) Subscribe(fn func(Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

func (s *Session) set(snap Snapshot) {
	s.update(func(cur *Snapshot) { *cur = snap })
}

func (s *Session) update(fn func(*Snapshot)) {
	s.mu.Lock()
	before := s.snap
	fn(&s.snap)
	after := s.snap
	subs := append([]func(Snapshot){}, s.subscribers...)
	s.mu.Unlock()

	if before == after {
		return
	}
	for _, sub := range subs {
		sub(after)
	}
}
