// Package recheck tracks posts that received a correction reply and
// revisits them after their grace windows. A fixed post earns a cleanup of
// the bot's reply, an abandoned one eventually gets the reply removed too
// when nobody interacted with it.
package recheck

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"checky/internal/config"
	"checky/internal/core"
	"checky/internal/ledger"
)

// Store is the persisted set of flagged posts, at most one live record per
// author+permlink. It survives restarts so grace windows keep counting from
// the original reply time.
type Store struct {
	Logger *slog.Logger
	Config *config.Config

	mu      sync.Mutex
	flagged map[string]*core.FlaggedPost
}

func (s *Store) Init(_ context.Context) error {
	s.Logger = s.Logger.With("component", "recheck.Store")
	s.flagged = map[string]*core.FlaggedPost{}
	if s.Config == nil || s.Config.DataDir == "" {
		return nil
	}
	if err := ledger.LoadSnapshot(s.path(), &s.flagged); err != nil {
		return err
	}
	s.Logger.Info("flagged posts loaded", "count", len(s.flagged))
	return nil
}

// Flag records a post as flagged. It returns false without mutating anything
// when a live record already exists for the author+permlink pair.
func (s *Store) Flag(post core.FlaggedPost) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key(post.Author, post.Permlink)
	if _, ok := s.flagged[k]; ok {
		return false
	}
	s.flagged[k] = &post
	s.persist()
	return true
}

// Remove drops the record for the author+permlink pair if one exists.
func (s *Store) Remove(author, permlink string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.flagged, key(author, permlink))
	s.persist()
}

// MarkFirstCheckDone flips the record into its final grace window.
func (s *Store) MarkFirstCheckDone(author, permlink string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if post, ok := s.flagged[key(author, permlink)]; ok {
		post.FirstCheckDone = true
		s.persist()
	}
}

// Get returns a copy of the record for the author+permlink pair.
func (s *Store) Get(author, permlink string) (core.FlaggedPost, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	post, ok := s.flagged[key(author, permlink)]
	if !ok {
		return core.FlaggedPost{}, false
	}
	return *post, true
}

// Due returns copies of every record whose next check time, computed from
// CreatedAt and the grace windows, is at or before now.
func (s *Store) Due(now time.Time) []core.FlaggedPost {
	s.mu.Lock()
	defer s.mu.Unlock()

	var due []core.FlaggedPost
	for _, post := range s.flagged {
		deadline := post.CreatedAt.Add(s.Config.FirstGraceWindow)
		if post.FirstCheckDone {
			deadline = deadline.Add(s.Config.FinalGraceWindow)
		}
		if !deadline.After(now) {
			due = append(due, *post)
		}
	}
	return due
}

// ByReplyPermlink finds the record whose correction reply carries the given
// permlink. Used by the command interpreter to answer !where on a reply.
func (s *Store) ByReplyPermlink(permlink string) (core.FlaggedPost, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, post := range s.flagged {
		if post.ReplyPermlink == permlink {
			return *post, true
		}
	}
	return core.FlaggedPost{}, false
}

// Len reports the number of live records.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.flagged)
}

func (s *Store) path() string {
	return filepath.Join(s.Config.DataDir, "flagged.json")
}

// persist is called under s.mu. The flagged set is small and mutations are
// rare, so every change is flushed immediately instead of on a ticker.
func (s *Store) persist() {
	if s.Config == nil || s.Config.DataDir == "" {
		return
	}
	if err := ledger.WriteSnapshot(s.path(), s.flagged); err != nil {
		s.Logger.Error("persisting flagged posts failed", "error", err)
	}
}

func key(author, permlink string) string {
	return author + "/" + permlink
}
