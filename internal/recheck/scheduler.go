package recheck

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"checky/internal/config"
	"checky/internal/core"
	"checky/internal/ledger"
	"checky/internal/mentions"
	"checky/internal/resolver"
)

var rechecks = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "checky_rechecks_total",
	Help: "The total number of flagged-post rechecks",
}, []string{"outcome"})

const thanksNote = "All the wrong mentions in this post have been fixed, thank you! " +
	"This comment will now stop nagging you about them."

// Scheduler revisits flagged posts once their grace windows elapse. The due
// times are computed from each record's CreatedAt, so a restart never loses
// or rushes a pending recheck.
type Scheduler struct {
	Logger     *slog.Logger
	Config     *config.Config
	Store      *Store
	Ledger     *ledger.Ledger
	Extractor  *mentions.Extractor
	Resolver   *resolver.Resolver
	Queue      core.ReplySink
	Content    core.ContentAPI
	Broadcast  core.Broadcaster
	Candidates core.CandidateSink

	scanInterval time.Duration
}

func (s *Scheduler) Init(_ context.Context) error {
	s.Logger = s.Logger.With("component", "recheck.Scheduler")
	if s.scanInterval == 0 {
		s.scanInterval = time.Minute
	}
	return nil
}

func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.scanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.scan(ctx)
		}
	}
}

func (s *Scheduler) scan(ctx context.Context) {
	for _, post := range s.Store.Due(time.Now()) {
		if ctx.Err() != nil {
			return
		}
		s.check(ctx, post)
	}
}

func (s *Scheduler) check(ctx context.Context, post core.FlaggedPost) {
	content, err := s.Content.GetContent(ctx, post.Author, post.Permlink)
	if err != nil {
		s.Logger.Error("fetching flagged post failed", "author", post.Author, "permlink", post.Permlink, "error", err)
		return
	}

	if content.Body == "" {
		// The post was deleted out from under the reply.
		s.deleteReplyIfUninteracted(ctx, post)
		s.Store.Remove(post.Author, post.Permlink)
		rechecks.WithLabelValues("post_deleted").Inc()
		return
	}

	if post.FirstCheckDone {
		s.deleteReplyIfUninteracted(ctx, post)
		s.Store.Remove(post.Author, post.Permlink)
		rechecks.WithLabelValues("expired").Inc()
		return
	}

	fixed, err := s.allMentionsExist(ctx, content.Body, post.Author)
	if err != nil {
		s.Logger.Error("rechecking mentions failed", "author", post.Author, "permlink", post.Permlink, "error", err)
		return
	}

	if !fixed {
		s.Store.MarkFirstCheckDone(post.Author, post.Permlink)
		rechecks.WithLabelValues("still_wrong").Inc()
		return
	}

	if s.Candidates != nil {
		s.Candidates.Add(post.Author, post.Permlink)
	}
	if !s.deleteReplyIfUninteracted(ctx, post) {
		s.Queue.Enqueue(core.Reply{
			Body:           thanksNote,
			ParentAuthor:   post.Author,
			ParentPermlink: post.Permlink,
			Edit:           true,
		})
	}
	s.Store.Remove(post.Author, post.Permlink)
	rechecks.WithLabelValues("fixed").Inc()
}

// allMentionsExist re-extracts the post's mentions against the author's
// current settings and resolves them. True means nothing wrong remains.
func (s *Scheduler) allMentionsExist(ctx context.Context, body, author string) (bool, error) {
	account := s.Ledger.Account(author)
	found := s.Extractor.Extract(ctx, body, author, account)
	if len(found) == 0 {
		return true, nil
	}

	names := make([]string, 0, len(found))
	for _, mention := range found {
		names = append(names, mention.Name)
	}
	existing, err := s.Resolver.Resolve(ctx, names)
	if err != nil {
		return false, err
	}
	return len(existing) == len(names), nil
}

// deleteReplyIfUninteracted removes the bot's correction reply when nobody
// voted on it or answered it. It reports whether the reply was deleted.
func (s *Scheduler) deleteReplyIfUninteracted(ctx context.Context, post core.FlaggedPost) bool {
	reply, err := s.Content.GetContent(ctx, s.Config.Account, post.ReplyPermlink)
	if err != nil {
		s.Logger.Error("fetching own reply failed", "permlink", post.ReplyPermlink, "error", err)
		return false
	}
	if reply.Body == "" {
		return true
	}
	if reply.NetVotes != 0 || reply.Children != 0 || reply.ActiveVotes != 0 {
		return false
	}
	if err := s.Broadcast.DeleteComment(ctx, post.ReplyPermlink); err != nil {
		s.Logger.Error("deleting own reply failed", "permlink", post.ReplyPermlink, "error", err)
		return false
	}
	return true
}
