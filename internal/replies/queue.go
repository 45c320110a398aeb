// Package replies serializes outbound comments. The platform refuses
// comments posted less than the spacing apart from the same account, so a
// single worker drains the queue and sleeps after every successful post.
package replies

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"checky/internal/config"
	"checky/internal/core"
)

var repliesPosted = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "checky_replies_posted_total",
	Help: "The total number of posted replies",
}, []string{"edit"})

type Queue struct {
	Logger    *slog.Logger
	Broadcast core.Broadcaster
	Config    *config.Config

	mu      sync.Mutex
	pending []core.Reply
	wake    chan struct{}
}

func (q *Queue) Init(_ context.Context) error {
	q.Logger = q.Logger.With("component", "replies.Queue")
	q.wake = make(chan struct{}, 1)
	return nil
}

// Enqueue appends a reply. It never blocks; the queue is unbounded.
func (q *Queue) Enqueue(reply core.Reply) {
	q.mu.Lock()
	q.pending = append(q.pending, reply)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Len reports the number of replies waiting to be posted.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Run drains the queue in FIFO order with exactly one post in flight. The
// broadcaster's rotation-retry contract means post either succeeds or the
// context was cancelled; a cancelled post stays at the head of the queue.
func (q *Queue) Run(ctx context.Context) error {
	for {
		reply, ok := q.peek()
		if !ok {
			select {
			case <-ctx.Done():
				return nil
			case <-q.wake:
				continue
			}
		}

		if err := q.post(ctx, reply); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			q.Logger.Error("posting reply failed", "parent_author", reply.ParentAuthor, "error", err)
		}
		q.pop()
		repliesPosted.WithLabelValues(boolLabel(reply.Edit)).Inc()

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(q.Config.ReplySpacing):
		}
	}
}

func (q *Queue) peek() (core.Reply, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		return core.Reply{}, false
	}
	return q.pending[0], true
}

func (q *Queue) pop() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) > 0 {
		q.pending = q.pending[1:]
	}
}

func (q *Queue) post(ctx context.Context, reply core.Reply) error {
	body := reply.Body
	if !reply.Edit {
		body += footer
	}
	return q.Broadcast.Comment(
		ctx,
		reply.ParentAuthor,
		reply.ParentPermlink,
		ReplyPermlink(reply.ParentAuthor, reply.ParentPermlink),
		reply.Title,
		body,
		metadata(reply.Details),
	)
}

// ReplyPermlink derives the bot's reply permlink for a post. Reusing it on a
// later comment broadcast edits the reply in place.
func ReplyPermlink(parentAuthor, parentPermlink string) string {
	return "re-" + strings.ReplaceAll(parentAuthor, ".", "") + "-" + parentPermlink
}

const footer = "\n\n###### If you found this comment useful, consider upvoting it to help keep this bot running. You can see a list of all available commands by replying with `!help`."

// metadata builds the json_metadata attached to every reply. Correction
// replies carry their details mapping so a later !where command can recover
// the excerpts from the comment itself.
func metadata(details map[string][]string) string {
	payload := map[string]any{
		"app":    config.AppID,
		"format": "markdown",
		"tags":   []string{"mentions", "bot", "checky"},
	}
	if len(details) > 0 {
		payload["details"] = details
	}
	data, _ := json.Marshal(payload)
	return string(data)
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
