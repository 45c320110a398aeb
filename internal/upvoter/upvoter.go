// Package upvoter rewards authors who fix their posts. Every author whose
// post came back clean from a recheck becomes a candidate; at a fixed
// interval one random candidate gets an upvote and the list is cleared.
package upvoter

import (
	"context"
	"log/slog"
	"math/rand"
	"path/filepath"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"checky/internal/config"
	"checky/internal/core"
	"checky/internal/ledger"
)

var upvotesCast = promauto.NewCounter(prometheus.CounterOpts{
	Name: "checky_upvotes_cast_total",
	Help: "The total number of candidate upvotes cast",
})

const fullWeight = 10000

type candidate struct {
	Author   string `json:"author"`
	Permlink string `json:"permlink"`
}

type state struct {
	Candidates []candidate `json:"candidates"`
	LastUpvote time.Time   `json:"last_upvote"`
}

// Upvoter implements core.CandidateSink and runs the periodic upvote. The
// last-upvote time is persisted so a restart keeps the rhythm instead of
// resetting it.
type Upvoter struct {
	Logger    *slog.Logger
	Config    *config.Config
	Broadcast core.Broadcaster

	mu    sync.Mutex
	state state
	rand  *rand.Rand
}

func (u *Upvoter) Init(_ context.Context) error {
	u.Logger = u.Logger.With("component", "upvoter.Upvoter")
	u.rand = rand.New(rand.NewSource(time.Now().UnixNano()))

	if u.Config.DataDir != "" {
		if err := ledger.LoadSnapshot(u.path(), &u.state); err != nil {
			return err
		}
	}
	if u.state.LastUpvote.IsZero() {
		u.state.LastUpvote = time.Now()
	}
	return nil
}

func (u *Upvoter) Run(ctx context.Context) error {
	timer := time.NewTimer(u.nextDelay(time.Now()))
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
			u.upvoteRandom(ctx)
			timer.Reset(u.Config.UpvoteInterval)
		}
	}
}

// Add implements core.CandidateSink.
func (u *Upvoter) Add(author, permlink string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.state.Candidates = append(u.state.Candidates, candidate{Author: author, Permlink: permlink})
	u.persist()
}

// Len reports the number of pending candidates.
func (u *Upvoter) Len() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.state.Candidates)
}

// nextDelay computes how long to wait until the next upvote, counting from
// the persisted last-upvote time and clamping to zero when overdue.
func (u *Upvoter) nextDelay(now time.Time) time.Duration {
	u.mu.Lock()
	defer u.mu.Unlock()
	delay := u.Config.UpvoteInterval - now.Sub(u.state.LastUpvote)
	if delay < 0 {
		return 0
	}
	return delay
}

func (u *Upvoter) upvoteRandom(ctx context.Context) {
	u.mu.Lock()
	if len(u.state.Candidates) == 0 {
		u.mu.Unlock()
		return
	}
	picked := u.state.Candidates[u.rand.Intn(len(u.state.Candidates))]
	u.state.Candidates = nil
	u.mu.Unlock()

	if err := u.Broadcast.Vote(ctx, picked.Author, picked.Permlink, fullWeight); err != nil {
		u.Logger.Error("upvoting candidate failed", "author", picked.Author, "error", err)
		return
	}
	upvotesCast.Inc()
	u.Logger.Info("upvoted candidate", "author", picked.Author, "permlink", picked.Permlink)

	u.mu.Lock()
	u.state.LastUpvote = time.Now()
	u.persist()
	u.mu.Unlock()
}

func (u *Upvoter) path() string {
	return filepath.Join(u.Config.DataDir, "upvoter.json")
}

// persist is called under u.mu.
func (u *Upvoter) persist() {
	if u.Config.DataDir == "" {
		return
	}
	if err := ledger.WriteSnapshot(u.path(), &u.state); err != nil {
		u.Logger.Error("persisting upvoter state failed", "error", err)
	}
}
