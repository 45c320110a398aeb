// Package ledger holds the directory of every account the bot has ever seen,
// together with its per-account settings and mention history. It is the only
// place that decides whether a username is known.
package ledger

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/samber/lo"

	"checky/internal/config"
	"checky/internal/core"
)

type Ledger struct {
	Logger *slog.Logger
	Config *config.Config

	mu       sync.RWMutex
	accounts map[string]*core.Account
	dirty    bool
}

func (l *Ledger) Init(_ context.Context) error {
	l.Logger = l.Logger.With("component", "ledger.Ledger")
	if l.accounts == nil {
		l.accounts = map[string]*core.Account{}
	}
	if l.Config == nil || l.Config.DataDir == "" {
		return nil
	}
	accounts := map[string]*core.Account{}
	if err := loadSnapshot(l.usersPath(), &accounts); err != nil {
		return err
	}
	l.accounts = accounts
	l.Logger.Info("ledger loaded", "accounts", len(accounts))
	return nil
}

func (l *Ledger) Run(ctx context.Context) error {
	if l.Config == nil || l.Config.DataDir == "" {
		<-ctx.Done()
		return nil
	}
	ticker := time.NewTicker(l.Config.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := l.flush(); err != nil {
				l.Logger.Error("flush failed", "error", err)
			}
		}
	}
}

func (l *Ledger) Shutdown(_ context.Context) error {
	if l.Config == nil || l.Config.DataDir == "" {
		return nil
	}
	return l.flush()
}

// Add registers usernames with default settings. Existing records are kept
// untouched, so the call is an idempotent upsert.
func (l *Ledger) Add(names ...string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, name := range names {
		if name == "" {
			continue
		}
		if _, ok := l.accounts[name]; !ok {
			l.accounts[name] = core.NewAccount()
			l.dirty = true
		}
	}
}

// Account returns a copy of the record, creating it first when missing so
// callers can always dereference settings.
func (l *Ledger) Account(name string) core.Account {
	l.mu.Lock()
	defer l.mu.Unlock()
	return *l.get(name)
}

// Known reports whether the username has been observed or resolved before.
// The ledger only ever stores confirmed usernames.
func (l *Ledger) Known(name string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.accounts[name]
	return ok
}

// Partition splits names into ledger-known and unknown, preserving order.
func (l *Ledger) Partition(names []string) (known, unknown []string) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, name := range names {
		if _, ok := l.accounts[name]; ok {
			known = append(known, name)
		} else {
			unknown = append(unknown, name)
		}
	}
	return known, unknown
}

func (l *Ledger) SetMode(name string, mode core.Mode) {
	l.mutate(name, func(a *core.Account) { a.Mode = mode })
}

func (l *Ledger) SetDelay(name string, minutes int) {
	if minutes < 0 {
		minutes = -minutes
	}
	l.mutate(name, func(a *core.Account) { a.Delay = minutes })
}

func (l *Ledger) SetCaseSensitive(name string, sensitive bool) {
	l.mutate(name, func(a *core.Account) { a.CaseSensitive = sensitive })
}

func (l *Ledger) AddIgnored(name string, ignored ...string) {
	l.mutate(name, func(a *core.Account) {
		a.Ignored = lo.Uniq(append(a.Ignored, ignored...))
	})
}

func (l *Ledger) RemoveIgnored(name string, ignored ...string) {
	l.mutate(name, func(a *core.Account) {
		a.Ignored = lo.Without(a.Ignored, ignored...)
	})
}

// AddMentioned records that author correctly mentioned the given usernames:
// they join the author's ordered mention history and each target's global
// occurrence counter goes up.
func (l *Ledger) AddMentioned(author string, names ...string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	rec := l.get(author)
	for _, name := range names {
		if !slices.Contains(rec.Mentioned, name) {
			rec.Mentioned = append(rec.Mentioned, name)
		}
		l.get(name).Occurrences++
	}
	l.dirty = true
}

func (l *Ledger) Occurrences(name string) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if rec, ok := l.accounts[name]; ok {
		return rec.Occurrences
	}
	return 0
}

func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.accounts)
}

func (l *Ledger) get(name string) *core.Account {
	rec, ok := l.accounts[name]
	if !ok {
		rec = core.NewAccount()
		l.accounts[name] = rec
		l.dirty = true
	}
	return rec
}

func (l *Ledger) mutate(name string, f func(*core.Account)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	f(l.get(name))
	l.dirty = true
}
