// Package dispatch pulls operations off the blockchain stream and routes
// them: every operation feeds the ledger, comments get checked or
// interpreted as commands, downvotes on the bot's replies opt the voter out.
package dispatch

import (
	"context"
	"log/slog"
	"time"

	"github.com/Jeffail/gabs"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/zhulik/pips"
	"github.com/zhulik/pips/apply"

	"checky/internal/commands"
	"checky/internal/config"
	"checky/internal/core"
	"checky/internal/ledger"
	"checky/internal/mentions"
	"checky/internal/recheck"
	"checky/internal/replies"
	"checky/internal/resolver"
	"checky/internal/suggest"
)

var (
	operationsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "checky_operations_processed_total",
		Help: "The total number of processed stream operations",
	}, []string{"type"})

	postsChecked = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "checky_posts_checked_total",
		Help: "The total number of checked posts",
	}, []string{"result"})
)

type Dispatcher struct {
	Logger      *slog.Logger
	Config      *config.Config
	Ledger      *ledger.Ledger
	Resolver    *resolver.Resolver
	Extractor   *mentions.Extractor
	Suggester   *suggest.Suggester
	Interpreter *commands.Interpreter
	Store       *recheck.Store
	Queue       core.ReplySink
	Content     core.ContentAPI
	Stream      core.OperationStream
}

func (d *Dispatcher) Init(_ context.Context) error {
	d.Logger = d.Logger.With("component", "dispatch.Dispatcher")
	return nil
}

func (d *Dispatcher) Run(ctx context.Context) error {
	ops, err := d.Stream.Consume(ctx)
	if err != nil {
		return err
	}

	in := make(chan pips.D[core.Operation])
	go func() {
		defer close(in)
		for op := range ops {
			select {
			case in <- pips.NewD(op):
			case <-ctx.Done():
				return
			}
		}
	}()

	return pips.New[core.Operation, any]().
		Then(apply.Each(func(_ context.Context, op core.Operation) error {
			operationsProcessed.WithLabelValues(op.Type).Inc()
			d.Ledger.Add(op.Accounts()...)
			return nil
		})).
		Then(apply.Map(func(ctx context.Context, op core.Operation) (any, error) {
			d.route(ctx, op)
			return nil, nil
		})).
		Run(ctx, in).
		Wait(ctx)
}

// route never returns an error: a bad operation is logged and skipped, the
// stream has to survive anything a block can contain.
func (d *Dispatcher) route(ctx context.Context, op core.Operation) {
	switch op.Type {
	case "comment":
		comment, ok := op.AsComment()
		if !ok {
			d.Logger.Warn("malformed comment operation")
			return
		}
		if comment.ParentAuthor == d.Config.Account {
			go d.Interpreter.Handle(ctx, comment.Author, comment.Permlink, comment.ParentPermlink, comment.Body)
			return
		}
		if !d.qualifies(comment) {
			return
		}
		go d.checkPost(ctx, comment.Author, comment.Permlink)
	case "vote":
		vote, ok := op.AsVote()
		if !ok {
			d.Logger.Warn("malformed vote operation")
			return
		}
		if vote.Author == d.Config.Account && vote.Weight < 0 {
			d.Logger.Info("downvote on own reply, opting voter out", "voter", vote.Voter)
			d.Ledger.SetMode(vote.Voter, core.ModeOff)
		}
	}
}

// qualifies applies the author's mode and the metadata opt-out. Regular
// accounts only get top-level posts checked, advanced accounts get comments
// checked too.
func (d *Dispatcher) qualifies(comment core.Comment) bool {
	mode := d.Ledger.Account(comment.Author).Mode
	if !(comment.ParentAuthor == "" && mode != core.ModeOff || mode == core.ModeAdvanced) {
		return false
	}
	return !optedOut(comment.JSONMetadata)
}

// optedOut reports whether the post's metadata carries a truthy
// checky.ignore flag. Malformed metadata never blocks a check.
func optedOut(jsonMetadata string) bool {
	if jsonMetadata == "" {
		return false
	}
	parsed, err := gabs.ParseJSON([]byte(jsonMetadata))
	if err != nil {
		return false
	}
	switch v := parsed.Path("checky.ignore").Data().(type) {
	case bool:
		return v
	case string:
		return v == "true"
	default:
		return false
	}
}

// checkPost runs the full correction pipeline for one post. It runs in its
// own goroutine so a delay wait never stalls the stream.
func (d *Dispatcher) checkPost(ctx context.Context, author, permlink string) {
	content, err := d.Content.GetContent(ctx, author, permlink)
	if err != nil {
		d.Logger.Error("fetching post failed", "author", author, "permlink", permlink, "error", err)
		return
	}
	if content.Body == "" {
		return
	}

	// A fresh post may still be edited, give the author their configured
	// delay before reading the final body.
	if delay := d.Ledger.Account(author).Delay; content.IsFresh() && delay > 0 {
		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Duration(delay) * time.Minute):
		}
		if content, err = d.Content.GetContent(ctx, author, permlink); err != nil {
			d.Logger.Error("refetching post failed", "author", author, "permlink", permlink, "error", err)
			return
		}
	}

	account := d.Ledger.Account(author)
	found := d.Extractor.Extract(ctx, content.Body, author, account)
	if len(found) == 0 {
		postsChecked.WithLabelValues("no_mentions").Inc()
		return
	}

	names := make([]string, 0, len(found))
	byName := make(map[string]mentions.Mention, len(found))
	for _, mention := range found {
		names = append(names, mention.Name)
		byName[mention.Name] = mention
	}
	existing, err := d.Resolver.Resolve(ctx, names)
	if err != nil {
		d.Logger.Error("resolving mentions failed", "author", author, "error", err)
		return
	}
	d.Ledger.AddMentioned(author, existing...)

	existingSet := make(map[string]bool, len(existing))
	for _, name := range existing {
		existingSet[name] = true
	}

	var wrong []wrongMention
	details := map[string][]string{}
	for _, name := range names {
		if existingSet[name] {
			continue
		}
		suggestion, err := d.Suggester.Suggest(ctx, name, author, existing, content.Tags)
		if err != nil {
			d.Logger.Error("suggesting correction failed", "mention", name, "error", err)
		}
		wrong = append(wrong, wrongMention{Name: name, Suggestion: suggestion})
		details[name] = byName[name].Excerpts
	}
	if len(wrong) == 0 {
		postsChecked.WithLabelValues("clean").Inc()
		return
	}

	flagged := d.Store.Flag(core.FlaggedPost{
		Author:        author,
		Permlink:      permlink,
		ReplyPermlink: replies.ReplyPermlink(author, permlink),
		CreatedAt:     time.Now(),
		Details:       details,
	})
	if !flagged {
		postsChecked.WithLabelValues("already_flagged").Inc()
		return
	}
	postsChecked.WithLabelValues("flagged").Inc()

	postType := "post"
	if content.ParentAuthor != "" {
		postType = "comment"
	}
	d.Queue.Enqueue(core.Reply{
		Body:           correctionMessage(author, postType, wrong),
		ParentAuthor:   author,
		ParentPermlink: permlink,
		Title:          correctionTitle(postType, content.Title),
		Details:        details,
	})
}
