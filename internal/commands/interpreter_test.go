package commands_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"checky/internal/commands"
	"checky/internal/config"
	"checky/internal/core"
	"checky/internal/ledger"
	"checky/internal/recheck"
	"checky/internal/resolver"
)

type fakeSink struct {
	replies []core.Reply
}

func (f *fakeSink) Enqueue(reply core.Reply) {
	f.replies = append(f.replies, reply)
}

func (f *fakeSink) last(t *testing.T) core.Reply {
	t.Helper()
	require.NotEmpty(t, f.replies)
	return f.replies[len(f.replies)-1]
}

type fakeAccounts struct {
	existing map[string]bool
}

func (f *fakeAccounts) Lookup(_ context.Context, names []string) ([]string, error) {
	out := make([]string, len(names))
	for i, name := range names {
		if f.existing[name] {
			out[i] = name
		}
	}
	return out, nil
}

type fakeContent struct {
	posts map[string]core.Content
}

func (f *fakeContent) GetContent(_ context.Context, author, permlink string) (core.Content, error) {
	return f.posts[author+"/"+permlink], nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fixture struct {
	interpreter *commands.Interpreter
	ledger      *ledger.Ledger
	store       *recheck.Store
	content     *fakeContent
	sink        *fakeSink
}

func newFixture(t *testing.T, existing ...string) *fixture {
	t.Helper()

	cfg := config.Defaults()
	cfg.DataDir = ""

	existingSet := map[string]bool{}
	for _, name := range existing {
		existingSet[name] = true
	}

	led := &ledger.Ledger{Logger: testLogger(), Config: &cfg}
	require.NoError(t, led.Init(t.Context()))

	res := &resolver.Resolver{Logger: testLogger(), Ledger: led, API: &fakeAccounts{existing: existingSet}, Config: &cfg}
	require.NoError(t, res.Init(t.Context()))

	store := &recheck.Store{Logger: testLogger(), Config: &cfg}
	require.NoError(t, store.Init(t.Context()))

	content := &fakeContent{posts: map[string]core.Content{}}
	sink := &fakeSink{}

	interpreter := &commands.Interpreter{
		Logger:   testLogger(),
		Config:   &cfg,
		Ledger:   led,
		Resolver: res,
		Store:    store,
		Content:  content,
		Queue:    sink,
	}
	require.NoError(t, interpreter.Init(t.Context()))

	return &fixture{interpreter: interpreter, ledger: led, store: store, content: content, sink: sink}
}

func TestParse(t *testing.T) {
	t.Parallel()

	cases := []struct {
		body string
		kind commands.Kind
		args []string
		ok   bool
	}{
		{"!mode advanced", commands.KindMode, []string{"advanced"}, true},
		{"  !help", commands.KindHelp, nil, true},
		{"!on", commands.KindMode, []string{"on"}, true},
		{"!off please", commands.KindMode, []string{"off", "please"}, true},
		{"!wait 10", commands.KindDelay, []string{"10"}, true},
		{"!switch plus", commands.KindMode, []string{"plus"}, true},
		{"!ignore @anna, bob", commands.KindIgnore, []string{"@anna", "bob"}, true},
		{"!surrounding", commands.KindWhere, nil, true},
		{"!Ignore anna", commands.KindUnknown, []string{"anna"}, true},
		{"!frobnicate", commands.KindUnknown, nil, true},
		{"thanks for the report", commands.KindUnknown, nil, false},
		{"", commands.KindUnknown, nil, false},
	}
	for _, tc := range cases {
		cmd, ok := commands.Parse(tc.body)
		require.Equal(t, tc.ok, ok, tc.body)
		if !ok {
			continue
		}
		require.Equal(t, tc.kind, cmd.Kind, tc.body)
		require.Equal(t, tc.args, cmd.Args, tc.body)
	}
}

func TestHandleIgnoresNonCommands(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	require.False(t, f.interpreter.Handle(t.Context(), "anna", "c1", "re-anna-p1", "thanks bot!"))
	require.Empty(t, f.sink.replies)
}

func TestHandleModeAdvanced(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	require.True(t, f.interpreter.Handle(t.Context(), "anna", "c1", "re-anna-p1", "!mode advanced"))

	require.Equal(t, core.ModeAdvanced, f.ledger.Account("anna").Mode)
	reply := f.sink.last(t)
	require.Equal(t, "Account set to advanced", reply.Title)
	require.Equal(t, "anna", reply.ParentAuthor)
	require.Equal(t, "c1", reply.ParentPermlink)
}

func TestHandleModeShortcutsAndAliases(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	f.interpreter.Handle(t.Context(), "anna", "c1", "p", "!off")
	require.Equal(t, core.ModeOff, f.ledger.Account("anna").Mode)

	f.interpreter.Handle(t.Context(), "anna", "c2", "p", "!on")
	require.Equal(t, core.ModeRegular, f.ledger.Account("anna").Mode)

	f.interpreter.Handle(t.Context(), "anna", "c3", "p", "!switch plus")
	require.Equal(t, core.ModeAdvanced, f.ledger.Account("anna").Mode)
}

func TestHandleModeErrors(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	f.interpreter.Handle(t.Context(), "anna", "c1", "p", "!mode sideways")
	require.Equal(t, "Wrong mode specified", f.sink.last(t).Title)
	require.Contains(t, f.sink.last(t).Body, "currently set to regular")

	f.interpreter.Handle(t.Context(), "anna", "c2", "p", "!switch")
	require.Equal(t, "No mode specified", f.sink.last(t).Title)
	require.Contains(t, f.sink.last(t).Body, "`!switch regular`")
}

func TestHandleIgnoreRoundTrip(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	f.interpreter.Handle(t.Context(), "anna", "c1", "p", "!ignore @Bob, carol")
	require.Equal(t, []string{"bob", "carol"}, f.ledger.Account("anna").Ignored)
	require.Equal(t, "Added some ignored mentions for @anna", f.sink.last(t).Title)
	require.Contains(t, f.sink.last(t).Body, "bob, carol")

	f.interpreter.Handle(t.Context(), "anna", "c2", "p", "!unignore bob")
	require.Equal(t, []string{"carol"}, f.ledger.Account("anna").Ignored)
	require.Equal(t, "Removed some ignored mentions for @anna", f.sink.last(t).Title)

	f.interpreter.Handle(t.Context(), "anna", "c3", "p", "!ignore")
	require.Equal(t, "No username specified", f.sink.last(t).Title)
}

func TestHandleDelay(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	f.interpreter.Handle(t.Context(), "anna", "c1", "p", "!delay 10")
	require.Equal(t, 10, f.ledger.Account("anna").Delay)
	require.Equal(t, "Delay set to 10 minutes", f.sink.last(t).Title)

	// Negative values are stored as their absolute value.
	f.interpreter.Handle(t.Context(), "anna", "c2", "p", "!wait -5")
	require.Equal(t, 5, f.ledger.Account("anna").Delay)

	f.interpreter.Handle(t.Context(), "anna", "c3", "p", "!delay abc")
	require.Equal(t, "Delay wrongly specified", f.sink.last(t).Title)
	require.Equal(t, 5, f.ledger.Account("anna").Delay)

	f.interpreter.Handle(t.Context(), "anna", "c4", "p", "!wait")
	require.Equal(t, "No delay specified", f.sink.last(t).Title)
	require.Contains(t, f.sink.last(t).Body, "`!wait minutes`")
}

func TestHandleCase(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	f.interpreter.Handle(t.Context(), "anna", "c1", "p", "!case sensitive")
	require.True(t, f.ledger.Account("anna").CaseSensitive)

	f.interpreter.Handle(t.Context(), "anna", "c2", "p", "!case i")
	require.False(t, f.ledger.Account("anna").CaseSensitive)

	f.interpreter.Handle(t.Context(), "anna", "c3", "p", "!case upside-down")
	require.Equal(t, "Case matching wrongly specified", f.sink.last(t).Title)
}

func TestHandleState(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.ledger.SetMode("anna", core.ModeAdvanced)
	f.ledger.SetDelay("anna", 1)
	f.ledger.AddIgnored("anna", "bob")

	f.interpreter.Handle(t.Context(), "anna", "c1", "p", "!state")

	reply := f.sink.last(t)
	require.Equal(t, "Account state", reply.Title)
	require.Contains(t, reply.Body, "currently set to advanced")
	require.Contains(t, reply.Body, "1 minute after being posted")
	require.Contains(t, reply.Body, "ignored by @checky: bob")
}

func TestHandleWhereFromStore(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.store.Flag(core.FlaggedPost{
		Author:        "anna",
		Permlink:      "my-post",
		ReplyPermlink: "re-anna-my-post",
		CreatedAt:     time.Now(),
		Details: map[string][]string{
			"gohst": {"calling <strong>@gohst</strong> out"},
			"wrnog": {"hello <strong>@wrnog</strong>"},
		},
	})

	f.interpreter.Handle(t.Context(), "anna", "c1", "re-anna-my-post", "!where")

	reply := f.sink.last(t)
	require.Equal(t, "Details on the wrong mentions found", reply.Title)
	require.Contains(t, reply.Body, "**@gohst**")
	require.Contains(t, reply.Body, "**@wrnog**")

	f.interpreter.Handle(t.Context(), "anna", "c2", "re-anna-my-post", "!where gohst")
	reply = f.sink.last(t)
	require.Contains(t, reply.Body, "**@gohst**")
	require.NotContains(t, reply.Body, "**@wrnog**")
}

func TestHandleWhereFallsBackToReplyMetadata(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.content.posts["checky/re-anna-my-post"] = core.Content{
		Body:         "correction",
		JSONMetadata: `{"app":"checky/1.0.0","details":{"gohst":["seen near <strong>@gohst</strong>"]}}`,
	}

	f.interpreter.Handle(t.Context(), "anna", "c1", "re-anna-my-post", "!details")

	reply := f.sink.last(t)
	require.Equal(t, "Details on the wrong mentions found", reply.Title)
	require.Contains(t, reply.Body, "seen near <strong>@gohst</strong>")
}

func TestHandleWhereWithoutRecord(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.interpreter.Handle(t.Context(), "anna", "c1", "re-anna-gone", "!where")
	require.Equal(t, "No details found", f.sink.last(t).Title)
}

func TestHandleHelpAndUnknown(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	f.interpreter.Handle(t.Context(), "anna", "c1", "p", "!help")
	require.Equal(t, "Commands list", f.sink.last(t).Title)
	require.Contains(t, f.sink.last(t).Body, "**!mode**")

	f.interpreter.Handle(t.Context(), "anna", "c2", "p", "!frobnicate")
	require.Equal(t, "Unknown command", f.sink.last(t).Title)
}

func TestSuperuserTargetOverride(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "bob")

	require.True(t, f.interpreter.Handle(t.Context(), "ragepeanut", "c1", "p", "!mode off @bob"))
	require.Equal(t, core.ModeOff, f.ledger.Account("bob").Mode)
	require.Equal(t, core.ModeRegular, f.ledger.Account("ragepeanut").Mode)
	require.Equal(t, "ragepeanut", f.sink.last(t).ParentAuthor)
}

func TestSuperuserTargetMustExist(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	f.interpreter.Handle(t.Context(), "ragepeanut", "c1", "p", "!mode off @nobody")
	require.Equal(t, "Possible wrong target", f.sink.last(t).Title)
	require.Equal(t, core.ModeRegular, f.ledger.Account("nobody").Mode)
}

func TestRegularUserCannotOverrideTarget(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "bob")

	f.interpreter.Handle(t.Context(), "anna", "c1", "p", "!mode off @bob")
	require.Equal(t, core.ModeOff, f.ledger.Account("anna").Mode)
	require.Equal(t, core.ModeRegular, f.ledger.Account("bob").Mode)
}
