package mentions_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"checky/internal/config"
	"checky/internal/core"
	"checky/internal/mentions"
)

type fakeContent struct {
	posts map[string]core.Content
	err   error
}

func (f *fakeContent) GetContent(_ context.Context, author, permlink string) (core.Content, error) {
	if f.err != nil {
		return core.Content{}, f.err
	}
	return f.posts[author+"/"+permlink], nil
}

func newExtractor(t *testing.T, content *fakeContent) *mentions.Extractor {
	t.Helper()

	cfg := config.Defaults()
	if content == nil {
		content = &fakeContent{}
	}
	e := &mentions.Extractor{
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		Content: content,
		Config:  &cfg,
	}
	require.NoError(t, e.Init(t.Context()))
	return e
}

func names(found []mentions.Mention) []string {
	out := make([]string, 0, len(found))
	for _, m := range found {
		out = append(out, m.Name)
	}
	return out
}

func extract(t *testing.T, e *mentions.Extractor, body string) []mentions.Mention {
	t.Helper()
	return e.Extract(t.Context(), body, "someauthor", *core.NewAccount())
}

func TestExtractBasic(t *testing.T) {
	t.Parallel()

	e := newExtractor(t, nil)
	found := extract(t, e, "thanks @anna and @annaa for the help")
	require.Equal(t, []string{"anna", "annaa"}, names(found))
}

func TestExtractFoldsCaseByDefault(t *testing.T) {
	t.Parallel()

	e := newExtractor(t, nil)
	found := extract(t, e, "hello @Anna and @ANNA")
	require.Equal(t, []string{"anna"}, names(found))
	require.Len(t, found[0].Excerpts, 2)
}

func TestExtractCaseSensitiveDropsCasedTokens(t *testing.T) {
	t.Parallel()

	e := newExtractor(t, nil)
	acc := *core.NewAccount()
	acc.CaseSensitive = true

	found := e.Extract(t.Context(), "hello @Anna and @joe", "someauthor", acc)
	require.Equal(t, []string{"joe"}, names(found))
}

func TestExtractTruncatesDotRuns(t *testing.T) {
	t.Parallel()

	e := newExtractor(t, nil)
	found := extract(t, e, "ask @anna..really")
	require.Equal(t, []string{"anna"}, names(found))
}

func TestExtractTrailingContext(t *testing.T) {
	t.Parallel()

	e := newExtractor(t, nil)
	require.Empty(t, extract(t, e, "see @anna(the first one)"))
	require.Empty(t, extract(t, e, "mail me at some@anna.it please"))
}

func TestExtractLeadingGuard(t *testing.T) {
	t.Parallel()

	e := newExtractor(t, nil)
	require.Empty(t, extract(t, e, "https://site.org/@anna/post-title x"))
	require.Empty(t, extract(t, e, "key=@anna"))
}

func TestExtractAuthorCollision(t *testing.T) {
	t.Parallel()

	e := newExtractor(t, nil)
	found := e.Extract(t.Context(), "I am @some-author23 and also @someauthor", "some.author", *core.NewAccount())
	require.Empty(t, found)
}

func TestExtractIgnoredSuffixes(t *testing.T) {
	t.Parallel()

	e := newExtractor(t, nil)
	require.Empty(t, extract(t, e, "look at @photo.jpg and @example.com here"))
}

func TestExtractIgnoreList(t *testing.T) {
	t.Parallel()

	e := newExtractor(t, nil)
	acc := *core.NewAccount()
	acc.Ignored = []string{"styx"}

	found := e.Extract(t.Context(), "ping @styx and @anna", "someauthor", acc)
	require.Equal(t, []string{"anna"}, names(found))
}

func TestExtractSkipsCodeAndQuotes(t *testing.T) {
	t.Parallel()

	e := newExtractor(t, nil)
	bodies := []string{
		"use `@joe` to ping",
		"```\n@joe does things\n```",
		"<code>@joe</code>",
		"> @joe said so",
		"<blockquote>@joe said so</blockquote>",
	}
	for _, body := range bodies {
		require.Empty(t, extract(t, e, body), "body: %s", body)
	}
}

func TestExtractMentionAfterQuoteSurvives(t *testing.T) {
	t.Parallel()

	e := newExtractor(t, nil)
	found := extract(t, e, "@joe wrote:\n> some quoted line\nthanks")
	require.Equal(t, []string{"joe"}, names(found))
}

func TestExtractAltTextOnly(t *testing.T) {
	t.Parallel()

	e := newExtractor(t, nil)
	require.Empty(t, extract(t, e, "![photo of @joe](https://img.example/1.png)"))

	// Mentioned in the alt text and in prose: kept.
	found := extract(t, e, "![photo of @joe](https://img.example/1.png) thanks @joe")
	require.Equal(t, []string{"joe"}, names(found))
}

func TestExtractSocialContext(t *testing.T) {
	t.Parallel()

	e := newExtractor(t, nil)
	require.Empty(t, extract(t, e, "follow me on insta @joe for more"))
	require.Empty(t, extract(t, e, "@joe is my twitter handle"))

	found := extract(t, e, "thanks for the help @joe")
	require.Equal(t, []string{"joe"}, names(found))
}

func TestExtractLinkedPostTitle(t *testing.T) {
	t.Parallel()

	content := &fakeContent{posts: map[string]core.Content{
		"joe/how-to-cook": {Title: "How to Cook"},
	}}
	e := newExtractor(t, content)

	body := "cross-posted from [@joe/how-to-cook](https://steemit.com/food/@joe/how-to-cook)"
	require.Empty(t, extract(t, e, body))
}

func TestExtractLinkedPostTitleMismatchKept(t *testing.T) {
	t.Parallel()

	content := &fakeContent{posts: map[string]core.Content{
		"joe/how-to-cook": {Title: "Completely Different"},
	}}
	e := newExtractor(t, content)

	body := "cross-posted from [@joe/how-to-cook](https://steemit.com/food/@joe/how-to-cook)"
	require.Equal(t, []string{"joe"}, names(extract(t, e, body)))
}

func TestExtractLinkedPostLookupFailureKeepsMention(t *testing.T) {
	t.Parallel()

	e := newExtractor(t, &fakeContent{err: errors.New("node down")})
	body := "cross-posted from [@joe/how-to-cook](https://steemit.com/food/@joe/how-to-cook)"
	require.Equal(t, []string{"joe"}, names(extract(t, e, body)))
}

func TestExcerptsStripImagesAndHighlight(t *testing.T) {
	t.Parallel()

	e := newExtractor(t, nil)
	body := "![pic](https://img.example/a.png) thanks @anna for the help"
	found := extract(t, e, body)
	require.Len(t, found, 1)
	require.Len(t, found[0].Excerpts, 1)
	require.Contains(t, found[0].Excerpts[0], "<strong>@anna</strong>")
	require.NotContains(t, found[0].Excerpts[0], "img.example")
}

func TestExtractTooShortDropped(t *testing.T) {
	t.Parallel()

	e := newExtractor(t, nil)
	require.Empty(t, extract(t, e, "hey @jo..x what gives"))
}
