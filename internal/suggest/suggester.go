// Package suggest guesses the username a wrong mention was meant to be. The
// attempt order is significant: it decides which suggestion a user sees, so
// it must not be rearranged.
package suggest

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"checky/internal/core"
	"checky/internal/ledger"
	"checky/internal/resolver"
)

// mentionPrefix renders an at-sign that the frontend will not relink.
const mentionPrefix = "@<em></em>"

type Suggester struct {
	Logger   *slog.Logger
	Ledger   *ledger.Ledger
	Resolver *resolver.Resolver
	Social   core.SocialAPI
}

func (s *Suggester) Init(_ context.Context) error {
	s.Logger = s.Logger.With("component", "suggest.Suggester")
	return nil
}

// Suggest returns a pre-formatted correction for wrong, the "#tag" form when
// the mention looks like a hashtag, or "" when there is nothing to offer.
// siblings are the mentions made correctly elsewhere in the same post.
func (s *Suggester) Suggest(ctx context.Context, wrong, author string, siblings, tags []string) (string, error) {
	others := siblings
	if !slices.Contains(others, author) {
		others = append([]string{author}, others...)
	}

	// Punctuation-normalized variation of a username already in the post.
	wrongNP := stripPunct(wrong)
	for _, mention := range others {
		mentionNP := stripPunct(mention)
		if wrongNP == mentionNP || "the"+wrongNP == mentionNP {
			return mentionPrefix + highlightDifferences(wrong, mention), nil
		}
	}

	// Existing usernames one edit away, then two.
	edits := Edits1(wrong, false)
	candidates, err := s.Resolver.Resolve(ctx, edits)
	if err != nil {
		return "", err
	}
	if len(candidates) == 0 {
		candidates, err = s.Resolver.Resolve(ctx, Edits2(edits))
		if err != nil {
			return "", err
		}
	}

	if len(candidates) > 0 {
		return mentionPrefix + highlightDifferences(wrong, s.rank(ctx, candidates, author, others)), nil
	}

	// "the"-prefixed accounts are a recurring typo target (thejoe vs joe).
	exists, err := s.Resolver.Exists(ctx, "the"+wrong)
	if err != nil {
		return "", err
	}
	if exists {
		return mentionPrefix + "<strong>the</strong>" + wrong, nil
	}

	// A tag typed as a mention.
	isTag, err := s.isTag(ctx, wrong, author, tags)
	if err != nil {
		return "", err
	}
	if isTag {
		return "#" + wrong, nil
	}

	return "", nil
}

// rank picks the best of several existing neighbors: one already mentioned in
// the post or in the author's history, then one inside the author's follow
// circle, then the globally most-mentioned one.
func (s *Suggester) rank(ctx context.Context, candidates []string, author string, others []string) string {
	if len(candidates) == 1 {
		return candidates[0]
	}

	history := s.Ledger.Account(author).Mentioned
	for _, candidate := range candidates {
		if slices.Contains(others, candidate) || slices.Contains(history, candidate) {
			return candidate
		}
	}

	if s.Social != nil {
		circle, err := s.Social.FollowCircle(ctx, author)
		if err != nil {
			s.Logger.Warn("follow-circle lookup failed", "author", author, "error", err)
		} else {
			for _, candidate := range candidates {
				if _, ok := circle[candidate]; ok {
					return candidate
				}
			}
		}
	}

	best := candidates[0]
	for _, candidate := range candidates[1:] {
		if s.Ledger.Occurrences(candidate) > s.Ledger.Occurrences(best) {
			best = candidate
		}
	}
	return best
}

func (s *Suggester) isTag(ctx context.Context, word, author string, tags []string) (bool, error) {
	if slices.Contains(tags, word) {
		return true, nil
	}
	if s.Social == nil {
		return false, nil
	}
	trending, err := s.Social.TrendingTags(ctx)
	if err != nil {
		return false, err
	}
	if slices.Contains(trending, word) {
		return true, nil
	}
	used, err := s.Social.TagsByAuthor(ctx, author)
	if err != nil {
		return false, err
	}
	return slices.Contains(used, word), nil
}

var punctStripper = strings.NewReplacer(
	"0", "", "1", "", "2", "", "3", "", "4", "",
	"5", "", "6", "", "7", "", "8", "", "9", "",
	".", "", "-", "",
)

func stripPunct(s string) string {
	return strings.ToLower(punctStripper.Replace(s))
}
