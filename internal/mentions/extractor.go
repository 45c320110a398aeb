// Package mentions scans post bodies for @-style mention candidates. The
// exclusion rules are load-bearing business logic: they decide which tokens
// are treated as mentions at all, so each one is an independently testable
// predicate run in a fixed order.
package mentions

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"checky/internal/config"
	"checky/internal/core"
)

// Mention is a candidate username together with the rendered excerpts of the
// text surrounding each of its occurrences.
type Mention struct {
	Name     string
	Excerpts []string
}

var mentionRE = regexp.MustCompile(`@([a-zA-Z][a-zA-Z0-9.-]{1,16}[a-zA-Z0-9])`)

type Extractor struct {
	Logger  *slog.Logger
	Content core.ContentAPI
	Config  *config.Config

	socialRE *regexp.Regexp
	suffixes map[string]bool
}

func (e *Extractor) Init(_ context.Context) error {
	e.Logger = e.Logger.With("component", "mentions.Extractor")

	escaped := make([]string, 0, len(e.Config.SocialNetworks))
	for _, name := range e.Config.SocialNetworks {
		escaped = append(escaped, regexp.QuoteMeta(name))
	}
	e.socialRE = regexp.MustCompile(`(?i)` + strings.Join(escaped, "|"))

	e.suffixes = map[string]bool{}
	for _, suffix := range e.Config.IgnoredSuffixes {
		e.suffixes[suffix] = true
	}
	return nil
}

// Extract returns the candidate mentions of body in order of first
// appearance. Lookup failures during the linked-post exclusion are logged
// and the exclusion skipped; extraction itself cannot fail.
func (e *Extractor) Extract(ctx context.Context, body, author string, account core.Account) []Mention {
	occs := e.scan(body, account)
	if len(occs) == 0 {
		return nil
	}

	quoted := quotedRegions(body)
	alts := altRegions(body)
	links := postLinks(body)

	var out []Mention
	for _, m := range occs {
		if e.excluded(ctx, body, author, account, m, quoted, alts, links) {
			continue
		}
		out = append(out, Mention{
			Name:     m.name,
			Excerpts: e.excerpts(body, m),
		})
	}
	return out
}

// occurrence is one grammatical hit of a mention token in the body.
type occurrence struct {
	start, end int // span of "@name", end exclusive
}

type match struct {
	name string
	occs []occurrence
}

// scan finds every token of the mention shape, applying the occurrence-level
// rules: leading guard, ".." truncation, trailing-context and case folding.
// Occurrences of the same normalized name are grouped in first-seen order.
func (e *Extractor) scan(body string, account core.Account) []match {
	var ordered []match
	index := map[string]int{}

	for _, loc := range mentionRE.FindAllStringSubmatchIndex(body, -1) {
		start, end := loc[0], loc[1]
		name := body[loc[2]:loc[3]]

		if !leadingOK(body, start) {
			continue
		}

		// A ".." run ends the username; keep the part before it.
		if i := strings.Index(name, ".."); i >= 0 {
			name = name[:i]
			end = loc[2] + i
		}
		if len(name) < 3 {
			continue
		}
		if !trailingOK(body, end) {
			continue
		}

		if account.CaseSensitive {
			// On-chain usernames are lowercase, so a cased token
			// is not a mention for a case-sensitive account.
			if name != strings.ToLower(name) {
				continue
			}
		} else {
			name = strings.ToLower(name)
		}

		if i, ok := index[name]; ok {
			ordered[i].occs = append(ordered[i].occs, occurrence{start, end})
			continue
		}
		index[name] = len(ordered)
		ordered = append(ordered, match{name: name, occs: []occurrence{{start, end}}})
	}
	return ordered
}

func leadingOK(body string, start int) bool {
	if start == 0 {
		return true
	}
	prev := body[start-1]
	return !isWordByte(prev) && prev != '/' && prev != '=' && prev != '#'
}

// trailingOK rejects tokens glued to more text: a word character, an opening
// parenthesis, or a dot followed by a letter (URL continuation).
func trailingOK(body string, end int) bool {
	if end >= len(body) {
		return true
	}
	next := body[end]
	if isWordByte(next) || next == '(' {
		return false
	}
	if next == '.' && end+1 < len(body) && isLetterByte(body[end+1]) {
		return false
	}
	return true
}

func isWordByte(b byte) bool {
	return b == '_' || isLetterByte(b) || b >= '0' && b <= '9'
}

func isLetterByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z'
}
