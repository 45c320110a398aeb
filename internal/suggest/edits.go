package suggest

import (
	"regexp"
)

// alphabet is the full character set usernames are built from.
const alphabet = "abcdefghijklmnopqrstuvwxyz0123456789.-"

// invalidUsernameRE rejects strings that cannot be usernames: a digit, dot or
// hyphen leading a segment, punctuation closing one, doubled hyphens, more
// than 16 characters, or a dot-delimited segment shorter than 3.
var invalidUsernameRE = regexp.MustCompile(`(^|\.)[\d.-]|[.-](\.|$)|--|.{17}|(^|\.).{0,2}(\.|$)`)

// ValidUsername reports whether s could be an account name.
func ValidUsername(s string) bool {
	return !invalidUsernameRE.MatchString(s)
}

// editSet accumulates generated neighbors, preserving first-generation order
// so ranking stays deterministic.
type editSet struct {
	seen  map[string]struct{}
	items []string
}

func newEditSet() *editSet {
	return &editSet{seen: map[string]struct{}{}}
}

func (s *editSet) add(edit string, mustBeValid bool) {
	if mustBeValid && !ValidUsername(edit) {
		return
	}
	if _, ok := s.seen[edit]; ok {
		return
	}
	s.seen[edit] = struct{}{}
	s.items = append(s.items, edit)
}

// Edits1 generates the full edit-distance-1 neighborhood of username over the
// username alphabet: deletions, adjacent transpositions of distinct
// characters, substitutions and insertions, in that order. With mustBeValid
// set, strings that cannot be usernames are filtered out.
func Edits1(username string, mustBeValid bool) []string {
	set := newEditSet()
	edits1(username, set, mustBeValid)
	return set.items
}

// Edits2 expands a distance-1 neighborhood to distance 2, always filtering
// for validity to bound the search space.
func Edits2(edits []string) []string {
	set := newEditSet()
	for _, edit := range edits {
		edits1(edit, set, true)
	}
	return set.items
}

func edits1(username string, set *editSet, mustBeValid bool) {
	deletes(username, set, mustBeValid)
	transposes(username, set, mustBeValid)
	replaces(username, set, mustBeValid)
	inserts(username, set, mustBeValid)
}

func deletes(username string, set *editSet, mustBeValid bool) {
	for i := 0; i < len(username); i++ {
		set.add(username[:i]+username[i+1:], mustBeValid)
	}
}

func transposes(username string, set *editSet, mustBeValid bool) {
	for i := 0; i+1 < len(username); i++ {
		if username[i] == username[i+1] {
			continue
		}
		b := []byte(username)
		b[i], b[i+1] = b[i+1], b[i]
		set.add(string(b), mustBeValid)
	}
}

func replaces(username string, set *editSet, mustBeValid bool) {
	for i := 0; i < len(username); i++ {
		for j := 0; j < len(alphabet); j++ {
			if username[i] == alphabet[j] {
				continue
			}
			set.add(username[:i]+string(alphabet[j])+username[i+1:], mustBeValid)
		}
	}
}

func inserts(username string, set *editSet, mustBeValid bool) {
	for i := 0; i <= len(username); i++ {
		for j := 0; j < len(alphabet); j++ {
			set.add(username[:i]+string(alphabet[j])+username[i:], mustBeValid)
		}
	}
}
