package dispatch

import (
	"strings"
)

// wrongMention is one non-existing mention together with its pre-formatted
// suggestion, empty when the suggester found nothing.
type wrongMention struct {
	Name       string
	Suggestion string
}

// correctionMessage builds the reply body for a post with wrong mentions.
func correctionMessage(author, postType string, wrong []wrongMention) string {
	names := make([]string, 0, len(wrong))
	var suggestions []string
	for _, mention := range wrong {
		names = append(names, "@"+mention.Name)
		if mention.Suggestion != "" {
			suggestions = append(suggestions, mention.Suggestion)
		}
	}

	var b strings.Builder
	b.WriteString("Hi @" + author + ", I'm @checky ! While checking the mentions made in this " + postType + " I found out that ")
	b.WriteString(joinAnd(names))
	if len(names) > 1 {
		b.WriteString(" don't exist on Steem.")
	} else {
		b.WriteString(" doesn't exist on Steem.")
	}

	switch {
	case len(suggestions) > 0:
		b.WriteString(" Did you mean to write " + joinAnd(suggestions) + " ?")
		if len(suggestions) < len(names) {
			b.WriteString(" And maybe you made some typos ?")
		}
	case len(names) > 1:
		b.WriteString(" Maybe you made some typos ?")
	default:
		b.WriteString(" Maybe you made a typo ?")
	}
	return b.String()
}

func correctionTitle(postType, title string) string {
	if title == "" {
		return "Possible wrong mentions found in your " + postType
	}
	return "Possible wrong mentions found in " + title
}

// joinAnd renders a list as "a, b and c".
func joinAnd(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	default:
		return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
	}
}
