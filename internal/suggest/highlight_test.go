package suggest

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHighlightDifferences(t *testing.T) {
	t.Parallel()

	cases := []struct {
		username, correction, want string
	}{
		{"anna", "anna", "anna"},
		{"annb", "anna", "ann<strong>a</strong>"},
		{"nana", "anna", "<strong>a</strong><strong>n</strong>na"},
		{"annaa", "anna", "anna"},                   // delete, nothing to highlight
		{"anna", "hanna", "<strong>h</strong>anna"}, // insert realigns
		{"annaxx", "anna", "anna"},                  // two deletes returned bare
	}
	for _, c := range cases {
		require.Equal(t, c.want, highlightDifferences(c.username, c.correction), "%s -> %s", c.username, c.correction)
	}
}
