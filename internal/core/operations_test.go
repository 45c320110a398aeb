package core_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"checky/internal/core"
)

func TestOperationAccounts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		op   core.Operation
		want []string
	}{
		{
			name: "comment",
			op: core.Operation{Type: "comment", Data: map[string]any{
				"author":        "anna",
				"parent_author": "bob",
			}},
			want: []string{"anna", "bob"},
		},
		{
			name: "top level comment skips empty parent",
			op: core.Operation{Type: "comment", Data: map[string]any{
				"author":        "anna",
				"parent_author": "",
			}},
			want: []string{"anna"},
		},
		{
			name: "vote",
			op: core.Operation{Type: "vote", Data: map[string]any{
				"voter":  "anna",
				"author": "bob",
			}},
			want: []string{"anna", "bob"},
		},
		{
			name: "transfer",
			op: core.Operation{Type: "transfer", Data: map[string]any{
				"from": "anna",
				"to":   "bob",
			}},
			want: []string{"anna", "bob"},
		},
		{
			name: "escrow release carries five accounts",
			op: core.Operation{Type: "escrow_release", Data: map[string]any{
				"from":     "a",
				"to":       "b",
				"agent":    "c",
				"who":      "a",
				"receiver": "b",
			}},
			want: []string{"a", "b", "c", "a", "b"},
		},
		{
			name: "unknown type",
			op:   core.Operation{Type: "custom_json", Data: map[string]any{"id": "follow"}},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, tt.op.Accounts())
		})
	}
}

func TestOperationAsComment(t *testing.T) {
	t.Parallel()

	op := core.Operation{Type: "comment", Data: map[string]any{
		"author":          "anna",
		"permlink":        "my-post",
		"parent_author":   "",
		"parent_permlink": "steem",
		"title":           "My post",
		"body":            "Hello @bob",
		"json_metadata":   `{"tags":["steem"]}`,
	}}

	comment, ok := op.AsComment()
	require.True(t, ok)
	require.Equal(t, "anna", comment.Author)
	require.Equal(t, "my-post", comment.Permlink)
	require.Equal(t, "steem", comment.ParentPermlink)
	require.Equal(t, "Hello @bob", comment.Body)

	_, ok = core.Operation{Type: "vote"}.AsComment()
	require.False(t, ok)
}

func TestOperationAsVote(t *testing.T) {
	t.Parallel()

	op := core.Operation{Type: "vote", Data: map[string]any{
		"voter":    "anna",
		"author":   "bob",
		"permlink": "my-post",
		"weight":   float64(-10000),
	}}

	vote, ok := op.AsVote()
	require.True(t, ok)
	require.Equal(t, "anna", vote.Voter)
	require.Equal(t, -10000, vote.Weight)

	_, ok = core.Operation{Type: "comment"}.AsVote()
	require.False(t, ok)
}
