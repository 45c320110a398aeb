package retry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"checky/pkg/retry"
)

func TestNodesRotate(t *testing.T) {
	t.Parallel()

	nodes := retry.NewNodes([]string{"a", "b", "c"})

	require.Equal(t, "a", nodes.Current())
	require.Equal(t, "b", nodes.Rotate())
	require.Equal(t, "c", nodes.Rotate())
	require.Equal(t, "a", nodes.Rotate())
	require.Equal(t, "a", nodes.Current())
}

func TestForeverRotatesUntilSuccess(t *testing.T) {
	t.Parallel()

	nodes := retry.NewNodes([]string{"a", "b"})

	var attempts []string
	var reported []string

	err := retry.Forever(t.Context(), nodes,
		func(_ error, node string) {
			reported = append(reported, node)
		},
		func(node string) error {
			attempts = append(attempts, node)
			if len(attempts) < 3 {
				return errors.New("down")
			}
			return nil
		})

	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "a"}, attempts)
	require.Equal(t, []string{"a", "b"}, reported)
}

func TestForeverStopsOnContextCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(t.Context())
	nodes := retry.NewNodes([]string{"a"})

	err := retry.Forever(ctx, nodes, nil, func(string) error {
		cancel()
		return errors.New("down")
	})
	require.ErrorIs(t, err, context.Canceled)
}
