package clicfg_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"checky/pkg/clicfg"
)

type testConfig struct {
	Name     string        `flag:"name"`
	Count    int           `flag:"count"`
	Wait     time.Duration `flag:"wait"`
	Nodes    []string      `flag:"nodes"`
	Verbose  bool          `flag:"verbose"`
	Untagged string
}

func TestParseFlags(t *testing.T) {
	t.Parallel()

	var cfg testConfig
	cfg.Untagged = "kept"

	cmd := &cli.Command{
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Value: "default"},
			&cli.IntFlag{Name: "count"},
			&cli.DurationFlag{Name: "wait"},
			&cli.StringSliceFlag{Name: "nodes"},
			&cli.BoolFlag{Name: "verbose"},
		},
		Action: func(_ context.Context, c *cli.Command) error {
			return clicfg.ParseFlags(c, &cfg)
		},
	}

	err := cmd.Run(t.Context(), []string{
		"test",
		"--name", "checky",
		"--count", "3",
		"--wait", "5s",
		"--nodes", "a",
		"--nodes", "b",
		"--verbose",
	})
	require.NoError(t, err)

	require.Equal(t, "checky", cfg.Name)
	require.Equal(t, 3, cfg.Count)
	require.Equal(t, 5*time.Second, cfg.Wait)
	require.Equal(t, []string{"a", "b"}, cfg.Nodes)
	require.True(t, cfg.Verbose)
	require.Equal(t, "kept", cfg.Untagged)
}

func TestParseFlagsRejectsNonPointer(t *testing.T) {
	t.Parallel()

	err := clicfg.ParseFlags(&cli.Command{}, testConfig{})
	require.ErrorIs(t, err, clicfg.ErrCannotParseFlags)
}
