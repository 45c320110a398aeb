package flags

import (
	"fmt"
	"slices"

	"github.com/urfave/cli/v3"

	"checky/internal/config"
)

var defaults = config.Defaults()

var validLogLevels = []string{"debug", "info", "warn", "error"}

var Account = &cli.StringFlag{
	Name:    "account",
	Aliases: []string{"a"},
	Usage:   "The account the bot posts and votes from",
	Value:   defaults.Account,
	Sources: cli.EnvVars("CHECKY_ACCOUNT"),
}

var Superuser = &cli.StringFlag{
	Name:    "superuser",
	Usage:   "The account allowed to run commands on behalf of other users",
	Value:   defaults.Superuser,
	Sources: cli.EnvVars("CHECKY_SUPERUSER"),
}

var PostingKey = &cli.StringFlag{
	Name:    "posting-key",
	Usage:   "The WIF posting key of the bot account",
	Sources: cli.EnvVars("CHECKY_POSTING_KEY"),
}

var DataDir = &cli.StringFlag{
	Name:    "data-dir",
	Usage:   "The directory state snapshots are written to",
	Value:   defaults.DataDir,
	Sources: cli.EnvVars("CHECKY_DATA_DIR"),
}

// TODO: extract custom EnumFlag
var LogLevel = &cli.StringFlag{
	Name:    "log-level",
	Aliases: []string{"l"},
	Usage:   "The level of the logs",
	Value:   defaults.LogLevel,
	Validator: func(value string) error {
		if !slices.Contains(validLogLevels, value) {
			return fmt.Errorf("invalid log level: %s, allowed values are: %s", value, validLogLevels)
		}
		return nil
	},
	Sources: cli.EnvVars("LOG_LEVEL"),
}

var RequestNodes = &cli.StringSliceFlag{
	Name:    "request-nodes",
	Usage:   "The HTTP RPC nodes used for reads and broadcasts, in failover order",
	Value:   defaults.RequestNodes,
	Sources: cli.EnvVars("CHECKY_REQUEST_NODES"),
}

var StreamNodes = &cli.StringSliceFlag{
	Name:    "stream-nodes",
	Usage:   "The websocket RPC nodes used for the block stream, in failover order",
	Value:   defaults.StreamNodes,
	Sources: cli.EnvVars("CHECKY_STREAM_NODES"),
}

var FlushInterval = &cli.DurationFlag{
	Name:    "flush-interval",
	Usage:   "How often the account ledger snapshot is written to disk",
	Value:   defaults.FlushInterval,
	Sources: cli.EnvVars("CHECKY_FLUSH_INTERVAL"),
}

var ReplySpacing = &cli.DurationFlag{
	Name:    "reply-spacing",
	Usage:   "The minimum delay between two broadcast comments",
	Value:   defaults.ReplySpacing,
	Sources: cli.EnvVars("CHECKY_REPLY_SPACING"),
}

var FirstGraceWindow = &cli.DurationFlag{
	Name:    "first-grace-window",
	Usage:   "How long a flagged post has before its first recheck",
	Value:   defaults.FirstGraceWindow,
	Sources: cli.EnvVars("CHECKY_FIRST_GRACE_WINDOW"),
}

var FinalGraceWindow = &cli.DurationFlag{
	Name:    "final-grace-window",
	Usage:   "How long a still-wrong post has before its final recheck",
	Value:   defaults.FinalGraceWindow,
	Sources: cli.EnvVars("CHECKY_FINAL_GRACE_WINDOW"),
}

var UpvoteInterval = &cli.DurationFlag{
	Name:    "upvote-interval",
	Usage:   "How often a random fixed post gets upvoted",
	Value:   defaults.UpvoteInterval,
	Sources: cli.EnvVars("CHECKY_UPVOTE_INTERVAL"),
}

var MetricsAddr = &cli.StringFlag{
	Name:    "metrics-addr",
	Usage:   "The address the metrics server listens on",
	Value:   defaults.MetricsAddr,
	Sources: cli.EnvVars("CHECKY_METRICS_ADDR"),
}
