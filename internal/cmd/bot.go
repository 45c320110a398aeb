package cmd

import (
	"context"

	"github.com/urfave/cli/v3"
	"github.com/zhulik/pal"

	"checky/internal/cmd/flags"
	"checky/internal/commands"
	"checky/internal/core"
	"checky/internal/dispatch"
	"checky/internal/ledger"
	"checky/internal/mentions"
	"checky/internal/metrics"
	"checky/internal/recheck"
	"checky/internal/replies"
	"checky/internal/resolver"
	"checky/internal/steem"
	"checky/internal/suggest"
	"checky/internal/upvoter"
)

var botCmd = &cli.Command{
	Name:  "bot",
	Usage: "Stream operations from the blockchain and check the mentions they make",
	Flags: []cli.Flag{
		flags.Account,
		flags.Superuser,
		flags.PostingKey,
		flags.DataDir,
		flags.RequestNodes,
		flags.StreamNodes,
		flags.FlushInterval,
		flags.ReplySpacing,
		flags.FirstGraceWindow,
		flags.FinalGraceWindow,
		flags.UpvoteInterval,
		flags.MetricsAddr,
	},
	Action: func(ctx context.Context, c *cli.Command) error {
		// One client instance backs every read-side interface.
		client := &steem.Client{}

		return run(ctx, c,
			pal.Provide(client),
			pal.Provide[core.AccountAPI](client),
			pal.Provide[core.ContentAPI](client),
			pal.Provide[core.SocialAPI](client),
			pal.Provide[core.Broadcaster](&steem.Broadcaster{}),
			pal.Provide[core.OperationStream](&steem.Stream{}),
			pal.Provide[core.ReplySink](&replies.Queue{}),
			pal.Provide[core.CandidateSink](&upvoter.Upvoter{}),
			pal.Provide(&ledger.Ledger{}),
			pal.Provide(&resolver.Resolver{}),
			pal.Provide(&mentions.Extractor{}),
			pal.Provide(&suggest.Suggester{}),
			pal.Provide(&commands.Interpreter{}),
			pal.Provide(&recheck.Store{}),
			pal.Provide(&recheck.Scheduler{}),
			pal.Provide(&dispatch.Dispatcher{}),
			pal.Provide(&metrics.Server{}),
		)
	},
}
