// Package commands interprets the "!command" replies users write under the
// bot's comments and answers each one with a reply of its own.
package commands

import (
	"context"
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/Jeffail/gabs"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"checky/internal/config"
	"checky/internal/core"
	"checky/internal/ledger"
	"checky/internal/recheck"
	"checky/internal/resolver"
)

var commandsHandled = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "checky_commands_total",
	Help: "The total number of handled user commands",
}, []string{"command"})

var commandRE = regexp.MustCompile(`^\s*!([A-Za-z]+)(?:\s+(.+))?`)

var argSplitRE = regexp.MustCompile(`[\s,]+`)

type Kind int

const (
	KindUnknown Kind = iota
	KindMode
	KindIgnore
	KindUnignore
	KindDelay
	KindCase
	KindState
	KindWhere
	KindHelp
)

func (k Kind) String() string {
	switch k {
	case KindMode:
		return "mode"
	case KindIgnore:
		return "ignore"
	case KindUnignore:
		return "unignore"
	case KindDelay:
		return "delay"
	case KindCase:
		return "case"
	case KindState:
		return "state"
	case KindWhere:
		return "where"
	case KindHelp:
		return "help"
	default:
		return "unknown"
	}
}

// Command is one parsed user command. Name keeps the word the user actually
// typed so error replies can echo it back.
type Command struct {
	Kind Kind
	Name string
	Args []string
}

// Parse extracts a command from a reply body. The second return is false
// when the body does not start with a command at all.
func Parse(body string) (Command, bool) {
	match := commandRE.FindStringSubmatch(body)
	if match == nil {
		return Command{}, false
	}

	cmd := Command{Name: match[1]}
	if match[2] != "" {
		for _, arg := range argSplitRE.Split(match[2], -1) {
			if arg != "" {
				cmd.Args = append(cmd.Args, arg)
			}
		}
	}

	switch match[1] {
	case "on", "off":
		// Shortcuts for !mode on and !mode off.
		cmd.Kind = KindMode
		cmd.Args = append([]string{match[1]}, cmd.Args...)
	case "mode", "switch":
		cmd.Kind = KindMode
	case "ignore":
		cmd.Kind = KindIgnore
	case "unignore":
		cmd.Kind = KindUnignore
	case "wait", "delay":
		cmd.Kind = KindDelay
	case "case":
		cmd.Kind = KindCase
	case "state":
		cmd.Kind = KindState
	case "where", "details", "surrounding":
		cmd.Kind = KindWhere
	case "help":
		cmd.Kind = KindHelp
	default:
		cmd.Kind = KindUnknown
	}
	return cmd, true
}

// targetable reports whether the superuser may redirect the command at
// another account with a trailing @name argument. List commands are left
// out: their arguments are usernames already.
func targetable(kind Kind) bool {
	switch kind {
	case KindMode, KindDelay, KindCase, KindState:
		return true
	default:
		return false
	}
}

type Interpreter struct {
	Logger   *slog.Logger
	Config   *config.Config
	Ledger   *ledger.Ledger
	Resolver *resolver.Resolver
	Store    *recheck.Store
	Content  core.ContentAPI
	Queue    core.ReplySink
}

func (i *Interpreter) Init(_ context.Context) error {
	i.Logger = i.Logger.With("component", "commands.Interpreter")
	return nil
}

// Handle parses and executes a command reply. It reports whether the body
// contained a command; every contained command gets an answer enqueued.
func (i *Interpreter) Handle(ctx context.Context, author, permlink, parentPermlink, body string) bool {
	cmd, ok := Parse(body)
	if !ok {
		return false
	}
	commandsHandled.WithLabelValues(cmd.Kind.String()).Inc()

	target := author
	if i.Config.Superuser != "" && author == i.Config.Superuser && targetable(cmd.Kind) {
		if last, rest, ok := trailingTarget(cmd.Args); ok {
			cmd.Args = rest
			target = last
			exists, err := i.Resolver.Exists(ctx, target)
			if err != nil {
				i.Logger.Error("resolving command target failed", "target", target, "error", err)
			}
			if err != nil || !exists {
				msgBody, msgTitle := wrongTargetMessage(target)
				i.reply(author, permlink, msgBody, msgTitle)
				return true
			}
		}
	}
	i.Logger.Info("handling command", "command", cmd.Kind.String(), "author", author, "target", target)

	switch cmd.Kind {
	case KindMode:
		i.handleMode(author, permlink, target, cmd)
	case KindIgnore, KindUnignore:
		i.handleIgnore(author, permlink, target, cmd)
	case KindDelay:
		i.handleDelay(author, permlink, target, cmd)
	case KindCase:
		i.handleCase(author, permlink, target, cmd)
	case KindState:
		account := i.Ledger.Account(target)
		msgBody, msgTitle := stateMessage(string(account.Mode), account.Delay, account.CaseSensitive, account.Ignored)
		i.reply(author, permlink, msgBody, msgTitle)
	case KindWhere:
		i.handleWhere(ctx, author, permlink, parentPermlink, cmd)
	case KindHelp:
		msgBody, msgTitle := helpMessage()
		i.reply(author, permlink, msgBody, msgTitle)
	default:
		msgBody, msgTitle := unknownCommandMessage()
		i.reply(author, permlink, msgBody, msgTitle)
	}
	return true
}

func (i *Interpreter) handleMode(author, permlink, target string, cmd Command) {
	if len(cmd.Args) == 0 {
		msgBody, msgTitle := noModeMessage(cmd.Name)
		i.reply(author, permlink, msgBody, msgTitle)
		return
	}
	switch cmd.Args[0] {
	case "on", "regular", "normal":
		i.Ledger.SetMode(target, core.ModeRegular)
		msgBody, msgTitle := modeSetMessage("regular")
		i.reply(author, permlink, msgBody, msgTitle)
	case "advanced", "plus":
		i.Ledger.SetMode(target, core.ModeAdvanced)
		msgBody, msgTitle := modeSetMessage("advanced")
		i.reply(author, permlink, msgBody, msgTitle)
	case "off":
		i.Ledger.SetMode(target, core.ModeOff)
		msgBody, msgTitle := modeSetMessage("off")
		i.reply(author, permlink, msgBody, msgTitle)
	default:
		msgBody, msgTitle := wrongModeMessage(cmd.Args[0], string(i.Ledger.Account(target).Mode))
		i.reply(author, permlink, msgBody, msgTitle)
	}
}

func (i *Interpreter) handleIgnore(author, permlink, target string, cmd Command) {
	names := make([]string, 0, len(cmd.Args))
	for _, arg := range cmd.Args {
		names = append(names, strings.ToLower(strings.TrimPrefix(arg, "@")))
	}
	if len(names) == 0 {
		msgBody, msgTitle := noUsernameMessage(cmd.Name)
		i.reply(author, permlink, msgBody, msgTitle)
		return
	}
	if cmd.Kind == KindIgnore {
		i.Ledger.AddIgnored(target, names...)
		msgBody, msgTitle := ignoredMessage(target, names)
		i.reply(author, permlink, msgBody, msgTitle)
		return
	}
	i.Ledger.RemoveIgnored(target, names...)
	msgBody, msgTitle := unignoredMessage(target, names)
	i.reply(author, permlink, msgBody, msgTitle)
}

func (i *Interpreter) handleDelay(author, permlink, target string, cmd Command) {
	if len(cmd.Args) == 0 {
		msgBody, msgTitle := noDelayMessage(cmd.Name)
		i.reply(author, permlink, msgBody, msgTitle)
		return
	}
	delay, err := strconv.Atoi(cmd.Args[0])
	if err != nil {
		msgBody, msgTitle := wrongDelayMessage()
		i.reply(author, permlink, msgBody, msgTitle)
		return
	}
	i.Ledger.SetDelay(target, delay)
	msgBody, msgTitle := delaySetMessage(delay)
	i.reply(author, permlink, msgBody, msgTitle)
}

func (i *Interpreter) handleCase(author, permlink, target string, cmd Command) {
	if len(cmd.Args) == 0 {
		msgBody, msgTitle := wrongCaseMessage()
		i.reply(author, permlink, msgBody, msgTitle)
		return
	}
	switch {
	case strings.HasPrefix(strings.ToLower(cmd.Args[0]), "s"):
		i.Ledger.SetCaseSensitive(target, true)
		msgBody, msgTitle := caseSetMessage(true)
		i.reply(author, permlink, msgBody, msgTitle)
	case strings.HasPrefix(strings.ToLower(cmd.Args[0]), "i"):
		i.Ledger.SetCaseSensitive(target, false)
		msgBody, msgTitle := caseSetMessage(false)
		i.reply(author, permlink, msgBody, msgTitle)
	default:
		msgBody, msgTitle := wrongCaseMessage()
		i.reply(author, permlink, msgBody, msgTitle)
	}
}

// handleWhere answers with the excerpts stored for the flagged post the
// parent reply was written about. The in-memory record disappears once the
// recheck lifecycle ends, so it falls back to the details the bot embedded
// in the reply's own metadata.
func (i *Interpreter) handleWhere(ctx context.Context, author, permlink, parentPermlink string, cmd Command) {
	var details map[string][]string
	if record, ok := i.Store.ByReplyPermlink(parentPermlink); ok {
		details = record.Details
	} else {
		details = i.storedDetails(ctx, parentPermlink)
	}
	if len(details) == 0 {
		msgBody, msgTitle := noDetailsMessage()
		i.reply(author, permlink, msgBody, msgTitle)
		return
	}

	order := make([]string, 0, len(details))
	for name := range details {
		order = append(order, name)
	}
	sort.Strings(order)

	filter := make([]string, 0, len(cmd.Args))
	for _, arg := range cmd.Args {
		filter = append(filter, strings.ToLower(strings.TrimPrefix(arg, "@")))
	}
	msgBody, msgTitle := whereMessage(details, order, filter)
	i.reply(author, permlink, msgBody, msgTitle)
}

func (i *Interpreter) storedDetails(ctx context.Context, replyPermlink string) map[string][]string {
	content, err := i.Content.GetContent(ctx, i.Config.Account, replyPermlink)
	if err != nil {
		i.Logger.Error("fetching own reply failed", "permlink", replyPermlink, "error", err)
		return nil
	}
	parsed, err := gabs.ParseJSON([]byte(content.JSONMetadata))
	if err != nil {
		return nil
	}
	raw, ok := parsed.Path("details").Data().(map[string]any)
	if !ok {
		return nil
	}

	details := map[string][]string{}
	for name, value := range raw {
		items, ok := value.([]any)
		if !ok {
			continue
		}
		for _, item := range items {
			if excerpt, ok := item.(string); ok {
				details[name] = append(details[name], excerpt)
			}
		}
	}
	return details
}

func (i *Interpreter) reply(author, permlink, body, title string) {
	i.Queue.Enqueue(core.Reply{
		Body:           body,
		ParentAuthor:   author,
		ParentPermlink: permlink,
		Title:          title,
	})
}

// trailingTarget pops a final "@name" argument.
func trailingTarget(args []string) (string, []string, bool) {
	if len(args) == 0 {
		return "", args, false
	}
	last := args[len(args)-1]
	if !strings.HasPrefix(last, "@") {
		return "", args, false
	}
	return strings.ToLower(strings.TrimPrefix(last, "@")), args[:len(args)-1], true
}
