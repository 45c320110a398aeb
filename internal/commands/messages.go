package commands

import (
	"fmt"
	"strings"
)

// Reply texts. The wording is part of the bot's public personality, so the
// builders keep it in one place instead of scattering format strings over
// the handlers.

func modeSetMessage(mode string) (string, string) {
	switch mode {
	case "regular":
		return "Your account has been set to regular. You will now only get your mentions checked for posts you make.",
			"Account set to regular"
	case "advanced":
		return "Your account has been set to advanced. You will now get your mentions checked for posts and comments you make.",
			"Account set to advanced"
	default:
		return "Your account has been set to off. None of your mentions will now be checked whatsoever.",
			"Account set to off"
	}
}

func wrongModeMessage(mode, current string) (string, string) {
	return fmt.Sprintf("The %s mode doesn't exist. Your account is currently set to %s. To switch it to regular, advanced or off, please write `!mode [regular-advanced-off]`.", mode, current),
		"Wrong mode specified"
}

func noModeMessage(command string) (string, string) {
	return fmt.Sprintf("You didn't specify any mode to switch to. Please try again by using `!%s regular`, `!%s advanced` or `!%s off`.", command, command, command),
		"No mode specified"
}

func ignoredMessage(target string, mentions []string) (string, string) {
	return fmt.Sprintf("The following mentions will now be ignored when made by you: %s.\nIf for any reason you want to make @checky stop ignoring them, reply to any of my posts with `!unignore username1 username2 ...`.", strings.Join(mentions, ", ")),
		"Added some ignored mentions for @" + target
}

func unignoredMessage(target string, mentions []string) (string, string) {
	return fmt.Sprintf("The following mentions will now be checked by @checky when made by you: %s.\nIf for any reason you want to make @checky start ignoring them again, reply to any of my posts with `!ignore username1 username2 ...`.", strings.Join(mentions, ", ")),
		"Removed some ignored mentions for @" + target
}

func noUsernameMessage(command string) (string, string) {
	return fmt.Sprintf("You didn't specify any username to %s. Please try again by using the format `!%s username1 username2`.", command, command),
		"No username specified"
}

func delaySetMessage(delay int) (string, string) {
	if delay > 0 {
		return fmt.Sprintf("The delay has been set to %d %s. @checky will now wait %d %s before checking your mentions.", delay, minutes(delay), delay, minutes(delay)),
			fmt.Sprintf("Delay set to %d %s", delay, minutes(delay))
	}
	return fmt.Sprintf("The delay has been set to %d minutes. @checky will instantly check your mentions when you post.", delay),
		fmt.Sprintf("Delay set to %d %s", delay, minutes(delay))
}

func wrongDelayMessage() (string, string) {
	return "You didn't correctly specify the delay. Please try again by using a number to represent the delay.",
		"Delay wrongly specified"
}

func noDelayMessage(command string) (string, string) {
	return fmt.Sprintf("You didn't specify the delay. Please try again by using `!%s minutes`.", command),
		"No delay specified"
}

func caseSetMessage(sensitive bool) (string, string) {
	if sensitive {
		return "Your mentions are now matched case sensitively. Mentions containing uppercase letters will be treated as decoration, not as usernames.",
			"Account set to case sensitive"
	}
	return "Your mentions are now matched case insensitively. Mentions containing uppercase letters will be checked like any other mention.",
		"Account set to case insensitive"
}

func wrongCaseMessage() (string, string) {
	return "You didn't correctly specify the case matching. Please try again by using `!case sensitive` or `!case insensitive`.",
		"Case matching wrongly specified"
}

func stateMessage(mode string, delay int, sensitive bool, ignored []string) (string, string) {
	ignoredPart := "No mentions are being ignored by @checky"
	if len(ignored) > 0 {
		ignoredPart = "The following mentions are being ignored by @checky: " + strings.Join(ignored, ", ")
	}
	casePart := "insensitively"
	if sensitive {
		casePart = "sensitively"
	}
	return fmt.Sprintf("Your account is currently set to %s. Your posts are being checked %d %s after being posted. Your mentions are matched case %s. %s.", mode, delay, minutes(delay), casePart, ignoredPart),
		"Account state"
}

func whereMessage(details map[string][]string, order, filter []string) (string, string) {
	wanted := map[string]bool{}
	for _, name := range filter {
		wanted[name] = true
	}

	var b strings.Builder
	b.WriteString("Here are the parts of your post that made me think the following mentions were wrong:")
	found := false
	for _, name := range order {
		excerpts := details[name]
		if len(excerpts) == 0 || (len(filter) > 0 && !wanted[name]) {
			continue
		}
		found = true
		b.WriteString("\n* **@" + name + "**")
		for _, excerpt := range excerpts {
			b.WriteString("\n  * " + excerpt)
		}
	}
	if !found {
		return "I couldn't find any details for the mentions you asked about on this post.",
			"No details found"
	}
	return b.String(), "Details on the wrong mentions found"
}

func noDetailsMessage() (string, string) {
	return "I couldn't find any details for this comment. It may be too old or may not be a mentions report.",
		"No details found"
}

func wrongTargetMessage(target string) (string, string) {
	return fmt.Sprintf("The account @%s doesn't seem to exist on Steem. Maybe you specified a wrong target?", target),
		"Possible wrong target"
}

func unknownCommandMessage() (string, string) {
	return "This command doesn't exist.", "Unknown command"
}

func helpMessage() (string, string) {
	return "#### Here are all the available commands:" +
			"\n* **!case** *[sensitive-insensitive]* **-** tells the bot to treat (or stop treating) mentions containing uppercase letters as decoration." +
			"\n* **!delay** *minutes* **-** tells the bot to wait X minutes before checking your posts." +
			"\n* **!help** **-** gives a list of commands and their explanations." +
			"\n* **!ignore** *username1* *username2* **-** tells  the bot to ignore some usernames mentioned in your posts (useful to avoid the bot mistaking other social network accounts for Steem accounts)." +
			"\n* **!mode** *[regular-advanced-off]* **-** sets the mentions checking to regular (only posts), advanced (posts and comments) or off (no checking). Alternatively, you can write *normal* or *on* instead of *regular*. You can also write *plus* instead of *advanced*." +
			"\n* **!off** **-** shortcut for **!mode off**." +
			"\n* **!on** **-** shortcut for **!mode on**." +
			"\n* **!state** **-** gives the state of your account (*regular*, *advanced* or *off*)." +
			"\n* **!switch** *[regular-advanced-off]* **-** same as **!mode**." +
			"\n* **!unignore** *username1* *username2* **-** tells the bot to unignore some usernames mentioned in your posts." +
			"\n* **!wait** *minutes* - same as **!delay**." +
			"\n* **!where** *username1* *username2* **-** shows the parts of your post that made the bot flag some mentions (write it as a reply to one of the bot's reports)." +
			"\n\n###### Any idea on how to improve this bot ? Please contact @ragepeanut on any of his posts or send him a direct message on discord (RagePeanut#8078).",
		"Commands list"
}

func minutes(n int) string {
	if n == 1 {
		return "minute"
	}
	return "minutes"
}
