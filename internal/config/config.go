package config

import (
	"time"
)

// Config carries everything tunable from flags or the environment. The
// denylist and suffix lists changed over the bot's lifetime without a
// documented reason, so they stay configurable rather than hardcoded.
type Config struct {
	Account    string `flag:"account"`
	Superuser  string `flag:"superuser"`
	PostingKey string `flag:"posting-key"`

	DataDir  string `flag:"data-dir"`
	LogLevel string `flag:"log-level"`

	RequestNodes []string `flag:"request-nodes"`
	StreamNodes  []string `flag:"stream-nodes"`

	FlushInterval    time.Duration `flag:"flush-interval"`
	ReplySpacing     time.Duration `flag:"reply-spacing"`
	FirstGraceWindow time.Duration `flag:"first-grace-window"`
	FinalGraceWindow time.Duration `flag:"final-grace-window"`
	UpvoteInterval   time.Duration `flag:"upvote-interval"`

	MetricsAddr string `flag:"metrics-addr"`

	SocialNetworks  []string
	IgnoredSuffixes []string
	SocialWindow    int
	ExcerptWindow   int
	LookupBatch     int
}

// AppID tags every broadcast comment's metadata.
const AppID = "checky/1.0.0"

// Defaults returns the production configuration before flags are applied.
func Defaults() Config {
	return Config{
		Account:   "checky",
		Superuser: "ragepeanut",
		DataDir:   "data",
		LogLevel:  "info",
		RequestNodes: []string{
			"https://api.steemit.com",
			"https://api.justyy.com",
			"https://api.steemitdev.com",
		},
		StreamNodes: []string{
			"wss://api.steemit.com",
			"wss://api.justyy.com",
		},
		FlushInterval:    5 * time.Second,
		ReplySpacing:     20 * time.Second,
		FirstGraceWindow: 24 * time.Hour,
		FinalGraceWindow: 120 * time.Hour,
		UpvoteInterval:   160 * time.Minute,
		MetricsAddr:      ":8080",
		SocialNetworks: []string{
			"instagram", "insta", "telegram", "텔레그램", "twitter",
			"twit", "tweet", "golos", "discord", "medium", "brunch",
		},
		IgnoredSuffixes: []string{"jpg", "jpeg", "png", "gif", "com", "io", "org", "net", "me"},
		SocialWindow:    300,
		ExcerptWindow:   150,
		LookupBatch:     10000,
	}
}
