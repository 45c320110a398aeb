package core

import (
	"time"
)

type Mode string

const (
	ModeRegular  Mode = "regular"
	ModeAdvanced Mode = "advanced"
	ModeOff      Mode = "off"
)

// Account is the per-username ledger record. A record is created the first
// time a username is seen in any operation and is never deleted.
type Account struct {
	Mode          Mode     `json:"mode"`
	Ignored       []string `json:"ignored"`
	Delay         int      `json:"delay"`
	CaseSensitive bool     `json:"case_sensitive,omitempty"`
	Mentioned     []string `json:"mentioned"`
	Occurrences   int      `json:"occ"`
}

func NewAccount() *Account {
	return &Account{
		Mode:      ModeRegular,
		Ignored:   []string{},
		Mentioned: []string{},
	}
}

// FlaggedPost tracks a post that received a correction reply and is waiting
// for its recheck windows. At most one live record exists per author+permlink.
type FlaggedPost struct {
	Author         string              `json:"author"`
	Permlink       string              `json:"permlink"`
	ReplyPermlink  string              `json:"reply_permlink"`
	CreatedAt      time.Time           `json:"created_at"`
	Details        map[string][]string `json:"details"`
	FirstCheckDone bool                `json:"first_check_done"`
}

// Reply is a queued outbound comment. Edit replies reuse the permlink of the
// bot's earlier reply on the same post, which replaces its body on chain.
type Reply struct {
	Body           string
	ParentAuthor   string
	ParentPermlink string
	Title          string
	Details        map[string][]string
	Edit           bool
}

// Content is a post or comment as returned by the condenser API, reduced to
// the fields the pipeline reads.
type Content struct {
	Author       string
	Permlink     string
	ParentAuthor string
	Title        string
	Body         string
	JSONMetadata string
	Created      string
	LastUpdate   string
	NetVotes     int
	Children     int
	ActiveVotes  int
	Tags         []string
}

// IsFresh reports whether the post has never been edited.
func (c Content) IsFresh() bool {
	return c.Created == c.LastUpdate
}

// Vote is a vote operation from the stream.
type Vote struct {
	Voter    string
	Author   string
	Permlink string
	Weight   int
}

// Comment is a comment operation from the stream. ParentAuthor is empty for
// top-level posts.
type Comment struct {
	Author         string
	Permlink       string
	ParentAuthor   string
	ParentPermlink string
	Title          string
	Body           string
	JSONMetadata   string
}
