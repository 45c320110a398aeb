package core

import (
	"context"
)

// AccountAPI is the batched account-lookup collaborator. Lookup preserves
// input order; a missing account yields an empty name at its position.
type AccountAPI interface {
	Lookup(ctx context.Context, names []string) ([]string, error)
}

// ContentAPI fetches a single post or comment.
type ContentAPI interface {
	GetContent(ctx context.Context, author, permlink string) (Content, error)
}

// SocialAPI exposes the follow-graph and tag lookups the suggester uses as
// ranking fallbacks. A nil SocialAPI disables those fallbacks.
type SocialAPI interface {
	FollowCircle(ctx context.Context, account string) (map[string]struct{}, error)
	TrendingTags(ctx context.Context) ([]string, error)
	TagsByAuthor(ctx context.Context, author string) ([]string, error)
}

// Broadcaster signs and broadcasts outbound operations. Implementations
// follow the shared retry contract: rotate the endpoint and retry forever.
type Broadcaster interface {
	Comment(ctx context.Context, parentAuthor, parentPermlink, permlink, title, body, jsonMetadata string) error
	DeleteComment(ctx context.Context, permlink string) error
	Vote(ctx context.Context, author, permlink string, weight int) error
}

// OperationStream is the live ledger-operation feed.
type OperationStream interface {
	Consume(ctx context.Context) (<-chan Operation, error)
}

// ReplySink accepts outbound replies for posting.
type ReplySink interface {
	Enqueue(Reply)
}

// CandidateSink receives authors whose posts were fixed after a correction.
type CandidateSink interface {
	Add(author, permlink string)
}
