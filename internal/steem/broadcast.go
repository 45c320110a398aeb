package steem

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/btcsuite/btcd/btcec/v2"

	"checky/internal/config"
)

// Broadcaster signs operations with the bot's posting key and pushes them
// through the shared request client. It implements core.Broadcaster.
type Broadcaster struct {
	Logger *slog.Logger
	Config *config.Config
	Client *Client

	key *btcec.PrivateKey
}

func (b *Broadcaster) Init(_ context.Context) error {
	b.Logger = b.Logger.With("component", "steem.Broadcaster")
	if b.Config.PostingKey == "" {
		return fmt.Errorf("no posting key configured")
	}
	key, err := decodePostingKey(b.Config.PostingKey)
	if err != nil {
		return fmt.Errorf("decoding posting key: %w", err)
	}
	b.key = key
	return nil
}

func (b *Broadcaster) Comment(ctx context.Context, parentAuthor, parentPermlink, permlink, title, body, jsonMetadata string) error {
	b.Logger.Info("broadcasting comment", "parent_author", parentAuthor, "permlink", permlink)
	return b.broadcast(ctx, commentOperation{
		ParentAuthor:   parentAuthor,
		ParentPermlink: parentPermlink,
		Author:         b.Config.Account,
		Permlink:       permlink,
		Title:          title,
		Body:           body,
		JSONMetadata:   jsonMetadata,
	})
}

func (b *Broadcaster) DeleteComment(ctx context.Context, permlink string) error {
	b.Logger.Info("broadcasting comment deletion", "permlink", permlink)
	return b.broadcast(ctx, deleteCommentOperation{
		Author:   b.Config.Account,
		Permlink: permlink,
	})
}

func (b *Broadcaster) Vote(ctx context.Context, author, permlink string, weight int) error {
	b.Logger.Info("broadcasting vote", "author", author, "permlink", permlink, "weight", weight)
	return b.broadcast(ctx, voteOperation{
		Voter:    b.Config.Account,
		Author:   author,
		Permlink: permlink,
		Weight:   int16(weight),
	})
}

// broadcast anchors the transaction to the current head block, signs it and
// submits it synchronously.
func (b *Broadcaster) broadcast(ctx context.Context, op operation) error {
	var props struct {
		HeadBlockNumber int64  `json:"head_block_number"`
		HeadBlockID     string `json:"head_block_id"`
	}
	if err := b.Client.call(ctx, "get_dynamic_global_properties", []any{}, &props); err != nil {
		return err
	}

	blockID, err := hex.DecodeString(props.HeadBlockID)
	if err != nil || len(blockID) < 8 {
		return fmt.Errorf("malformed head block id %q", props.HeadBlockID)
	}

	tx := transaction{
		RefBlockNum:    uint16(props.HeadBlockNumber),
		RefBlockPrefix: binary.LittleEndian.Uint32(blockID[4:8]),
		Operations:     []operation{op},
		Extensions:     []any{},
		expiration:     time.Now().UTC().Add(time.Minute),
	}
	tx.sign(b.key)

	var result json.RawMessage
	return b.Client.call(ctx, "broadcast_transaction_synchronous", []any{tx}, &result)
}
