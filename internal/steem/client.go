// Package steem talks to the Steem blockchain: a condenser-API JSON-RPC
// client for reads, a websocket follower for the live operation stream and a
// signing broadcaster for the bot's own operations. All of them share the
// same failure policy, rotate the node and retry until the context dies.
package steem

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/Jeffail/gabs"
	"resty.dev/v3"

	"checky/internal/config"
	"checky/internal/core"
	"checky/pkg/retry"
)

const followPageSize = 1000

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
	ID      int64  `json:"id"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

// Client implements the read-side collaborators over condenser_api.
type Client struct {
	Logger *slog.Logger
	Config *config.Config

	http  *resty.Client
	nodes *retry.Nodes
	reqID atomic.Int64
}

func (c *Client) Init(_ context.Context) error {
	// The same instance is registered once per interface it implements, so
	// Init may run more than once.
	if c.http != nil {
		return nil
	}
	c.Logger = c.Logger.With("component", "steem.Client")
	c.http = resty.New()
	c.nodes = retry.NewNodes(c.Config.RequestNodes)
	return nil
}

func (c *Client) Shutdown(_ context.Context) error {
	return c.http.Close()
}

// call performs one condenser_api call under the rotation-retry contract.
// It only returns once the call succeeded or ctx was cancelled.
func (c *Client) call(ctx context.Context, method string, params []any, result any) error {
	body := rpcRequest{
		JSONRPC: "2.0",
		Method:  "condenser_api." + method,
		Params:  params,
		ID:      c.reqID.Add(1),
	}

	return retry.Forever(ctx, c.nodes, func(err error, node string) {
		c.Logger.Error("request failed, rotating node", "method", method, "node", node, "error", err)
	}, func(node string) error {
		var response rpcResponse
		res, err := c.http.R().
			WithContext(ctx).
			SetBody(body).
			SetResult(&response).
			Post(node)
		if err != nil {
			return err
		}
		if res.IsError() {
			return fmt.Errorf("unexpected status %s", res.Status())
		}
		if response.Error != nil {
			return response.Error
		}
		return json.Unmarshal(response.Result, result)
	})
}

// Lookup implements core.AccountAPI. A null entry in the response marks a
// non-existing account and comes back as an empty name.
func (c *Client) Lookup(ctx context.Context, names []string) ([]string, error) {
	var accounts []*struct {
		Name string `json:"name"`
	}
	if err := c.call(ctx, "lookup_account_names", []any{names}, &accounts); err != nil {
		return nil, err
	}

	out := make([]string, len(accounts))
	for i, account := range accounts {
		if account != nil {
			out[i] = account.Name
		}
	}
	return out, nil
}

type contentResponse struct {
	Author       string            `json:"author"`
	Permlink     string            `json:"permlink"`
	ParentAuthor string            `json:"parent_author"`
	Title        string            `json:"title"`
	Body         string            `json:"body"`
	JSONMetadata string            `json:"json_metadata"`
	Created      string            `json:"created"`
	LastUpdate   string            `json:"last_update"`
	NetVotes     int               `json:"net_votes"`
	Children     int               `json:"children"`
	ActiveVotes  []json.RawMessage `json:"active_votes"`
}

// GetContent implements core.ContentAPI. A deleted or never-written post
// comes back with an empty body, not an error.
func (c *Client) GetContent(ctx context.Context, author, permlink string) (core.Content, error) {
	var response contentResponse
	if err := c.call(ctx, "get_content", []any{author, permlink}, &response); err != nil {
		return core.Content{}, err
	}

	return core.Content{
		Author:       response.Author,
		Permlink:     response.Permlink,
		ParentAuthor: response.ParentAuthor,
		Title:        response.Title,
		Body:         response.Body,
		JSONMetadata: response.JSONMetadata,
		Created:      response.Created,
		LastUpdate:   response.LastUpdate,
		NetVotes:     response.NetVotes,
		Children:     response.Children,
		ActiveVotes:  len(response.ActiveVotes),
		Tags:         metadataTags(response.JSONMetadata),
	}, nil
}

// metadataTags pulls the tag list out of a post's json_metadata. Malformed
// metadata yields no tags, never an error.
func metadataTags(jsonMetadata string) []string {
	if jsonMetadata == "" {
		return nil
	}
	parsed, err := gabs.ParseJSON([]byte(jsonMetadata))
	if err != nil {
		return nil
	}
	raw, ok := parsed.Path("tags").Data().([]any)
	if !ok {
		return nil
	}
	var tags []string
	for _, item := range raw {
		if tag, ok := item.(string); ok {
			tags = append(tags, tag)
		}
	}
	return tags
}

type tagEntry struct {
	Name string `json:"name"`
}

// TrendingTags implements part of core.SocialAPI.
func (c *Client) TrendingTags(ctx context.Context) ([]string, error) {
	var entries []tagEntry
	if err := c.call(ctx, "get_trending_tags", []any{"", 1000}, &entries); err != nil {
		return nil, err
	}
	tags := make([]string, 0, len(entries))
	for _, entry := range entries {
		tags = append(tags, entry.Name)
	}
	return tags, nil
}

// TagsByAuthor implements part of core.SocialAPI.
func (c *Client) TagsByAuthor(ctx context.Context, author string) ([]string, error) {
	var entries []tagEntry
	if err := c.call(ctx, "get_tags_used_by_author", []any{author}, &entries); err != nil {
		return nil, err
	}
	tags := make([]string, 0, len(entries))
	for _, entry := range entries {
		tags = append(tags, entry.Name)
	}
	return tags, nil
}

// FollowCircle implements part of core.SocialAPI. It pages through both the
// followers and the followed accounts and merges them into one set.
func (c *Client) FollowCircle(ctx context.Context, account string) (map[string]struct{}, error) {
	circle := map[string]struct{}{}
	if err := c.followPage(ctx, "get_followers", "follower", account, circle); err != nil {
		return nil, err
	}
	if err := c.followPage(ctx, "get_following", "following", account, circle); err != nil {
		return nil, err
	}
	return circle, nil
}

func (c *Client) followPage(ctx context.Context, method, field, account string, circle map[string]struct{}) error {
	start := ""
	for {
		var relations []map[string]any
		if err := c.call(ctx, method, []any{account, start, "blog", followPageSize}, &relations); err != nil {
			return err
		}
		last := ""
		for _, relation := range relations {
			if name, ok := relation[field].(string); ok {
				circle[name] = struct{}{}
				last = name
			}
		}
		if len(relations) < followPageSize || last == "" {
			return nil
		}
		// The start parameter is inclusive, bump the last name to avoid
		// refetching it.
		start = bumpLast(last)
	}
}

func bumpLast(name string) string {
	if name == "" {
		return name
	}
	b := []byte(name)
	b[len(b)-1]++
	return string(b)
}
