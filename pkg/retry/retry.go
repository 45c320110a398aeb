// Package retry implements the node-rotation retry contract shared by every
// remote call: on error, move the active endpoint to the back of the list and
// retry the identical call. There is no backoff and no attempt cap; only
// context cancellation stops the loop.
package retry

import (
	"context"
	"sync"
	"time"
)

// Nodes is a rotating endpoint list. Rotation happens on error only, so the
// front entry stays stable while calls succeed.
type Nodes struct {
	mu   sync.Mutex
	urls []string
}

func NewNodes(urls []string) *Nodes {
	return &Nodes{urls: append([]string(nil), urls...)}
}

// Current returns the active endpoint.
func (n *Nodes) Current() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.urls[0]
}

// Rotate moves the active endpoint to the back and returns the new front.
func (n *Nodes) Rotate() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.urls = append(n.urls[1:], n.urls[0])
	return n.urls[0]
}

// Forever calls f with the active endpoint until it succeeds. Each failure
// rotates the list and reports the error to onErr before the next attempt.
// The loop is flat: no recursion, no growth with attempt count.
func Forever(ctx context.Context, nodes *Nodes, onErr func(err error, node string), f func(node string) error) error {
	for {
		node := nodes.Current()
		err := f(node)
		if err == nil {
			return nil
		}
		if onErr != nil {
			onErr(err, node)
		}
		nodes.Rotate()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}
}
