package steem

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"checky/internal/config"
	"checky/internal/core"
	"checky/pkg/retry"
)

// blockInterval is how often the chain produces a block.
const blockInterval = 3 * time.Second

// Stream follows the head of the chain over a websocket node and emits every
// operation of every block. A broken connection rotates the node and
// reconnects; the last seen block number survives the reconnect so no block
// is skipped.
type Stream struct {
	Logger *slog.Logger
	Config *config.Config

	nodes  *retry.Nodes
	ch     chan core.Operation
	callID int64
}

func (s *Stream) Init(_ context.Context) error {
	s.Logger = s.Logger.With("component", "steem.Stream")
	s.nodes = retry.NewNodes(s.Config.StreamNodes)
	s.ch = make(chan core.Operation, 64)
	return nil
}

// Consume implements core.OperationStream. The channel closes when Run
// returns.
func (s *Stream) Consume(_ context.Context) (<-chan core.Operation, error) {
	return s.ch, nil
}

func (s *Stream) Run(ctx context.Context) error {
	defer close(s.ch)

	var lastBlock int64
	err := retry.Forever(ctx, s.nodes, func(err error, node string) {
		s.Logger.Error("stream failed, rotating node", "node", node, "error", err)
	}, func(node string) error {
		return s.follow(ctx, node, &lastBlock)
	})
	if ctx.Err() != nil {
		return nil
	}
	return err
}

// follow reads blocks from one node until the connection breaks or the
// context is cancelled. It returns nil only on cancellation.
func (s *Stream) follow(ctx context.Context, node string, lastBlock *int64) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, node, nil)
	if err != nil {
		return err
	}
	defer conn.Close()
	s.Logger.Info("stream started", "node", node)

	for {
		if ctx.Err() != nil {
			return nil
		}

		head, err := s.headBlock(conn)
		if err != nil {
			return err
		}
		if *lastBlock == 0 {
			// First connection ever, start from the tip.
			*lastBlock = head
		}

		for *lastBlock < head {
			if ctx.Err() != nil {
				return nil
			}
			if err := s.emitBlock(ctx, conn, *lastBlock+1); err != nil {
				return err
			}
			*lastBlock++
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(blockInterval):
		}
	}
}

func (s *Stream) headBlock(conn *websocket.Conn) (int64, error) {
	var props struct {
		HeadBlockNumber int64 `json:"head_block_number"`
	}
	if err := s.wsCall(conn, "get_dynamic_global_properties", []any{}, &props); err != nil {
		return 0, err
	}
	return props.HeadBlockNumber, nil
}

func (s *Stream) emitBlock(ctx context.Context, conn *websocket.Conn, number int64) error {
	var block struct {
		Transactions []struct {
			Operations [][]json.RawMessage `json:"operations"`
		} `json:"transactions"`
	}
	if err := s.wsCall(conn, "get_block", []any{number}, &block); err != nil {
		return err
	}

	for _, tx := range block.Transactions {
		for _, raw := range tx.Operations {
			op, err := decodeOperation(raw)
			if err != nil {
				s.Logger.Warn("skipping malformed operation", "block", number, "error", err)
				continue
			}
			select {
			case s.ch <- op:
			case <-ctx.Done():
				return nil
			}
		}
	}
	return nil
}

// decodeOperation parses the condenser wire form of an operation, a two
// element array of type name and payload object.
func decodeOperation(raw []json.RawMessage) (core.Operation, error) {
	if len(raw) != 2 {
		return core.Operation{}, fmt.Errorf("operation has %d elements", len(raw))
	}
	var opType string
	if err := json.Unmarshal(raw[0], &opType); err != nil {
		return core.Operation{}, err
	}
	var data map[string]any
	if err := json.Unmarshal(raw[1], &data); err != nil {
		return core.Operation{}, err
	}
	return core.Operation{Type: opType, Data: data}, nil
}

// wsCall performs one serial JSON-RPC call over the stream connection. Calls
// only happen from the Run goroutine, so the id counter needs no locking.
func (s *Stream) wsCall(conn *websocket.Conn, method string, params []any, result any) error {
	s.callID++
	if err := conn.WriteJSON(rpcRequest{
		JSONRPC: "2.0",
		Method:  "condenser_api." + method,
		Params:  params,
		ID:      s.callID,
	}); err != nil {
		return err
	}
	var response rpcResponse
	if err := conn.ReadJSON(&response); err != nil {
		return err
	}
	if response.Error != nil {
		return response.Error
	}
	return json.Unmarshal(response.Result, result)
}
