// Package chain polls the payment contract's event logs over JSON-RPC and
// decodes them into LedgerEvents.
//
// The poller keeps a from-block watermark so each query covers only new
// blocks. The watermark advances only when the caller acks a polled
// window, so an unacked window is re-yielded on the next poll. It is
// purely a query-window optimization: downstream reconciliation dedups by
// content, so re-reading a window (after a restart, a reorg, or a rewind)
// produces no visible effect.
package chain

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"strings"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/YASH-YADAV-dynamo/monad-blitz-lucknow/internal/models"
	"github.com/YASH-YADAV-dynamo/monad-blitz-lucknow/internal/watcher"
)

// paymentContractABI covers the four events the reconciler consumes.
const paymentContractABI = `[
  {"type":"event","name":"GroupCreated","inputs":[
    {"name":"groupHash","type":"bytes32","indexed":true},
    {"name":"creator","type":"address","indexed":true},
    {"name":"groupName","type":"string","indexed":false}]},
  {"type":"event","name":"MemberAdded","inputs":[
    {"name":"groupHash","type":"bytes32","indexed":true},
    {"name":"member","type":"address","indexed":true},
    {"name":"addedBy","type":"address","indexed":false}]},
  {"type":"event","name":"FundsAdded","inputs":[
    {"name":"groupHash","type":"bytes32","indexed":true},
    {"name":"user","type":"address","indexed":true},
    {"name":"amount","type":"uint256","indexed":false}]},
  {"type":"event","name":"SplitRequestCreated","inputs":[
    {"name":"groupHash","type":"bytes32","indexed":true},
    {"name":"from","type":"address","indexed":true},
    {"name":"to","type":"address","indexed":true},
    {"name":"amount","type":"uint256","indexed":false}]}
]`

// Ensure Client implements watcher.Subscription
var _ watcher.Subscription = (*Client)(nil)

// Client polls one deployed payment contract.
type Client struct {
	ec       *ethclient.Client
	contract common.Address
	abi      abi.ABI

	// lastBlock is the newest acked block; 0 means nothing acked yet.
	lastBlock uint64
	// pending is the head of the last successful poll, committed to
	// lastBlock by Ack.
	pending uint64
	// startBlock bounds the very first query, typically the contract's
	// deployment block.
	startBlock uint64
}

// Option configures a Client.
type Option func(*Client)

// WithStartBlock sets the block the first poll starts from.
func WithStartBlock(block uint64) Option {
	return func(c *Client) { c.startBlock = block }
}

// Dial connects to the JSON-RPC endpoint and prepares the event decoder.
func Dial(rpcURL string, contract common.Address, opts ...Option) (*Client, error) {
	parsed, err := abi.JSON(strings.NewReader(paymentContractABI))
	if err != nil {
		return nil, fmt.Errorf("chain: failed to parse contract ABI: %w", err)
	}

	ec, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("chain: failed to dial %s: %w", rpcURL, err)
	}

	c := &Client{ec: ec, contract: contract, abi: parsed}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Close releases the RPC connection.
func (c *Client) Close() {
	c.ec.Close()
}

// Poll fetches contract logs from the watermark to the current head and
// decodes them. The window stays open until Ack, so a batch the caller
// could not apply is fetched again on the next poll. Logs that fail to
// decode are skipped with a warning; one garbled log must not hide the
// rest of the window.
func (c *Client) Poll(ctx context.Context) ([]models.LedgerEvent, error) {
	head, err := c.ec.BlockNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("chain: failed to get head block: %w", err)
	}

	from := c.startBlock
	if c.lastBlock > 0 {
		from = c.lastBlock + 1
	}
	if from > head {
		return nil, nil
	}

	logs, err := c.ec.FilterLogs(ctx, ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(from),
		ToBlock:   new(big.Int).SetUint64(head),
		Addresses: []common.Address{c.contract},
	})
	if err != nil {
		return nil, fmt.Errorf("chain: failed to filter logs: %w", err)
	}

	out := make([]models.LedgerEvent, 0, len(logs))
	for _, lg := range logs {
		ev, err := c.decode(lg)
		if err != nil {
			slog.Warn("Skipping undecodable log",
				"block", lg.BlockNumber, "index", lg.Index, "error", err)
			continue
		}
		if ev != nil {
			out = append(out, *ev)
		}
	}

	c.pending = head
	return out, nil
}

// Ack commits the window returned by the last successful Poll.
func (c *Client) Ack() {
	c.lastBlock = c.pending
}

// decode turns one log into a LedgerEvent. Returns (nil, nil) for events
// the reconciler does not consume.
func (c *Client) decode(lg types.Log) (*models.LedgerEvent, error) {
	if len(lg.Topics) == 0 {
		return nil, fmt.Errorf("log has no topics")
	}
	event, err := c.abi.EventByID(lg.Topics[0])
	if err != nil {
		return nil, nil // not one of ours
	}

	values, err := c.abi.Unpack(event.Name, lg.Data)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", event.Name, err)
	}

	ev := models.LedgerEvent{
		Block: lg.BlockNumber,
		Index: lg.Index,
	}

	switch event.Name {
	case "GroupCreated":
		if len(lg.Topics) < 3 || len(values) < 1 {
			return nil, fmt.Errorf("short GroupCreated log")
		}
		name, ok := values[0].(string)
		if !ok {
			return nil, fmt.Errorf("GroupCreated name is %T", values[0])
		}
		ev.Kind = models.EventGroupCreated
		ev.GroupKey = lg.Topics[1]
		ev.Actor = common.BytesToAddress(lg.Topics[2].Bytes())
		ev.GroupName = name

	case "MemberAdded":
		if len(lg.Topics) < 3 || len(values) < 1 {
			return nil, fmt.Errorf("short MemberAdded log")
		}
		addedBy, ok := values[0].(common.Address)
		if !ok {
			return nil, fmt.Errorf("MemberAdded addedBy is %T", values[0])
		}
		ev.Kind = models.EventMemberAdded
		ev.GroupKey = lg.Topics[1]
		ev.Target = common.BytesToAddress(lg.Topics[2].Bytes())
		ev.Actor = addedBy

	case "FundsAdded":
		if len(lg.Topics) < 3 || len(values) < 1 {
			return nil, fmt.Errorf("short FundsAdded log")
		}
		amt, ok := values[0].(*big.Int)
		if !ok {
			return nil, fmt.Errorf("FundsAdded amount is %T", values[0])
		}
		ev.Kind = models.EventFundsAdded
		ev.GroupKey = lg.Topics[1]
		ev.Actor = common.BytesToAddress(lg.Topics[2].Bytes())
		ev.Amount = amt

	case "SplitRequestCreated":
		if len(lg.Topics) < 4 || len(values) < 1 {
			return nil, fmt.Errorf("short SplitRequestCreated log")
		}
		amt, ok := values[0].(*big.Int)
		if !ok {
			return nil, fmt.Errorf("SplitRequestCreated amount is %T", values[0])
		}
		ev.Kind = models.EventSplitRequestCreated
		ev.GroupKey = lg.Topics[1]
		ev.Actor = common.BytesToAddress(lg.Topics[2].Bytes())
		ev.Target = common.BytesToAddress(lg.Topics[3].Bytes())
		ev.Amount = amt

	default:
		return nil, nil
	}

	return &ev, nil
}
