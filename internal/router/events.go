package router

import (
	"github.com/holiman/uint256"

	"github.com/xswap/router/pkg/types"
)

// SwapEvent describes a routed swap outcome.
type SwapEvent struct {
	SwapID      string        `json:"swap_id"`
	Sender      types.Address `json:"sender"`
	Recipient   types.Address `json:"recipient"`
	TokenIn     types.Token   `json:"token_in"`
	TokenOut    types.Token   `json:"token_out"`
	AmountIn    *uint256.Int  `json:"amount_in"`
	NetOutput   *uint256.Int  `json:"net_output"`
	VenueIndex  uint32        `json:"venue_index"`
	DestChain   types.ChainID `json:"dest_chain"`
	BridgeTxID  string        `json:"bridge_tx_id,omitempty"`
	Confidence  uint8         `json:"confidence"`
	Timestamp   int64         `json:"timestamp"`
}

// EventPublisher receives engine signals. Implementations must not block the
// selection path; publish failures are logged, never propagated.
type EventPublisher interface {
	// SwapOptimized signals that the local venue won the selection.
	SwapOptimized(ev SwapEvent)
	// CrossChainExecuted signals a completed custody transfer plus bridge
	// call.
	CrossChainExecuted(ev SwapEvent)
	// VenueUpdated signals an admin mutation of the venue registry.
	VenueUpdated(index uint32, venue types.Venue)
}

// NopPublisher discards all events.
type NopPublisher struct{}

func (NopPublisher) SwapOptimized(SwapEvent)             {}
func (NopPublisher) CrossChainExecuted(SwapEvent)        {}
func (NopPublisher) VenueUpdated(uint32, types.Venue)    {}
