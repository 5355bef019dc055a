package bridge

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/holiman/uint256"

	"github.com/xswap/router/pkg/types"
)

// TxStatus is the lifecycle state of a bridge transaction.
type TxStatus string

const (
	TxPending   TxStatus = "pending"
	TxCompleted TxStatus = "completed"
	TxFailed    TxStatus = "failed"
	TxCancelled TxStatus = "cancelled"
)

// Route describes one supported (destination chain, token pair) path.
type Route struct {
	TokenIn       types.Token
	TokenOut      types.Token
	DestChain     types.ChainID
	FeeBps        uint32
	FlatFee       *uint256.Int
	MinAmount     *uint256.Int
	MaxAmount     *uint256.Int
	EstimatedTime uint32 // seconds
	QuoteTTL      int64  // seconds of quote validity
}

// Transaction tracks one initiated bridge transfer.
type Transaction struct {
	ID        string
	TokenIn   types.Token
	Amount    *uint256.Int
	DestChain types.ChainID
	Recipient types.Address
	Status    TxStatus
	Attempts  int
}

// routeData is the opaque payload carried in BridgeQuote.BridgeData and handed
// back on Bridge. ValidUntil lets the gateway reject executions against an
// expired quote.
type routeData struct {
	TokenIn    types.Token   `json:"token_in"`
	TokenOut   types.Token   `json:"token_out"`
	DestChain  types.ChainID `json:"dest_chain"`
	ValidUntil int64         `json:"valid_until"`
}

// MemoryGateway is an in-process Bridge with a static route table and a
// transaction lifecycle. It backs tests and the simulator, and doubles as the
// reference for what a production gateway client must provide.
type MemoryGateway struct {
	mu     sync.RWMutex
	routes map[string]Route
	chains map[types.ChainID]bool
	txs    map[string]*Transaction
	now    func() int64

	// failNext makes the next Bridge call fail once, for exercising the
	// compensation path.
	failNext bool
}

// NewMemoryGateway creates an empty gateway using the given clock.
func NewMemoryGateway(now func() int64) *MemoryGateway {
	return &MemoryGateway{
		routes: make(map[string]Route),
		chains: make(map[types.ChainID]bool),
		txs:    make(map[string]*Transaction),
		now:    now,
	}
}

func routeKey(tokenIn, tokenOut types.Token, dest types.ChainID) string {
	return fmt.Sprintf("%d:%s:%s", dest, tokenIn, tokenOut)
}

// AddRoute registers a supported route and marks its chain reachable.
func (g *MemoryGateway) AddRoute(r Route) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.routes[routeKey(r.TokenIn, r.TokenOut, r.DestChain)] = r
	g.chains[r.DestChain] = true
}

// FailNextBridge arms a one-shot failure on the next Bridge call.
func (g *MemoryGateway) FailNextBridge() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.failNext = true
}

func (g *MemoryGateway) IsChainSupported(chain types.ChainID) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.chains[chain]
}

func (g *MemoryGateway) GetQuote(tokenIn, tokenOut types.Token, amountIn *uint256.Int, destChain types.ChainID) (types.BridgeQuote, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	r, ok := g.routes[routeKey(tokenIn, tokenOut, destChain)]
	if !ok {
		return types.BridgeQuote{}, fmt.Errorf("chain %d %s->%s: %w", destChain, tokenIn, tokenOut, types.ErrNoRoute)
	}

	fee := new(uint256.Int).Mul(amountIn, uint256.NewInt(uint64(r.FeeBps)))
	fee.Div(fee, uint256.NewInt(types.MaxBps))
	if r.FlatFee != nil {
		fee.Add(fee, r.FlatFee)
	}

	output := new(uint256.Int)
	if amountIn.Gt(fee) {
		output.Sub(amountIn, fee)
	}

	validUntil := g.now() + r.QuoteTTL
	data, _ := json.Marshal(routeData{TokenIn: tokenIn, TokenOut: tokenOut, DestChain: destChain, ValidUntil: validUntil})

	return types.BridgeQuote{
		OutputAmount:  output,
		BridgeFee:     fee,
		EstimatedTime: r.EstimatedTime,
		BridgeData:    data,
		MinAmount:     r.MinAmount,
		MaxAmount:     r.MaxAmount,
		ValidUntil:    validUntil,
	}, nil
}

func (g *MemoryGateway) Bridge(tokenIn types.Token, amountIn *uint256.Int, destChain types.ChainID, recipient types.Address, bridgeData []byte, nativePayment *uint256.Int) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.failNext {
		g.failNext = false
		return "", types.ErrBridgeFailed
	}

	var data routeData
	if err := json.Unmarshal(bridgeData, &data); err != nil {
		return "", fmt.Errorf("decode bridge data: %w", err)
	}
	if data.ValidUntil != 0 && g.now() > data.ValidUntil {
		return "", types.ErrQuoteExpired
	}

	r, ok := g.routes[routeKey(tokenIn, data.TokenOut, destChain)]
	if !ok {
		return "", fmt.Errorf("chain %d: %w", destChain, types.ErrNoRoute)
	}
	if r.MinAmount != nil && amountIn.Lt(r.MinAmount) {
		return "", types.ErrAmountOutOfRange
	}
	if r.MaxAmount != nil && amountIn.Gt(r.MaxAmount) {
		return "", types.ErrAmountOutOfRange
	}

	tx := &Transaction{
		ID:        uuid.NewString(),
		TokenIn:   tokenIn,
		Amount:    amountIn.Clone(),
		DestChain: destChain,
		Recipient: recipient,
		Status:    TxCompleted,
		Attempts:  1,
	}
	g.txs[tx.ID] = tx
	return tx.ID, nil
}

func (g *MemoryGateway) RetryBridge(txID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	tx, ok := g.txs[txID]
	if !ok {
		return types.ErrUnknownTransaction
	}
	if tx.Status != TxFailed && tx.Status != TxPending {
		return fmt.Errorf("transaction %s is %s: %w", txID, tx.Status, types.ErrBridgeFailed)
	}
	tx.Attempts++
	tx.Status = TxCompleted
	return nil
}

func (g *MemoryGateway) CancelBridge(txID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	tx, ok := g.txs[txID]
	if !ok {
		return types.ErrUnknownTransaction
	}
	if tx.Status == TxCompleted {
		return fmt.Errorf("transaction %s already completed: %w", txID, types.ErrBridgeFailed)
	}
	tx.Status = TxCancelled
	return nil
}

// Transaction returns a tracked transaction by id.
func (g *MemoryGateway) Transaction(txID string) (Transaction, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	tx, ok := g.txs[txID]
	if !ok {
		return Transaction{}, false
	}
	return *tx, true
}

// MarkFailed flips a transaction into the failed state so retry/cancel can be
// exercised.
func (g *MemoryGateway) MarkFailed(txID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if tx, ok := g.txs[txID]; ok {
		tx.Status = TxFailed
	}
}
