// routerd is the venue-selection daemon. It hosts the routing engine behind a
// NATS control surface and publishes swap outcomes to JetStream.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/holiman/uint256"
	"github.com/sirupsen/logrus"

	"github.com/xswap/router/internal/bridge"
	"github.com/xswap/router/internal/config"
	"github.com/xswap/router/internal/ledger"
	"github.com/xswap/router/internal/oracle"
	"github.com/xswap/router/internal/quote"
	"github.com/xswap/router/internal/router"
	xnats "github.com/xswap/router/pkg/nats"
	"github.com/xswap/router/pkg/types"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
	log := logrus.WithField("component", "routerd")

	nc, err := xnats.NewClient(&xnats.Config{
		URL:      cfg.NATS.URL,
		ClientID: "routerd",
		Streams:  xnats.DefaultStreams(),
	})
	if err != nil {
		log.Fatalf("connect NATS: %v", err)
	}
	defer nc.Close()

	srv, err := newServer(cfg, nc)
	if err != nil {
		log.Fatalf("build engine: %v", err)
	}
	if err := srv.start(); err != nil {
		log.Fatalf("start control surface: %v", err)
	}

	log.WithFields(logrus.Fields{
		"chain":  cfg.Chain.ID,
		"venues": srv.engine.VenueCount(),
	}).Info("routerd started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("shutdown signal received")
}

// natsPublisher forwards engine events to JetStream. Publish failures are
// logged, never propagated into the selection path.
type natsPublisher struct {
	client *xnats.Client
	log    *logrus.Entry
}

func (p *natsPublisher) SwapOptimized(ev router.SwapEvent) {
	if err := p.client.PublishLocalSwap(ev); err != nil {
		p.log.Warnf("publish local swap: %v", err)
	}
}

func (p *natsPublisher) CrossChainExecuted(ev router.SwapEvent) {
	if err := p.client.PublishCrossChainSwap(ev); err != nil {
		p.log.Warnf("publish cross-chain swap: %v", err)
	}
}

func (p *natsPublisher) VenueUpdated(index uint32, venue types.Venue) {
	if err := p.client.PublishVenueUpdate(index, venue); err != nil {
		p.log.Warnf("publish venue update: %v", err)
	}
}

type server struct {
	engine *router.Engine
	feed   *oracle.MemoryFeed
	nc     *xnats.Client
	log    *logrus.Entry
}

func newServer(cfg *config.Config, nc *xnats.Client) (*server, error) {
	log := logrus.WithField("component", "routerd")

	feed := oracle.NewMemoryFeed(nil)
	var opts []oracle.Option
	if cfg.Oracle.CacheTTLSeconds > 0 {
		opts = append(opts, oracle.WithCache(time.Duration(cfg.Oracle.CacheTTLSeconds)*time.Second))
	}
	adapter := oracle.NewAdapter(feed, opts...)

	chain := quote.LiveChain{Gas: uint256.NewInt(cfg.Chain.GasPrice)}
	gateway := bridge.NewMemoryGateway(chain.Now)
	ledg := ledger.NewMemoryLedger()
	builder := quote.NewBuilder(adapter, gateway, chain, types.ChainID(cfg.Chain.ID))

	engine, err := router.NewEngine(router.Config{
		Owner:        types.Address(cfg.Engine.Owner),
		Vault:        types.Address(cfg.Engine.Vault),
		FeeRecipient: types.Address(cfg.Engine.FeeRecipient),
		LocalVenue: types.Venue{
			ChainID:     types.ChainID(cfg.LocalVenue.ChainID),
			Address:     types.Address(cfg.LocalVenue.Address),
			Name:        cfg.LocalVenue.Name,
			GasEstimate: cfg.LocalVenue.GasEstimate,
			Reliability: cfg.LocalVenue.Reliability,
		},
		Params: router.Params{
			ProtocolFeeBps:    cfg.Engine.ProtocolFeeBps,
			MaxGasCostBps:     cfg.Engine.MaxGasCostBps,
			MinImprovementBps: cfg.Engine.MinImprovementBps,
			LocalOutputBps:    cfg.Engine.LocalOutputBps,
			DefaultStaleness:  cfg.Engine.DefaultStaleness,
		},
		Builder: builder,
		Bridge:  gateway,
		Ledger:  ledg,
		Chain:   chain,
		Events:  &natsPublisher{client: nc, log: log},
	})
	if err != nil {
		return nil, err
	}

	owner := types.Address(cfg.Engine.Owner)
	for _, v := range cfg.Venues {
		if _, err := engine.AddVenue(owner, types.Venue{
			ChainID:     types.ChainID(v.ChainID),
			Address:     types.Address(v.Address),
			Name:        v.Name,
			Active:      true,
			GasEstimate: v.GasEstimate,
			Reliability: v.Reliability,
		}); err != nil {
			return nil, fmt.Errorf("add venue %s: %w", v.Name, err)
		}
	}
	for _, t := range cfg.Tokens {
		if err := engine.ConfigurePriceFeed(owner, types.Token(t.Address), types.FeedID(t.Feed), t.MaxStaleness); err != nil {
			return nil, fmt.Errorf("configure token %s: %w", t.Address, err)
		}
	}

	return &server{engine: engine, feed: feed, nc: nc, log: log}, nil
}

func (s *server) start() error {
	if _, err := s.nc.Respond(xnats.SubjectSimulate, s.handleSimulate); err != nil {
		return err
	}
	if _, err := s.nc.Respond(xnats.SubjectVenues, s.handleVenues); err != nil {
		return err
	}
	if _, err := s.nc.Respond(xnats.SubjectSwap, s.handleSwap); err != nil {
		return err
	}
	if _, err := s.nc.SubscribeCore(xnats.SubjectPriceUpdate, s.handlePriceUpdate); err != nil {
		return err
	}
	return nil
}

func (s *server) handlePriceUpdate(data []byte) {
	var update types.PriceUpdate
	if err := json.Unmarshal(data, &update); err != nil {
		s.log.Warnf("discard malformed price update: %v", err)
		return
	}
	s.feed.SetPrice(update.FeedID, update.Price)
}

func (s *server) handleSimulate(data []byte) (interface{}, error) {
	var msg xnats.SimulateRequest
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("decode request: %w", err)
	}
	req, err := toSwapRequest(&msg)
	if err != nil {
		return nil, err
	}

	best, quotes, err := s.engine.Simulate(req)
	if err != nil {
		return nil, err
	}

	resp := xnats.SimulateResponse{Best: quoteInfo(best)}
	for _, q := range quotes {
		resp.Quotes = append(resp.Quotes, quoteInfo(q))
	}
	return resp, nil
}

func (s *server) handleVenues([]byte) (interface{}, error) {
	resp := xnats.VenuesResponse{}
	for i := uint32(0); i < s.engine.VenueCount(); i++ {
		v, err := s.engine.Venue(i)
		if err != nil {
			return nil, err
		}
		resp.Venues = append(resp.Venues, xnats.VenueInfo{
			Index:       i,
			ChainID:     v.ChainID,
			Address:     v.Address,
			Name:        v.Name,
			Active:      v.Active,
			GasEstimate: v.GasEstimate,
			Reliability: v.Reliability,
			LastUpdate:  v.LastUpdate,
		})
	}
	return resp, nil
}

func (s *server) handleSwap(data []byte) (interface{}, error) {
	var msg xnats.SwapRequest
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("decode request: %w", err)
	}
	req, err := toSwapRequest(&msg.SimulateRequest)
	if err != nil {
		return nil, err
	}

	result, err := s.engine.ExecuteSwap(msg.Sender, req)
	if err != nil {
		return nil, err
	}
	return xnats.SwapResponse{
		SwapID:     result.SwapID,
		Quote:      quoteInfo(result.Quote),
		CrossChain: result.CrossChain,
		BridgeTxID: result.BridgeTxID,
	}, nil
}

func toSwapRequest(msg *xnats.SimulateRequest) (*types.SwapRequest, error) {
	amountIn, err := parseAmount(msg.AmountIn)
	if err != nil {
		return nil, fmt.Errorf("amount_in: %w", err)
	}
	minOut, err := parseAmount(msg.MinAmountOut)
	if err != nil {
		return nil, fmt.Errorf("min_amount_out: %w", err)
	}
	maxGas, err := parseAmount(msg.MaxGasPrice)
	if err != nil {
		return nil, fmt.Errorf("max_gas_price: %w", err)
	}

	return &types.SwapRequest{
		TokenIn:           msg.TokenIn,
		TokenOut:          msg.TokenOut,
		AmountIn:          amountIn,
		MinAmountOut:      minOut,
		Recipient:         msg.Recipient,
		Deadline:          msg.Deadline,
		MaxGasPrice:       maxGas,
		MinImprovementBps: msg.MinImprovementBps,
		ForceLocal:        msg.ForceLocal,
	}, nil
}

func parseAmount(s string) (*uint256.Int, error) {
	if s == "" {
		return new(uint256.Int), nil
	}
	return uint256.FromDecimal(s)
}

func quoteInfo(q types.ExecutionQuote) xnats.QuoteInfo {
	return xnats.QuoteInfo{
		VenueIndex:     q.VenueIndex,
		OutputAmount:   decOrZero(q.OutputAmount),
		TotalCost:      decOrZero(q.TotalCost),
		NetOutput:      decOrZero(q.NetOutput),
		ExecutionTime:  q.ExecutionTime,
		RequiresBridge: q.RequiresBridge,
		Confidence:     q.Confidence,
	}
}

func decOrZero(v *uint256.Int) string {
	if v == nil {
		return "0"
	}
	return v.Dec()
}
