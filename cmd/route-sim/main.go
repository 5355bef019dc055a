// route-sim runs one canned routing scenario end to end in process: three
// venues, two priced tokens, a bridge route, and a funded sender. Useful for
// eyeballing selection and scoring behavior without a broker or oracle.
package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/holiman/uint256"
	"github.com/sirupsen/logrus"

	"github.com/xswap/router/internal/bridge"
	"github.com/xswap/router/internal/ledger"
	"github.com/xswap/router/internal/oracle"
	"github.com/xswap/router/internal/quote"
	"github.com/xswap/router/internal/router"
	"github.com/xswap/router/internal/scoring"
	"github.com/xswap/router/pkg/types"
)

const (
	owner = types.Address("0xowner")
	vault = types.Address("0xvault")
	fees  = types.Address("0xfees")
	alice = types.Address("0xalice")

	tokenUSDC = types.Token("0xusdc")
	tokenWETH = types.Token("0xweth")
)

func main() {
	logrus.SetLevel(logrus.WarnLevel)

	feed := oracle.NewMemoryFeed(nil)
	feed.SetPrice("usdc-usd", types.Price{Mantissa: 99998000, Conf: 50000, Expo: -8, PublishTime: 1000})
	feed.SetPrice("weth-usd", types.Price{Mantissa: 245012000000, Conf: 120000000, Expo: -8, PublishTime: 1000})

	chain := quote.FixedChain{Time: 1000, Gas: uint256.NewInt(12)}
	gateway := bridge.NewMemoryGateway(chain.Now)
	gateway.AddRoute(bridge.Route{
		TokenIn: tokenUSDC, TokenOut: tokenWETH, DestChain: 42161,
		FeeBps: 4, EstimatedTime: 420, QuoteTTL: 60,
	})
	gateway.AddRoute(bridge.Route{
		TokenIn: tokenUSDC, TokenOut: tokenWETH, DestChain: 10,
		FeeBps: 8, FlatFee: uint256.NewInt(50), EstimatedTime: 900, QuoteTTL: 60,
	})

	ledg := ledger.NewMemoryLedger()
	ledg.Mint(tokenUSDC, alice, uint256.NewInt(2_500_000_000))

	builder := quote.NewBuilder(oracle.NewAdapter(feed), gateway, chain, 1)
	engine, err := router.NewEngine(router.Config{
		Owner: owner, Vault: vault, FeeRecipient: fees,
		LocalVenue: types.Venue{ChainID: 1, Address: "0xlocal", Name: "mainnet", GasEstimate: 180000, Reliability: 95},
		Builder:    builder, Bridge: gateway, Ledger: ledg, Chain: chain,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "engine:", err)
		os.Exit(1)
	}

	must(engine.ConfigurePriceFeed(owner, tokenUSDC, "usdc-usd", 300))
	must(engine.ConfigurePriceFeed(owner, tokenWETH, "weth-usd", 300))
	mustIndex(engine.AddVenue(owner, types.Venue{ChainID: 42161, Address: "0xarb", Name: "arbitrum", Active: true, GasEstimate: 40000, Reliability: 90}))
	mustIndex(engine.AddVenue(owner, types.Venue{ChainID: 10, Address: "0xop", Name: "optimism", Active: true, GasEstimate: 35000, Reliability: 85}))

	req := &types.SwapRequest{
		TokenIn:      tokenUSDC,
		TokenOut:     tokenWETH,
		AmountIn:     uint256.NewInt(2_500_000_000),
		MinAmountOut: new(uint256.Int),
		Recipient:    alice,
		Deadline:     2000,
	}

	best, quotes, err := engine.Simulate(req)
	must(err)

	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "VENUE\tOUTPUT\tCOST\tNET\tTIME\tBRIDGE\tCONF")
	for _, q := range quotes {
		v, _ := engine.Venue(q.VenueIndex)
		fmt.Fprintf(w, "%d %s\t%s\t%s\t%s\t%ds\t%v\t%d\n",
			q.VenueIndex, v.Name, q.OutputAmount.Dec(), q.TotalCost.Dec(), q.NetOutput.Dec(),
			q.ExecutionTime, q.RequiresBridge, q.Confidence)
	}
	w.Flush()
	fmt.Printf("\nbest venue: %d (net %s)\n", best.VenueIndex, best.NetOutput.Dec())

	liquidity := map[uint32]uint32{0: 95, 1: 80, 2: 60}
	historical := map[uint32]uint32{0: 90, 1: 85, 2: 70}
	for _, profile := range []scoring.RiskProfile{scoring.ProfileConservative, scoring.ProfileBalanced, scoring.ProfileAggressive} {
		_, order, err := engine.Rank(req, profile, liquidity, historical)
		must(err)
		fmt.Printf("ranking (%s): %v\n", profile, order)
	}

	result, err := engine.ExecuteSwap(alice, req)
	must(err)
	fmt.Printf("\nexecuted swap %s\n  venue=%d crossChain=%v bridgeTx=%s\n",
		result.SwapID, result.Quote.VenueIndex, result.CrossChain, result.BridgeTxID)
	fmt.Printf("  balances: alice=%s vault=%s fees=%s\n",
		ledg.BalanceOf(tokenUSDC, alice).Dec(),
		ledg.BalanceOf(tokenUSDC, vault).Dec(),
		ledg.BalanceOf(tokenUSDC, fees).Dec())
}

func must(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, "route-sim:", err)
		os.Exit(1)
	}
}

func mustIndex(_ uint32, err error) { must(err) }
