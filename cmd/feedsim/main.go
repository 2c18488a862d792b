// Command feedsim replays a small synthetic feed through the router and
// grid driver, runs one grid tick (its signal rows go to io.Discard) and
// logs the resulting BBO and depth, the same quick ad-hoc exercise shape
// as the teacher's
// cmd/experiment/experiment.go, rebuilt around the feed/dispatch/
// griddriver pipeline instead of calling the engine directly.
package main

import (
	"io"
	"log"

	"github.com/marketfeed/orderbook-engine/internal/dispatch"
	"github.com/marketfeed/orderbook-engine/internal/feed"
	"github.com/marketfeed/orderbook-engine/internal/griddriver"
	"github.com/marketfeed/orderbook-engine/internal/sigwriter"
	"github.com/marketfeed/orderbook-engine/pkg/bookmodel"
)

func main() {
	messages := []feed.Message{
		feed.AddOrder{SymbolName: "AAPL", OrderID: 1, Side: bookmodel.Sell, Price: 10_000, Qty: 10},
		feed.AddOrder{SymbolName: "AAPL", OrderID: 2, Side: bookmodel.Buy, Price: 9_000, Qty: 10},
		feed.AddOrder{SymbolName: "AAPL", OrderID: 3, Side: bookmodel.Buy, Price: 10_000, Qty: 5},
		feed.AddTrade{SymbolName: "AAPL", OrderID: 1, TradeID: 1, Side: bookmodel.Sell, Price: 10_000, Qty: 5, TradeTimeNs: 1_700_000_000_000_000_000},
	}

	router := dispatch.New()
	go router.Run()

	reader := feed.NewSimReader(messages)
	for {
		msg, err := reader.Next()
		if err != nil {
			break
		}
		router.Dispatch(msg)
	}

	bbo := router.Snapshot("AAPL")
	log.Printf("AAPL BBO after replay: %+v", bbo)

	writer := sigwriter.New(io.Discard, 0, 0)
	driver := griddriver.New(router, 0, writer, nil, log.New(io.Discard, "", 0))
	driver.Tick(20231114221340)

	bids, asks := router.DepthSnapshot("AAPL", 5)
	log.Printf("AAPL bids: %+v", bids)
	log.Printf("AAPL asks: %+v", asks)
}
