package signal

import (
	"testing"

	"github.com/marketfeed/orderbook-engine/internal/book"
	"github.com/marketfeed/orderbook-engine/pkg/bookmodel"
)

func TestComputeSuppressesMidSpreadMacroOnOneSidedBook(t *testing.T) {
	e := book.New()
	e.AddOrder(1, 100, 10, bookmodel.Buy)

	tick := Compute(e)
	for _, name := range []Name{MidPrice, Spread, MacroPrice} {
		if _, ok := tick[name]; ok {
			t.Fatalf("expected %s to be suppressed on a one-sided book", name)
		}
	}
	if _, ok := tick[Imbalance5]; !ok {
		t.Fatalf("expected imbalance_5 to survive with one resting side")
	}
}

func TestComputeSuppressesWindowMetricsWithNoTrades(t *testing.T) {
	e := book.New()
	e.AddOrder(1, 100, 10, bookmodel.Buy)
	e.AddOrder(2, 110, 10, bookmodel.Sell)

	tick := Compute(e)
	for _, name := range []Name{Volume10Min, Amount10Min, VWAP10Min, MedianPrice10Min, VWAPLevel10Min} {
		if _, ok := tick[name]; ok {
			t.Fatalf("expected %s to be suppressed with zero recorded trades", name)
		}
	}
	if _, ok := tick[MidPrice]; !ok {
		t.Fatalf("expected mid_price to survive on a symmetric book")
	}
}

func TestComputeEmitsWindowMetricsAfterATrade(t *testing.T) {
	e := book.New()
	e.AddOrder(1, 100, 50, bookmodel.Sell)
	e.ProcessTrade(1, 1, 100, 20, bookmodel.Sell, 1)

	tick := Compute(e)
	if got, ok := tick[Volume10Min]; !ok || got != 20 {
		t.Fatalf("expected volume_10min 20, got %v ok=%v", got, ok)
	}
	if got, ok := tick[VWAP10Min]; !ok || got != 100 {
		t.Fatalf("expected vwap_10min 100, got %v ok=%v", got, ok)
	}
}

func TestVWAPLevelDetailInsideSpread(t *testing.T) {
	e := book.New()
	e.AddOrder(1, 100, 10, bookmodel.Buy)
	e.AddOrder(2, 110, 10, bookmodel.Sell)

	level, class := VWAPLevelDetail(e, 105)
	if level != 0 || class != InsideSpread {
		t.Fatalf("expected (0, inside_spread), got (%d, %s)", level, class)
	}
}

func TestVWAPLevelDetailInBook(t *testing.T) {
	e := book.New()
	e.AddOrder(1, 100, 10, bookmodel.Buy)
	e.AddOrder(2, 99, 10, bookmodel.Buy)
	e.AddOrder(3, 200, 10, bookmodel.Sell)
	e.AddOrder(4, 210, 10, bookmodel.Sell)

	level, class := VWAPLevelDetail(e, 205)
	if level != -1 || class != InBook {
		t.Fatalf("expected (-1, in_book), got (%d, %s)", level, class)
	}
}

func TestVWAPLevelDetailBeyondBook(t *testing.T) {
	e := book.New()
	e.AddOrder(1, 100, 10, bookmodel.Buy)

	level, class := VWAPLevelDetail(e, 50)
	if level != 0 || class != BeyondBook {
		t.Fatalf("expected (0, beyond_book), got (%d, %s)", level, class)
	}
}
