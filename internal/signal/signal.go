// Package signal assembles the grid-tick signal set spec.md §6 enumerates
// from a book.Engine and its attached trade window, applying the
// suppression predicate that distinguishes "no signal" from "zero
// signal" for the CSV writer and websocket hub.
package signal

import "github.com/marketfeed/orderbook-engine/internal/book"

// Classification values for VWAPLevelDetail, per SPEC_FULL §5.
const (
	InsideSpread = "inside_spread"
	BeyondBook   = "beyond_book"
	InBook       = "in_book"
)

// Name is a grid-tick signal identifier, matching the columns spec.md §6
// lists verbatim.
type Name string

const (
	MidPrice         Name = "mid_price"
	Spread           Name = "spread"
	MacroPrice       Name = "macro_price"
	Imbalance5       Name = "imbalance_5"
	Imbalance10      Name = "imbalance_10"
	Pressure5        Name = "pressure_5"
	Pressure10       Name = "pressure_10"
	PriceRange10Min  Name = "price_range_10min"
	Volume10Min      Name = "volume_10min"
	Amount10Min      Name = "amount_10min"
	VWAP10Min        Name = "vwap_10min"
	MedianPrice10Min Name = "median_price_10min"
	VWAPLevel10Min   Name = "vwap_level_10min"
)

// Order is the canonical column order for the signal set, used by the
// CSV writer so every row has a stable schema.
var Order = []Name{
	MidPrice, Spread, MacroPrice,
	Imbalance5, Imbalance10,
	Pressure5, Pressure10,
	PriceRange10Min, Volume10Min, Amount10Min,
	VWAP10Min, MedianPrice10Min, VWAPLevel10Min,
}

// Tick is one grid tick's surviving signal values, keyed by Name. A
// signal absent from the map was suppressed, which the CSV writer must
// render as an empty cell rather than a literal 0.
type Tick map[Name]float64

// Compute assembles every signal for e at the current grid tick and
// applies the suppression predicate from spec.md §6: mid/spread/macro
// require both sides non-empty; imbalance/pressure require at least one
// level on the side they represent; window metrics require at least one
// recorded trade.
func Compute(e *book.Engine) Tick {
	t := Tick{}

	bothSides := e.BidLevels() > 0 && e.AskLevels() > 0
	anyBookSide := e.BidLevels() > 0 || e.AskLevels() > 0

	if bothSides {
		t[MidPrice] = e.MidPrice()
		t[Spread] = e.Spread()
		t[MacroPrice] = e.MacroPrice()
	}
	if anyBookSide {
		t[Imbalance5] = e.Imbalance(5)
		t[Imbalance10] = e.Imbalance(10)
		t[Pressure5] = e.BookPressure(5)
		t[Pressure10] = e.BookPressure(10)
	}

	w := e.Window()
	if w.WindowVolume() > 0 {
		t[PriceRange10Min] = float64(w.PriceRange())
		t[Volume10Min] = float64(w.WindowVolume())
		t[Amount10Min] = float64(w.WindowAmount())
		vwap := w.VWAP()
		t[VWAP10Min] = vwap
		t[MedianPrice10Min] = w.Median()
		t[VWAPLevel10Min] = float64(e.VWAPLevel(vwap))
	}

	return t
}

// VWAPLevelDetail classifies the vwap_level_10min reading the way
// SPEC_FULL §5 adds beyond the core's plain int contract: 0 means "at the
// best bid or ask", "inside the spread" or "beyond the deepest retained
// level" depending on whether vwap equals a best quote, falls between the
// two best quotes, or lies past the last level visited during the scan;
// this method disambiguates them for callers (the admin depth endpoint)
// that need it. A vwap equal to a best quote is classified InBook.
func VWAPLevelDetail(e *book.Engine, vwap float64) (level int, classification string) {
	level = e.VWAPLevel(vwap)
	if level != 0 {
		return level, InBook
	}

	bbo := e.BBO()
	if (e.AskLevels() > 0 && vwap == float64(bbo.AskPrice)) ||
		(e.BidLevels() > 0 && vwap == float64(bbo.BidPrice)) {
		return 0, InBook
	}
	if e.BidLevels() > 0 && e.AskLevels() > 0 &&
		vwap > float64(bbo.BidPrice) && vwap < float64(bbo.AskPrice) {
		return 0, InsideSpread
	}
	return 0, BeyondBook
}
