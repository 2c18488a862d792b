package window

import (
	"testing"

	"github.com/marketfeed/orderbook-engine/pkg/bookmodel"
)

func TestEmptyWindowMetricsAreZero(t *testing.T) {
	w := New()
	if w.WindowVolume() != 0 || w.WindowAmount() != 0 || w.VWAP() != 0 ||
		w.PriceRange() != 0 || w.Median() != 0 {
		t.Fatalf("expected all metrics zero on an empty window")
	}
}

func TestRecordTradeAccumulatesSums(t *testing.T) {
	w := New()
	w.RecordTrade(1_000_000_000, 100, 20)
	w.RecordTrade(2_000_000_000, 200, 30)

	if w.WindowVolume() != 50 {
		t.Fatalf("expected volume 50, got %d", w.WindowVolume())
	}
	wantAmount := bookmodel.Amount(100*20 + 200*30)
	if w.WindowAmount() != wantAmount {
		t.Fatalf("expected amount %d, got %d", wantAmount, w.WindowAmount())
	}
	wantVWAP := float64(wantAmount) / 50
	if got := w.VWAP(); got != wantVWAP {
		t.Fatalf("expected vwap %v, got %v", wantVWAP, got)
	}
}

func TestMedianOddAndEven(t *testing.T) {
	w := New()
	w.RecordTrade(1, 10, 1)
	w.RecordTrade(2, 30, 1)
	w.RecordTrade(3, 20, 1)
	if got := w.Median(); got != 20 {
		t.Fatalf("expected median 20, got %v", got)
	}

	w.RecordTrade(4, 40, 1)
	if got := w.Median(); got != 25 {
		t.Fatalf("expected median 25 after 4th trade, got %v", got)
	}
}

func TestPriceRangeTracksMinMax(t *testing.T) {
	w := New()
	w.RecordTrade(1, 100, 1)
	w.RecordTrade(2, 150, 1)
	w.RecordTrade(3, 80, 1)
	if got := w.PriceRange(); got != 70 {
		t.Fatalf("expected range 70, got %d", got)
	}
}

func TestOverflowEvictsOldestAndUpdatesSums(t *testing.T) {
	w := NewWithCapacity(4)
	w.RecordTrade(1, 10, 1)
	w.RecordTrade(2, 20, 1)
	w.RecordTrade(3, 30, 1)
	w.RecordTrade(4, 40, 1)
	// Ring is full; this fifth insert evicts the trade at price 10.
	w.RecordTrade(5, 50, 1)

	if w.WindowVolume() != 4 {
		t.Fatalf("expected volume 4 (capacity-bounded), got %d", w.WindowVolume())
	}
	wantAmount := bookmodel.Amount(20 + 30 + 40 + 50)
	if w.WindowAmount() != wantAmount {
		t.Fatalf("expected amount %d, got %d", wantAmount, w.WindowAmount())
	}
	if got := w.Median(); got != 35 {
		t.Fatalf("expected median 35 after eviction, got %v", got)
	}
}

func TestEvictExpiredRetainsRightOpenWindow(t *testing.T) {
	w := New()
	const t0 = int64(1_700_000_000) * 1_000_000_000

	w.RecordTrade(uint64(t0), 100, 10)
	w.RecordTrade(uint64(t0+601*1_000_000_000), 110, 20)

	// t0 = 1,700,000,000s = 2023-11-14T22:13:20Z; the second trade lands
	// at 22:23:21Z, and this grid time one second later pushes the
	// cutoff just past the first trade while keeping the second.
	ok := w.EvictExpired(20231114222322)
	if !ok {
		t.Fatalf("expected valid grid time to succeed")
	}
	if w.WindowVolume() != 20 {
		t.Fatalf("expected volume 20 after eviction, got %d", w.WindowVolume())
	}
	if w.PriceRange() != 0 {
		t.Fatalf("expected price range 0 with a single trade left, got %d", w.PriceRange())
	}
	if got := w.VWAP(); got != 110 {
		t.Fatalf("expected vwap 110, got %v", got)
	}
}

func TestEvictExpiredMalformedGridTimeLeavesWindowUntouched(t *testing.T) {
	w := New()
	w.RecordTrade(1_000_000_000, 100, 10)

	ok := w.EvictExpired(20231199999999) // month 99, invalid
	if ok {
		t.Fatalf("expected malformed grid time to report failure")
	}
	if w.WindowVolume() != 10 {
		t.Fatalf("expected window untouched by malformed eviction call")
	}
}

func TestClearEmptiesWindow(t *testing.T) {
	w := New()
	w.RecordTrade(1, 100, 10)
	w.RecordTrade(2, 200, 20)
	w.Clear()

	if w.WindowVolume() != 0 || w.WindowAmount() != 0 || w.Median() != 0 {
		t.Fatalf("expected window fully reset after Clear")
	}
}
