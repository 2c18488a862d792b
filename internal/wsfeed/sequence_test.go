package wsfeed

import "testing"

func TestSequencerIsMonotonicPerSymbol(t *testing.T) {
	var s sequencer

	if got := s.next("AAPL"); got != 1 {
		t.Fatalf("expected first seq 1, got %d", got)
	}
	if got := s.next("AAPL"); got != 2 {
		t.Fatalf("expected second seq 2, got %d", got)
	}
	if got := s.next("MSFT"); got != 1 {
		t.Fatalf("expected MSFT's first seq to start at 1, got %d", got)
	}
}
