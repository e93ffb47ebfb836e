package rebalance

import (
	"errors"
	"strings"
	"testing"

	"github.com/etnz/rebalance/date"
)

func TestMarketCalendarIntersectsQuotes(t *testing.T) {
	m := NewMarket(DefaultUniverse())
	days := []date.Date{
		date.New(2002, 1, 2),
		date.New(2002, 1, 3),
		date.New(2002, 1, 4),
	}
	for _, on := range days {
		for _, s := range m.Universe() {
			// XIC misses a quote on the 3rd: that day is not tradable.
			if s.Ticker() == "XIC" && on == date.New(2002, 1, 3) {
				continue
			}
			if err := m.AddPrice(s.Ticker(), on, 10); err != nil {
				t.Fatalf("AddPrice: %v", err)
			}
		}
	}

	got := m.TradingDays(date.Range{From: days[0], To: days[2]})
	want := []date.Date{days[0], days[2]}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("TradingDays = %v, want %v", got, want)
	}
}

func TestMarketSnapForward(t *testing.T) {
	m := testMarket(t, date.New(2002, 1, 1), date.New(2002, 1, 31))

	// Saturday snaps to Monday.
	got, ok := m.SnapForward(date.New(2002, 1, 5))
	if !ok || got != date.New(2002, 1, 7) {
		t.Errorf("SnapForward(Saturday) = %s, %v, want 2002-01-07", got, ok)
	}
	// A trading day snaps to itself.
	got, ok = m.SnapForward(date.New(2002, 1, 8))
	if !ok || got != date.New(2002, 1, 8) {
		t.Errorf("SnapForward(trading day) = %s, %v, want itself", got, ok)
	}
	// Past the feed there is nothing to snap to.
	if _, ok := m.SnapForward(date.New(2002, 2, 1)); ok {
		t.Error("SnapForward past the feed succeeded")
	}
}

func TestMarketCovers(t *testing.T) {
	m := testMarket(t, date.New(2002, 1, 1), date.New(2002, 12, 31))

	if err := m.Covers(date.Range{From: date.New(2002, 2, 1), To: date.New(2002, 11, 30)}); err != nil {
		t.Errorf("Covers inside the feed: %v", err)
	}
	err := m.Covers(date.Range{From: date.New(2002, 2, 1), To: date.New(2003, 6, 30)})
	if err == nil {
		t.Fatal("Covers accepted a range past the feed")
	}
	var cerr *DataCoverageError
	if !errors.As(err, &cerr) {
		t.Errorf("Covers error = %T, want *DataCoverageError", err)
	}
}

func TestMarketCoversNamesShortSecurity(t *testing.T) {
	m := NewMarket(DefaultUniverse())
	for on := date.New(2002, 1, 2); !on.After(date.New(2002, 1, 31)); on = on.Add(1) {
		if !on.IsBusinessDay() {
			continue
		}
		for _, s := range m.Universe() {
			// XIC quotes start two weeks late.
			if s.Ticker() == "XIC" && on.Before(date.New(2002, 1, 16)) {
				continue
			}
			if err := m.AddPrice(s.Ticker(), on, 10); err != nil {
				t.Fatalf("AddPrice: %v", err)
			}
		}
	}

	err := m.Covers(date.Range{From: date.New(2002, 1, 2), To: date.New(2002, 1, 31)})
	if err == nil {
		t.Fatal("Covers accepted a range before the first XIC quote")
	}
	if !strings.Contains(err.Error(), "XIC") {
		t.Errorf("Covers error %q does not name the short security", err)
	}
}

func TestMarketDividendDefaultsToZero(t *testing.T) {
	m := testMarket(t, date.New(2002, 1, 1), date.New(2002, 1, 31))
	i := m.Universe().Index("XBB")
	if got := m.Dividend(i, date.New(2002, 1, 8)); got != 0 {
		t.Errorf("Dividend on a plain day = %v, want 0", got)
	}
}
