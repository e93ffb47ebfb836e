package rebalance

import (
	"fmt"

	"github.com/etnz/rebalance/date"
)

// Market holds the price and dividend feed for a universe of securities.
//
// It is loaded once, up front, and then only read during a simulation run.
// The trading calendar is the set of days on which every security in the
// universe has a net asset value: a day with a missing quote is not a
// trading day for the account.
type Market struct {
	universe Universe
	navs     []*date.History[float64] // NAV per share, parallel to universe
	divs     []*date.History[float64] // dividend per share, parallel to universe

	days  []date.Date // cached trading calendar
	stale bool
}

// NewMarket returns an empty market feed for the given universe.
func NewMarket(universe Universe) *Market {
	m := &Market{universe: universe}
	m.navs = make([]*date.History[float64], len(universe))
	m.divs = make([]*date.History[float64], len(universe))
	for i := range universe {
		m.navs[i] = new(date.History[float64])
		m.divs[i] = new(date.History[float64])
	}
	return m
}

// Universe returns the security universe this feed covers.
func (m *Market) Universe() Universe { return m.universe }

// AddPrice records the NAV per share of a security on a given day.
func (m *Market) AddPrice(ticker string, on date.Date, nav float64) error {
	i := m.universe.Index(ticker)
	if i < 0 {
		return fmt.Errorf("unknown security %q", ticker)
	}
	m.navs[i].Append(on, nav)
	m.stale = true
	return nil
}

// AddDividend records the dividend per share paid by a security on a given day.
func (m *Market) AddDividend(ticker string, on date.Date, amount float64) error {
	i := m.universe.Index(ticker)
	if i < 0 {
		return fmt.Errorf("unknown security %q", ticker)
	}
	m.divs[i].Append(on, amount)
	return nil
}

// calendar returns the trading days: days where every security has a NAV.
func (m *Market) calendar() []date.Date {
	if m.days != nil && !m.stale {
		return m.days
	}
	m.days = m.days[:0]
	if len(m.navs) == 0 {
		return m.days
	}
	for on := range m.navs[0].Values() {
		complete := true
		for _, h := range m.navs[1:] {
			if _, ok := h.Get(on); !ok {
				complete = false
				break
			}
		}
		if complete {
			m.days = append(m.days, on)
		}
	}
	m.stale = false
	return m.days
}

// TradingDays returns the trading days within the inclusive range.
func (m *Market) TradingDays(rng date.Range) []date.Date {
	var days []date.Date
	for _, on := range m.calendar() {
		if rng.Contains(on) {
			days = append(days, on)
		}
	}
	return days
}

// SnapForward returns the first trading day on or after d.
func (m *Market) SnapForward(d date.Date) (date.Date, bool) {
	for _, on := range m.calendar() {
		if !on.Before(d) {
			return on, true
		}
	}
	return date.Date{}, false
}

// Coverage returns the date range spanned by the trading calendar. The
// second return value is false when the feed is empty.
func (m *Market) Coverage() (date.Range, bool) {
	days := m.calendar()
	if len(days) == 0 {
		return date.Range{}, false
	}
	return date.Range{From: days[0], To: days[len(days)-1]}, true
}

// Covers verifies that the feed has trading days spanning the whole range.
// The error names the security whose quotes limit coverage when one does.
func (m *Market) Covers(rng date.Range) error {
	days := m.calendar()
	if len(days) == 0 {
		return coverageErrorf("the feed is empty")
	}
	for i, h := range m.navs {
		oldest, _ := h.Oldest()
		latest, _ := h.Latest()
		if rng.From.Before(oldest) || rng.To.After(latest) {
			return coverageErrorf("requested range %s outside %s quotes [%s, %s]",
				rng, m.universe[i].Ticker(), oldest, latest)
		}
	}
	first, last := days[0], days[len(days)-1]
	if rng.From.Before(first) || rng.To.After(last) {
		return coverageErrorf("requested range %s outside feed coverage [%s, %s]", rng, first, last)
	}
	return nil
}

// NAV returns the net asset value per share of the i-th security on a trading day.
// Requesting a day outside the trading calendar is a programming defect.
func (m *Market) NAV(i int, on date.Date) float64 {
	nav, ok := m.navs[i].Get(on)
	if !ok {
		panic(fmt.Sprintf("no NAV for %s on %s", m.universe[i].Ticker(), on))
	}
	return nav
}

// Dividend returns the dividend per share of the i-th security on a day, or 0.
func (m *Market) Dividend(i int, on date.Date) float64 {
	d, _ := m.divs[i].Get(on)
	return d
}
