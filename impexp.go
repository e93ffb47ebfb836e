package rebalance

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/etnz/rebalance/date"
)

// this file contains functions to handle the market feed import/export format.
// It should remain human readable, single file and easy to diff.

// jsecurity is the readable, single-line form of one security's feed.
type jsecurity struct {
	Ticker    string             `json:"ticker"`
	Class     string             `json:"class"`
	Fund      string             `json:"fund"`
	NAV       map[string]float64 `json:"nav"`
	Dividends map[string]float64 `json:"dividends,omitempty"`
}

// ImportMarket imports a market feed from 'r' in the import/export format.
//
// The format is a JSONL file, one line per security. Each line is a JSON
// object with the security 'ticker', its asset 'class' (fixed_income or
// equity), its 'fund' type (ETF or mutual_fund), a 'nav' object mapping
// trading dates to NAV per share, and an optional 'dividends' object mapping
// dates to dividend per share. The order of lines defines the universe order.
func ImportMarket(r io.Reader) (*Market, error) {
	var jsecurities []jsecurity
	scanner := bufio.NewScanner(r)
	// A full daily history is one long line per security.
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}
		var js jsecurity
		if err := json.Unmarshal(line, &js); err != nil {
			return nil, fmt.Errorf("cannot parse line for market import format: %q: %w", string(line), err)
		}
		jsecurities = append(jsecurities, js)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("cannot read market feed: %w", err)
	}

	universe := make(Universe, 0, len(jsecurities))
	for _, js := range jsecurities {
		class, err := ParseAssetClass(js.Class)
		if err != nil {
			return nil, fmt.Errorf("security %q: %w", js.Ticker, err)
		}
		fund, err := ParseFundType(js.Fund)
		if err != nil {
			return nil, fmt.Errorf("security %q: %w", js.Ticker, err)
		}
		universe = append(universe, NewSecurity(js.Ticker, class, fund))
	}

	m := NewMarket(universe)
	for _, js := range jsecurities {
		for day, nav := range js.NAV {
			on, err := date.Parse(day)
			if err != nil {
				return nil, fmt.Errorf("security %q: %w", js.Ticker, err)
			}
			if err := m.AddPrice(js.Ticker, on, nav); err != nil {
				return nil, err
			}
		}
		for day, amount := range js.Dividends {
			on, err := date.Parse(day)
			if err != nil {
				return nil, fmt.Errorf("security %q: %w", js.Ticker, err)
			}
			if err := m.AddDividend(js.Ticker, on, amount); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

// ExportMarket writes the market feed to 'w' in the import/export format.
func ExportMarket(m *Market, w io.Writer) error {
	for i, sec := range m.universe {
		js := jsecurity{
			Ticker: sec.Ticker(),
			Class:  sec.Class().String(),
			Fund:   sec.Fund().String(),
			NAV:    make(map[string]float64),
		}
		for on, nav := range m.navs[i].Values() {
			js.NAV[on.String()] = nav
		}
		if m.divs[i].Len() > 0 {
			js.Dividends = make(map[string]float64)
			for on, amount := range m.divs[i].Values() {
				js.Dividends[on.String()] = amount
			}
		}
		line, err := json.Marshal(js)
		if err != nil {
			return fmt.Errorf("cannot marshal security %q: %w", sec.Ticker(), err)
		}
		if _, err := fmt.Fprintf(w, "%s\n", line); err != nil {
			return err
		}
	}
	return nil
}
