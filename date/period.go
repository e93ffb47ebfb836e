package date

import (
	"fmt"
	"strings"
)

// Period is a rebalancing cadence. The short aliases follow the usual
// time-series resampling conventions: D (day), B (business day), M (month
// end), Q (quarter end), A (year end), BA (business year end).
type Period int

const (
	Daily Period = iota
	BusinessDaily
	Monthly
	Quarterly
	Yearly
	BusinessYearly
)

func (p Period) String() string {
	switch p {
	case Daily:
		return "D"
	case BusinessDaily:
		return "B"
	case Monthly:
		return "M"
	case Quarterly:
		return "Q"
	case Yearly:
		return "A"
	case BusinessYearly:
		return "BA"
	default:
		panic(fmt.Sprintf("unknown period %d", p))
	}
}

// IsDaily reports whether the period triggers on every trading day rather
// than on period ends.
func (p Period) IsDaily() bool { return p == Daily || p == BusinessDaily }

// ParsePeriod parses a Period from its short alias or long name.
func ParsePeriod(s string) (Period, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "D", "DAILY", "DAY":
		return Daily, nil
	case "B", "BUSINESS", "BUSINESS-DAILY":
		return BusinessDaily, nil
	case "M", "MONTHLY", "MONTH":
		return Monthly, nil
	case "Q", "QUARTERLY", "QUARTER":
		return Quarterly, nil
	case "A", "YEARLY", "YEAR", "ANNUAL":
		return Yearly, nil
	case "BA", "BUSINESS-YEARLY":
		return BusinessYearly, nil
	default:
		return Daily, fmt.Errorf("unknown period %q", s)
	}
}

// UnmarshalYAML parses a period from its alias in a run definition file.
func (p *Period) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var str string
	if err := unmarshal(&str); err != nil {
		return err
	}
	v, err := ParsePeriod(str)
	if err != nil {
		return err
	}
	*p = v
	return nil
}

func (p Period) MarshalYAML() (interface{}, error) { return p.String(), nil }
