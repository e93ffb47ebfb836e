package rebalance

import "fmt"

// AssetClass partitions the account's holdings for allocation purposes.
type AssetClass int

const (
	Cash AssetClass = iota
	FixedIncome
	Equity
)

func (c AssetClass) String() string {
	switch c {
	case Cash:
		return "cash"
	case FixedIncome:
		return "fixed_income"
	case Equity:
		return "equity"
	default:
		panic(fmt.Sprintf("unknown asset class %d", c))
	}
}

// ParseAssetClass parses an AssetClass from its name.
func ParseAssetClass(s string) (AssetClass, error) {
	switch s {
	case "cash":
		return Cash, nil
	case "fixed_income":
		return FixedIncome, nil
	case "equity":
		return Equity, nil
	default:
		return 0, fmt.Errorf("unknown asset class: %q", s)
	}
}

// FundType distinguishes exchange-traded funds, which pay the flat trade fee,
// from mutual funds, which trade free.
type FundType int

const (
	ETF FundType = iota
	MutualFund
)

func (t FundType) String() string {
	switch t {
	case ETF:
		return "ETF"
	case MutualFund:
		return "mutual_fund"
	default:
		panic(fmt.Sprintf("unknown fund type %d", t))
	}
}

// ParseFundType parses a FundType from its name.
func ParseFundType(s string) (FundType, error) {
	switch s {
	case "ETF", "etf":
		return ETF, nil
	case "mutual_fund":
		return MutualFund, nil
	default:
		return 0, fmt.Errorf("unknown fund type: %q", s)
	}
}

// Security identifies one tradable fund in the universe.
type Security struct {
	ticker string
	class  AssetClass
	fund   FundType
}

// NewSecurity declares a security with its ticker, asset class and fund type.
func NewSecurity(ticker string, class AssetClass, fund FundType) Security {
	return Security{ticker: ticker, class: class, fund: fund}
}

func (s Security) Ticker() string    { return s.ticker }
func (s Security) Class() AssetClass { return s.class }
func (s Security) Fund() FundType    { return s.fund }
func (s Security) String() string    { return s.ticker }

// Universe is the fixed set of securities an account may hold: one
// mutual-fund and one ETF leg per invested asset class. It is an explicit
// value owned by the ledger, so distinct universes can coexist in tests.
type Universe []Security

// DefaultUniverse returns the standard four-fund universe: broad-bond and
// broad-equity ETFs plus their low-cost mutual-fund equivalents.
func DefaultUniverse() Universe {
	return Universe{
		NewSecurity("XBB", FixedIncome, ETF),
		NewSecurity("XIC", Equity, ETF),
		NewSecurity("TD_Bond", FixedIncome, MutualFund),
		NewSecurity("TD_CDN_Equity", Equity, MutualFund),
	}
}

// Index returns the position of ticker in the universe, or -1.
func (u Universe) Index(ticker string) int {
	for i, s := range u {
		if s.ticker == ticker {
			return i
		}
	}
	return -1
}

// Leg returns the index of the security of the given class and fund type, or -1.
// Each (class, fund) pair identifies at most one leg.
func (u Universe) Leg(class AssetClass, fund FundType) int {
	for i, s := range u {
		if s.class == class && s.fund == fund {
			return i
		}
	}
	return -1
}

// SellOrder returns the legs of the given class in liquidation order: the
// mutual-fund leg first, then the ETF leg. This ordering is part of the trade
// policy and is relied upon by the trade engine.
func (u Universe) SellOrder(class AssetClass) []int {
	order := make([]int, 0, 2)
	if i := u.Leg(class, MutualFund); i >= 0 {
		order = append(order, i)
	}
	if i := u.Leg(class, ETF); i >= 0 {
		order = append(order, i)
	}
	return order
}
