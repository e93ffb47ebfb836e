// Package rebalance simulates the day-by-day evolution of personal investment
// accounts subject to periodic rebalancing, trading fees, dividend
// reinvestment, and tax treatment.
//
// The core functionalities include:
//   - Account Ledger: one row per trading day recording cash, per-security
//     units and adjusted cost base, valuations, asset allocations and tax
//     accumulators.
//   - Trade Engine: buy, sell, and cash rebalancing primitives with fee and
//     adjusted-cost-base tax accounting.
//   - Dividend Processing: dividend income reinvested as units (DRIP), swept
//     into mutual-fund legs, or accumulated as cash.
//   - Rebalance Scheduling: detecting allocation drift beyond configured
//     bands on a periodic cadence and trading back within policy.
//   - Portfolio Coordination: allocating portfolio-level cash across several
//     accounts by priority and re-targeting each account's allocation.
//   - Return Analytics: annualized return, Sharpe, drawdown and related
//     ratios over the simulated after-tax return series.
//
// This package serves as the foundational logic for the `rbsim` command-line
// tool. A simulation run is a pure batch computation: the market feed is
// loaded up front, each account ledger is processed strictly forward in
// time, and a completed run returns a fully finalized ledger.
package rebalance
