// Package strategy implements the threshold trading rules.
//
// The Evaluator consumes routed game events and emits placeBet/sellBet
// commands through the connection layer. The Ledger tracks positions,
// win/loss streaks, daily profit and loss, and the running balance, and
// arms the emergency stop when a risk limit is hit.
package strategy
