// Package game defines the wire payloads exchanged with the game backend.
//
// Inbound types decode the JSON payloads of Socket.IO event frames. Outbound
// command types marshal to the payloads the backend expects on placeBet and
// sellBet. Field names follow the backend's JSON exactly.
//
// Conventions:
//   - Prices: multipliers relative to 1.0 (1.05 = +5%)
//   - Amounts and payouts: SOL
//   - Missing fields decode to their zero value; handlers treat zero as absent
package game
