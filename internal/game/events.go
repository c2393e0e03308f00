package game

// StateUpdate is the payload of a gameStateUpdate event, broadcast on every
// price tick of the current round.
type StateUpdate struct {
	Price  float64 `json:"price"`
	Tick   int64   `json:"tick"`
	Active bool    `json:"active"`
	Rugged bool    `json:"rugged"`
	GameID string  `json:"gameId"`
}

// BetPlaced confirms that a placeBet command was accepted. EntryPrice is the
// executed price; some backends send it as price instead, so both are kept
// and EffectiveEntryPrice picks the populated one.
type BetPlaced struct {
	ID         string  `json:"id"`
	EntryPrice float64 `json:"entryPrice"`
	Price      float64 `json:"price"`
	Amount     float64 `json:"amount"`
}

// EffectiveEntryPrice returns the executed entry price, preferring the
// dedicated field over the generic one. Zero when neither is present.
func (b BetPlaced) EffectiveEntryPrice() float64 {
	if b.EntryPrice > 0 {
		return b.EntryPrice
	}
	return b.Price
}

// BetSold confirms a sellBet command. Payout includes the returned stake.
type BetSold struct {
	Payout float64 `json:"payout"`
	Price  float64 `json:"price"`
}

// BetLost reports a liquidated bet, usually on a rug pull. Amount is the
// stake forfeited.
type BetLost struct {
	Amount float64 `json:"amount"`
}

// PlaceBetCommand is the outbound placeBet payload. The multiplier pointers
// marshal to JSON null when unset, which tells the backend that exits are
// managed client side.
type PlaceBetCommand struct {
	Amount             float64  `json:"amount"`
	AutoSellMultiplier *float64 `json:"autoSellMultiplier"`
	StopLossMultiplier *float64 `json:"stopLossMultiplier"`
}

// SellBetCommand is the outbound sellBet payload. Percentage is the share of
// the position to close, 100 for a full exit.
type SellBetCommand struct {
	Percentage int `json:"percentage"`
}
