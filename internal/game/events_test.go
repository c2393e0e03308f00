package game

import (
	"encoding/json"
	"testing"
)

func TestBetPlaced_EffectiveEntryPrice(t *testing.T) {
	tests := []struct {
		name string
		bet  BetPlaced
		want float64
	}{
		{"dedicated field", BetPlaced{EntryPrice: 1.02, Price: 1.10}, 1.02},
		{"fallback to price", BetPlaced{Price: 1.10}, 1.10},
		{"neither present", BetPlaced{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.bet.EffectiveEntryPrice(); got != tt.want {
				t.Errorf("EffectiveEntryPrice() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPlaceBetCommand_MarshalsNullMultipliers(t *testing.T) {
	data, err := json.Marshal(PlaceBetCommand{Amount: 0.01})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	want := `{"amount":0.01,"autoSellMultiplier":null,"stopLossMultiplier":null}`
	if string(data) != want {
		t.Errorf("Marshal = %s, want %s", data, want)
	}
}

func TestStateUpdate_DecodesWirePayload(t *testing.T) {
	raw := `{"price":1.2534,"tick":87,"active":true,"rugged":false,"gameId":"g-20260823-001"}`

	var st StateUpdate
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if st.Price != 1.2534 || st.Tick != 87 || !st.Active || st.Rugged || st.GameID != "g-20260823-001" {
		t.Errorf("decoded = %+v", st)
	}
}
