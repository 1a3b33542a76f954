package model

// Event type tags for pool lifecycle events.
const (
	EventLiquidityMinted     = "liquidity_minted"
	EventLiquidityBurned     = "liquidity_burned"
	EventSwapOut             = "swap_out"
	EventSwapIn              = "swap_in"
	EventEmergencyWithdrawal = "emergency_withdrawal"
)

// PoolEvent is an observable pool event for monitoring and audit.
// Amount fields are decimal strings so arbitrary-precision values
// survive JSON round-trips.
type PoolEvent struct {
	Seq          uint64 `json:"seq"`
	Type         string `json:"type"`
	PoolAddress  string `json:"pool_address"`
	Actor        string `json:"actor"`
	Counterparty string `json:"counterparty,omitempty"`
	Asset        string `json:"asset,omitempty"`
	Amount       string `json:"amount"`
	Value        string `json:"value,omitempty"`
	Shares       string `json:"shares,omitempty"`
	Timestamp    uint64 `json:"timestamp"`
}
