package types

// Venue is an execution destination: the local chain (index 0 in the registry)
// or a remote chain reachable through the bridge. Venues are identified by
// their registry index, which is stable for the life of the engine; a venue is
// never deleted, only deactivated.
type Venue struct {
	ChainID     ChainID `json:"chain_id"`
	Address     Address `json:"address"`
	Name        string  `json:"name"`
	Active      bool    `json:"active"`
	GasEstimate uint64  `json:"gas_estimate"` // base gas units for one execution
	LastUpdate  int64   `json:"last_update"`
	Reliability uint8   `json:"reliability"` // 0-100
}
