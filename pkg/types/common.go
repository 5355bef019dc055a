package types

// Address identifies an account, contract, or token on a chain.
type Address string

// ZeroAddress is the null account.
const ZeroAddress Address = ""

// IsZero reports whether the address is unset.
func (a Address) IsZero() bool {
	return a == ZeroAddress
}

// Token is a token contract address.
type Token = Address

// ChainID identifies an execution chain.
type ChainID uint64

// FeedID identifies a price feed on the oracle collaborator.
type FeedID string

// Basis-point domain. 10000 bps = 100%.
const MaxBps = 10000
