package types

import "errors"

// Price data failures. These are downgraded to zero-output quotes inside the
// venue scan; they only surface directly from the oracle adapter itself.
var (
	ErrPriceUnavailable = errors.New("price unavailable")
	ErrStalePriceData   = errors.New("stale price data")
	ErrInvalidPriceData = errors.New("invalid price data")
)

// Input validation failures. The operation never starts.
var (
	ErrZeroAddress        = errors.New("zero address")
	ErrZeroAmount         = errors.New("zero amount")
	ErrExpiredDeadline    = errors.New("deadline expired")
	ErrTokenNotConfigured = errors.New("token has no active price config")
	ErrInvalidSlippage    = errors.New("slippage exceeds 10000 bps")
	ErrInvalidParameter   = errors.New("parameter out of bounds")
	ErrLengthMismatch     = errors.New("array length mismatch")
	ErrInvalidWeights     = errors.New("scoring weights must sum to 100")
	ErrInvalidSplit       = errors.New("split ratios must sum to 100")
	ErrNoSamples          = errors.New("no samples inside window")
)

// Authorization and guard failures.
var (
	ErrUnauthorized = errors.New("caller is not the owner")
	ErrNotPending   = errors.New("caller is not the pending owner")
	ErrPaused       = errors.New("engine is paused")
	ErrReentrancy   = errors.New("reentrant call")
)

// Bridge and execution failures.
var (
	ErrNoRoute             = errors.New("no bridge route")
	ErrAmountOutOfRange    = errors.New("amount outside bridge limits")
	ErrQuoteExpired        = errors.New("bridge quote expired")
	ErrBridgeFailed        = errors.New("bridge call failed")
	ErrUnknownTransaction  = errors.New("unknown bridge transaction")
	ErrNoUsableVenue       = errors.New("no venue produced a usable quote")
	ErrInsufficientOutput  = errors.New("best quote below minimum output")
	ErrInsufficientBalance = errors.New("insufficient token balance")
	ErrInsufficientPayment = errors.New("insufficient payment")
	ErrVenueNotFound       = errors.New("venue index out of range")
	ErrOverflow            = errors.New("fixed-point overflow")
)
