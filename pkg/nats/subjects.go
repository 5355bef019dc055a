package nats

import (
	"fmt"
	"strconv"
	"strings"
)

// Subject naming convention:
//
//	swaps.optimized.local            - swap executed on the local venue
//	swaps.executed.crosschain        - swap routed through the bridge
//	venues.updated.{index}           - venue registry mutation
//	prices.update                    - oracle price sample ingestion
//	router.simulate                  - request-reply: dry-run selection
//	router.venues                    - request-reply: registry snapshot
//	router.swap                      - request-reply: execute a swap
const (
	SubjectSwapOptimizedLocal     = "swaps.optimized.local"
	SubjectSwapExecutedCrossChain = "swaps.executed.crosschain"

	SubjectPriceUpdate = "prices.update"

	SubjectSimulate = "router.simulate"
	SubjectVenues   = "router.venues"
	SubjectSwap     = "router.swap"
)

// VenueUpdateSubject builds the subject for one venue's update events.
func VenueUpdateSubject(index uint32) string {
	return fmt.Sprintf("venues.updated.%d", index)
}

// ParseVenueUpdateSubject extracts the venue index from an update subject.
func ParseVenueUpdateSubject(subject string) (uint32, error) {
	parts := strings.Split(subject, ".")
	if len(parts) != 3 || parts[0] != "venues" || parts[1] != "updated" {
		return 0, fmt.Errorf("invalid venue update subject: %s", subject)
	}
	index, err := strconv.ParseUint(parts[2], 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid venue index in %s: %w", subject, err)
	}
	return uint32(index), nil
}

// Stream names for JetStream.
const (
	StreamSwaps  = "ROUTER_SWAPS"
	StreamVenues = "ROUTER_VENUES"
)

// DefaultStreams are the streams the daemon ensures on startup.
func DefaultStreams() []StreamConfig {
	return []StreamConfig{
		{Name: StreamSwaps, Subjects: []string{"swaps.>"}, MaxMsgs: 1_000_000},
		{Name: StreamVenues, Subjects: []string{"venues.updated.*"}, MaxMsgs: 100_000},
	}
}
