package nats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVenueUpdateSubjectRoundTrip(t *testing.T) {
	subject := VenueUpdateSubject(7)
	assert.Equal(t, "venues.updated.7", subject)

	index, err := ParseVenueUpdateSubject(subject)
	require.NoError(t, err)
	assert.Equal(t, uint32(7), index)
}

func TestParseVenueUpdateSubjectRejectsMalformed(t *testing.T) {
	for _, subject := range []string{"venues.updated", "venues.updated.x", "swaps.optimized.local"} {
		_, err := ParseVenueUpdateSubject(subject)
		assert.Error(t, err, subject)
	}
}

func TestDefaultStreamsCoverEventSubjects(t *testing.T) {
	streams := DefaultStreams()
	require.Len(t, streams, 2)
	assert.Equal(t, StreamSwaps, streams[0].Name)
	assert.Equal(t, []string{"swaps.>"}, streams[0].Subjects)
	assert.Equal(t, []string{"venues.updated.*"}, streams[1].Subjects)
}
