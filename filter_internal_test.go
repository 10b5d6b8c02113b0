package workflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMakeFilter(t *testing.T) {
	cutoff := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	f := MakeFilter(
		FilterByOwnerID("user1"),
		FilterByStatus(StatusOpen),
		FilterByCreatedBefore(cutoff),
	)

	require.True(t, f.ByOwnerID().Enabled)
	require.Equal(t, "user1", f.ByOwnerID().Value)
	require.True(t, f.ByStatus().Enabled)
	require.Equal(t, "open", f.ByStatus().Value)
	require.True(t, f.ByCreatedBefore().Enabled)
	require.Equal(t, cutoff, f.ByCreatedBefore().Value)
}

func TestMakeFilterEmpty(t *testing.T) {
	f := MakeFilter()

	require.False(t, f.ByOwnerID().Enabled)
	require.False(t, f.ByStatus().Enabled)
	require.False(t, f.ByCreatedBefore().Enabled)
}
