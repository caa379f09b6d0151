package updates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestGroupByDayLabels(t *testing.T) {
	now := time.Date(2025, time.June, 15, 18, 30, 0, 0, time.UTC)
	items := []ServiceUpdate{
		{ID: 1, OccurredOn: day(2025, time.June, 15), WiperName: "Ravi"},
		{ID: 2, OccurredOn: day(2025, time.June, 15), WiperName: "Ravi"},
		{ID: 3, OccurredOn: day(2025, time.June, 14), WiperName: "Suresh"},
		{ID: 4, OccurredOn: day(2025, time.June, 12), WiperName: "Ravi"},
	}

	groups := GroupByDay(items, now)

	require.Len(t, groups, 3)
	assert.Equal(t, "Today", groups[0].Label)
	assert.Len(t, groups[0].Items, 2)
	assert.Equal(t, "Yesterday", groups[1].Label)
	assert.Equal(t, "12 Jun 2025", groups[2].Label)
}

func TestGroupByDayComparesDatesNotOffsets(t *testing.T) {
	// Just past midnight: an update from 30 minutes ago is "Yesterday".
	now := time.Date(2025, time.June, 15, 0, 10, 0, 0, time.UTC)
	items := []ServiceUpdate{
		{ID: 1, OccurredOn: day(2025, time.June, 14)},
	}
	groups := GroupByDay(items, now)
	require.Len(t, groups, 1)
	assert.Equal(t, "Yesterday", groups[0].Label)
}

func TestGroupByDayPreservesOrderWithinBucket(t *testing.T) {
	now := time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)
	items := []ServiceUpdate{
		{ID: 7, OccurredOn: day(2025, time.June, 15)},
		{ID: 9, OccurredOn: day(2025, time.June, 15)},
	}
	groups := GroupByDay(items, now)
	require.Len(t, groups, 1)
	assert.Equal(t, 7, groups[0].Items[0].ID)
	assert.Equal(t, 9, groups[0].Items[1].ID)
}

func TestGroupByDayEmpty(t *testing.T) {
	groups := GroupByDay(nil, time.Now())
	assert.NotNil(t, groups)
	assert.Empty(t, groups)
}
