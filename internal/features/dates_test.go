package features

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		input   string
		want    time.Time
		wantErr bool
	}{
		{"2020-03-15", date(2020, 3, 15), false},
		{"2020-03", date(2020, 3, 1), false},
		{"2020", date(2020, 1, 1), false},
		{" 2021-07 ", date(2021, 7, 1), false},
		{"03/2020", time.Time{}, true},
		{"2020-13", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseDate(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %v", got)
		})
	}
}

func TestIsOpenEnded(t *testing.T) {
	assert.True(t, isOpenEnded(""))
	assert.True(t, isOpenEnded("Present"))
	assert.True(t, isOpenEnded("current"))
	assert.False(t, isOpenEnded("2020-01"))
}

func TestMergeIntervals(t *testing.T) {
	t.Run("overlapping", func(t *testing.T) {
		merged := mergeIntervals([]interval{
			{date(2019, 1, 1), date(2021, 1, 1)},
			{date(2018, 1, 1), date(2020, 1, 1)},
		})
		require.Len(t, merged, 1)
		assert.Equal(t, date(2018, 1, 1), merged[0].start)
		assert.Equal(t, date(2021, 1, 1), merged[0].end)
	})

	t.Run("touching", func(t *testing.T) {
		merged := mergeIntervals([]interval{
			{date(2018, 1, 1), date(2019, 1, 1)},
			{date(2019, 1, 1), date(2020, 1, 1)},
		})
		assert.Len(t, merged, 1)
	})

	t.Run("nested", func(t *testing.T) {
		merged := mergeIntervals([]interval{
			{date(2010, 1, 1), date(2020, 1, 1)},
			{date(2012, 1, 1), date(2013, 1, 1)},
		})
		require.Len(t, merged, 1)
		assert.Equal(t, date(2020, 1, 1), merged[0].end)
	})

	t.Run("disjoint", func(t *testing.T) {
		merged := mergeIntervals([]interval{
			{date(2020, 1, 1), date(2021, 1, 1)},
			{date(2010, 1, 1), date(2011, 1, 1)},
		})
		require.Len(t, merged, 2)
		assert.Equal(t, date(2010, 1, 1), merged[0].start)
	})

	t.Run("empty", func(t *testing.T) {
		assert.Empty(t, mergeIntervals(nil))
	})
}

func TestTotalYears(t *testing.T) {
	years := totalYears([]interval{
		{date(2010, 1, 1), date(2012, 1, 1)},
		{date(2011, 1, 1), date(2013, 1, 1)},
		{date(2020, 1, 1), date(2021, 1, 1)},
	})
	assert.InDelta(t, 4.0, years, 0.01)
	assert.Equal(t, 0.0, totalYears(nil))
}
