package daylog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/daystreak/internal/constants"
	"github.com/julianstephens/daystreak/internal/models"
)

func rec(date string, state constants.DayState, count int) models.DayRecord {
	return models.DayRecord{ID: date, Date: date, State: state, Count: count}
}

func dates(records []models.DayRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Date
	}
	return out
}

func TestNewSortsAndIndexes(t *testing.T) {
	l, err := New([]models.DayRecord{
		rec("2024-01-03", constants.DayChecked, 1),
		rec("2024-01-01", constants.DayUnchecked, 0),
		rec("2024-01-02", constants.DaySkipped, 0),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"2024-01-01", "2024-01-02", "2024-01-03"}, dates(l.Records()))
	assert.Equal(t, []string{"2024-01-03", "2024-01-02", "2024-01-01"}, dates(l.Descending()))

	got, ok := l.Get("2024-01-02")
	require.True(t, ok)
	assert.Equal(t, constants.DaySkipped, got.State)

	first, _ := l.First()
	last, _ := l.Last()
	assert.Equal(t, "2024-01-01", first.Date)
	assert.Equal(t, "2024-01-03", last.Date)
}

func TestNewRejectsDuplicatesAndMalformedDates(t *testing.T) {
	_, err := New([]models.DayRecord{
		rec("2024-01-01", constants.DayUnchecked, 0),
		rec("2024-01-01", constants.DayChecked, 1),
	})
	assert.Error(t, err)

	_, err = New([]models.DayRecord{rec("01/01/2024", constants.DayUnchecked, 0)})
	assert.Error(t, err)
}

func TestPutReplacesExistingOnly(t *testing.T) {
	l, err := New([]models.DayRecord{rec("2024-01-01", constants.DayUnchecked, 0)})
	require.NoError(t, err)

	require.NoError(t, l.Put(rec("2024-01-01", constants.DayChecked, 1)))
	got, _ := l.Get("2024-01-01")
	assert.Equal(t, constants.DayChecked, got.State)

	assert.Error(t, l.Put(rec("2024-01-02", constants.DayChecked, 1)))
	assert.Equal(t, 1, l.Len())
}

func TestRemoveBefore(t *testing.T) {
	l, err := New([]models.DayRecord{
		rec("2024-01-01", constants.DayChecked, 1),
		rec("2024-01-02", constants.DayChecked, 1),
		rec("2024-01-03", constants.DayUnchecked, 0),
		rec("2024-01-04", constants.DayUnchecked, 0),
	})
	require.NoError(t, err)

	removed := l.RemoveBefore("2024-01-03")
	assert.Equal(t, []string{"2024-01-01", "2024-01-02"}, dates(removed))
	assert.Equal(t, []string{"2024-01-03", "2024-01-04"}, dates(l.Records()))
	assert.False(t, l.Has("2024-01-01"))

	got, ok := l.Get("2024-01-04")
	require.True(t, ok)
	assert.Equal(t, "2024-01-04", got.Date)

	assert.Empty(t, l.RemoveBefore("2023-12-31"))
}
