package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/daystreak/internal/constants"
	"github.com/julianstephens/daystreak/internal/daylog"
	apperrors "github.com/julianstephens/daystreak/internal/errors"
	"github.com/julianstephens/daystreak/internal/models"
)

const day = "2024-03-01"

func habit(target int) models.Habit {
	return models.Habit{
		ID:           "h1",
		Name:         "read",
		CreationDate: day,
		TargetPerDay: target,
		SkipOnceIn:   7,
		Reward:       models.Cents(25).Ptr(),
	}
}

func singleDay(t *testing.T, state constants.DayState, count int) *daylog.Log {
	t.Helper()
	l, err := daylog.New([]models.DayRecord{{
		ID: "d1", HabitID: "h1", Date: day, State: state, Count: count, Reward: models.Cents(25).Ptr(),
	}})
	require.NoError(t, err)
	return l
}

func current(t *testing.T, l *daylog.Log) models.DayRecord {
	t.Helper()
	r, ok := l.Get(day)
	require.True(t, ok)
	return r
}

func TestAddRepReachesTarget(t *testing.T) {
	h := habit(2)
	l := singleDay(t, constants.DayUnchecked, 0)

	c, err := AddRep(h, l, day)
	require.NoError(t, err)
	assert.Equal(t, constants.DayUnchecked, c.After.State)
	assert.Equal(t, 1, c.After.Count)
	assert.Equal(t, models.Cents(25), c.RewardDelta)

	c, err = AddRep(h, l, day)
	require.NoError(t, err)
	assert.Equal(t, constants.DayChecked, c.After.State)
	assert.Equal(t, 2, current(t, l).Count)
}

func TestAddRepOnHiddenDayKeepsHiddenBelowTarget(t *testing.T) {
	l := singleDay(t, constants.DayHidden, 0)
	c, err := AddRep(habit(3), l, day)
	require.NoError(t, err)
	assert.Equal(t, constants.DayHidden, c.After.State)
	assert.Equal(t, 1, c.After.Count)
}

func TestRemoveRep(t *testing.T) {
	h := habit(2)

	t.Run("refused at zero", func(t *testing.T) {
		l := singleDay(t, constants.DayUnchecked, 0)
		c, err := RemoveRep(h, l, day)
		require.NoError(t, err)
		assert.True(t, c.Refused)
		assert.False(t, c.Changed())
		assert.Zero(t, c.RewardDelta)
	})

	t.Run("checked drops to unchecked", func(t *testing.T) {
		l := singleDay(t, constants.DayChecked, 2)
		c, err := RemoveRep(h, l, day)
		require.NoError(t, err)
		assert.Equal(t, constants.DayUnchecked, c.After.State)
		assert.Equal(t, 1, c.After.Count)
		assert.Equal(t, models.Cents(-25), c.RewardDelta)
	})

	t.Run("hidden stays hidden", func(t *testing.T) {
		l := singleDay(t, constants.DayHidden, 1)
		c, err := RemoveRep(h, l, day)
		require.NoError(t, err)
		assert.Equal(t, constants.DayHidden, c.After.State)
		assert.Equal(t, 0, c.After.Count)
	})
}

func TestSkip(t *testing.T) {
	h := habit(3)

	t.Run("clears partial count", func(t *testing.T) {
		l := singleDay(t, constants.DayUnchecked, 2)
		c, err := Skip(h, l, day)
		require.NoError(t, err)
		assert.Equal(t, constants.DaySkipped, c.After.State)
		assert.Equal(t, 0, c.After.Count)
		assert.Equal(t, models.Cents(-50), c.RewardDelta)
	})

	t.Run("refused on completed day", func(t *testing.T) {
		l := singleDay(t, constants.DayChecked, 3)
		c, err := Skip(h, l, day)
		require.NoError(t, err)
		assert.True(t, c.Refused)
		assert.Equal(t, constants.DayChecked, current(t, l).State)
	})
}

func TestLeavingSkipped(t *testing.T) {
	t.Run("redo below target", func(t *testing.T) {
		l := singleDay(t, constants.DaySkipped, 0)
		c, err := AddRepAndReplace(habit(2), l, day)
		require.NoError(t, err)
		assert.Equal(t, constants.DayUnchecked, c.After.State)
		assert.Equal(t, 1, c.After.Count)
	})

	t.Run("redo reaching target", func(t *testing.T) {
		l := singleDay(t, constants.DaySkipped, 0)
		c, err := AddRepAndReplace(habit(1), l, day)
		require.NoError(t, err)
		assert.Equal(t, constants.DayChecked, c.After.State)
	})

	t.Run("return", func(t *testing.T) {
		l := singleDay(t, constants.DaySkipped, 0)
		c, err := UncheckFromSkipped(habit(1), l, day)
		require.NoError(t, err)
		assert.Equal(t, constants.DayUnchecked, c.After.State)
		assert.Zero(t, c.RewardDelta)
	})
}

func TestHideAndUnhide(t *testing.T) {
	h := habit(2)

	l := singleDay(t, constants.DayUnchecked, 1)
	c, err := Hide(h, l, day)
	require.NoError(t, err)
	assert.Equal(t, constants.DayHidden, c.After.State)

	c, err = Unhide(h, l, day)
	require.NoError(t, err)
	assert.Equal(t, constants.DayUnchecked, c.After.State)

	done := singleDay(t, constants.DayUnchecked, 2)
	c, err = Hide(h, done, day)
	require.NoError(t, err)
	assert.Equal(t, constants.DayChecked, c.After.State)
}

func TestCheckAndUncheck(t *testing.T) {
	h := habit(3)
	l := singleDay(t, constants.DayUnchecked, 1)

	c, err := Check(h, l, day)
	require.NoError(t, err)
	assert.Equal(t, constants.DayChecked, c.After.State)
	assert.Equal(t, 3, c.After.Count)
	assert.Equal(t, models.Cents(50), c.RewardDelta)

	c, err = Uncheck(h, l, day)
	require.NoError(t, err)
	assert.Equal(t, constants.DayUnchecked, c.After.State)
	assert.Equal(t, 0, c.After.Count)
	assert.Equal(t, models.Cents(-75), c.RewardDelta)
}

func TestTransitionOnMissingDay(t *testing.T) {
	l := singleDay(t, constants.DayUnchecked, 0)
	_, err := AddRep(habit(1), l, "2024-03-02")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNoSuchDay)
	assert.Equal(t, 1, l.Len())
}

func TestRewardlessHabitHasNoDelta(t *testing.T) {
	h := habit(1)
	h.Reward = nil
	l, err := daylog.New([]models.DayRecord{{ID: "d1", Date: day, State: constants.DayUnchecked}})
	require.NoError(t, err)

	c, err := AddRep(h, l, day)
	require.NoError(t, err)
	assert.Zero(t, c.RewardDelta)
}

func TestApplyDispatch(t *testing.T) {
	l := singleDay(t, constants.DayUnchecked, 0)
	c, err := Apply(ActionCheck, habit(1), l, day)
	require.NoError(t, err)
	assert.Equal(t, constants.DayChecked, c.After.State)

	_, err = Apply(Action("explode"), habit(1), l, day)
	assert.Error(t, err)
}
