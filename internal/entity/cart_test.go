package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartAddMergesAndKeepsOrder(t *testing.T) {
	var c CartState
	require.NoError(t, c.Add("7", 1))
	require.NoError(t, c.Add("3", 2))
	require.NoError(t, c.Add("7", 4))

	assert.Equal(t, []CartLine{{"7", 5}, {"3", 2}}, c.Lines)
	assert.Equal(t, 7, c.Count())
}

func TestCartAddRejectsNonPositive(t *testing.T) {
	var c CartState
	assert.ErrorIs(t, c.Add("1", 0), ErrInvalidQuantity)
	assert.ErrorIs(t, c.Add("1", -3), ErrInvalidQuantity)
	assert.True(t, c.IsEmpty())
}

func TestCartDecrementFloorsAtOne(t *testing.T) {
	var c CartState
	require.NoError(t, c.Add("1", 2))

	require.NoError(t, c.Decrement("1"))
	require.NoError(t, c.Decrement("1"))
	require.NoError(t, c.Decrement("1"))

	q, ok := c.Quantity("1")
	assert.True(t, ok)
	assert.Equal(t, 1, q)
}

func TestCartDelete(t *testing.T) {
	var c CartState
	require.NoError(t, c.Add("1", 1))
	require.NoError(t, c.Add("2", 1))

	require.NoError(t, c.Delete("1"))
	_, ok := c.Quantity("1")
	assert.False(t, ok)
	assert.Equal(t, []CartLine{{"2", 1}}, c.Lines)
}

func TestCartMutationsOnMissingItem(t *testing.T) {
	var c CartState
	assert.ErrorIs(t, c.Increment("x"), ErrItemNotFound)
	assert.ErrorIs(t, c.Decrement("x"), ErrItemNotFound)
	assert.ErrorIs(t, c.Delete("x"), ErrItemNotFound)
}

func TestCartCloneIsIndependent(t *testing.T) {
	var c CartState
	require.NoError(t, c.Add("1", 1))
	cp := c.Clone()
	require.NoError(t, cp.Increment("1"))

	q, _ := c.Quantity("1")
	assert.Equal(t, 1, q)
}

func TestCartSubtractKeepsLaterAdditions(t *testing.T) {
	var seen CartState
	require.NoError(t, seen.Add("1", 2))
	require.NoError(t, seen.Add("9", 1))

	c := seen.Clone()
	require.NoError(t, c.Add("1", 1))
	require.NoError(t, c.Add("2", 3))

	c.Subtract(seen)
	assert.Equal(t, []CartLine{{"1", 1}, {"2", 3}}, c.Lines)

	c.Subtract(c.Clone())
	assert.True(t, c.IsEmpty())
}

func TestCartMergeUndoesSubtract(t *testing.T) {
	var seen CartState
	require.NoError(t, seen.Add("1", 3))

	c := seen.Clone()
	c.Subtract(seen)
	require.NoError(t, c.Add("2", 1))

	c.Merge(seen)
	q, ok := c.Quantity("1")
	assert.True(t, ok)
	assert.Equal(t, 3, q)
	assert.Equal(t, 4, c.Count())
}
