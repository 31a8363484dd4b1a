package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCategory(t *testing.T) {
	c, ok := ParseCategory("Food")
	assert.True(t, ok)
	assert.Equal(t, CategoryFood, c)

	_, ok = ParseCategory("food")
	assert.False(t, ok, "categories are case sensitive")

	_, ok = ParseCategory("Gadgets")
	assert.False(t, ok)
}

func TestParsePriority(t *testing.T) {
	p, ok := ParsePriority("High")
	assert.True(t, ok)
	assert.Equal(t, PriorityHigh, p)

	_, ok = ParsePriority("urgent")
	assert.False(t, ok)
}

func TestPriorityRankOrdering(t *testing.T) {
	assert.Greater(t, PriorityHigh.Rank(), PriorityMedium.Rank())
	assert.Greater(t, PriorityMedium.Rank(), PriorityLow.Rank())
	assert.Greater(t, PriorityLow.Rank(), Priority("").Rank())
}

func TestIsReservedUsername(t *testing.T) {
	assert.True(t, IsReservedUsername("admin"))
	assert.True(t, IsReservedUsername("Admin"))
	assert.True(t, IsReservedUsername("  ADMIN  "))
	assert.False(t, IsReservedUsername("administrator"))
	assert.False(t, IsReservedUsername("helper"))
}

func TestInsufficientQuantityErrorMatchesSentinel(t *testing.T) {
	err := &InsufficientQuantityError{NeedName: "Blankets"}
	assert.ErrorIs(t, err, ErrInsufficientQuantity)
	assert.Equal(t, "insufficient quantity for Blankets", err.Error())

	var iq *InsufficientQuantityError
	assert.True(t, errors.As(error(err), &iq))
}
