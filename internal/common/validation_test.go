package common

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatorCollectsAllErrors(t *testing.T) {
	v := NewValidator().
		Field("items[0].name", "  ", Required).
		Field("items[0].quantity", -1.0, NonNegative).
		Field("items[0].price", math.NaN(), NonNegative).
		Field("items[0].total", 5.0, NonNegative)

	require.True(t, v.HasErrors())
	assert.Equal(t, 3, strings.Count(v.ErrorMessage(), "validation failed"))

	err := ValidateAndReturnError(v)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.True(t, strings.Contains(err.Error(), "items[0].quantity"))
}

func TestValidatorPasses(t *testing.T) {
	v := NewValidator().
		Field("name", "Bolt M4", Required, MaxLength(255)).
		Field("quantity", 0.0, NonNegative)

	assert.False(t, v.HasErrors())
	assert.Empty(t, v.ErrorMessage())
	assert.NoError(t, ValidateAndReturnError(v))
}

func TestMaxLength(t *testing.T) {
	rule := MaxLength(3)
	assert.Nil(t, rule("name", "abc"))
	assert.NotNil(t, rule("name", "abcd"))
	assert.Nil(t, rule("name", 42), "non-strings are ignored")
}

func TestNonNegativeRejectsInfinity(t *testing.T) {
	assert.NotNil(t, NonNegative("total", math.Inf(1)))
	assert.NotNil(t, NonNegative("total", "5"))
	assert.Nil(t, NonNegative("total", 0.0))
}
