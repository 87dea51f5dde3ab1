package money

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRound2HalfAwayFromZero(t *testing.T) {
	assert.Equal(t, 1.13, Round2(1.125))
	assert.Equal(t, -1.13, Round2(-1.125))
	assert.Equal(t, 2.68, Round2(2.675))
	assert.Equal(t, 0.0, Round2(0))
	assert.Equal(t, 862.50, Round2(862.5))
}

func TestCoerceGuardsNonFinite(t *testing.T) {
	assert.Equal(t, 0.0, Coerce(math.NaN(), 0))
	assert.Equal(t, 0.0, Coerce(math.Inf(1), 0))
	assert.Equal(t, 5.0, Coerce(math.Inf(-1), 5))
	assert.Equal(t, 12.5, Coerce(12.5, 0))
}

func TestMul(t *testing.T) {
	assert.Equal(t, 250.0, Mul(10, 25))
	assert.Equal(t, 0.07, Mul(0.1, 0.7))
	assert.Equal(t, 0.0, Mul(math.NaN(), 100))
	// negatives pass through, the normalizer decides what to do with them
	assert.Equal(t, -50.0, Mul(-2, 25))
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 112.50, Percent(750, 15))
	assert.Equal(t, 150.0, Percent(1000, 15))
	assert.Equal(t, 0.0, Percent(1000, 0))
	assert.Equal(t, 0.0, Percent(1000, math.NaN()))
}

func TestSum(t *testing.T) {
	assert.Equal(t, 750.0, Sum(250, 500))
	assert.Equal(t, 0.3, Sum(0.1, 0.2))
	assert.Equal(t, 0.0, Sum())
	assert.Equal(t, 10.0, Sum(math.Inf(1), 10))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.0, Clamp(-10, 0, 100))
	assert.Equal(t, 100.0, Clamp(150, 0, 100))
	assert.Equal(t, 30.0, Clamp(30, 0, 100))
	assert.Equal(t, 0.0, Clamp(math.NaN(), 0, 100))
}
