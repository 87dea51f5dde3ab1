package docnumber

import (
	"testing"
	"time"

	"github.com/jobledger/jobledger/internal/clock"
	"github.com/stretchr/testify/assert"
)

func TestNextUsesPrefixAndClockMillis(t *testing.T) {
	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	gen := NewGenerator(clock.NewFakeClock(at))

	assert.Equal(t, "QT-1767225600000", gen.Next(PrefixQuotation))
	assert.Equal(t, "INV-1767225600000", gen.Next(PrefixInvoice))
}

func TestNextAdvancesWithClock(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	gen := NewGenerator(clk)

	first := gen.Next(PrefixInvoice)
	clk.Advance(time.Millisecond)
	second := gen.Next(PrefixInvoice)

	assert.NotEqual(t, first, second)
}
