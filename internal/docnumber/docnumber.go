// Package docnumber issues human-readable document numbers such as
// QT-1767225600000 or INV-1767225600000. The token is the clock's unix
// millisecond reading, which is unique enough at this system's operating
// cadence; the database keeps a unique index on the column as the backstop.
package docnumber

import (
	"fmt"

	"github.com/jobledger/jobledger/internal/clock"
)

const (
	PrefixQuotation = "QT"
	PrefixInvoice   = "INV"
)

// Generator issues one document number per document creation. Numbers are
// immutable after creation; updates never call this.
type Generator interface {
	Next(prefix string) string
}

type generator struct {
	clk clock.Clock
}

func NewGenerator(clk clock.Clock) Generator {
	return &generator{clk: clk}
}

func (g *generator) Next(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, g.clk.Now().UnixMilli())
}
