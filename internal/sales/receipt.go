package sales

import (
	"fmt"
	"strings"
)

const receiptTimeLayout = "2006-01-02 15:04:05"

// Text renders the receipt as plain text for printing or copy/paste.
func (r *Receipt) Text() string {
	var b strings.Builder
	b.WriteString("SALES RECEIPT\n")
	b.WriteString(r.SoldAt.Format(receiptTimeLayout))
	b.WriteString("\n")
	if r.TransactBy != "" {
		fmt.Fprintf(&b, "Served by: %s\n", r.TransactBy)
	}
	b.WriteString(strings.Repeat("-", 40))
	b.WriteString("\n")

	for _, line := range r.Lines {
		fmt.Fprintf(&b, "%s / %s\n", line.AccountName, line.ProductName)
		fmt.Fprintf(&b, "  %d x %s = %s\n", line.Quantity, line.PriceEach.StringFixed(2), line.Amount.StringFixed(2))
	}

	b.WriteString(strings.Repeat("-", 40))
	b.WriteString("\n")
	fmt.Fprintf(&b, "TOTAL: %s\n", r.Total.StringFixed(2))
	return b.String()
}
