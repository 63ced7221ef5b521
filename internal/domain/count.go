package domain

import (
	"github.com/shopspring/decimal"
)

// CountText converts a JSON number literal to the text a browser would
// render for it: "3.0" becomes "3", "1e3" becomes "1000".
func CountText(raw string) string {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return raw
	}

	return d.String()
}
