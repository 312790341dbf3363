package services

import (
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	rates "github.com/malusev998/privat-rates"
)

var separator = strings.Repeat("-", 30)

// formatRate keeps at least one fractional digit, so 41 prints as 41.0.
func formatRate(rate decimal.Decimal) string {
	if rate.Equal(rate.Truncate(0)) {
		return rate.StringFixed(1)
	}

	return rate.String()
}

func Print(w io.Writer, reports []rates.DayReport) error {
	for _, report := range reports {
		if _, err := fmt.Fprintf(w, "Date: %s\n", report.Date); err != nil {
			return err
		}

		for _, currency := range report.Currencies() {
			rate := report.Rates[currency]
			if _, err := fmt.Fprintf(w, "\t%s: Sale - %s, Purchase - %s\n", currency, formatRate(rate.Sale), formatRate(rate.Purchase)); err != nil {
				return err
			}
		}

		if _, err := fmt.Fprintln(w, separator); err != nil {
			return err
		}
	}

	return nil
}
