package rates

import (
	"fmt"
	"strings"
)

type Currency string

const (
	EUR Currency = "EUR"
	USD Currency = "USD"
)

// TrackedCurrencies are the only currencies kept in a day report.
var TrackedCurrencies = []Currency{EUR, USD}

func IsTracked(code string) bool {
	for _, c := range TrackedCurrencies {
		if string(c) == code {
			return true
		}
	}

	return false
}

func ParseCurrency(str string) (Currency, error) {
	switch strings.ToUpper(strings.TrimSpace(str)) {
	case "EUR":
		return EUR, nil
	case "USD":
		return USD, nil
	}

	return "", fmt.Errorf("value %s is not valid Currency", str)
}
