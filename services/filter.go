package services

import (
	"errors"
	"fmt"

	rates "github.com/malusev998/privat-rates"
)

var (
	ErrMalformedRate = errors.New("rate entry is missing sale or purchase rate")
)

// Filter keeps the tracked currencies of the payload, copying sale and
// purchase rates as published. Untracked entries are dropped without
// looking at their rates.
func Filter(payload *rates.Payload) (map[rates.Currency]rates.RateQuote, error) {
	filtered := make(map[rates.Currency]rates.RateQuote)

	if payload == nil {
		return filtered, nil
	}

	for _, rate := range payload.ExchangeRate {
		if !rates.IsTracked(rate.Currency) {
			continue
		}

		if rate.SaleRate == nil || rate.PurchaseRate == nil {
			return nil, fmt.Errorf("%s: %w", rate.Currency, ErrMalformedRate)
		}

		currency := rates.Currency(rate.Currency)
		filtered[currency] = rates.RateQuote{
			Currency: currency,
			Sale:     *rate.SaleRate,
			Purchase: *rate.PurchaseRate,
		}
	}

	return filtered, nil
}
