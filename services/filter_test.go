package services

import (
	"errors"
	"testing"

	"github.com/bxcodec/faker/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	rates "github.com/malusev998/privat-rates"
)

func TestFilter(t *testing.T) {
	t.Parallel()

	t.Run("KeepsTrackedCurrencies", func(t *testing.T) {
		asserts := require.New(t)
		payload := &rates.Payload{
			ExchangeRate: []rates.RawRate{
				rawRate("EUR", "48.55", "47.8"),
				rawRate("USD", "41.65", "41.05"),
				rawRate("GBP", "55.9", "54.2"),
			},
		}

		filtered, err := Filter(payload)

		asserts.Nil(err)
		asserts.Len(filtered, 2)
		asserts.NotContains(filtered, rates.Currency("GBP"))

		eur := filtered[rates.EUR]
		asserts.Equal(rates.EUR, eur.Currency)
		asserts.True(eur.Sale.Equal(decimal.RequireFromString("48.55")))
		asserts.True(eur.Purchase.Equal(decimal.RequireFromString("47.8")))

		usd := filtered[rates.USD]
		asserts.Equal(rates.USD, usd.Currency)
		asserts.True(usd.Sale.Equal(decimal.RequireFromString("41.65")))
		asserts.True(usd.Purchase.Equal(decimal.RequireFromString("41.05")))
	})

	t.Run("EmptyRateList", func(t *testing.T) {
		asserts := require.New(t)

		filtered, err := Filter(&rates.Payload{ExchangeRate: []rates.RawRate{}})

		asserts.Nil(err)
		asserts.NotNil(filtered)
		asserts.Empty(filtered)
	})

	t.Run("NilPayload", func(t *testing.T) {
		asserts := require.New(t)

		filtered, err := Filter(nil)

		asserts.Nil(err)
		asserts.Empty(filtered)
	})

	t.Run("UntrackedEntriesWithoutRates", func(t *testing.T) {
		asserts := require.New(t)
		payload := &rates.Payload{
			ExchangeRate: []rates.RawRate{
				{BaseCurrency: "UAH", Currency: "PLN"},
				{BaseCurrency: "UAH"},
				rawRate("USD", "41.65", "41.05"),
			},
		}

		filtered, err := Filter(payload)

		asserts.Nil(err)
		asserts.Len(filtered, 1)
		asserts.Contains(filtered, rates.USD)
	})

	t.Run("MissingRateOnTrackedCurrency", func(t *testing.T) {
		asserts := require.New(t)
		sale := decimal.RequireFromString("48.55")
		payload := &rates.Payload{
			ExchangeRate: []rates.RawRate{
				{Currency: "EUR", SaleRate: &sale},
			},
		}

		filtered, err := Filter(payload)

		asserts.Nil(filtered)
		asserts.True(errors.Is(err, ErrMalformedRate))
		asserts.Contains(err.Error(), "EUR")
	})

	t.Run("RandomUntrackedCurrencies", func(t *testing.T) {
		asserts := require.New(t)
		payload := &rates.Payload{}

		for i := 0; i < 20; i++ {
			code := faker.Currency()
			if rates.IsTracked(code) {
				continue
			}
			payload.ExchangeRate = append(payload.ExchangeRate, rawRate(code, "1.5", "1.4"))
		}

		filtered, err := Filter(payload)

		asserts.Nil(err)
		asserts.Empty(filtered)
	})
}
