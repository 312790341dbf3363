package rates

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the DD.MM.YYYY form used by the PrivatBank API and the report.
const DateLayout = "02.01.2006"

type (
	RateQuote struct {
		Currency Currency
		Sale     decimal.Decimal
		Purchase decimal.Decimal
	}

	DayReport struct {
		Date  string
		Rates map[Currency]RateQuote
	}

	StoredQuote struct {
		RateQuote
		Date time.Time
		ID   interface{}
	}

	Payload struct {
		Date            string    `json:"date,omitempty"`
		Bank            string    `json:"bank,omitempty"`
		BaseCurrencyLit string    `json:"baseCurrencyLit,omitempty"`
		ExchangeRate    []RawRate `json:"exchangeRate,omitempty"`
	}

	RawRate struct {
		BaseCurrency   string           `json:"baseCurrency,omitempty"`
		Currency       string           `json:"currency,omitempty"`
		SaleRateNB     *decimal.Decimal `json:"saleRateNB,omitempty"`
		PurchaseRateNB *decimal.Decimal `json:"purchaseRateNB,omitempty"`
		SaleRate       *decimal.Decimal `json:"saleRate,omitempty"`
		PurchaseRate   *decimal.Decimal `json:"purchaseRate,omitempty"`
	}
)

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

func ParseDate(date string) (time.Time, error) {
	return time.Parse(DateLayout, date)
}

// Currencies returns the currencies present in the report in a stable order.
func (d DayReport) Currencies() []Currency {
	currencies := make([]Currency, 0, len(d.Rates))

	for c := range d.Rates {
		currencies = append(currencies, c)
	}

	sort.Slice(currencies, func(i, j int) bool {
		return currencies[i] < currencies[j]
	})

	return currencies
}
