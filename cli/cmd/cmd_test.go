package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	rates "github.com/malusev998/privat-rates"
	"github.com/malusev998/privat-rates/fetchers"
)

type (
	httpMock struct {
		mutex     sync.Mutex
		responses map[string]string
		requested []string
	}

	memoryStorage struct {
		stored []rates.DayReport
	}
)

func (h *httpMock) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	date := request.URL.Query().Get("date")

	h.mutex.Lock()
	h.requested = append(h.requested, date)
	h.mutex.Unlock()

	body, ok := h.responses[date]
	if !ok {
		writer.WriteHeader(http.StatusInternalServerError)
		return
	}

	writer.WriteHeader(http.StatusOK)
	_, _ = writer.Write([]byte(body))
}

func (m *memoryStorage) Store(reports []rates.DayReport) ([]rates.StoredQuote, error) {
	m.stored = append(m.stored, reports...)
	quotes := make([]rates.StoredQuote, 0)

	for i, report := range reports {
		date, _ := rates.ParseDate(report.Date)
		for _, currency := range report.Currencies() {
			quotes = append(quotes, rates.StoredQuote{RateQuote: report.Rates[currency], Date: date, ID: i})
		}
	}

	return quotes, nil
}

func (m *memoryStorage) GetByDate(rates.Currency, time.Time, time.Time) ([]rates.StoredQuote, error) {
	return nil, nil
}

func (m *memoryStorage) GetStorageProviderName() string { return "memory" }
func (m *memoryStorage) Migrate() error { return nil }
func (m *memoryStorage) Drop() error { return nil }
func (m *memoryStorage) Close() error { return nil }

func dayResponse(date, eurSale, eurPurchase, usdSale, usdPurchase string) string {
	return fmt.Sprintf(`{"date":%q,"bank":"PB","baseCurrency":980,"baseCurrencyLit":"UAH","exchangeRate":[`+
		`{"baseCurrency":"UAH","currency":"CHF","saleRateNB":46.1,"purchaseRateNB":46.1,"saleRate":46.9,"purchaseRate":45.8},`+
		`{"baseCurrency":"UAH","currency":"EUR","saleRateNB":48.1,"purchaseRateNB":48.1,"saleRate":%s,"purchaseRate":%s},`+
		`{"baseCurrency":"UAH","currency":"USD","saleRateNB":41.3,"purchaseRateNB":41.3,"saleRate":%s,"purchaseRate":%s}]}`,
		date, eurSale, eurPurchase, usdSale, usdPurchase)
}

func testConfig(server *httptest.Server) *Config {
	return &Config{
		Ctx: context.Background(),
		Fetcher: fetchers.NewPrivatBankFetcher(fetchers.PrivatBankConfig{
			BaseConfig: fetchers.BaseConfig{
				Ctx: context.Background(),
				URL: server.URL + "/p24api/exchange_rates?json&date=",
			},
		}),
		Now: func() time.Time {
			return time.Date(2026, time.October, 19, 8, 0, 0, 0, time.Local)
		},
	}
}

func execute(t *testing.T, config *Config, args ...string) (string, string, error) {
	var out, errOut bytes.Buffer

	command := NewRootCommand(config)
	command.SetOut(&out)
	command.SetErr(&errOut)
	command.SetArgs(NormalizeArgs(append([]string{"--config", filepath.Join(t.TempDir(), "missing.yml")}, args...)))

	err := ExecuteCommand(command)

	return out.String(), errOut.String(), err
}

func TestRootCommand(t *testing.T) {
	t.Parallel()

	t.Run("EndToEnd", func(t *testing.T) {
		asserts := require.New(t)
		handler := &httpMock{responses: map[string]string{
			"19.10.2026": dayResponse("19.10.2026", "48.55", "47.8", "41.65", "41.05"),
			"18.10.2026": dayResponse("18.10.2026", "48.5", "47.75", "41.6", "41.0"),
		}}
		server := httptest.NewServer(handler)
		defer server.Close()

		out, _, err := execute(t, testConfig(server), "2")

		asserts.Nil(err)
		asserts.Equal([]string{"19.10.2026", "18.10.2026"}, handler.requested)
		asserts.Equal("Date: 19.10.2026\n"+
			"\tEUR: Sale - 48.55, Purchase - 47.8\n"+
			"\tUSD: Sale - 41.65, Purchase - 41.05\n"+
			"------------------------------\n"+
			"Date: 18.10.2026\n"+
			"\tEUR: Sale - 48.5, Purchase - 47.75\n"+
			"\tUSD: Sale - 41.6, Purchase - 41.0\n"+
			"------------------------------\n", out)
	})

	t.Run("FailedDayIsAbsent", func(t *testing.T) {
		asserts := require.New(t)
		handler := &httpMock{responses: map[string]string{
			"18.10.2026": dayResponse("18.10.2026", "48.5", "47.75", "41.6", "41.0"),
		}}
		server := httptest.NewServer(handler)
		defer server.Close()

		out, _, err := execute(t, testConfig(server), "3")

		asserts.Nil(err)
		asserts.Equal([]string{"19.10.2026", "18.10.2026", "17.10.2026"}, handler.requested)
		asserts.NotContains(out, "19.10.2026")
		asserts.NotContains(out, "17.10.2026")
		asserts.Contains(out, "Date: 18.10.2026\n")
	})

	t.Run("OutOfRange", func(t *testing.T) {
		asserts := require.New(t)

		for _, days := range []string{"0", "11", "-3", "99999999999999999999", "-99999999999999999999"} {
			handler := &httpMock{}
			server := httptest.NewServer(handler)

			out, errOut, err := execute(t, testConfig(server), days)
			server.Close()

			asserts.Nil(err, days)
			asserts.Equal(daysOutOfRangeMessage+"\n", out, days)
			asserts.Empty(errOut, days)
			asserts.Empty(handler.requested, days)
		}
	})

	t.Run("NegativeDaysBeforeFlags", func(t *testing.T) {
		asserts := require.New(t)
		handler := &httpMock{}
		server := httptest.NewServer(handler)
		defer server.Close()

		out, _, err := execute(t, testConfig(server), "-1", "--debug")

		asserts.Nil(err)
		asserts.Equal(daysOutOfRangeMessage+"\n", out)
		asserts.Empty(handler.requested)
	})

	t.Run("OutOfRangeIgnoresBrokenStorageConfig", func(t *testing.T) {
		asserts := require.New(t)
		path := filepath.Join(t.TempDir(), "config.yml")
		asserts.Nil(os.WriteFile(path, []byte("storage:\n  - redis\n"), 0o600))
		handler := &httpMock{responses: map[string]string{
			"19.10.2026": dayResponse("19.10.2026", "48.55", "47.8", "41.65", "41.05"),
		}}
		server := httptest.NewServer(handler)
		defer server.Close()

		out, _, err := execute(t, testConfig(server), "20", "--config", path)
		asserts.Nil(err)
		asserts.Equal(daysOutOfRangeMessage+"\n", out)

		out, _, err = execute(t, testConfig(server), "1", "--config", path)
		asserts.Nil(err)
		asserts.Contains(out, "Date: 19.10.2026\n")

		_, _, err = execute(t, testConfig(server), "1", "--config", path, "--store")
		asserts.Error(err)
	})

	t.Run("ExtraArgumentsIgnored", func(t *testing.T) {
		asserts := require.New(t)
		handler := &httpMock{responses: map[string]string{
			"19.10.2026": dayResponse("19.10.2026", "48.55", "47.8", "41.65", "41.05"),
		}}
		server := httptest.NewServer(handler)
		defer server.Close()

		out, _, err := execute(t, testConfig(server), "1", "EUR", "whatever")

		asserts.Nil(err)
		asserts.Equal([]string{"19.10.2026"}, handler.requested)
		asserts.Contains(out, "Date: 19.10.2026\n")
	})

	t.Run("MissingArgument", func(t *testing.T) {
		asserts := require.New(t)
		handler := &httpMock{}
		server := httptest.NewServer(handler)
		defer server.Close()

		out, errOut, err := execute(t, testConfig(server))

		asserts.True(errors.Is(err, ErrMissingDays))
		asserts.Empty(out)
		asserts.Contains(errOut, missingDaysMessage)
		asserts.Contains(errOut, "Usage:")
		asserts.Empty(handler.requested)
	})

	t.Run("NonNumericArgument", func(t *testing.T) {
		asserts := require.New(t)
		handler := &httpMock{}
		server := httptest.NewServer(handler)
		defer server.Close()

		out, errOut, err := execute(t, testConfig(server), "three")

		asserts.True(errors.Is(err, ErrInvalidDays))
		asserts.Empty(out)
		asserts.Contains(errOut, invalidDaysMessage)
		asserts.Contains(errOut, "Usage:")
		asserts.Empty(handler.requested)
	})

	t.Run("UnknownFlag", func(t *testing.T) {
		asserts := require.New(t)
		handler := &httpMock{}
		server := httptest.NewServer(handler)
		defer server.Close()

		_, errOut, err := execute(t, testConfig(server), "--bogus", "2")

		asserts.True(errors.Is(err, ErrUsage))
		asserts.Contains(errOut, "Error:")
		asserts.Contains(errOut, "Usage:")
		asserts.Empty(handler.requested)
	})

	t.Run("StoreReports", func(t *testing.T) {
		asserts := require.New(t)
		handler := &httpMock{responses: map[string]string{
			"19.10.2026": dayResponse("19.10.2026", "48.55", "47.8", "41.65", "41.05"),
		}}
		server := httptest.NewServer(handler)
		defer server.Close()

		memory := &memoryStorage{}
		config := testConfig(server)
		config.Storage = []rates.Storage{memory}

		_, _, err := execute(t, config, "1", "--store")

		asserts.Nil(err)
		asserts.Len(memory.stored, 1)
		asserts.Equal("19.10.2026", memory.stored[0].Date)
	})

	t.Run("StoreWithoutStorages", func(t *testing.T) {
		asserts := require.New(t)
		handler := &httpMock{responses: map[string]string{
			"19.10.2026": dayResponse("19.10.2026", "48.55", "47.8", "41.65", "41.05"),
		}}
		server := httptest.NewServer(handler)
		defer server.Close()

		out, errOut, err := execute(t, testConfig(server), "1", "--store")

		asserts.Error(err)
		asserts.Contains(out, "Date: 19.10.2026")
		asserts.Contains(errOut, "Error:")
		asserts.NotContains(errOut, "Usage:")
	})
}

func TestNormalizeArgs(t *testing.T) {
	t.Parallel()
	asserts := require.New(t)

	asserts.Equal([]string{"3"}, NormalizeArgs([]string{"3"}))
	asserts.Equal([]string{"--", "-3"}, NormalizeArgs([]string{"-3"}))
	asserts.Equal([]string{"--debug", "--", "-3"}, NormalizeArgs([]string{"-3", "--debug"}))
	asserts.Equal([]string{"--store", "--", "-3", "x"}, NormalizeArgs([]string{"-3", "--store", "--", "x"}))
	asserts.Equal([]string{"--", "-3", "-4"}, NormalizeArgs([]string{"--", "-3", "-4"}))
	asserts.Equal([]string{"-d"}, NormalizeArgs([]string{"-d"}))
	asserts.Empty(NormalizeArgs(nil))
}

func TestParseDays(t *testing.T) {
	t.Parallel()
	asserts := require.New(t)

	days, err := parseDays("7")
	asserts.Nil(err)
	asserts.Equal(7, days)

	days, err = parseDays(" +2 ")
	asserts.Nil(err)
	asserts.Equal(2, days)

	days, err = parseDays("99999999999999999999")
	asserts.Nil(err)
	asserts.True(days > 10)

	days, err = parseDays("-99999999999999999999")
	asserts.Nil(err)
	asserts.True(days < 1)

	_, err = parseDays("1.5")
	asserts.True(errors.Is(err, ErrInvalidDays))
}
