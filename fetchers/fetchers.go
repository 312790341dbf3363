package fetchers

import (
	"context"
	"errors"
	"net/http"
)

const (
	PrivatBankURL = "https://api.privatbank.ua/p24api/exchange_rates?json&date="
)

var (
	ErrClient    = errors.New("client error")
	ErrServer    = errors.New("server error")
	ErrUnknown   = errors.New("unknown error")
	ErrEmptyDate = errors.New("date is empty")
)

func getData(ctx context.Context, url string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)

	if err != nil {
		return nil, err
	}

	req.Header.Add("Accept", "application/json")

	return req, nil
}

func handleHTTPStatusCodeError(res *http.Response) error {
	switch {
	case res.StatusCode >= http.StatusOK && res.StatusCode < http.StatusMultipleChoices:
		return nil
	case res.StatusCode >= http.StatusBadRequest && res.StatusCode < http.StatusInternalServerError:
		return ErrClient
	case res.StatusCode >= http.StatusInternalServerError:
		return ErrServer
	}

	return ErrUnknown
}
