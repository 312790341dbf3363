package fetchers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	rates "github.com/malusev998/privat-rates"
	"github.com/malusev998/privat-rates/logger"
)

type PrivatBankFetcher struct {
	Ctx    context.Context
	URL    string
	Client *http.Client
	Logger *logrus.Logger
}

func (p PrivatBankFetcher) fetchPayload(ctx context.Context, date string) (*rates.Payload, error) {
	url := p.URL

	if url == "" {
		url = PrivatBankURL
	}

	client := p.Client

	if client == nil {
		client = http.DefaultClient
	}

	req, err := getData(ctx, url+date)

	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	res, err := client.Do(req)

	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}

	defer res.Body.Close()

	if err := handleHTTPStatusCodeError(res); err != nil {
		return nil, fmt.Errorf("privatbank http %d: %w", res.StatusCode, err)
	}

	body, err := io.ReadAll(res.Body)

	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}

	var fields map[string]json.RawMessage

	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	// Any key at all counts as a published day, even one without rates.
	if len(fields) == 0 {
		return nil, nil
	}

	var payload rates.Payload

	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	return &payload, nil
}

// Fetch never returns an error directly: failures are logged and reported
// through the result status so the caller can omit the day.
func (p PrivatBankFetcher) Fetch(ctx context.Context, date string) rates.FetchResult {
	log := p.Logger

	if log == nil {
		log = logger.Discard()
	}

	if ctx == nil {
		ctx = p.Ctx
	}

	if ctx == nil {
		ctx = context.Background()
	}

	if strings.TrimSpace(date) == "" {
		log.Errorf("Error when requesting the API: %v", ErrEmptyDate)
		return rates.FetchResult{Date: date, Status: rates.FetchFailed, Err: ErrEmptyDate}
	}

	log.Debugf("Fetching rates for %s", date)

	payload, err := p.fetchPayload(ctx, date)

	if err != nil {
		log.WithField("date", date).Errorf("Error when requesting the API: %v", err)
		return rates.FetchResult{Date: date, Status: rates.FetchFailed, Err: err}
	}

	if payload == nil {
		log.WithField("date", date).Debug("No rates published")
		return rates.FetchResult{Date: date, Status: rates.FetchEmpty}
	}

	log.WithField("date", date).Debugf("Fetched %d rates", len(payload.ExchangeRate))

	return rates.FetchResult{Date: date, Status: rates.FetchOK, Payload: payload}
}
