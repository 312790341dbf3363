package fetchers

import (
	"context"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

type (
	BaseConfig struct {
		Ctx    context.Context
		URL    string
		Logger *logrus.Logger
	}
	PrivatBankConfig struct {
		BaseConfig
		// Timeout of zero keeps the http.Client default.
		Timeout time.Duration
	}
)

func NewPrivatBankFetcher(config PrivatBankConfig) PrivatBankFetcher {
	return PrivatBankFetcher{
		Ctx:    config.Ctx,
		URL:    config.URL,
		Client: &http.Client{Timeout: config.Timeout},
		Logger: config.Logger,
	}
}
