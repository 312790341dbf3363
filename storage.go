package rates

import "time"

type Storage interface {
	Store([]DayReport) ([]StoredQuote, error)
	GetByDate(currency Currency, start, end time.Time) ([]StoredQuote, error)
	GetStorageProviderName() string
	Migrate() error
	Drop() error
	Close() error
}
