package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	rates "github.com/malusev998/privat-rates"
	"github.com/malusev998/privat-rates/logger"
)

const (
	MinDays = 1
	MaxDays = 10
)

var (
	ErrDaysOutOfRange    = errors.New("number of days is out of range")
	ErrNoStorageProvided = errors.New("no storage provided")
)

type ReportService struct {
	Fetcher rates.Fetcher
	Storage []rates.Storage
	Logger  *logrus.Logger
	Now     func() time.Time
}

func (r ReportService) logger() *logrus.Logger {
	if r.Logger == nil {
		return logger.Discard()
	}

	return r.Logger
}

func (r ReportService) now() time.Time {
	if r.Now == nil {
		return time.Now()
	}

	return r.Now()
}

// Collect fetches the last days one at a time, today first. Days without
// data, failed requests and malformed payloads are left out of the result.
func (r ReportService) Collect(ctx context.Context, days int) ([]rates.DayReport, error) {
	if days < MinDays || days > MaxDays {
		return nil, ErrDaysOutOfRange
	}

	log := r.logger()
	today := r.now()
	reports := make([]rates.DayReport, 0, days)

	for i := 0; i < days; i++ {
		date := rates.FormatDate(today.AddDate(0, 0, -i))
		result := r.Fetcher.Fetch(ctx, date)

		if result.Status != rates.FetchOK {
			log.WithFields(logrus.Fields{
				"date":   date,
				"status": result.Status,
			}).Info("Skipping day without rates")
			continue
		}

		filtered, err := Filter(result.Payload)

		if err != nil {
			log.WithField("date", date).Errorf("Error while filtering rates: %v", err)
			continue
		}

		reports = append(reports, rates.DayReport{
			Date:  date,
			Rates: filtered,
		})
	}

	return reports, nil
}

func saveToStorage(
	wg *sync.WaitGroup,
	reports []rates.DayReport,
	data map[string][]rates.StoredQuote,
	storage rates.Storage,
	errorChannel chan<- error,
	mutex sync.Locker,
) {
	defer wg.Done()
	quotes, err := storage.Store(reports)

	if err != nil {
		errorChannel <- err
		return
	}

	mutex.Lock()
	data[storage.GetStorageProviderName()] = quotes
	mutex.Unlock()
}

// Save writes the reports to every configured storage, keyed by storage name.
func (r ReportService) Save(reports []rates.DayReport) (map[string][]rates.StoredQuote, error) {
	var wg sync.WaitGroup
	mutex := &sync.Mutex{}

	if len(r.Storage) == 0 {
		return nil, ErrNoStorageProvided
	}

	errorChannel := make(chan error, len(r.Storage))
	data := make(map[string][]rates.StoredQuote)

	wg.Add(len(r.Storage))
	for _, storage := range r.Storage {
		go saveToStorage(&wg, reports, data, storage, errorChannel, mutex)
	}

	wg.Wait()
	close(errorChannel)

	if err, more := <-errorChannel; more {
		return nil, err
	}

	r.logger().Debugf("Saved %d reports to %d storages", len(reports), len(r.Storage))

	return data, nil
}
