package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	rates "github.com/malusev998/privat-rates"
	"github.com/malusev998/privat-rates/logger"
)

const MySQLTimeFormat = "2006-01-02 15:04:05"

type sqlStorage struct {
	ctx         context.Context
	db          *sql.DB
	idGenerator IDGenerator
	tableName   string
	logger      *logrus.Logger
}

func NewMySQLStorage(config MySQLConfig) (rates.Storage, error) {
	db, err := sql.Open("mysql", config.ConnectionString)

	if err != nil {
		return nil, err
	}

	return NewSQLStorage(config.Cxt, db, config.IDGenerator, config.TableName, config.Migrate, config.Logger)
}

func NewSQLStorage(ctx context.Context, db *sql.DB, generator IDGenerator, tableName string, migrate bool, log *logrus.Logger) (rates.Storage, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	if generator == nil {
		generator = uuidGenerator{}
	}

	if log == nil {
		log = logger.Discard()
	}

	st := sqlStorage{
		ctx:         ctx,
		db:          db,
		idGenerator: generator,
		tableName:   tableName,
		logger:      log,
	}

	if migrate {
		if err := st.Migrate(); err != nil {
			return nil, err
		}
	}

	return st, nil
}

func (s sqlStorage) Migrate() error {
	_, err := s.db.ExecContext(s.ctx, fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s(id BINARY(16) PRIMARY KEY, rate_date DATE NOT NULL, currency CHAR(3) NOT NULL, sale DECIMAL(18,6) NOT NULL, purchase DECIMAL(18,6) NOT NULL, created_at DATETIME NOT NULL, INDEX currency_date_index (currency, rate_date));",
		s.tableName,
	))

	return err
}

func (s sqlStorage) Store(reports []rates.DayReport) ([]rates.StoredQuote, error) {
	quotes := make([]rates.StoredQuote, 0, len(reports)*len(rates.TrackedCurrencies))
	now := time.Now()

	tx, err := s.db.BeginTx(s.ctx, nil)

	if err != nil {
		return nil, err
	}

	stmt, err := tx.PrepareContext(s.ctx, fmt.Sprintf("INSERT INTO %s(id, rate_date, currency, sale, purchase, created_at) VALUES (?,?,?,?,?,?);", s.tableName))

	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	defer stmt.Close()

	for _, report := range reports {
		date, err := rates.ParseDate(report.Date)

		if err != nil {
			_ = tx.Rollback()
			return nil, fmt.Errorf("parse report date %q: %w", report.Date, err)
		}

		for _, currency := range report.Currencies() {
			quote := report.Rates[currency]
			id, err := newID(s.idGenerator)

			if err != nil {
				_ = tx.Rollback()
				return nil, err
			}

			_, err = stmt.ExecContext(s.ctx, id[:], date.Format("2006-01-02"), string(currency), quote.Sale.String(), quote.Purchase.String(), now.Format(MySQLTimeFormat))

			if err != nil {
				_ = tx.Rollback()
				return nil, err
			}

			quotes = append(quotes, rates.StoredQuote{
				RateQuote: quote,
				Date:      date,
				ID:        id,
			})
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.logger.Debugf("Stored %d quotes in %s", len(quotes), s.tableName)

	return quotes, nil
}

func (s sqlStorage) GetByDate(currency rates.Currency, start, end time.Time) ([]rates.StoredQuote, error) {
	rows, err := s.db.QueryContext(
		s.ctx,
		fmt.Sprintf("SELECT id, rate_date, currency, sale, purchase FROM %s WHERE currency = ? AND rate_date >= ? AND rate_date <= ? ORDER BY rate_date DESC;", s.tableName),
		string(currency),
		start.Format("2006-01-02"),
		end.Format("2006-01-02"),
	)

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	quotes := make([]rates.StoredQuote, 0)

	for rows.Next() {
		var (
			id             []byte
			date, code     string
			sale, purchase decimal.Decimal
		)

		if err := rows.Scan(&id, &date, &code, &sale, &purchase); err != nil {
			return nil, err
		}

		parsedID, err := uuid.FromBytes(id)

		if err != nil {
			return nil, err
		}

		c, err := rates.ParseCurrency(code)

		if err != nil {
			return nil, err
		}

		parsedDate, err := time.Parse("2006-01-02", date)

		if err != nil {
			return nil, err
		}

		quotes = append(quotes, rates.StoredQuote{
			RateQuote: rates.RateQuote{
				Currency: c,
				Sale:     sale,
				Purchase: purchase,
			},
			Date: parsedDate,
			ID:   parsedID,
		})
	}

	return quotes, rows.Err()
}

func (s sqlStorage) GetStorageProviderName() string {
	return string(MySQL)
}

func (s sqlStorage) Drop() error {
	_, err := s.db.ExecContext(s.ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s;", s.tableName))

	return err
}

func (s sqlStorage) Close() error {
	return s.db.Close()
}
